package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/eldrun-online/community-hub/backend/models"
)

// dialTestClient spins up an upgrading server, connects a peer through it and
// waits until the hub has registered the client
func dialTestClient(t *testing.T, hub *Hub, userID string) *gorillaws.Conn {
	t.Helper()

	upgrader := gorillaws.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		NewClient(hub, conn, userID, userID).Start()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for !hub.IsUserConnected(userID) {
		if time.Now().After(deadline) {
			t.Fatalf("client %q never registered", userID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readHubMessage(t *testing.T, conn *gorillaws.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestBroadcastChatMessage(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	conn := dialTestClient(t, hub, "u1")

	hub.BroadcastChatMessage(&models.Message{
		ID:      "m1",
		Content: "hello",
		Author:  models.AuthorSnapshot{ID: "u2", Username: "bella"},
	})

	msg := readHubMessage(t, conn)
	if msg.Type != MessageTypeChatMessage {
		t.Fatalf("expected chat_message, got %q", msg.Type)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected payload: %T", msg.Payload)
	}
	if payload["content"] != "hello" {
		t.Fatalf("payload content wrong: %v", payload["content"])
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	conn1 := dialTestClient(t, hub, "u1")
	conn2 := dialTestClient(t, hub, "u2")
	if got := hub.GetConnectedUserCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.BroadcastPresence("u1", "away")

	for _, conn := range []*gorillaws.Conn{conn1, conn2} {
		msg := readHubMessage(t, conn)
		if msg.Type != MessageTypePresenceUpdate {
			t.Fatalf("expected presence_update, got %q", msg.Type)
		}
	}
}

func TestNotifyGiftReceivedTargetsOneUser(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	recipient := dialTestClient(t, hub, "u1")
	bystander := dialTestClient(t, hub, "u2")

	hub.NotifyGiftReceived("u1", &GiftPayload{
		Kind:       "rose",
		FromUserID: "u2",
		RoseColor:  "red",
	})

	msg := readHubMessage(t, recipient)
	if msg.Type != MessageTypeGiftReceived {
		t.Fatalf("expected gift_received, got %q", msg.Type)
	}

	// The bystander must not see the targeted notification
	_ = bystander.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := bystander.ReadMessage(); err == nil {
		t.Fatalf("bystander should not receive a targeted gift notification")
	}
}

func TestIsUserConnected(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	if hub.IsUserConnected("u1") {
		t.Fatalf("no one should be connected yet")
	}
	dialTestClient(t, hub, "u1")
	if !hub.IsUserConnected("u1") {
		t.Fatalf("u1 should be connected")
	}
	if hub.IsUserConnected("u2") {
		t.Fatalf("u2 was never connected")
	}
}
