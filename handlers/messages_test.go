package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eldrun-online/community-hub/backend/models"
)

func TestCreateMessage(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		models.CreateMessageRequest{Content: "hello everyone"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message models.Message `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message.Content != "hello everyone" {
		t.Fatalf("content wrong: %q", resp.Message.Content)
	}
	if resp.Message.Author.ID != "u1" || resp.Message.Author.Username != "anna" {
		t.Fatalf("author snapshot wrong: %+v", resp.Message.Author)
	}

	msgs := f.store.ChannelMessages(f.channel.ID)
	if len(msgs) != 1 {
		t.Fatalf("message not appended")
	}

	// Posting awards loyalty points at the configured rate
	u, _ := f.store.User("u1")
	if u.LoyaltyPoints != 1 {
		t.Fatalf("expected 1 loyalty point, got %d", u.LoyaltyPoints)
	}
}

func TestCreateMessageTrimsAndRejectsEmpty(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		map[string]string{"content": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("whitespace-only content should be 400, got %d", w.Code)
	}
	if len(f.store.ChannelMessages(f.channel.ID)) != 0 {
		t.Fatalf("nothing should be appended")
	}
}

func TestCreateMessageBannedUser(t *testing.T) {
	f := newFixture(t)
	_ = f.store.BanFromChannel(f.channel.ID, "u1")

	w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		models.CreateMessageRequest{Content: "let me in"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("banned user should get 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "banned") {
		t.Fatalf("response should carry the reason: %s", w.Body.String())
	}
	if len(f.store.ChannelMessages(f.channel.ID)) != 0 {
		t.Fatalf("rejected message must not be appended")
	}
}

func TestCreateMessageUnknownChannel(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/channels/missing/messages", "u1",
		models.CreateMessageRequest{Content: "hello"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateMessageWithReply(t *testing.T) {
	f := newFixture(t)

	first := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		models.CreateMessageRequest{Content: "original"})
	var firstResp struct {
		Message models.Message `json:"message"`
	}
	_ = json.Unmarshal(first.Body.Bytes(), &firstResp)

	w := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u2",
		models.CreateMessageRequest{Content: "replying", ReplyToID: firstResp.Message.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message models.Message `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message.ReplyTo == nil || resp.Message.ReplyTo.ID != firstResp.Message.ID {
		t.Fatalf("reply ref missing: %+v", resp.Message.ReplyTo)
	}
	if resp.Message.ReplyTo.Snippet != "original" {
		t.Fatalf("snippet wrong: %q", resp.Message.ReplyTo.Snippet)
	}
}

func TestEditMessageOnlyAuthorOrStaff(t *testing.T) {
	f := newFixture(t)

	created := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		models.CreateMessageRequest{Content: "mine"})
	var resp struct {
		Message models.Message `json:"message"`
	}
	_ = json.Unmarshal(created.Body.Bytes(), &resp)

	// Another regular user cannot edit
	w := f.do(t, http.MethodPut, "/api/v1/messages/"+resp.Message.ID, "u2",
		models.EditMessageRequest{Content: "hijacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign edit, got %d", w.Code)
	}

	// The author can
	w = f.do(t, http.MethodPut, "/api/v1/messages/"+resp.Message.ID, "u1",
		models.EditMessageRequest{Content: "fixed"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := f.store.Message(resp.Message.ID)
	if got.Content != "fixed" || got.EditedAt == nil {
		t.Fatalf("edit not applied: %+v", got)
	}
}

func TestDeleteMessageTombstones(t *testing.T) {
	f := newFixture(t)

	created := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		models.CreateMessageRequest{Content: "regret this"})
	var resp struct {
		Message models.Message `json:"message"`
	}
	_ = json.Unmarshal(created.Body.Bytes(), &resp)

	w := f.do(t, http.MethodDelete, "/api/v1/messages/"+resp.Message.ID, "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	got, ok := f.store.Message(resp.Message.ID)
	if !ok {
		t.Fatalf("tombstone should remain resolvable")
	}
	if !got.IsDeleted || got.Content != models.TombstoneContent {
		t.Fatalf("expected tombstone, got %+v", got)
	}
}

func TestAddReactionEndpoint(t *testing.T) {
	f := newFixture(t)

	created := f.do(t, http.MethodPost, "/api/v1/channels/"+f.channel.ID+"/messages", "u1",
		models.CreateMessageRequest{Content: "react here"})
	var resp struct {
		Message models.Message `json:"message"`
	}
	_ = json.Unmarshal(created.Body.Bytes(), &resp)

	w := f.do(t, http.MethodPost, "/api/v1/messages/"+resp.Message.ID+"/reactions", "u2",
		models.ReactionRequest{Emoji: "🔥"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := f.store.Message(resp.Message.ID)
	if len(got.Reactions) != 1 || got.Reactions[0].Count != 1 {
		t.Fatalf("reaction not recorded: %+v", got.Reactions)
	}
}

func TestGetMessagesRequiresAuth(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+f.channel.ID+"/messages", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
