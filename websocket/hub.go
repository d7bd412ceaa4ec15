package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/eldrun-online/community-hub/backend/models"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeChatMessage is sent when a new chat message is posted
	MessageTypeChatMessage MessageType = "chat_message"
	// MessageTypeMessageEdited is sent when a message is edited
	MessageTypeMessageEdited MessageType = "message_edited"
	// MessageTypeMessageDeleted is sent when a message is soft-deleted
	MessageTypeMessageDeleted MessageType = "message_deleted"
	// MessageTypeMessagePinned is sent when a message's pin flag flips
	MessageTypeMessagePinned MessageType = "message_pinned"
	// MessageTypeReactionUpdate is sent when a reaction is added or removed
	MessageTypeReactionUpdate MessageType = "reaction_update"
	// MessageTypePresenceUpdate is sent when a user's status changes
	MessageTypePresenceUpdate MessageType = "presence_update"
	// MessageTypeGiftReceived is sent to the recipient of a gift
	MessageTypeGiftReceived MessageType = "gift_received"
	// MessageTypeSettingsUpdate is sent when admin changes settings
	MessageTypeSettingsUpdate MessageType = "settings_update"
	// MessageTypeChannelCreated is sent when a channel is created
	MessageTypeChannelCreated MessageType = "channel_created"
	// MessageTypeChannelDeleted is sent when a channel is deleted
	MessageTypeChannelDeleted MessageType = "channel_deleted"
	// MessageTypeChannelsSynced is sent after a channel reconciliation
	MessageTypeChannelsSynced MessageType = "channels_synced"
	// MessageTypeMessagesSynced is sent after a message reconciliation
	MessageTypeMessagesSynced MessageType = "messages_synced"
	// MessageTypeUserBanned is sent when a user is banned from a channel
	MessageTypeUserBanned MessageType = "user_banned"
	// MessageTypeError is sent when an error occurs
	MessageTypeError MessageType = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// GiftPayload notifies a recipient about a received gift
type GiftPayload struct {
	Kind         string `json:"kind"` // eldruns, heart, rose, kiss
	FromUserID   string `json:"from_user_id"`
	FromUsername string `json:"from_username"`
	Amount       int    `json:"amount,omitempty"`
	RoseColor    string `json:"rose_color,omitempty"`
	Note         string `json:"note,omitempty"`
}

// PresencePayload carries a user status change
type PresencePayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// UserMessage is a message targeted at a specific user
type UserMessage struct {
	UserID  string
	Message []byte
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by user ID
	clients map[string]*Client

	// All clients for broadcast
	allClients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast to all clients
	broadcast chan []byte

	// Send to specific user
	sendToUser chan *UserMessage

	metrics *Metrics

	mutex sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		allClients: make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		sendToUser: make(chan *UserMessage),
		metrics:    metrics,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.userID] = client
			h.allClients[client] = true
			h.mutex.Unlock()
			h.metrics.IncClients(1)
			log.Printf("WebSocket: Client connected - %s (%s)", client.userID, client.username)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.allClients[client]; ok {
				delete(h.allClients, client)
				delete(h.clients, client.userID)
				close(client.send)
				h.metrics.IncClients(-1)
				log.Printf("WebSocket: Client disconnected - %s (%s)", client.userID, client.username)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			// Write lock: slow clients are evicted from the maps inline
			h.mutex.Lock()
			for client := range h.allClients {
				select {
				case client.send <- message:
				default:
					// Client send buffer full, close connection
					close(client.send)
					delete(h.allClients, client)
					delete(h.clients, client.userID)
					h.metrics.IncDrops()
				}
			}
			h.mutex.Unlock()

		case userMsg := <-h.sendToUser:
			h.mutex.Lock()
			if client, ok := h.clients[userMsg.UserID]; ok {
				select {
				case client.send <- userMsg.Message:
				default:
					// Client send buffer full
					close(client.send)
					delete(h.allClients, client)
					delete(h.clients, client.userID)
					h.metrics.IncDrops()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// GetConnectedUserCount returns the number of connected clients
func (h *Hub) GetConnectedUserCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.allClients)
}

// IsUserConnected checks if a specific user is connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) broadcastMessage(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("WebSocket: Failed to marshal %s message: %v", msgType, err)
		return
	}
	h.metrics.IncBroadcasts(string(msgType))
	h.broadcast <- data
}

// BroadcastChatMessage sends a new chat message to all clients
func (h *Hub) BroadcastChatMessage(msg *models.Message) {
	h.broadcastMessage(MessageTypeChatMessage, msg)
}

// BroadcastMessageEdited sends an edited message to all clients
func (h *Hub) BroadcastMessageEdited(msg *models.Message) {
	h.broadcastMessage(MessageTypeMessageEdited, msg)
}

// BroadcastMessageDeleted notifies all clients that a message was deleted
func (h *Hub) BroadcastMessageDeleted(messageID, channelID string) {
	h.broadcastMessage(MessageTypeMessageDeleted, map[string]string{
		"message_id": messageID,
		"channel_id": channelID,
	})
}

// BroadcastMessagePinned sends a pin state change to all clients
func (h *Hub) BroadcastMessagePinned(msg *models.Message) {
	h.broadcastMessage(MessageTypeMessagePinned, msg)
}

// BroadcastReactionUpdate sends the updated reaction state of a message
func (h *Hub) BroadcastReactionUpdate(msg *models.Message) {
	h.broadcastMessage(MessageTypeReactionUpdate, msg)
}

// BroadcastPresence sends a user status change to all clients
func (h *Hub) BroadcastPresence(userID, status string) {
	h.broadcastMessage(MessageTypePresenceUpdate, PresencePayload{
		UserID: userID,
		Status: status,
	})
}

// BroadcastSettingsUpdate sends the new admin settings to all clients
func (h *Hub) BroadcastSettingsUpdate(settings models.AdminSettings) {
	h.broadcastMessage(MessageTypeSettingsUpdate, settings)
}

// BroadcastChannelCreated announces a new channel to all clients
func (h *Hub) BroadcastChannelCreated(ch *models.Channel) {
	h.broadcastMessage(MessageTypeChannelCreated, ch)
}

// BroadcastChannelDeleted announces a channel removal to all clients
func (h *Hub) BroadcastChannelDeleted(channelID string) {
	h.broadcastMessage(MessageTypeChannelDeleted, map[string]string{"channel_id": channelID})
}

// BroadcastChannelsSynced announces a completed channel reconciliation
func (h *Hub) BroadcastChannelsSynced(count int) {
	h.broadcastMessage(MessageTypeChannelsSynced, map[string]int{"channel_count": count})
}

// BroadcastMessagesSynced announces a completed message reconciliation
func (h *Hub) BroadcastMessagesSynced(channelID string, count int) {
	h.broadcastMessage(MessageTypeMessagesSynced, map[string]interface{}{
		"channel_id":    channelID,
		"message_count": count,
	})
}

// BroadcastUserBanned notifies all clients that a user was banned
func (h *Hub) BroadcastUserBanned(channelID, userID string) {
	h.broadcastMessage(MessageTypeUserBanned, map[string]string{
		"channel_id": channelID,
		"user_id":    userID,
	})
}

// NotifyGiftReceived sends a gift notification to the recipient only
func (h *Hub) NotifyGiftReceived(toUserID string, payload *GiftPayload) {
	data, err := json.Marshal(Message{Type: MessageTypeGiftReceived, Payload: payload})
	if err != nil {
		log.Printf("WebSocket: Failed to marshal gift notification: %v", err)
		return
	}
	log.Printf("WebSocket: Sending gift_received notification to user %s (connected: %v)", toUserID, h.IsUserConnected(toUserID))
	h.sendToUser <- &UserMessage{
		UserID:  toUserID,
		Message: data,
	}
}
