package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/services"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// MessageHandler handles message store requests
type MessageHandler struct {
	store   *store.Store
	modSvc  *services.ModerationService
	syncSvc *services.SyncService
	wsHub   *websocket.Hub
	metrics *websocket.Metrics
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(st *store.Store, modSvc *services.ModerationService, syncSvc *services.SyncService, wsHub *websocket.Hub, metrics *websocket.Metrics) *MessageHandler {
	return &MessageHandler{
		store:   st,
		modSvc:  modSvc,
		syncSvc: syncSvc,
		wsHub:   wsHub,
		metrics: metrics,
	}
}

// GetMessages returns a channel's messages in append order
// GET /api/v1/channels/:id/messages
func (h *MessageHandler) GetMessages(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Channel(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": h.store.ChannelMessages(id)})
}

// Create posts a new message to a channel. Moderation gates the write; the
// append itself is the optimistic local path and the remote forward happens
// asynchronously afterwards.
// POST /api/v1/channels/:id/messages
func (h *MessageHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	user, ok := h.store.User(claims.UserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	}

	ch, ok := h.store.Channel(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	var req models.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	if verdict := h.modSvc.CheckPost(ch, user, content); !verdict.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": verdict.Reason})
		return
	}

	var replyTo *models.ReplyRef
	if req.ReplyToID != "" {
		if ref, ok := h.store.ReplyRefFor(req.ReplyToID); ok {
			replyTo = ref
		}
	}

	snapshot, ok := h.store.Snapshot(user.ID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	}

	msg, err := h.store.Append(ch.ID, store.Draft{
		Author:      snapshot,
		Content:     content,
		Type:        models.MessageType(req.Type),
		Attachments: req.Attachments,
		ReplyTo:     replyTo,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	h.modSvc.RecordPost(user.ID, ch.ID)
	h.store.AwardLoyaltyPoints(user.ID, h.store.Settings().LoyaltyPointsPerMsg)
	h.metrics.IncMessages("user")
	h.wsHub.BroadcastChatMessage(msg)

	// Remote delivery and re-sync happen off the request path; the local
	// append above never waits on the network.
	if h.syncSvc != nil {
		go h.syncSvc.ForwardMessage(context.Background(), msg)
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Edit replaces a message's content. Only the author or staff may edit.
// PUT /api/v1/messages/:id
func (h *MessageHandler) Edit(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, ok := h.store.Message(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if msg.Author.ID != claims.UserID && !models.UserRole(claims.Role).IsStaff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own messages"})
		return
	}

	updated, err := h.store.Edit(msg.ID, strings.TrimSpace(req.Content))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	h.wsHub.BroadcastMessageEdited(updated)
	c.JSON(http.StatusOK, gin.H{"message": updated})
}

// Delete tombstones a message. Only the author or staff may delete.
// DELETE /api/v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	msg, ok := h.store.Message(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if msg.Author.ID != claims.UserID && !models.UserRole(claims.Role).IsStaff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own messages"})
		return
	}

	deleted, err := h.store.SoftDelete(msg.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	h.wsHub.BroadcastMessageDeleted(deleted.ID, deleted.ChannelID)
	c.JSON(http.StatusOK, gin.H{"message": deleted})
}

// Pin toggles a message's pin flag (staff only, enforced by routing)
// POST /api/v1/messages/:id/pin
func (h *MessageHandler) Pin(c *gin.Context) {
	msg, err := h.store.TogglePin(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	h.wsHub.BroadcastMessagePinned(msg)
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// AddReaction records the caller's emoji reaction on a message
// POST /api/v1/messages/:id/reactions
func (h *MessageHandler) AddReaction(c *gin.Context) {
	h.reaction(c, h.store.AddReaction)
}

// RemoveReaction withdraws the caller's emoji reaction from a message
// DELETE /api/v1/messages/:id/reactions
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	h.reaction(c, h.store.RemoveReaction)
}

func (h *MessageHandler) reaction(c *gin.Context, op func(messageID, emoji, userID string) (*models.Message, error)) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	user, ok := h.store.User(claims.UserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	}

	var req models.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, ok := h.store.Message(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if ch, ok := h.store.Channel(msg.ChannelID); ok {
		if verdict := h.modSvc.CheckReact(ch, user); !verdict.Allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": verdict.Reason})
			return
		}
	}

	updated, err := op(msg.ID, req.Emoji, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	h.wsHub.BroadcastReactionUpdate(updated)
	c.JSON(http.StatusOK, gin.H{"message": updated})
}
