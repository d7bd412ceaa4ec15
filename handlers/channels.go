package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/services"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// ChannelHandler handles channel registry requests
type ChannelHandler struct {
	store   *store.Store
	modSvc  *services.ModerationService
	syncSvc *services.SyncService
	wsHub   *websocket.Hub
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(st *store.Store, modSvc *services.ModerationService, syncSvc *services.SyncService, wsHub *websocket.Hub) *ChannelHandler {
	return &ChannelHandler{
		store:   st,
		modSvc:  modSvc,
		syncSvc: syncSvc,
		wsHub:   wsHub,
	}
}

// List returns all known channels
// GET /api/v1/channels
func (h *ChannelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"channels": h.store.ListChannels(),
		"current":  h.store.CurrentChannelID(),
	})
}

// Create creates a new channel
// POST /api/v1/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	settings := h.store.Settings()
	if !settings.AllowCustomChannels && !models.UserRole(claims.Role).IsStaff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Custom channels are disabled"})
		return
	}

	var req models.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ch, err := h.store.CreateChannel(&req, claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.wsHub.BroadcastChannelCreated(ch)
	c.JSON(http.StatusCreated, gin.H{"channel": ch})
}

// Update merges a patch into a channel
// PATCH /api/v1/channels/:id
func (h *ChannelHandler) Update(c *gin.Context) {
	var req models.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ch, err := h.store.UpdateChannel(c.Param("id"), &req)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": ch})
}

// Delete removes a channel and its message log
// DELETE /api/v1/channels/:id
func (h *ChannelHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteChannel(id); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	h.wsHub.BroadcastChannelDeleted(id)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Select marks a channel as the session's active one. In remote mode this
// also pulls the channel's latest messages.
// POST /api/v1/channels/:id/select
func (h *ChannelHandler) Select(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.SetCurrent(id); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	if h.store.RemoteAttached() && h.syncSvc != nil {
		go func() {
			_ = h.syncSvc.SyncMessages(context.Background(), id)
		}()
	}

	c.JSON(http.StatusOK, gin.H{"current": id})
}

// Join adds the caller to a channel, enforcing access policy and capacity
// POST /api/v1/channels/:id/join
func (h *ChannelHandler) Join(c *gin.Context) {
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

	if verdict := h.modSvc.CheckJoin(ch, user); !verdict.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": verdict.Reason})
		return
	}

	if err := h.store.JoinChannel(ch.ID); err != nil {
		if errors.Is(err, store.ErrChannelFull) {
			c.JSON(http.StatusConflict, gin.H{"error": "Channel is full"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": ch.ID})
}

// Leave removes the caller from a channel
// POST /api/v1/channels/:id/leave
func (h *ChannelHandler) Leave(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.LeaveChannel(id); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"left": id})
}

// ModerationActionRequest names the target of a ban/mute action
type ModerationActionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Ban adds a user to the channel's ban list
// POST /api/v1/channels/:id/ban
func (h *ChannelHandler) Ban(c *gin.Context) {
	h.moderationAction(c, h.store.BanFromChannel, true)
}

// Unban removes a user from the channel's ban list
// POST /api/v1/channels/:id/unban
func (h *ChannelHandler) Unban(c *gin.Context) {
	h.moderationAction(c, h.store.UnbanFromChannel, false)
}

// Mute adds a user to the channel's mute list
// POST /api/v1/channels/:id/mute
func (h *ChannelHandler) Mute(c *gin.Context) {
	h.moderationAction(c, h.store.MuteInChannel, false)
}

// Unmute removes a user from the channel's mute list
// POST /api/v1/channels/:id/unmute
func (h *ChannelHandler) Unmute(c *gin.Context) {
	h.moderationAction(c, h.store.UnmuteInChannel, false)
}

func (h *ChannelHandler) moderationAction(c *gin.Context, action func(channelID, userID string) error, announce bool) {
	var req ModerationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	channelID := c.Param("id")
	if err := action(channelID, req.UserID); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	if announce {
		h.wsHub.BroadcastUserBanned(channelID, req.UserID)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
