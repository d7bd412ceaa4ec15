package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// UserHandler handles user directory and presence requests
type UserHandler struct {
	store *store.Store
	wsHub *websocket.Hub
}

// NewUserHandler creates a new user handler
func NewUserHandler(st *store.Store, wsHub *websocket.Hub) *UserHandler {
	return &UserHandler{
		store: st,
		wsHub: wsHub,
	}
}

// GetAll returns the user directory
// GET /api/v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.store.Users()})
}

// GetByID returns a single user
// GET /api/v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, ok := h.store.User(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateStatus sets the caller's presence status
// PUT /api/v1/users/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	status := models.UserStatus(req.Status)
	if err := h.store.SetStatus(claims.UserID, status, req.StatusMessage); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	h.wsHub.BroadcastPresence(claims.UserID, req.Status)
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// UnreadCounts returns per-channel unread message counts for the caller
// GET /api/v1/notifications/unread
func (h *UserHandler) UnreadCounts(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	counts := h.store.UnreadCounts(claims.UserID)
	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{"unread": counts, "total": total})
}

// MarkRead moves the caller's read marker to the end of a channel's log
// POST /api/v1/channels/:id/read
func (h *UserHandler) MarkRead(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id := c.Param("id")
	if _, ok := h.store.Channel(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	h.store.MarkRead(claims.UserID, id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
