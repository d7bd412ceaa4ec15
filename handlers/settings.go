package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/repository"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// SettingsHandler handles the admin settings surface
type SettingsHandler struct {
	store        *store.Store
	settingsRepo *repository.SettingsRepository
	wsHub        *websocket.Hub
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(st *store.Store, settingsRepo *repository.SettingsRepository, wsHub *websocket.Hub) *SettingsHandler {
	return &SettingsHandler{
		store:        st,
		settingsRepo: settingsRepo,
		wsHub:        wsHub,
	}
}

// GetSettings returns the current settings
// GET /api/v1/admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Settings())
}

// UpdateSettings applies a settings patch, persists the result and
// broadcasts it to all connected clients
// PUT /api/v1/admin/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	merged := h.store.UpdateSettings(&req)

	if err := h.settingsRepo.Save(&merged); err != nil {
		log.Printf("Settings: failed to persist update: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	h.wsHub.BroadcastSettingsUpdate(merged)
	c.JSON(http.StatusOK, merged)
}

// GetChatStatus returns the non-admin view of global chat availability
// GET /api/v1/chat-status
func (h *SettingsHandler) GetChatStatus(c *gin.Context) {
	settings := h.store.Settings()
	c.JSON(http.StatusOK, gin.H{
		"chat_enabled":     settings.ChatEnabled,
		"maintenance_mode": settings.MaintenanceMode,
	})
}
