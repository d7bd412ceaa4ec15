package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/repository"
)

// PreferencesHandler handles per-user persisted preferences
type PreferencesHandler struct {
	prefsRepo *repository.PreferencesRepository
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(prefsRepo *repository.PreferencesRepository) *PreferencesHandler {
	return &PreferencesHandler{prefsRepo: prefsRepo}
}

// Get returns the caller's preferences
// GET /api/v1/preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	prefs, err := h.prefsRepo.Get(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// Update applies a preferences patch and persists the result
// PUT /api/v1/preferences
func (h *PreferencesHandler) Update(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	prefs, err := h.prefsRepo.Get(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	if req.SoundEnabled != nil {
		prefs.SoundEnabled = *req.SoundEnabled
	}
	if req.Notifications != nil {
		prefs.Notifications = *req.Notifications
	}
	if req.CompactMode != nil {
		prefs.CompactMode = *req.CompactMode
	}
	if req.FontSize != nil {
		prefs.FontSize = *req.FontSize
	}
	if req.Theme != nil {
		prefs.Theme = *req.Theme
	}

	if err := h.prefsRepo.Save(prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
