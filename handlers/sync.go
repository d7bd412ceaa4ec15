package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/services"
	"github.com/eldrun-online/community-hub/backend/store"
)

// SyncHandler exposes reconciliation status and manual triggers
type SyncHandler struct {
	store   *store.Store
	syncSvc *services.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(st *store.Store, syncSvc *services.SyncService) *SyncHandler {
	return &SyncHandler{
		store:   st,
		syncSvc: syncSvc,
	}
}

// Status reports the current mode and last sync error, if any
// GET /api/v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	mode := "local"
	if h.store.RemoteAttached() {
		mode = "remote"
	}

	lastError := ""
	if h.syncSvc != nil {
		if err := h.syncSvc.LastError(); err != nil {
			lastError = err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":            mode,
		"current_channel": h.store.CurrentChannelID(),
		"last_error":      lastError,
	})
}

// Trigger forces a channel reconciliation (admin only, enforced by routing)
// POST /api/v1/admin/sync
func (h *SyncHandler) Trigger(c *gin.Context) {
	if h.syncSvc == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No remote backend configured"})
		return
	}

	if err := h.syncSvc.SyncChannels(c.Request.Context()); err != nil {
		// Absorbed at this boundary: the store stays usable in local mode
		c.JSON(http.StatusOK, gin.H{"mode": "local", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": "remote"})
}
