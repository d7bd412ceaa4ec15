package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// WebSocketHandler upgrades connections into the chat hub
type WebSocketHandler struct {
	wsHub    *websocket.Hub
	upgrader gorillaws.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler allowing the given origin
func NewWebSocketHandler(wsHub *websocket.Hub, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		wsHub: wsHub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// HandleConnection upgrades the request and attaches the client to the hub.
// The auth middleware has already validated the token query parameter.
// GET /api/v1/ws
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket: upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := websocket.NewClient(h.wsHub, conn, claims.UserID, claims.Username)
	client.Start()
}

// GetStatus returns hub connection stats
// GET /api/v1/ws/status
func (h *WebSocketHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": h.wsHub.GetConnectedUserCount(),
	})
}
