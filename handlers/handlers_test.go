package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/services"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// fixture wires a store, a running hub and the handlers into a test router
// behind real JWT authentication
type fixture struct {
	store   *store.Store
	hub     *websocket.Hub
	jwt     *middleware.JWTService
	router  *gin.Engine
	channel *models.Channel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New()
	st.AddUser(&models.ChatUser{
		ID: "u1", Username: "anna", DisplayName: "Anna",
		Level: 10, PlaytimeHours: 100, Role: models.RoleUser,
		Eldruns: 100, Roses: 1,
	})
	st.AddUser(&models.ChatUser{
		ID: "u2", Username: "bella", DisplayName: "Bella",
		Level: 8, Role: models.RoleUser,
	})
	ch, err := st.CreateChannel(&models.CreateChannelRequest{Name: "General"}, "system")
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}

	hub := websocket.NewHub(nil)
	go hub.Run()

	modSvc := services.NewModerationService(st)
	jwtSvc := middleware.NewJWTService("test-secret", time.Hour)

	msgHandler := NewMessageHandler(st, modSvc, nil, hub, nil)
	ledgerHandler := NewLedgerHandler(st, modSvc, hub)
	chanHandler := NewChannelHandler(st, modSvc, nil, hub)

	r := gin.New()
	api := r.Group("/api/v1", middleware.AuthMiddleware(jwtSvc))
	api.GET("/channels", chanHandler.List)
	api.POST("/channels", chanHandler.Create)
	api.POST("/channels/:id/join", chanHandler.Join)
	api.GET("/channels/:id/messages", msgHandler.GetMessages)
	api.POST("/channels/:id/messages", msgHandler.Create)
	api.PUT("/messages/:id", msgHandler.Edit)
	api.DELETE("/messages/:id", msgHandler.Delete)
	api.POST("/messages/:id/reactions", msgHandler.AddReaction)
	api.POST("/gifts/eldruns", ledgerHandler.GiftEldruns)
	api.POST("/gifts/hearts", ledgerHandler.GiveHeart)
	api.POST("/gifts/roses", ledgerHandler.SendRose)
	api.POST("/gifts/kisses", ledgerHandler.SendKiss)

	return &fixture{store: st, hub: hub, jwt: jwtSvc, router: r, channel: ch}
}

// do performs an authenticated JSON request as the given user
func (f *fixture) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	u, ok := f.store.User(userID)
	if !ok {
		t.Fatalf("unknown test user %q", userID)
	}
	token, err := f.jwt.Generate(u)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}
