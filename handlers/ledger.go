package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/services"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// LedgerHandler handles currency and affection transfers. Every gift runs
// through moderation before the transfer, and the gift message is created
// only after the transfer has succeeded, so a failed transfer never leaves a
// misleading gift message in the channel.
type LedgerHandler struct {
	store  *store.Store
	modSvc *services.ModerationService
	wsHub  *websocket.Hub
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(st *store.Store, modSvc *services.ModerationService, wsHub *websocket.Hub) *LedgerHandler {
	return &LedgerHandler{
		store:  st,
		modSvc: modSvc,
		wsHub:  wsHub,
	}
}

// GiftEldrunsRequest is the request body for a currency gift
type GiftEldrunsRequest struct {
	ToUserID  string `json:"to_user_id" binding:"required"`
	ChannelID string `json:"channel_id" binding:"required"`
	Amount    int    `json:"amount" binding:"required,min=1"`
}

// GiftRequest is the request body for heart and kiss gifts
type GiftRequest struct {
	ToUserID  string `json:"to_user_id" binding:"required"`
	ChannelID string `json:"channel_id" binding:"required"`
}

// RoseRequest is the request body for a rose gift
type RoseRequest struct {
	ToUserID  string `json:"to_user_id" binding:"required"`
	ChannelID string `json:"channel_id" binding:"required"`
	Color     string `json:"color"`
	Note      string `json:"note" binding:"max=120"`
}

// GiftEldruns transfers currency and posts the companion gift message
// POST /api/v1/gifts/eldruns
func (h *LedgerHandler) GiftEldruns(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req GiftEldrunsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	settings := h.store.Settings()
	if !settings.AllowGifting {
		c.JSON(http.StatusForbidden, gin.H{"error": "Gifting is disabled"})
		return
	}

	ch, recipient, ok := h.giftTargets(c, claims.UserID, req.ChannelID, req.ToUserID)
	if !ok {
		return
	}
	if !ch.AllowEldruns || !ch.AllowGifts {
		c.JSON(http.StatusForbidden, gin.H{"error": "Gifts are not allowed in this channel"})
		return
	}

	if !h.store.TransferEldruns(claims.UserID, req.ToUserID, req.Amount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient eldruns"})
		return
	}

	msg := h.appendGiftMessage(claims.UserID, ch.ID, models.MessageGift,
		fmt.Sprintf("gifted %d eldruns to %s", req.Amount, recipient.DisplayName),
		&models.GiftPayload{
			ToUserID: recipient.ID,
			ToName:   recipient.DisplayName,
			Amount:   req.Amount,
		})

	h.wsHub.NotifyGiftReceived(recipient.ID, &websocket.GiftPayload{
		Kind:         "eldruns",
		FromUserID:   claims.UserID,
		FromUsername: claims.Username,
		Amount:       req.Amount,
	})

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg})
}

// GiveHeart points the caller's heart at the recipient
// POST /api/v1/gifts/hearts
func (h *LedgerHandler) GiveHeart(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req GiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !h.store.Settings().AllowHearts {
		c.JSON(http.StatusForbidden, gin.H{"error": "Hearts are disabled"})
		return
	}

	ch, recipient, ok := h.giftTargets(c, claims.UserID, req.ChannelID, req.ToUserID)
	if !ok {
		return
	}

	if !h.store.GiveHeart(claims.UserID, req.ToUserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	msg := h.appendGiftMessage(claims.UserID, ch.ID, models.MessageHeart,
		fmt.Sprintf("gave their heart to %s", recipient.DisplayName),
		&models.GiftPayload{ToUserID: recipient.ID, ToName: recipient.DisplayName})

	h.wsHub.NotifyGiftReceived(recipient.ID, &websocket.GiftPayload{
		Kind:         "heart",
		FromUserID:   claims.UserID,
		FromUsername: claims.Username,
	})

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg})
}

// SendRose spends a rose from the caller's inventory
// POST /api/v1/gifts/roses
func (h *LedgerHandler) SendRose(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req RoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !h.store.Settings().AllowRoses {
		c.JSON(http.StatusForbidden, gin.H{"error": "Roses are disabled"})
		return
	}

	ch, recipient, ok := h.giftTargets(c, claims.UserID, req.ChannelID, req.ToUserID)
	if !ok {
		return
	}
	if !ch.AllowRoses {
		c.JSON(http.StatusForbidden, gin.H{"error": "Roses are not allowed in this channel"})
		return
	}

	if !h.store.SendRose(claims.UserID, req.ToUserID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No roses left to send"})
		return
	}

	color := req.Color
	if color == "" {
		color = "red"
	}
	msg := h.appendGiftMessage(claims.UserID, ch.ID, models.MessageRose,
		fmt.Sprintf("sent a %s rose to %s", color, recipient.DisplayName),
		&models.GiftPayload{
			ToUserID:  recipient.ID,
			ToName:    recipient.DisplayName,
			RoseColor: color,
			Note:      req.Note,
		})

	h.wsHub.NotifyGiftReceived(recipient.ID, &websocket.GiftPayload{
		Kind:         "rose",
		FromUserID:   claims.UserID,
		FromUsername: claims.Username,
		RoseColor:    color,
		Note:         req.Note,
	})

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg})
}

// SendKiss bumps the recipient's kiss counter
// POST /api/v1/gifts/kisses
func (h *LedgerHandler) SendKiss(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req GiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !h.store.Settings().AllowKisses {
		c.JSON(http.StatusForbidden, gin.H{"error": "Kisses are disabled"})
		return
	}

	ch, recipient, ok := h.giftTargets(c, claims.UserID, req.ChannelID, req.ToUserID)
	if !ok {
		return
	}

	if !h.store.SendKiss(claims.UserID, req.ToUserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	msg := h.appendGiftMessage(claims.UserID, ch.ID, models.MessageKiss,
		fmt.Sprintf("blew a kiss to %s", recipient.DisplayName),
		&models.GiftPayload{ToUserID: recipient.ID, ToName: recipient.DisplayName})

	h.wsHub.NotifyGiftReceived(recipient.ID, &websocket.GiftPayload{
		Kind:         "kiss",
		FromUserID:   claims.UserID,
		FromUsername: claims.Username,
	})

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg})
}

// giftTargets resolves the channel and recipient of a gift and runs the
// sender through moderation. A banned or muted sender never reaches the
// transfer or the companion message.
func (h *LedgerHandler) giftTargets(c *gin.Context, fromUserID, channelID, toUserID string) (*models.Channel, *models.ChatUser, bool) {
	ch, ok := h.store.Channel(channelID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return nil, nil, false
	}
	sender, ok := h.store.User(fromUserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, nil, false
	}
	recipient, ok := h.store.User(toUserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, nil, false
	}
	if verdict := h.modSvc.CheckGift(ch, sender); !verdict.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": verdict.Reason})
		return nil, nil, false
	}
	return ch, recipient, true
}

// appendGiftMessage posts the companion message for a succeeded transfer
func (h *LedgerHandler) appendGiftMessage(fromID, channelID string, msgType models.MessageType, content string, gift *models.GiftPayload) *models.Message {
	snapshot, ok := h.store.Snapshot(fromID)
	if !ok {
		return nil
	}
	msg, err := h.store.Append(channelID, store.Draft{
		Author:      snapshot,
		Content:     content,
		Type:        msgType,
		Gift:        gift,
		IsHighlight: true,
	})
	if err != nil {
		return nil
	}
	h.wsHub.BroadcastChatMessage(msg)
	return msg
}
