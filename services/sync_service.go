package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/remoteapi"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

// RemoteClient is the slice of the backend API the sync service needs.
// Tests substitute a fake.
type RemoteClient interface {
	ListChannels(ctx context.Context) ([]remoteapi.Channel, error)
	ListMessages(ctx context.Context, channelID string, limit int) ([]remoteapi.Message, error)
	CreateMessage(ctx context.Context, msg remoteapi.CreateMessageRequest) error
}

// SyncService reconciles the local state container against the authoritative
// backend. It owns the Local/Remote mode switch: the store starts in local
// mode and enters remote mode once a channel listing succeeds.
type SyncService struct {
	store    *store.Store
	client   RemoteClient
	wsHub    *websocket.Hub
	metrics  *websocket.Metrics
	pageSize int
	interval time.Duration

	ticker *time.Ticker
	done   chan bool

	mu      sync.Mutex
	started bool
	lastErr error
}

// NewSyncService creates a sync service polling at the given interval with
// the given message page size
func NewSyncService(st *store.Store, client RemoteClient, wsHub *websocket.Hub, metrics *websocket.Metrics, interval time.Duration, pageSize int) *SyncService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &SyncService{
		store:    st,
		client:   client,
		wsHub:    wsHub,
		metrics:  metrics,
		pageSize: pageSize,
		interval: interval,
		done:     make(chan bool),
	}
}

// LastError returns the most recent sync failure, nil when healthy
func (s *SyncService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *SyncService) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.metrics.IncSyncErrors()
	}
}

// SyncChannels requests the canonical channel list and full-replaces the
// local registry on success. An empty result still enters remote mode with a
// cleared registry. On failure the store stays in (or reverts to) local mode
// and local demo data is left untouched.
func (s *SyncService) SyncChannels(ctx context.Context) error {
	remote, err := s.client.ListChannels(ctx)
	if err != nil {
		log.Printf("Sync: channel listing failed, staying in local mode: %v", err)
		s.recordError(err)
		s.store.SetRemoteAttached(false)
		return err
	}
	s.recordError(nil)

	channels := make([]*models.Channel, 0, len(remote))
	for _, rc := range remote {
		channels = append(channels, mapRemoteChannel(rc))
	}

	selected := s.store.ReplaceChannels(channels)
	s.store.SetRemoteAttached(true)
	log.Printf("Sync: entered remote mode with %d channels", len(channels))

	if s.wsHub != nil {
		s.wsHub.BroadcastChannelsSynced(len(channels))
	}

	if selected != "" {
		if err := s.SyncMessages(ctx, selected); err != nil {
			return err
		}
	}
	return nil
}

// SyncMessages fetches the latest page for a channel and overwrites the
// local log with it. Full replace, not a merge: optimistic local messages
// survive only if the server already echoes them back.
func (s *SyncService) SyncMessages(ctx context.Context, channelID string) error {
	remote, err := s.client.ListMessages(ctx, channelID, s.pageSize)
	if err != nil {
		log.Printf("Sync: message sync for channel %s failed: %v", channelID, err)
		s.recordError(err)
		return err
	}
	s.recordError(nil)

	msgs := make([]*models.Message, 0, len(remote))
	for _, rm := range remote {
		msgs = append(msgs, mapRemoteMessage(rm))
	}

	if err := s.store.ReplaceMessages(channelID, msgs); err != nil {
		return err
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastMessagesSynced(channelID, len(msgs))
	}
	return nil
}

// ForwardMessage delivers a locally appended message to the backend and then
// re-syncs the channel so the authoritative copy (with the server-assigned
// id) replaces the optimistic one. Only user-authored, non-empty text
// messages are forwarded, and only while remote mode is active.
func (s *SyncService) ForwardMessage(ctx context.Context, msg *models.Message) {
	if !s.store.RemoteAttached() {
		return
	}
	if msg.Type != models.MessageText || msg.Content == "" {
		return
	}
	if u, ok := s.store.User(msg.Author.ID); !ok || u.IsSimulated {
		return
	}

	req := remoteapi.CreateMessageRequest{
		ChannelID:   msg.ChannelID,
		Content:     msg.Content,
		Type:        string(msg.Type),
		Attachments: msg.Attachments,
	}
	if msg.ReplyTo != nil {
		req.ReplyToID = msg.ReplyTo.ID
	}

	if err := s.client.CreateMessage(ctx, req); err != nil {
		log.Printf("Sync: outbound message delivery failed: %v", err)
		s.recordError(err)
		return
	}
	_ = s.SyncMessages(ctx, msg.ChannelID)
}

// Start begins the polling loop that keeps the selected channel fresh while
// remote mode is active. Starting twice is a no-op.
func (s *SyncService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ticker = time.NewTicker(s.interval)
	s.mu.Unlock()

	go s.poll()
	log.Println("Sync service started")
}

// Stop halts the polling loop
func (s *SyncService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	ticker := s.ticker
	s.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	s.done <- true
	log.Println("Sync service stopped")
}

func (s *SyncService) poll() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.tick()
		}
	}
}

func (s *SyncService) tick() {
	if !s.store.RemoteAttached() {
		return
	}
	channelID := s.store.CurrentChannelID()
	if channelID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()
	_ = s.SyncMessages(ctx, channelID)
}

func mapRemoteChannel(rc remoteapi.Channel) *models.Channel {
	chType := models.ChannelType(rc.Type)
	switch chType {
	case models.ChannelPublic, models.ChannelPrivate, models.ChannelVIP,
		models.ChannelGame, models.ChannelClan, models.ChannelVoice:
	default:
		chType = models.ChannelPublic
	}
	return &models.Channel{
		ID:           rc.ID,
		Name:         rc.Name,
		Description:  rc.Description,
		Type:         chType,
		Icon:         rc.Icon,
		Color:        rc.Color,
		IsLocked:     rc.IsLocked,
		MaxUsers:     200,
		UserCount:    rc.MemberCount,
		SlowMode:     rc.SlowMode,
		AllowImages:  true,
		AllowGifs:    true,
		AllowVoice:   true,
		AllowLinks:   true,
		AllowEldruns: true,
		AllowGifts:   true,
		AllowRoses:   true,
		Moderators:   []string{},
		BannedUsers:  []string{},
		MutedUsers:   []string{},
		WordFilter:   []string{},
		MessageCount: rc.MessageCount,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}
}

func mapRemoteMessage(rm remoteapi.Message) *models.Message {
	msgType := models.MessageType(rm.Type)
	if msgType == "" {
		msgType = models.MessageText
	}

	reactions := make([]models.Reaction, 0, len(rm.Reactions))
	for emoji, userIDs := range rm.Reactions {
		reactions = append(reactions, models.Reaction{
			Emoji:   emoji,
			UserIDs: userIDs,
			Count:   len(userIDs),
		})
	}

	var replyTo *models.ReplyRef
	if rm.ReplyTo != nil {
		replyTo = &models.ReplyRef{
			ID:      rm.ReplyTo.ID,
			Snippet: store.TruncateRunes(rm.ReplyTo.Content, 80),
		}
	}

	attachments := rm.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	authorID := rm.Author.ID
	if authorID == "" {
		authorID = rm.AuthorID
	}

	msg := &models.Message{
		ID:        rm.ID,
		ChannelID: rm.ChannelID,
		Author: models.AuthorSnapshot{
			ID:          authorID,
			Username:    rm.Author.Username,
			DisplayName: rm.Author.DisplayName,
			Role:        models.UserRole(rm.Author.Role),
			Badges:      []string{},
		},
		Content:     rm.Content,
		Type:        msgType,
		Attachments: attachments,
		Reactions:   reactions,
		ReplyTo:     replyTo,
		CreatedAt:   rm.CreatedAt,
		IsDeleted:   rm.IsDeleted,
		IsPinned:    rm.IsPinned,
	}
	if rm.IsEdited && rm.UpdatedAt != nil {
		msg.EditedAt = rm.UpdatedAt
	}
	return msg
}
