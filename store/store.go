package store

import (
	"errors"
	"sync"

	"github.com/eldrun-online/community-hub/backend/models"
)

// Sentinel errors returned by store operations
var (
	ErrNotFound            = errors.New("not found")
	ErrEmptyName           = errors.New("channel name cannot be empty")
	ErrChannelFull         = errors.New("channel is full")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Store is the shared in-memory state container: user directory, channel
// registry and per-channel message logs. It is created once at startup and
// injected into every component that reads or writes chat state.
//
// All mutations happen under a single mutex so that readers never observe a
// half-applied change (a currency transfer is either fully applied or not
// at all).
type Store struct {
	mu sync.RWMutex

	users        map[string]*models.ChatUser
	channels     []*models.Channel
	channelIndex map[string]*models.Channel
	messages     map[string][]*models.Message

	currentID string

	// lastRead[userID][channelID] = number of messages the user has seen
	lastRead map[string]map[string]int

	settings *models.AdminSettings

	// remoteAttached flips once the sync service reaches the backend.
	// The presence simulator checks it on every tick.
	remoteAttached bool
}

// New creates an empty state container with default admin settings
func New() *Store {
	return &Store{
		users:        make(map[string]*models.ChatUser),
		channelIndex: make(map[string]*models.Channel),
		messages:     make(map[string][]*models.Message),
		lastRead:     make(map[string]map[string]int),
		settings:     models.DefaultAdminSettings(),
	}
}

// SetRemoteAttached records whether an authoritative backend is reachable
func (s *Store) SetRemoteAttached(attached bool) {
	s.mu.Lock()
	s.remoteAttached = attached
	s.mu.Unlock()
}

// RemoteAttached reports whether an authoritative backend is reachable
func (s *Store) RemoteAttached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteAttached
}

// Settings returns a copy of the current admin settings
func (s *Store) Settings() models.AdminSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.settings
}

// SetSettings replaces the admin settings wholesale
func (s *Store) SetSettings(settings *models.AdminSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// UpdateSettings applies non-nil fields of the request to the current
// settings and returns the merged result
func (s *Store) UpdateSettings(req *models.UpdateSettingsRequest) models.AdminSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.settings
	if req.ChatEnabled != nil {
		c.ChatEnabled = *req.ChatEnabled
	}
	if req.MaintenanceMode != nil {
		c.MaintenanceMode = *req.MaintenanceMode
	}
	if req.MaxMessageLength != nil {
		c.MaxMessageLength = *req.MaxMessageLength
	}
	if req.GlobalRateLimit != nil {
		c.GlobalRateLimit = *req.GlobalRateLimit
	}
	if req.MinLevelToChat != nil {
		c.MinLevelToChat = *req.MinLevelToChat
	}
	if req.MinPlaytimeToChat != nil {
		c.MinPlaytimeToChat = *req.MinPlaytimeToChat
	}
	if req.WordFilter != nil {
		c.WordFilter = *req.WordFilter
	}
	if req.LinkAllowList != nil {
		c.LinkAllowList = *req.LinkAllowList
	}
	if req.AntiSpamEnabled != nil {
		c.AntiSpamEnabled = *req.AntiSpamEnabled
	}
	if req.AntiFloodEnabled != nil {
		c.AntiFloodEnabled = *req.AntiFloodEnabled
	}
	if req.CapsLockThreshold != nil {
		c.CapsLockThreshold = *req.CapsLockThreshold
	}
	if req.AllowDMs != nil {
		c.AllowDMs = *req.AllowDMs
	}
	if req.AllowCustomChannels != nil {
		c.AllowCustomChannels = *req.AllowCustomChannels
	}
	if req.AllowVoiceNotes != nil {
		c.AllowVoiceNotes = *req.AllowVoiceNotes
	}
	if req.AllowGifting != nil {
		c.AllowGifting = *req.AllowGifting
	}
	if req.AllowHearts != nil {
		c.AllowHearts = *req.AllowHearts
	}
	if req.AllowRoses != nil {
		c.AllowRoses = *req.AllowRoses
	}
	if req.AllowKisses != nil {
		c.AllowKisses = *req.AllowKisses
	}
	if req.MaxChannelsPerUser != nil {
		c.MaxChannelsPerUser = *req.MaxChannelsPerUser
	}
	if req.MaxDMsPerDay != nil {
		c.MaxDMsPerDay = *req.MaxDMsPerDay
	}
	if req.MaxGiftsPerDay != nil {
		c.MaxGiftsPerDay = *req.MaxGiftsPerDay
	}
	if req.VIPEldrunBonus != nil {
		c.VIPEldrunBonus = *req.VIPEldrunBonus
	}
	if req.LoyaltyPointsPerMsg != nil {
		c.LoyaltyPointsPerMsg = *req.LoyaltyPointsPerMsg
	}
	if req.LoyaltyTierBonus != nil {
		c.LoyaltyTierBonus = *req.LoyaltyTierBonus
	}

	return *c
}
