package store

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eldrun-online/community-hub/backend/models"
)

// ListChannels returns all known channels in registry order
func (s *Store) ListChannels() []*models.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Channel returns the channel with the given id
func (s *Store) Channel(id string) (*models.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channelIndex[id]
	return ch, ok
}

// CreateChannel validates the request, applies permissive capability defaults
// and registers the channel together with its empty message log. The
// registry entry and the message log are always created in the same step.
func (s *Store) CreateChannel(req *models.CreateChannelRequest, createdBy string) (*models.Channel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	chType := models.ChannelType(req.Type)
	switch chType {
	case models.ChannelPublic, models.ChannelPrivate, models.ChannelVIP,
		models.ChannelGame, models.ChannelClan, models.ChannelVoice:
	default:
		chType = models.ChannelPublic
	}

	maxUsers := req.MaxUsers
	if maxUsers <= 0 {
		maxUsers = 200
	}

	ch := &models.Channel{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		Type:        chType,
		Icon:        req.Icon,
		Color:       req.Color,
		MinLevel:    req.MinLevel,
		VIPOnly:     req.VIPOnly,
		MaxUsers:    maxUsers,
		SlowMode:    req.SlowMode,
		// Capability flags default permissive
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
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}

	s.mu.Lock()
	s.channels = append(s.channels, ch)
	s.channelIndex[ch.ID] = ch
	s.messages[ch.ID] = []*models.Message{}
	s.mu.Unlock()

	return ch, nil
}

// UpdateChannel merges non-nil patch fields into the channel
func (s *Store) UpdateChannel(id string, patch *models.UpdateChannelRequest) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channelIndex[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Name != nil {
		ch.Name = *patch.Name
	}
	if patch.Description != nil {
		ch.Description = *patch.Description
	}
	if patch.Icon != nil {
		ch.Icon = *patch.Icon
	}
	if patch.Color != nil {
		ch.Color = *patch.Color
	}
	if patch.IsLocked != nil {
		ch.IsLocked = *patch.IsLocked
	}
	if patch.InviteOnly != nil {
		ch.InviteOnly = *patch.InviteOnly
	}
	if patch.MinLevel != nil {
		ch.MinLevel = *patch.MinLevel
	}
	if patch.MinPlaytime != nil {
		ch.MinPlaytime = *patch.MinPlaytime
	}
	if patch.VIPOnly != nil {
		ch.VIPOnly = *patch.VIPOnly
	}
	if patch.MaxUsers != nil {
		ch.MaxUsers = *patch.MaxUsers
	}
	if patch.SlowMode != nil {
		ch.SlowMode = *patch.SlowMode
	}
	if patch.AllowImages != nil {
		ch.AllowImages = *patch.AllowImages
	}
	if patch.AllowGifs != nil {
		ch.AllowGifs = *patch.AllowGifs
	}
	if patch.AllowVoice != nil {
		ch.AllowVoice = *patch.AllowVoice
	}
	if patch.AllowLinks != nil {
		ch.AllowLinks = *patch.AllowLinks
	}
	if patch.AllowEldruns != nil {
		ch.AllowEldruns = *patch.AllowEldruns
	}
	if patch.AllowGifts != nil {
		ch.AllowGifts = *patch.AllowGifts
	}
	if patch.AllowRoses != nil {
		ch.AllowRoses = *patch.AllowRoses
	}
	if patch.WordFilter != nil {
		ch.WordFilter = *patch.WordFilter
	}
	if patch.AutoModEnabled != nil {
		ch.AutoModEnabled = *patch.AutoModEnabled
	}

	return ch, nil
}

// DeleteChannel removes a channel and cascades its message log. Both are
// dropped in the same critical section so replies never dangle across the
// registry/log boundary.
func (s *Store) DeleteChannel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.channelIndex[id]; !ok {
		return ErrNotFound
	}

	delete(s.channelIndex, id)
	delete(s.messages, id)
	for i, ch := range s.channels {
		if ch.ID == id {
			s.channels = append(s.channels[:i], s.channels[i+1:]...)
			break
		}
	}
	if s.currentID == id {
		s.currentID = ""
		if len(s.channels) > 0 {
			s.currentID = s.channels[0].ID
		}
	}
	return nil
}

// SetCurrent marks a channel as the active one for the session
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channelIndex[id]; !ok {
		return ErrNotFound
	}
	s.currentID = id
	return nil
}

// CurrentChannelID returns the active channel id, empty if none selected
func (s *Store) CurrentChannelID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// JoinChannel increments the channel's user count, enforcing max_users
func (s *Store) JoinChannel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channelIndex[id]
	if !ok {
		return ErrNotFound
	}
	if ch.MaxUsers > 0 && ch.UserCount >= ch.MaxUsers {
		return ErrChannelFull
	}
	ch.UserCount++
	return nil
}

// LeaveChannel decrements the channel's user count, never below zero
func (s *Store) LeaveChannel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channelIndex[id]
	if !ok {
		return ErrNotFound
	}
	if ch.UserCount > 0 {
		ch.UserCount--
	}
	return nil
}

// ReplaceChannels swaps the whole registry for the authoritative remote set.
// The current selection is preserved if it survives the replacement,
// otherwise the first remote channel becomes current. Message logs for
// channels unknown to the new set are dropped; logs for surviving channels
// are kept until the next message sync overwrites them.
func (s *Store) ReplaceChannels(channels []*models.Channel) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels = channels
	s.channelIndex = make(map[string]*models.Channel, len(channels))
	for _, ch := range channels {
		s.channelIndex[ch.ID] = ch
		if _, ok := s.messages[ch.ID]; !ok {
			s.messages[ch.ID] = []*models.Message{}
		}
	}
	for id := range s.messages {
		if _, ok := s.channelIndex[id]; !ok {
			delete(s.messages, id)
		}
	}

	if _, ok := s.channelIndex[s.currentID]; !ok {
		s.currentID = ""
		if len(channels) > 0 {
			s.currentID = channels[0].ID
		}
	}
	return s.currentID
}

// BanFromChannel adds a user to the channel's ban list
func (s *Store) BanFromChannel(channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channelIndex[channelID]
	if !ok {
		return ErrNotFound
	}
	if !ch.HasBanned(userID) {
		ch.BannedUsers = append(ch.BannedUsers, userID)
	}
	return nil
}

// UnbanFromChannel removes a user from the channel's ban list
func (s *Store) UnbanFromChannel(channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channelIndex[channelID]
	if !ok {
		return ErrNotFound
	}
	for i, id := range ch.BannedUsers {
		if id == userID {
			ch.BannedUsers = append(ch.BannedUsers[:i], ch.BannedUsers[i+1:]...)
			break
		}
	}
	return nil
}

// MuteInChannel adds a user to the channel's mute list
func (s *Store) MuteInChannel(channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channelIndex[channelID]
	if !ok {
		return ErrNotFound
	}
	if !ch.HasMuted(userID) {
		ch.MutedUsers = append(ch.MutedUsers, userID)
	}
	return nil
}

// UnmuteInChannel removes a user from the channel's mute list
func (s *Store) UnmuteInChannel(channelID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channelIndex[channelID]
	if !ok {
		return ErrNotFound
	}
	for i, id := range ch.MutedUsers {
		if id == userID {
			ch.MutedUsers = append(ch.MutedUsers[:i], ch.MutedUsers[i+1:]...)
			break
		}
	}
	return nil
}
