package store

import (
	"sort"

	"github.com/eldrun-online/community-hub/backend/models"
)

// AddUser registers a user in the directory, replacing any existing entry
// with the same id
func (s *Store) AddUser(u *models.ChatUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Badges == nil {
		u.Badges = []string{}
	}
	s.users[u.ID] = u
}

// User returns the user with the given id
func (s *Store) User(id string) (*models.ChatUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Users returns all users sorted by username
func (s *Store) Users() []*models.ChatUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ChatUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// SetStatus updates a user's presence status and status message
func (s *Store) SetStatus(id string, status models.UserStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	u.StatusMessage = message
	return nil
}

// Snapshot returns the author snapshot for a user, frozen at call time
func (s *Store) Snapshot(id string) (models.AuthorSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.AuthorSnapshot{}, false
	}
	badges := make([]string, len(u.Badges))
	copy(badges, u.Badges)
	return models.AuthorSnapshot{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Badges:      badges,
	}, true
}

// MarkRead moves the user's read marker to the end of the channel's log
func (s *Store) MarkRead(userID, channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lastRead[userID]; !ok {
		s.lastRead[userID] = make(map[string]int)
	}
	s.lastRead[userID][channelID] = len(s.messages[channelID])
}

// UnreadCounts returns the per-channel unread message counts for a user
func (s *Store) UnreadCounts(userID string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.channels))
	read := s.lastRead[userID]
	for _, ch := range s.channels {
		total := len(s.messages[ch.ID])
		seen := 0
		if read != nil {
			seen = read[ch.ID]
		}
		if seen > total {
			// A full-replace sync can shrink the log below the marker
			seen = total
		}
		out[ch.ID] = total - seen
	}
	return out
}
