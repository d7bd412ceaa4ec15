package store

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/eldrun-online/community-hub/backend/models"
)

// Draft carries the caller-supplied parts of a new message. The store stamps
// identity, timestamps and mutable defaults on append.
type Draft struct {
	Author      models.AuthorSnapshot
	Content     string
	Type        models.MessageType
	Attachments []string
	Gift        *models.GiftPayload
	ReplyTo     *models.ReplyRef
	IsHighlight bool
}

// Append stores a new message at the end of the channel's log. This is the
// optimistic local write path: it never blocks on the network and never
// fails because of remote-service state.
func (s *Store) Append(channelID string, draft Draft) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channelIndex[channelID]
	if !ok {
		return nil, ErrNotFound
	}

	msgType := draft.Type
	if msgType == "" {
		msgType = models.MessageText
	}
	attachments := draft.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	msg := &models.Message{
		ID:          uuid.NewString(),
		ChannelID:   channelID,
		Author:      draft.Author,
		Content:     draft.Content,
		Type:        msgType,
		Attachments: attachments,
		Gift:        draft.Gift,
		Reactions:   []models.Reaction{},
		ReplyTo:     draft.ReplyTo,
		CreatedAt:   time.Now(),
		IsHighlight: draft.IsHighlight,
	}

	s.messages[channelID] = append(s.messages[channelID], msg)
	ch.MessageCount++
	ch.LastActivity = msg.CreatedAt

	return msg, nil
}

// ChannelMessages returns the channel's messages in append order
func (s *Store) ChannelMessages(channelID string) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[channelID]
	out := make([]*models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// findMessage looks a message up across all channels. Edit and delete are
// global operations; callers hold only the message id.
func (s *Store) findMessage(messageID string) *models.Message {
	for _, msgs := range s.messages {
		for _, m := range msgs {
			if m.ID == messageID {
				return m
			}
		}
	}
	return nil
}

// Message returns a message by id, searching across all channels
func (s *Store) Message(messageID string) (*models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.findMessage(messageID)
	return m, m != nil
}

// Edit replaces a message's content and stamps the edit time. Authorization
// is the caller's responsibility; the store only mutates.
func (s *Store) Edit(messageID, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMessage(messageID)
	if m == nil {
		return nil, ErrNotFound
	}
	now := time.Now()
	m.Content = content
	m.EditedAt = &now
	return m, nil
}

// SoftDelete tombstones a message. The record and its id remain so replies
// referencing it keep a resolvable target.
func (s *Store) SoftDelete(messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMessage(messageID)
	if m == nil {
		return nil, ErrNotFound
	}
	m.IsDeleted = true
	m.Content = models.TombstoneContent
	return m, nil
}

// TogglePin flips the pin flag and returns the new state
func (s *Store) TogglePin(messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMessage(messageID)
	if m == nil {
		return nil, ErrNotFound
	}
	m.IsPinned = !m.IsPinned
	return m, nil
}

// AddReaction records that the user reacted with the emoji. Adding an
// already-present reaction is a no-op.
func (s *Store) AddReaction(messageID, emoji, userID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMessage(messageID)
	if m == nil {
		return nil, ErrNotFound
	}

	for i := range m.Reactions {
		r := &m.Reactions[i]
		if r.Emoji != emoji {
			continue
		}
		for _, id := range r.UserIDs {
			if id == userID {
				return m, nil
			}
		}
		r.UserIDs = append(r.UserIDs, userID)
		r.Count = len(r.UserIDs)
		return m, nil
	}

	m.Reactions = append(m.Reactions, models.Reaction{
		Emoji:   emoji,
		UserIDs: []string{userID},
		Count:   1,
	})
	return m, nil
}

// RemoveReaction withdraws the user's reaction. The emoji entry disappears
// once its participant set is empty.
func (s *Store) RemoveReaction(messageID, emoji, userID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMessage(messageID)
	if m == nil {
		return nil, ErrNotFound
	}

	for i := range m.Reactions {
		r := &m.Reactions[i]
		if r.Emoji != emoji {
			continue
		}
		for j, id := range r.UserIDs {
			if id == userID {
				r.UserIDs = append(r.UserIDs[:j], r.UserIDs[j+1:]...)
				r.Count = len(r.UserIDs)
				break
			}
		}
		if len(r.UserIDs) == 0 {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
		}
		return m, nil
	}
	return m, nil
}

// ReplyRefFor builds a reply reference with a display snippet of the target
func (s *Store) ReplyRefFor(messageID string) (*models.ReplyRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.findMessage(messageID)
	if m == nil {
		return nil, false
	}
	return &models.ReplyRef{ID: m.ID, Snippet: TruncateRunes(m.Content, 80)}, true
}

// TruncateRunes shortens s to at most n runes without splitting a rune
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ReplaceMessages overwrites the channel's entire log with the authoritative
// remote page. This is a full replace, not a merge: optimistic local
// messages survive only if the server already echoes them back. The page is
// stored as received; the server guarantees time order and the store must
// not re-sort.
func (s *Store) ReplaceMessages(channelID string, msgs []*models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.channelIndex[channelID]
	if !ok {
		return ErrNotFound
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	s.messages[channelID] = msgs
	ch.MessageCount = len(msgs)
	if len(msgs) > 0 {
		ch.LastActivity = msgs[len(msgs)-1].CreatedAt
	}
	return nil
}
