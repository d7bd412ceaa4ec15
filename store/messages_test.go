package store

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/eldrun-online/community-hub/backend/models"
)

func newChannelStore(t *testing.T) (*Store, *models.Channel) {
	t.Helper()
	s := New()
	ch, err := s.CreateChannel(&models.CreateChannelRequest{Name: "General"}, "owner")
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	return s, ch
}

func TestAppendOrder(t *testing.T) {
	s, ch := newChannelStore(t)

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		if _, err := s.Append(ch.ID, Draft{Content: c}); err != nil {
			t.Fatalf("append %q: %v", c, err)
		}
	}

	msgs := s.ChannelMessages(ch.ID)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, c := range contents {
		if msgs[i].Content != c {
			t.Fatalf("position %d: expected %q, got %q", i, c, msgs[i].Content)
		}
	}

	got, _ := s.Channel(ch.ID)
	if got.MessageCount != 3 {
		t.Fatalf("message count not bumped: %d", got.MessageCount)
	}
}

func TestAppendStampsDefaults(t *testing.T) {
	s, ch := newChannelStore(t)

	msg, err := s.Append(ch.ID, Draft{Content: "hi"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if msg.ID == "" {
		t.Fatalf("expected generated id")
	}
	if msg.Type != models.MessageText {
		t.Fatalf("expected text default, got %q", msg.Type)
	}
	if msg.Attachments == nil || msg.Reactions == nil {
		t.Fatalf("expected empty slices, not nil")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatalf("expected created_at stamp")
	}
}

func TestAppendUnknownChannel(t *testing.T) {
	s := New()
	if _, err := s.Append("missing", Draft{Content: "hi"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditStampsTime(t *testing.T) {
	s, ch := newChannelStore(t)
	msg, _ := s.Append(ch.ID, Draft{Content: "orignal"})

	edited, err := s.Edit(msg.ID, "original")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Content != "original" {
		t.Fatalf("content not replaced: %q", edited.Content)
	}
	if edited.EditedAt == nil {
		t.Fatalf("expected edited_at stamp")
	}
}

func TestSoftDeleteKeepsReplyTarget(t *testing.T) {
	s, ch := newChannelStore(t)
	target, _ := s.Append(ch.ID, Draft{Content: "delete me"})

	ref, ok := s.ReplyRefFor(target.ID)
	if !ok {
		t.Fatalf("expected reply ref")
	}
	_, _ = s.Append(ch.ID, Draft{Content: "replying", ReplyTo: ref})

	deleted, err := s.SoftDelete(target.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.IsDeleted || deleted.Content != models.TombstoneContent {
		t.Fatalf("expected tombstone, got %+v", deleted)
	}

	// The record survives so the reply still resolves
	if _, ok := s.Message(target.ID); !ok {
		t.Fatalf("deleted message should remain resolvable")
	}
	if len(s.ChannelMessages(ch.ID)) != 2 {
		t.Fatalf("log length should not shrink on soft delete")
	}
}

func TestReplyRefSnippetTruncates(t *testing.T) {
	s, ch := newChannelStore(t)
	long := strings.Repeat("a", 200)
	msg, _ := s.Append(ch.ID, Draft{Content: long})

	ref, ok := s.ReplyRefFor(msg.ID)
	if !ok {
		t.Fatalf("expected reply ref")
	}
	if len(ref.Snippet) != 80 {
		t.Fatalf("expected 80-char snippet, got %d", len(ref.Snippet))
	}
}

func TestReplyRefSnippetKeepsRunesIntact(t *testing.T) {
	s, ch := newChannelStore(t)
	long := strings.Repeat("é", 200)
	msg, _ := s.Append(ch.ID, Draft{Content: long})

	ref, ok := s.ReplyRefFor(msg.ID)
	if !ok {
		t.Fatalf("expected reply ref")
	}
	if !utf8.ValidString(ref.Snippet) {
		t.Fatalf("snippet must not split a rune: %q", ref.Snippet)
	}
	if n := utf8.RuneCountInString(ref.Snippet); n != 80 {
		t.Fatalf("expected 80 runes, got %d", n)
	}
}

func TestReactionIdempotence(t *testing.T) {
	s, ch := newChannelStore(t)
	msg, _ := s.Append(ch.ID, Draft{Content: "react to me"})

	if _, err := s.AddReaction(msg.ID, "🔥", "u1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddReaction(msg.ID, "🔥", "u1"); err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	got, _ := s.Message(msg.ID)
	if len(got.Reactions) != 1 || got.Reactions[0].Count != 1 {
		t.Fatalf("repeat add should be a no-op: %+v", got.Reactions)
	}

	_, _ = s.AddReaction(msg.ID, "🔥", "u2")
	got, _ = s.Message(msg.ID)
	if got.Reactions[0].Count != 2 {
		t.Fatalf("expected count 2, got %d", got.Reactions[0].Count)
	}

	if _, err := s.RemoveReaction(msg.ID, "🔥", "u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = s.Message(msg.ID)
	if got.Reactions[0].Count != 1 || got.Reactions[0].UserIDs[0] != "u2" {
		t.Fatalf("wrong participant removed: %+v", got.Reactions)
	}

	// Last participant gone drops the emoji entry
	_, _ = s.RemoveReaction(msg.ID, "🔥", "u2")
	got, _ = s.Message(msg.ID)
	if len(got.Reactions) != 0 {
		t.Fatalf("expected empty reaction set, got %+v", got.Reactions)
	}

	// Removing a reaction that was never added is a no-op
	if _, err := s.RemoveReaction(msg.ID, "💀", "u3"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestTogglePin(t *testing.T) {
	s, ch := newChannelStore(t)
	msg, _ := s.Append(ch.ID, Draft{Content: "pin me"})

	pinned, _ := s.TogglePin(msg.ID)
	if !pinned.IsPinned {
		t.Fatalf("expected pinned")
	}
	unpinned, _ := s.TogglePin(msg.ID)
	if unpinned.IsPinned {
		t.Fatalf("expected unpinned")
	}
}

func TestReplaceMessagesIsFullOverwrite(t *testing.T) {
	s, ch := newChannelStore(t)
	local, _ := s.Append(ch.ID, Draft{Content: "optimistic local"})

	remote := []*models.Message{
		{ID: "r1", ChannelID: ch.ID, Content: "remote 1", CreatedAt: time.Now().Add(-time.Minute)},
		{ID: "r2", ChannelID: ch.ID, Content: "remote 2", CreatedAt: time.Now()},
	}
	if err := s.ReplaceMessages(ch.ID, remote); err != nil {
		t.Fatalf("replace: %v", err)
	}

	msgs := s.ChannelMessages(ch.ID)
	if len(msgs) != 2 {
		t.Fatalf("expected exactly the remote page, got %d messages", len(msgs))
	}
	if msgs[0].ID != "r1" || msgs[1].ID != "r2" {
		t.Fatalf("page order must be preserved as received: %q, %q", msgs[0].ID, msgs[1].ID)
	}
	if _, ok := s.Message(local.ID); ok {
		t.Fatalf("local message not echoed by the server should be gone")
	}

	got, _ := s.Channel(ch.ID)
	if got.MessageCount != 2 {
		t.Fatalf("message count should track the replaced log: %d", got.MessageCount)
	}

	if err := s.ReplaceMessages("missing", remote); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown channel, got %v", err)
	}
}
