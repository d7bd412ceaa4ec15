package services

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/eldrun-online/community-hub/backend/models"
	"github.com/eldrun-online/community-hub/backend/store"
)

// Verdict is the outcome of a moderation check. Reason is human-readable and
// set only when the action was rejected.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Verdict             { return Verdict{Allowed: true} }
func deny(reason string) Verdict { return Verdict{Allowed: false, Reason: reason} }

// ModerationService evaluates policy for mutating actions before they reach
// the message store. It keeps no authoritative state of its own; the rate
// limiters and slow-mode clocks it tracks are derived from posts it has
// itself approved.
type ModerationService struct {
	store *store.Store

	mu       sync.Mutex
	limiters map[string]*userLimiter
	lastPost map[string]map[string]time.Time // userID -> channelID -> last approved post
}

type userLimiter struct {
	limiter *rate.Limiter
	perMin  int
}

// NewModerationService creates a moderation service reading policy from the
// given state container
func NewModerationService(st *store.Store) *ModerationService {
	return &ModerationService{
		store:    st,
		limiters: make(map[string]*userLimiter),
		lastPost: make(map[string]map[string]time.Time),
	}
}

// CheckPost evaluates whether a user may post the given content to the
// channel. Checks run in a fixed order and the first failure wins.
// Moderators and admins bypass content filters but never bans.
func (m *ModerationService) CheckPost(ch *models.Channel, u *models.ChatUser, content string) Verdict {
	settings := m.store.Settings()

	if !settings.ChatEnabled {
		return deny("chat is currently disabled")
	}
	if settings.MaintenanceMode {
		return deny("chat is in maintenance mode")
	}

	if u.IsBanned || ch.HasBanned(u.ID) {
		return deny("you are banned from this channel")
	}
	if u.IsMuted || ch.HasMuted(u.ID) {
		return deny("you are muted in this channel")
	}

	staff := u.Role.IsStaff()

	if !staff {
		if ch.MinLevel > 0 && u.Level < ch.MinLevel {
			return deny(fmt.Sprintf("level %d required for this channel", ch.MinLevel))
		}
		if ch.MinPlaytime > 0 && u.PlaytimeHours < ch.MinPlaytime {
			return deny(fmt.Sprintf("%d hours of playtime required for this channel", ch.MinPlaytime))
		}
		if settings.MinLevelToChat > 0 && u.Level < settings.MinLevelToChat {
			return deny(fmt.Sprintf("level %d required to chat", settings.MinLevelToChat))
		}
		if settings.MinPlaytimeToChat > 0 && u.PlaytimeHours < settings.MinPlaytimeToChat {
			return deny(fmt.Sprintf("%d hours of playtime required to chat", settings.MinPlaytimeToChat))
		}

		if ch.SlowMode > 0 {
			if wait := m.slowModeWait(u.ID, ch.ID, ch.SlowMode); wait > 0 {
				return deny(fmt.Sprintf("slow mode: wait %d more seconds", wait))
			}
		}
	}

	if settings.MaxMessageLength > 0 && utf8.RuneCountInString(content) > settings.MaxMessageLength {
		return deny(fmt.Sprintf("message exceeds %d characters", settings.MaxMessageLength))
	}

	if !staff && settings.GlobalRateLimit > 0 {
		if !m.allowRate(u.ID, settings.GlobalRateLimit) {
			return deny("you are sending messages too quickly")
		}
	}

	if !staff && ch.AutoModEnabled {
		if word := firstFilteredWord(content, settings.WordFilter, ch.WordFilter); word != "" {
			return deny("message contains a filtered word")
		}
		if settings.CapsLockThreshold > 0 && capsRatio(content) > settings.CapsLockThreshold {
			return deny("too many capital letters")
		}
	}

	return allow()
}

// CheckGift evaluates whether a user may send a gift into the channel. A
// gift posts a companion message, so channel bans and mutes apply the same
// way they do to a regular post.
func (m *ModerationService) CheckGift(ch *models.Channel, u *models.ChatUser) Verdict {
	settings := m.store.Settings()
	if !settings.ChatEnabled {
		return deny("chat is currently disabled")
	}
	if settings.MaintenanceMode {
		return deny("chat is in maintenance mode")
	}
	if u.IsBanned || ch.HasBanned(u.ID) {
		return deny("you are banned from this channel")
	}
	if u.IsMuted || ch.HasMuted(u.ID) {
		return deny("you are muted in this channel")
	}
	return allow()
}

// CheckReact evaluates whether a user may react in the channel
func (m *ModerationService) CheckReact(ch *models.Channel, u *models.ChatUser) Verdict {
	settings := m.store.Settings()
	if !settings.ChatEnabled {
		return deny("chat is currently disabled")
	}
	if settings.MaintenanceMode {
		return deny("chat is in maintenance mode")
	}
	if u.IsBanned || ch.HasBanned(u.ID) {
		return deny("you are banned from this channel")
	}
	return allow()
}

// CheckJoin evaluates whether a user may join the channel
func (m *ModerationService) CheckJoin(ch *models.Channel, u *models.ChatUser) Verdict {
	settings := m.store.Settings()
	if !settings.ChatEnabled {
		return deny("chat is currently disabled")
	}
	if settings.MaintenanceMode {
		return deny("chat is in maintenance mode")
	}
	if u.IsBanned || ch.HasBanned(u.ID) {
		return deny("you are banned from this channel")
	}
	if ch.IsLocked && !u.Role.IsStaff() {
		return deny("this channel is locked")
	}
	if ch.VIPOnly && !u.Role.IsStaff() {
		switch u.Role {
		case models.RoleVIPBronze, models.RoleVIPSilver, models.RoleVIPGold:
		default:
			return deny("this channel is for VIP members only")
		}
	}
	if !u.Role.IsStaff() {
		if ch.MinLevel > 0 && u.Level < ch.MinLevel {
			return deny(fmt.Sprintf("level %d required for this channel", ch.MinLevel))
		}
		if ch.MinPlaytime > 0 && u.PlaytimeHours < ch.MinPlaytime {
			return deny(fmt.Sprintf("%d hours of playtime required for this channel", ch.MinPlaytime))
		}
	}
	return allow()
}

// RecordPost notes an approved post for the slow-mode clock
func (m *ModerationService) RecordPost(userID, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lastPost[userID]; !ok {
		m.lastPost[userID] = make(map[string]time.Time)
	}
	m.lastPost[userID][channelID] = time.Now()
}

// slowModeWait returns the remaining wait in whole seconds, 0 if clear
func (m *ModerationService) slowModeWait(userID, channelID string, slowMode int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	byChannel, ok := m.lastPost[userID]
	if !ok {
		return 0
	}
	last, ok := byChannel[channelID]
	if !ok {
		return 0
	}
	elapsed := time.Since(last)
	window := time.Duration(slowMode) * time.Second
	if elapsed >= window {
		return 0
	}
	return int((window - elapsed).Seconds()) + 1
}

// allowRate consumes one token from the user's global rate limiter. The
// limiter is rebuilt if the configured rate changed since it was created.
func (m *ModerationService) allowRate(userID string, perMin int) bool {
	m.mu.Lock()
	ul, ok := m.limiters[userID]
	if !ok || ul.perMin != perMin {
		ul = &userLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60.0), perMin),
			perMin:  perMin,
		}
		m.limiters[userID] = ul
	}
	m.mu.Unlock()
	return ul.limiter.Allow()
}

// firstFilteredWord returns the first filter entry found in the content,
// checking the global list then the channel list
func firstFilteredWord(content string, global, channel []string) string {
	lower := strings.ToLower(content)
	for _, w := range global {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return w
		}
	}
	for _, w := range channel {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return w
		}
	}
	return ""
}

// capsRatio returns the fraction of letters that are upper-case. Short
// messages are exempt.
func capsRatio(content string) float64 {
	letters, upper := 0, 0
	for _, r := range content {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 10 {
		return 0
	}
	return float64(upper) / float64(letters)
}
