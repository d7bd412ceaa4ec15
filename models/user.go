package models

import "time"

// UserStatus is a user's presence state
type UserStatus string

const (
	StatusOnline    UserStatus = "online"
	StatusAway      UserStatus = "away"
	StatusBusy      UserStatus = "busy"
	StatusInvisible UserStatus = "invisible"
	StatusOffline   UserStatus = "offline"
)

// UserRole defines what a user is allowed to do
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
	RoleOwner     UserRole = "owner"
	RoleVIPBronze UserRole = "vip_bronze"
	RoleVIPSilver UserRole = "vip_silver"
	RoleVIPGold   UserRole = "vip_gold"
)

// IsStaff reports whether the role carries moderation powers
func (r UserRole) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin || r == RoleOwner
}

// ChatUser represents a participant in the chat system
type ChatUser struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	AvatarURL     string     `json:"avatar_url"`
	Level         int        `json:"level"`
	Experience    int        `json:"experience"`
	PlaytimeHours int        `json:"playtime_hours"`
	Status        UserStatus `json:"status"`
	StatusMessage string     `json:"status_message"`
	Role          UserRole   `json:"role"`
	LoyaltyTier   string     `json:"loyalty_tier"`
	LoyaltyPoints int        `json:"loyalty_points"`
	Badges        []string   `json:"badges"`

	// Eldrun (in-game currency) balance and lifetime counters.
	// Only the ledger mutates these.
	Eldruns         int `json:"eldruns"`
	EldrunsSent     int `json:"eldruns_sent"`
	EldrunsReceived int `json:"eldruns_received"`

	// Affection counters
	HeartGivenTo   string `json:"heart_given_to"` // single slot, last recipient wins
	HeartsReceived int    `json:"hearts_received"`
	Roses          int    `json:"roses"` // rose inventory available to send
	RosesReceived  int    `json:"roses_received"`
	KissesReceived int    `json:"kisses_received"`

	IsBanned bool `json:"is_banned"`
	IsMuted  bool `json:"is_muted"`

	// IsSimulated marks demo-mode principals driven by the presence
	// simulator rather than real sessions.
	IsSimulated bool      `json:"is_simulated"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserPreferences is the per-user persisted UI/notification state
type UserPreferences struct {
	UserID        string    `json:"user_id"`
	SoundEnabled  bool      `json:"sound_enabled"`
	Notifications bool      `json:"notifications"`
	CompactMode   bool      `json:"compact_mode"`
	FontSize      int       `json:"font_size"`
	Theme         string    `json:"theme"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preferences assigned to a user on first use
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:        userID,
		SoundEnabled:  true,
		Notifications: true,
		CompactMode:   false,
		FontSize:      14,
		Theme:         "dark",
	}
}

// UpdateStatusRequest is the request body for changing a user's status
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=online away busy invisible offline"`
	StatusMessage string `json:"status_message" binding:"max=120"`
}

// UpdatePreferencesRequest carries optional preference fields; nil means unchanged
type UpdatePreferencesRequest struct {
	SoundEnabled  *bool   `json:"sound_enabled"`
	Notifications *bool   `json:"notifications"`
	CompactMode   *bool   `json:"compact_mode"`
	FontSize      *int    `json:"font_size"`
	Theme         *string `json:"theme"`
}
