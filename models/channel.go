package models

import "time"

// ChannelType categorizes a channel
type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
	ChannelVIP     ChannelType = "vip"
	ChannelGame    ChannelType = "game"
	ChannelClan    ChannelType = "clan"
	ChannelVoice   ChannelType = "voice"
)

// Channel is a named, independently configured scope for messages
type Channel struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        ChannelType `json:"type"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`

	IsLocked    bool `json:"is_locked"`
	InviteOnly  bool `json:"invite_only"`
	MinLevel    int  `json:"min_level"`
	MinPlaytime int  `json:"min_playtime"`
	VIPOnly     bool `json:"vip_only"`

	MaxUsers  int `json:"max_users"`
	UserCount int `json:"user_count"`
	SlowMode  int `json:"slow_mode"` // minimum seconds between a single user's messages

	AllowImages  bool `json:"allow_images"`
	AllowGifs    bool `json:"allow_gifs"`
	AllowVoice   bool `json:"allow_voice"`
	AllowLinks   bool `json:"allow_links"`
	AllowEldruns bool `json:"allow_eldruns"`
	AllowGifts   bool `json:"allow_gifts"`
	AllowRoses   bool `json:"allow_roses"`

	Moderators  []string `json:"moderators"`
	BannedUsers []string `json:"banned_users"`
	MutedUsers  []string `json:"muted_users"`
	WordFilter  []string `json:"word_filter"`

	AutoModEnabled bool      `json:"auto_mod_enabled"`
	MessageCount   int       `json:"message_count"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`
}

// HasModerator reports whether the given user moderates this channel
func (c *Channel) HasModerator(userID string) bool {
	for _, id := range c.Moderators {
		if id == userID {
			return true
		}
	}
	return false
}

// HasBanned reports whether the given user is banned from this channel
func (c *Channel) HasBanned(userID string) bool {
	for _, id := range c.BannedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// HasMuted reports whether the given user is muted in this channel
func (c *Channel) HasMuted(userID string) bool {
	for _, id := range c.MutedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateChannelRequest is the request body for creating a channel
type CreateChannelRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=64"`
	Description string `json:"description" binding:"max=200"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	MinLevel    int    `json:"min_level"`
	VIPOnly     bool   `json:"vip_only"`
	MaxUsers    int    `json:"max_users"`
	SlowMode    int    `json:"slow_mode"`
}

// UpdateChannelRequest carries optional channel fields; nil means unchanged
type UpdateChannelRequest struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Icon           *string   `json:"icon"`
	Color          *string   `json:"color"`
	IsLocked       *bool     `json:"is_locked"`
	InviteOnly     *bool     `json:"invite_only"`
	MinLevel       *int      `json:"min_level"`
	MinPlaytime    *int      `json:"min_playtime"`
	VIPOnly        *bool     `json:"vip_only"`
	MaxUsers       *int      `json:"max_users"`
	SlowMode       *int      `json:"slow_mode"`
	AllowImages    *bool     `json:"allow_images"`
	AllowGifs      *bool     `json:"allow_gifs"`
	AllowVoice     *bool     `json:"allow_voice"`
	AllowLinks     *bool     `json:"allow_links"`
	AllowEldruns   *bool     `json:"allow_eldruns"`
	AllowGifts     *bool     `json:"allow_gifts"`
	AllowRoses     *bool     `json:"allow_roses"`
	WordFilter     *[]string `json:"word_filter"`
	AutoModEnabled *bool     `json:"auto_mod_enabled"`
}
