package models

// AdminSettings is the process-wide chat policy. It is initialized from
// defaults at startup, mutated only through the admin surface and persisted
// across sessions.
type AdminSettings struct {
	ChatEnabled     bool `json:"chat_enabled"`
	MaintenanceMode bool `json:"maintenance_mode"`

	MaxMessageLength  int `json:"max_message_length"`
	GlobalRateLimit   int `json:"global_rate_limit"` // messages per minute per user
	MinLevelToChat    int `json:"min_level_to_chat"`
	MinPlaytimeToChat int `json:"min_playtime_to_chat"`

	WordFilter    []string `json:"word_filter"`
	LinkAllowList []string `json:"link_allow_list"`

	AntiSpamEnabled   bool    `json:"anti_spam_enabled"`
	AntiFloodEnabled  bool    `json:"anti_flood_enabled"`
	CapsLockThreshold float64 `json:"caps_lock_threshold"` // fraction of upper-case letters tolerated

	AllowDMs            bool `json:"allow_dms"`
	AllowCustomChannels bool `json:"allow_custom_channels"`
	AllowVoiceNotes     bool `json:"allow_voice_notes"`
	AllowGifting        bool `json:"allow_gifting"`
	AllowHearts         bool `json:"allow_hearts"`
	AllowRoses          bool `json:"allow_roses"`
	AllowKisses         bool `json:"allow_kisses"`

	MaxChannelsPerUser int `json:"max_channels_per_user"`
	MaxDMsPerDay       int `json:"max_dms_per_day"`
	MaxGiftsPerDay     int `json:"max_gifts_per_day"`

	VIPEldrunBonus      int     `json:"vip_eldrun_bonus"` // percent bonus on received gifts for VIPs
	LoyaltyPointsPerMsg int     `json:"loyalty_points_per_msg"`
	LoyaltyTierBonus    float64 `json:"loyalty_tier_bonus"` // percent per tier
}

// DefaultAdminSettings returns the settings applied on first start
func DefaultAdminSettings() *AdminSettings {
	return &AdminSettings{
		ChatEnabled:         true,
		MaintenanceMode:     false,
		MaxMessageLength:    500,
		GlobalRateLimit:     20,
		MinLevelToChat:      0,
		MinPlaytimeToChat:   0,
		WordFilter:          []string{},
		LinkAllowList:       []string{},
		AntiSpamEnabled:     true,
		AntiFloodEnabled:    true,
		CapsLockThreshold:   0.7,
		AllowDMs:            true,
		AllowCustomChannels: true,
		AllowVoiceNotes:     true,
		AllowGifting:        true,
		AllowHearts:         true,
		AllowRoses:          true,
		AllowKisses:         true,
		MaxChannelsPerUser:  3,
		MaxDMsPerDay:        100,
		MaxGiftsPerDay:      25,
		VIPEldrunBonus:      10,
		LoyaltyPointsPerMsg: 1,
		LoyaltyTierBonus:    5,
	}
}

// UpdateSettingsRequest carries optional settings fields; nil means unchanged
type UpdateSettingsRequest struct {
	ChatEnabled         *bool     `json:"chat_enabled"`
	MaintenanceMode     *bool     `json:"maintenance_mode"`
	MaxMessageLength    *int      `json:"max_message_length"`
	GlobalRateLimit     *int      `json:"global_rate_limit"`
	MinLevelToChat      *int      `json:"min_level_to_chat"`
	MinPlaytimeToChat   *int      `json:"min_playtime_to_chat"`
	WordFilter          *[]string `json:"word_filter"`
	LinkAllowList       *[]string `json:"link_allow_list"`
	AntiSpamEnabled     *bool     `json:"anti_spam_enabled"`
	AntiFloodEnabled    *bool     `json:"anti_flood_enabled"`
	CapsLockThreshold   *float64  `json:"caps_lock_threshold"`
	AllowDMs            *bool     `json:"allow_dms"`
	AllowCustomChannels *bool     `json:"allow_custom_channels"`
	AllowVoiceNotes     *bool     `json:"allow_voice_notes"`
	AllowGifting        *bool     `json:"allow_gifting"`
	AllowHearts         *bool     `json:"allow_hearts"`
	AllowRoses          *bool     `json:"allow_roses"`
	AllowKisses         *bool     `json:"allow_kisses"`
	MaxChannelsPerUser  *int      `json:"max_channels_per_user"`
	MaxDMsPerDay        *int      `json:"max_dms_per_day"`
	MaxGiftsPerDay      *int      `json:"max_gifts_per_day"`
	VIPEldrunBonus      *int      `json:"vip_eldrun_bonus"`
	LoyaltyPointsPerMsg *int      `json:"loyalty_points_per_msg"`
	LoyaltyTierBonus    *float64  `json:"loyalty_tier_bonus"`
}
