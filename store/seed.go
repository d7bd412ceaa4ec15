package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eldrun-online/community-hub/backend/models"
)

// SeedDemo populates the container with the default channels and a set of
// simulated users so that a deployment without a backend still behaves like
// a living community. Chat state is never persisted locally, so this runs on
// every startup in local mode.
func (s *Store) SeedDemo() {
	type seedChannel struct {
		name, desc, icon, color string
		chType                  models.ChannelType
		vipOnly                 bool
		slowMode                int
	}
	channels := []seedChannel{
		{"General", "Talk about anything", "💬", "#4f8cff", models.ChannelPublic, false, 0},
		{"Trade", "Buy, sell and haggle", "⚖️", "#ffb347", models.ChannelPublic, false, 5},
		{"Help", "Ask the community", "❓", "#7bd88f", models.ChannelPublic, false, 0},
		{"VIP Lounge", "Members only", "👑", "#e3b341", models.ChannelVIP, true, 0},
	}

	for _, c := range channels {
		ch, err := s.CreateChannel(&models.CreateChannelRequest{
			Name:        c.name,
			Description: c.desc,
			Type:        string(c.chType),
			Icon:        c.icon,
			Color:       c.color,
			SlowMode:    c.slowMode,
		}, "system")
		if err != nil {
			continue
		}
		if c.vipOnly {
			_, _ = s.UpdateChannel(ch.ID, &models.UpdateChannelRequest{VIPOnly: &c.vipOnly})
		}
	}

	type seedUser struct {
		name    string
		level   int
		role    models.UserRole
		eldruns int
		roses   int
	}
	users := []seedUser{
		{"Thornwick", 42, models.RoleAdmin, 5000, 10},
		{"Lyralei", 38, models.RoleModerator, 2300, 8},
		{"Grimshade", 29, models.RoleVIPGold, 12000, 25},
		{"Emberlyn", 21, models.RoleUser, 480, 3},
		{"Drustan", 17, models.RoleUser, 150, 1},
		{"Maevis", 33, models.RoleVIPSilver, 3900, 12},
		{"Korrak", 11, models.RoleUser, 75, 0},
		{"Seraphyne", 26, models.RoleVIPBronze, 1650, 6},
	}

	for i, u := range users {
		s.AddUser(&models.ChatUser{
			ID:            uuid.NewString(),
			Username:      u.name,
			DisplayName:   u.name,
			AvatarURL:     fmt.Sprintf("/avatars/%s.png", u.name),
			Level:         u.level,
			Experience:    u.level * 1200,
			PlaytimeHours: u.level * 9,
			Status:        models.StatusOnline,
			Role:          u.role,
			LoyaltyTier:   "bronze",
			Badges:        []string{},
			Eldruns:       u.eldruns,
			Roses:         u.roses,
			IsSimulated:   true,
			CreatedAt:     time.Now().AddDate(0, -(i + 1), 0),
		})
	}

	if chs := s.ListChannels(); len(chs) > 0 {
		_ = s.SetCurrent(chs[0].ID)
	}
}

// SimulatedUsers returns the users seeded for demo mode
func (s *Store) SimulatedUsers() []*models.ChatUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ChatUser
	for _, u := range s.users {
		if u.IsSimulated {
			out = append(out, u)
		}
	}
	return out
}
