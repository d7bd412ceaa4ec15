package repository

import (
	"database/sql"
	"fmt"

	"github.com/eldrun-online/community-hub/backend/database"
	"github.com/eldrun-online/community-hub/backend/models"
)

// PreferencesRepository persists per-user UI preferences
type PreferencesRepository struct{}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository() *PreferencesRepository {
	return &PreferencesRepository{}
}

// Get returns a user's preferences, falling back to defaults when the user
// has never saved any
func (r *PreferencesRepository) Get(userID string) (*models.UserPreferences, error) {
	prefs := &models.UserPreferences{}
	var sound, notifications, compact int
	err := database.DB.QueryRow(`
		SELECT user_id, sound_enabled, notifications, compact_mode, font_size, theme, updated_at
		FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&prefs.UserID, &sound, &notifications, &compact, &prefs.FontSize, &prefs.Theme, &prefs.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs.SoundEnabled = sound != 0
	prefs.Notifications = notifications != 0
	prefs.CompactMode = compact != 0
	return prefs, nil
}

// Save upserts a user's preferences (with retry for SQLITE_BUSY)
func (r *PreferencesRepository) Save(prefs *models.UserPreferences) error {
	return database.WithRetry(func() error {
		_, err := database.DB.Exec(`
			INSERT INTO user_preferences (user_id, sound_enabled, notifications, compact_mode, font_size, theme, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				sound_enabled = excluded.sound_enabled,
				notifications = excluded.notifications,
				compact_mode = excluded.compact_mode,
				font_size = excluded.font_size,
				theme = excluded.theme,
				updated_at = CURRENT_TIMESTAMP`,
			prefs.UserID, boolToInt(prefs.SoundEnabled), boolToInt(prefs.Notifications),
			boolToInt(prefs.CompactMode), prefs.FontSize, prefs.Theme,
		)
		if err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
