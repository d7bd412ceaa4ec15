package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/eldrun-online/community-hub/backend/database"
	"github.com/eldrun-online/community-hub/backend/models"
)

// SettingsRepository persists the admin settings singleton
type SettingsRepository struct{}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Load returns the persisted settings, or nil when none have been saved yet
func (r *SettingsRepository) Load() (*models.AdminSettings, error) {
	var raw string
	err := database.DB.QueryRow(`SELECT settings FROM admin_settings WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin settings: %w", err)
	}

	settings := &models.AdminSettings{}
	if err := json.Unmarshal([]byte(raw), settings); err != nil {
		return nil, fmt.Errorf("failed to decode admin settings: %w", err)
	}
	return settings, nil
}

// Save writes the settings singleton (with retry for SQLITE_BUSY)
func (r *SettingsRepository) Save(settings *models.AdminSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode admin settings: %w", err)
	}

	return database.WithRetry(func() error {
		_, err := database.DB.Exec(`
			INSERT INTO admin_settings (id, settings, updated_at)
			VALUES (1, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET settings = excluded.settings, updated_at = CURRENT_TIMESTAMP`,
			string(raw),
		)
		if err != nil {
			return fmt.Errorf("failed to save admin settings: %w", err)
		}
		return nil
	})
}
