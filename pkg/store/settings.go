package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Well-known setting keys
const (
	SettingOpenAIAPIKey = "openai_api_key"
)

// SettingsStore persists per-user settings as a key/value table
type SettingsStore struct {
	db *sql.DB
}

// NewSettingsStore creates a new settings store
func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value of a user-scoped setting
func (s *SettingsStore) Get(ctx context.Context, userID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT setting_value FROM user_settings
		WHERE user_id = $1 AND setting_key = $2`,
		userID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// Set writes a user-scoped setting, replacing any existing value
func (s *SettingsStore) Set(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, setting_key, setting_value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, setting_key)
		DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = EXCLUDED.updated_at`,
		userID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// Delete removes a user-scoped setting
func (s *SettingsStore) Delete(ctx context.Context, userID, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_settings WHERE user_id = $1 AND setting_key = $2`,
		userID, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}
