package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"german-butchery/internal/domain"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
)

// SettingRepository stores site settings as JSON values keyed by name
type SettingRepository interface {
	List(ctx context.Context) ([]*domain.Setting, error)
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error)
	Delete(ctx context.Context, key string) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT setting_key, setting_value, updated_at FROM site_settings ORDER BY setting_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := []*domain.Setting{}
	for rows.Next() {
		setting := &domain.Setting{}
		var raw []byte
		if err := rows.Scan(&setting.Key, &raw, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		setting.Value = json.RawMessage(raw)
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return settings, nil
}

func (r *settingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	setting := &domain.Setting{}
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT setting_key, setting_value, updated_at FROM site_settings WHERE setting_key = $1`, key).
		Scan(&setting.Key, &raw, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	setting.Value = json.RawMessage(raw)
	return setting, nil
}

// Upsert inserts the key or replaces its value
func (r *settingRepository) Upsert(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error) {
	setting := &domain.Setting{Key: key, Value: value}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO site_settings (setting_key, setting_value)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value
		RETURNING updated_at`, key, string(value)).Scan(&setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return setting, nil
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM site_settings WHERE setting_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}
