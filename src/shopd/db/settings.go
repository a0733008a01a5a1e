package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// GetSetting returns the value stored under key, or ErrSettingNotFound
func (d *Database) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	query := fmt.Sprintf("SELECT value FROM settings WHERE key = %s", d.dialect.Placeholder(1))
	err := d.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSettingNotFound.WithMessagef("Setting %q not found", key)
	}
	if err != nil {
		return "", apperrors.ErrDatabaseQuery.WithCause(err)
	}
	return value, nil
}

// SetSetting stores or updates a setting value
func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO settings (key, value, updated_at) VALUES (%s, %s, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, d.dialect.Placeholder(1), d.dialect.Placeholder(2))
	if _, err := d.db.ExecContext(ctx, query, key, value); err != nil {
		return apperrors.ErrDatabaseQuery.WithCause(err)
	}
	return nil
}

// DeleteSetting removes key. Removing a missing key is not an error.
func (d *Database) DeleteSetting(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM settings WHERE key = %s", d.dialect.Placeholder(1))
	if _, err := d.db.ExecContext(ctx, query, key); err != nil {
		return apperrors.ErrDatabaseQuery.WithCause(err)
	}
	return nil
}

// GetAllSettings returns all settings as a map
func (d *Database) GetAllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, apperrors.ErrDatabaseQuery.WithCause(err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, apperrors.ErrDatabaseQuery.WithCause(err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrDatabaseQuery.WithCause(err)
	}
	return settings, nil
}
