package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Sync state keys
const (
	SyncKeyLastStravaSync   = "last_strava_sync"
	SyncKeyLastFITImport    = "last_fit_import"
	SyncKeyLastHealthExport = "last_health_export_import"
)

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (s *Store) GetSyncState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (s *Store) SetSyncState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetSyncTime reads a sync state value stored as RFC3339.
// The zero time is returned when the key is unset.
func (s *Store) GetSyncTime(ctx context.Context, key string) (time.Time, error) {
	v, err := s.GetSyncState(ctx, key)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// SetSyncTime stores t under key as RFC3339
func (s *Store) SetSyncTime(ctx context.Context, key string, t time.Time) error {
	return s.SetSyncState(ctx, key, t.UTC().Format(time.RFC3339))
}
