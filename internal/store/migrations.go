package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Raw biometric samples; times are RFC3339Nano with offset
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			start_time TEXT NOT NULL,
			start_unix INTEGER NOT NULL,
			end_time TEXT NOT NULL,
			quantity REAL NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			batch_id TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (kind, start_time, source)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_samples_kind_start ON samples(kind, start_unix)`,

		`CREATE TABLE IF NOT EXISTS workouts (
			external_id TEXT PRIMARY KEY,
			activity_type TEXT NOT NULL,
			start_time TEXT NOT NULL,
			start_unix INTEGER NOT NULL,
			end_time TEXT NOT NULL,
			total_energy_kcal REAL,
			duration_seconds REAL,
			total_weight_lifted_kg REAL,
			source TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_start ON workouts(start_unix)`,

		// Heart-rate streams still to fetch for remote workouts
		`CREATE TABLE IF NOT EXISTS hr_streams (
			external_id TEXT PRIMARY KEY REFERENCES workouts(external_id) ON DELETE CASCADE,
			remote_id INTEGER NOT NULL,
			synced INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
