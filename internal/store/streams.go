package store

import (
	"context"
	"fmt"
)

// PendingStream is a remote workout whose heart-rate stream has not been
// stored yet
type PendingStream struct {
	Workout  Workout
	RemoteID int64
	Attempts int
}

// QueueStream marks a workout's heart-rate stream as wanted. A stream that
// is already queued or synced is left as it is.
func (s *Store) QueueStream(ctx context.Context, externalID string, remoteID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hr_streams (external_id, remote_id)
		VALUES (?, ?)
		ON CONFLICT(external_id) DO NOTHING
	`, externalID, remoteID)
	if err != nil {
		return fmt.Errorf("queueing stream for %s: %w", externalID, err)
	}
	return nil
}

// PendingStreams returns up to limit unsynced streams that have failed fewer
// than maxAttempts times, newest workout first
func (s *Store) PendingStreams(ctx context.Context, limit, maxAttempts int) ([]PendingStream, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.external_id, w.activity_type, w.start_time, w.end_time,
			w.total_energy_kcal, w.duration_seconds, w.total_weight_lifted_kg, w.source,
			h.remote_id, h.attempts
		FROM hr_streams h
		JOIN workouts w ON w.external_id = h.external_id
		WHERE h.synced = 0 AND h.attempts < ?
		ORDER BY w.start_unix DESC
		LIMIT ?
	`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending streams: %w", err)
	}
	defer rows.Close()

	var out []PendingStream
	for rows.Next() {
		var p PendingStream
		if err := scanWorkout(rows, &p.Workout, &p.RemoteID, &p.Attempts); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountPendingStreams returns how many streams PendingStreams could still return
func (s *Store) CountPendingStreams(ctx context.Context, maxAttempts int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM hr_streams WHERE synced = 0 AND attempts < ?
	`, maxAttempts).Scan(&n)
	return n, err
}

// MarkStreamSynced records that a workout's stream has been stored
func (s *Store) MarkStreamSynced(ctx context.Context, externalID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE hr_streams SET synced = 1, last_error = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE external_id = ?
	`, externalID)
	return err
}

// MarkStreamFailed counts a failed fetch against a workout's stream
func (s *Store) MarkStreamFailed(ctx context.Context, externalID string, cause error) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE hr_streams SET attempts = attempts + 1, last_error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE external_id = ?
	`, cause.Error(), externalID)
	return err
}
