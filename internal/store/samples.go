package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = time.RFC3339Nano

// InsertSamples writes samples in a single transaction and tags them with a
// fresh batch id. Samples already stored under the same (kind, start, source)
// are left untouched. Returns the batch id and how many rows were inserted.
func (s *Store) InsertSamples(ctx context.Context, samples []Sample) (string, int, error) {
	for _, smp := range samples {
		if !smp.Kind.Valid() {
			return "", 0, fmt.Errorf("%w: %q", ErrInvalidKind, smp.Kind)
		}
	}

	batchID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (kind, start_time, start_unix, end_time, quantity, source, batch_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, start_time, source) DO NOTHING
	`)
	if err != nil {
		return "", 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, smp := range samples {
		end := smp.End
		if end.IsZero() {
			end = smp.Start
		}
		res, err := stmt.ExecContext(ctx,
			string(smp.Kind),
			smp.Start.Format(timeLayout),
			smp.Start.Unix(),
			end.Format(timeLayout),
			smp.Quantity,
			smp.Source,
			batchID,
		)
		if err != nil {
			return "", 0, fmt.Errorf("inserting %s sample: %w", smp.Kind, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("committing samples: %w", err)
	}
	return batchID, inserted, nil
}

// Samples returns samples of the given kind whose start lies in [start, end),
// ordered by start time.
func (s *Store) Samples(ctx context.Context, kind SampleKind, start, end time.Time) ([]Sample, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, start_time, end_time, quantity, source
		FROM samples
		WHERE kind = ? AND start_unix >= ? AND start_unix < ?
		ORDER BY start_unix, start_time
	`, string(kind), start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var smp Sample
		var k, startStr, endStr string
		if err := rows.Scan(&k, &startStr, &endStr, &smp.Quantity, &smp.Source); err != nil {
			return nil, err
		}
		smp.Kind = SampleKind(k)
		if smp.Start, err = time.Parse(timeLayout, startStr); err != nil {
			return nil, fmt.Errorf("parsing start time %q: %w", startStr, err)
		}
		if smp.End, err = time.Parse(timeLayout, endStr); err != nil {
			return nil, fmt.Errorf("parsing end time %q: %w", endStr, err)
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

// CountSamples returns the number of stored samples per kind
func (s *Store) CountSamples(ctx context.Context) (map[SampleKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM samples GROUP BY kind
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[SampleKind]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		counts[SampleKind(k)] = n
	}
	return counts, rows.Err()
}

// DeleteBatch removes every sample written by one InsertSamples call
func (s *Store) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM samples WHERE batch_id = ?`, batchID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
