package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertWorkout inserts or updates a workout keyed by its external id
func (s *Store) UpsertWorkout(ctx context.Context, w *Workout) error {
	if w.ExternalID == "" {
		return fmt.Errorf("workout has no external id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workouts (
			external_id, activity_type, start_time, start_unix, end_time,
			total_energy_kcal, duration_seconds, total_weight_lifted_kg, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			activity_type = excluded.activity_type,
			start_time = excluded.start_time,
			start_unix = excluded.start_unix,
			end_time = excluded.end_time,
			total_energy_kcal = excluded.total_energy_kcal,
			duration_seconds = excluded.duration_seconds,
			total_weight_lifted_kg = excluded.total_weight_lifted_kg,
			source = excluded.source
	`,
		w.ExternalID,
		string(w.ActivityType),
		w.Start.Format(timeLayout),
		w.Start.Unix(),
		w.End.Format(timeLayout),
		nullFloat(w.TotalEnergyKcal),
		nullFloat(w.DurationSeconds),
		nullFloat(w.TotalWeightLiftedKg),
		w.Source,
	)
	if err != nil {
		return fmt.Errorf("upserting workout %s: %w", w.ExternalID, err)
	}
	return nil
}

// Workouts returns workouts starting in [start, end), ordered by start time
func (s *Store) Workouts(ctx context.Context, start, end time.Time) ([]Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT external_id, activity_type, start_time, end_time,
			total_energy_kcal, duration_seconds, total_weight_lifted_kg, source
		FROM workouts
		WHERE start_unix >= ? AND start_unix < ?
		ORDER BY start_unix
	`, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var out []Workout
	for rows.Next() {
		var w Workout
		if err := scanWorkout(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// scanWorkout reads the workout columns in the order Workouts selects them,
// followed by any extra destinations
func scanWorkout(rows *sql.Rows, w *Workout, extra ...any) error {
	var activityType, startStr, endStr string
	var energy, duration, weight sql.NullFloat64
	dest := append([]any{&w.ExternalID, &activityType, &startStr, &endStr,
		&energy, &duration, &weight, &w.Source}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return err
	}

	var err error
	w.ActivityType = ActivityType(activityType)
	if w.Start, err = time.Parse(timeLayout, startStr); err != nil {
		return fmt.Errorf("parsing start time %q: %w", startStr, err)
	}
	if w.End, err = time.Parse(timeLayout, endStr); err != nil {
		return fmt.Errorf("parsing end time %q: %w", endStr, err)
	}
	w.TotalEnergyKcal = floatPtr(energy)
	w.DurationSeconds = floatPtr(duration)
	w.TotalWeightLiftedKg = floatPtr(weight)
	return nil
}

// CountWorkouts returns the number of stored workouts
func (s *Store) CountWorkouts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&n)
	return n, err
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
