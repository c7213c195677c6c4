package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"healthscore/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider serves samples from memory
type fakeProvider struct {
	samples  map[store.SampleKind][]store.Sample
	workouts []store.Workout
	failing  map[store.SampleKind]bool
	pingErr  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		samples: make(map[store.SampleKind][]store.Sample),
		failing: make(map[store.SampleKind]bool),
	}
}

func (f *fakeProvider) add(samples ...store.Sample) {
	for _, s := range samples {
		f.samples[s.Kind] = append(f.samples[s.Kind], s)
	}
}

func (f *fakeProvider) Samples(ctx context.Context, kind store.SampleKind, start, end time.Time) ([]store.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failing[kind] {
		return nil, errors.New("upstream unavailable")
	}
	var out []store.Sample
	for _, s := range f.samples[kind] {
		if !s.Start.Before(start) && s.Start.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeProvider) Workouts(ctx context.Context, start, end time.Time) ([]store.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []store.Workout
	for _, w := range f.workouts {
		if !w.Start.Before(start) && w.Start.Before(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeProvider) Ping(context.Context) error {
	return f.pingErr
}

var testDay = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func stage(start, end time.Time, st store.SleepStage) store.Sample {
	return store.Sample{Kind: store.KindSleepStage, Start: start, End: end, Quantity: float64(st)}
}

// night returns a 23:00-07:00 sleep ending on wakeDay: 4h core, 30m awake,
// 3h30 deep
func night(wakeDay time.Time) []store.Sample {
	bed := at(wakeDay, -1, 0)
	return []store.Sample{
		stage(bed, bed.Add(4*time.Hour), store.StageAsleepCore),
		stage(bed.Add(4*time.Hour), bed.Add(4*time.Hour+30*time.Minute), store.StageAwake),
		stage(bed.Add(4*time.Hour+30*time.Minute), bed.Add(8*time.Hour), store.StageAsleepDeep),
	}
}

// effort returns one-minute heart-rate samples at bpm from start
func effort(start time.Time, minutes int, bpm float64) []store.Sample {
	out := make([]store.Sample, minutes)
	for i := range out {
		t := start.Add(time.Duration(i) * time.Minute)
		out[i] = store.Sample{Kind: store.KindHeartRate, Start: t, End: t.Add(time.Minute), Quantity: bpm}
	}
	return out
}
