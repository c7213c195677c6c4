package analysis

import (
	"time"

	"healthscore/internal/store"
)

func ptr(v float64) *float64 { return &v }

// hrSeries returns one heart-rate sample per minute starting at start
func hrSeries(start time.Time, bpm ...float64) []store.Sample {
	out := make([]store.Sample, len(bpm))
	for i, v := range bpm {
		t := start.Add(time.Duration(i) * time.Minute)
		out[i] = store.Sample{Kind: store.KindHeartRate, Start: t, End: t, Quantity: v}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func stage(st store.SleepStage, start time.Time, d time.Duration) store.Sample {
	return store.Sample{Kind: store.KindSleepStage, Start: start, End: start.Add(d), Quantity: float64(st)}
}

// night builds a 23:00-07:00 sleep ending on wakeDay: 4h core, 30m awake,
// 3h30 deep.
func night(wakeDay time.Time, shift time.Duration) []store.Sample {
	bed := time.Date(wakeDay.Year(), wakeDay.Month(), wakeDay.Day()-1, 23, 0, 0, 0, wakeDay.Location()).Add(shift)
	return []store.Sample{
		stage(store.StageInBed, bed, 8*time.Hour),
		stage(store.StageAsleepCore, bed, 4*time.Hour),
		stage(store.StageAwake, bed.Add(4*time.Hour), 30*time.Minute),
		stage(store.StageAsleepDeep, bed.Add(4*time.Hour+30*time.Minute), 3*time.Hour+30*time.Minute),
	}
}
