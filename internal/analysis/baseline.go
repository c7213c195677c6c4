package analysis

import (
	"time"

	"healthscore/internal/store"
)

// BaselineOptions controls the rolling baseline window
type BaselineOptions struct {
	End        time.Time // exclusive; zero means end of the latest sample's day
	Days       int
	MinSamples int
	Default    float64
}

// DailyBaseline holds the personal HRV (ms) and resting HR (bpm) baselines
type DailyBaseline struct {
	HRV float64 `json:"hrv"`
	RHR float64 `json:"rhr"`
}

// Baseline averages the per-day means of samples over the window ending at
// opts.End. Sparse windows return opts.Default unchanged.
func Baseline(samples []store.Sample, opts BaselineOptions) float64 {
	if opts.Days <= 0 {
		opts.Days = 14
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = 3
	}

	end := opts.End
	if end.IsZero() {
		for _, s := range samples {
			if s.Start.After(end) {
				end = s.Start
			}
		}
		if end.IsZero() {
			return opts.Default
		}
		_, end = DayBounds(end)
	}

	window := SamplesInRange(samples, DaysBefore(end, opts.Days), end)
	if len(window) < opts.MinSamples {
		return opts.Default
	}

	buckets := BucketByDay(window)
	dayMeans := make([]float64, 0, len(buckets))
	for _, day := range SortedDays(buckets) {
		dayMeans = append(dayMeans, Mean(Quantities(buckets[day])))
	}
	return Mean(dayMeans)
}

// DailyBaselines computes HRV and resting-HR baselines for the window ending
// at end, falling back to the configured defaults.
func DailyBaselines(hrv, rhr []store.Sample, end time.Time, cfg Config) DailyBaseline {
	return DailyBaseline{
		HRV: Baseline(hrv, BaselineOptions{
			End:        end,
			Days:       cfg.BaselineDays,
			MinSamples: cfg.BaselineMinSamples,
			Default:    cfg.HRVBaseline,
		}),
		RHR: Baseline(rhr, BaselineOptions{
			End:        end,
			Days:       cfg.BaselineDays,
			MinSamples: cfg.BaselineMinSamples,
			Default:    cfg.RestingHR,
		}),
	}
}

// RestingHRFromSamples derives one resting-HR sample per day as the mean of
// the lowest 10% of that day's heart-rate readings.
func RestingHRFromSamples(hr []store.Sample) []store.Sample {
	buckets := BucketByDay(hr)
	out := make([]store.Sample, 0, len(buckets))
	for _, day := range SortedDays(buckets) {
		values := Quantities(buckets[day])
		cutoff := Percentile(values, 0.10)

		var low []float64
		for _, v := range values {
			if v <= cutoff {
				low = append(low, v)
			}
		}
		out = append(out, store.Sample{
			Kind:     store.KindHeartRate,
			Start:    day,
			End:      day,
			Quantity: Mean(low),
			Source:   "derived",
		})
	}
	return out
}
