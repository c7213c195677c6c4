package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthscore/internal/store"
)

func hrvSample(t time.Time, v float64) store.Sample {
	return store.Sample{Kind: store.KindHRV, Start: t, End: t, Quantity: v}
}

func TestBaseline(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := day.AddDate(0, 0, 1)

	tests := []struct {
		name     string
		samples  []store.Sample
		opts     BaselineOptions
		expected float64
	}{
		{
			name:     "no samples returns default",
			samples:  nil,
			opts:     BaselineOptions{End: end, Default: 45},
			expected: 45,
		},
		{
			name: "too few samples returns default exactly",
			samples: []store.Sample{
				hrvSample(day.Add(8*time.Hour), 30),
				hrvSample(day.Add(9*time.Hour), 32),
			},
			opts:     BaselineOptions{End: end, Days: 14, MinSamples: 3, Default: 45},
			expected: 45,
		},
		{
			name: "mean of day means",
			samples: []store.Sample{
				// day 1 mean 40, day 2 mean 50 from three samples
				hrvSample(day.AddDate(0, 0, -1).Add(8*time.Hour), 40),
				hrvSample(day.Add(6*time.Hour), 45),
				hrvSample(day.Add(7*time.Hour), 50),
				hrvSample(day.Add(8*time.Hour), 55),
			},
			opts:     BaselineOptions{End: end, Days: 14, MinSamples: 3, Default: 99},
			expected: 45,
		},
		{
			name: "samples outside window ignored",
			samples: []store.Sample{
				hrvSample(day.AddDate(0, 0, -20), 100),
				hrvSample(day.Add(1*time.Hour), 41),
				hrvSample(day.Add(2*time.Hour), 41),
				hrvSample(day.Add(3*time.Hour), 43),
				hrvSample(end.Add(time.Hour), 100),
			},
			opts:     BaselineOptions{End: end, Days: 14, MinSamples: 3, Default: 45},
			expected: 41.667,
		},
		{
			name: "zero end uses latest sample day",
			samples: []store.Sample{
				hrvSample(day.Add(1*time.Hour), 60),
				hrvSample(day.Add(2*time.Hour), 60),
				hrvSample(day.Add(23*time.Hour), 60),
			},
			opts:     BaselineOptions{Default: 45},
			expected: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Baseline(tt.samples, tt.opts), 0.001)
		})
	}
}

func TestDailyBaselinesFallsBackToDefaults(t *testing.T) {
	cfg := DefaultConfig()
	b := DailyBaselines(nil, nil, time.Now(), cfg)

	assert.Equal(t, cfg.HRVBaseline, b.HRV)
	assert.Equal(t, cfg.RestingHR, b.RHR)
}

func TestRestingHRFromSamples(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	values := []float64{50, 52, 70, 80, 90, 100, 110, 120, 130, 140}
	samples := hrSeries(day.Add(8*time.Hour), values...)
	samples = append(samples, hrSeries(day.AddDate(0, 0, 1).Add(8*time.Hour), 65)...)

	got := RestingHRFromSamples(samples)
	require.Len(t, got, 2)
	assert.Equal(t, day, got[0].Start)
	assert.InDelta(t, 50, got[0].Quantity, 0.001)
	assert.InDelta(t, 65, got[1].Quantity, 0.001)
}
