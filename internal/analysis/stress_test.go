package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthscore/internal/store"
)

func TestTimeOfDayMultiplier(t *testing.T) {
	expected := map[int]float64{
		0: 1.4, 3: 1.4, 5: 1.4,
		6: 0.8, 9: 0.8,
		10: 1.0, 12: 1.0,
		13: 0.7, 14: 0.8, 15: 0.9,
		16: 1.2, 17: 1.2,
		18: 1.1, 21: 1.1,
		22: 1.4, 23: 1.4,
	}
	for hour, want := range expected {
		assert.Equal(t, want, TimeOfDayMultiplier(hour), "hour %d", hour)
	}
}

func TestMomentStress(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name                 string
		hr, hrv              float64
		baselineRHR, baseHRV float64
		hour                 int
		expected             float64
		delta                float64
	}{
		{
			name: "at baseline with HRV",
			hr:   60, hrv: 45, baselineRHR: 60, baseHRV: 45, hour: 12,
			expected: 0,
		},
		{
			// hrStress 0, estimate 0.05 → 0.3*0.05*3
			name: "at baseline without HRV",
			hr:   60, baselineRHR: 60, baseHRV: 45, hour: 12,
			expected: 0.045, delta: 1e-9,
		},
		{
			// hrStress (90-60)/48 = 0.625, hrvStress 0.5 → 0.5625*3*0.8
			name: "elevated morning",
			hr:   90, hrv: 22.5, baselineRHR: 60, baseHRV: 45, hour: 7,
			expected: 1.35, delta: 1e-9,
		},
		{
			name: "maxed out at night clamps to 3",
			hr:   200, hrv: 1, baselineRHR: 60, baseHRV: 45, hour: 23,
			expected: 3,
		},
		{
			// zero baselines fall back to 60 / 45
			name: "guards zero baselines",
			hr:   60, hrv: 45, hour: 12,
			expected: 0,
		},
		{
			// elevation 0.5 → estimate 0.5; hrStress 0.625 → (0.4375+0.15)*3
			name: "estimate from elevation",
			hr:   90, baselineRHR: 60, baseHRV: 45, hour: 11,
			expected: 1.7625, delta: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MomentStress(tt.hr, tt.hrv, tt.baselineRHR, tt.baseHRV, tt.hour, cfg)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("MomentStress() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
			assert.GreaterOrEqual(t, result, 0.0)
			assert.LessOrEqual(t, result, MaxStress)
		})
	}
}

func TestEstimatedHRVStress(t *testing.T) {
	tests := []struct {
		elevation float64
		expected  float64
	}{
		{1.5, 1.0},
		{0.8, 0.85},
		{0.6, 0.7},
		{0.5, 0.5},
		{0.25, 0.35},
		{0.15, 0.2},
		{0.1, 0.05},
		{-0.2, 0.05},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, estimatedHRVStress(tt.elevation), "elevation %v", tt.elevation)
	}
}

func TestAggregateStress(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	values := []float64{2.85, 1.45, 2.85, 1.52, 3.0}

	hourly := make([]StressMoment, len(values))
	for i, v := range values {
		// reversed so aggregation has to sort
		hourly[len(values)-1-i] = StressMoment{HourStart: day.Add(time.Duration(i) * time.Hour), Stress: v}
	}

	sleep := []Interval{{Start: day.Add(-2 * time.Hour), End: day.Add(3 * time.Hour)}}
	workouts := []Interval{{Start: day.Add(3 * time.Hour), End: day.Add(4 * time.Hour)}}

	m := AggregateStress(hourly, sleep, workouts)

	assert.Equal(t, 2.33, m.TotalDayStress)
	assert.Equal(t, 2.38, m.SleepStress)
	assert.Equal(t, 3.0, m.NonActivityStress)
	require.Len(t, m.Hourly, 5)
	assert.Equal(t, day, m.Hourly[0].HourStart)

	empty := AggregateStress(nil, nil, nil)
	assert.Equal(t, 0.0, empty.TotalDayStress)
	assert.Empty(t, empty.Hourly)
}

func TestStressDay(t *testing.T) {
	cfg := DefaultConfig()
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	baseline := DailyBaseline{HRV: 45, RHR: 60}

	hr := append(hrSeries(day.Add(11*time.Hour), 60, 60), hrSeries(day.Add(16*time.Hour), 90)...)
	hrv := []store.Sample{{Kind: store.KindHRV, Start: day.Add(11*time.Hour + 5*time.Minute), Quantity: 45}}
	// HRV outside any HR hour is ignored
	hrv = append(hrv, store.Sample{Kind: store.KindHRV, Start: day.Add(20 * time.Hour), Quantity: 10})

	m := StressDay(hr, hrv, nil, nil, baseline, cfg)

	require.Len(t, m.Hourly, 2)
	assert.Equal(t, day.Add(11*time.Hour), m.Hourly[0].HourStart)
	assert.Equal(t, 0.0, m.Hourly[0].Stress)
	// no HRV at 16:00: (0.7*0.625 + 0.3*0.5)*3*1.2
	assert.InDelta(t, 2.115, m.Hourly[1].Stress, 1e-9)
	assert.InDelta(t, 1.06, m.TotalDayStress, 0.011)
	assert.Equal(t, m.TotalDayStress, m.NonActivityStress)
	assert.Equal(t, 0.0, m.SleepStress)
	assert.Equal(t, 45.0, m.BaselineHRV)
}

func TestStressDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	hr := hrSeries(day.Add(9*time.Hour), 70, 80, 95, 120, 88)

	a := StressDay(hr, nil, nil, nil, DailyBaseline{HRV: 45, RHR: 60}, cfg)
	b := StressDay(hr, nil, nil, nil, DailyBaseline{HRV: 45, RHR: 60}, cfg)
	assert.Equal(t, a, b)
}
