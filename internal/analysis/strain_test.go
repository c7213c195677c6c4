package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"healthscore/internal/store"
)

func TestStrainScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		load     float64
		expected float64
		delta    float64
	}{
		{"zero load", 0, 0, 0},
		{"negative load", -5, 0, 0},
		// log = ln(181)*3.2 = 16.63, exp = 21*(1-e^-1.26) = 15.04
		{"one hour in zone 3", 180, 15.0, 0},
		// log = ln(11)*3.2 = 7.67, exp = 21*(1-e^-0.07) = 1.42
		{"light load", 10, 1.4, 0},
		{"huge load saturates", 1e6, 21, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StrainScore(tt.load, cfg)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("StrainScore(%v) = %v, want %v (±%v)", tt.load, result, tt.expected, tt.delta)
			}
		})
	}
}

func TestStrainScoreFitnessLevel(t *testing.T) {
	beginner := DefaultConfig()
	beginner.FitnessLevel = FitnessBeginner
	advanced := DefaultConfig()
	advanced.FitnessLevel = FitnessAdvanced

	assert.Greater(t, StrainScore(180, beginner), StrainScore(180, DefaultConfig()))
	assert.Less(t, StrainScore(180, advanced), StrainScore(180, DefaultConfig()))
}

func TestStrain(t *testing.T) {
	cfg := DefaultConfig()
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	morning := day.Add(10 * time.Hour)

	t.Run("no data scores zero", func(t *testing.T) {
		b := Strain(nil, nil, day, 60, 190, cfg)
		assert.Equal(t, 0.0, b.Score)
		assert.Equal(t, 0.0, b.TotalLoad)
	})

	t.Run("resting heart rate does not count", func(t *testing.T) {
		b := Strain(hrSeries(morning, repeat(70, 120)...), nil, day, 60, 190, cfg)
		assert.Equal(t, 0.0, b.ActiveMinutes())
		assert.Equal(t, 0.0, b.Score)
	})

	t.Run("one hour in zone 3", func(t *testing.T) {
		b := Strain(hrSeries(morning, repeat(155, 60)...), nil, day, 60, 190, cfg)
		assert.InDelta(t, 60, b.ZoneMinutes[2], 1e-9)
		assert.InDelta(t, 180, b.CardioPoints, 1e-9)
		assert.Equal(t, 15.0, b.Score)
	})

	t.Run("samples on other days ignored", func(t *testing.T) {
		hr := hrSeries(day.AddDate(0, 0, -1).Add(10*time.Hour), repeat(155, 60)...)
		b := Strain(hr, nil, day, 60, 190, cfg)
		assert.Equal(t, 0.0, b.Score)
	})

	t.Run("gaps are capped", func(t *testing.T) {
		hr := []store.Sample{
			{Kind: store.KindHeartRate, Start: morning, Quantity: 155},
			{Kind: store.KindHeartRate, Start: morning.Add(30 * time.Minute), Quantity: 155},
		}
		b := Strain(hr, nil, day, 60, 190, cfg)
		// 10 min capped gap + 1 min default interval
		assert.InDelta(t, 11, b.ZoneMinutes[2], 1e-9)
	})

	t.Run("last sample clipped at midnight", func(t *testing.T) {
		late := day.Add(24*time.Hour - 30*time.Second)
		hr := []store.Sample{{Kind: store.KindHeartRate, Start: late, Quantity: 155}}
		b := Strain(hr, nil, day, 60, 190, cfg)
		assert.InDelta(t, 0.5, b.ZoneMinutes[2], 1e-9)
	})

	t.Run("adaptive widening credits low heart rates", func(t *testing.T) {
		b := Strain(hrSeries(morning, repeat(110, 30)...), nil, day, 60, 190, cfg)
		// widened max 140 → zone 2 starts at 108
		assert.InDelta(t, 30, b.ZoneMinutes[1], 1e-9)
		assert.InDelta(t, 108, b.Zones[1], 1e-9)
		assert.Greater(t, b.Score, 0.0)
	})

	t.Run("score bounded", func(t *testing.T) {
		b := Strain(hrSeries(day, repeat(185, 24*60)...), nil, day, 60, 190, cfg)
		assert.LessOrEqual(t, b.Score, MaxStrain)
		assert.GreaterOrEqual(t, b.Score, 0.0)
	})
}

func TestStrainMusclePoints(t *testing.T) {
	cfg := DefaultConfig()
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	start := day.Add(17 * time.Hour)

	tests := []struct {
		name     string
		workout  store.Workout
		expected float64
	}{
		{
			name:     "weight lifted",
			workout:  store.Workout{ActivityType: store.ActivityTraditionalStrength, Start: start, TotalWeightLiftedKg: ptr(5000)},
			expected: 100,
		},
		{
			name:     "energy burned",
			workout:  store.Workout{ActivityType: store.ActivityFunctionalStrength, Start: start, TotalEnergyKcal: ptr(300)},
			expected: 90,
		},
		{
			name:     "duration only",
			workout:  store.Workout{ActivityType: store.ActivityCrossTraining, Start: start, End: start.Add(40 * time.Minute)},
			expected: 60,
		},
		{
			name:     "cardio workouts add nothing",
			workout:  store.Workout{ActivityType: store.ActivityRunning, Start: start, TotalEnergyKcal: ptr(600)},
			expected: 0,
		},
		{
			name:     "other day adds nothing",
			workout:  store.Workout{ActivityType: store.ActivityTraditionalStrength, Start: start.AddDate(0, 0, 1), TotalWeightLiftedKg: ptr(5000)},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Strain(nil, []store.Workout{tt.workout}, day, 60, 190, cfg)
			assert.InDelta(t, tt.expected, b.MusclePoints, 1e-9)
			assert.InDelta(t, tt.expected, b.TotalLoad, 1e-9)
			assert.Equal(t, StrainScore(tt.expected, cfg), b.Score)
		})
	}
}

func TestStrainLevel(t *testing.T) {
	assert.Equal(t, "Light", StrainLevel(4))
	assert.Equal(t, "Moderate", StrainLevel(12))
	assert.Equal(t, "Strenuous", StrainLevel(15))
	assert.Equal(t, "All out", StrainLevel(19))
}
