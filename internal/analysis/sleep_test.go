package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthscore/internal/store"
)

func TestClusterSleep(t *testing.T) {
	wake := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	samples := night(wake, 0)

	// afternoon nap well past the gap
	napStart := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	samples = append(samples, stage(store.StageAsleepCore, napStart, 40*time.Minute))

	clusters := ClusterSleep(samples, 3*time.Hour)
	require.Len(t, clusters, 2)

	c := clusters[0]
	assert.Equal(t, 7*time.Hour+30*time.Minute, c.Asleep)
	assert.Equal(t, 30*time.Minute, c.Awake)
	assert.Equal(t, 8*time.Hour, c.InBed)
	assert.Equal(t, 40*time.Minute, clusters[1].Asleep)
}

func TestClusterSleepMergesWithinGap(t *testing.T) {
	start := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)
	samples := []store.Sample{
		stage(store.StageAsleepCore, start, 2*time.Hour),
		// 3h gap exactly still merges
		stage(store.StageAsleepREM, start.Add(5*time.Hour), time.Hour),
		// overlapping stages are counted once
		stage(store.StageAsleepUnspecified, start.Add(5*time.Hour+30*time.Minute), time.Hour),
	}

	clusters := ClusterSleep(samples, 3*time.Hour)
	require.Len(t, clusters, 1)
	assert.Equal(t, 3*time.Hour+30*time.Minute, clusters[0].Asleep)
	assert.Equal(t, 6*time.Hour+30*time.Minute, clusters[0].InBed)
	assert.Empty(t, ClusterSleep(nil, time.Hour))
}

func TestMarkMainSleep(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	clusters := []SleepCluster{
		{Start: base, Asleep: 2 * time.Hour},
		{Start: base.Add(3 * time.Hour), Asleep: 6 * time.Hour},
		{Start: base.Add(12 * time.Hour), Asleep: 6 * time.Hour},
	}

	MarkMainSleep(clusters)
	assert.False(t, clusters[0].IsMainSleep)
	assert.True(t, clusters[1].IsMainSleep, "earliest wins ties")
	assert.False(t, clusters[2].IsMainSleep)

	short := MarkMainSleep([]SleepCluster{{Asleep: 2*time.Hour + 59*time.Minute}})
	assert.False(t, short[0].IsMainSleep)
}

func TestComputeSleepNeed(t *testing.T) {
	tests := []struct {
		name     string
		previous []time.Duration
		strain   float64
		debt     time.Duration
		adj      time.Duration
	}{
		{"rested", []time.Duration{8 * time.Hour, 9 * time.Hour}, 0, 0, 0},
		{"short nights", []time.Duration{7 * time.Hour, 7*time.Hour + 30*time.Minute}, 0, 90 * time.Minute, 0},
		{"debt capped", []time.Duration{5 * time.Hour, 5 * time.Hour, 5 * time.Hour}, 0, 2 * time.Hour, 0},
		{"only last three nights", []time.Duration{0, 8 * time.Hour, 8 * time.Hour, 7 * time.Hour}, 0, time.Hour, 0},
		{"strain adds up to an hour", nil, 10.5, 0, 30 * time.Minute},
		{"strain capped", nil, 40, 0, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			need := ComputeSleepNeed(8*time.Hour, tt.previous, tt.strain)
			assert.Equal(t, tt.debt, need.Debt)
			assert.Equal(t, tt.adj, need.StrainAdjustment)
			assert.Equal(t, 8*time.Hour+tt.debt+tt.adj, need.Total())
		})
	}
}

func TestSleepScore(t *testing.T) {
	cfg := DefaultConfig()
	target := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("no sleep scores zero", func(t *testing.T) {
		p := SleepScore(SleepInput{TargetDate: target}, cfg)
		assert.Equal(t, SleepPerformance{}, p)
	})

	t.Run("only a nap scores zero", func(t *testing.T) {
		nap := []store.Sample{stage(store.StageAsleepCore, target.Add(13*time.Hour), time.Hour)}
		p := SleepScore(SleepInput{Stages: nap, TargetDate: target}, cfg)
		assert.Nil(t, p.MainSleep)
		assert.Equal(t, 0.0, p.OverallScore)
	})

	t.Run("single night uses fallbacks", func(t *testing.T) {
		p := SleepScore(SleepInput{
			Stages:     night(target, 0),
			TargetDate: target,
			Need:       SleepNeed{Baseline: 8 * time.Hour},
		}, cfg)

		require.NotNil(t, p.MainSleep)
		assert.InDelta(t, 93.75, p.HoursVsNeeded, 1e-9)
		assert.InDelta(t, 93.75, p.SleepEfficiency, 1e-9)
		// awake 6.25% of time in bed
		assert.InDelta(t, 87.5, p.SleepConsistency, 1e-9)
		assert.InDelta(t, 75, p.SleepStress, 1e-9)
		assert.Equal(t, 88.0, p.OverallScore)
	})

	t.Run("night ending another day is ignored", func(t *testing.T) {
		p := SleepScore(SleepInput{Stages: night(target.AddDate(0, 0, -1), 0), TargetDate: target}, cfg)
		assert.Nil(t, p.MainSleep)
	})

	t.Run("zero need uses default", func(t *testing.T) {
		p := SleepScore(SleepInput{Stages: night(target, 0), TargetDate: target}, cfg)
		assert.InDelta(t, 93.75, p.HoursVsNeeded, 1e-9)
	})

	t.Run("identical nights are fully consistent", func(t *testing.T) {
		var stages []store.Sample
		for i := 0; i < 5; i++ {
			stages = append(stages, night(target.AddDate(0, 0, -i), 0)...)
		}
		p := SleepScore(SleepInput{Stages: stages, TargetDate: target}, cfg)
		assert.InDelta(t, 100, p.SleepConsistency, 1e-9)
	})

	t.Run("shifted bedtime lowers consistency", func(t *testing.T) {
		stages := append(night(target.AddDate(0, 0, -1), 0), night(target, 2*time.Hour)...)
		p := SleepScore(SleepInput{Stages: stages, TargetDate: target}, cfg)
		// both deviations 60 minutes → 100 - 60/6
		assert.InDelta(t, 90, p.SleepConsistency, 1e-9)
	})

	t.Run("calm physiology scores full sleep stress", func(t *testing.T) {
		bed := target.Add(-time.Hour)
		phys := SleepPhysiology{
			HR:          hrSeries(bed.Add(time.Hour), repeat(52, 20)...),
			HRV:         []store.Sample{hrvSample(bed.Add(2*time.Hour), 60)},
			Respiratory: []store.Sample{{Kind: store.KindRespiratoryRate, Start: bed.Add(3 * time.Hour), Quantity: 13}},
		}
		p := SleepScore(SleepInput{
			Stages:     night(target, 0),
			TargetDate: target,
			Physiology: phys,
			Baseline:   SleepBaseline{RHR: 55, HRV: 50, Respiratory: 14},
		}, cfg)
		assert.InDelta(t, 100, p.SleepStress, 1e-9)
	})

	t.Run("elevated heart rate against history", func(t *testing.T) {
		bed := target.Add(-time.Hour)
		history := SleepPhysiology{HR: hrSeries(bed.AddDate(0, 0, -1), repeat(50, 20)...)}
		// half the night's readings sit above the historical p90 of 50
		hr := hrSeries(bed.Add(time.Hour), append(repeat(50, 10), repeat(58, 10)...)...)
		p := SleepScore(SleepInput{
			Stages:     night(target, 0),
			TargetDate: target,
			Physiology: SleepPhysiology{HR: hr},
			History:    history,
			Baseline:   SleepBaseline{RHR: 55},
		}, cfg)
		assert.InDelta(t, 50, p.SleepStress, 1e-9)
	})
}

func TestMinutesFromNoon(t *testing.T) {
	assert.Equal(t, 660.0, minutesFromNoon(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 780.0, minutesFromNoon(time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0.0, minutesFromNoon(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))
}
