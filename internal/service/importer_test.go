package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthscore/internal/fitfile"
	"healthscore/internal/healthexport"
	"healthscore/internal/store"
)

func TestImport(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	im := NewImporter(st, discardLogger())

	start := time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)
	kcal := 320.0
	hr := effort(start, 20, 135)
	for i := range hr {
		hr[i].Source = fitfile.Source
	}
	act := &fitfile.Activity{
		Workout: store.Workout{
			ExternalID:      "fit:1710090000",
			ActivityType:    store.ActivityTraditionalStrength,
			Start:           start,
			End:             start.Add(20 * time.Minute),
			TotalEnergyKcal: &kcal,
			Source:          fitfile.Source,
		},
		HeartRate: hr,
	}

	res, err := im.Import(ctx, act)
	require.NoError(t, err)
	assert.Equal(t, "fit:1710090000", res.WorkoutID)
	assert.Equal(t, 20, res.SamplesInserted)
	assert.NotEmpty(t, res.BatchID)

	// re-import stores nothing new
	res, err = im.Import(ctx, act)
	require.NoError(t, err)
	assert.Zero(t, res.SamplesInserted)

	n, err := st.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	imported, err := st.GetSyncTime(ctx, store.SyncKeyLastFITImport)
	require.NoError(t, err)
	assert.False(t, imported.IsZero())
}

func TestImportFileMissing(t *testing.T) {
	im := NewImporter(store.NewTestStore(t), discardLogger())
	_, err := im.ImportFile(context.Background(), "does-not-exist.fit")
	assert.Error(t, err)
}

const healthExport = `{"data": {
  "metrics": [
    {"name": "heart_rate", "units": "count/min", "data": [
      {"date": "2024-03-12 03:00:00 +0900", "Min": 50, "Avg": 54, "Max": 60},
      {"date": "2024-03-12 03:01:00 +0900", "Min": 50, "Avg": 55, "Max": 61}
    ]},
    {"name": "heart_rate_variability", "units": "ms", "data": [
      {"date": "2024-03-12 03:10:00 +0900", "qty": 52}
    ]},
    {"name": "respiratory_rate", "units": "count/min", "data": [
      {"date": "2024-03-12 03:10:00 +0900", "qty": 13.5}
    ]},
    {"name": "blood_oxygen_saturation", "units": "%", "data": [
      {"date": "2024-03-12 03:10:00 +0900", "qty": 0.96}
    ]},
    {"name": "sleep_analysis", "units": "hr", "data": [
      {"startDate": "2024-03-11 23:30:00 +0900", "endDate": "2024-03-12 06:30:00 +0900", "qty": 7, "value": "Core"}
    ]},
    {"name": "step_count", "units": "count", "data": [
      {"date": "2024-03-12 08:00:00 +0900", "qty": 900}
    ]}
  ],
  "workouts": [
    {"id": "W1", "name": "Functional Strength Training",
     "start": "2024-03-12 18:00:00 +0900", "end": "2024-03-12 18:45:00 +0900",
     "duration": 2700, "activeEnergyBurned": {"qty": 250, "units": "kcal"}}
  ]
}}`

func TestImportHealthExport(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	im := NewImporter(st, discardLogger())

	path := filepath.Join(t.TempDir(), "HealthAutoExport-2024-03-12.json")
	require.NoError(t, os.WriteFile(path, []byte(healthExport), 0o644))

	res, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, 1, res.WorkoutsStored)
	assert.Equal(t, "hae:W1", res.WorkoutID)
	assert.Equal(t, store.ActivityFunctionalStrength, res.ActivityType)
	assert.Equal(t, 6, res.SamplesInserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, map[store.SampleKind]int{
		store.KindHeartRate:        2,
		store.KindHRV:              1,
		store.KindRespiratoryRate:  1,
		store.KindOxygenSaturation: 1,
		store.KindSleepStage:       1,
	}, res.SamplesByKind)

	jst := time.FixedZone("JST", 9*3600)
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, jst)
	spo2, err := st.Samples(ctx, store.KindOxygenSaturation, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, spo2, 1)
	assert.InDelta(t, 96.0, spo2[0].Quantity, 1e-9)

	// overlapping exports add nothing the second time
	res, err = im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, res.SamplesInserted)

	n, err := st.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	imported, err := st.GetSyncTime(ctx, store.SyncKeyLastHealthExport)
	require.NoError(t, err)
	assert.False(t, imported.IsZero())
}

func TestImportHealthExportInvalid(t *testing.T) {
	im := NewImporter(store.NewTestStore(t), discardLogger())
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":{}}`), 0o644))

	_, err := im.ImportFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, healthexport.ErrNoData)
}
