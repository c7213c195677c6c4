package healthexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthscore/internal/store"
)

const sampleExport = `{
  "data": {
    "metrics": [
      {"name": "heart_rate", "units": "count/min", "data": [
        {"date": "2024-03-12 06:00:00 -0500", "Min": 58, "Avg": 62, "Max": 70},
        {"date": "2024-03-12 06:01:00 -0500", "qty": 64},
        {"date": "not a date", "Avg": 60}
      ]},
      {"name": "heart_rate_variability", "units": "ms", "data": [
        {"date": "2024-03-12 03:10:00 -0500", "qty": 48.5}
      ]},
      {"name": "respiratory_rate", "units": "count/min", "data": [
        {"date": "2024-03-12 03:10:00 -0500", "qty": 14.2}
      ]},
      {"name": "blood_oxygen_saturation", "units": "%", "data": [
        {"date": "2024-03-12 03:10:00 -0500", "qty": 0.97},
        {"date": "2024-03-12 03:20:00 -0500", "qty": 95}
      ]},
      {"name": "sleep_analysis", "units": "hr", "data": [
        {"startDate": "2024-03-11 23:00:00 -0500", "endDate": "2024-03-12 01:00:00 -0500", "qty": 2, "value": "Core"},
        {"startDate": "2024-03-12 01:00:00 -0500", "endDate": "2024-03-12 02:00:00 -0500", "qty": 1, "value": "Deep"},
        {"startDate": "2024-03-12 02:00:00 -0500", "endDate": "2024-03-12 02:10:00 -0500", "qty": 0.16, "value": "Awake"},
        {"startDate": "2024-03-12 02:10:00 -0500", "endDate": "2024-03-12 03:00:00 -0500", "qty": 0.8, "value": "REM"},
        {"startDate": "2024-03-12 03:00:00 -0500", "endDate": "2024-03-12 03:05:00 -0500", "qty": 0.1, "value": "Napping"}
      ]},
      {"name": "step_count", "units": "count", "data": [
        {"date": "2024-03-12 08:00:00 -0500", "qty": 1200}
      ]}
    ],
    "workouts": [
      {"id": "A1", "name": "Traditional Strength Training",
       "start": "2024-03-12 18:00:00 -0500", "end": "2024-03-12 19:00:00 -0500",
       "duration": 3600, "activeEnergyBurned": {"qty": 1255.2, "units": "kJ"}},
      {"id": "A2", "name": "Outdoor Run",
       "start": "2024-03-12 07:00:00 -0500", "end": "2024-03-12 07:30:00 -0500",
       "duration": 1800, "activeEnergyBurned": {"qty": 320, "units": "kcal"}},
      {"id": "A3", "name": "Yoga", "start": "bad", "end": "2024-03-12 07:30:00 -0500"}
    ]
  }
}`

func TestDecode(t *testing.T) {
	exp, err := Decode(strings.NewReader(sampleExport))
	require.NoError(t, err)

	byKind := map[store.SampleKind][]store.Sample{}
	for _, s := range exp.Samples {
		assert.Equal(t, Source, s.Source)
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}

	require.Len(t, byKind[store.KindHeartRate], 2)
	assert.Equal(t, 62.0, byKind[store.KindHeartRate][0].Quantity, "Avg is used for aggregated points")
	assert.Equal(t, 64.0, byKind[store.KindHeartRate][1].Quantity)

	require.Len(t, byKind[store.KindHRV], 1)
	assert.Equal(t, 48.5, byKind[store.KindHRV][0].Quantity)

	require.Len(t, byKind[store.KindRespiratoryRate], 1)
	assert.Equal(t, 14.2, byKind[store.KindRespiratoryRate][0].Quantity)

	require.Len(t, byKind[store.KindOxygenSaturation], 2)
	assert.InDelta(t, 97.0, byKind[store.KindOxygenSaturation][0].Quantity, 1e-9)
	assert.Equal(t, 95.0, byKind[store.KindOxygenSaturation][1].Quantity)

	sleep := byKind[store.KindSleepStage]
	require.Len(t, sleep, 4)
	var stages []store.SleepStage
	for _, s := range sleep {
		stages = append(stages, s.Stage())
	}
	assert.Equal(t, []store.SleepStage{
		store.StageAsleepCore, store.StageAsleepDeep, store.StageAwake, store.StageAsleepREM,
	}, stages)
	assert.Equal(t, 2*time.Hour, sleep[0].Duration())

	// the bad heart-rate date, the unknown sleep value, the step count and the
	// unparseable workout
	assert.Equal(t, 4, exp.Skipped)

	require.Len(t, exp.Workouts, 2)
	lift := exp.Workouts[0]
	assert.Equal(t, "hae:A1", lift.ExternalID)
	assert.Equal(t, store.ActivityTraditionalStrength, lift.ActivityType)
	require.NotNil(t, lift.TotalEnergyKcal)
	assert.InDelta(t, 300.0, *lift.TotalEnergyKcal, 0.01)
	require.NotNil(t, lift.DurationSeconds)
	assert.Equal(t, 3600.0, *lift.DurationSeconds)
	assert.Equal(t, Source, lift.Source)

	run := exp.Workouts[1]
	assert.Equal(t, store.ActivityRunning, run.ActivityType)
	assert.Equal(t, 320.0, *run.TotalEnergyKcal)
}

func TestDecodeKeepsOffset(t *testing.T) {
	exp, err := Decode(strings.NewReader(sampleExport))
	require.NoError(t, err)

	_, offset := exp.Samples[0].Start.Zone()
	assert.Equal(t, -5*3600, offset)
	assert.Equal(t, 6, exp.Samples[0].Start.Hour())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"not json", "{", nil},
		{"empty data", `{"data":{}}`, ErrNoData},
		{"empty object", `{}`, ErrNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))

	exp, err := DecodeFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, exp.Samples)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestActivityType(t *testing.T) {
	tests := []struct {
		name string
		want store.ActivityType
	}{
		{"Traditional Strength Training", store.ActivityTraditionalStrength},
		{"Functional Strength Training", store.ActivityFunctionalStrength},
		{"High Intensity Interval Training", store.ActivityFunctionalStrength},
		{"Cross Training", store.ActivityCrossTraining},
		{"Indoor Run", store.ActivityRunning},
		{"Outdoor Cycling", store.ActivityCycling},
		{"Outdoor Walk", store.ActivityWalking},
		{"Hiking", store.ActivityWalking},
		{"Yoga", store.ActivityOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivityType(tt.name))
		})
	}
}
