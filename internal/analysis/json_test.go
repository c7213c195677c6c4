package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepNeedJSON(t *testing.T) {
	need := SleepNeed{Baseline: 8 * time.Hour, Debt: 90 * time.Minute, StrainAdjustment: 30 * time.Minute}

	data, err := json.Marshal(need)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"baseline_minutes": 480,
		"debt_minutes": 90,
		"strain_adjustment_minutes": 30,
		"total_minutes": 600
	}`, string(data))

	var got SleepNeed
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, need, got)
}

func TestSleepClusterJSON(t *testing.T) {
	start := time.Date(2024, 3, 11, 23, 0, 0, 0, time.UTC)
	c := SleepCluster{
		Start:       start,
		End:         start.Add(8 * time.Hour),
		Asleep:      7*time.Hour + 15*time.Minute,
		InBed:       8 * time.Hour,
		Awake:       45 * time.Minute,
		IsMainSleep: true,
	}

	data, err := json.Marshal(SleepPerformance{OverallScore: 81, MainSleep: &c})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 81.0, raw["overall_score"])
	main, ok := raw["main_sleep"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 435.0, main["asleep_minutes"])
	assert.Equal(t, 480.0, main["in_bed_minutes"])
	assert.Equal(t, 45.0, main["awake_minutes"])
	assert.Equal(t, true, main["is_main_sleep"])
	assert.Equal(t, "2024-03-11T23:00:00Z", main["start"])
	assert.NotContains(t, main, "Asleep")

	var got SleepPerformance
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.MainSleep)
	assert.Equal(t, c.Asleep, got.MainSleep.Asleep)
	assert.True(t, got.MainSleep.Start.Equal(c.Start))
}

func TestBreakdownJSONKeys(t *testing.T) {
	data, err := json.Marshal(StrainBreakdown{ZoneMinutes: [5]float64{1, 2, 3, 4, 5}, Score: 9.5})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"zone_minutes":[1,2,3,4,5]`)
	assert.Contains(t, string(data), `"score":9.5`)
	assert.NotContains(t, string(data), "ZoneMinutes")

	data, err = json.Marshal(RecoveryBreakdown{TotalScore: 70, Mode: ModeBiometric})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_score":70`)
	assert.Contains(t, string(data), `"mode":"biometric"`)
	assert.NotContains(t, string(data), "hydration", "unset lifestyle metrics are omitted")
}
