package analysis

import (
	"encoding/json"
	"time"
)

// Durations are encoded as minutes

func minutes(d time.Duration) float64 { return d.Minutes() }

func fromMinutes(m float64) time.Duration { return time.Duration(m * float64(time.Minute)) }

type sleepClusterJSON struct {
	sleepClusterAlias
	AsleepMinutes float64 `json:"asleep_minutes"`
	InBedMinutes  float64 `json:"in_bed_minutes"`
	AwakeMinutes  float64 `json:"awake_minutes"`
}

type sleepClusterAlias SleepCluster

func (c SleepCluster) MarshalJSON() ([]byte, error) {
	return json.Marshal(sleepClusterJSON{
		sleepClusterAlias: sleepClusterAlias(c),
		AsleepMinutes:     minutes(c.Asleep),
		InBedMinutes:      minutes(c.InBed),
		AwakeMinutes:      minutes(c.Awake),
	})
}

func (c *SleepCluster) UnmarshalJSON(data []byte) error {
	var v sleepClusterJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = SleepCluster(v.sleepClusterAlias)
	c.Asleep = fromMinutes(v.AsleepMinutes)
	c.InBed = fromMinutes(v.InBedMinutes)
	c.Awake = fromMinutes(v.AwakeMinutes)
	return nil
}

type sleepNeedJSON struct {
	BaselineMinutes         float64 `json:"baseline_minutes"`
	DebtMinutes             float64 `json:"debt_minutes"`
	StrainAdjustmentMinutes float64 `json:"strain_adjustment_minutes"`
	TotalMinutes            float64 `json:"total_minutes"`
}

func (n SleepNeed) MarshalJSON() ([]byte, error) {
	return json.Marshal(sleepNeedJSON{
		BaselineMinutes:         minutes(n.Baseline),
		DebtMinutes:             minutes(n.Debt),
		StrainAdjustmentMinutes: minutes(n.StrainAdjustment),
		TotalMinutes:            minutes(n.Total()),
	})
}

// UnmarshalJSON ignores total_minutes; Total is always derived.
func (n *SleepNeed) UnmarshalJSON(data []byte) error {
	var v sleepNeedJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Baseline = fromMinutes(v.BaselineMinutes)
	n.Debt = fromMinutes(v.DebtMinutes)
	n.StrainAdjustment = fromMinutes(v.StrainAdjustmentMinutes)
	return nil
}
