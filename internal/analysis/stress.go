package analysis

import (
	"sort"
	"time"

	"healthscore/internal/store"
)

// MaxStress is the top of the stress scale
const MaxStress = 3.0

// StressMoment is the stress level for one hour
type StressMoment struct {
	HourStart time.Time `json:"hour_start"`
	Stress    float64   `json:"stress"`
}

// StressDayMetrics summarizes a day's hourly stress
type StressDayMetrics struct {
	BaselineHRV       float64        `json:"baseline_hrv"`
	BaselineRHR       float64        `json:"baseline_rhr"`
	TotalDayStress    float64        `json:"total_day_stress"`
	SleepStress       float64        `json:"sleep_stress"`
	NonActivityStress float64        `json:"non_activity_stress"`
	Hourly            []StressMoment `json:"hourly"`
}

// TimeOfDayMultiplier weights stress by circadian context
func TimeOfDayMultiplier(hour int) float64 {
	switch {
	case hour >= 22 || hour <= 5:
		return 1.4
	case hour >= 6 && hour <= 9:
		return 0.8
	case hour == 13:
		return 0.7
	case hour == 14:
		return 0.8
	case hour == 15:
		return 0.9
	case hour == 16 || hour == 17:
		return 1.2
	case hour >= 18 && hour <= 21:
		return 1.1
	default:
		return 1.0
	}
}

// MomentStress returns instantaneous stress on 0-3. An hrv <= 0 means no HRV
// reading, in which case it is estimated from HR elevation.
func MomentStress(hr, hrv, baselineRHR, baselineHRV float64, hour int, cfg Config) float64 {
	rhr := orDefault(baselineRHR, cfg.RestingHR)
	baseHRV := orDefault(baselineHRV, cfg.HRVBaseline)

	hrStress := Clamp01((hr - rhr) / (rhr * cfg.StressSensitivity))

	var combined float64
	if hrv > 0 {
		hrvStress := Clamp01(1 - hrv/baseHRV)
		combined = 0.5*hrStress + 0.5*hrvStress
	} else {
		combined = 0.7*hrStress + 0.3*estimatedHRVStress((hr-rhr)/rhr)
	}

	return Clamp(combined*MaxStress*TimeOfDayMultiplier(hour), 0, MaxStress)
}

// estimatedHRVStress maps HR elevation over resting to an HRV stress guess
func estimatedHRVStress(elevation float64) float64 {
	switch {
	case elevation > 1.0:
		return 1.0
	case elevation > 0.75:
		return 0.85
	case elevation > 0.5:
		return 0.7
	case elevation > 0.3:
		return 0.5
	case elevation > 0.2:
		return 0.35
	case elevation > 0.1:
		return 0.2
	default:
		return 0.05
	}
}

// StressDay computes hourly stress and the daily aggregates. Hours without a
// heart-rate sample are skipped.
func StressDay(hr, hrv []store.Sample, sleep, workouts []Interval, baseline DailyBaseline, cfg Config) StressDayMetrics {
	hrByHour := BucketByHour(hr)
	hrvByHour := BucketByHour(hrv)

	hours := SortedDays(hrByHour)
	hourly := make([]StressMoment, 0, len(hours))
	for _, h := range hours {
		meanHR := Mean(Quantities(hrByHour[h]))
		meanHRV := Mean(Quantities(hrvByHour[h]))
		hourly = append(hourly, StressMoment{
			HourStart: h,
			Stress:    MomentStress(meanHR, meanHRV, baseline.RHR, baseline.HRV, h.Hour(), cfg),
		})
	}

	m := AggregateStress(hourly, sleep, workouts)
	m.BaselineHRV = baseline.HRV
	m.BaselineRHR = baseline.RHR
	return m
}

// AggregateStress computes the day, sleep and non-activity means of hourly
// stress. An hour belongs to an interval when its midpoint does.
func AggregateStress(hourly []StressMoment, sleep, workouts []Interval) StressDayMetrics {
	sorted := make([]StressMoment, len(hourly))
	copy(sorted, hourly)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].HourStart.Before(sorted[j].HourStart)
	})

	var all, asleep, resting []float64
	for _, h := range sorted {
		all = append(all, h.Stress)
		mid := h.HourStart.Add(30 * time.Minute)
		inSleep := inAny(mid, sleep)
		if inSleep {
			asleep = append(asleep, h.Stress)
		}
		if !inSleep && !inAny(mid, workouts) {
			resting = append(resting, h.Stress)
		}
	}

	return StressDayMetrics{
		TotalDayStress:    RoundTo(Mean(all), 2),
		SleepStress:       RoundTo(Mean(asleep), 2),
		NonActivityStress: RoundTo(Mean(resting), 2),
		Hourly:            sorted,
	}
}

// StressLevel returns a short label for a 0-3 stress value
func StressLevel(stress float64) string {
	switch {
	case stress >= 2:
		return "High"
	case stress >= 1:
		return "Medium"
	default:
		return "Low"
	}
}
