package analysis

import (
	"math"
	"sort"
	"time"

	"healthscore/internal/store"
)

// MaxStrain is the top of the strain scale
const MaxStrain = 21.0

// StrainBreakdown is the day's strain score with its components
type StrainBreakdown struct {
	ZoneMinutes  [5]float64     `json:"zone_minutes"`
	CardioPoints float64        `json:"cardio_points"`
	MusclePoints float64        `json:"muscle_points"`
	TotalLoad    float64        `json:"total_load"`
	Score        float64        `json:"score"`
	Zones        ZoneThresholds `json:"zones"`
}

// ActiveMinutes returns the minutes spent in any zone
func (b StrainBreakdown) ActiveMinutes() float64 {
	var total float64
	for _, m := range b.ZoneMinutes {
		total += m
	}
	return total
}

// Strain scores a day's cardiovascular and muscular load on a 0-21 scale.
func Strain(hr []store.Sample, workouts []store.Workout, day time.Time, restingHR, maxHR float64, cfg Config) StrainBreakdown {
	dayStart, dayEnd := DayBounds(day)

	samples := SamplesInRange(hr, dayStart, dayEnd)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Start.Before(samples[j].Start)
	})

	maxHR = guardMaxHR(restingHR, maxHR, cfg)
	threshold := restingHR + heartRateReserve(restingHR, maxHR)*cfg.ActivityThresholdPct

	type timed struct {
		hr      float64
		minutes float64
	}
	var active []timed
	var observed []float64
	for i, s := range samples {
		if s.Quantity < threshold {
			continue
		}
		d := sampleDuration(samples, i, dayEnd, cfg)
		active = append(active, timed{hr: s.Quantity, minutes: Minutes(d)})
		observed = append(observed, s.Quantity)
	}

	var b StrainBreakdown
	b.Zones = Zones(restingHR, maxHR, observed, cfg)
	for _, a := range active {
		if z := b.Zones.Zone(a.hr); z >= 0 {
			b.ZoneMinutes[z] += a.minutes
		}
	}
	for z, m := range b.ZoneMinutes {
		b.CardioPoints += m * cfg.ZoneWeights[z]
	}

	for _, w := range workouts {
		if !w.ActivityType.IsStrength() {
			continue
		}
		if w.Start.Before(dayStart) || !w.Start.Before(dayEnd) {
			continue
		}
		b.MusclePoints += MusclePoints(w, cfg)
	}

	b.TotalLoad = b.CardioPoints + b.MusclePoints
	b.Score = StrainScore(b.TotalLoad, cfg)
	return b
}

// sampleDuration is the time until the next sample, capped at the max gap
// and clipped to the end of the day.
func sampleDuration(samples []store.Sample, i int, dayEnd time.Time, cfg Config) time.Duration {
	s := samples[i]
	var d time.Duration
	if i+1 < len(samples) {
		d = samples[i+1].Start.Sub(s.Start)
	} else {
		d = s.End.Sub(s.Start)
		if d <= 0 {
			d = cfg.DefaultSampleInterval
		}
	}
	if cfg.MaxSampleGap > 0 && d > cfg.MaxSampleGap {
		d = cfg.MaxSampleGap
	}
	if s.Start.Add(d).After(dayEnd) {
		d = dayEnd.Sub(s.Start)
	}
	if d < 0 {
		return 0
	}
	return d
}

// MusclePoints converts a strength workout's load into strain points
func MusclePoints(w store.Workout, cfg Config) float64 {
	switch l := w.Load().(type) {
	case store.WeightLifted:
		return l.Kg * cfg.Muscle.PerKg
	case store.EnergyBurned:
		return l.Kcal * cfg.Muscle.PerKcal
	case store.DurationOnly:
		return Minutes(l.Duration) * cfg.Muscle.PerMinute
	}
	return 0
}

// StrainScore maps total load onto 0-21 as the lower of a logarithmic curve
// and a saturating exponential, rounded to one decimal.
func StrainScore(totalLoad float64, cfg Config) float64 {
	if totalLoad <= 0 {
		return 0
	}
	scale := cfg.StrainScaleFactor * cfg.FitnessLevel.Factor()

	logCurve := math.Log(math.Max(1, totalLoad+1)) * 3.2
	expCurve := MaxStrain * (1 - math.Exp(-scale*totalLoad*0.7))

	return RoundTo(Clamp(math.Min(logCurve, expCurve), 0, MaxStrain), 1)
}

// StrainLevel returns a short label for a strain score
func StrainLevel(score float64) string {
	switch {
	case score >= 18:
		return "All out"
	case score >= 14:
		return "Strenuous"
	case score >= 10:
		return "Moderate"
	default:
		return "Light"
	}
}
