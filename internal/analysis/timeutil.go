package analysis

import (
	"math"
	"sort"
	"time"

	"healthscore/internal/store"
)

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End)
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration returns the interval length, never negative
func (iv Interval) Duration() time.Duration {
	if iv.End.Before(iv.Start) {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// DayStart returns local midnight of t's day in t's location
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBounds returns [midnight, next midnight) for t's day
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := DayStart(t)
	return start, start.AddDate(0, 0, 1)
}

// DaysBefore returns the start of the day n days before t
func DaysBefore(t time.Time, n int) time.Time {
	return DayStart(t).AddDate(0, 0, -n)
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Minutes converts a duration to fractional minutes
func Minutes(d time.Duration) float64 {
	return d.Minutes()
}

// Hours converts a duration to fractional hours
func Hours(d time.Duration) float64 {
	return d.Hours()
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 bounds v to [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// RoundTo rounds v to the given number of decimal places
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Normalize maps v from [lo, hi] onto [0, 100], clamped.
// A degenerate range yields 100 when v >= hi and 0 otherwise.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		if v >= hi {
			return 100
		}
		return 0
	}
	return Clamp((v-lo)/(hi-lo)*100, 0, 100)
}

// NormalizeInverted is Normalize for metrics where lower is better
func NormalizeInverted(v, lo, hi float64) float64 {
	return 100 - Normalize(v, lo, hi)
}

// BucketByDay groups samples by the start of day of their start time
func BucketByDay(samples []store.Sample) map[time.Time][]store.Sample {
	buckets := make(map[time.Time][]store.Sample)
	for _, s := range samples {
		key := DayStart(s.Start)
		buckets[key] = append(buckets[key], s)
	}
	return buckets
}

// BucketByHour groups samples by the start of the hour of their start time
func BucketByHour(samples []store.Sample) map[time.Time][]store.Sample {
	buckets := make(map[time.Time][]store.Sample)
	for _, s := range samples {
		t := s.Start
		key := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		buckets[key] = append(buckets[key], s)
	}
	return buckets
}

// SortedDays returns the keys of a bucket map in ascending order
func SortedDays(buckets map[time.Time][]store.Sample) []time.Time {
	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})
	return keys
}

// SamplesInRange returns samples whose start lies in [start, end)
func SamplesInRange(samples []store.Sample, start, end time.Time) []store.Sample {
	var out []store.Sample
	for _, s := range samples {
		if !s.Start.Before(start) && s.Start.Before(end) {
			out = append(out, s)
		}
	}
	return out
}

// SamplesWithin returns samples whose start lies in any of the intervals
func SamplesWithin(samples []store.Sample, intervals []Interval) []store.Sample {
	var out []store.Sample
	for _, s := range samples {
		if inAny(s.Start, intervals) {
			out = append(out, s)
		}
	}
	return out
}

// Quantities extracts sample values
func Quantities(samples []store.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Quantity
	}
	return out
}

func inAny(t time.Time, intervals []Interval) bool {
	for _, iv := range intervals {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// unionDuration returns the total length covered by intervals, counting
// overlaps once.
func unionDuration(intervals []Interval) time.Duration {
	if len(intervals) == 0 {
		return 0
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var total time.Duration
	cur := sorted[0]
	for _, iv := range sorted[1:] {
		if !iv.Start.After(cur.End) {
			if iv.End.After(cur.End) {
				cur.End = iv.End
			}
			continue
		}
		total += cur.Duration()
		cur = iv
	}
	return total + cur.Duration()
}
