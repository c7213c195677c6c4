package analysis

import (
	"sort"
	"time"
)

// DailyStrain is one day's strain score
type DailyStrain struct {
	Date   time.Time
	Strain float64
}

// LoadBalance compares recent strain with the longer-term norm
type LoadBalance struct {
	Date    time.Time `json:"date"`
	Acute   float64   `json:"acute"`   // 7-day EMA of strain
	Chronic float64   `json:"chronic"` // 28-day EMA of strain
	Balance float64   `json:"balance"` // Chronic - Acute
}

// EMA time constants in days
const (
	acuteDays   = 7.0
	chronicDays = 28.0
)

// LoadBalanceTrend computes acute and chronic strain EMAs, filling missing
// days with zero strain.
func LoadBalanceTrend(daily []DailyStrain) []LoadBalance {
	if len(daily) == 0 {
		return nil
	}

	sorted := make([]DailyStrain, len(daily))
	copy(sorted, daily)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	acuteDecay := 2.0 / (acuteDays + 1.0)
	chronicDecay := 2.0 / (chronicDays + 1.0)

	byDay := make(map[string]float64)
	for _, d := range sorted {
		// Keep the highest score if a day appears twice
		key := d.Date.Format("2006-01-02")
		if d.Strain > byDay[key] {
			byDay[key] = d.Strain
		}
	}

	start := DayStart(sorted[0].Date)
	end := DayStart(sorted[len(sorted)-1].Date)

	var out []LoadBalance
	var acute, chronic float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		strain := byDay[d.Format("2006-01-02")]

		acute += acuteDecay * (strain - acute)
		chronic += chronicDecay * (strain - chronic)

		out = append(out, LoadBalance{
			Date:    d,
			Acute:   acute,
			Chronic: chronic,
			Balance: chronic - acute,
		})
	}
	return out
}

// BalanceDescription returns a human-readable description of load balance
func BalanceDescription(balance float64) string {
	switch {
	case balance > 4:
		return "Very fresh (load dropping off)"
	case balance > 1.5:
		return "Fresh - ready for a hard day"
	case balance > -1.5:
		return "Balanced"
	case balance > -4:
		return "Building - strain above your norm"
	default:
		return "Overreaching - prioritize recovery"
	}
}
