package service

import (
	"context"
	"time"

	"healthscore/internal/analysis"
)

// Trend is a run of daily scores with the strain load balance over them
type Trend struct {
	Days []DailyScores          `json:"days"`
	Load []analysis.LoadBalance `json:"load"`
}

// Trend scores each of the days days ending with end, oldest first.
// The samples for the whole range are fetched once.
func (s *ScoreService) Trend(ctx context.Context, state InitState, end time.Time, days int) (*Trend, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}

	_, rangeEnd := analysis.DayBounds(end)
	lookback := days + s.windowDays()
	data, err := s.fetch(ctx, state, analysis.DaysBefore(rangeEnd, lookback), rangeEnd)
	if err != nil {
		return nil, err
	}

	// Strain over the full lookback seeds the load EMAs
	rhrSamples := analysis.RestingHRFromSamples(data.hr)
	var strain []analysis.DailyStrain
	for i := lookback - 1; i >= 0; i-- {
		day := analysis.DaysBefore(rangeEnd, i+1)
		rhr := analysis.DailyBaselines(data.hrv, rhrSamples, analysis.DaysBefore(rangeEnd, i), s.cfg).RHR
		b := analysis.Strain(data.hr, data.workouts, day, rhr, s.cfg.MaxHR, s.cfg)
		strain = append(strain, analysis.DailyStrain{Date: day, Strain: b.Score})
	}

	t := &Trend{}
	for i := days - 1; i >= 0; i-- {
		t.Days = append(t.Days, s.scoreDay(data, analysis.DaysBefore(rangeEnd, i+1)))
	}

	load := analysis.LoadBalanceTrend(strain)
	if len(load) > days {
		load = load[len(load)-days:]
	}
	t.Load = load

	s.logger.Debug("computed trend", "days", days, "end", end.Format("2006-01-02"))
	return t, nil
}
