package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"healthscore/internal/analysis"
	"healthscore/internal/store"
)

// Vitals summarizes the day's passive readings
type Vitals struct {
	AvgSpO2        float64 `json:"avg_spo2,omitempty"`
	AvgRespiratory float64 `json:"avg_respiratory,omitempty"`
}

// DailyScores is every score computed for one calendar day
type DailyScores struct {
	Date          time.Time                  `json:"date"`
	DataAvailable bool                       `json:"data_available"`
	Strain        analysis.StrainBreakdown   `json:"strain"`
	Recovery      analysis.RecoveryBreakdown `json:"recovery"`
	Stress        analysis.StressDayMetrics  `json:"stress"`
	Sleep         analysis.SleepPerformance  `json:"sleep"`
	SleepNeed     analysis.SleepNeed         `json:"sleep_need"`
	Baseline      analysis.DailyBaseline     `json:"baseline"`
	Vitals        Vitals                     `json:"vitals"`
}

// ScoreService fetches samples and runs the scoring engine
type ScoreService struct {
	provider SampleProvider
	cfg      analysis.Config
	logger   *slog.Logger
}

// NewScoreService creates a score service
func NewScoreService(provider SampleProvider, cfg analysis.Config, logger *slog.Logger) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{provider: provider, cfg: cfg, logger: logger}
}

// Config returns the engine configuration in use
func (s *ScoreService) Config() analysis.Config {
	return s.cfg
}

// dayData is the raw input fetched for a window of days
type dayData struct {
	hr, hrv, resp, spo2, sleep []store.Sample
	workouts                   []store.Workout
}

func (d dayData) empty() bool {
	return len(d.hr) == 0 && len(d.hrv) == 0 && len(d.resp) == 0 &&
		len(d.spo2) == 0 && len(d.sleep) == 0 && len(d.workouts) == 0
}

// DailyScores computes all scores for the day containing date. Provider
// failures are logged and scored as missing data.
func (s *ScoreService) DailyScores(ctx context.Context, state InitState, date time.Time) (*DailyScores, error) {
	_, dayEnd := analysis.DayBounds(date)
	from := analysis.DaysBefore(dayEnd, s.windowDays())

	data, err := s.fetch(ctx, state, from, dayEnd)
	if err != nil {
		return nil, err
	}

	scores := s.scoreDay(data, date)
	s.logger.Debug("scored day",
		"date", scores.Date.Format("2006-01-02"),
		"strain", scores.Strain.Score,
		"recovery", scores.Recovery.TotalScore,
		"stress", scores.Stress.TotalDayStress,
		"sleep", scores.Sleep.OverallScore,
	)
	return &scores, nil
}

// windowDays covers the baseline window plus the consistency lookback
func (s *ScoreService) windowDays() int {
	days := s.cfg.BaselineDays
	if days <= 0 {
		days = 14
	}
	return days + 1
}

// fetch loads every series for [from, to) concurrently
func (s *ScoreService) fetch(ctx context.Context, state InitState, from, to time.Time) (dayData, error) {
	var d dayData
	if !state.ProviderAvailable {
		s.logger.Warn("sample provider unavailable, scoring with defaults", "reason", state.Reason)
		return d, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	tolerate := func(what string, err error) error {
		if ctxErr := gctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn("sample query failed", "series", what, "error", err)
		return nil
	}

	series := []struct {
		kind store.SampleKind
		dst  *[]store.Sample
	}{
		{store.KindHeartRate, &d.hr},
		{store.KindHRV, &d.hrv},
		{store.KindRespiratoryRate, &d.resp},
		{store.KindOxygenSaturation, &d.spo2},
		{store.KindSleepStage, &d.sleep},
	}
	for _, sr := range series {
		g.Go(func() error {
			samples, err := s.provider.Samples(gctx, sr.kind, from, to)
			if err != nil {
				return tolerate(string(sr.kind), err)
			}
			*sr.dst = samples
			return nil
		})
	}
	g.Go(func() error {
		workouts, err := s.provider.Workouts(gctx, from, to)
		if err != nil {
			return tolerate("workouts", err)
		}
		d.workouts = workouts
		return nil
	})

	if err := g.Wait(); err != nil {
		return dayData{}, fmt.Errorf("fetching samples: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return dayData{}, err
	}
	d.in(from.Location())
	return d, nil
}

// in moves every timestamp into loc. Day and hour bucketing follow each
// sample's own location, and providers may hand back UTC.
func (d *dayData) in(loc *time.Location) {
	for _, series := range [][]store.Sample{d.hr, d.hrv, d.resp, d.spo2, d.sleep} {
		for i := range series {
			series[i].Start = series[i].Start.In(loc)
			series[i].End = series[i].End.In(loc)
		}
	}
	for i := range d.workouts {
		d.workouts[i].Start = d.workouts[i].Start.In(loc)
		d.workouts[i].End = d.workouts[i].End.In(loc)
	}
}

// scoreDay runs the engine over data for the day containing date
func (s *ScoreService) scoreDay(d dayData, date time.Time) DailyScores {
	cfg := s.cfg
	dayStart, dayEnd := analysis.DayBounds(date)
	prevDay := analysis.DaysBefore(dayStart, 1)

	out := DailyScores{Date: dayStart, DataAvailable: !d.empty()}

	rhrSamples := analysis.RestingHRFromSamples(d.hr)
	out.Baseline = analysis.DailyBaselines(d.hrv, rhrSamples, dayEnd, cfg)

	// Strain for today and yesterday
	out.Strain = analysis.Strain(d.hr, d.workouts, dayStart, out.Baseline.RHR, cfg.MaxHR, cfg)
	prior := analysis.Strain(d.hr, d.workouts, prevDay, out.Baseline.RHR, cfg.MaxHR, cfg)

	// Sleep
	clusters := analysis.ClusterSleep(d.sleep, cfg.SleepGap)
	var previousNights []time.Duration
	for i := SleepDebtNights; i >= 1; i-- {
		if night, ok := analysis.MainSleepFor(clusters, analysis.DaysBefore(dayStart, i)); ok {
			previousNights = append(previousNights, night.Asleep)
		}
	}
	out.SleepNeed = analysis.ComputeSleepNeed(cfg.SleepNeed, previousNights, prior.Score)

	respBaseline := personalBaseline(d.resp, dayEnd, cfg)
	out.Sleep = analysis.SleepScore(analysis.SleepInput{
		Stages:     d.sleep,
		TargetDate: dayStart,
		Need:       out.SleepNeed,
		Physiology: analysis.SleepPhysiology{HR: d.hr, HRV: d.hrv, Respiratory: d.resp},
		History:    sleepHistory(d, clusters, dayStart, s.windowDays()),
		Baseline: analysis.SleepBaseline{
			RHR:         out.Baseline.RHR,
			HRV:         out.Baseline.HRV,
			Respiratory: respBaseline,
		},
	}, cfg)

	// Stress over the day's waking and sleeping hours
	var sleepWindows, workoutWindows []analysis.Interval
	for _, c := range clusters {
		if c.End.After(dayStart) && c.Start.Before(dayEnd) {
			sleepWindows = append(sleepWindows, c.Window())
		}
	}
	for _, w := range d.workouts {
		workoutWindows = append(workoutWindows, analysis.Interval{Start: w.Start, End: w.End})
	}
	out.Stress = analysis.StressDay(
		analysis.SamplesInRange(d.hr, dayStart, dayEnd),
		analysis.SamplesInRange(d.hrv, dayStart, dayEnd),
		sleepWindows, workoutWindows, out.Baseline, cfg,
	)

	// Recovery
	todayResp := analysis.SamplesInRange(d.resp, dayStart, dayEnd)
	if out.Sleep.MainSleep != nil {
		if during := analysis.SamplesWithin(d.resp, []analysis.Interval{out.Sleep.MainSleep.Window()}); len(during) > 0 {
			todayResp = during
		}
	}
	var restingHR float64
	for _, r := range rhrSamples {
		if analysis.SameDay(r.Start, dayStart) {
			restingHR = r.Quantity
		}
	}
	priorStrain := prior.Score
	out.Recovery = analysis.Recovery(analysis.RecoveryInput{
		HRV:             analysis.Quantities(analysis.SamplesInRange(d.hrv, dayStart, dayEnd)),
		RestingHR:       restingHR,
		RespiratoryRate: analysis.Mean(analysis.Quantities(todayResp)),
		SleepEfficiency: out.Sleep.SleepEfficiency,
		Baselines: &analysis.PersonalBaselines{
			HRV:         personalBaseline(d.hrv, dayEnd, cfg),
			RHR:         personalBaseline(rhrSamples, dayEnd, cfg),
			Respiratory: respBaseline,
		},
		Lifestyle: &analysis.Lifestyle{PriorStrain: &priorStrain},
	}, cfg)

	out.Vitals = Vitals{
		AvgSpO2:        analysis.RoundTo(analysis.Mean(analysis.Quantities(analysis.SamplesInRange(d.spo2, dayStart, dayEnd))), 1),
		AvgRespiratory: analysis.RoundTo(analysis.Mean(analysis.Quantities(todayResp)), 1),
	}
	return out
}

// personalBaseline returns the rolling baseline, or 0 when the window is too
// sparse so that population ranges apply
func personalBaseline(samples []store.Sample, end time.Time, cfg analysis.Config) float64 {
	return analysis.Baseline(samples, analysis.BaselineOptions{
		End:        end,
		Days:       cfg.BaselineDays,
		MinSamples: cfg.BaselineMinSamples,
	})
}

// sleepHistory gathers physiology recorded during earlier main sleeps
func sleepHistory(d dayData, clusters []analysis.SleepCluster, dayStart time.Time, days int) analysis.SleepPhysiology {
	var windows []analysis.Interval
	for i := 1; i < days; i++ {
		if night, ok := analysis.MainSleepFor(clusters, analysis.DaysBefore(dayStart, i)); ok {
			windows = append(windows, night.Window())
		}
	}
	return analysis.SleepPhysiology{
		HR:          analysis.SamplesWithin(d.hr, windows),
		HRV:         analysis.SamplesWithin(d.hrv, windows),
		Respiratory: analysis.SamplesWithin(d.resp, windows),
	}
}
