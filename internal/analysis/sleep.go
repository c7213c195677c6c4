package analysis

import (
	"math"
	"sort"
	"time"

	"healthscore/internal/store"
)

// MinMainSleep is the asleep time a cluster needs to count as a night's sleep
const MinMainSleep = 3 * time.Hour

// Minimum reference samples before percentiles replace baseline thresholds
const minReferenceSamples = 10

// SleepCluster is a run of sleep-stage samples with no gap longer than the
// clustering gap.
type SleepCluster struct {
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Asleep      time.Duration `json:"-"`
	InBed       time.Duration `json:"-"`
	Awake       time.Duration `json:"-"`
	IsMainSleep bool          `json:"is_main_sleep"`
}

// Window returns the cluster's time span
func (c SleepCluster) Window() Interval {
	return Interval{Start: c.Start, End: c.End}
}

// ClusterSleep groups sleep-stage samples into sessions, starting a new one
// whenever the next sample begins more than gap after the current session ends.
func ClusterSleep(samples []store.Sample, gap time.Duration) []SleepCluster {
	if len(samples) == 0 {
		return nil
	}
	sorted := make([]store.Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var clusters []SleepCluster
	var group []store.Sample
	var groupEnd time.Time

	flush := func() {
		if len(group) > 0 {
			clusters = append(clusters, buildCluster(group))
		}
		group = nil
	}

	for _, s := range sorted {
		if len(group) > 0 && s.Start.Sub(groupEnd) > gap {
			flush()
		}
		if len(group) == 0 || s.End.After(groupEnd) {
			groupEnd = s.End
		}
		group = append(group, s)
	}
	flush()
	return clusters
}

func buildCluster(group []store.Sample) SleepCluster {
	c := SleepCluster{Start: group[0].Start, End: group[0].End}
	var asleep, awake []Interval
	for _, s := range group {
		if s.End.After(c.End) {
			c.End = s.End
		}
		iv := Interval{Start: s.Start, End: s.End}
		switch st := s.Stage(); {
		case st.IsAsleep():
			asleep = append(asleep, iv)
		case st == store.StageAwake:
			awake = append(awake, iv)
		}
	}
	c.Asleep = unionDuration(asleep)
	c.Awake = unionDuration(awake)
	c.InBed = c.End.Sub(c.Start)
	return c
}

// MarkMainSleep flags the cluster with the most asleep time, provided it
// reaches MinMainSleep. Ties go to the earliest cluster.
func MarkMainSleep(clusters []SleepCluster) []SleepCluster {
	best := -1
	for i := range clusters {
		clusters[i].IsMainSleep = false
		if clusters[i].Asleep < MinMainSleep {
			continue
		}
		if best < 0 || clusters[i].Asleep > clusters[best].Asleep {
			best = i
		}
	}
	if best >= 0 {
		clusters[best].IsMainSleep = true
	}
	return clusters
}

// MainSleepFor returns the main sleep among the clusters ending on day
func MainSleepFor(clusters []SleepCluster, day time.Time) (SleepCluster, bool) {
	var candidates []SleepCluster
	for _, c := range clusters {
		if SameDay(day, c.End) {
			candidates = append(candidates, c)
		}
	}
	for _, c := range MarkMainSleep(candidates) {
		if c.IsMainSleep {
			return c, true
		}
	}
	return SleepCluster{}, false
}

// SleepNeed is how much sleep the night calls for
type SleepNeed struct {
	Baseline         time.Duration `json:"-"`
	Debt             time.Duration `json:"-"`
	StrainAdjustment time.Duration `json:"-"`
}

// Total returns the full need
func (n SleepNeed) Total() time.Duration {
	return n.Baseline + n.Debt + n.StrainAdjustment
}

// Limits on the additions to baseline sleep need
const (
	maxSleepDebt       = 2 * time.Hour
	maxStrainExtension = time.Hour
	sleepDebtNights    = 3
)

// ComputeSleepNeed adds the recent shortfall (last three nights, capped at
// two hours) and an hour scaled by prior strain to the baseline need.
func ComputeSleepNeed(baseline time.Duration, previousNights []time.Duration, priorStrain float64) SleepNeed {
	if len(previousNights) > sleepDebtNights {
		previousNights = previousNights[len(previousNights)-sleepDebtNights:]
	}

	var debt time.Duration
	for _, slept := range previousNights {
		if slept < baseline {
			debt += baseline - slept
		}
	}
	if debt > maxSleepDebt {
		debt = maxSleepDebt
	}

	adj := time.Duration(Clamp(priorStrain/MaxStrain, 0, 1) * float64(maxStrainExtension))

	return SleepNeed{Baseline: baseline, Debt: debt, StrainAdjustment: adj}
}

// SleepPhysiology holds the signals recorded during sleep
type SleepPhysiology struct {
	HR          []store.Sample
	HRV         []store.Sample
	Respiratory []store.Sample
}

func (p SleepPhysiology) within(iv Interval) SleepPhysiology {
	w := []Interval{iv}
	return SleepPhysiology{
		HR:          SamplesWithin(p.HR, w),
		HRV:         SamplesWithin(p.HRV, w),
		Respiratory: SamplesWithin(p.Respiratory, w),
	}
}

// SleepBaseline holds the personal references for sleep stress
type SleepBaseline struct {
	RHR         float64
	HRV         float64
	Respiratory float64
}

// SleepInput is everything the sleep score reads. Stages should cover the
// target night plus earlier nights for consistency. History holds physiology
// from earlier nights used as the percentile reference.
type SleepInput struct {
	Stages     []store.Sample
	TargetDate time.Time
	Need       SleepNeed
	Physiology SleepPhysiology
	History    SleepPhysiology
	Baseline   SleepBaseline
}

// SleepPerformance is the night's sleep score with its four components
type SleepPerformance struct {
	HoursVsNeeded    float64       `json:"hours_vs_needed"`
	SleepConsistency float64       `json:"sleep_consistency"`
	SleepEfficiency  float64       `json:"sleep_efficiency"`
	SleepStress      float64       `json:"sleep_stress"`
	OverallScore     float64       `json:"overall_score"`
	MainSleep        *SleepCluster `json:"main_sleep,omitempty"`
}

// consistencyNights is how many nights the consistency score looks back over
const consistencyNights = 5

// SleepScore scores the main sleep ending on in.TargetDate. Without a main
// sleep every component is zero.
func SleepScore(in SleepInput, cfg Config) SleepPerformance {
	clusters := ClusterSleep(in.Stages, cfg.SleepGap)
	main, ok := MainSleepFor(clusters, in.TargetDate)
	if !ok {
		return SleepPerformance{}
	}

	need := in.Need.Total()
	if need <= 0 {
		need = cfg.SleepNeed
	}
	if need <= 0 {
		need = 8 * time.Hour
	}

	var awakePct float64
	if main.InBed > 0 {
		awakePct = float64(main.Awake) / float64(main.InBed) * 100
	}

	p := SleepPerformance{MainSleep: &main}
	p.HoursVsNeeded = math.Min(100, Hours(main.Asleep)/Hours(need)*100)
	if main.InBed > 0 {
		p.SleepEfficiency = math.Min(100, float64(main.Asleep)/float64(main.InBed)*100)
	}
	p.SleepConsistency = sleepConsistency(clusters, in.TargetDate, awakePct)
	p.SleepStress = sleepStress(in, main, awakePct, cfg)
	p.OverallScore = math.Round(Mean([]float64{
		p.HoursVsNeeded, p.SleepConsistency, p.SleepEfficiency, p.SleepStress,
	}))
	return p
}

// sleepConsistency scores how regular bed and wake times were over recent
// nights. With fewer than two nights it falls back to time awake.
func sleepConsistency(clusters []SleepCluster, target time.Time, awakePct float64) float64 {
	var bedtimes, waketimes []float64
	for i := consistencyNights - 1; i >= 0; i-- {
		night, ok := MainSleepFor(clusters, DaysBefore(target, i))
		if !ok {
			continue
		}
		bedtimes = append(bedtimes, minutesFromNoon(night.Start))
		waketimes = append(waketimes, minutesFromMidnight(night.End))
	}

	if len(bedtimes) < 2 {
		return Clamp(100-2*awakePct, 0, 100)
	}

	avgVariance := (MeanAbsDeviation(bedtimes) + MeanAbsDeviation(waketimes)) / 2
	return math.Max(0, 100-avgVariance/6)
}

// minutesFromNoon measures a bedtime from the preceding noon so that times
// either side of midnight stay comparable.
func minutesFromNoon(t time.Time) float64 {
	m := t.Hour()*60 + t.Minute() - 12*60
	if m < 0 {
		m += 24 * 60
	}
	return float64(m)
}

func minutesFromMidnight(t time.Time) float64 {
	return float64(t.Hour()*60 + t.Minute())
}

// sleepStress scores physiological calm during the main sleep on 0-100.
func sleepStress(in SleepInput, main SleepCluster, awakePct float64, cfg Config) float64 {
	night := in.Physiology.within(main.Window())
	if len(night.HR) == 0 && len(night.HRV) == 0 && len(night.Respiratory) == 0 {
		return Clamp(100-4*awakePct, 0, 100)
	}

	rhr := orDefault(in.Baseline.RHR, cfg.RestingHR)
	hrv := orDefault(in.Baseline.HRV, cfg.HRVBaseline)
	resp := orDefault(in.Baseline.Respiratory, cfg.RespiratoryBaseline)

	var sum, weights float64
	if len(night.HR) > 0 {
		threshold := rhr * 1.1
		if ref := Quantities(in.History.HR); len(ref) >= minReferenceSamples {
			threshold = Percentile(ref, 0.90)
		}
		sum += 0.4 * fractionWhere(night.HR, func(v float64) bool { return v > threshold })
		weights += 0.4
	}
	if len(night.HRV) > 0 {
		threshold := hrv * 0.7
		if ref := Quantities(in.History.HRV); len(ref) >= minReferenceSamples {
			threshold = Percentile(ref, 0.10)
		}
		sum += 0.4 * fractionWhere(night.HRV, func(v float64) bool { return v < threshold })
		weights += 0.4
	}
	if len(night.Respiratory) > 0 {
		threshold := resp * 1.15
		sum += 0.2 * fractionWhere(night.Respiratory, func(v float64) bool { return v > threshold })
		weights += 0.2
	}

	combined := sum / weights
	return Clamp(100*(1-combined), 0, 100)
}

func fractionWhere(samples []store.Sample, pred func(float64) bool) float64 {
	if len(samples) == 0 {
		return 0
	}
	n := 0
	for _, s := range samples {
		if pred(s.Quantity) {
			n++
		}
	}
	return float64(n) / float64(len(samples))
}
