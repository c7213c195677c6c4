package analysis

import "math"

// RecoveryMode records which weight table produced the total
type RecoveryMode string

const (
	ModeBiometric RecoveryMode = "biometric"
	ModeLifestyle RecoveryMode = "lifestyle"
)

// Population ranges used when no personal baseline is known
const (
	hrvRangeLow, hrvRangeHigh     = 20.0, 85.0
	rhrRangeLow, rhrRangeHigh     = 40.0, 100.0
	respRangeLow, respRangeHigh   = 8.0, 20.0
	sleepRangeLow, sleepRangeHigh = 60.0, 100.0
	maxAlcoholDrinks              = 5.0
	maxNutritionQuality           = 10.0
)

type recoveryWeights struct {
	hrv, rhr, resp, sleep, lifestyle float64
}

var (
	biometricWeights = recoveryWeights{hrv: 0.5, rhr: 0.25, resp: 0.125, sleep: 0.125}
	lifestyleWeights = recoveryWeights{hrv: 0.4, rhr: 0.2, resp: 0.1, sleep: 0.2, lifestyle: 0.1}
)

func (w recoveryWeights) sum() float64 {
	return w.hrv + w.rhr + w.resp + w.sleep + w.lifestyle
}

// PersonalBaselines narrows the normalization ranges around the user's own
// values. A zero field keeps the population range for that metric.
type PersonalBaselines struct {
	HRV         float64
	RHR         float64
	Respiratory float64
}

// Lifestyle carries the optional behavioural inputs
type Lifestyle struct {
	PriorStrain      *float64
	HydrationML      *float64
	AlcoholDrinks    *float64
	NutritionQuality *float64
}

func (l *Lifestyle) empty() bool {
	return l == nil || (l.PriorStrain == nil && l.HydrationML == nil &&
		l.AlcoholDrinks == nil && l.NutritionQuality == nil)
}

// RecoveryInput is everything the recovery score reads
type RecoveryInput struct {
	HRV             []float64 // ms; mean is used
	RestingHR       float64   // bpm
	RespiratoryRate float64   // breaths/min
	SleepEfficiency float64   // percent
	Baselines       *PersonalBaselines
	Lifestyle       *Lifestyle
}

// RecoveryMetrics holds each normalized sub-score on 0-100.
// Lifestyle fields are nil when no input was given.
type RecoveryMetrics struct {
	HRV             float64  `json:"hrv"`
	RHR             float64  `json:"rhr"`
	Respiratory     float64  `json:"respiratory"`
	SleepEfficiency float64  `json:"sleep_efficiency"`
	Strain          *float64 `json:"strain,omitempty"`
	Hydration       *float64 `json:"hydration,omitempty"`
	Alcohol         *float64 `json:"alcohol,omitempty"`
	Nutrition       *float64 `json:"nutrition,omitempty"`
}

// RecoveryBreakdown is the recovery score with its components
type RecoveryBreakdown struct {
	BiometricScore float64         `json:"biometric_score"`
	LifestyleScore float64         `json:"lifestyle_score"`
	TotalScore     float64         `json:"total_score"`
	Metrics        RecoveryMetrics `json:"metrics"`
	Mode           RecoveryMode    `json:"mode"`
}

// Recovery scores readiness on 0-100 from biometrics and, when supplied,
// lifestyle inputs. Missing biometrics take the configured defaults.
func Recovery(in RecoveryInput, cfg Config) RecoveryBreakdown {
	hrv := Mean(in.HRV)
	if len(in.HRV) == 0 {
		hrv = cfg.HRVBaseline
	}
	rhr := orDefault(in.RestingHR, cfg.RestingHR)
	resp := orDefault(in.RespiratoryRate, cfg.RespiratoryBaseline)
	sleepEff := orDefault(in.SleepEfficiency, cfg.SleepEfficiency)

	var base PersonalBaselines
	if in.Baselines != nil {
		base = *in.Baselines
	}

	var m RecoveryMetrics
	lo, hi := hrvRange(base.HRV)
	m.HRV = Normalize(hrv, lo, hi)
	lo, hi = rhrRange(base.RHR)
	m.RHR = NormalizeInverted(rhr, lo, hi)
	lo, hi = respRange(base.Respiratory)
	m.Respiratory = NormalizeInverted(resp, lo, hi)
	m.SleepEfficiency = Normalize(sleepEff, sleepRangeLow, sleepRangeHigh)

	b := RecoveryBreakdown{Mode: ModeBiometric}
	b.BiometricScore = RoundTo(Clamp(weightedBiometrics(m, biometricWeights), 0, 100), 1)

	if in.Lifestyle.empty() {
		b.Metrics = m
		b.TotalScore = b.BiometricScore
		return b
	}

	b.Mode = ModeLifestyle
	b.LifestyleScore = lifestyleScore(in.Lifestyle, &m, cfg)
	b.Metrics = m

	total := weightedBiometrics(m, lifestyleWeights) + b.LifestyleScore*lifestyleWeights.lifestyle
	b.LifestyleScore = RoundTo(b.LifestyleScore, 1)
	b.TotalScore = RoundTo(Clamp(total, 0, 100), 1)
	return b
}

func weightedBiometrics(m RecoveryMetrics, w recoveryWeights) float64 {
	return m.HRV*w.hrv + m.RHR*w.rhr + m.Respiratory*w.resp + m.SleepEfficiency*w.sleep
}

// lifestyleScore fills the lifestyle metrics and returns their weighted mean,
// renormalized over the ones present.
func lifestyleScore(l *Lifestyle, m *RecoveryMetrics, cfg Config) float64 {
	type part struct {
		weight float64
		score  float64
	}
	var parts []part

	if l.PriorStrain != nil {
		v := NormalizeInverted(*l.PriorStrain, 0, MaxStrain)
		m.Strain = &v
		parts = append(parts, part{0.4, v})
	}
	if l.HydrationML != nil {
		v := Normalize(*l.HydrationML, 0, cfg.HydrationTargetML)
		m.Hydration = &v
		parts = append(parts, part{0.2, v})
	}
	if l.AlcoholDrinks != nil {
		v := NormalizeInverted(*l.AlcoholDrinks, 0, maxAlcoholDrinks)
		m.Alcohol = &v
		parts = append(parts, part{0.2, v})
	}
	if l.NutritionQuality != nil {
		v := Normalize(*l.NutritionQuality, 0, maxNutritionQuality)
		m.Nutrition = &v
		parts = append(parts, part{0.2, v})
	}

	var sum, weights float64
	for _, p := range parts {
		sum += p.score * p.weight
		weights += p.weight
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

func hrvRange(baseline float64) (float64, float64) {
	if baseline <= 0 {
		return hrvRangeLow, hrvRangeHigh
	}
	return math.Max(10, 0.5*baseline), 1.5 * baseline
}

func rhrRange(baseline float64) (float64, float64) {
	if baseline <= 0 {
		return rhrRangeLow, rhrRangeHigh
	}
	return math.Max(30, 0.7*baseline), 1.3 * baseline
}

func respRange(baseline float64) (float64, float64) {
	if baseline <= 0 {
		return respRangeLow, respRangeHigh
	}
	return math.Max(4, 0.7*baseline), 1.3 * baseline
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// RecoveryLevel returns a short label for a recovery score
func RecoveryLevel(score float64) string {
	switch {
	case score >= 67:
		return "Recovered"
	case score >= 34:
		return "Moderate"
	default:
		return "Low"
	}
}
