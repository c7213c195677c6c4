package analysis

import (
	"strings"
	"time"
)

// FitnessLevel scales how quickly load turns into strain
type FitnessLevel string

const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
)

// Factor returns the strain scale multiplier for the level.
// Unknown levels are treated as intermediate.
func (f FitnessLevel) Factor() float64 {
	switch FitnessLevel(strings.ToLower(string(f))) {
	case FitnessBeginner:
		return 1.1
	case FitnessAdvanced:
		return 0.9
	default:
		return 1.0
	}
}

// MaxHRFormula selects how max heart rate is estimated from age
type MaxHRFormula string

const (
	FormulaFox     MaxHRFormula = "fox"     // 220 - age
	FormulaTanaka  MaxHRFormula = "tanaka"  // 208 - 0.7*age
	FormulaGellish MaxHRFormula = "gellish" // 207 - 0.7*age
	FormulaManual  MaxHRFormula = "manual"
)

// MuscleMultipliers convert a strength workout's load into points
type MuscleMultipliers struct {
	PerKg     float64
	PerKcal   float64
	PerMinute float64
}

// Config holds every constant the scoring engine reads.
// Callers normally build it with config.Config.Resolve.
type Config struct {
	RestingHR               float64
	MaxHR                   float64
	MaxHRFallbackAdjustment float64
	HRVBaseline             float64
	RespiratoryBaseline     float64
	SleepEfficiency         float64

	ZoneFractions [5]float64
	ZoneWeights   [5]float64
	Muscle        MuscleMultipliers

	ActivityThresholdPct float64
	StrainScaleFactor    float64
	FitnessLevel         FitnessLevel
	StressSensitivity    float64

	BaselineDays       int
	BaselineMinSamples int
	SleepGap           time.Duration
	SleepNeed          time.Duration
	HydrationTargetML  float64

	DefaultSampleInterval time.Duration
	MaxSampleGap          time.Duration
}

// DefaultConfig returns the system defaults
func DefaultConfig() Config {
	return Config{
		RestingHR:               60,
		MaxHR:                   190,
		MaxHRFallbackAdjustment: 40,
		HRVBaseline:             45,
		RespiratoryBaseline:     14,
		SleepEfficiency:         85,

		ZoneFractions: [5]float64{0.50, 0.60, 0.70, 0.80, 0.90},
		ZoneWeights:   [5]float64{1, 2, 3, 4, 5},
		Muscle: MuscleMultipliers{
			PerKg:     0.02,
			PerKcal:   0.3,
			PerMinute: 1.5,
		},

		ActivityThresholdPct: 0.3,
		StrainScaleFactor:    0.01,
		FitnessLevel:         FitnessIntermediate,
		StressSensitivity:    0.8,

		BaselineDays:       14,
		BaselineMinSamples: 3,
		SleepGap:           3 * time.Hour,
		SleepNeed:          8 * time.Hour,
		HydrationTargetML:  2500,

		DefaultSampleInterval: time.Minute,
		MaxSampleGap:          10 * time.Minute,
	}
}

// MaxHR estimates max heart rate. The manual value is used only with
// FormulaManual; other formulas are applied to age. Without a usable manual
// value or age the system default is returned.
func MaxHR(formula MaxHRFormula, age int, manual, systemDefault float64) float64 {
	if formula == FormulaManual {
		if manual > 0 {
			return manual
		}
		return systemDefault
	}
	if age <= 0 {
		return systemDefault
	}

	a := float64(age)
	switch formula {
	case FormulaTanaka:
		return 208 - 0.7*a
	case FormulaGellish:
		return 207 - 0.7*a
	default:
		return 220 - a
	}
}
