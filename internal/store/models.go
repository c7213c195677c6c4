package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// SampleKind identifies which biometric series a sample belongs to
type SampleKind string

const (
	KindHeartRate        SampleKind = "heart_rate"        // bpm
	KindHRV              SampleKind = "hrv_sdnn"          // ms
	KindRespiratoryRate  SampleKind = "respiratory_rate"  // breaths/min
	KindOxygenSaturation SampleKind = "oxygen_saturation" // percent
	KindSleepStage       SampleKind = "sleep_stage"       // SleepStage code
)

// Valid reports whether k is one of the known sample kinds
func (k SampleKind) Valid() bool {
	switch k {
	case KindHeartRate, KindHRV, KindRespiratoryRate, KindOxygenSaturation, KindSleepStage:
		return true
	}
	return false
}

// SleepStage mirrors the HealthKit sleep analysis category values
type SleepStage int

const (
	StageInBed SleepStage = iota
	StageAsleepUnspecified
	StageAwake
	StageAsleepCore
	StageAsleepDeep
	StageAsleepREM
)

// IsAsleep reports whether the stage counts toward asleep time
func (s SleepStage) IsAsleep() bool {
	switch s {
	case StageAsleepUnspecified, StageAsleepCore, StageAsleepDeep, StageAsleepREM:
		return true
	}
	return false
}

func (s SleepStage) String() string {
	switch s {
	case StageInBed:
		return "in_bed"
	case StageAsleepUnspecified:
		return "asleep"
	case StageAwake:
		return "awake"
	case StageAsleepCore:
		return "core"
	case StageAsleepDeep:
		return "deep"
	case StageAsleepREM:
		return "rem"
	default:
		return "unknown"
	}
}

// Sample is a single timestamped biometric reading
type Sample struct {
	Kind     SampleKind `db:"kind"`
	Start    time.Time  `db:"start_time"`
	End      time.Time  `db:"end_time"`
	Quantity float64    `db:"quantity"`
	Source   string     `db:"source"`
}

// Stage returns the sleep stage encoded in a sleep_stage sample
func (s Sample) Stage() SleepStage {
	return SleepStage(int(s.Quantity))
}

// Duration returns End - Start, or 0 for instantaneous readings
func (s Sample) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// ActivityType classifies workouts
type ActivityType string

const (
	ActivityFunctionalStrength  ActivityType = "functional_strength"
	ActivityTraditionalStrength ActivityType = "traditional_strength"
	ActivityCrossTraining       ActivityType = "cross_training"
	ActivityRunning             ActivityType = "running"
	ActivityCycling             ActivityType = "cycling"
	ActivityWalking             ActivityType = "walking"
	ActivityOther               ActivityType = "other"
)

// IsStrength reports whether the activity contributes muscular load
func (a ActivityType) IsStrength() bool {
	switch a {
	case ActivityFunctionalStrength, ActivityTraditionalStrength, ActivityCrossTraining:
		return true
	}
	return false
}

// Workout is a recorded training session
type Workout struct {
	ExternalID          string       `db:"external_id"`
	ActivityType        ActivityType `db:"activity_type"`
	Start               time.Time    `db:"start_time"`
	End                 time.Time    `db:"end_time"`
	TotalEnergyKcal     *float64     `db:"total_energy_kcal"`      // nullable
	DurationSeconds     *float64     `db:"duration_seconds"`       // nullable
	TotalWeightLiftedKg *float64     `db:"total_weight_lifted_kg"` // nullable
	Source              string       `db:"source"`
}

// WorkoutLoad is the measure used to score a workout's muscular load.
// It is one of WeightLifted, EnergyBurned or DurationOnly.
type WorkoutLoad interface {
	workoutLoad()
}

// WeightLifted scores a workout by total mass moved
type WeightLifted struct{ Kg float64 }

// EnergyBurned scores a workout by active energy
type EnergyBurned struct{ Kcal float64 }

// DurationOnly scores a workout by how long it lasted
type DurationOnly struct{ Duration time.Duration }

func (WeightLifted) workoutLoad() {}
func (EnergyBurned) workoutLoad() {}
func (DurationOnly) workoutLoad() {}

// Load picks the workout's load measure. Weight lifted wins over energy,
// energy wins over duration. Duration falls back to End - Start.
func (w Workout) Load() WorkoutLoad {
	if w.TotalWeightLiftedKg != nil && *w.TotalWeightLiftedKg > 0 {
		return WeightLifted{Kg: *w.TotalWeightLiftedKg}
	}
	if w.TotalEnergyKcal != nil && *w.TotalEnergyKcal > 0 {
		return EnergyBurned{Kcal: *w.TotalEnergyKcal}
	}
	if w.DurationSeconds != nil && *w.DurationSeconds > 0 {
		return DurationOnly{Duration: time.Duration(*w.DurationSeconds * float64(time.Second))}
	}
	d := w.End.Sub(w.Start)
	if d < 0 {
		d = 0
	}
	return DurationOnly{Duration: d}
}
