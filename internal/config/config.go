package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"healthscore/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Defaults SystemDefaults `json:"defaults" yaml:"defaults"`
	Profile  UserProfile    `json:"profile" yaml:"profile"`
	Strava   StravaConfig   `json:"strava" yaml:"strava"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// SystemDefaults holds the constants used when personal data is missing
type SystemDefaults struct {
	RestingHR               float64      `json:"resting_hr" yaml:"resting_hr"`
	MaxHR                   float64      `json:"max_hr" yaml:"max_hr"`
	MaxHRFallbackAdjustment float64      `json:"max_hr_fallback_adjustment" yaml:"max_hr_fallback_adjustment"`
	RespiratoryBaseline     float64      `json:"respiratory_baseline" yaml:"respiratory_baseline"`
	SleepEfficiency         float64      `json:"sleep_efficiency" yaml:"sleep_efficiency"`
	HRVBaseline             float64      `json:"hrv_baseline" yaml:"hrv_baseline"`
	ZoneFractions           []float64    `json:"zone_fractions" yaml:"zone_fractions"`
	ZoneWeights             []float64    `json:"zone_weights" yaml:"zone_weights"`
	Muscle                  MuscleConfig `json:"muscle" yaml:"muscle"`
	ActivityThresholdPct    float64      `json:"activity_threshold_pct" yaml:"activity_threshold_pct"`
	StrainScaleFactor       float64      `json:"strain_scale_factor" yaml:"strain_scale_factor"`
	StressSensitivity       float64      `json:"stress_sensitivity" yaml:"stress_sensitivity"`
	BaselineDays            int          `json:"baseline_days" yaml:"baseline_days"`
	BaselineMinSamples      int          `json:"baseline_min_samples" yaml:"baseline_min_samples"`
	SleepGapMinutes         int          `json:"sleep_gap_minutes" yaml:"sleep_gap_minutes"`
	HydrationTargetML       float64      `json:"hydration_target_ml" yaml:"hydration_target_ml"`
}

// MuscleConfig holds the strength-workout point multipliers
type MuscleConfig struct {
	WeightPerKg       float64 `json:"weight_per_kg" yaml:"weight_per_kg"`
	EnergyPerKcal     float64 `json:"energy_per_kcal" yaml:"energy_per_kcal"`
	DurationPerMinute float64 `json:"duration_per_minute" yaml:"duration_per_minute"`
}

// UserProfile holds personal settings that override the system defaults
type UserProfile struct {
	RestingHR           float64 `json:"resting_hr" yaml:"resting_hr"`
	MaxHR               float64 `json:"max_hr" yaml:"max_hr"`
	MaxHRFormula        string  `json:"max_hr_formula" yaml:"max_hr_formula"`
	HRVBaseline         float64 `json:"hrv_baseline" yaml:"hrv_baseline"`
	RespiratoryBaseline float64 `json:"respiratory_baseline" yaml:"respiratory_baseline"`
	FitnessLevel        string  `json:"fitness_level" yaml:"fitness_level"`
	Age                 int     `json:"age" yaml:"age"`
	WeightKg            float64 `json:"weight_kg" yaml:"weight_kg"`
	SleepNeedHours      float64 `json:"sleep_need_hours" yaml:"sleep_need_hours"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
}

// StorageConfig holds the local database location
type StorageConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LoggingConfig holds the log level (debug, info, warn, error)
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Environment variables that override file values
const (
	EnvDBPath       = "HEALTHSCORE_DB_PATH"
	EnvClientID     = "STRAVA_CLIENT_ID"
	EnvClientSecret = "STRAVA_CLIENT_SECRET"
	EnvLogLevel     = "HEALTHSCORE_LOG_LEVEL"
)

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	d := analysis.DefaultConfig()
	return Config{
		Defaults: SystemDefaults{
			RestingHR:               d.RestingHR,
			MaxHR:                   d.MaxHR,
			MaxHRFallbackAdjustment: d.MaxHRFallbackAdjustment,
			RespiratoryBaseline:     d.RespiratoryBaseline,
			SleepEfficiency:         d.SleepEfficiency,
			HRVBaseline:             d.HRVBaseline,
			ZoneFractions:           d.ZoneFractions[:],
			ZoneWeights:             d.ZoneWeights[:],
			Muscle: MuscleConfig{
				WeightPerKg:       d.Muscle.PerKg,
				EnergyPerKcal:     d.Muscle.PerKcal,
				DurationPerMinute: d.Muscle.PerMinute,
			},
			ActivityThresholdPct: d.ActivityThresholdPct,
			StrainScaleFactor:    d.StrainScaleFactor,
			StressSensitivity:    d.StressSensitivity,
			BaselineDays:         d.BaselineDays,
			BaselineMinSamples:   d.BaselineMinSamples,
			SleepGapMinutes:      int(d.SleepGap / time.Minute),
			HydrationTargetML:    d.HydrationTargetML,
		},
		Profile: UserProfile{
			MaxHRFormula:   string(analysis.FormulaFox),
			FitnessLevel:   string(analysis.FitnessIntermediate),
			SleepNeedHours: d.SleepNeed.Hours(),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration file at path. An empty path means
// ~/.healthscore/config.json. Files ending in .yaml or .yml are parsed as
// YAML. Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// LoadOrDefault is Load, falling back to defaults plus environment
// overrides when the file doesn't exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNoConfig) {
		d := DefaultConfig()
		d.applyEnv()
		return &d, nil
	}
	return cfg, err
}

// applyDefaults fills zero values from DefaultConfig
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	d, p := &c.Defaults, &c.Profile

	setFloat(&d.RestingHR, defaults.Defaults.RestingHR)
	setFloat(&d.MaxHR, defaults.Defaults.MaxHR)
	setFloat(&d.MaxHRFallbackAdjustment, defaults.Defaults.MaxHRFallbackAdjustment)
	setFloat(&d.RespiratoryBaseline, defaults.Defaults.RespiratoryBaseline)
	setFloat(&d.SleepEfficiency, defaults.Defaults.SleepEfficiency)
	setFloat(&d.HRVBaseline, defaults.Defaults.HRVBaseline)
	if len(d.ZoneFractions) == 0 {
		d.ZoneFractions = defaults.Defaults.ZoneFractions
	}
	if len(d.ZoneWeights) == 0 {
		d.ZoneWeights = defaults.Defaults.ZoneWeights
	}
	setFloat(&d.Muscle.WeightPerKg, defaults.Defaults.Muscle.WeightPerKg)
	setFloat(&d.Muscle.EnergyPerKcal, defaults.Defaults.Muscle.EnergyPerKcal)
	setFloat(&d.Muscle.DurationPerMinute, defaults.Defaults.Muscle.DurationPerMinute)
	setFloat(&d.ActivityThresholdPct, defaults.Defaults.ActivityThresholdPct)
	setFloat(&d.StrainScaleFactor, defaults.Defaults.StrainScaleFactor)
	setFloat(&d.StressSensitivity, defaults.Defaults.StressSensitivity)
	setInt(&d.BaselineDays, defaults.Defaults.BaselineDays)
	setInt(&d.BaselineMinSamples, defaults.Defaults.BaselineMinSamples)
	setInt(&d.SleepGapMinutes, defaults.Defaults.SleepGapMinutes)
	setFloat(&d.HydrationTargetML, defaults.Defaults.HydrationTargetML)

	if p.MaxHRFormula == "" {
		if p.MaxHR > 0 {
			p.MaxHRFormula = string(analysis.FormulaManual)
		} else {
			p.MaxHRFormula = defaults.Profile.MaxHRFormula
		}
	}
	if p.FitnessLevel == "" {
		p.FitnessLevel = defaults.Profile.FitnessLevel
	}
	setFloat(&p.SleepNeedHours, defaults.Profile.SleepNeedHours)

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// applyEnv loads .env from the working directory if present, then lets
// environment variables override file values.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	c.Storage.Path = getEnv(EnvDBPath, c.Storage.Path)
	c.Strava.ClientID = getEnv(EnvClientID, c.Strava.ClientID)
	c.Strava.ClientSecret = getEnv(EnvClientSecret, c.Strava.ClientSecret)
	c.Logging.Level = getEnv(EnvLogLevel, c.Logging.Level)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Save writes the configuration to path, or ~/.healthscore/config.json when
// path is empty. The encoding follows the file extension.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample(path string) error {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	example.Profile.Age = 35
	example.Profile.RestingHR = 58

	return Save(&example, path)
}

// Validate checks the scoring settings are usable
func (c *Config) Validate() error {
	d, p := c.Defaults, c.Profile

	if len(d.ZoneFractions) != 5 {
		return fmt.Errorf("defaults.zone_fractions must have 5 values, got %d", len(d.ZoneFractions))
	}
	for i, f := range d.ZoneFractions {
		if f <= 0 || f >= 1 {
			return fmt.Errorf("defaults.zone_fractions[%d] must be between 0 and 1, got %v", i, f)
		}
		if i > 0 && f <= d.ZoneFractions[i-1] {
			return errors.New("defaults.zone_fractions must be strictly increasing")
		}
	}
	if len(d.ZoneWeights) != 5 {
		return fmt.Errorf("defaults.zone_weights must have 5 values, got %d", len(d.ZoneWeights))
	}

	switch analysis.MaxHRFormula(strings.ToLower(p.MaxHRFormula)) {
	case analysis.FormulaFox, analysis.FormulaTanaka, analysis.FormulaGellish, analysis.FormulaManual:
	default:
		return fmt.Errorf("profile.max_hr_formula must be fox, tanaka, gellish or manual, got %q", p.MaxHRFormula)
	}

	switch analysis.FitnessLevel(strings.ToLower(p.FitnessLevel)) {
	case analysis.FitnessBeginner, analysis.FitnessIntermediate, analysis.FitnessAdvanced:
	default:
		return fmt.Errorf("profile.fitness_level must be beginner, intermediate or advanced, got %q", p.FitnessLevel)
	}

	if p.Age < 0 || p.Age > 120 {
		return fmt.Errorf("profile.age must be between 0 and 120, got %d", p.Age)
	}

	// Validate resting_hr < max_hr when both are set
	if p.RestingHR > 0 && p.MaxHR > 0 && p.RestingHR >= p.MaxHR {
		return fmt.Errorf("profile.resting_hr (%v) must be less than profile.max_hr (%v)", p.RestingHR, p.MaxHR)
	}

	return nil
}

// ValidateStrava checks Strava credentials are present
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// Resolve merges the profile over the system defaults into engine settings
func (c *Config) Resolve() analysis.Config {
	d, p := c.Defaults, c.Profile
	out := analysis.DefaultConfig()

	out.RestingHR = firstPositive(p.RestingHR, d.RestingHR)
	out.MaxHR = analysis.MaxHR(analysis.MaxHRFormula(strings.ToLower(p.MaxHRFormula)), p.Age, p.MaxHR, d.MaxHR)
	out.MaxHRFallbackAdjustment = d.MaxHRFallbackAdjustment
	out.HRVBaseline = firstPositive(p.HRVBaseline, d.HRVBaseline)
	out.RespiratoryBaseline = firstPositive(p.RespiratoryBaseline, d.RespiratoryBaseline)
	out.SleepEfficiency = d.SleepEfficiency

	copy(out.ZoneFractions[:], d.ZoneFractions)
	copy(out.ZoneWeights[:], d.ZoneWeights)
	out.Muscle = analysis.MuscleMultipliers{
		PerKg:     d.Muscle.WeightPerKg,
		PerKcal:   d.Muscle.EnergyPerKcal,
		PerMinute: d.Muscle.DurationPerMinute,
	}

	out.ActivityThresholdPct = d.ActivityThresholdPct
	out.StrainScaleFactor = d.StrainScaleFactor
	out.FitnessLevel = analysis.FitnessLevel(strings.ToLower(p.FitnessLevel))
	out.StressSensitivity = d.StressSensitivity

	out.BaselineDays = d.BaselineDays
	out.BaselineMinSamples = d.BaselineMinSamples
	out.SleepGap = time.Duration(d.SleepGapMinutes) * time.Minute
	out.SleepNeed = time.Duration(p.SleepNeedHours * float64(time.Hour))
	out.HydrationTargetML = d.HydrationTargetML

	return out
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".healthscore"), nil
}
