package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertIncreasing(t *testing.T, z ZoneThresholds) {
	t.Helper()
	for i := 1; i < len(z); i++ {
		assert.Greater(t, z[i], z[i-1], "zone %d not above zone %d", i, i-1)
	}
}

func TestZones(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		restingHR float64
		maxHR     float64
		observed  []float64
		expected  ZoneThresholds
	}{
		{
			name:      "karvonen",
			restingHR: 60,
			maxHR:     190,
			// HRR 130
			expected: ZoneThresholds{125, 138, 151, 164, 177},
		},
		{
			name:      "max below resting uses fallback adjustment",
			restingHR: 60,
			maxHR:     50,
			// max = 100, HRR 40
			expected: ZoneThresholds{80, 84, 88, 92, 96},
		},
		{
			name:      "observed above zone 1 keeps thresholds",
			restingHR: 60,
			maxHR:     190,
			observed:  []float64{130, 140},
			expected:  ZoneThresholds{125, 138, 151, 164, 177},
		},
		{
			name:      "low observed widens from max+10 or mean+30",
			restingHR: 60,
			maxHR:     190,
			observed:  []float64{100, 110, 120},
			// max(130, 140) = 140 → HRR 80
			expected: ZoneThresholds{100, 108, 116, 124, 132},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := Zones(tt.restingHR, tt.maxHR, tt.observed, cfg)
			for i := range z {
				assert.InDelta(t, tt.expected[i], z[i], 1e-9)
			}
			assertIncreasing(t, z)
		})
	}
}

func TestZonesEqualRestingAndMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHRFallbackAdjustment = 0

	// HRR floors at 1 so zones stay strictly increasing
	assertIncreasing(t, Zones(60, 60, nil, cfg))
}

func TestZone(t *testing.T) {
	z := ZoneThresholds{125, 138, 151, 164, 177}

	tests := []struct {
		hr       float64
		expected int
	}{
		{100, -1},
		{125, 0},
		{150, 1},
		{151, 2},
		{170, 3},
		{200, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, z.Zone(tt.hr), "Zone(%v)", tt.hr)
	}
}

func TestMaxHR(t *testing.T) {
	tests := []struct {
		name     string
		formula  MaxHRFormula
		age      int
		manual   float64
		expected float64
	}{
		{"fox", FormulaFox, 40, 0, 180},
		{"tanaka", FormulaTanaka, 40, 0, 180},
		{"gellish", FormulaGellish, 40, 0, 179},
		{"manual", FormulaManual, 40, 185, 185},
		{"manual without value", FormulaManual, 40, 0, 190},
		{"no age uses system default", FormulaFox, 0, 0, 190},
		{"no age ignores max hr without manual formula", FormulaTanaka, 0, 200, 190},
		{"age wins over max hr without manual formula", FormulaFox, 30, 200, 190},
		{"unknown formula is fox", "", 35, 0, 185},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MaxHR(tt.formula, tt.age, tt.manual, 190), 1e-9)
		})
	}
}

func TestFitnessLevelFactor(t *testing.T) {
	assert.Equal(t, 1.1, FitnessBeginner.Factor())
	assert.Equal(t, 1.0, FitnessIntermediate.Factor())
	assert.Equal(t, 0.9, FitnessLevel("Advanced").Factor())
	assert.Equal(t, 1.0, FitnessLevel("").Factor())
}
