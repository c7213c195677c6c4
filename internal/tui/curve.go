package tui

import (
	"math/rand/v2"

	"healthscore/internal/analysis"
)

// curveJitter bounds the random offset added to each illustrative hour
const curveJitter = 0.15

// illustrativeStressCurve spreads a single stress reading over 24 hours
// using the time-of-day multipliers plus bounded jitter. It is only for
// drawing a chart when a day has one hourly value; the same seed always
// gives the same curve.
func illustrativeStressCurve(value float64, anchorHour int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	anchor := analysis.TimeOfDayMultiplier(anchorHour)
	curve := make([]float64, 24)
	for h := range curve {
		v := value * analysis.TimeOfDayMultiplier(h) / anchor
		if h != anchorHour {
			v += (rng.Float64()*2 - 1) * curveJitter
		}
		curve[h] = analysis.Clamp(v, 0, analysis.MaxStress)
	}
	return curve
}
