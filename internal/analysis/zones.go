package analysis

// ZoneThresholds holds the lower bound (bpm) of each of the five HR zones
type ZoneThresholds [5]float64

// Zones builds Karvonen heart-rate-reserve thresholds. When the observed
// heart rates sit below zone 1 on average, max HR is raised so the zones
// span what was actually recorded.
func Zones(restingHR, maxHR float64, observed []float64, cfg Config) ZoneThresholds {
	z := karvonen(restingHR, maxHR, cfg)
	if len(observed) == 0 {
		return z
	}

	avg := Mean(observed)
	if avg >= z[0] {
		return z
	}

	widened := Max(observed) + 10
	if alt := avg + 30; alt > widened {
		widened = alt
	}
	return karvonen(restingHR, widened, cfg)
}

func karvonen(restingHR, maxHR float64, cfg Config) ZoneThresholds {
	maxHR = guardMaxHR(restingHR, maxHR, cfg)
	hrr := heartRateReserve(restingHR, maxHR)

	var z ZoneThresholds
	for i, f := range cfg.ZoneFractions {
		z[i] = restingHR + f*hrr
	}
	return z
}

func guardMaxHR(restingHR, maxHR float64, cfg Config) float64 {
	if maxHR <= restingHR {
		return restingHR + cfg.MaxHRFallbackAdjustment
	}
	return maxHR
}

func heartRateReserve(restingHR, maxHR float64) float64 {
	hrr := maxHR - restingHR
	if hrr < 1 {
		return 1
	}
	return hrr
}

// Zone returns the index of the highest zone hr reaches, or -1 below zone 1
func (z ZoneThresholds) Zone(hr float64) int {
	for i := len(z) - 1; i >= 0; i-- {
		if hr >= z[i] {
			return i
		}
	}
	return -1
}
