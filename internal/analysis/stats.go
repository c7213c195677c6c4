package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for no values
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation, or 0 for fewer than two values
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Percentile returns the empirical p-quantile (p in [0,1]) of xs.
// xs is not modified.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(Clamp01(p), stat.Empirical, sorted, nil)
}

// MeanAbsDeviation returns the mean absolute deviation from the mean
func MeanAbsDeviation(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	dev := make([]float64, len(xs))
	for i, x := range xs {
		if x > m {
			dev[i] = x - m
		} else {
			dev[i] = m - x
		}
	}
	return Mean(dev)
}

// Max returns the largest value, or 0 for no values
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
