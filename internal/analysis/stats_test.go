package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 41.667, Mean([]float64{41, 41, 43}), 0.001)
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}

	assert.Equal(t, 9.0, Percentile(xs, 0.9))
	assert.Equal(t, 1.0, Percentile(xs, 0.1))
	assert.Equal(t, 10.0, Percentile(xs, 1))
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
	// input untouched
	assert.Equal(t, 10.0, xs[0])
}

func TestMeanAbsDeviation(t *testing.T) {
	assert.Equal(t, 0.0, MeanAbsDeviation([]float64{5, 5, 5}))
	assert.InDelta(t, 1.0, MeanAbsDeviation([]float64{1, 3}), 1e-9)
}
