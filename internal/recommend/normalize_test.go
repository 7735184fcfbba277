package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxNormalize(t *testing.T) {
	out := MaxNormalize(map[string]float64{"a": 2, "b": 1, "c": 0})

	assert.Equal(t, 1.0, out["a"])
	assert.Equal(t, 0.5, out["b"])
	assert.Equal(t, 0.0, out["c"])
}

func TestMaxNormalize_AllZero(t *testing.T) {
	out := MaxNormalize(map[string]float64{"a": 0, "b": 0})

	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, out)
	assert.Empty(t, MaxNormalize(map[string]float64{}))
}

func TestMaxNormalize_RangeAndMaximum(t *testing.T) {
	out := MaxNormalize(map[string]float64{"a": 0.3, "b": 0.9, "c": 0.45})

	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, 1.0, out["b"])
}

func TestZScore(t *testing.T) {
	out := ZScore(map[string]float64{"a": 1, "b": 2, "c": 3})

	std := math.Sqrt(2.0 / 3.0)
	assert.InDelta(t, -1/std, out["a"], 1e-12)
	assert.InDelta(t, 0.0, out["b"], 1e-12)
	assert.InDelta(t, 1/std, out["c"], 1e-12)
}

func TestZScore_MeanZeroUnitVariance(t *testing.T) {
	out := ZScore(map[string]float64{"a": 0.1, "b": 0.7, "c": 0.25, "d": 0.0, "e": 0.9})

	var mean, sq float64
	for _, v := range out {
		mean += v
	}
	mean /= float64(len(out))
	for _, v := range out {
		sq += (v - mean) * (v - mean)
	}

	assert.InDelta(t, 0.0, mean, 1e-9)
	assert.InDelta(t, 1.0, sq/float64(len(out)), 1e-9)
}

func TestZScore_ZeroDeviation(t *testing.T) {
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, ZScore(map[string]float64{"a": 0, "b": 0}))
	assert.Equal(t, map[string]float64{"a": 0, "b": 0, "c": 0}, ZScore(map[string]float64{"a": 0.1, "b": 0.1, "c": 0.1}))
	assert.Equal(t, map[string]float64{"only": 0}, ZScore(map[string]float64{"only": 0.42}))
	assert.Empty(t, ZScore(nil))
}
