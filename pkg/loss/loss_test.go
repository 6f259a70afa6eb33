package loss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmoidLogit(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	for _, p := range []float64{0.01, 0.3, 0.5, 0.9} {
		assert.InDelta(t, p, Sigmoid(Logit(p)), 1e-9)
	}
	assert.False(t, math.IsInf(Logit(0), 0))
}

func TestBCE(t *testing.T) {
	assert.InDelta(t, -math.Log(0.8), BCE([]float64{1}, []float64{0.8}, nil), 1e-12)

	// weights shift the mean towards the heavier sample
	y := []float64{1, 0}
	p := []float64{0.8, 0.8}
	unweighted := BCE(y, p, nil)
	heavy := BCE(y, p, []float64{1, 3})
	assert.Greater(t, heavy, unweighted)
	assert.Equal(t, 0.0, BCE(nil, nil, nil))
}

func TestLogisticGradHess(t *testing.T) {
	g, h := LogisticGradHess([]float64{1, 0}, []float64{0, 0}, []float64{2, 1})
	assert.InDeltaSlice(t, []float64{-1, 0.5}, g, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, h, 1e-12)
}
