package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGDStep(t *testing.T) {
	w := []float64{1, 2}
	NewSGD(0.5).Step(w, []float64{2, -2})
	assert.Equal(t, []float64{0, 3}, w)
}

func TestProximalStep(t *testing.T) {
	w := []float64{1, 0.05, 1}
	delta := NewProximal(1, "l1", 0.1).Step(w, []float64{0, 0, 0}, 2)
	assert.InDeltaSlice(t, []float64{0.9, 0, 1}, w, 1e-12)
	assert.InDelta(t, 0.1, delta, 1e-12)

	w = []float64{1.1}
	NewProximal(1, "l2", 0.1).Step(w, []float64{0})
	assert.InDeltaSlice(t, []float64{1}, w, 1e-12)
}

func TestSoftThreshold(t *testing.T) {
	assert.Equal(t, 0.5, SoftThreshold(1, 0.5))
	assert.Equal(t, -0.5, SoftThreshold(-1, 0.5))
	assert.Equal(t, 0.0, SoftThreshold(0.2, 0.5))
}
