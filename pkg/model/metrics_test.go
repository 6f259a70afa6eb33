package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestROCAUC(t *testing.T) {
	y := []int{0, 0, 1, 1}
	assert.InDelta(t, 1, ROCAUC(y, []float64{0.1, 0.2, 0.8, 0.9}), 1e-12)
	assert.InDelta(t, 0, ROCAUC(y, []float64{0.9, 0.8, 0.2, 0.1}), 1e-12)
	assert.InDelta(t, 0.5, ROCAUC(y, []float64{0.5, 0.5, 0.5, 0.5}), 1e-12)
	assert.InDelta(t, 0.75, ROCAUC(y, []float64{0.1, 0.6, 0.5, 0.9}), 1e-12)
	assert.True(t, math.IsNaN(ROCAUC([]int{1, 1}, []float64{0.2, 0.3})))
}

func TestClassificationMetrics(t *testing.T) {
	yTrue := []int{1, 1, 0, 0, 1}
	yPred := []int{1, 0, 0, 1, 1}

	assert.InDelta(t, 0.6, AccuracyInt(yTrue, yPred), 1e-12)
	prec, rec, f1 := PrecisionRecallF1(yTrue, yPred)
	assert.InDelta(t, 2.0/3, prec, 1e-12)
	assert.InDelta(t, 2.0/3, rec, 1e-12)
	assert.InDelta(t, 2.0/3, f1, 1e-12)
	assert.Equal(t, ConfusionMatrix{TN: 1, FP: 1, FN: 1, TP: 2}, NewConfusionMatrix(yTrue, yPred))

	assert.True(t, math.IsNaN(AccuracyInt(nil, nil)))
	prec, rec, f1 = PrecisionRecallF1([]int{0}, []int{0})
	assert.Zero(t, prec+rec+f1)
}

func TestBinaryLabels(t *testing.T) {
	assert.Equal(t, []int{0, 1, 1}, BinaryLabels([]float64{0.2, 0.5, 1}))
	assert.Equal(t, []int{0, 1}, BinaryPredFromProba([]float64{0.3, 0.7}, 0.6))
}
