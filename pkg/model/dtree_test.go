package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meanTarget returns grad/hess pairs whose leaf values are the mean of y.
func meanTarget(y []float64) (grad, hess []float64) {
	grad = make([]float64, len(y))
	hess = make([]float64, len(y))
	for i, v := range y {
		grad[i], hess[i] = -v, 1
	}
	return grad, hess
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestGradientTreeSplitsOnThreshold(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	grad, hess := meanTarget([]float64{0, 0, 1, 1})

	tree := NewGradientTree()
	require.NoError(t, tree.Fit(X, grad, hess, allRows(len(X))))
	assert.Equal(t, []float64{0, 0, 1, 1}, tree.Predict(X))
	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, []float64{0, 1}, tree.Predict([][]float64{{2.4}, {2.6}}))
}

func TestGradientTreeLearnsMissingDirection(t *testing.T) {
	X := [][]float64{{1}, {2}, {math.NaN()}, {3}, {4}}
	grad, hess := meanTarget([]float64{0, 0, 1, 1, 1})

	tree := NewGradientTree()
	require.NoError(t, tree.Fit(X, grad, hess, allRows(len(X))))
	assert.Equal(t, []float64{0, 1, 1}, tree.Predict([][]float64{{1}, {math.NaN()}, {4}}))
}

func TestGradientTreeMaxDepthAndRegularization(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	grad, hess := meanTarget([]float64{0, 0, 1, 1})

	stump := NewGradientTree(WithMaxDepth(0), WithMinSamplesSplit(10))
	require.NoError(t, stump.Fit(X, grad, hess, allRows(len(X))))
	assert.Equal(t, 0, stump.Depth())
	assert.Equal(t, []float64{0.5}, stump.Predict([][]float64{{1}}))

	// lambda shrinks the leaf towards zero: 2 / (4 + 4)
	shrunk := NewGradientTree(WithMaxDepth(1), WithRegularization(4, 0), WithGamma(100))
	require.NoError(t, shrunk.Fit(X, grad, hess, allRows(len(X))))
	assert.InDelta(t, 0.25, shrunk.Predict([][]float64{{1}})[0], 1e-12)

	capped := NewGradientTree(WithMaxDeltaStep(0.3), WithMinSamplesSplit(10))
	require.NoError(t, capped.Fit(X, grad, hess, allRows(len(X))))
	assert.InDelta(t, 0.3, capped.Predict([][]float64{{1}})[0], 1e-12)
}

func TestGradientTreeErrors(t *testing.T) {
	tree := NewGradientTree()
	assert.Error(t, tree.Fit(nil, nil, nil, nil))
	assert.Error(t, tree.Fit([][]float64{{1}}, []float64{1}, []float64{1}, nil))
	assert.Error(t, tree.Fit([][]float64{{1}, {1, 2}}, []float64{1, 1}, []float64{1, 1}, []int{0, 1}))
	assert.Equal(t, []float64{0}, tree.Predict([][]float64{{1}}))
}
