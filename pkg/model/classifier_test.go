package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thresholdData has one feature 0..n-1 and label 1 from n/2 on.
func thresholdData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i)}
		if i >= n/2 {
			y[i] = 1
		}
	}
	return X, y
}

func TestGradientBoostingClassifier(t *testing.T) {
	X, y := thresholdData(40)
	params := DefaultBoostingParams()
	params.NEstimators = 50
	params.MaxDepth = 2

	m := NewGradientBoostingClassifier(params, 1)
	require.NoError(t, m.Fit(X, y, nil))
	assert.Equal(t, 50, m.NumTrees())

	proba := m.PredictProba([][]float64{{0}, {39}})
	assert.Less(t, proba[0], 0.2)
	assert.Greater(t, proba[1], 0.8)
	assert.Equal(t, BinaryLabels(y), Predict(m, X))
}

func TestGradientBoostingIsDeterministic(t *testing.T) {
	X, y := thresholdData(40)
	params := DefaultBoostingParams()
	params.NEstimators = 10
	params.Subsample = 0.7

	a := NewGradientBoostingClassifier(params, 3)
	b := NewGradientBoostingClassifier(params, 3)
	require.NoError(t, a.Fit(X, y, nil))
	require.NoError(t, b.Fit(X, y, nil))
	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
}

func TestRandomForestClassifier(t *testing.T) {
	X, y := thresholdData(40)
	params := DefaultForestParams()
	params.NEstimators = 10

	rf := NewRandomForestClassifier(params, 5)
	require.NoError(t, rf.Fit(X, y, nil))
	require.Len(t, rf.Trees, 10)

	proba := rf.PredictProba([][]float64{{0}, {39}})
	assert.InDelta(t, 0, proba[0], 1e-12)
	assert.InDelta(t, 1, proba[1], 1e-12)
}

func TestLogisticRegression(t *testing.T) {
	X := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range X {
		x := -2 + 4*float64(i)/39
		X[i] = []float64{x}
		if x > 0 {
			y[i] = 1
		}
	}

	m := NewLogisticRegression(DefaultLogisticParams())
	require.NoError(t, m.Fit(X, y, nil))
	proba := m.PredictProba([][]float64{{-2}, {2}})
	assert.Less(t, proba[0], 0.2)
	assert.Greater(t, proba[1], 0.8)
	assert.Positive(t, m.Iterations())

	// a strong L1 penalty zeroes the coefficient but not the intercept
	params := DefaultLogisticParams()
	params.Penalty = "l1"
	params.C = 0.001
	sparse := NewLogisticRegression(params)
	require.NoError(t, sparse.Fit(X, y, nil))
	w, _ := sparse.Coefficients()
	assert.Equal(t, []float64{0}, w)
}

func TestFactoriesDecodeParams(t *testing.T) {
	clf, err := NewBoostingFromParams(map[string]any{"max_depth": 5, "learning_rate": "0.3"}, 0)
	require.NoError(t, err)
	gb := clf.(*GradientBoostingClassifier)
	assert.Equal(t, 5, gb.Params.MaxDepth)
	assert.InDelta(t, 0.3, gb.Params.LearningRate, 1e-12)
	assert.Equal(t, 100, gb.Params.NEstimators)

	clf, err = NewLogisticFromParams(map[string]any{"C": 10.0, "penalty": "l1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "l1", clf.(*LogisticRegression).Params.Penalty)

	clf, err = NewForestFromParams(map[string]any{"n_estimators": 3}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, clf.(*RandomForestClassifier).Params.NEstimators)

	_, err = NewBoostingFromParams(map[string]any{"booster": "dart"}, 0)
	require.ErrorIs(t, err, ErrInvalidParams)
	_, err = NewForestFromParams(map[string]any{"n_estimators": 0}, 0)
	assert.Error(t, err)
	_, err = NewLogisticFromParams(map[string]any{"penalty": "elasticnet"}, 0)
	assert.Error(t, err)
	_, err = NewBoostingFromParams(map[string]any{"base_score": 1.0}, 0)
	assert.Error(t, err)
}

func TestClassifiersRejectBadInput(t *testing.T) {
	for _, clf := range []Classifier{
		NewGradientBoostingClassifier(DefaultBoostingParams(), 0),
		NewRandomForestClassifier(DefaultForestParams(), 0),
		NewLogisticRegression(DefaultLogisticParams()),
	} {
		assert.Error(t, clf.Fit(nil, nil, nil))
		assert.Error(t, clf.Fit([][]float64{{1}, {2}}, []float64{0}, nil))
		assert.Error(t, clf.Fit([][]float64{{1}, {2}}, []float64{0, 1}, []float64{1}))
	}
}
