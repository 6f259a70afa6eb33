package search

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evelynqian/causallift/pkg/model"
)

// constClassifier predicts the probability given by its "p" parameter.
type constClassifier struct {
	p      float64
	fitted int
	w      []float64
}

func (c *constClassifier) Fit(X [][]float64, _, w []float64) error {
	c.fitted, c.w = len(X), w
	return nil
}

func (c *constClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = c.p
	}
	return out
}

func constFactory(params map[string]any, _ int64) (model.Classifier, error) {
	p, ok := params["p"].(float64)
	if !ok {
		p = 0.5
	}
	return &constClassifier{p: p}, nil
}

func sample(n int, positives int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{float64(i)}
		if i < positives {
			y[i] = 1
		}
	}
	return X, y
}

func TestGridCandidates(t *testing.T) {
	g := Grid{"b": {1, 2}, "a": {"x", "y"}}
	assert.Equal(t, []map[string]any{
		{"a": "x", "b": 1},
		{"a": "x", "b": 2},
		{"a": "y", "b": 1},
		{"a": "y", "b": 2},
	}, g.Candidates())

	assert.Equal(t, []map[string]any{{}}, Grid{}.Candidates())
	assert.Nil(t, Grid{"a": {}}.Candidates())
}

func TestGridSearchSelectsBestScore(t *testing.T) {
	X, y := sample(12, 9)
	w := make([]float64, len(y))
	for i := range w {
		w[i] = 2
	}
	gs := &GridSearchCV{Factory: constFactory, Grid: Grid{"p": {0.1, 0.5, 0.9}}, CV: 3, Scoring: "neg_log_loss"}

	res, err := gs.Fit(X, y, w)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": 0.9}, res.BestParams)
	require.Len(t, res.Candidates, 3)
	for _, c := range res.Candidates {
		assert.Len(t, c.FoldScores, 3)
		assert.LessOrEqual(t, c.MeanScore, res.BestScore)
	}
	assert.InDelta(t, 0.75*math.Log(0.9)+0.25*math.Log(0.1), res.BestScore, 1e-12)

	best := res.Best.(*constClassifier)
	assert.Equal(t, 12, best.fitted)
	assert.Equal(t, w, best.w)
}

func TestGridSearchTieKeepsFirstCandidate(t *testing.T) {
	X, y := sample(9, 6)
	gs := &GridSearchCV{Factory: constFactory, Grid: Grid{"p": {0.6, 0.9}}, CV: 3}

	res, err := gs.Fit(X, y, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.6, res.BestParams["p"])
	assert.InDelta(t, 2.0/3, res.BestScore, 1e-12)
}

func TestGridSearchSkipsCVForSingleCandidate(t *testing.T) {
	X, y := sample(2, 1)
	gs := &GridSearchCV{Factory: constFactory, Grid: Grid{"p": {0.7}}, CV: 3}

	res, err := gs.Fit(X, y, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.BestScore))
	assert.Equal(t, 2, res.Best.(*constClassifier).fitted)

	gs.Grid = Grid{"p": {0.7, 0.8}}
	_, err = gs.Fit(X, y, nil)
	require.ErrorIs(t, err, ErrTooFewSamples)
}

func TestGridSearchErrors(t *testing.T) {
	X, y := sample(6, 3)

	_, err := (&GridSearchCV{Factory: constFactory, Grid: Grid{"p": {}}, CV: 2}).Fit(X, y, nil)
	require.ErrorIs(t, err, ErrEmptyGrid)

	_, err = (&GridSearchCV{Factory: constFactory, Grid: Grid{}, CV: 2, Scoring: "f2"}).Fit(X, y, nil)
	require.ErrorIs(t, err, ErrUnknownScoring)

	boom := errors.New("boom")
	failing := func(params map[string]any, seed int64) (model.Classifier, error) {
		if params["p"] == 0.9 {
			return nil, boom
		}
		return constFactory(params, seed)
	}
	_, err = (&GridSearchCV{Factory: failing, Grid: Grid{"p": {0.1, 0.9}}, CV: 2}).Fit(X, y, nil)
	require.ErrorIs(t, err, boom)
}

func TestGridSearchWithRealLearner(t *testing.T) {
	X, y := sample(30, 15)
	gs := &GridSearchCV{
		Factory: model.NewLogisticFromParams,
		Grid:    Grid{"C": {0.01, 1.0}, "penalty": {"l2"}},
		CV:      3,
		Scoring: "roc_auc",
	}
	res, err := gs.Fit(X, y, nil)
	require.NoError(t, err)
	assert.Contains(t, []any{0.01, 1.0}, res.BestParams["C"])
	proba := res.Best.PredictProba([][]float64{{0}, {29}})
	assert.Greater(t, proba[0], proba[1])
}
