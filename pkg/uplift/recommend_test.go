package uplift

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evelynqian/causallift/pkg/data"
)

func count(rec []float64) int {
	n := 0
	for _, v := range rec {
		if v == 1 {
			n++
		}
	}
	return n
}

func TestEstimateCATEConcreteScenario(t *testing.T) {
	tb := scenarioTable(t)
	treated := NewFittedModel(Treated, fixedClassifier{0.8}, []string{"x"})
	untreated := NewFittedModel(Untreated, fixedClassifier{0.3}, []string{"x"})

	cate, err := EstimateCATE(tb, treated, untreated)
	require.NoError(t, err)
	require.Len(t, cate, 4)
	for _, v := range cate {
		assert.InDelta(t, 0.5, v, 1e-12)
	}

	rec, err := RecommendByPartition(tb, cate, TreatmentFractions{Train: 0.5, Test: 0.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0, 0}, rec)
}

func TestEstimateCATEMissingFeature(t *testing.T) {
	tb := scenarioTable(t)
	treated := NewFittedModel(Treated, fixedClassifier{0.8}, []string{"age"})
	untreated := NewFittedModel(Untreated, fixedClassifier{0.3}, []string{"x"})

	_, err := EstimateCATE(tb, treated, untreated)
	require.ErrorIs(t, err, data.ErrNoColumn)
}

func TestRecommendTies(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 0, 0}, Recommend([]float64{0.1, 0.3, 0.3, math.NaN()}, 0.5))
	assert.Equal(t, []float64{1, 1, 1}, Recommend([]float64{-1, 0, 1}, 1))
	assert.Equal(t, []float64{0, 0, 0}, Recommend([]float64{-1, 0, 1}, 0))
	assert.Equal(t, []float64{0, 0, 1}, Recommend([]float64{-1, 0, 1}, 0.4))
	assert.Empty(t, Recommend(nil, 0.5))
}

func TestRecommendBudgetAndMonotonicity(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	cate := make([]float64, 37)
	for i := range cate {
		cate[i] = math.Round(rnd.NormFloat64()*10) / 10 // rounding creates ties
	}

	prev := -1
	for f := 0.0; f <= 1.0001; f += 0.05 {
		rec := Recommend(cate, f)
		got := count(rec)
		want := math.Round(f * float64(len(cate)))
		assert.InDelta(t, want, float64(got), 1, "fraction %.2f", f)
		assert.GreaterOrEqual(t, got, prev, "fraction %.2f", f)
		prev = got

		// every recommended row ranks at least as high as every other row
		minIn, maxOut := math.Inf(1), math.Inf(-1)
		for i, v := range rec {
			if v == 1 {
				minIn = math.Min(minIn, cate[i])
			} else {
				maxOut = math.Max(maxOut, cate[i])
			}
		}
		if got > 0 && got < len(cate) {
			assert.GreaterOrEqual(t, minIn, maxOut)
		}
	}
}

func TestRecommendByPartition(t *testing.T) {
	tb := combine(t, []string{"x"}, [][]float64{{0}, {0}, {0}, {0}}, [][]float64{{0}, {0}})
	cate := []float64{0.4, 0.1, 0.3, 0.2, 0.5, 0.6}

	rec, err := RecommendByPartition(tb, cate, TreatmentFractions{Train: 0.25, Test: 0.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 1}, rec)

	_, err = RecommendByPartition(tb, cate[:3], TreatmentFractions{})
	require.ErrorIs(t, err, data.ErrLength)
}

func TestObservedTreatmentFractions(t *testing.T) {
	tb := combine(t, []string{"Treatment"}, [][]float64{{1}, {0}, {1}, {1}}, nil)
	f := ObservedTreatmentFractions(tb, "Treatment")
	assert.Equal(t, 0.75, f.Train)
	assert.True(t, math.IsNaN(f.Test))
	assert.Equal(t, 0.75, f.For(data.Train))
}
