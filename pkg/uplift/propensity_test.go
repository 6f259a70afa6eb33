package uplift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evelynqian/causallift/pkg/search"
	"github.com/evelynqian/causallift/pkg/stats"
)

func TestEstimatePropensityDegenerateTreatment(t *testing.T) {
	tb := combine(t, []string{"x", "Treatment", "Outcome"},
		[][]float64{{1, 1, 0}, {2, 1, 1}, {3, 1, 0}},
		[][]float64{{4, 0, 1}})

	_, err := EstimatePropensity(tb, quietConfig(t), nil)
	require.ErrorIs(t, err, ErrDegenerateTreatment)
}

func TestEstimatePropensityClampsIntoBand(t *testing.T) {
	var train, test [][]float64
	for i := 0; i < 30; i++ {
		treat := 0.0
		if i >= 15 {
			treat = 1
		}
		train = append(train, []float64{float64(i), treat, 0})
	}
	test = append(test, []float64{-100, 0, 0}, []float64{100, 1, 0})
	tb := combine(t, []string{"x", "Treatment", "Outcome"}, train, test)

	cfg := quietConfig(t,
		WithPropensityBounds(0.2, 0.8),
		WithPropensityModelParams(search.Grid{"C": {100.0}}),
	)
	prop, err := EstimatePropensity(tb, cfg, nil)
	require.NoError(t, err)
	require.Len(t, prop.Scores, tb.Len())
	assert.Positive(t, prop.Clipped)

	lo, hi := stats.MinMax(prop.Scores)
	assert.Equal(t, 0.2, lo)
	assert.Equal(t, 0.8, hi)
	assert.Equal(t, 0.2, prop.Scores[30])
	assert.Equal(t, 0.8, prop.Scores[31])
	assert.Equal(t, map[string]any{"C": 100.0}, prop.Search.BestParams)
}
