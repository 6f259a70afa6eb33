package uplift

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evelynqian/causallift/pkg/data"
)

// fixedClassifier predicts the same probability for every row.
type fixedClassifier struct{ p float64 }

func (c fixedClassifier) Fit([][]float64, []float64, []float64) error { return nil }

func (c fixedClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = c.p
	}
	return out
}

func combine(t *testing.T, columns []string, train, test [][]float64) *data.Table {
	t.Helper()
	tr, err := data.NewTable(columns, train)
	require.NoError(t, err)
	te, err := data.NewTable(columns, test)
	require.NoError(t, err)
	out, err := data.Combine(tr, te)
	require.NoError(t, err)
	return out
}

// scenarioTable holds four train rows with treatments [1,0,1,0] and outcomes
// [1,0,0,1], and no test rows.
func scenarioTable(t *testing.T) *data.Table {
	return combine(t, []string{"x", "Treatment", "Outcome"}, [][]float64{
		{1, 1, 1},
		{2, 0, 0},
		{3, 1, 0},
		{4, 0, 1},
	}, nil)
}

func quietConfig(t *testing.T, opts ...Option) Config {
	t.Helper()
	cfg, err := NewConfig(append([]Option{WithVerbose(0)}, opts...)...)
	require.NoError(t, err)
	return cfg
}
