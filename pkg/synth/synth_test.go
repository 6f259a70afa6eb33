package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator(WithSamples(500), WithSeed(11), WithEffect(1))
	tb, cate, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, 500, tb.Len())
	assert.Equal(t, []string{"x1", "x2", "x3", "Treatment", "Outcome"}, tb.Columns())
	require.Len(t, cate, 500)

	treat, _ := tb.Col("Treatment")
	outcome, _ := tb.Col("Outcome")
	treated := 0
	for i := range treat {
		assert.Contains(t, []float64{0, 1}, treat[i])
		assert.Contains(t, []float64{0, 1}, outcome[i])
		treated += int(treat[i])
	}
	assert.Greater(t, treated, 150)
	assert.Less(t, treated, 350)

	again, cate2, err := g.Generate()
	require.NoError(t, err)
	assert.True(t, tb.Equal(again))
	assert.Equal(t, cate, cate2)
}

func TestTrainTest(t *testing.T) {
	train, test, err := NewGenerator(WithSamples(100), WithColumns("t", "y")).TrainTest(0.25)
	require.NoError(t, err)
	assert.Equal(t, 75, train.Len())
	assert.Equal(t, 25, test.Len())
	assert.True(t, train.HasColumn("t"))
	assert.True(t, test.HasColumn("y"))
}

func TestGenerateRejectsBadSettings(t *testing.T) {
	_, _, err := NewGenerator(WithSamples(0)).Generate()
	assert.Error(t, err)
	_, _, err = NewGenerator(WithFeatures(1)).Generate()
	assert.Error(t, err)
}
