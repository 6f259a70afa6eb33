// Package synth generates observational data with a known treatment effect,
// for demos and tests of the uplift workflow.
package synth

import (
	"fmt"
	"math/rand"

	"github.com/evelynqian/causallift/pkg/data"
	"github.com/evelynqian/causallift/pkg/loader"
	"github.com/evelynqian/causallift/pkg/loss"
)

// Generator draws samples with standard normal features x1..xN, a treatment
// whose probability grows with x1 (confounding) and a binary outcome.
// Untreated outcome: sigmoid(-1 + 0.5*x1). Treated outcome adds
// Effect*(1 + x2) on the logit scale, so the effect varies with x2.
type Generator struct {
	Samples     int
	Features    int // at least 2
	Confounding float64
	Effect      float64
	Seed        int64

	TreatmentColumn string
	OutcomeColumn   string
}

type Option func(*Generator)

func WithSamples(n int) Option         { return func(g *Generator) { g.Samples = n } }
func WithFeatures(n int) Option        { return func(g *Generator) { g.Features = n } }
func WithConfounding(v float64) Option { return func(g *Generator) { g.Confounding = v } }
func WithEffect(v float64) Option      { return func(g *Generator) { g.Effect = v } }
func WithSeed(seed int64) Option       { return func(g *Generator) { g.Seed = seed } }
func WithColumns(treatment, outcome string) Option {
	return func(g *Generator) { g.TreatmentColumn, g.OutcomeColumn = treatment, outcome }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		Samples:         1000,
		Features:        3,
		Confounding:     1,
		Effect:          0.5,
		TreatmentColumn: "Treatment",
		OutcomeColumn:   "Outcome",
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns the sample table and the true CATE of every row.
func (g *Generator) Generate() (*data.Table, []float64, error) {
	if g.Samples < 1 {
		return nil, nil, fmt.Errorf("synth: samples must be positive")
	}
	if g.Features < 2 {
		return nil, nil, fmt.Errorf("synth: need at least 2 features")
	}
	rnd := rand.New(rand.NewSource(g.Seed))

	columns := make([]string, 0, g.Features+2)
	for j, _n := 0, g.Features; j < _n; j++ {
		columns = append(columns, fmt.Sprintf("x%d", j+1))
	}
	columns = append(columns, g.TreatmentColumn, g.OutcomeColumn)

	rows := make([][]float64, g.Samples)
	cate := make([]float64, g.Samples)
	for i := range rows {
		r := make([]float64, len(columns))
		for j, _n := 0, g.Features; j < _n; j++ {
			r[j] = rnd.NormFloat64()
		}
		x1, x2 := r[0], r[1]

		treat := 0.0
		if rnd.Float64() < loss.Sigmoid(g.Confounding*x1) {
			treat = 1
		}
		base := -1 + 0.5*x1
		p0 := loss.Sigmoid(base)
		p1 := loss.Sigmoid(base + g.Effect*(1+x2))
		cate[i] = p1 - p0

		p := p0
		if treat == 1 {
			p = p1
		}
		outcome := 0.0
		if rnd.Float64() < p {
			outcome = 1
		}
		r[g.Features], r[g.Features+1] = treat, outcome
		rows[i] = r
	}
	t, err := data.NewTable(columns, rows)
	if err != nil {
		return nil, nil, err
	}
	return t, cate, nil
}

// TrainTest generates a table and splits it at random, testRatio of the rows
// going to the test part.
func (g *Generator) TrainTest(testRatio float64) (train, test *data.Table, err error) {
	t, _, err := g.Generate()
	if err != nil {
		return nil, nil, err
	}
	trIdx, teIdx := loader.TrainTestSplit(t.Len(), testRatio, g.Seed)
	return t.Select(trIdx), t.Select(teIdx), nil
}
