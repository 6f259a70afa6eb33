package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/evelynqian/causallift/pkg/loss"
	"github.com/evelynqian/causallift/pkg/optim"
	"github.com/evelynqian/causallift/pkg/stats"
)

// LogisticParams are the hyperparameters of LogisticRegression. C is the
// inverse regularisation strength, as in liblinear.
type LogisticParams struct {
	C            float64 `param:"C"`
	Penalty      string  `param:"penalty"`
	FitIntercept bool    `param:"fit_intercept"`
	MaxIter      int     `param:"max_iter"`
	Tol          float64 `param:"tol"`
	ClassWeight  string  `param:"class_weight"` // "" or "balanced"
}

func DefaultLogisticParams() LogisticParams {
	return LogisticParams{
		C:            1,
		Penalty:      "l2",
		FitIntercept: true,
		MaxIter:      300,
		Tol:          1e-4,
	}
}

// LogisticRegression (binary) with sigmoid link and an L1 or L2 penalty.
// Features are standardized internally; missing values are imputed with the
// column mean.
type LogisticRegression struct {
	Params LogisticParams

	W      []float64 // weights, in standardized feature space
	b      float64   // bias
	scaler *stats.StandardScaler
	nIter  int
}

func NewLogisticRegression(params LogisticParams) *LogisticRegression {
	return &LogisticRegression{Params: params}
}

// NewLogisticFromParams is a Factory for LogisticRegression. The seed is
// unused: the solver is deterministic.
func NewLogisticFromParams(params map[string]any, _ int64) (Classifier, error) {
	p := DefaultLogisticParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.C <= 0 {
		return nil, errorf("logistic", "C must be positive")
	}
	if p.Penalty != "l1" && p.Penalty != "l2" {
		return nil, errorf("logistic", "penalty must be l1 or l2")
	}
	if p.ClassWeight != "" && p.ClassWeight != "balanced" {
		return nil, errorf("logistic", "class_weight must be empty or balanced")
	}
	if p.MaxIter < 1 {
		return nil, errorf("logistic", "max_iter must be positive")
	}
	return NewLogisticRegression(p), nil
}

// Fit minimises the weighted mean log-loss plus penalty/(C*sum(w)) by
// proximal gradient descent. w may be nil.
func (m *LogisticRegression) Fit(X [][]float64, y []float64, w []float64) error {
	if err := checkXY("logistic", X, y, w); err != nil {
		return err
	}
	n, p := len(X), len(X[0])
	prm := m.Params

	m.scaler = stats.NewStandardScaler()
	Xs := m.design(m.scaler.FitTransform(X))

	weights := m.sampleWeights(y, w)
	sw := 0.0
	for _, v := range weights {
		sw += v
	}
	if sw == 0 {
		return errorf("logistic", "sample weights sum to zero")
	}

	// step size from an upper bound on the Lipschitz constant of the gradient
	trace := 0.0
	for i := 0; i < n; i++ {
		r := Xs.RawRowView(i)
		sq := mat.Dot(mat.NewVecDense(p, r), mat.NewVecDense(p, r))
		if prm.FitIntercept {
			sq++
		}
		trace += weights[i] * sq
	}
	lr := 1.0
	if trace > 0 {
		lr = 4 * sw / trace
	}
	opt := optim.NewProximal(lr, prm.Penalty, 1/(prm.C*sw))

	// theta holds the weights followed by the bias
	theta := make([]float64, p+1)
	coef := mat.NewVecDense(p, theta[:p])
	z := mat.NewVecDense(n, nil)
	dz := mat.NewVecDense(n, nil)
	g := make([]float64, p+1)
	gW := mat.NewVecDense(p, g[:p])

	m.nIter = 0
	for it := 0; it < prm.MaxIter; it++ {
		m.nIter++
		z.MulVec(Xs, coef)
		margin := z.RawVector().Data
		for i := range margin {
			margin[i] += theta[p]
		}
		grad, _ := loss.LogisticGradHess(y, margin, weights)
		gb := 0.0
		for i := range grad {
			dz.SetVec(i, grad[i]/sw)
			gb += grad[i] / sw
		}
		gW.MulVec(Xs.T(), dz)
		if prm.FitIntercept {
			g[p] = gb
		} else {
			g[p] = 0
		}
		if delta := opt.Step(theta, g, p); delta < prm.Tol {
			break
		}
	}
	m.W = append([]float64(nil), theta[:p]...)
	m.b = theta[p]
	return nil
}

// PredictProba returns the probability scores (between 0 and 1) for each input row in X.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	if len(X) == 0 || m.scaler == nil {
		return make([]float64, len(X))
	}
	Xs := m.design(m.scaler.Transform(X))
	z := mat.NewVecDense(len(X), nil)
	z.MulVec(Xs, mat.NewVecDense(len(m.W), m.W))
	out := make([]float64, len(X))
	for i := range out {
		out[i] = loss.Sigmoid(z.AtVec(i) + m.b)
	}
	return out
}

// Coefficients returns the weights and bias in standardized feature space.
func (m *LogisticRegression) Coefficients() ([]float64, float64) {
	return append([]float64(nil), m.W...), m.b
}

// Iterations reports how many solver steps the last Fit took.
func (m *LogisticRegression) Iterations() int { return m.nIter }

func (m *LogisticRegression) design(Xs [][]float64) *mat.Dense {
	n, p := len(Xs), len(Xs[0])
	d := mat.NewDense(n, p, nil)
	for i, row := range Xs {
		for j, v := range row {
			if math.IsNaN(v) {
				v = 0
			}
			d.Set(i, j, v)
		}
	}
	return d
}

// sampleWeights combines caller weights with balanced class weights
// (n / (2 * n_class)) when requested.
func (m *LogisticRegression) sampleWeights(y, w []float64) []float64 {
	out := make([]float64, len(y))
	for i := range out {
		out[i] = 1
		if w != nil {
			out[i] = w[i]
		}
	}
	if m.Params.ClassWeight != "balanced" {
		return out
	}
	pos := 0
	for _, v := range y {
		if v >= 0.5 {
			pos++
		}
	}
	neg := len(y) - pos
	for i, v := range y {
		switch {
		case v >= 0.5 && pos > 0:
			out[i] *= float64(len(y)) / (2 * float64(pos))
		case v < 0.5 && neg > 0:
			out[i] *= float64(len(y)) / (2 * float64(neg))
		}
	}
	return out
}
