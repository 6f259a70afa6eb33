package model

import (
	"math"
	"math/rand"

	"github.com/evelynqian/causallift/pkg/loss"
)

// BoostingParams are the hyperparameters of GradientBoostingClassifier. The
// names follow the XGBoost gbtree booster so existing grids carry over.
type BoostingParams struct {
	MaxDepth        int     `param:"max_depth"`
	LearningRate    float64 `param:"learning_rate"`
	NEstimators     int     `param:"n_estimators"`
	Gamma           float64 `param:"gamma"`
	MinChildWeight  float64 `param:"min_child_weight"`
	MaxDeltaStep    float64 `param:"max_delta_step"`
	Subsample       float64 `param:"subsample"`
	ColsampleByTree float64 `param:"colsample_bytree"`
	ColsampleByNode float64 `param:"colsample_bylevel"`
	RegAlpha        float64 `param:"reg_alpha"`
	RegLambda       float64 `param:"reg_lambda"`
	ScalePosWeight  float64 `param:"scale_pos_weight"`
	BaseScore       float64 `param:"base_score"`
}

// DefaultBoostingParams mirrors the XGBoost defaults used for uplift models.
func DefaultBoostingParams() BoostingParams {
	return BoostingParams{
		MaxDepth:        3,
		LearningRate:    0.1,
		NEstimators:     100,
		MinChildWeight:  1,
		Subsample:       1,
		ColsampleByTree: 1,
		ColsampleByNode: 1,
		RegLambda:       1,
		ScalePosWeight:  1,
		BaseScore:       0.5,
	}
}

// GradientBoostingClassifier is a binary classifier built from an additive
// ensemble of GradientTrees fitted by Newton steps on the logistic loss.
type GradientBoostingClassifier struct {
	Params      BoostingParams
	RandomState int64

	base  float64
	trees []*GradientTree
}

// NewGradientBoostingClassifier returns an unfitted classifier.
func NewGradientBoostingClassifier(params BoostingParams, seed int64) *GradientBoostingClassifier {
	return &GradientBoostingClassifier{Params: params, RandomState: seed}
}

// NewBoostingFromParams is a Factory for GradientBoostingClassifier.
func NewBoostingFromParams(params map[string]any, seed int64) (Classifier, error) {
	p := DefaultBoostingParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.NEstimators < 1 || p.LearningRate <= 0 {
		return nil, errorf("gbtree", "n_estimators and learning_rate must be positive")
	}
	if p.BaseScore <= 0 || p.BaseScore >= 1 {
		return nil, errorf("gbtree", "base_score must be in (0, 1)")
	}
	return NewGradientBoostingClassifier(p, seed), nil
}

// Fit trains the ensemble. w may be nil.
func (m *GradientBoostingClassifier) Fit(X [][]float64, y []float64, w []float64) error {
	if err := checkXY("gbtree", X, y, w); err != nil {
		return err
	}
	n, p := len(X), len(X[0])
	prm := m.Params

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
		if w != nil {
			weights[i] = w[i]
		}
		if y[i] >= 0.5 {
			weights[i] *= prm.ScalePosWeight
		}
	}

	rnd := rand.New(rand.NewSource(m.RandomState))
	m.base = loss.Logit(prm.BaseScore)
	m.trees = make([]*GradientTree, 0, prm.NEstimators)
	margin := make([]float64, n)
	for i := range margin {
		margin[i] = m.base
	}

	for round := 0; round < prm.NEstimators; round++ {
		grad, hess := loss.LogisticGradHess(y, margin, weights)

		idx := sampleRows(n, prm.Subsample, rnd)
		tree := NewGradientTree(
			WithMaxDepth(prm.MaxDepth),
			WithMinSamplesLeaf(1),
			WithMinChildWeight(prm.MinChildWeight),
			WithRegularization(prm.RegLambda, prm.RegAlpha),
			WithGamma(prm.Gamma),
			WithMaxDeltaStep(prm.MaxDeltaStep),
			WithFeatures(sampleFeatures(p, prm.ColsampleByTree, rnd)),
			WithRandomState(m.RandomState+int64(round)),
		)
		if prm.ColsampleByNode > 0 && prm.ColsampleByNode < 1 {
			nf := p
			if tree.Features != nil {
				nf = len(tree.Features)
			}
			tree.MaxFeatures = max(1, int(math.Round(prm.ColsampleByNode*float64(nf))))
		}
		if err := tree.Fit(X, grad, hess, idx); err != nil {
			return err
		}
		step := tree.Predict(X)
		for i := range margin {
			margin[i] += prm.LearningRate * step[i]
		}
		m.trees = append(m.trees, tree)
	}
	return nil
}

// PredictProba returns p(y=1) for each row in X.
func (m *GradientBoostingClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forEachChunk(len(X), func(start, end int) {
		for i := start; i < end; i++ {
			z := m.base
			for _, t := range m.trees {
				z += m.Params.LearningRate * t.predictSingle(X[i])
			}
			out[i] = loss.Sigmoid(z)
		}
	})
	return out
}

// NumTrees reports how many boosting rounds have been fitted.
func (m *GradientBoostingClassifier) NumTrees() int { return len(m.trees) }

func sampleRows(n int, frac float64, rnd *rand.Rand) []int {
	if frac >= 1 || frac <= 0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := max(1, int(math.Round(frac*float64(n))))
	return rnd.Perm(n)[:k]
}

func sampleFeatures(p int, frac float64, rnd *rand.Rand) []int {
	if frac >= 1 || frac <= 0 {
		return nil
	}
	k := max(1, int(math.Round(frac*float64(p))))
	return rnd.Perm(p)[:k]
}
