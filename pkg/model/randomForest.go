package model

import (
	"math/rand"
	"sync"
)

// ForestParams are the hyperparameters of RandomForestClassifier.
type ForestParams struct {
	NEstimators     int  `param:"n_estimators"`
	MaxDepth        int  `param:"max_depth"`
	MinSamplesSplit int  `param:"min_samples_split"`
	MinSamplesLeaf  int  `param:"min_samples_leaf"`
	MaxFeatures     int  `param:"max_features"`
	Bootstrap       bool `param:"bootstrap"`
}

func DefaultForestParams() ForestParams {
	return ForestParams{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Bootstrap:       true,
	}
}

// RandomForestClassifier averages the leaf probabilities of bagged trees.
// Each tree is a GradientTree grown on (grad=-w*y, hess=w), so its leaves
// hold the weighted outcome rate of the samples that reach them.
type RandomForestClassifier struct {
	Params      ForestParams
	RandomState int64

	// Internal state
	Trees []*GradientTree
}

func NewRandomForestClassifier(params ForestParams, seed int64) *RandomForestClassifier {
	return &RandomForestClassifier{Params: params, RandomState: seed}
}

// NewForestFromParams is a Factory for RandomForestClassifier.
func NewForestFromParams(params map[string]any, seed int64) (Classifier, error) {
	p := DefaultForestParams()
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.NEstimators < 1 {
		return nil, errorf("randomforest", "n_estimators must be positive")
	}
	return NewRandomForestClassifier(p, seed), nil
}

// Fit trains the random forest.
// It uses index-based sampling for memory efficiency.
func (rf *RandomForestClassifier) Fit(X [][]float64, y []float64, w []float64) error {
	if err := checkXY("randomforest", X, y, w); err != nil {
		return err
	}
	n := len(X)
	grad := make([]float64, n)
	hess := make([]float64, n)
	for i := 0; i < n; i++ {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		grad[i] = -wi * y[i]
		hess[i] = wi
	}

	prm := rf.Params
	rf.Trees = make([]*GradientTree, prm.NEstimators)
	var wg sync.WaitGroup
	errCh := make(chan error, prm.NEstimators)

	for i := 0; i < prm.NEstimators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// Use a new rand source for each goroutine to avoid contention
			treeRand := rand.New(rand.NewSource(rf.RandomState + int64(idx)))

			// Bootstrap sampling: create an index slice, not a copy of the data.
			sampleIndices := make([]int, n)
			for j := 0; j < n; j++ {
				if prm.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := NewGradientTree(
				WithMaxDepth(prm.MaxDepth),
				WithMinSamplesSplit(prm.MinSamplesSplit),
				WithMinSamplesLeaf(prm.MinSamplesLeaf),
				WithMaxFeatures(prm.MaxFeatures),
				WithRandomState(rf.RandomState+int64(idx)), // unique seed for each tree
			)
			if err := tree.Fit(X, grad, hess, sampleIndices); err != nil {
				errCh <- err
				return
			}
			rf.Trees[idx] = tree
		}(i)
	}
	wg.Wait()
	close(errCh)

	// Check for any errors from goroutines.
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// PredictProba returns the mean of the trees' leaf rates for each row.
func (rf *RandomForestClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(rf.Trees) == 0 {
		return out
	}
	forEachChunk(len(X), func(start, end int) {
		for i := start; i < end; i++ {
			s := 0.0
			for _, t := range rf.Trees {
				s += t.predictSingle(X[i])
			}
			out[i] = min(1, max(0, s/float64(len(rf.Trees))))
		}
	})
	return out
}
