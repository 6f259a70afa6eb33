package model

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// ---------------------------
// Types & options
// ---------------------------

// GradientTree is a CART-style binary tree grown on per-sample gradient
// statistics (grad, hess). With grad = -w*y and hess = w the leaves hold the
// weighted mean of y, which is how the random forest uses it; the boosted
// classifier feeds it logistic-loss derivatives instead.
type GradientTree struct {
	// Hyperparameters / options
	MaxDepth        int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit int     // minimum samples to attempt a split
	MinSamplesLeaf  int     // minimum samples required in each leaf
	MinChildWeight  float64 // minimum hessian sum required in each leaf
	MaxFeatures     int     // 0 => use all features, >0 => number of features to sample per split
	Lambda          float64 // L2 penalty on leaf values
	Alpha           float64 // L1 penalty on leaf values
	Gamma           float64 // minimal gain to accept a split
	MaxDeltaStep    float64 // 0 => unbounded, >0 => clip leaf values to [-MaxDeltaStep, MaxDeltaStep]
	RandomState     int64   // seed for randomness (feature subsampling)
	Features        []int   // candidate features; nil => all

	// internals
	root *dtNode
}

// dtNode holds a node in the tree.
type dtNode struct {
	// internal node fields
	isLeaf      bool
	feature     int
	threshold   float64 // x <= threshold => left
	missingLeft bool    // direction taken by NaN
	left        *dtNode
	right       *dtNode

	// leaf data
	n     int
	value float64
}

// gradStats accumulates the gradient statistics of a set of samples.
type gradStats struct {
	g, h float64
	n    int
}

func (s *gradStats) add(g, h float64) { s.g += g; s.h += h; s.n++ }
func (s gradStats) sub(o gradStats) gradStats {
	return gradStats{g: s.g - o.g, h: s.h - o.h, n: s.n - o.n}
}

// TreeOption functional config
type TreeOption func(*GradientTree)

func WithMaxDepth(d int) TreeOption { return func(t *GradientTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *GradientTree) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) TreeOption {
	return func(t *GradientTree) { t.MinSamplesLeaf = n }
}
func WithMinChildWeight(v float64) TreeOption {
	return func(t *GradientTree) { t.MinChildWeight = v }
}
func WithMaxFeatures(k int) TreeOption { return func(t *GradientTree) { t.MaxFeatures = k } }
func WithRegularization(lambda, alpha float64) TreeOption {
	return func(t *GradientTree) { t.Lambda, t.Alpha = lambda, alpha }
}
func WithGamma(v float64) TreeOption        { return func(t *GradientTree) { t.Gamma = v } }
func WithMaxDeltaStep(v float64) TreeOption { return func(t *GradientTree) { t.MaxDeltaStep = v } }
func WithRandomState(seed int64) TreeOption {
	return func(t *GradientTree) { t.RandomState = seed }
}
func WithFeatures(f []int) TreeOption { return func(t *GradientTree) { t.Features = f } }

// NewGradientTree returns a tree with sensible defaults.
func NewGradientTree(opts ...TreeOption) *GradientTree {
	t := &GradientTree{
		MaxDepth:        0, // 0 => no explicit max (stopping by other criteria)
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// ---------------------------
// Public API: Fit / Predict
// ---------------------------

// Fit grows the tree on the rows of X listed in idx (duplicates allowed, so a
// bootstrap sample is just an index slice). grad and hess are aligned with X.
// Missing values must be math.NaN(); each split learns which side they take.
func (t *GradientTree) Fit(X [][]float64, grad, hess []float64, idx []int) error {
	if len(X) == 0 {
		return errorf("dtree", "empty X")
	}
	if len(grad) != len(X) || len(hess) != len(X) {
		return errorf("dtree", "X and gradient length mismatch")
	}
	if len(idx) == 0 {
		return errorf("dtree", "no samples to fit")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errorf("dtree", "inconsistent number of features in X rows")
		}
	}
	feats := t.Features
	if feats == nil {
		feats = make([]int, p)
		for j := 0; j < p; j++ {
			feats[j] = j
		}
	}
	rnd := rand.New(rand.NewSource(t.RandomState))
	t.root = t.buildNode(X, grad, hess, idx, 0, feats, rnd)
	return nil
}

// Predict returns the leaf value for each row of X.
func (t *GradientTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = t.predictSingle(X[i])
	}
	return out
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

// A struct to hold the results of a single feature's best split search.
type splitResult struct {
	gain        float64
	feature     int
	threshold   float64
	missingLeft bool
}

// pair is a named type for a value and its original index.
type pair struct {
	v float64
	i int
}

func (t *GradientTree) leafValue(s gradStats) float64 {
	if s.h+t.Lambda == 0 {
		return 0
	}
	v := -thresholdL1(s.g, t.Alpha) / (s.h + t.Lambda)
	if t.MaxDeltaStep > 0 {
		v = math.Max(-t.MaxDeltaStep, math.Min(t.MaxDeltaStep, v))
	}
	return v
}

func (t *GradientTree) score(s gradStats) float64 {
	if s.h+t.Lambda == 0 {
		return 0
	}
	g := thresholdL1(s.g, t.Alpha)
	return g * g / (s.h + t.Lambda)
}

func (t *GradientTree) buildNode(X [][]float64, grad, hess []float64, idx []int, depth int, feats []int, rnd *rand.Rand) *dtNode {
	var total gradStats
	for _, ii := range idx {
		total.add(grad[ii], hess[ii])
	}
	node := &dtNode{n: len(idx), isLeaf: true, value: t.leafValue(total)}

	// make leaf if too few samples or depth reached
	if t.MinSamplesSplit > 0 && len(idx) < t.MinSamplesSplit {
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return node
	}

	// determine features to try
	try := feats
	if t.MaxFeatures > 0 && t.MaxFeatures < len(feats) {
		try = append([]int(nil), feats...)
		for i := 0; i < t.MaxFeatures; i++ {
			j := i + rnd.Intn(len(try)-i)
			try[i], try[j] = try[j], try[i]
		}
		try = try[:t.MaxFeatures]
	}

	parentScore := t.score(total)

	// Parallel search for the best split for each feature.
	results := make([]splitResult, len(try))
	var wg sync.WaitGroup
	for k, f := range try {
		wg.Add(1)
		go func(k, f int) {
			defer wg.Done()
			results[k] = t.findBestSplitForFeature(X, grad, hess, idx, f, total, parentScore)
		}(k, f)
	}
	wg.Wait()

	// Results are scanned in feature order so ties resolve the same way on every run.
	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	if best.feature == -1 || best.gain <= t.Gamma {
		return node
	}

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, ii := range idx {
		if goesLeft(X[ii][best.feature], best.threshold, best.missingLeft) {
			leftIdx = append(leftIdx, ii)
		} else {
			rightIdx = append(rightIdx, ii)
		}
	}

	node.isLeaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.missingLeft = best.missingLeft
	node.left = t.buildNode(X, grad, hess, leftIdx, depth+1, feats, rnd)
	node.right = t.buildNode(X, grad, hess, rightIdx, depth+1, feats, rnd)
	return node
}

// findBestSplitForFeature is a goroutine-safe helper that finds the best split for a single feature.
func (t *GradientTree) findBestSplitForFeature(X [][]float64, grad, hess []float64, idx []int, f int, total gradStats, parentScore float64) splitResult {
	result := splitResult{feature: -1}

	valid := make([]pair, 0, len(idx))
	var nan gradStats
	for _, ii := range idx {
		v := X[ii][f]
		if math.IsNaN(v) {
			nan.add(grad[ii], hess[ii])
			continue
		}
		valid = append(valid, pair{v, ii})
	}
	if len(valid) < 2 {
		return result
	}
	sort.SliceStable(valid, func(a, b int) bool { return valid[a].v < valid[b].v })

	// scan thresholds between distinct values, trying NaNs on each side
	var left gradStats
	for s := 1; s < len(valid); s++ {
		left.add(grad[valid[s-1].i], hess[valid[s-1].i])
		if valid[s].v == valid[s-1].v {
			continue
		}
		thr := (valid[s-1].v + valid[s].v) / 2.0
		for _, missingLeft := range []bool{true, false} {
			l := left
			if missingLeft {
				l = gradStats{g: left.g + nan.g, h: left.h + nan.h, n: left.n + nan.n}
			}
			r := total.sub(l)
			if !t.okSplit(l, r) {
				continue
			}
			gain := 0.5 * (t.score(l) + t.score(r) - parentScore)
			if gain > result.gain {
				result = splitResult{gain: gain, feature: f, threshold: thr, missingLeft: missingLeft}
			}
		}
	}
	return result
}

// ---------------------------
// Helpers used in buildNode
// ---------------------------

func (t *GradientTree) okSplit(l, r gradStats) bool {
	if l.n < t.MinSamplesLeaf || r.n < t.MinSamplesLeaf {
		return false
	}
	if l.h < t.MinChildWeight || r.h < t.MinChildWeight {
		return false
	}
	return true
}

func goesLeft(v, threshold float64, missingLeft bool) bool {
	if math.IsNaN(v) {
		return missingLeft
	}
	return v <= threshold
}

func thresholdL1(g, alpha float64) float64 {
	switch {
	case g > alpha:
		return g - alpha
	case g < -alpha:
		return g + alpha
	default:
		return 0
	}
}

// ---------------------------
// Prediction helper
// ---------------------------

func (t *GradientTree) predictSingle(x []float64) float64 {
	if t.root == nil {
		return 0
	}
	node := t.root
	for !node.isLeaf {
		if goesLeft(x[node.feature], node.threshold, node.missingLeft) {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// Depth returns the depth of the fitted tree (a single leaf has depth 0).
func (t *GradientTree) Depth() int { return nodeDepth(t.root) }

func nodeDepth(n *dtNode) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(nodeDepth(n.left), nodeDepth(n.right))
}
