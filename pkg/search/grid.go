// Package search selects learner hyperparameters by cross-validated grid search.
package search

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/evelynqian/causallift/pkg/loader"
	"github.com/evelynqian/causallift/pkg/loss"
	"github.com/evelynqian/causallift/pkg/model"
)

var (
	ErrEmptyGrid       = errors.New("search: empty hyperparameter grid")
	ErrUnknownScoring  = errors.New("search: unknown scoring")
	ErrTooFewSamples   = errors.New("search: fewer samples than cross-validation folds")
	errNoFiniteScoring = errors.New("search: no candidate produced a finite score")
)

// Grid maps a hyperparameter name to the values to try.
type Grid map[string][]any

// Candidates expands the grid into its cartesian product. Keys are visited in
// sorted order and the last key varies fastest, so the order is stable.
func (g Grid) Candidates() []map[string]any {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []map[string]any{{}}
	for _, k := range keys {
		vals := g[k]
		if len(vals) == 0 {
			return nil
		}
		next := make([]map[string]any, 0, len(out)*len(vals))
		for _, base := range out {
			for _, v := range vals {
				c := make(map[string]any, len(base)+1)
				for bk, bv := range base {
					c[bk] = bv
				}
				c[k] = v
				next = append(next, c)
			}
		}
		out = next
	}
	return out
}

// Scorer rates predicted probabilities against observed labels; higher is better.
type Scorer func(yTrue, proba []float64) float64

// Scorers are the named scoring functions accepted by GridSearchCV.
var Scorers = map[string]Scorer{
	"accuracy": func(yTrue, proba []float64) float64 {
		return model.AccuracyInt(model.BinaryLabels(yTrue), model.BinaryPredFromProba(proba, 0.5))
	},
	"roc_auc": func(yTrue, proba []float64) float64 {
		return model.ROCAUC(model.BinaryLabels(yTrue), proba)
	},
	"neg_log_loss": func(yTrue, proba []float64) float64 {
		return -loss.BCE(yTrue, proba, nil)
	},
}

// GridSearchCV fits one classifier per grid candidate and fold, keeps the
// candidate with the best mean validation score and refits it on all rows.
type GridSearchCV struct {
	Factory     model.Factory
	Grid        Grid
	CV          int
	Scoring     string // "" => accuracy
	RandomState int64
}

// CandidateResult records the cross-validation outcome of one candidate.
type CandidateResult struct {
	Params     map[string]any
	FoldScores []float64
	MeanScore  float64
}

// Result is the outcome of a grid search.
type Result struct {
	Best       model.Classifier
	BestParams map[string]any
	BestScore  float64 // NaN when cross-validation was skipped
	Candidates []CandidateResult
}

// Fit runs the search. Sample weights are routed to every fit (fold subsets
// during cross-validation, all of w for the refit) but not to scoring. With a
// single candidate and fewer rows than folds, cross-validation is skipped.
// Errors from the learner are returned unchanged.
func (s *GridSearchCV) Fit(X [][]float64, y, w []float64) (*Result, error) {
	cands := s.Grid.Candidates()
	if len(cands) == 0 {
		return nil, ErrEmptyGrid
	}
	scoring := s.Scoring
	if scoring == "" {
		scoring = "accuracy"
	}
	scorer, ok := Scorers[scoring]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScoring, scoring)
	}

	res := &Result{Candidates: make([]CandidateResult, len(cands)), BestScore: math.NaN()}
	for i, c := range cands {
		res.Candidates[i] = CandidateResult{Params: c, MeanScore: math.NaN()}
	}

	folds, err := loader.StratifiedKFoldSplit(model.BinaryLabels(y), s.CV)
	switch {
	case err != nil && len(cands) > 1:
		return nil, fmt.Errorf("%w: %v", ErrTooFewSamples, err)
	case err == nil:
		if err := s.crossValidate(X, y, w, folds, scorer, res); err != nil {
			return nil, err
		}
	}

	best := 0
	if len(cands) > 1 {
		best = -1
		for i, c := range res.Candidates {
			if math.IsNaN(c.MeanScore) {
				continue
			}
			if best < 0 || c.MeanScore > res.Candidates[best].MeanScore {
				best = i
			}
		}
		if best < 0 {
			return nil, errNoFiniteScoring
		}
	}
	res.BestParams = cands[best]
	res.BestScore = res.Candidates[best].MeanScore

	clf, err := s.Factory(res.BestParams, s.RandomState)
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(X, y, w); err != nil {
		return nil, err
	}
	res.Best = clf
	return res, nil
}

func (s *GridSearchCV) crossValidate(X [][]float64, y, w []float64, folds []loader.Fold, scorer Scorer, res *Result) error {
	scores := make([][]float64, len(res.Candidates))
	for i := range scores {
		scores[i] = make([]float64, len(folds))
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for ci := range res.Candidates {
		for fi := range folds {
			ci, fi := ci, fi
			eg.Go(func() error {
				clf, err := s.Factory(res.Candidates[ci].Params, s.RandomState)
				if err != nil {
					return err
				}
				fold := folds[fi]
				Xtr, ytr, wtr := subset(X, y, w, fold.Train)
				Xte, yte, _ := subset(X, y, nil, fold.Test)
				if err := clf.Fit(Xtr, ytr, wtr); err != nil {
					return err
				}
				scores[ci][fi] = scorer(yte, clf.PredictProba(Xte))
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for ci := range res.Candidates {
		res.Candidates[ci].FoldScores = scores[ci]
		res.Candidates[ci].MeanScore = nanMean(scores[ci])
	}
	return nil
}

func subset(X [][]float64, y, w []float64, idx []int) ([][]float64, []float64, []float64) {
	Xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	var ws []float64
	if w != nil {
		ws = make([]float64, len(idx))
	}
	for k, i := range idx {
		Xs[k] = X[i]
		ys[k] = y[i]
		if w != nil {
			ws[k] = w[i]
		}
	}
	return Xs, ys, ws
}

func nanMean(x []float64) float64 {
	s, n := 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		s += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}
