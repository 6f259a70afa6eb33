package model

import (
	"runtime"
	"sync"
)

// Classifier is a binary probability estimator. Labels are 0/1 (or
// probabilities in [0,1]); w holds per-sample weights and may be nil.
type Classifier interface {
	Fit(X [][]float64, y []float64, w []float64) error
	PredictProba(X [][]float64) []float64 // returns p(y=1)
}

// Factory builds an unfitted Classifier from one hyperparameter candidate.
// Unknown keys in params are an error.
type Factory func(params map[string]any, seed int64) (Classifier, error)

// Predict thresholds the probabilities of c at 0.5.
func Predict(c Classifier, X [][]float64) []int {
	return BinaryPredFromProba(c.PredictProba(X), 0.5)
}

func checkXY(prefix string, X [][]float64, y, w []float64) error {
	if len(X) == 0 {
		return errorf(prefix, "empty X")
	}
	if len(y) != len(X) {
		return errorf(prefix, "X and y length mismatch")
	}
	if w != nil && len(w) != len(X) {
		return errorf(prefix, "X and sample weight length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errorf(prefix, "inconsistent number of features in X rows")
		}
	}
	return nil
}

// forEachChunk splits [0,n) into one contiguous chunk per available CPU and
// runs fn on each concurrently.
func forEachChunk(n int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
