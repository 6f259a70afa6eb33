package loader

import (
	"errors"
	"math/rand"
	"sort"
)

// Fold is one train/validation split expressed as row indices.
type Fold struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles [0,n) with the given seed and returns the train and
// test indices, with int(n*testRatio) rows in the test part.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int) {
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	return indices[nTest:], indices[:nTest]
}

// KFoldSplit yields k folds of train/test indices over [0,n) without shuffling.
// The first n%k folds hold one extra row.
func KFoldSplit(n, k int) ([]Fold, error) {
	if k < 2 || k > n {
		return nil, errors.New("loader: number of folds must be in [2, n]")
	}
	tests := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		for i := start; i < start+size; i++ {
			tests[f] = append(tests[f], i)
		}
		start += size
	}
	return foldsFromTests(n, tests), nil
}

// StratifiedKFoldSplit yields k folds that keep the class balance of labels
// in each fold. Rows of each class are dealt to folds round-robin, continuing
// where the previous class stopped, so fold sizes differ by at most one and
// the split is deterministic.
func StratifiedKFoldSplit(labels []int, k int) ([]Fold, error) {
	n := len(labels)
	if k < 2 || k > n {
		return nil, errors.New("loader: number of folds must be in [2, n]")
	}
	byClass := map[int][]int{}
	var classes []int
	for i, c := range labels {
		if _, ok := byClass[c]; !ok {
			classes = append(classes, c)
		}
		byClass[c] = append(byClass[c], i)
	}
	tests := make([][]int, k)
	offset := 0
	for _, c := range classes {
		rows := byClass[c]
		for j, r := range rows {
			f := (j + offset) % k
			tests[f] = append(tests[f], r)
		}
		offset += len(rows)
	}
	return foldsFromTests(n, tests), nil
}

func foldsFromTests(n int, tests [][]int) []Fold {
	folds := make([]Fold, len(tests))
	for f, test := range tests {
		in := make([]bool, n)
		for _, i := range test {
			in[i] = true
		}
		train := make([]int, 0, n-len(test))
		for i := 0; i < n; i++ {
			if !in[i] {
				train = append(train, i)
			}
		}
		sort.Ints(test)
		folds[f] = Fold{Train: train, Test: test}
	}
	return folds
}
