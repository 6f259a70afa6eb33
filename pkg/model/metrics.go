package model

import (
	"math"
	"sort"
)

func BinaryPredFromProba(proba []float64, threshold float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return out
}

// BinaryLabels thresholds observed outcomes (which may be probabilities) at 0.5.
func BinaryLabels(y []float64) []int { return BinaryPredFromProba(y, 0.5) }

// Classification metrics (binary, labels 0/1)
func AccuracyInt(yTrue []int, yPred []int) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

func PrecisionRecallF1(yTrue []int, yPred []int) (prec, rec, f1 float64) {
	cm := NewConfusionMatrix(yTrue, yPred)
	tp, fp, fn := cm.TP, cm.FP, cm.FN
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// ConfusionMatrix counts binary predictions against the truth.
type ConfusionMatrix struct {
	TN, FP, FN, TP int
}

func NewConfusionMatrix(yTrue, yPred []int) ConfusionMatrix {
	var cm ConfusionMatrix
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			cm.TP++
		case yPred[i] == 1 && yTrue[i] == 0:
			cm.FP++
		case yPred[i] == 0 && yTrue[i] == 1:
			cm.FN++
		default:
			cm.TN++
		}
	}
	return cm
}

// ROCAUC is the probability that a random positive is scored above a random
// negative, with ties counted as one half. NaN if either class is absent.
func ROCAUC(yTrue []int, score []float64) float64 {
	type item struct {
		s   float64
		pos bool
	}
	items := make([]item, len(yTrue))
	nPos := 0
	for i := range yTrue {
		items[i] = item{score[i], yTrue[i] == 1}
		if yTrue[i] == 1 {
			nPos++
		}
	}
	nNeg := len(yTrue) - nPos
	if nPos == 0 || nNeg == 0 {
		return math.NaN()
	}
	sort.Slice(items, func(a, b int) bool { return items[a].s < items[b].s })

	// sum of positive ranks, averaging ranks over tied scores
	rankSum := 0.0
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].s == items[i].s {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			if items[k].pos {
				rankSum += avg
			}
		}
		i = j
	}
	return (rankSum - float64(nPos*(nPos+1))/2) / float64(nPos*nNeg)
}
