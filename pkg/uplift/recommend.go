package uplift

import (
	"fmt"
	"math"
	"sort"

	"github.com/evelynqian/causallift/pkg/data"
)

// TreatmentFractions are the fractions of each partition to treat.
type TreatmentFractions struct {
	Train float64
	Test  float64
}

func (f TreatmentFractions) For(p data.Partition) float64 {
	if p == data.Test {
		return f.Test
	}
	return f.Train
}

func checkFraction(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: treatment fraction %v outside [0, 1]", ErrInvalidConfig, v)
	}
	return nil
}

// ObservedTreatmentFractions is the share of treated rows in each partition
// (NaN for an empty partition).
func ObservedTreatmentFractions(t *data.Table, colTreatment string) TreatmentFractions {
	frac := func(p data.Partition) float64 {
		rows := t.PartitionRows(p)
		if len(rows) == 0 {
			return math.NaN()
		}
		n := 0
		for _, i := range rows {
			if Treated.is(t.Value(i, colTreatment)) {
				n++
			}
		}
		return float64(n) / float64(len(rows))
	}
	return TreatmentFractions{Train: frac(data.Train), Test: frac(data.Test)}
}

// Recommend ranks cate in descending order and returns 1 for the rows whose
// percentile rank (rank/N, 1-based) is at most fraction, 0 otherwise. Ties
// keep their input order, the first seen ranking higher, so the result is
// reproducible for a given row order. NaN estimates are never recommended and
// do not count towards N.
func Recommend(cate []float64, fraction float64) []float64 {
	order := make([]int, 0, len(cate))
	for i, v := range cate {
		if !math.IsNaN(v) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return cate[order[a]] > cate[order[b]] })

	out := make([]float64, len(cate))
	n := float64(len(order))
	for r, i := range order {
		if float64(r+1)/n <= fraction {
			out[i] = 1
		}
	}
	return out
}

// RecommendByPartition applies Recommend to each partition of t separately,
// with that partition's fraction, and returns one value per row of t.
func RecommendByPartition(t *data.Table, cate []float64, fractions TreatmentFractions) ([]float64, error) {
	if len(cate) != t.Len() {
		return nil, fmt.Errorf("%w: %d CATE values for %d rows", data.ErrLength, len(cate), t.Len())
	}
	out := make([]float64, t.Len())
	for _, p := range []data.Partition{data.Train, data.Test} {
		rows := t.PartitionRows(p)
		part := make([]float64, len(rows))
		for k, i := range rows {
			part[k] = cate[i]
		}
		for k, v := range Recommend(part, fractions.For(p)) {
			out[rows[k]] = v
		}
	}
	return out, nil
}
