package uplift

import (
	"fmt"

	"github.com/evelynqian/causallift/pkg/data"
)

// EstimateCATE returns, for every row of t, the treated model's outcome
// probability minus the untreated model's. Both models score every row, so
// the contrast does not depend on the row's own historical treatment.
func EstimateCATE(t *data.Table, treated, untreated *FittedModel) ([]float64, error) {
	pt, err := treated.PredictProba(t, nil)
	if err != nil {
		return nil, fmt.Errorf("score with treated model: %w", err)
	}
	pu, err := untreated.PredictProba(t, nil)
	if err != nil {
		return nil, fmt.Errorf("score with untreated model: %w", err)
	}
	cate := make([]float64, len(pt))
	for i := range cate {
		cate[i] = pt[i] - pu[i]
	}
	return cate, nil
}
