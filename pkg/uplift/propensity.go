package uplift

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/evelynqian/causallift/pkg/data"
	"github.com/evelynqian/causallift/pkg/model"
	"github.com/evelynqian/causallift/pkg/search"
	"github.com/evelynqian/causallift/pkg/stats"
)

// ErrDegenerateTreatment is returned when the treatment column does not vary,
// so no propensity model can be fitted.
var ErrDegenerateTreatment = errors.New("uplift: treatment column has no variation")

// Propensity is the outcome of EstimatePropensity.
type Propensity struct {
	Scores  []float64 // one per row of the table, clamped
	Clipped int       // number of scores moved into the band
	Search  *search.Result
}

// EstimatePropensity fits P(treatment | features) by grid search over
// cfg.PropensityModelParams on the train partition (every row for an untagged
// table), then scores every row and clamps the scores into
// [cfg.MinPropensity, cfg.MaxPropensity]. Out-of-band scores are moved, never
// dropped.
func EstimatePropensity(t *data.Table, cfg Config, logger *slog.Logger) (*Propensity, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	features, err := featureColumns(cfg, t)
	if err != nil {
		return nil, err
	}
	rows := t.Where(func(i int) bool { return t.Partition(i) != data.Test })

	y := make([]float64, len(rows))
	var treated int
	for k, i := range rows {
		y[k] = t.Value(i, cfg.ColTreatment)
		if Treated.is(y[k]) {
			treated++
		}
	}
	if treated == 0 || treated == len(rows) {
		return nil, fmt.Errorf("%w: %d of %d train rows treated", ErrDegenerateTreatment, treated, len(rows))
	}

	X, err := t.Matrix(features, rows)
	if err != nil {
		return nil, err
	}
	gs := &search.GridSearchCV{
		Factory:     model.NewLogisticFromParams,
		Grid:        cfg.PropensityModelParams,
		CV:          cfg.CV,
		Scoring:     cfg.Scoring,
		RandomState: cfg.RandomState,
	}
	res, err := gs.Fit(X, y, nil)
	if err != nil {
		return nil, fmt.Errorf("fit propensity model: %w", err)
	}
	logger.Info("propensity model fitted", "samples", len(rows), "best_params", res.BestParams, "cv_score", res.BestScore)

	all, err := t.Matrix(features, nil)
	if err != nil {
		return nil, err
	}
	raw := res.Best.PredictProba(all)
	scores, moved := stats.Clip(raw, cfg.MinPropensity, cfg.MaxPropensity)
	if moved > 0 {
		logger.Warn("propensity scores clipped", "count", moved,
			"min_propensity", cfg.MinPropensity, "max_propensity", cfg.MaxPropensity)
	}
	lo, hi := stats.MinMax(raw)
	logger.Debug("propensity score range before clipping", "min", lo, "max", hi)
	return &Propensity{Scores: scores, Clipped: moved, Search: res}, nil
}
