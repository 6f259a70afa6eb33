package uplift

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/evelynqian/causallift/pkg/data"
	"github.com/evelynqian/causallift/pkg/model"
	"github.com/evelynqian/causallift/pkg/search"
	"github.com/evelynqian/causallift/pkg/stats"
)

// ErrNoRecommendation is returned when a simulation runs before any
// recommendation column exists.
var ErrNoRecommendation = errors.New("uplift: recommendation column missing")

// Arm is a treatment arm. Its value is the treatment indicator of its rows.
type Arm int

const (
	Untreated Arm = 0
	Treated   Arm = 1
)

func (a Arm) String() string {
	if a == Treated {
		return "treated"
	}
	return "untreated"
}

// is reports whether an indicator value (treatment or recommendation) selects a.
func (a Arm) is(v float64) bool {
	if a == Treated {
		return v == 1
	}
	return v == 0
}

// FittedModel is an outcome classifier bound to the features it was trained on.
type FittedModel struct {
	Arm        Arm
	Classifier model.Classifier
	Features   []string
	Params     map[string]any // best grid candidate
	CVScore    float64        // mean validation score of Params; NaN if not cross-validated
}

// NewFittedModel wraps an already trained classifier.
func NewFittedModel(arm Arm, clf model.Classifier, features []string) *FittedModel {
	return &FittedModel{Arm: arm, Classifier: clf, Features: append([]string(nil), features...), CVScore: math.NaN()}
}

// PredictProba scores the rows listed in idx (every row when idx is nil).
func (f *FittedModel) PredictProba(t *data.Table, idx []int) ([]float64, error) {
	if idx != nil && len(idx) == 0 {
		return nil, nil
	}
	X, err := t.Matrix(f.Features, idx)
	if err != nil {
		return nil, err
	}
	return f.Classifier.PredictProba(X), nil
}

// Score is the fit-time prediction for one row of an arm.
type Score struct {
	Row         int // row position in the combined table
	Partition   data.Partition
	Probability float64
	Outcome     float64
	Treatment   float64
}

// ScoreSummary describes how well an arm model fits the arm's own rows in one
// partition. Rates are NaN when the partition holds none of them.
type ScoreSummary struct {
	Samples       int
	ObservedRate  float64
	PredictedRate float64
	Accuracy      float64
	Precision     float64
	Recall        float64
	F1            float64
	Confusion     model.ConfusionMatrix
}

// ScoreTable holds an arm model's predictions for every row of its arm under
// the historical treatment, captured once at fit time.
type ScoreTable struct {
	Arm     Arm
	Scores  []Score
	Summary map[data.Partition]ScoreSummary
}

// In returns the scores of one partition, in row order.
func (s *ScoreTable) In(p data.Partition) []Score {
	var out []Score
	for _, sc := range s.Scores {
		if sc.Partition == p {
			out = append(out, sc)
		}
	}
	return out
}

func summarize(scores []Score) ScoreSummary {
	sum := ScoreSummary{Samples: len(scores)}
	y := make([]float64, len(scores))
	p := make([]float64, len(scores))
	for i, s := range scores {
		y[i], p[i] = s.Outcome, s.Probability
	}
	sum.ObservedRate = stats.Rate(y)
	sum.PredictedRate = stats.Rate(p)
	yTrue, yPred := model.BinaryLabels(y), model.BinaryPredFromProba(p, 0.5)
	sum.Accuracy = model.AccuracyInt(yTrue, yPred)
	sum.Precision, sum.Recall, sum.F1 = model.PrecisionRecallF1(yTrue, yPred)
	sum.Confusion = model.NewConfusionMatrix(yTrue, yPred)
	return sum
}

// ArmModel fits and applies the outcome model of one treatment arm.
type ArmModel struct {
	arm    Arm
	cfg    Config
	logger *slog.Logger
}

func NewArmModel(arm Arm, cfg Config, logger *slog.Logger) *ArmModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ArmModel{arm: arm, cfg: cfg, logger: logger.With("arm", arm.String())}
}

func (m *ArmModel) Arm() Arm { return m.arm }

// rows returns the indices of the rows whose historical treatment is this arm.
func (m *ArmModel) rows(t *data.Table) []int {
	return t.Where(func(i int) bool { return m.arm.is(t.Value(i, m.cfg.ColTreatment)) })
}

// Fit trains the arm's outcome classifier on the arm's train rows by grid
// search, optionally weighting each row by its inverse propensity, and scores
// every row of the arm in both partitions. The model learns from the train
// partition only; test rows are scored but never seen in training.
func (m *ArmModel) Fit(t *data.Table) (*FittedModel, *ScoreTable, error) {
	features, err := featureColumns(m.cfg, t)
	if err != nil {
		return nil, nil, err
	}
	armRows := m.rows(t)
	trainRows := make([]int, 0, len(armRows))
	for _, i := range armRows {
		if t.Partition(i) != data.Test {
			trainRows = append(trainRows, i)
		}
	}

	X, err := t.Matrix(features, trainRows)
	if err != nil {
		return nil, nil, err
	}
	y := make([]float64, len(trainRows))
	for k, i := range trainRows {
		y[k] = t.Value(i, m.cfg.ColOutcome)
	}
	w, err := m.sampleWeights(t, trainRows)
	if err != nil {
		return nil, nil, err
	}

	factory, err := m.cfg.upliftFactory()
	if err != nil {
		return nil, nil, err
	}
	gs := &search.GridSearchCV{
		Factory:     factory,
		Grid:        m.cfg.UpliftModelParams,
		CV:          m.cfg.CV,
		Scoring:     m.cfg.Scoring,
		RandomState: m.cfg.RandomState,
	}
	res, err := gs.Fit(X, y, w)
	if err != nil {
		return nil, nil, fmt.Errorf("fit %s outcome model: %w", m.arm, err)
	}
	fitted := &FittedModel{
		Arm:        m.arm,
		Classifier: res.Best,
		Features:   append([]string(nil), features...),
		Params:     res.BestParams,
		CVScore:    res.BestScore,
	}
	m.logger.Info("outcome model fitted",
		"samples", len(trainRows), "ipw", w != nil, "best_params", res.BestParams, "cv_score", res.BestScore)

	scores, err := m.scoreOriginalTreatment(t, fitted, armRows)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range []data.Partition{data.Train, data.Test} {
		s := scores.Summary[p]
		m.logger.Debug("outcome estimated by the model", "partition", p,
			"samples", s.Samples, "observed_rate", s.ObservedRate, "predicted_rate", s.PredictedRate,
			"accuracy", s.Accuracy, "precision", s.Precision, "recall", s.Recall, "f1", s.F1)
	}
	return fitted, scores, nil
}

// sampleWeights returns 1/p for the treated arm and 1/(1-p) for the untreated
// arm, with p clamped to the configured band first. Weights are not
// renormalised. nil means unweighted.
func (m *ArmModel) sampleWeights(t *data.Table, idx []int) ([]float64, error) {
	if !m.cfg.EnableIPW || !t.HasColumn(m.cfg.ColPropensity) {
		return nil, nil
	}
	prop := make([]float64, len(idx))
	for k, i := range idx {
		prop[k] = t.Value(i, m.cfg.ColPropensity)
		if math.IsNaN(prop[k]) {
			return nil, fmt.Errorf("uplift: missing propensity at row %d", i)
		}
	}
	lo, hi := stats.MinMax(prop)
	if lo < m.cfg.MinPropensity {
		m.logger.Warn("propensity scores below the minimum were clipped", "min_propensity", m.cfg.MinPropensity, "observed_min", lo)
	}
	if hi > m.cfg.MaxPropensity {
		m.logger.Warn("propensity scores above the maximum were clipped", "max_propensity", m.cfg.MaxPropensity, "observed_max", hi)
	}
	clipped, _ := stats.Clip(prop, m.cfg.MinPropensity, m.cfg.MaxPropensity)
	w := make([]float64, len(clipped))
	for k, p := range clipped {
		if m.arm == Treated {
			w[k] = 1 / p
		} else {
			w[k] = 1 / (1 - p)
		}
	}
	return w, nil
}

func (m *ArmModel) scoreOriginalTreatment(t *data.Table, fitted *FittedModel, armRows []int) (*ScoreTable, error) {
	proba, err := fitted.PredictProba(t, armRows)
	if err != nil {
		return nil, err
	}
	st := &ScoreTable{Arm: m.arm, Scores: make([]Score, len(armRows)), Summary: map[data.Partition]ScoreSummary{}}
	for k, i := range armRows {
		st.Scores[k] = Score{
			Row:         i,
			Partition:   t.Partition(i),
			Probability: proba[k],
			Outcome:     t.Value(i, m.cfg.ColOutcome),
			Treatment:   t.Value(i, m.cfg.ColTreatment),
		}
	}
	for _, p := range []data.Partition{data.Train, data.Test} {
		st.Summary[p] = summarize(st.In(p))
	}
	return st, nil
}

// PredictProba scores every row of t with this arm's model, whatever the
// row's own treatment.
func (m *ArmModel) PredictProba(t *data.Table, fitted *FittedModel) ([]float64, error) {
	return fitted.PredictProba(t, nil)
}

// Simulate compares, per partition, the rows historically given this arm with
// the rows the recommendation assigns to it. The former use the observed
// outcome, the latter the model's predicted outcome probability.
func (m *ArmModel) Simulate(t *data.Table, fitted *FittedModel, scores *ScoreTable) (*ArmImpact, error) {
	if !t.HasColumn(m.cfg.ColRecommendation) {
		return nil, ErrNoRecommendation
	}
	out := &ArmImpact{Arm: m.arm}
	for _, p := range []data.Partition{data.Train, data.Test} {
		chosen := scores.In(p)
		observed := make([]float64, len(chosen))
		for k, s := range chosen {
			observed[k] = s.Outcome
		}

		recommended := t.Where(func(i int) bool {
			return t.Partition(i) == p && m.arm.is(t.Value(i, m.cfg.ColRecommendation))
		})
		predicted, err := fitted.PredictProba(t, recommended)
		if err != nil {
			return nil, err
		}

		row := ImpactRow{
			Partition:        p,
			ChosenWithout:    len(chosen),
			ObservedRate:     stats.Rate(observed),
			RecommendedCount: len(recommended),
			PredictedRate:    stats.Rate(predicted),
		}
		row.Improvement = stats.Ratio(row.PredictedRate, row.ObservedRate)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
