// Package uplift estimates the conditional average treatment effect (CATE)
// with one outcome model per treatment arm and simulates the impact of
// treating the samples the estimate ranks highest.
//
// A Session owns the combined train/test table. Construction fits the
// propensity model (when needed) and both arm models; EstimateCATE then adds
// the CATE column and EstimateRecommendationImpact the recommendation column
// and the impact table.
package uplift

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/evelynqian/causallift/pkg/data"
)

var (
	// ErrNoCATE is returned when an impact is requested before any CATE exists.
	ErrNoCATE           = errors.New("uplift: CATE not estimated")
	ErrInvalidTreatment = errors.New("uplift: treatment values must be 0 or 1")
	ErrNoFeatures       = errors.New("uplift: no feature columns")
)

// Session is one uplift analysis. It is not safe for concurrent use.
type Session struct {
	cfg      Config
	logger   *slog.Logger
	runID    string
	features []string

	table      *data.Table
	arms       map[Arm]*ArmModel
	fitted     map[Arm]*FittedModel
	scores     map[Arm]*ScoreTable
	impacts    map[Arm]*ArmImpact
	propensity *Propensity
	fractions  TreatmentFractions
	cate       []float64
}

// New builds a session from the default configuration and opts, then fits it.
func New(train, test *data.Table, opts ...Option) (*Session, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(train, test, cfg)
}

// NewWithConfig checks both tables, combines them, estimates the propensity
// when IPW is enabled and the propensity column is absent, and fits the
// treated and untreated outcome models. The tables are copied, never changed.
func NewWithConfig(train, test *data.Table, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	table, err := data.Combine(train, test)
	if err != nil {
		return nil, err
	}
	for _, c := range []string{cfg.ColTreatment, cfg.ColOutcome} {
		if !table.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", data.ErrNoColumn, c)
		}
	}
	for i, _n := 0, table.Len(); i < _n; i++ {
		if v := table.Value(i, cfg.ColTreatment); !Treated.is(v) && !Untreated.is(v) {
			return nil, fmt.Errorf("%w: %v at row %d", ErrInvalidTreatment, v, i)
		}
	}
	features, err := featureColumns(cfg, table)
	if err != nil {
		return nil, err
	}

	logger, runID := newLogger(cfg)
	s := &Session{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		features: features,
		table:    table,
		arms:     map[Arm]*ArmModel{},
		fitted:   map[Arm]*FittedModel{},
		scores:   map[Arm]*ScoreTable{},
	}
	s.logger.Info("session created", "train_samples", train.Len(), "test_samples", test.Len(), "features", len(features))

	if cfg.EnableIPW && !table.HasColumn(cfg.ColPropensity) {
		prop, err := EstimatePropensity(table, cfg, s.logger)
		if err != nil {
			return nil, err
		}
		if err := table.SetCol(cfg.ColPropensity, prop.Scores); err != nil {
			return nil, err
		}
		s.propensity = prop
	}

	if err := s.fitArms(); err != nil {
		return nil, err
	}

	s.fractions = ObservedTreatmentFractions(table, cfg.ColTreatment)
	s.logger.Debug("treatment fractions", "train", s.fractions.Train, "test", s.fractions.Test)
	return s, nil
}

// fitArms fits the two arm models concurrently. Each fit only reads the table.
func (s *Session) fitArms() error {
	type result struct {
		fitted *FittedModel
		scores *ScoreTable
	}
	arms := []Arm{Treated, Untreated}
	results := make([]result, len(arms))

	var eg errgroup.Group
	for k, arm := range arms {
		k := k
		m := NewArmModel(arm, s.cfg, s.logger)
		s.arms[arm] = m
		eg.Go(func() error {
			fitted, scores, err := m.Fit(s.table)
			if err != nil {
				return err
			}
			results[k] = result{fitted, scores}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for k, arm := range arms {
		s.fitted[arm] = results[k].fitted
		s.scores[arm] = results[k].scores
	}
	return nil
}

// EstimateCATE scores every row with both arm models, stores the difference in
// the CATE column and returns the train and test tables.
func (s *Session) EstimateCATE() (train, test *data.Table, err error) {
	cate, err := EstimateCATE(s.table, s.fitted[Treated], s.fitted[Untreated])
	if err != nil {
		return nil, nil, err
	}
	if err := s.setCATE(cate); err != nil {
		return nil, nil, err
	}
	train, test = s.table.Split()
	return train, test, nil
}

func (s *Session) setCATE(cate []float64) error {
	if err := s.table.SetCol(s.cfg.ColCATE, cate); err != nil {
		return err
	}
	s.cate = append([]float64(nil), cate...)
	return nil
}

type impactSettings struct {
	cate  []float64
	train *float64
	test  *float64
}

// ImpactOption overrides an input of EstimateRecommendationImpact.
type ImpactOption func(*impactSettings)

// WithCATE supplies the CATE to rank by, one value per row, train rows first.
// It replaces the session's CATE column.
func WithCATE(cate []float64) ImpactOption {
	return func(o *impactSettings) { o.cate = append([]float64(nil), cate...) }
}

// WithTreatmentFractions sets both treatment budgets.
func WithTreatmentFractions(f TreatmentFractions) ImpactOption {
	return func(o *impactSettings) { o.train, o.test = &f.Train, &f.Test }
}

func WithTreatmentFractionTrain(v float64) ImpactOption {
	return func(o *impactSettings) { o.train = &v }
}

func WithTreatmentFractionTest(v float64) ImpactOption {
	return func(o *impactSettings) { o.test = &v }
}

// EstimateRecommendationImpact recommends treatment to the top fraction of each
// partition by CATE, simulates both arms under that recommendation and returns
// the aggregated impact table. Fraction overrides are kept by the session and
// apply to later calls.
func (s *Session) EstimateRecommendationImpact(opts ...ImpactOption) (*ImpactTable, error) {
	var o impactSettings
	for _, opt := range opts {
		opt(&o)
	}
	fractions := s.fractions
	if o.train != nil {
		if err := checkFraction(*o.train); err != nil {
			return nil, err
		}
		fractions.Train = *o.train
	}
	if o.test != nil {
		if err := checkFraction(*o.test); err != nil {
			return nil, err
		}
		fractions.Test = *o.test
	}

	if o.cate != nil {
		if err := s.setCATE(o.cate); err != nil {
			return nil, err
		}
	}
	cate, err := s.table.Col(s.cfg.ColCATE)
	if err != nil {
		return nil, ErrNoCATE
	}
	s.fractions = fractions

	rec, err := RecommendByPartition(s.table, cate, fractions)
	if err != nil {
		return nil, err
	}
	if err := s.table.SetCol(s.cfg.ColRecommendation, rec); err != nil {
		return nil, err
	}

	s.impacts = map[Arm]*ArmImpact{}
	for _, arm := range []Arm{Treated, Untreated} {
		imp, err := s.arms[arm].Simulate(s.table, s.fitted[arm], s.scores[arm])
		if err != nil {
			return nil, err
		}
		s.impacts[arm] = imp
		s.arms[arm].logger.Debug("samples without and with uplift model", "table", imp.String())
	}
	out := Aggregate(s.impacts[Treated], s.impacts[Untreated])
	for _, r := range out.Records {
		s.logger.Info("recommendation impact", "partition", r.Partition, "samples", r.Samples,
			"observed_rate", r.ObservedRate, "predicted_rate", r.PredictedRate, "improvement", r.Improvement)
	}
	return out, nil
}

// Table returns a copy of the combined, partition-tagged table.
func (s *Session) Table() *data.Table { return s.table.Clone() }

// TrainTable returns a copy of the train partition.
func (s *Session) TrainTable() *data.Table {
	train, _ := s.table.Split()
	return train
}

// TestTable returns a copy of the test partition.
func (s *Session) TestTable() *data.Table {
	_, test := s.table.Split()
	return test
}

func (s *Session) TreatmentFractions() TreatmentFractions { return s.fractions }
func (s *Session) TreatmentFractionTrain() float64        { return s.fractions.Train }
func (s *Session) TreatmentFractionTest() float64         { return s.fractions.Test }

// CATEEstimated returns a copy of the last CATE, nil before any estimate.
func (s *Session) CATEEstimated() []float64 {
	if s.cate == nil {
		return nil
	}
	return append([]float64(nil), s.cate...)
}

// Models returns the fitted outcome models.
func (s *Session) Models() (treated, untreated *FittedModel) {
	return s.fitted[Treated], s.fitted[Untreated]
}

// Scores returns the fit-time score tables of both arms.
func (s *Session) Scores() (treated, untreated *ScoreTable) {
	return s.scores[Treated], s.scores[Untreated]
}

// ArmImpacts returns the per-arm simulations of the last
// EstimateRecommendationImpact call, nil before any.
func (s *Session) ArmImpacts() (treated, untreated *ArmImpact) {
	return s.impacts[Treated], s.impacts[Untreated]
}

// Propensity returns the fitted propensity model's output, nil when no model
// was fitted.
func (s *Session) Propensity() *Propensity { return s.propensity }

// Summary describes the observed data of each partition.
func (s *Session) Summary() []ObservedSummary {
	return Summarize(s.table, s.cfg.ColTreatment, s.cfg.ColOutcome)
}

func (s *Session) Features() []string { return append([]string(nil), s.features...) }
func (s *Session) RunID() string      { return s.runID }
func (s *Session) Config() Config     { return s.cfg.clone() }

// featureColumns returns cfg.ColsFeatures, or every column of t that is not
// reserved, in table order.
func featureColumns(cfg Config, t *data.Table) ([]string, error) {
	if len(cfg.ColsFeatures) > 0 {
		for _, c := range cfg.ColsFeatures {
			if !t.HasColumn(c) {
				return nil, fmt.Errorf("%w: feature %q", data.ErrNoColumn, c)
			}
		}
		return append([]string(nil), cfg.ColsFeatures...), nil
	}
	reserved := cfg.reserved()
	var out []string
	for _, c := range t.Columns() {
		if !slices.Contains(reserved, c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoFeatures
	}
	return out, nil
}
