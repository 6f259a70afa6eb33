package uplift

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"

	"github.com/evelynqian/causallift/pkg/model"
	"github.com/evelynqian/causallift/pkg/search"
)

// ErrInvalidConfig wraps every configuration error.
var ErrInvalidConfig = errors.New("uplift: invalid config")

// Outcome learners selectable with uplift_model.
const (
	LearnerBoosting = "gbtree"
	LearnerForest   = "forest"
)

// Config holds every session setting. Build it with DefaultConfig and
// options, or decode it from a map with ConfigFromMap; a Session keeps its own
// copy and never changes it.
type Config struct {
	ColsFeatures          []string    `mapstructure:"cols_features"`
	ColTreatment          string      `mapstructure:"col_treatment"`
	ColOutcome            string      `mapstructure:"col_outcome"`
	ColPropensity         string      `mapstructure:"col_propensity"`
	ColCATE               string      `mapstructure:"col_cate"`
	ColRecommendation     string      `mapstructure:"col_recommendation"`
	MinPropensity         float64     `mapstructure:"min_propensity"`
	MaxPropensity         float64     `mapstructure:"max_propensity"`
	RandomState           int64       `mapstructure:"random_state"`
	Verbose               int         `mapstructure:"verbose"`
	UpliftModel           string      `mapstructure:"uplift_model"`
	UpliftModelParams     search.Grid `mapstructure:"uplift_model_params"`
	EnableIPW             bool        `mapstructure:"enable_ipw"`
	PropensityModelParams search.Grid `mapstructure:"propensity_model_params"`
	CV                    int         `mapstructure:"cv"`
	Scoring               string      `mapstructure:"scoring"`

	// Logger receives the session's events. nil => a stderr text logger at
	// the level implied by Verbose.
	Logger *slog.Logger `mapstructure:"-"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ColTreatment:      "Treatment",
		ColOutcome:        "Outcome",
		ColPropensity:     "Propensity",
		ColCATE:           "CATE",
		ColRecommendation: "Recommendation",
		MinPropensity:     0.01,
		MaxPropensity:     0.99,
		RandomState:       0,
		Verbose:           2,
		UpliftModel:       LearnerBoosting,
		UpliftModelParams: search.Grid{
			"max_depth":         {3},
			"learning_rate":     {0.1},
			"n_estimators":      {100},
			"gamma":             {0.0},
			"min_child_weight":  {1.0},
			"max_delta_step":    {0.0},
			"subsample":         {1.0},
			"colsample_bytree":  {1.0},
			"colsample_bylevel": {1.0},
			"reg_alpha":         {0.0},
			"reg_lambda":        {1.0},
			"scale_pos_weight":  {1.0},
			"base_score":        {0.5},
		},
		EnableIPW: true,
		PropensityModelParams: search.Grid{
			"C":             {0.1, 1.0, 10.0},
			"class_weight":  {""},
			"fit_intercept": {true},
			"max_iter":      {300},
			"penalty":       {"l1", "l2"},
			"tol":           {0.0001},
		},
		CV:      3,
		Scoring: "accuracy",
	}
}

// Option overrides one Config field.
type Option func(*Config)

func WithFeatures(cols ...string) Option {
	return func(c *Config) { c.ColsFeatures = append([]string(nil), cols...) }
}
func WithTreatmentColumn(name string) Option  { return func(c *Config) { c.ColTreatment = name } }
func WithOutcomeColumn(name string) Option    { return func(c *Config) { c.ColOutcome = name } }
func WithPropensityColumn(name string) Option { return func(c *Config) { c.ColPropensity = name } }
func WithCATEColumn(name string) Option       { return func(c *Config) { c.ColCATE = name } }
func WithRecommendationColumn(name string) Option {
	return func(c *Config) { c.ColRecommendation = name }
}
func WithPropensityBounds(lo, hi float64) Option {
	return func(c *Config) { c.MinPropensity, c.MaxPropensity = lo, hi }
}
func WithRandomState(seed int64) Option { return func(c *Config) { c.RandomState = seed } }
func WithVerbose(level int) Option      { return func(c *Config) { c.Verbose = level } }
func WithUpliftModel(kind string, grid search.Grid) Option {
	return func(c *Config) {
		c.UpliftModel = kind
		if grid != nil {
			c.UpliftModelParams = grid
		}
	}
}
func WithUpliftModelParams(grid search.Grid) Option {
	return func(c *Config) { c.UpliftModelParams = grid }
}
func WithIPW(enabled bool) Option { return func(c *Config) { c.EnableIPW = enabled } }
func WithPropensityModelParams(grid search.Grid) Option {
	return func(c *Config) { c.PropensityModelParams = grid }
}
func WithCV(folds int) Option          { return func(c *Config) { c.CV = folds } }
func WithScoring(name string) Option   { return func(c *Config) { c.Scoring = name } }
func WithLogger(l *slog.Logger) Option { return func(c *Config) { c.Logger = l } }

// NewConfig applies opts to the defaults and validates the result.
func NewConfig(opts ...Option) (Config, error) {
	c := DefaultConfig()
	for _, o := range opts {
		o(&c)
	}
	return c, c.Validate()
}

// ConfigFromMap overlays m onto the defaults. Unknown keys are rejected.
// A grid given in m replaces the default grid as a whole.
func ConfigFromMap(m map[string]any) (Config, error) {
	c := DefaultConfig()
	if grid, ok := m["uplift_model_params"]; ok && grid != nil {
		c.UpliftModelParams = nil
	}
	if grid, ok := m["propensity_model_params"]; ok && grid != nil {
		c.PropensityModelParams = nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, c.Validate()
}

// Validate checks the settings that can be checked without data.
func (c Config) Validate() error {
	names := map[string]string{
		"col_treatment":      c.ColTreatment,
		"col_outcome":        c.ColOutcome,
		"col_propensity":     c.ColPropensity,
		"col_cate":           c.ColCATE,
		"col_recommendation": c.ColRecommendation,
	}
	seen := map[string]string{}
	for key, v := range names {
		if v == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, key)
		}
		if other, dup := seen[v]; dup {
			return fmt.Errorf("%w: %s and %s both name column %q", ErrInvalidConfig, key, other, v)
		}
		seen[v] = key
	}
	if !(0 <= c.MinPropensity && c.MinPropensity < c.MaxPropensity && c.MaxPropensity <= 1) {
		return fmt.Errorf("%w: need 0 <= min_propensity < max_propensity <= 1", ErrInvalidConfig)
	}
	if c.Verbose < 0 || c.Verbose > 3 {
		return fmt.Errorf("%w: verbose must be in [0, 3]", ErrInvalidConfig)
	}
	if c.CV < 2 {
		return fmt.Errorf("%w: cv must be at least 2", ErrInvalidConfig)
	}
	if _, err := c.upliftFactory(); err != nil {
		return err
	}
	if _, ok := search.Scorers[c.scoring()]; !ok {
		return fmt.Errorf("%w: unknown scoring %q", ErrInvalidConfig, c.Scoring)
	}
	if len(c.UpliftModelParams.Candidates()) == 0 {
		return fmt.Errorf("%w: uplift_model_params has a key with no values", ErrInvalidConfig)
	}
	if c.EnableIPW && len(c.PropensityModelParams.Candidates()) == 0 {
		return fmt.Errorf("%w: propensity_model_params has a key with no values", ErrInvalidConfig)
	}
	return nil
}

// reserved lists the columns that are never features.
func (c Config) reserved() []string {
	return []string{c.ColTreatment, c.ColOutcome, c.ColPropensity, c.ColCATE, c.ColRecommendation}
}

func (c Config) scoring() string {
	if c.Scoring == "" {
		return "accuracy"
	}
	return c.Scoring
}

func (c Config) upliftFactory() (model.Factory, error) {
	switch c.UpliftModel {
	case "", LearnerBoosting:
		return model.NewBoostingFromParams, nil
	case LearnerForest:
		return model.NewForestFromParams, nil
	default:
		return nil, fmt.Errorf("%w: unknown uplift_model %q", ErrInvalidConfig, c.UpliftModel)
	}
}

// clone copies the slices and grids so the session's copy cannot be changed
// through the caller's.
func (c Config) clone() Config {
	out := c
	out.ColsFeatures = append([]string(nil), c.ColsFeatures...)
	out.UpliftModelParams = cloneGrid(c.UpliftModelParams)
	out.PropensityModelParams = cloneGrid(c.PropensityModelParams)
	return out
}

func cloneGrid(g search.Grid) search.Grid {
	if g == nil {
		return nil
	}
	out := make(search.Grid, len(g))
	for k, v := range g {
		out[k] = append([]any(nil), v...)
	}
	return out
}
