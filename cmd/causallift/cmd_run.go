package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/evelynqian/causallift/pkg/data"
	"github.com/evelynqian/causallift/pkg/report"
	"github.com/evelynqian/causallift/pkg/uplift"
)

type runOptions struct {
	train, test   string
	configPath    string
	output        string
	upliftPlot    string
	cateHistogram string
	fractionTrain float64
	fractionTest  float64
	verbose       int
}

func newRunCommand() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run --train train.csv --test test.csv",
		Short: "Fit the uplift models and report the recommendation impact",
		Long: `Reads the train and test CSV files (same columns, header row), fits the
propensity model when needed and both outcome models, estimates the CATE and
prints the impact of recommending treatment to the top fraction of each
partition.

Settings are read from a YAML file whose keys are the configuration keys
(col_treatment, uplift_model_params, enable_ipw, cv, ...). Unknown keys are
rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runE(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.train, "train", "", "train CSV file (required)")
	f.StringVar(&o.test, "test", "", "test CSV file (required)")
	f.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&o.output, "output", "o", "", "write the combined table with CATE and recommendation to this CSV file")
	f.StringVar(&o.upliftPlot, "uplift-plot", "", "save the test partition's uplift curve to this image file")
	f.StringVar(&o.cateHistogram, "cate-hist", "", "save a histogram of the test partition's CATE to this image file")
	f.Float64Var(&o.fractionTrain, "treatment-fraction-train", 0, "treatment budget of the train partition (default: observed fraction)")
	f.Float64Var(&o.fractionTest, "treatment-fraction-test", 0, "treatment budget of the test partition (default: observed fraction)")
	f.IntVarP(&o.verbose, "verbose", "v", 2, "0 silent, 1 warnings, 2 info, 3 debug")
	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func runE(cmd *cobra.Command, o *runOptions) error {
	settings, err := loadSettings(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") || settings["verbose"] == nil {
		settings["verbose"] = o.verbose
	}
	cfg, err := uplift.ConfigFromMap(settings)
	if err != nil {
		return err
	}

	enc := data.NewLabelEncoder()
	train, err := data.ReadCSVFile(o.train, enc)
	if err != nil {
		return fmt.Errorf("load %s: %w", o.train, err)
	}
	test, err := data.ReadCSVFile(o.test, enc)
	if err != nil {
		return fmt.Errorf("load %s: %w", o.test, err)
	}

	s, err := uplift.NewWithConfig(train, test, cfg)
	if err != nil {
		return err
	}
	_, testOut, err := s.EstimateCATE()
	if err != nil {
		return err
	}

	var opts []uplift.ImpactOption
	if cmd.Flags().Changed("treatment-fraction-train") {
		opts = append(opts, uplift.WithTreatmentFractionTrain(o.fractionTrain))
	}
	if cmd.Flags().Changed("treatment-fraction-test") {
		opts = append(opts, uplift.WithTreatmentFractionTest(o.fractionTest))
	}
	impact, err := s.EstimateRecommendationImpact(opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, s.Summary())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Overall (treated and untreated) samples without and with uplift model:")
	if err := impact.Write(out); err != nil {
		return err
	}

	if o.output != "" {
		if err := writeTable(o.output, s.Table()); err != nil {
			return err
		}
	}
	if o.upliftPlot != "" || o.cateHistogram != "" {
		if err := writePlots(o, cfg, testOut); err != nil {
			return err
		}
	}
	return nil
}

// loadSettings reads the YAML file at path into a map. An empty path gives an
// empty map.
func loadSettings(path string) (map[string]any, error) {
	settings := map[string]any{}
	if path == "" {
		return settings, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func printSummary(w io.Writer, summary []uplift.ObservedSummary) {
	fmt.Fprintln(w, "Observed data:")
	for _, s := range summary {
		fmt.Fprintf(w, "  %-5s samples=%d treatment fraction=%.3f outcome rate=%.3f observed uplift=%.3f\n",
			s.Partition, s.Samples, s.TreatmentFraction, s.OutcomeRate, s.ObservedUplift)
	}
}

func writeTable(path string, t *data.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := data.WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePlots(o *runOptions, cfg uplift.Config, test *data.Table) error {
	cate, err := test.Col(cfg.ColCATE)
	if err != nil {
		return err
	}
	if o.upliftPlot != "" {
		treatment, err := test.Col(cfg.ColTreatment)
		if err != nil {
			return err
		}
		outcome, err := test.Col(cfg.ColOutcome)
		if err != nil {
			return err
		}
		pts := report.UpliftCurve(cate, treatment, outcome)
		if err := report.PlotUpliftCurve(pts, "Uplift curve (test)", o.upliftPlot); err != nil {
			return err
		}
	}
	if o.cateHistogram != "" {
		if err := report.PlotCATEHistogram(cate, 30, "Estimated CATE (test)", o.cateHistogram); err != nil {
			return err
		}
	}
	return nil
}
