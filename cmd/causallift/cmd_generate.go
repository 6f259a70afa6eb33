package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evelynqian/causallift/pkg/synth"
)

func newGenerateCommand() *cobra.Command {
	var (
		samples             int
		seed                int64
		testRatio           float64
		effect, confounding float64
		trainOut, testOut   string
	)
	cmd := &cobra.Command{
		Use:   "generate --train-out train.csv --test-out test.csv",
		Short: "Write a synthetic train/test pair with a known treatment effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := synth.NewGenerator(
				synth.WithSamples(samples),
				synth.WithSeed(seed),
				synth.WithEffect(effect),
				synth.WithConfounding(confounding),
			)
			train, test, err := g.TrainTest(testRatio)
			if err != nil {
				return err
			}
			if err := writeTable(trainOut, train); err != nil {
				return err
			}
			if err := writeTable(testOut, test); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d train rows to %s and %d test rows to %s\n",
				train.Len(), trainOut, test.Len(), testOut)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&samples, "samples", "n", 2000, "number of samples")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.Float64Var(&testRatio, "test-ratio", 0.5, "fraction of samples in the test file")
	f.Float64Var(&effect, "effect", 0.5, "treatment effect on the logit scale")
	f.Float64Var(&confounding, "confounding", 1, "dependence of treatment assignment on x1")
	f.StringVar(&trainOut, "train-out", "train.csv", "train CSV output")
	f.StringVar(&testOut, "test-out", "test.csv", "test CSV output")
	return cmd
}
