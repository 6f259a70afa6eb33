package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "causallift",
		Short: "Two-model uplift modelling",
		Long: `causallift fits one outcome model per treatment arm, estimates the CATE of
every sample and simulates the outcome of treating the samples it ranks
highest, compared with the historical treatment.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newGenerateCommand())
	return cmd
}
