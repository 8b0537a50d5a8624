package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &pipelineOptions{}

	rootCmd := &cobra.Command{
		Use:           "dashviz",
		Short:         "Inspect, aggregate, chart and export tabular files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bindPersistent(rootCmd)

	rootCmd.AddCommand(
		newInspectCmd(opts),
		newAggregateCmd(opts),
		newChartCmd(opts),
		newDashboardCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}
