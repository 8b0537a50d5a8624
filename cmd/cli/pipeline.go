package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dashviz/adapters/datareadiness/coercer"
	"dashviz/internal"
	"dashviz/internal/dataset"
	"dashviz/internal/session"
)

// pipelineOptions are the flags shared by every command: how to load the
// file and which rows to keep.
type pipelineOptions struct {
	numericThreshold  float64
	temporalThreshold float64
	filters           []string
	ranges            []string
	verbose           bool
}

func (o *pipelineOptions) bindPersistent(cmd *cobra.Command) {
	defaults := coercer.DefaultCoercionConfig()
	flags := cmd.PersistentFlags()
	flags.Float64Var(&o.numericThreshold, "numeric-threshold", defaults.NumericThreshold,
		"Share of values that must parse as numbers to type a column numeric")
	flags.Float64Var(&o.temporalThreshold, "temporal-threshold", defaults.TemporalThreshold,
		"Share of values that must parse as dates to type a column temporal")
	flags.StringArrayVar(&o.filters, "filter", nil, `Keep rows whose column is one of the values, e.g. "region=North,South"`)
	flags.StringArrayVar(&o.ranges, "range", nil, `Keep rows whose column lies in a closed range, e.g. "amount=10:250"`)
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log pipeline steps to stderr")
}

// open loads path into a dashboard session and applies the filter flags.
func (o *pipelineOptions) open(path string) (*session.Session, error) {
	level := internal.LogLevelWarn
	if o.verbose {
		level = internal.LogLevelDebug
	}
	internal.DefaultLogger.SetLevel(level)

	filters, err := parseFilterFlags(o.filters, o.ranges)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	config := coercer.DefaultCoercionConfig()
	config.NumericThreshold = o.numericThreshold
	config.TemporalThreshold = o.temporalThreshold
	table, record, err := dataset.NewLoader(config).LoadDataset(path, data)
	if err != nil {
		return nil, err
	}

	s := session.New(table, record, session.DefaultColumns)
	if len(filters) > 0 {
		s.ApplyFilters(filters)
		s.AutoConfigure()
	}
	return s, nil
}

// parseFilterFlags turns "col=a,b" membership flags and "col=min:max" range
// flags into a filter set. Later flags for the same column win.
func parseFilterFlags(members, ranges []string) (dataset.FilterSet, error) {
	filters := make(dataset.FilterSet)
	for _, f := range members {
		col, values, ok := strings.Cut(f, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --filter %q: want column=value[,value...]", f)
		}
		filters[col] = dataset.In(strings.Split(values, ",")...)
	}
	for _, r := range ranges {
		col, bounds, ok := strings.Cut(r, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --range %q: want column=min:max", r)
		}
		lo, hi, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --range %q: want column=min:max", r)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --range %q: bad minimum: %w", r, err)
		}
		max, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --range %q: bad maximum: %w", r, err)
		}
		filters[col] = dataset.Between(min, max)
	}
	return filters, nil
}

// output opens path for writing, or returns stdout for "" and "-".
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
