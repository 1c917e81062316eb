package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
	"github.com/spf13/cobra"
)

var reportDimensions = []string{"machine", "category", "technician", "hour", "month", "shift", "classification"}

func newReportCmd(configPath *string) *cobra.Command {
	var from, to, machine, category string

	cmd := &cobra.Command{
		Use:   "report [DIMENSION]",
		Short: "Print a downtime rollup",
		Long: "Prints total downtime grouped by the given dimension: machine, category,\n" +
			"technician, hour, month, shift or classification. Without a dimension,\n" +
			"prints the overall summary.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: reportDimensions,
		RunE: func(cmd *cobra.Command, args []string) error {
			dimension := ""
			if len(args) == 1 {
				dimension = args[0]
			}
			filter, err := buildReportFilter(from, to, machine, category)
			if err != nil {
				return err
			}
			return runReport(cmd, *configPath, dimension, filter)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "only records on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "only records on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&machine, "machine", "", "only records for this machine")
	cmd.Flags().StringVar(&category, "category", "", "only records in this breakdown category")
	return cmd
}

func buildReportFilter(from, to, machine, category string) (report.Filter, error) {
	var f report.Filter
	if from != "" {
		t, err := time.Parse(schema.DateLayout, from)
		if err != nil {
			return f, fmt.Errorf("bad --from date %q: %w", from, err)
		}
		f.DateFrom = t
	}
	if to != "" {
		t, err := time.Parse(schema.DateLayout, to)
		if err != nil {
			return f, fmt.Errorf("bad --to date %q: %w", to, err)
		}
		f.DateTo = t
	}
	if machine != "" {
		f.Machines = []string{schema.NormalizeMachine(machine)}
	}
	f.Category = schema.CanonicalCategory(category)
	return f, nil
}

func runReport(cmd *cobra.Command, configPath, dimension string, filter report.Filter) error {
	_, s, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	records := filter.Apply(s.All())
	out := cmd.OutOrStdout()

	if dimension == "" {
		sum := report.Summarize(records)
		fmt.Fprintf(out, "Records:        %d\n", sum.Events)
		fmt.Fprintf(out, "Total downtime: %s (%.1fh)\n", timeparse.FormatMinutes(sum.TotalMinutes), sum.TotalMinutes/60)
		if sum.WorstMachine != "" {
			fmt.Fprintf(out, "Worst machine:  %s\n", sum.WorstMachine)
		}
		if sum.WorstMonth != "" {
			fmt.Fprintf(out, "Worst month:    %s\n", sum.WorstMonth)
		}
		if sum.TopTechnician != "" {
			fmt.Fprintf(out, "Top technician: %s\n", sum.TopTechnician)
		}
		fmt.Fprintf(out, "Open jobs:      %d\n", sum.PendingCount)
		return nil
	}

	var entries []report.Entry
	switch dimension {
	case "machine":
		entries = report.ByMachine(records)
	case "category":
		entries = report.ByCategory(records)
	case "technician":
		entries = report.ByTechnician(records)
	case "hour":
		entries = report.ByHour(records)
	case "month":
		entries = report.ByMonth(records)
	case "shift":
		entries = report.ByShift(records)
	case "classification":
		entries = report.ByClassification(records)
	default:
		return fmt.Errorf("unknown dimension %q (want %s)", dimension, strings.Join(reportDimensions, ", "))
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDOWNTIME\tJOBS\n", strings.ToUpper(dimension))
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.Key, timeparse.FormatMinutes(e.Minutes), e.Jobs)
	}
	return w.Flush()
}
