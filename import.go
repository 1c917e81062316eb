package main

import (
	"fmt"
	"strings"

	"github.com/kfarouk/breakdownr/internal/ingest"
	"github.com/spf13/cobra"
)

func newImportCmd(configPath *string) *cobra.Command {
	var dryRun, verbose bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a breakdown log (CSV) into the store",
		Long: "Reads a raw breakdown log, maps its columns onto the canonical schema\n" +
			"and appends the normalized records to the store. Malformed values become\n" +
			"defaults; only rows with an unparseable date are dropped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, *configPath, args[0], dryRun, verbose)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "normalize and report without writing to the store")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every row warning")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, file string, dryRun, verbose bool) error {
	cfg, s, err := loadEnv(configPath)
	if err != nil {
		return err
	}

	res, err := ingest.File(file, cfg.Parser())
	if err != nil {
		return err
	}

	if !dryRun {
		if err := s.AppendAll(res.Records); err != nil {
			return fmt.Errorf("append records: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(out, "%s %d of %d rows from %s\n", verb, len(res.Records), res.Summary.Rows, file)

	if res.Summary.Rejected > 0 {
		fmt.Fprintf(out, "  %d rows rejected (unparseable date)\n", res.Summary.Rejected)
	}
	if res.Summary.MalformedTimes > 0 {
		fmt.Fprintf(out, "  %d time values defaulted to zero\n", res.Summary.MalformedTimes)
	}
	if len(res.Summary.UnmappedColumns) > 0 {
		fmt.Fprintf(out, "  ignored columns: %s\n", strings.Join(res.Summary.UnmappedColumns, ", "))
	}
	if len(res.Summary.UnknownMachines) > 0 {
		fmt.Fprintf(out, "  machines outside M1-M18: %s\n", strings.Join(res.Summary.UnknownMachines, ", "))
	}
	if verbose {
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	} else if len(res.Warnings) > 0 {
		fmt.Fprintf(out, "  %d warnings (rerun with -v to list them)\n", len(res.Warnings))
	}
	return nil
}
