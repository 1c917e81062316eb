package main

import (
	"fmt"

	"github.com/kfarouk/breakdownr/internal/export"
	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/spf13/cobra"
)

func newExportCmd(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export OUT",
		Short: "Export the store to CSV, JSON or SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, *configPath, format, args[0])
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv, json or sqlite")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, format, out string) error {
	_, s, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	records := s.All()

	var writeFn func([]schema.Record, string) error
	switch format {
	case "csv":
		writeFn = export.ToCSV
	case "json":
		writeFn = export.ToJSON
	case "sqlite":
		writeFn = export.ToSQLite
	default:
		return fmt.Errorf("unknown format %q (want csv, json or sqlite)", format)
	}

	if err := writeFn(records, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), out)
	return nil
}
