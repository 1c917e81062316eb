// Package ingest runs raw uploaded rows through the schema normalizer and
// time parser, collecting soft warnings instead of aborting the batch.
// Only storage-level problems (an unreadable upload) surface as errors.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

// RowWarning ties a normalization warning to its source row (1-based,
// counting data rows, not the header).
type RowWarning struct {
	Row     int
	Warning schema.Warning
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d: %s", w.Row, w.Warning)
}

// Summary aggregates the soft issues of a batch for display after
// ingestion.
type Summary struct {
	Rows            int
	Rejected        int      // rows dropped for an unparseable date
	MalformedTimes  int      // duration or clock values defaulted to zero
	UnmappedColumns []string // input columns matching no canonical field
	UnknownMachines []string // distinct machine ids outside M1..M18
}

// Result is a processed batch: the normalized records plus everything the
// operator should be told about them.
type Result struct {
	Records  []schema.Record
	Warnings []RowWarning
	Summary  Summary
}

// Rows normalizes a batch of raw row mappings. cols fixes the column
// order; p resolves ambiguous duration formats. Malformed values become
// defaults and warnings; only rows whose date is present but unparseable
// are rejected.
func Rows(cols []string, rows []map[string]string, p timeparse.Parser) Result {
	res := Result{Summary: Summary{Rows: len(rows)}}
	_, res.Summary.UnmappedColumns = schema.MapColumns(cols)

	seenMachines := make(map[string]bool)
	for i, raw := range rows {
		rec, warns := schema.Normalize(cols, raw, p)

		rejected := false
		for _, w := range warns {
			res.Warnings = append(res.Warnings, RowWarning{Row: i + 1, Warning: w})
			switch w.Field {
			case schema.FieldDate:
				rejected = true
			case schema.FieldDuration, schema.FieldStart, schema.FieldEnd:
				res.Summary.MalformedTimes++
			}
		}
		if rejected {
			res.Summary.Rejected++
			continue
		}

		if rec.Machine != "" && !schema.InMachineDomain(rec.Machine) && !seenMachines[rec.Machine] {
			seenMachines[rec.Machine] = true
			res.Summary.UnknownMachines = append(res.Summary.UnknownMachines, rec.Machine)
			res.Warnings = append(res.Warnings, RowWarning{
				Row:     i + 1,
				Warning: schema.Warning{Field: schema.FieldMachine, Raw: rec.Machine, Reason: "machine outside M1-M18, excluded from machine rollups"},
			})
		}

		res.Records = append(res.Records, rec)
	}
	return res
}

// File ingests a CSV file whose first row is the header. A missing or
// unreadable file is an error; everything inside the file is handled by
// the soft-warning path of Rows.
func File(path string, p timeparse.Parser) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("read upload %s: %w", path, err)
	}
	if len(all) == 0 {
		return Result{}, nil
	}

	cols := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, row := range all[1:] {
		m := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		rows = append(rows, m)
	}
	return Rows(cols, rows, p), nil
}
