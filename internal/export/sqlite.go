package export

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/kfarouk/breakdownr/internal/schema"

	_ "modernc.org/sqlite"
)

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS breakdowns (
	id               TEXT PRIMARY KEY,
	date             TEXT NOT NULL DEFAULT '',
	machine          TEXT NOT NULL DEFAULT '',
	shift            TEXT NOT NULL DEFAULT '',
	classification   TEXT NOT NULL DEFAULT '',
	job_type         TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	reported_problem TEXT NOT NULL DEFAULT '',
	work_description TEXT NOT NULL DEFAULT '',
	start_time       TEXT NOT NULL DEFAULT '',
	end_time         TEXT NOT NULL DEFAULT '',
	duration_minutes REAL NOT NULL DEFAULT 0,
	technician       TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'CLOSED'
);

CREATE INDEX IF NOT EXISTS idx_breakdowns_machine ON breakdowns(machine);
CREATE INDEX IF NOT EXISTS idx_breakdowns_date    ON breakdowns(date);
`

// ToSQLite writes records into a fresh SQLite database at path, one row
// per breakdown, for handoff to tools that want a queryable snapshot
// rather than the flat CSV. An existing file at path is replaced.
func ToSQLite(records []schema.Record, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("replace sqlite file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite export: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteDDL); err != nil {
		return fmt.Errorf("create breakdowns table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin export transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO breakdowns (
		id, date, machine, shift, classification, job_type, category,
		reported_problem, work_description, start_time, end_time,
		duration_minutes, technician, status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		date, start, end := "", "", ""
		if !rec.Date.IsZero() {
			date = rec.Date.Format(schema.DateLayout)
		}
		if rec.Start != nil {
			start = rec.Start.String()
		}
		if rec.End != nil {
			end = rec.End.String()
		}
		if _, err := stmt.Exec(
			rec.ID, date, rec.Machine, rec.Shift, rec.Classification,
			rec.JobType, rec.Category, rec.ReportedProblem, rec.WorkDescription,
			start, end, rec.DurationMin, rec.Technician, rec.Status,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}
