package export

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

func sampleRecords() []schema.Record {
	start, _ := timeparse.ParseClock("08:00")
	end, _ := timeparse.ParseClock("09:30")
	return []schema.Record{
		{
			ID:              "a1",
			Date:            time.Date(2025, 2, 6, 0, 0, 0, 0, time.UTC),
			Machine:         "M6",
			Shift:           schema.ShiftDay,
			Classification:  "Filler",
			JobType:         schema.JobBreakdown,
			Category:        schema.CategoryMechanical,
			ReportedProblem: "Reduced steam",
			WorkDescription: "Steam valve cleaned",
			Start:           &start,
			End:             &end,
			DurationMin:     90,
			Technician:      "Dante/Sameer",
			Status:          schema.StatusClosed,
		},
		{
			ID:          "a2",
			Date:        time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC),
			Machine:     "M1",
			Category:    schema.CategoryElectrical,
			DurationMin: 45,
			Technician:  "Gilbert",
			Status:      schema.StatusOpen,
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ToCSV(sampleRecords(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(schema.Columns) || rows[0][0] != "Date" || rows[0][1] != "Machine No" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "M6" || rows[1][10] != "01:30:00" {
		t.Fatalf("first row = %v", rows[1])
	}
	if rows[2][12] != schema.StatusOpen {
		t.Fatalf("status cell = %q", rows[2][12])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected header only, got %v (%v)", rows, err)
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ToJSON(sampleRecords(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Count   int `json:"count"`
		Records []struct {
			Machine     string  `json:"machine"`
			Duration    string  `json:"duration"`
			DurationMin float64 `json:"duration_minutes"`
			StartTime   string  `json:"start_time"`
			Status      string  `json:"status"`
		} `json:"records"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if out.Count != 2 || len(out.Records) != 2 {
		t.Fatalf("count = %d, records = %d", out.Count, len(out.Records))
	}
	if out.Records[0].Machine != "M6" || out.Records[0].Duration != "01:30:00" {
		t.Fatalf("first record = %+v", out.Records[0])
	}
	if out.Records[0].StartTime != "08:00" {
		t.Fatalf("start time = %q", out.Records[0].StartTime)
	}
	if out.Records[1].DurationMin != 45 || out.Records[1].Status != schema.StatusOpen {
		t.Fatalf("second record = %+v", out.Records[1])
	}
}

// ============================================================
// SQLite
// ============================================================

func TestToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	if err := ToSQLite(sampleRecords(), path); err != nil {
		t.Fatalf("ToSQLite: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM breakdowns`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var machine string
	var minutes float64
	err = db.QueryRow(`SELECT machine, duration_minutes FROM breakdowns WHERE id = 'a1'`).
		Scan(&machine, &minutes)
	if err != nil {
		t.Fatal(err)
	}
	if machine != "M6" || minutes != 90 {
		t.Fatalf("row a1 = %s, %v", machine, minutes)
	}
}

func TestToSQLiteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	if err := ToSQLite(sampleRecords(), path); err != nil {
		t.Fatal(err)
	}
	// Second export with fewer records must not accumulate rows.
	if err := ToSQLite(sampleRecords()[:1], path); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	db.QueryRow(`SELECT COUNT(*) FROM breakdowns`).Scan(&count)
	if count != 1 {
		t.Fatalf("expected 1 row after re-export, got %d", count)
	}
}
