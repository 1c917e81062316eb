package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Count      int          `json:"count"`
	Records    []jsonRecord `json:"records"`
}

type jsonRecord struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	Machine         string  `json:"machine"`
	Shift           string  `json:"shift,omitempty"`
	Classification  string  `json:"classification,omitempty"`
	JobType         string  `json:"job_type,omitempty"`
	Category        string  `json:"category,omitempty"`
	ReportedProblem string  `json:"reported_problem,omitempty"`
	WorkDescription string  `json:"work_description,omitempty"`
	StartTime       string  `json:"start_time,omitempty"`
	EndTime         string  `json:"end_time,omitempty"`
	DurationMin     float64 `json:"duration_minutes"`
	Duration        string  `json:"duration"`
	Technician      string  `json:"technician,omitempty"`
	Status          string  `json:"status"`
}

// ToJSON writes records to path as an indented JSON document.
func ToJSON(records []schema.Record, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}

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
		out.Records = append(out.Records, jsonRecord{
			ID:              rec.ID,
			Date:            date,
			Machine:         rec.Machine,
			Shift:           rec.Shift,
			Classification:  rec.Classification,
			JobType:         rec.JobType,
			Category:        rec.Category,
			ReportedProblem: rec.ReportedProblem,
			WorkDescription: rec.WorkDescription,
			StartTime:       start,
			EndTime:         end,
			DurationMin:     rec.DurationMin,
			Duration:        timeparse.FormatMinutes(rec.DurationMin),
			Technician:      rec.Technician,
			Status:          rec.Status,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
