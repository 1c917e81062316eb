package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/kfarouk/breakdownr/internal/timeparse"
)

// Field names a canonical record field for column mapping.
type Field string

const (
	FieldDate            Field = "date"
	FieldMachine         Field = "machine_id"
	FieldShift           Field = "shift"
	FieldClassification  Field = "classification"
	FieldJobType         Field = "job_type"
	FieldCategory        Field = "category"
	FieldProblem         Field = "reported_problem"
	FieldWorkDescription Field = "work_description"
	FieldStart           Field = "start_time"
	FieldEnd             Field = "end_time"
	FieldDuration        Field = "duration_minutes"
	FieldTechnician      Field = "technician"
	FieldStatus          Field = "status"
)

// Warning reports a soft normalization issue. Issues never abort a row;
// the affected field is defaulted instead.
type Warning struct {
	Field  Field
	Raw    string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%q)", w.Field, w.Reason, w.Raw)
}

// fieldKeywords maps each canonical field to the substrings that claim an
// input column. Matching is case-insensitive contains. The table order is
// the tie-break order: for a given column the first field whose keyword
// matches claims it, so more specific fields come before the generic ones
// they overlap with (classification before machine, job type before
// category, duration before start/end).
var fieldKeywords = []struct {
	field    Field
	keywords []string
}{
	{FieldDate, []string{"date"}},
	{FieldClassification, []string{"classification", "area"}},
	{FieldJobType, []string{"job"}},
	{FieldCategory, []string{"category", "type"}},
	{FieldDuration, []string{"consumed", "duration", "downtime"}},
	{FieldStart, []string{"start"}},
	{FieldEnd, []string{"end", "finish"}},
	{FieldMachine, []string{"machine", "line"}},
	{FieldShift, []string{"shift", "aria"}},
	{FieldProblem, []string{"problem", "reported"}},
	{FieldWorkDescription, []string{"description", "work"}},
	{FieldTechnician, []string{"technician", "performed", "engineer"}},
	{FieldStatus, []string{"status"}},
}

// MapColumns resolves input column names to canonical fields. When two
// columns match the same field, the first in column order wins. The second
// return value lists the columns that matched nothing.
func MapColumns(cols []string) (map[string]Field, []string) {
	mapped := make(map[string]Field)
	claimed := make(map[Field]bool)
	var unmapped []string

	for _, col := range cols {
		low := strings.ToLower(strings.TrimSpace(col))
		matched := false
		for _, fk := range fieldKeywords {
			if claimed[fk.field] {
				continue
			}
			for _, kw := range fk.keywords {
				if strings.Contains(low, kw) {
					mapped[col] = fk.field
					claimed[fk.field] = true
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			unmapped = append(unmapped, col)
		}
	}
	return mapped, unmapped
}

// dateLayouts are the accepted input date formats, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// Normalize builds a complete canonical record from a raw row. cols fixes
// the column order (map iteration order is not stable); p resolves the
// ambiguous duration formats. Output always has every field present:
// unmatched or malformed values become defaults and are reported in the
// returned warnings, never as an error.
func Normalize(cols []string, row map[string]string, p timeparse.Parser) (Record, []Warning) {
	mapped, _ := MapColumns(cols)

	values := make(map[Field]string)
	for col, field := range mapped {
		values[field] = strings.TrimSpace(row[col])
	}

	var warns []Warning
	rec := Record{
		Machine:         NormalizeMachine(values[FieldMachine]),
		Shift:           canonicalShift(values[FieldShift]),
		Classification:  values[FieldClassification],
		JobType:         canonicalJobType(values[FieldJobType]),
		Category:        CanonicalCategory(values[FieldCategory]),
		ReportedProblem: values[FieldProblem],
		WorkDescription: values[FieldWorkDescription],
		Technician:      values[FieldTechnician],
		Status:          canonicalStatus(values[FieldStatus]),
	}

	if raw := values[FieldDate]; raw != "" {
		d, ok := parseDate(raw)
		if !ok {
			warns = append(warns, Warning{Field: FieldDate, Raw: raw, Reason: "unparseable date"})
		}
		rec.Date = d
	}

	if raw := values[FieldStart]; raw != "" {
		if c, ok := timeparse.ParseClock(raw); ok {
			rec.Start = &c
		} else {
			warns = append(warns, Warning{Field: FieldStart, Raw: raw, Reason: "unparseable time of day"})
		}
	}
	if raw := values[FieldEnd]; raw != "" {
		if c, ok := timeparse.ParseClock(raw); ok {
			rec.End = &c
		} else {
			warns = append(warns, Warning{Field: FieldEnd, Raw: raw, Reason: "unparseable time of day"})
		}
	}

	rawDur := values[FieldDuration]
	min, warn := p.Duration(rawDur)
	if warn != nil {
		warns = append(warns, Warning{Field: FieldDuration, Raw: warn.Raw, Reason: warn.Reason})
	}
	rec.DurationMin = min

	// Derive the duration from the start/end span only when the input
	// carried no duration value at all. An explicit zero stays zero, so
	// normalizing a serialized record is a fixpoint.
	if durationMissing(rawDur) && rec.Start != nil && rec.End != nil {
		rec.DurationMin = timeparse.DurationBetween(*rec.Start, *rec.End)
	}

	if rec.Classification == "" && rec.Machine != "" {
		rec.Classification = ClassificationFor(rec.Machine)
	}

	return rec, warns
}

// durationMissing reports whether the duration column held no value. The
// NaN spelling is what spreadsheet exports write for blank cells.
func durationMissing(raw string) bool {
	return raw == "" || strings.EqualFold(raw, "nan")
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func canonicalShift(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day", "d":
		return ShiftDay
	case "night", "n":
		return ShiftNight
	default:
		return strings.TrimSpace(raw)
	}
}

func canonicalJobType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "breakdown", "bd":
		return JobBreakdown
	case "corrective", "cm":
		return JobCorrective
	default:
		return strings.TrimSpace(raw)
	}
}

func canonicalStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case StatusOpen:
		return StatusOpen
	default:
		// Unspecified and unknown statuses default to closed; only an
		// explicit OPEN keeps a job pending.
		return StatusClosed
	}
}
