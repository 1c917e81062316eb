// Package schema defines the canonical breakdown record and maps the
// heterogeneous column names found in uploaded logs onto it.
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/kfarouk/breakdownr/internal/timeparse"
)

// Shift values.
const (
	ShiftDay   = "Day"
	ShiftNight = "Night"
)

// Job types.
const (
	JobBreakdown  = "Breakdown"
	JobCorrective = "Corrective"
)

// Fixed breakdown categories. Anything else observed in the data passes
// through under its own name.
const (
	CategoryMechanical = "Mechanical"
	CategoryElectrical = "Electrical"
	CategoryAutomation = "Automation"
)

// Record statuses.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// DateLayout is the serialized form of record dates.
const DateLayout = "2006-01-02"

// Record is one reported downtime event with every canonical field
// present. Missing inputs become defaults, never absent fields.
type Record struct {
	ID              string
	Date            time.Time
	Machine         string
	Shift           string
	Classification  string
	JobType         string
	Category        string
	ReportedProblem string
	WorkDescription string
	Start           *timeparse.Clock
	End             *timeparse.Clock
	DurationMin     float64
	Technician      string
	Status          string
}

// Columns is the canonical persisted column order.
var Columns = []string{
	"Date",
	"Machine No",
	"Shift",
	"Machine Classification",
	"Job Type",
	"Breakdown Category",
	"Reported Problem",
	"Description of Work",
	"Start Time",
	"End Time",
	"Time Consumed",
	"Technician / Performed By",
	"Status",
}

// Machines returns the fixed machine domain M1..M18 in numeric order.
func Machines() []string {
	out := make([]string, 0, 18)
	for i := 1; i <= 18; i++ {
		out = append(out, fmt.Sprintf("M%d", i))
	}
	return out
}

// InMachineDomain reports whether id is one of M1..M18.
func InMachineDomain(id string) bool {
	for _, m := range Machines() {
		if m == id {
			return true
		}
	}
	return false
}

// NormalizeMachine canonicalizes a machine identifier: trimmed and
// upper-cased. Identifiers outside M1..M18 are kept as given (they are
// stored but excluded from fixed-domain rollups).
func NormalizeMachine(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// FixedCategories returns the three fixed categories in display order.
func FixedCategories() []string {
	return []string{CategoryMechanical, CategoryElectrical, CategoryAutomation}
}

// CanonicalCategory maps the shorthand spellings seen in logs (Mech, ELEC,
// auto, ...) onto the fixed category names. Unrecognized non-empty values
// pass through trimmed, so novel categories survive into rollups.
func CanonicalCategory(raw string) string {
	s := strings.TrimSpace(raw)
	switch low := strings.ToLower(s); {
	case low == "":
		return ""
	case strings.HasPrefix(low, "mech"):
		return CategoryMechanical
	case strings.HasPrefix(low, "elec"):
		return CategoryElectrical
	case strings.HasPrefix(low, "auto"):
		return CategoryAutomation
	default:
		return s
	}
}

// classifications is the default machine → classification lookup, used
// when the input carries no classification column. M1-M15 are the filling
// lines; the downline machines follow the plant layout.
var classifications = map[string]string{
	"M16": "Packer",
	"M17": "Stacker",
	"M18": "Palletizer",
}

// ClassificationFor returns the default classification for a machine, or
// "" for machines outside the known layout.
func ClassificationFor(machine string) string {
	if c, ok := classifications[machine]; ok {
		return c
	}
	if InMachineDomain(machine) {
		return "Filler"
	}
	return ""
}

// Technicians splits the technician field on "/" and returns the trimmed
// non-empty names. A record's downtime is credited to each named
// technician in full, not split between them.
func (r Record) Technicians() []string {
	var out []string
	for _, name := range strings.Split(r.Technician, "/") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Row serializes the record in canonical column order.
func (r Record) Row() []string {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format(DateLayout)
	}
	start, end := "", ""
	if r.Start != nil {
		start = r.Start.String()
	}
	if r.End != nil {
		end = r.End.String()
	}
	return []string{
		date,
		r.Machine,
		r.Shift,
		r.Classification,
		r.JobType,
		r.Category,
		r.ReportedProblem,
		r.WorkDescription,
		start,
		end,
		timeparse.FormatMinutes(r.DurationMin),
		r.Technician,
		r.Status,
	}
}

// RowMap returns the record as a column → value mapping, the shape raw
// ingestion rows arrive in.
func (r Record) RowMap() map[string]string {
	row := r.Row()
	m := make(map[string]string, len(Columns))
	for i, col := range Columns {
		m[col] = row[i]
	}
	return m
}
