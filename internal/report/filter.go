// Package report filters breakdown records and computes the downtime
// rollups behind every dashboard view. All functions are pure: they take a
// record slice (typically the store's current set) and never mutate it.
package report

import (
	"strings"
	"time"

	"github.com/kfarouk/breakdownr/internal/schema"
)

// All is the wildcard value for single-choice predicates.
const All = "All"

// Filter is a conjunction of optional predicates. The zero Filter matches
// every record.
type Filter struct {
	DateFrom   time.Time // zero = unbounded
	DateTo     time.Time // inclusive; zero = unbounded
	Machines   []string  // empty = all machines
	Category   string    // "" or "All" = all categories
	Technician string    // case-insensitive substring; "" = all
	JobType    string    // "" or "All" = all job types
	Shift      string    // "" or "All" = all shifts
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.DateFrom.IsZero() && f.DateTo.IsZero() && len(f.Machines) == 0 &&
		isAll(f.Category) && f.Technician == "" && isAll(f.JobType) && isAll(f.Shift)
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Apply returns the records matching every set predicate, in input order.
func (f Filter) Apply(records []schema.Record) []schema.Record {
	if f.IsZero() {
		out := make([]schema.Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]schema.Record, 0, len(records))
	for _, r := range records {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) matches(r schema.Record) bool {
	if !f.DateFrom.IsZero() && r.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && r.Date.After(f.DateTo) {
		return false
	}
	if len(f.Machines) > 0 {
		found := false
		for _, m := range f.Machines {
			if r.Machine == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !isAll(f.Category) && r.Category != f.Category {
		return false
	}
	if !isAll(f.JobType) && r.JobType != f.JobType {
		return false
	}
	if !isAll(f.Shift) && r.Shift != f.Shift {
		return false
	}
	if f.Technician != "" &&
		!strings.Contains(strings.ToLower(r.Technician), strings.ToLower(f.Technician)) {
		return false
	}
	return true
}
