package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/kfarouk/breakdownr/internal/schema"
)

// Entry is one key of a rollup: total downtime minutes and job count.
type Entry struct {
	Key     string
	Minutes float64
	Jobs    int
}

// CrossEntry is one (machine, category) cell of the two-dimensional
// rollup.
type CrossEntry struct {
	Machine  string
	Category string
	Minutes  float64
}

// monthNames in calendar order.
var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ByMachine sums downtime per machine over the fixed M1..M18 domain in
// numeric order, zero-filled. Records for machines outside the domain are
// excluded; they are still stored and counted in Summarize totals.
func ByMachine(records []schema.Record) []Entry {
	idx := make(map[string]int)
	out := make([]Entry, 0, 18)
	for i, m := range schema.Machines() {
		idx[m] = i
		out = append(out, Entry{Key: m})
	}
	for _, r := range records {
		if i, ok := idx[r.Machine]; ok {
			out[i].Minutes += r.DurationMin
			out[i].Jobs++
		}
	}
	return out
}

// ByCategory sums downtime per category: the three fixed categories first
// (always present, zero-filled), then any other observed category in first
// seen order.
func ByCategory(records []schema.Record) []Entry {
	idx := make(map[string]int)
	var out []Entry
	add := func(key string) int {
		idx[key] = len(out)
		out = append(out, Entry{Key: key})
		return idx[key]
	}
	for _, c := range schema.FixedCategories() {
		add(c)
	}
	for _, r := range records {
		if r.Category == "" {
			continue
		}
		i, ok := idx[r.Category]
		if !ok {
			i = add(r.Category)
		}
		out[i].Minutes += r.DurationMin
		out[i].Jobs++
	}
	return out
}

// ByShift sums downtime per shift: Day and Night always present,
// zero-filled, then any other observed shift value in first-seen order.
func ByShift(records []schema.Record) []Entry {
	idx := make(map[string]int)
	var out []Entry
	add := func(key string) int {
		idx[key] = len(out)
		out = append(out, Entry{Key: key})
		return idx[key]
	}
	add(schema.ShiftDay)
	add(schema.ShiftNight)
	for _, r := range records {
		if r.Shift == "" {
			continue
		}
		i, ok := idx[r.Shift]
		if !ok {
			i = add(r.Shift)
		}
		out[i].Minutes += r.DurationMin
		out[i].Jobs++
	}
	return out
}

// ByClassification sums downtime per machine classification
// (Filler/Packer/...). The classification universe is open, so there is no
// zero-fill; entries come out sorted by minutes descending, ties keeping
// first-seen order.
func ByClassification(records []schema.Record) []Entry {
	idx := make(map[string]int)
	var out []Entry
	for _, r := range records {
		if r.Classification == "" {
			continue
		}
		i, ok := idx[r.Classification]
		if !ok {
			i = len(out)
			idx[r.Classification] = i
			out = append(out, Entry{Key: r.Classification})
		}
		out[i].Minutes += r.DurationMin
		out[i].Jobs++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out
}

// ByTechnician sums downtime per technician. Multi-name fields split on
// "/" credit every named technician with the full duration. There is no
// fixed technician domain, so there is no zero-fill; entries come out
// sorted by minutes descending, ties keeping first-seen order.
func ByTechnician(records []schema.Record) []Entry {
	idx := make(map[string]int)
	var out []Entry
	for _, r := range records {
		for _, name := range r.Technicians() {
			i, ok := idx[name]
			if !ok {
				i = len(out)
				idx[name] = i
				out = append(out, Entry{Key: name})
			}
			out[i].Minutes += r.DurationMin
			out[i].Jobs++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out
}

// ByHour sums downtime per start-time hour over the fixed 0..23 domain,
// zero-filled, keyed "00:00".."23:00". Records without a start time do not
// contribute.
func ByHour(records []schema.Record) []Entry {
	out := make([]Entry, 24)
	for h := range out {
		out[h].Key = fmt.Sprintf("%02d:00", h)
	}
	for _, r := range records {
		if r.Start == nil {
			continue
		}
		out[r.Start.Hour].Minutes += r.DurationMin
		out[r.Start.Hour].Jobs++
	}
	return out
}

// ByMonth sums downtime per calendar month Jan..Dec, zero-filled. Records
// without a date do not contribute.
func ByMonth(records []schema.Record) []Entry {
	out := make([]Entry, 12)
	for i, name := range monthNames {
		out[i].Key = name
	}
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		m := int(r.Date.Month()) - 1
		out[m].Minutes += r.DurationMin
		out[m].Jobs++
	}
	return out
}

// ByMachineCategory produces the full cross product of the fixed machine
// domain and the observed category domain, zero-filled — the shape a
// stacked bar chart renders directly. Cells come out grouped by machine in
// numeric order, categories in ByCategory order restricted to those
// observed.
func ByMachineCategory(records []schema.Record) []CrossEntry {
	var cats []string
	for _, e := range ByCategory(records) {
		if e.Jobs > 0 {
			cats = append(cats, e.Key)
		}
	}

	sums := make(map[string]map[string]float64)
	for _, r := range records {
		if !schema.InMachineDomain(r.Machine) || r.Category == "" {
			continue
		}
		if sums[r.Machine] == nil {
			sums[r.Machine] = make(map[string]float64)
		}
		sums[r.Machine][r.Category] += r.DurationMin
	}

	var out []CrossEntry
	for _, m := range schema.Machines() {
		for _, c := range cats {
			out = append(out, CrossEntry{Machine: m, Category: c, Minutes: sums[m][c]})
		}
	}
	return out
}

// Summary is the KPI card block over a (filtered) record set.
type Summary struct {
	TotalMinutes  float64
	Events        int
	WorstMachine  string
	WorstMonth    string
	TopTechnician string
	PendingCount  int
}

// Summarize computes the derived statistics over records. TotalMinutes
// covers every record, including machines outside the fixed domain.
// Argmax ties resolve to the first key in rollup order; with no data the
// worst/top fields are empty.
func Summarize(records []schema.Record) Summary {
	s := Summary{Events: len(records)}
	for _, r := range records {
		s.TotalMinutes += r.DurationMin
		if r.Status == schema.StatusOpen {
			s.PendingCount++
		}
	}
	s.WorstMachine = argmax(ByMachine(records))
	s.WorstMonth = argmax(ByMonth(records))
	if techs := ByTechnician(records); len(techs) > 0 && techs[0].Minutes > 0 {
		s.TopTechnician = techs[0].Key
	}
	return s
}

func argmax(entries []Entry) string {
	best := ""
	bestVal := 0.0
	for _, e := range entries {
		if e.Minutes > bestVal {
			best = e.Key
			bestVal = e.Minutes
		}
	}
	return best
}

// MonthKey returns the rollup key for a date's month.
func MonthKey(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return monthNames[int(d.Month())-1]
}
