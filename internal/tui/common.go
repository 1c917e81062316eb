package tui

import (
	"fmt"

	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewRecords
	viewReports
)

var viewNames = []string{"Dashboard", "Records", "Reports"}

// --- Messages ---

type dashboardDataMsg struct {
	summary report.Summary
	cells   []report.CrossEntry
}

type recordsDataMsg struct {
	records []schema.Record
}

type reportsDataMsg struct {
	entries []report.Entry
}

type recordSavedMsg struct {
	created bool
}

type recordDeletedMsg struct{}

type filterAppliedMsg struct {
	filter report.Filter
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatMinutes renders a downtime figure as HH:MM:SS.
func formatMinutes(min float64) string {
	return timeparse.FormatMinutes(min)
}

// formatHours renders a downtime figure as a compact hour count.
func formatHours(min float64) string {
	return fmt.Sprintf("%.1fh", min/60)
}
