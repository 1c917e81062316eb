package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/store"
)

type reportMode int

const (
	reportTechnician reportMode = iota
	reportHour
	reportMonth
	reportShift
	reportClassification
)

var reportModeNames = []string{"Technician", "Hour of Day", "Month", "Shift", "Classification"}

// chartBarLimit caps the bar count so technician charts stay readable;
// the table below the chart always shows every entry.
const chartBarLimit = 14

type reportsModel struct {
	store  *store.Store
	filter report.Filter
	width  int
	height int

	mode    reportMode
	entries []report.Entry

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		records := r.filter.Apply(r.store.All())
		var entries []report.Entry
		switch r.mode {
		case reportHour:
			entries = report.ByHour(records)
		case reportMonth:
			entries = report.ByMonth(records)
		case reportShift:
			entries = report.ByShift(records)
		case reportClassification:
			entries = report.ByClassification(records)
		default:
			entries = report.ByTechnician(records)
		}
		return reportsDataMsg{entries: entries}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.entries = msg.entries
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			n := reportMode(len(reportModeNames))
			r.mode = (r.mode + n - 1) % n
			return r, r.refresh()
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.Tab):
			r.mode = (r.mode + 1) % reportMode(len(reportModeNames))
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	entries := r.entries
	if len(entries) > chartBarLimit {
		entries = entries[:chartBarLimit]
	}

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData
	for _, e := range entries {
		bars = append(bars, barchart.BarData{
			Label: r.barLabel(e.Key),
			Values: []barchart.BarValue{{
				Name:  e.Key,
				Value: e.Minutes,
				Style: barStyle,
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

// barLabel compresses keys to fit under narrow bars.
func (r reportsModel) barLabel(key string) string {
	switch r.mode {
	case reportHour:
		return strings.TrimSuffix(key, ":00")
	case reportTechnician, reportClassification:
		return truncate(key, 6)
	default:
		return key
	}
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, name := range reportModeNames {
		if reportMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
	)

	chartView := r.chart.View()
	tableView := r.renderTable(w)
	nav := mutedStyle.Render("  ←/→ or tab: switch dimension")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	nonZero := 0
	for _, e := range r.entries {
		if e.Minutes > 0 || e.Jobs > 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		return mutedStyle.Render("  No downtime for the current filter")
	}

	var rows []string
	label := reportModeNames[r.mode]
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %12s %8s", label, "Downtime", "Jobs")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))

	shown := 0
	for _, e := range r.entries {
		if e.Minutes == 0 && e.Jobs == 0 && r.mode == reportTechnician {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-20s %12s %8d",
			truncate(e.Key, 20), formatMinutes(e.Minutes), e.Jobs))
		shown++
		if shown >= r.height-18 && shown < len(r.entries) {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(r.entries)-shown)))
			break
		}
	}

	return strings.Join(rows, "\n")
}
