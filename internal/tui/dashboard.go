package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/store"
)

type dashboardModel struct {
	store  *store.Store
	filter report.Filter
	width  int
	height int

	summary report.Summary
	cells   []report.CrossEntry

	chart barchart.Model
}

func newDashboardModel(s *store.Store) dashboardModel {
	return dashboardModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		records := d.filter.Apply(d.store.All())
		return dashboardDataMsg{
			summary: report.Summarize(records),
			cells:   report.ByMachineCategory(records),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.summary = msg.summary
		d.cells = msg.cells
		d.buildChart()
		return d, nil
	}
	return d, nil
}

// buildChart renders the machine × category stacked bar over the full
// M1..M18 domain, one stacked bar per machine.
func (d *dashboardModel) buildChart() {
	chartWidth := d.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if d.height > 34 {
		chartHeight = 16
	}

	d.chart = barchart.New(chartWidth, chartHeight)

	// Cells arrive grouped by machine in domain order.
	byMachine := make(map[string][]report.CrossEntry)
	var machines []string
	for _, c := range d.cells {
		if _, ok := byMachine[c.Machine]; !ok {
			machines = append(machines, c.Machine)
		}
		byMachine[c.Machine] = append(byMachine[c.Machine], c)
	}

	catIndex := make(map[string]int)
	var bars []barchart.BarData
	for _, m := range machines {
		var values []barchart.BarValue
		for _, cell := range byMachine[m] {
			i, ok := catIndex[cell.Category]
			if !ok {
				i = len(catIndex)
				catIndex[cell.Category] = i
			}
			style := lipgloss.NewStyle().Foreground(categoryColor(cell.Category, i))
			values = append(values, barchart.BarValue{
				Name:  cell.Category,
				Value: cell.Minutes,
				Style: style,
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{
			Label:  strings.TrimPrefix(m, "M"),
			Values: values,
		})
	}

	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	cards := d.renderCards()
	chartPanel := d.renderChartPanel(w)

	return lipgloss.JoinVertical(lipgloss.Left, cards, chartPanel)
}

func (d dashboardModel) renderCards() string {
	s := d.summary

	dash := func(v string) string {
		if v == "" {
			return "—"
		}
		return v
	}

	cards := []struct {
		label string
		value string
	}{
		{"Total Downtime", formatHours(s.TotalMinutes)},
		{"Events", fmt.Sprintf("%d", s.Events)},
		{"Worst Machine", dash(s.WorstMachine)},
		{"Worst Month", dash(s.WorstMonth)},
		{"Top Technician", dash(s.TopTechnician)},
		{"Open Jobs", fmt.Sprintf("%d", s.PendingCount)},
	}

	var rendered []string
	for _, c := range cards {
		content := lipgloss.JoinVertical(lipgloss.Center,
			cardValueStyle.Render(c.value),
			cardLabelStyle.Render(c.label),
		)
		rendered = append(rendered, cardStyle.Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (d dashboardModel) renderChartPanel(w int) string {
	title := titleStyle.Render("Downtime by Machine")
	legend := d.renderLegend()
	note := mutedStyle.Render("  bars labeled 1-18 for machines M1-M18")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title, "", d.chart.View(), "", legend, note,
		),
	)
}

func (d dashboardModel) renderLegend() string {
	seen := make(map[string]bool)
	catIndex := make(map[string]int)
	var items []string
	for _, c := range d.cells {
		if seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		i := len(catIndex)
		catIndex[c.Category] = i
		dot := lipgloss.NewStyle().Foreground(categoryColor(c.Category, i)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, c.Category))
	}
	if len(items) == 0 {
		return mutedStyle.Render("  No downtime recorded for the current filter")
	}
	return "  " + strings.Join(items, "  ")
}
