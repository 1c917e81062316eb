package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kfarouk/breakdownr/internal/config"
	"github.com/kfarouk/breakdownr/internal/export"
	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/store"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	cfg    config.Config
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	filter report.Filter

	dashboard  dashboardModel
	records    recordsModel
	reports    reportsModel
	filterForm filterModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, cfg config.Config) App {
	h := help.New()
	h.ShowAll = false

	// Manual entry types durations as minutes or HH:MM:SS, never as
	// spreadsheet day fractions.
	entryParser := timeparse.Parser{
		TwoPart: cfg.Parser().TwoPart,
		Numeric: timeparse.Minutes,
	}

	return App{
		store:      s,
		cfg:        cfg,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(s),
		records:    newRecordsModel(s, entryParser),
		reports:    newReportsModel(s),
		filterForm: newFilterModel(),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.dashboard.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.records.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.filterForm.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.filterForm.active {
			var cmd tea.Cmd
			a.filterForm, cmd = a.filterForm.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A form captures all input until submitted or cancelled.
		if a.activeView == viewRecords && a.records.formActive {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Filter):
			var cmd tea.Cmd
			a.filterForm, cmd = a.filterForm.show(a.filter)
			return a, cmd
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewRecords
			return a, a.records.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab):
			if a.activeView == viewReports {
				// Reports uses tab to cycle its own dimensions.
				return a.updateActiveView(msg)
			}
			a.activeView = (a.activeView + 1) % 3
			return a, a.refreshCurrentView()
		}

	case filterAppliedMsg:
		a.filter = msg.filter
		a.dashboard.filter = msg.filter
		a.records.filter = msg.filter
		a.reports.filter = msg.filter
		if msg.filter.IsZero() {
			a.status = "Filter cleared"
		} else {
			a.status = "Filter applied"
		}
		return a, tea.Batch(
			a.dashboard.loadData(),
			a.records.refresh(),
			a.reports.refresh(),
		)

	case recordSavedMsg:
		if msg.created {
			a.status = "Record added"
		} else {
			a.status = "Record updated"
		}
		return a, tea.Batch(a.records.refresh(), a.dashboard.loadData(), a.reports.refresh())

	case recordDeletedMsg:
		a.status = "Record deleted"
		return a, tea.Batch(a.records.refresh(), a.dashboard.loadData(), a.reports.refresh())

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	// The filter form needs every remaining message, not just key input:
	// huh drives its cursor and groups through its own commands.
	if a.filterForm.active {
		var cmd tea.Cmd
		a.filterForm, cmd = a.filterForm.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewRecords:
		a.records, cmd = a.records.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	}
	return a, cmd
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewRecords:
		return a.records.refresh()
	case viewReports:
		return a.reports.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewRecords:
		content = a.records.view()
	case viewReports:
		content = a.reports.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.filterForm.active {
		content = a.filterForm.view()
	} else if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("breakdownr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	filterInfo := ""
	if !a.filter.IsZero() {
		filterInfo = warningStyle.Render(" ◆ filtered")
	}

	left := footerStyle.Render(helpView)
	right := filterInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON", "SQLite"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	if !a.filter.IsZero() {
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("  Current filter applies to the export"))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	filter := a.filter
	exportDir := a.cfg.ExportDir

	return func() tea.Msg {
		records := filter.Apply(a.store.All())

		dir := exportDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		dateStr := time.Now().Format("2006-01-02")

		var path string
		var err error
		switch format {
		case 1:
			path = filepath.Join(dir, fmt.Sprintf("breakdowns-%s.json", dateStr))
			err = export.ToJSON(records, path)
		case 2:
			path = filepath.Join(dir, fmt.Sprintf("breakdowns-%s.db", dateStr))
			err = export.ToSQLite(records, path)
		default:
			path = filepath.Join(dir, fmt.Sprintf("breakdowns-%s.csv", dateStr))
			err = export.ToCSV(records, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		return exportDoneMsg{path: path}
	}
}
