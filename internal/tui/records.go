package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/store"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

type recordsModel struct {
	store  *store.Store
	parser timeparse.Parser
	filter report.Filter
	width  int
	height int

	records []schema.Record
	cursor  int
	scroll  int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formDate       *string
	formMachine    *string
	formShift      *string
	formJobType    *string
	formCategory   *string
	formProblem    *string
	formWork       *string
	formStart      *string
	formEnd        *string
	formDuration   *string
	formTechnician *string
	formStatus     *string

	editingID string
}

func newRecordsModel(s *store.Store, p timeparse.Parser) recordsModel {
	date, machine, shift := "", "M1", schema.ShiftDay
	jobType, category := schema.JobBreakdown, schema.CategoryMechanical
	problem, work, start, end, duration, tech := "", "", "", "", "", ""
	status := schema.StatusClosed
	return recordsModel{
		store:          s,
		parser:         p,
		formDate:       &date,
		formMachine:    &machine,
		formShift:      &shift,
		formJobType:    &jobType,
		formCategory:   &category,
		formProblem:    &problem,
		formWork:       &work,
		formStart:      &start,
		formEnd:        &end,
		formDuration:   &duration,
		formTechnician: &tech,
		formStatus:     &status,
	}
}

func (r *recordsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r recordsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return recordsDataMsg{records: r.filter.Apply(r.store.All())}
	}
}

func (r recordsModel) update(msg tea.Msg) (recordsModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case recordsDataMsg:
		r.records = msg.records
		if r.cursor >= len(r.records) {
			r.cursor = max(0, len(r.records)-1)
		}
		r.clampScroll()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
			r.clampScroll()
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.records)-1 {
				r.cursor++
			}
			r.clampScroll()
		case key.Matches(msg, keys.New):
			return r.showRecordForm("new")
		case key.Matches(msg, keys.Edit):
			if len(r.records) > 0 {
				return r.showRecordForm("edit")
			}
		case key.Matches(msg, keys.Delete):
			if len(r.records) > 0 {
				id := r.records[r.cursor].ID
				return r, func() tea.Msg {
					if err := r.store.Delete(id); err != nil {
						return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
					}
					return recordDeletedMsg{}
				}
			}
		}
	}
	return r, nil
}

// pageSize is the number of table rows that fit the current height.
func (r recordsModel) pageSize() int {
	n := r.height - 10
	if n < 5 {
		n = 5
	}
	return n
}

func (r *recordsModel) clampScroll() {
	page := r.pageSize()
	if r.cursor < r.scroll {
		r.scroll = r.cursor
	}
	if r.cursor >= r.scroll+page {
		r.scroll = r.cursor - page + 1
	}
	if r.scroll < 0 {
		r.scroll = 0
	}
}

func (r recordsModel) showRecordForm(formType string) (recordsModel, tea.Cmd) {
	if formType == "edit" {
		rec := r.records[r.cursor]
		r.editingID = rec.ID
		*r.formDate = ""
		if !rec.Date.IsZero() {
			*r.formDate = rec.Date.Format(schema.DateLayout)
		}
		*r.formMachine = rec.Machine
		*r.formShift = rec.Shift
		*r.formJobType = rec.JobType
		*r.formCategory = rec.Category
		*r.formProblem = rec.ReportedProblem
		*r.formWork = rec.WorkDescription
		*r.formStart, *r.formEnd = "", ""
		if rec.Start != nil {
			*r.formStart = rec.Start.String()
		}
		if rec.End != nil {
			*r.formEnd = rec.End.String()
		}
		*r.formDuration = timeparse.FormatMinutes(rec.DurationMin)
		*r.formTechnician = rec.Technician
		*r.formStatus = rec.Status
	} else {
		*r.formDate = time.Now().Format(schema.DateLayout)
		*r.formMachine = "M1"
		*r.formShift = schema.ShiftDay
		*r.formJobType = schema.JobBreakdown
		*r.formCategory = schema.CategoryMechanical
		*r.formProblem = ""
		*r.formWork = ""
		*r.formStart = ""
		*r.formEnd = ""
		*r.formDuration = ""
		*r.formTechnician = ""
		*r.formStatus = schema.StatusClosed
	}
	r.formType = formType

	machineOptions := make([]huh.Option[string], 0, 18)
	for _, m := range schema.Machines() {
		machineOptions = append(machineOptions, huh.NewOption(m, m))
	}
	if !schema.InMachineDomain(*r.formMachine) && *r.formMachine != "" {
		machineOptions = append(machineOptions, huh.NewOption(*r.formMachine, *r.formMachine))
	}
	catOptions := make([]huh.Option[string], 0, 3)
	for _, c := range schema.FixedCategories() {
		catOptions = append(catOptions, huh.NewOption(c, c))
	}
	if *r.formCategory != "" && schema.CanonicalCategory(*r.formCategory) == *r.formCategory {
		known := false
		for _, c := range schema.FixedCategories() {
			if c == *r.formCategory {
				known = true
			}
		}
		if !known {
			catOptions = append(catOptions, huh.NewOption(*r.formCategory, *r.formCategory))
		}
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(r.formDate),
			huh.NewSelect[string]().Title("Machine").Options(machineOptions...).Value(r.formMachine),
			huh.NewSelect[string]().Title("Shift").Options(
				huh.NewOption(schema.ShiftDay, schema.ShiftDay),
				huh.NewOption(schema.ShiftNight, schema.ShiftNight),
			).Value(r.formShift),
			huh.NewSelect[string]().Title("Job Type").Options(
				huh.NewOption(schema.JobBreakdown, schema.JobBreakdown),
				huh.NewOption(schema.JobCorrective, schema.JobCorrective),
			).Value(r.formJobType),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(r.formCategory),
		),
		huh.NewGroup(
			huh.NewInput().Title("Reported Problem").Value(r.formProblem),
			huh.NewInput().Title("Description of Work").Value(r.formWork),
			huh.NewInput().Title("Start Time (HH:MM)").Value(r.formStart),
			huh.NewInput().Title("End Time (HH:MM)").Value(r.formEnd),
			huh.NewInput().Title("Time Consumed (blank = from start/end)").Value(r.formDuration),
			huh.NewInput().Title("Technician(s), / separated").Value(r.formTechnician),
			huh.NewSelect[string]().Title("Status").Options(
				huh.NewOption(schema.StatusClosed, schema.StatusClosed),
				huh.NewOption(schema.StatusOpen, schema.StatusOpen),
			).Value(r.formStatus),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r recordsModel) updateForm(msg tea.Msg) (recordsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		return r, r.saveForm()
	}

	return r, cmd
}

// saveForm routes the raw form values through the same normalization an
// uploaded row gets, so manual entry and ingestion agree on defaults.
func (r recordsModel) saveForm() tea.Cmd {
	row := map[string]string{
		"Date":                      *r.formDate,
		"Machine No":                *r.formMachine,
		"Shift":                     *r.formShift,
		"Machine Classification":    "",
		"Job Type":                  *r.formJobType,
		"Breakdown Category":        *r.formCategory,
		"Reported Problem":          *r.formProblem,
		"Description of Work":       *r.formWork,
		"Start Time":                *r.formStart,
		"End Time":                  *r.formEnd,
		"Time Consumed":             *r.formDuration,
		"Technician / Performed By": *r.formTechnician,
		"Status":                    *r.formStatus,
	}
	formType, editingID := r.formType, r.editingID

	return func() tea.Msg {
		rec, _ := schema.Normalize(schema.Columns, row, r.parser)
		if formType == "edit" {
			if err := r.store.Update(editingID, rec); err != nil {
				return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
			}
			return recordSavedMsg{created: false}
		}
		if _, err := r.store.Append(rec); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return recordSavedMsg{created: true}
	}
}

func (r recordsModel) view() string {
	if r.formActive && r.form != nil {
		title := titleStyle.Render("New Record")
		if r.formType == "edit" {
			title = titleStyle.Render("Edit Record")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", r.form.View())
		return panelStyle.Width(r.width - 4).Render(content)
	}
	return r.renderTable()
}

func (r recordsModel) renderTable() string {
	w := r.width - 4
	title := titleStyle.Render(fmt.Sprintf("Records (%d)", len(r.records)))

	if len(r.records) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No records. Press n to add one, or import a breakdown log."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-12s %-5s %-11s %-9s %-16s %-7s %s",
		"Date", "M/C", "Category", "Duration", "Technician", "Status", "Problem"))
	rows = append(rows, header)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 78))))

	page := r.pageSize()
	end := min(r.scroll+page, len(r.records))
	for i := r.scroll; i < end; i++ {
		rec := r.records[i]
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		date := "—"
		if !rec.Date.IsZero() {
			date = rec.Date.Format(schema.DateLayout)
		}
		status := rec.Status
		row := fmt.Sprintf("%s%-12s %-5s %-11s %-9s %-16s %-7s %s",
			cursor, date, rec.Machine, truncate(rec.Category, 11),
			formatMinutes(rec.DurationMin), truncate(rec.Technician, 16),
			status, truncate(rec.ReportedProblem, max(10, w-78)))
		if rec.Status == schema.StatusOpen && i != r.cursor {
			rows = append(rows, warningStyle.Render(row))
		} else {
			rows = append(rows, style.Render(row))
		}
	}

	if len(r.records) > page {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d-%d of %d", r.scroll+1, end, len(r.records))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  f: filter"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return s[:n-1] + "…"
}
