package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/kfarouk/breakdownr/internal/report"
	"github.com/kfarouk/breakdownr/internal/schema"
)

// filterModel is the app-level filter modal. The resulting Filter applies
// to every view until cleared.
type filterModel struct {
	width  int
	height int

	active bool
	form   *huh.Form

	formFrom       *string
	formTo         *string
	formMachine    *string
	formCategory   *string
	formJobType    *string
	formShift      *string
	formTechnician *string
}

func newFilterModel() filterModel {
	from, to, machine := "", "", report.All
	category, jobType, shift := report.All, report.All, report.All
	tech := ""
	return filterModel{
		formFrom:       &from,
		formTo:         &to,
		formMachine:    &machine,
		formCategory:   &category,
		formJobType:    &jobType,
		formShift:      &shift,
		formTechnician: &tech,
	}
}

func (f *filterModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f filterModel) show(current report.Filter) (filterModel, tea.Cmd) {
	*f.formFrom = ""
	if !current.DateFrom.IsZero() {
		*f.formFrom = current.DateFrom.Format(schema.DateLayout)
	}
	*f.formTo = ""
	if !current.DateTo.IsZero() {
		*f.formTo = current.DateTo.Format(schema.DateLayout)
	}
	*f.formMachine = report.All
	if len(current.Machines) == 1 {
		*f.formMachine = current.Machines[0]
	}
	*f.formCategory = orAll(current.Category)
	*f.formJobType = orAll(current.JobType)
	*f.formShift = orAll(current.Shift)
	*f.formTechnician = current.Technician

	machineOptions := []huh.Option[string]{huh.NewOption(report.All, report.All)}
	for _, m := range schema.Machines() {
		machineOptions = append(machineOptions, huh.NewOption(m, m))
	}
	catOptions := []huh.Option[string]{huh.NewOption(report.All, report.All)}
	for _, c := range schema.FixedCategories() {
		catOptions = append(catOptions, huh.NewOption(c, c))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From date (YYYY-MM-DD, blank = any)").Value(f.formFrom),
			huh.NewInput().Title("To date (YYYY-MM-DD, blank = any)").Value(f.formTo),
			huh.NewSelect[string]().Title("Machine").Options(machineOptions...).Value(f.formMachine),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(f.formCategory),
			huh.NewSelect[string]().Title("Job Type").Options(
				huh.NewOption(report.All, report.All),
				huh.NewOption(schema.JobBreakdown, schema.JobBreakdown),
				huh.NewOption(schema.JobCorrective, schema.JobCorrective),
			).Value(f.formJobType),
			huh.NewSelect[string]().Title("Shift").Options(
				huh.NewOption(report.All, report.All),
				huh.NewOption(schema.ShiftDay, schema.ShiftDay),
				huh.NewOption(schema.ShiftNight, schema.ShiftNight),
			).Value(f.formShift),
			huh.NewInput().Title("Technician contains").Value(f.formTechnician),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.active = true
	return f, f.form.Init()
}

func orAll(v string) string {
	if v == "" {
		return report.All
	}
	return v
}

func (f filterModel) update(msg tea.Msg) (filterModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.active = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.active = false
		filter := f.buildFilter()
		return f, func() tea.Msg {
			return filterAppliedMsg{filter: filter}
		}
	}

	return f, cmd
}

func (f filterModel) buildFilter() report.Filter {
	var filter report.Filter
	if t, err := time.Parse(schema.DateLayout, *f.formFrom); err == nil {
		filter.DateFrom = t
	}
	if t, err := time.Parse(schema.DateLayout, *f.formTo); err == nil {
		filter.DateTo = t
	}
	if *f.formMachine != report.All && *f.formMachine != "" {
		filter.Machines = []string{*f.formMachine}
	}
	filter.Category = *f.formCategory
	filter.JobType = *f.formJobType
	filter.Shift = *f.formShift
	filter.Technician = *f.formTechnician
	return filter
}

func (f filterModel) view() string {
	title := titleStyle.Render("Filter Records")
	hint := mutedStyle.Render("Applies to all views. Leave everything open to clear.")
	content := lipgloss.JoinVertical(lipgloss.Left, title, hint, "", f.form.View())
	return activePanelStyle.Width(f.width - 4).Render(content)
}
