package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/board"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/theme"
)

// SubmitMsg is dispatched when a new task draft is submitted.
type SubmitMsg struct {
	Draft board.Draft
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    string
	dueDate     string
	dueTime     string
	urgent      bool
	notify      bool
	visibility  string
	tags        string
	checklist   string
	assigneeIDs []int64
}

// Model is the Bubble Tea model for the task create form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	users  []model.User
	width  int
	height int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetUsers sets the assignable users for the assignee selector.
func (m *Model) SetUsers(users []model.User) {
	m.users = users
}

// Start initializes the form for creating a new task.
func (m *Model) Start() tea.Cmd {
	m.fb.title = ""
	m.fb.description = ""
	m.fb.priority = string(model.PriorityMedium)
	m.fb.dueDate = ""
	m.fb.dueTime = ""
	m.fb.urgent = false
	m.fb.notify = true
	m.fb.visibility = string(model.VisibilityInternal)
	m.fb.tags = ""
	m.fb.checklist = ""
	m.fb.assigneeIDs = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Task") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[string]().
			Title("Priority").
			Options(
				huh.NewOption("Critical", string(model.PriorityCritical)),
				huh.NewOption("High", string(model.PriorityHigh)),
				huh.NewOption("Medium", string(model.PriorityMedium)),
				huh.NewOption("Low", string(model.PriorityLow)),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Due Time").
			Placeholder("HH:MM (optional, needs a due date)").
			Value(&m.fb.dueTime).
			Validate(validateOptionalTime),
		huh.NewConfirm().
			Title("Urgent").
			Value(&m.fb.urgent),
		huh.NewConfirm().
			Title("Remind when due").
			Value(&m.fb.notify),
		huh.NewSelect[string]().
			Title("Visibility").
			Options(
				huh.NewOption("Internal", string(model.VisibilityInternal)),
				huh.NewOption("Doctors", string(model.VisibilityDoctor)),
				huh.NewOption("Nurses", string(model.VisibilityNurse)),
			).
			Value(&m.fb.visibility),
		huh.NewInput().
			Title("Tags").
			Placeholder("comma separated (optional)").
			Value(&m.fb.tags),
		huh.NewText().
			Title("Checklist").
			Placeholder("one item per line (optional)").
			Value(&m.fb.checklist),
	}

	if assignees := m.assigneeField(); assignees != nil {
		fields = append(fields, assignees)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) assigneeField() huh.Field {
	if len(m.users) == 0 {
		return nil
	}
	opts := make([]huh.Option[int64], len(m.users))
	for i, u := range m.users {
		opts[i] = huh.NewOption(u.Username, u.ID)
	}
	return huh.NewMultiSelect[int64]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assigneeIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	draft := board.Draft{
		Title:       m.fb.title,
		Description: m.fb.description,
		IsUrgent:    m.fb.urgent,
		Priority:    model.Priority(m.fb.priority),
		DueDate:     strings.TrimSpace(m.fb.dueDate),
		DueTime:     strings.TrimSpace(m.fb.dueTime),
		NotifyOnDue: m.fb.notify,
		Visibility:  model.Visibility(m.fb.visibility),
		AssigneeIDs: m.fb.assigneeIDs,
	}

	for _, tag := range strings.Split(m.fb.tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			draft.Tags = append(draft.Tags, tag)
		}
	}
	for _, line := range strings.Split(m.fb.checklist, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			draft.Checklist = append(draft.Checklist, line)
		}
	}

	return func() tea.Msg { return SubmitMsg{Draft: draft} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateOptionalTime(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid time format, use HH:MM")
	}
	return nil
}
