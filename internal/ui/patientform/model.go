// Package patientform implements the patient registration form.
package patientform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/theme"
)

// SubmitMsg is dispatched when a new patient record is submitted.
type SubmitMsg struct {
	Patient model.Patient
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	firstName  string
	lastName   string
	email      string
	phone      string
	hospitalID int64
}

// Model is the Bubble Tea model for the patient registration form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	hospitals []model.Hospital
	width     int
	height    int
}

// New creates a new patient form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetHospitals sets the admitting hospitals for the hospital selector.
func (m *Model) SetHospitals(hospitals []model.Hospital) {
	m.hospitals = hospitals
}

// Start initializes the form for registering a new patient.
func (m *Model) Start() tea.Cmd {
	m.fb.firstName = ""
	m.fb.lastName = ""
	m.fb.email = ""
	m.fb.phone = ""
	m.fb.hospitalID = 0
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the patient form.
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

// View renders the patient form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Register Patient") + "\n" + m.form.View()

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
			Title("First Name").
			Value(&m.fb.firstName).
			Validate(validateRequired("First name")),
		huh.NewInput().
			Title("Last Name").
			Value(&m.fb.lastName).
			Validate(validateRequired("Last name")),
		huh.NewInput().
			Title("Email").
			Placeholder("patient@example.org (optional)").
			Value(&m.fb.email).
			Validate(validateOptionalEmail),
		huh.NewInput().
			Title("Phone").
			Placeholder("optional").
			Value(&m.fb.phone),
	}

	if hospitals := m.hospitalField(); hospitals != nil {
		fields = append(fields, hospitals)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth())
}

func (m *Model) hospitalField() huh.Field {
	if len(m.hospitals) == 0 {
		return nil
	}
	opts := make([]huh.Option[int64], len(m.hospitals))
	for i, h := range m.hospitals {
		opts[i] = huh.NewOption(h.Name, h.ID)
	}
	return huh.NewSelect[int64]().
		Title("Hospital").
		Options(opts...).
		Value(&m.fb.hospitalID)
}

func (m Model) handleSubmit() tea.Cmd {
	patient := model.Patient{
		FirstName:  strings.TrimSpace(m.fb.firstName),
		LastName:   strings.TrimSpace(m.fb.lastName),
		Email:      strings.TrimSpace(m.fb.email),
		Phone:      strings.TrimSpace(m.fb.phone),
		HospitalID: m.fb.hospitalID,
	}
	return func() tea.Msg { return SubmitMsg{Patient: patient} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
