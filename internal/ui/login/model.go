package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/theme"
)

// SubmitMsg is dispatched when the user submits their credentials.
// Signup is set when the form was in account-creation mode, in which
// case Username carries the requested display name.
type SubmitMsg struct {
	Email    string
	Password string
	Username string
	Signup   bool
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	username string
}

// Model is the sign-in form shown before the board is available. It
// doubles as the sign-up form; ctrl+s switches between the two modes.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	signup  bool
	errText string
	width   int
	height  int
}

// New creates a new login form model. The form is built eagerly so the
// view is usable straight from the program's Init.
func New(width, height int) Model {
	m := Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init focuses the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Start rebuilds the form for another attempt, discarding the previous
// password and dropping back to sign-in mode.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.signup = false
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError displays a sign-in failure message above the form.
func (m *Model) SetError(text string) {
	m.errText = text
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+s" {
		m.signup = !m.signup
		m.errText = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := SubmitMsg{
			Email:    strings.TrimSpace(m.fb.email),
			Password: m.fb.password,
			Username: strings.TrimSpace(m.fb.username),
			Signup:   m.signup,
		}
		return m, func() tea.Msg { return submit }
	}

	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Sign In"
	hint := "ctrl+s: create an account instead"
	if m.signup {
		title = "Create Account"
		hint = "ctrl+s: back to sign in"
	}

	content := titleStyle.Render(title)
	if m.errText != "" {
		content += "\n" + lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText)
	}
	content += "\n" + m.form.View()
	content += "\n" + lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(hint)

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
			Title("Email").
			Placeholder("you@hospital.org").
			Value(&m.fb.email).
			Validate(validateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(validateRequired("Password")),
	}
	if m.signup {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Placeholder("shown on assigned tasks").
			Value(&m.fb.username).
			Validate(validateRequired("Username")))
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth())
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

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
