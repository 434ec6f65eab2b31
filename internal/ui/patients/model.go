package patients

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/keys"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/theme"
)

// CloseMsg signals the parent to navigate back to the board.
type CloseMsg struct{}

// patientItem wraps a model.Patient for the bubbles/list.
type patientItem struct {
	p        model.Patient
	hospital string
}

func (i patientItem) FilterValue() string { return i.p.FullName() }

// itemDelegate renders one patient per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(patientItem)
	if !ok {
		return
	}

	name := pi.p.FullName()
	contact := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(pi.p.Email)

	hospitalBadge := ""
	if pi.hospital != "" {
		hospitalBadge = lipgloss.NewStyle().
			Foreground(theme.ColorBlue).
			Render(" @" + pi.hospital)
	}

	line := fmt.Sprintf("● %s%s  %s", name, hospitalBadge, contact)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// Model is the patient roster view. Registration and removal are
// driven by the parent; the roster itself only lists and filters.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new patient roster model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Patients"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetPatients replaces the roster contents, resolving hospital names
// from the given lookup.
func (m *Model) SetPatients(ps []model.Patient, hospitals []model.Hospital) tea.Cmd {
	names := make(map[int64]string, len(hospitals))
	for _, h := range hospitals {
		names[h.ID] = h.Name
	}

	items := make([]list.Item, len(ps))
	for i, p := range ps {
		items[i] = patientItem{p: p, hospital: names[p.HospitalID]}
	}
	return m.list.SetItems(items)
}

// SelectedPatient returns the currently highlighted patient, if any.
func (m Model) SelectedPatient() (model.Patient, bool) {
	item, ok := m.list.SelectedItem().(patientItem)
	if !ok {
		return model.Patient{}, false
	}
	return item.p, true
}

// Filtering reports whether the roster filter input has the keyboard.
func (m Model) Filtering() bool {
	return m.list.SettingFilter()
}

// Update handles messages for the patient roster.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) && !m.list.SettingFilter() {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the patient roster.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - 2).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No patients on record.")
	}
	return m.list.View()
}

// SetSize updates the roster dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
