package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/keys"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/theme"
)

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID int64
}

// tabs are the status columns cycled with Tab. Index 0 shows everything.
var tabs = []model.Status{
	"",
	model.StatusTodo,
	model.StatusInProgress,
	model.StatusDone,
	model.StatusCancelled,
}

// Model is the task board view component.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	tasks       []model.Task
	tabIndex    int
	searchMode  bool
	searchInput textinput.Model
	query       string
	width       int
	height      int
}

// New creates a new board model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-3)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTasks replaces the board contents and re-applies the active
// column filter.
func (m *Model) SetTasks(tasks []model.Task) tea.Cmd {
	m.tasks = tasks
	return m.applyFilter()
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Update handles messages for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if m.searchMode {
		return m.handleSearchKeys(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: item.Task.ID}
		}

	case key.Matches(keyMsg, m.keys.NextTab):
		m.tabIndex = (m.tabIndex + 1) % len(tabs)
		return m, m.applyFilter()

	case key.Matches(keyMsg, m.keys.PrevTab):
		m.tabIndex = (m.tabIndex + len(tabs) - 1) % len(tabs)
		return m, m.applyFilter()

	case keyMsg.String() == "/":
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(keyMsg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		return m, m.applyFilter()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.applyFilter()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// applyFilter rebuilds the list items from the task snapshot using the
// active column tab and search query.
func (m *Model) applyFilter() tea.Cmd {
	active := tabs[m.tabIndex]
	query := strings.ToLower(m.query)

	var items []list.Item
	for _, task := range m.tasks {
		if active != "" && task.Status != active {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(task.Title), query) {
			continue
		}
		items = append(items, TaskItem{Task: task})
	}
	return m.list.SetItems(items)
}

// View renders the board view.
func (m Model) View() string {
	header := m.renderTabs()

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderEmptyState())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

// renderTabs draws the status column tabs with per-column counts.
func (m Model) renderTabs() string {
	counts := make(map[model.Status]int)
	for _, task := range m.tasks {
		counts[task.Status]++
	}

	rendered := make([]string, len(tabs))
	for i, tab := range tabs {
		label := "All"
		count := len(m.tasks)
		if tab != "" {
			label = tab.Display()
			count = counts[tab]
		}
		text := fmt.Sprintf("%s (%d)", label, count)
		if i == m.tabIndex {
			rendered[i] = theme.ActiveTabStyle.Render(text)
		} else {
			rendered[i] = theme.TabStyle.Render(text)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderEmptyState shows guidance text when the column is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 3).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No matching tasks.\nPress / and enter to clear the search.")
	}
	if tabs[m.tabIndex] != "" {
		return style.Render("No tasks in this column.")
	}
	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}
