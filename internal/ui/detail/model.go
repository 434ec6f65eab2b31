package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/keys"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/theme"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action string
	TaskID int64
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(task *model.Task) {
	m.task = task
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(keyMsg, m.keys.Advance):
			return m, m.action("advance")

		case key.Matches(keyMsg, m.keys.Delay):
			return m, m.action("delay")

		case key.Matches(keyMsg, m.keys.Cancel):
			return m, m.action("cancel")

		case key.Matches(keyMsg, m.keys.Delete):
			return m, m.action("delete")
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.task == nil {
		return nil
	}
	id := m.task.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, TaskID: id}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	// Title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := task.Title
	if task.IsUrgent {
		title = theme.UrgentStyle.Render("! ") + title
	}
	sections = append(sections, titleStyle.Render(title))

	// Badges line: status + priority + visibility
	statusBadge := theme.StatusStyle(string(task.Status)).
		Render(task.Status.Display())
	priBadge := theme.PriorityStyle(string(task.Priority)).
		Render(strings.ToUpper(string(task.Priority)))
	visBadge := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(string(task.Visibility))

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top, statusBadge, "  ", priBadge, "  ", visBadge,
	)
	sections = append(sections, badgeLine)
	sections = append(sections, "")

	// Metadata table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	if task.DueDate != nil {
		sections = append(sections, fmt.Sprintf(
			"%s       %s",
			metaStyle.Render("Due:"),
			valStyle.Render(task.DueDate.Format("2006-01-02 15:04")),
		))
	}
	if len(task.Assignees) > 0 {
		names := make([]string, len(task.Assignees))
		for i, a := range task.Assignees {
			names[i] = a.Username
		}
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render("Assignees:"),
			valStyle.Render(strings.Join(names, ", ")),
		))
	}
	if task.CreatedByUsername != "" {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Creator:"),
			valStyle.Render(task.CreatedByUsername),
		))
	}
	if !task.CreatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Created:"),
			valStyle.Render(task.CreatedAt.Format("2006-01-02 15:04")),
		))
	}
	if task.CompletedAt != nil {
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render("Completed:"),
			valStyle.Render(task.CompletedAt.Format("2006-01-02 15:04")),
		))
	}
	if len(task.Tags) > 0 {
		sections = append(sections, fmt.Sprintf(
			"%s      %s",
			metaStyle.Render("Tags:"),
			valStyle.Render(strings.Join(task.Tags, ", ")),
		))
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Description
	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, descHeaderStyle.Render("Description"))

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	// Checklist section
	if len(task.Checklist) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		checkHeaderStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)

		done := 0
		for _, item := range task.Checklist {
			if item.Completed {
				done++
			}
		}
		sections = append(sections, checkHeaderStyle.Render(
			fmt.Sprintf("Checklist (%d/%d)", done, len(task.Checklist)),
		))
		sections = append(sections, "")

		for _, item := range task.Checklist {
			box := "☐"
			text := item.Text
			if item.Completed {
				box = "☑"
				text = lipgloss.NewStyle().
					Foreground(theme.ColorGray).
					Render(text)
			}
			sections = append(sections, fmt.Sprintf("%s %s", box, text))
		}
	}

	// Attachments section
	if len(task.Attachments) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		attachHeaderStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)

		sections = append(sections, attachHeaderStyle.Render(
			fmt.Sprintf("Attachments (%d)", len(task.Attachments)),
		))
		sections = append(sections, "")

		for _, a := range task.Attachments {
			name := a.Name
			if name == "" {
				name = a.URL
			}
			sections = append(sections, fmt.Sprintf("• %s", name))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
