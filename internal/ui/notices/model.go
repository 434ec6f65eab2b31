package notices

import (
	"fmt"
	"io"
	"time"

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

// MarkReadMsg asks the parent to mark a single notification as read.
type MarkReadMsg struct {
	ID string
}

// MarkAllReadMsg asks the parent to mark every notification as read.
type MarkAllReadMsg struct{}

// noticeItem wraps a model.Notification for the bubbles/list.
type noticeItem struct {
	n model.Notification
}

func (i noticeItem) FilterValue() string { return i.n.Title }

// itemDelegate renders one notification per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(noticeItem)
	if !ok {
		return
	}

	n := ni.n

	marker := "●"
	if n.Read {
		marker = " "
	}

	typeBadge := theme.NotificationStyle(string(n.Type)).
		Render(string(n.Type))
	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(n.CreatedAt))

	line := fmt.Sprintf("%s %s %s — %s  %s", marker, typeBadge, n.Title, n.Message, timeStr)

	if n.Read {
		line = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// Model is the notification panel view.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new notification panel model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
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

// SetNotifications replaces the panel contents, preserving the cursor
// position where possible.
func (m *Model) SetNotifications(notifications []model.Notification) tea.Cmd {
	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		items[i] = noticeItem{n: n}
	}
	return m.list.SetItems(items)
}

// Update handles messages for the notification panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }

		case key.Matches(keyMsg, m.keys.Select):
			item, ok := m.list.SelectedItem().(noticeItem)
			if !ok || item.n.Read {
				return m, nil
			}
			id := item.n.ID
			return m, func() tea.Msg { return MarkReadMsg{ID: id} }

		case keyMsg.String() == "a":
			return m, func() tea.Msg { return MarkAllReadMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the notification panel.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - 2).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
	}
	return m.list.View()
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
