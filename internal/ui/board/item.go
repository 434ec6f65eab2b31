package board

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
	Now  func() time.Time
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		string(i.Task.Status),
		string(i.Task.Priority),
	}
	if i.Task.DueDate != nil {
		parts = append(parts, i.Task.DueDate.Format("Jan 02 15:04"))
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering board rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single board row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}

	task := ti.Task
	now := time.Now()
	if ti.Now != nil {
		now = ti.Now()
	}

	prefix := "●"
	if task.IsUrgent {
		prefix = theme.UrgentStyle.Render("!")
	}

	statusBadge := theme.StatusStyle(string(task.Status)).
		Render(task.Status.Display())
	priBadge := theme.PriorityStyle(string(task.Priority)).
		Render(priorityLabel(task.Priority))

	title := task.Title

	dueStr := ""
	overdueStr := ""
	if task.DueDate != nil {
		dueStr = theme.DueDateStyle.Render(" " + task.DueDate.Format("Jan 02 15:04"))
		if task.DueDate.Before(now) && !task.Status.IsTerminal() {
			overdueStr = theme.OverdueStyle.Render(" OVERDUE")
		}
	}

	tagBadge := ""
	if len(task.Tags) > 0 {
		display := task.Tags
		if len(display) > 2 {
			display = append(display[:2:2], "…")
		}
		tagBadge = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" #" + strings.Join(display, ",#"))
	}

	checklistBadge := ""
	if len(task.Checklist) > 0 {
		done := 0
		for _, it := range task.Checklist {
			if it.Completed {
				done++
			}
		}
		checklistBadge = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(fmt.Sprintf(" [%d/%d]", done, len(task.Checklist)))
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s%s%s",
		prefix, statusBadge, priBadge, title,
		checklistBadge, tagBadge, dueStr, overdueStr,
	)

	if task.Status.IsTerminal() {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// priorityLabel returns a short label for the given priority level.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "CRIT"
	case model.PriorityHigh:
		return "HIGH"
	case model.PriorityMedium:
		return "MED"
	case model.PriorityLow:
		return "LOW"
	default:
		return "?"
	}
}
