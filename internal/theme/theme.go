package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TabStyle renders an inactive status column tab.
var TabStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 2)

// ActiveTabStyle highlights the selected status column tab.
var ActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 2)

// UrgentStyle marks urgent tasks.
var UrgentStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// DueDateStyle renders due date annotations on list items.
var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OverdueStyle marks tasks past their due date.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// DimmedStyle de-emphasizes completed or cancelled items.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "todo":
		return base.Foreground(ColorBlue)
	case "in_progress":
		return base.Foreground(ColorYellow)
	case "done":
		return base.Foreground(ColorGreen)
	case "cancelled":
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given priority level.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case "critical":
		return base.Foreground(ColorRed)
	case "high":
		return base.Foreground(ColorOrange)
	case "medium":
		return base.Foreground(ColorYellow)
	case "low":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationStyle returns a color-coded style for the given
// notification type label.
func NotificationStyle(notificationType string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch notificationType {
	case "warning":
		return base.Foreground(ColorRed)
	case "task":
		return base.Foreground(ColorBlue)
	case "info":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}
