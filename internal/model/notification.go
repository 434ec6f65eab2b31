package model

import "time"

// NotificationType classifies a notification for display purposes.
type NotificationType string

const (
	NotificationTask    NotificationType = "task"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
)

// Notification represents a user-facing alert raised by the due-date
// watcher or by a task lifecycle event.
type Notification struct {
	// ID is the unique identifier. Callers supply a stable id per logical
	// event; the store assigns one when empty.
	ID string `json:"id"`

	// Title is the short alert heading.
	Title string `json:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Type classifies the notification (task, info, warning).
	Type NotificationType `json:"type"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
