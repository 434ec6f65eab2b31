package model

import "time"

// Priority is the urgency class assigned to a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid reports whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Visibility controls which staff roles can see a task.
type Visibility string

const (
	VisibilityInternal Visibility = "internal"
	VisibilityDoctor   Visibility = "doctor"
	VisibilityNurse    Visibility = "nurse"
)

// Assignee links a task to a user responsible for it.
type Assignee struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// ChecklistItem is a single sub-entry within a task's checklist.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Attachment is a file reference attached to a task.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Task is a unit of clinical or administrative work tracked against the
// EMR backend. The backend assigns the identity; clients never mint IDs.
type Task struct {
	// ID is the backend-assigned identifier, immutable once set.
	ID int64 `json:"id"`

	// Title is the short summary of the work. Required, non-empty.
	Title string `json:"title"`

	// Description is the optional long-form body.
	Description string `json:"description,omitempty"`

	// IsUrgent flags the task for prominent display.
	IsUrgent bool `json:"is_urgent"`

	// Status is the lifecycle state (see Status and its transition table).
	Status Status `json:"status"`

	// Priority is the urgency class.
	Priority Priority `json:"priority"`

	// DueDate is the optional deadline, stored as a UTC instant.
	DueDate *time.Time `json:"due_date,omitempty"`

	// NotifyOnDue enables due-soon/overdue reminders for this task.
	NotifyOnDue bool `json:"notify_on_due"`

	// Visibility scopes the task to a staff role.
	Visibility Visibility `json:"visibility"`

	// Tags is a free-form set of labels.
	Tags []string `json:"tags,omitempty"`

	// Checklist is the ordered list of sub-entries.
	Checklist []ChecklistItem `json:"checklist,omitempty"`

	// Attachments is the ordered list of file references.
	Attachments []Attachment `json:"attachments,omitempty"`

	// Assignees are the users responsible for the task.
	Assignees []Assignee `json:"assignees,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is stamped when the task transitions to done.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedByID       int64  `json:"created_by_id,omitempty"`
	CreatedByUsername string `json:"created_by_username,omitempty"`
}
