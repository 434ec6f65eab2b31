package model

import "fmt"

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses returns every valid status in board display order.
func AllStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}
}

// next defines the forward-only progression. A missing entry means the
// status is terminal for the guided transition path. Cancellation is a
// separate explicit action, never part of the progression.
var next = map[Status]Status{
	StatusTodo:       StatusInProgress,
	StatusInProgress: StatusDone,
}

// Next returns the single allowed forward transition target and whether
// one exists.
func (s Status) Next() (Status, bool) {
	n, ok := next[s]
	return n, ok
}

// CanTransitionTo reports whether moving to target is permitted by the
// forward-only table.
func (s Status) CanTransitionTo(target Status) bool {
	n, ok := next[s]
	return ok && n == target
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	_, ok := next[s]
	return !ok
}

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// Display returns a human-readable label for the status.
func (s Status) Display() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// InvalidTransitionError reports a status change rejected by the
// forward-only transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("no forward transition from %s", e.From)
	}
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}
