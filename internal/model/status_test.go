package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextFollowsForwardProgression(t *testing.T) {
	next, ok := StatusTodo.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, next)

	next, ok = StatusInProgress.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusDone, next)
}

func TestNextRejectsTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusDone, StatusCancelled} {
		_, ok := s.Next()
		assert.False(t, ok, "status %s should have no next", s)
		assert.True(t, s.IsTerminal())
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusInProgress, StatusDone, true},
		{StatusTodo, StatusDone, false},
		{StatusInProgress, StatusTodo, false},
		{StatusDone, StatusInProgress, false},
		{StatusDone, StatusTodo, false},
		{StatusCancelled, StatusTodo, false},
		{StatusTodo, StatusCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Status("archived").IsValid())
}

func TestInvalidTransitionErrorNamesBothStatuses(t *testing.T) {
	err := &InvalidTransitionError{From: StatusDone, To: StatusTodo}
	assert.Contains(t, err.Error(), "done")
	assert.Contains(t, err.Error(), "todo")

	err = &InvalidTransitionError{From: StatusDone}
	assert.Contains(t, err.Error(), "no forward transition from done")
}

func TestDisplayLabels(t *testing.T) {
	assert.Equal(t, "To Do", StatusTodo.Display())
	assert.Equal(t, "In Progress", StatusInProgress.Display())
	assert.Equal(t, "Completed", StatusDone.Display())
	assert.Equal(t, "Cancelled", StatusCancelled.Display())
}
