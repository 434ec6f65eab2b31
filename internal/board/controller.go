// Package board implements the task board controller: it reconciles the
// local task view with the EMR backend and exposes the user actions the
// board UI is built on. The backend is the system of record; the
// controller's slice is a view that Refresh replaces wholesale.
package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tvu/careboard/internal/api"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/store"
	"github.com/tvu/careboard/internal/watch"
)

// Draft is the user input for creating a task. Due date and time are
// kept as the raw form strings; Create combines them into an instant.
type Draft struct {
	Title       string
	Description string
	IsUrgent    bool
	Priority    model.Priority
	DueDate     string // "2006-01-02", optional
	DueTime     string // "15:04", optional; ignored without DueDate
	NotifyOnDue bool
	Visibility  model.Visibility
	Tags        []string
	Checklist   []string
	AssigneeIDs []int64
}

// Controller owns the in-memory task collection for the current view
// and drives the due-date watcher with every successful refresh.
type Controller struct {
	client  *api.Client
	store   *store.SQLiteStore
	watcher *watch.Watcher
	now     func() time.Time

	mu    sync.Mutex
	tasks []model.Task
}

// New creates a controller. The watcher may be nil when due
// notifications are not wanted (e.g. one-shot CLI use).
func New(client *api.Client, s *store.SQLiteStore, w *watch.Watcher) *Controller {
	return &Controller{
		client:  client,
		store:   s,
		watcher: w,
		now:     time.Now,
	}
}

// Refresh fetches the full task set from the backend and replaces the
// local view. On failure the prior view is kept untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	tasks, err := c.client.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("refreshing tasks: %w", err)
	}

	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()

	if c.watcher != nil {
		c.watcher.SetTasks(tasks)
	}
	return nil
}

// Tasks returns a copy of the current view.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Task returns the task with the given id from the current view.
func (c *Controller) Task(taskID int64) (model.Task, bool) {
	return c.findTask(taskID)
}

// TasksByStatus returns the tasks in the given status, preserving the
// backend's ordering.
func (c *Controller) TasksByStatus(s model.Status) []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []model.Task
	for _, t := range c.tasks {
		if t.Status == s {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns the number of tasks per status. Counts are derived
// from the view, never stored.
func (c *Controller) Counts() map[model.Status]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[model.Status]int, len(model.AllStatuses()))
	for _, t := range c.tasks {
		counts[t.Status]++
	}
	return counts
}

// Create validates the draft, posts it to the backend, and refreshes.
// Validation failures never reach the network.
func (c *Controller) Create(ctx context.Context, d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}

	priority := d.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", d.Priority)}
	}

	due, err := parseDue(d.DueDate, d.DueTime)
	if err != nil {
		return &ValidationError{Field: "due_date", Reason: err.Error()}
	}

	visibility := d.Visibility
	if visibility == "" {
		visibility = model.VisibilityInternal
	}

	task := model.Task{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		IsUrgent:    d.IsUrgent,
		Status:      model.StatusTodo,
		Priority:    priority,
		DueDate:     due,
		NotifyOnDue: d.NotifyOnDue,
		Visibility:  visibility,
		Tags:        cleanTags(d.Tags),
	}
	for _, text := range d.Checklist {
		if strings.TrimSpace(text) == "" {
			continue
		}
		task.Checklist = append(task.Checklist, model.ChecklistItem{Text: text})
	}
	for _, id := range d.AssigneeIDs {
		task.Assignees = append(task.Assignees, model.Assignee{UserID: id})
	}

	if _, err := c.client.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return c.Refresh(ctx)
}

// Advance moves the task one step along the forward-only progression.
// Tasks in a terminal status are rejected before any network call.
func (c *Controller) Advance(ctx context.Context, taskID int64) error {
	task, ok := c.findTask(taskID)
	if !ok {
		return nil
	}

	next, ok := task.Status.Next()
	if !ok {
		return &model.InvalidTransitionError{From: task.Status}
	}
	return c.ChangeStatus(ctx, taskID, next)
}

// ChangeStatus executes a validated status transition, persists the
// full record, and refreshes. Transitioning to done stamps the
// completion time and raises a completion notification. All status
// mutation goes through here; there is no raw status replace.
func (c *Controller) ChangeStatus(ctx context.Context, taskID int64, target model.Status) error {
	task, ok := c.findTask(taskID)
	if !ok {
		return nil
	}

	if !task.Status.CanTransitionTo(target) {
		return &model.InvalidTransitionError{From: task.Status, To: target}
	}

	task.Status = target
	if target == model.StatusDone {
		completed := c.now()
		task.CompletedAt = &completed
	}

	if _, err := c.client.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("updating task %d status: %w", taskID, err)
	}

	// The backend has accepted the transition at this point, so the
	// completion notification is recorded even if the refresh below
	// fails.
	if target == model.StatusDone && c.store != nil {
		err := c.store.AppendNotification(ctx, model.Notification{
			ID:      fmt.Sprintf("task-%d-completed-%d", taskID, c.now().UnixMilli()),
			Title:   "Task Completed",
			Message: fmt.Sprintf("Task %q has been marked as completed", task.Title),
			Type:    model.NotificationTask,
		})
		if err != nil {
			return fmt.Errorf("recording completion of task %d: %w", taskID, err)
		}
	}

	return c.Refresh(ctx)
}

// Cancel moves a non-terminal task to cancelled. Cancellation sits
// outside the forward progression and is only reachable through this
// explicit action.
func (c *Controller) Cancel(ctx context.Context, taskID int64) error {
	task, ok := c.findTask(taskID)
	if !ok {
		return nil
	}

	if task.Status.IsTerminal() {
		return &model.InvalidTransitionError{From: task.Status, To: model.StatusCancelled}
	}

	task.Status = model.StatusCancelled
	if _, err := c.client.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("cancelling task %d: %w", taskID, err)
	}
	return c.Refresh(ctx)
}

// Delay pushes the task's due date forward by the given number of
// minutes. Tasks without a due date are left alone. The task's dedup
// markers are cleared so the moved deadline can alert again.
func (c *Controller) Delay(ctx context.Context, taskID int64, minutes int) error {
	task, ok := c.findTask(taskID)
	if !ok || task.DueDate == nil {
		return nil
	}

	newDue := task.DueDate.Add(time.Duration(minutes) * time.Minute)
	task.DueDate = &newDue

	if _, err := c.client.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("delaying task %d: %w", taskID, err)
	}

	if c.store != nil {
		if err := c.store.ClearTaskMarkers(ctx, taskID); err != nil {
			return err
		}
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	if c.store != nil {
		_ = c.store.AppendNotification(ctx, model.Notification{
			ID:      fmt.Sprintf("task-%d-delayed-%d", taskID, c.now().UnixMilli()),
			Title:   "Task Delayed",
			Message: fmt.Sprintf("Task %q has been delayed by %d minutes", task.Title, minutes),
			Type:    model.NotificationInfo,
		})
	}
	return nil
}

// Delete removes the task after the confirm callback approves. A
// declined confirmation never reaches the network.
func (c *Controller) Delete(ctx context.Context, taskID int64, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return nil
	}

	if err := c.client.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("deleting task %d: %w", taskID, err)
	}
	return c.Refresh(ctx)
}

// findTask returns a copy of the task with the given id from the
// current view.
func (c *Controller) findTask(taskID int64) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

// parseDue combines the form's date and time strings into an instant.
// A date without a time resolves to that date's local midnight.
func parseDue(date, timeStr string) (*time.Time, error) {
	if date == "" {
		return nil, nil
	}

	layout := "2006-01-02"
	value := date
	if timeStr != "" {
		layout = "2006-01-02 15:04"
		value = date + " " + timeStr
	}

	t, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q", value)
	}
	return &t, nil
}

// cleanTags trims whitespace and drops empty entries.
func cleanTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
