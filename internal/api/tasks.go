package api

import (
	"context"
	"fmt"

	"github.com/tvu/careboard/internal/model"
)

// ListTasks fetches the full task set visible to the current user.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.Get(ctx, "/tasks", &tasks); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	if err := c.Get(ctx, fmt.Sprintf("/tasks/%d", id), &task); err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return &task, nil
}

// CreateTask creates a new task and returns the backend's record,
// including the assigned id.
func (c *Client) CreateTask(ctx context.Context, t model.Task) (*model.Task, error) {
	var created model.Task
	if err := c.Post(ctx, "/tasks", t, &created); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &created, nil
}

// UpdateTask replaces the full task record on the backend.
func (c *Client) UpdateTask(ctx context.Context, t model.Task) (*model.Task, error) {
	var updated model.Task
	if err := c.Put(ctx, fmt.Sprintf("/tasks/%d", t.ID), t, &updated); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", t.ID, err)
	}
	return &updated, nil
}

// DeleteTask removes a task. Deletion is irreversible.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.Delete(ctx, fmt.Sprintf("/tasks/%d", id)); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}
