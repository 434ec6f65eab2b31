// Package watch implements the due-date watcher: a periodic scan of the
// currently loaded tasks that raises due-soon and overdue notifications
// exactly once per task per event kind.
package watch

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/store"
)

// Dedup marker kinds recorded per task.
const (
	MarkerDueSoon = "due_soon"
	MarkerOverdue = "overdue"
)

// dueSoonWindow is how far ahead of the due date the reminder fires.
const dueSoonWindow = 5 * time.Minute

// DefaultScanInterval is the cadence between scans.
const DefaultScanInterval = 30 * time.Second

// scanTimeout bounds a single scan's store operations.
const scanTimeout = 10 * time.Second

// Watcher periodically scans a task snapshot and appends due
// notifications to the store. Delivery is idempotent: a persistent
// dedup marker is set per (task, kind) and never cleared by the watcher
// itself, so once notified stays notified until a caller (e.g. the
// board controller on delay) clears the markers.
type Watcher struct {
	store    *store.SQLiteStore
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	tasks   []model.Task
	stopCh  chan struct{}
	running bool
}

// New creates a watcher with the given scan interval. A non-positive
// interval falls back to DefaultScanInterval.
func New(s *store.SQLiteStore, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &Watcher{
		store:    s,
		interval: interval,
		now:      time.Now,
	}
}

// SetTasks replaces the snapshot the next scan will examine. The slice
// is copied; callers may keep mutating theirs.
func (w *Watcher) SetTasks(tasks []model.Task) {
	snapshot := make([]model.Task, len(tasks))
	copy(snapshot, tasks)

	w.mu.Lock()
	w.tasks = snapshot
	w.mu.Unlock()
}

// Start launches the scan loop. The first scan runs immediately, then
// every interval until Stop. Starting a running watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	go w.loop(stopCh)
}

// Stop halts the scan loop. Stopping a stopped watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

func (w *Watcher) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan examines every task in the snapshot. A failure on one task skips
// that task and continues; the scan itself never reports an error.
func (w *Watcher) scan() {
	w.mu.Lock()
	tasks := w.tasks
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	now := w.now()
	for _, task := range tasks {
		_ = w.checkTask(ctx, task, now)
	}
}

// checkTask raises at most one notification per dedup kind for a task
// whose due date is inside the reminder window or already past.
func (w *Watcher) checkTask(ctx context.Context, task model.Task, now time.Time) error {
	if !task.NotifyOnDue || task.DueDate == nil || task.Status == model.StatusDone {
		return nil
	}

	delta := task.DueDate.Sub(now)

	if delta > 0 && delta <= dueSoonWindow {
		return w.emitOnce(ctx, task.ID, MarkerDueSoon, model.Notification{
			ID:    fmt.Sprintf("task-%d-due-soon", task.ID),
			Title: "Task Due Soon",
			Message: fmt.Sprintf("Task %q is due in %d minutes",
				task.Title, int(math.Ceil(delta.Minutes()))),
			Type: model.NotificationTask,
		})
	}

	if delta < 0 {
		return w.emitOnce(ctx, task.ID, MarkerOverdue, model.Notification{
			ID:      fmt.Sprintf("task-%d-overdue", task.ID),
			Title:   "Task Overdue",
			Message: fmt.Sprintf("Task %q is overdue", task.Title),
			Type:    model.NotificationWarning,
		})
	}

	return nil
}

// emitOnce appends the notification unless a dedup marker already
// records a delivery for this task and kind.
func (w *Watcher) emitOnce(ctx context.Context, taskID int64, kind string, n model.Notification) error {
	seen, err := w.store.HasMarker(ctx, taskID, kind)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	if err := w.store.AppendNotification(ctx, n); err != nil {
		return err
	}
	return w.store.SetMarker(ctx, taskID, kind)
}
