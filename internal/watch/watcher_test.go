package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/tests/testutil"
)

func newTestWatcher(t *testing.T, now time.Time) *Watcher {
	t.Helper()

	w := New(testutil.NewTestStore(t), DefaultScanInterval)
	w.now = func() time.Time { return now }
	return w
}

func dueTask(id int64, title string, due time.Time) model.Task {
	return model.Task{
		ID:          id,
		Title:       title,
		Status:      model.StatusTodo,
		Priority:    model.PriorityHigh,
		DueDate:     &due,
		NotifyOnDue: true,
	}
}

func TestDueSoonEmitsExactlyOnce(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w := newTestWatcher(t, now)
	ctx := context.Background()

	w.SetTasks([]model.Task{dueTask(1, "Draw labs", now.Add(3*time.Minute))})

	w.scan()
	w.scan()
	w.scan()

	notifications, err := w.store.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Task Due Soon", notifications[0].Title)
	assert.Equal(t, model.NotificationTask, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Draw labs")
	assert.Contains(t, notifications[0].Message, "3 minutes")
}

func TestDueSoonRoundsMinutesUp(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w := newTestWatcher(t, now)

	w.SetTasks([]model.Task{dueTask(1, "Draw labs", now.Add(90*time.Second))})
	w.scan()

	notifications, err := w.store.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "2 minutes")
}

func TestNoReminderOutsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w := newTestWatcher(t, now)

	w.SetTasks([]model.Task{dueTask(1, "Round on ward 3", now.Add(10*time.Minute))})
	w.scan()

	notifications, err := w.store.Notifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestOverdueEmitsExactlyOnce(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w := newTestWatcher(t, now)
	ctx := context.Background()

	w.SetTasks([]model.Task{dueTask(2, "Discharge summary", now.Add(-time.Hour))})

	w.scan()
	w.scan()

	notifications, err := w.store.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Task Overdue", notifications[0].Title)
	assert.Equal(t, model.NotificationWarning, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Discharge summary")

	seen, err := w.store.HasMarker(ctx, 2, MarkerOverdue)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestSkipsIneligibleTasks(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w := newTestWatcher(t, now)
	past := now.Add(-time.Minute)

	done := dueTask(1, "done task", past)
	done.Status = model.StatusDone

	muted := dueTask(2, "muted task", past)
	muted.NotifyOnDue = false

	undated := dueTask(3, "undated task", past)
	undated.DueDate = nil

	w.SetTasks([]model.Task{done, muted, undated})
	w.scan()

	notifications, err := w.store.Notifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestClearedMarkerReArms(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	w := newTestWatcher(t, now)
	ctx := context.Background()

	w.SetTasks([]model.Task{dueTask(5, "Med review", now.Add(-time.Minute))})
	w.scan()

	require.NoError(t, w.store.ClearTaskMarkers(ctx, 5))

	w.scan()

	seen, err := w.store.HasMarker(ctx, 5, MarkerOverdue)
	require.NoError(t, err)
	assert.True(t, seen, "scan after clearing should set the marker again")
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	w := newTestWatcher(t, time.Now())
	w.SetTasks(nil)

	w.Start()
	w.Start()
	w.Stop()
	w.Stop()
}
