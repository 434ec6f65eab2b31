package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvu/careboard/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.AppendNotification(ctx, model.Notification{
		Title:   "Task Due Soon",
		Message: "Task \"Draw labs\" is due in 2 minutes",
		Type:    model.NotificationTask,
	})
	require.NoError(t, err)

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.NotEmpty(t, notifications[0].ID)
	assert.False(t, notifications[0].CreatedAt.IsZero())
	assert.False(t, notifications[0].Read)
}

func TestAppendCapsLogAtFifty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		err := s.AppendNotification(ctx, model.Notification{
			ID:      fmt.Sprintf("n-%d", i),
			Title:   "Reminder",
			Message: fmt.Sprintf("notification %d", i),
			Type:    model.NotificationInfo,
		})
		require.NoError(t, err)
	}

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 50)

	// Most recent first: ids n-59 down to n-10 survive.
	assert.Equal(t, "n-59", notifications[0].ID)
	assert.Equal(t, "n-10", notifications[49].ID)
}

func TestAppendDuplicateIDOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendNotification(ctx, model.Notification{
		ID: "dup", Title: "First", Message: "first", Type: model.NotificationInfo,
	}))
	require.NoError(t, s.AppendNotification(ctx, model.Notification{
		ID: "dup", Title: "Second", Message: "second", Type: model.NotificationInfo,
	}))

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Second", notifications[0].Title)
}

func TestMarkNotificationRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendNotification(ctx, model.Notification{
		ID: "a", Title: "t", Message: "m", Type: model.NotificationTask,
	}))

	require.NoError(t, s.MarkNotificationRead(ctx, "a"))

	count, err := s.UnreadNotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkNotificationReadAbsentIDIsNoop(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.MarkNotificationRead(context.Background(), "missing"))
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendNotification(ctx, model.Notification{
			ID: fmt.Sprintf("n-%d", i), Title: "t", Message: "m",
			Type: model.NotificationWarning,
		}))
	}

	require.NoError(t, s.MarkAllNotificationsRead(ctx))

	count, err := s.UnreadNotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPruneNotificationsOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendNotification(ctx, model.Notification{
		ID: "stale", Title: "t", Message: "m", Type: model.NotificationInfo,
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}))
	require.NoError(t, s.AppendNotification(ctx, model.Notification{
		ID: "fresh", Title: "t", Message: "m", Type: model.NotificationInfo,
	}))

	require.NoError(t, s.PruneNotificationsOlderThan(ctx, DefaultNotificationRetention))

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "fresh", notifications[0].ID)
}

func TestSubscribersReceiveEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var events []NotificationEvent
	token := s.SubscribeNotifications(func(ev NotificationEvent) {
		events = append(events, ev)
	})

	require.NoError(t, s.AppendNotification(ctx, model.Notification{
		ID: "a", Title: "t", Message: "m", Type: model.NotificationTask,
	}))
	require.NoError(t, s.MarkNotificationRead(ctx, "a"))

	require.Equal(t, []NotificationEvent{NotificationAdded, NotificationUpdated}, events)

	s.UnsubscribeNotifications(token)
	require.NoError(t, s.MarkAllNotificationsRead(ctx))
	assert.Len(t, events, 2)
}
