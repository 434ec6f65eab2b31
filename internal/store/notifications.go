package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tvu/careboard/internal/model"
)

// maxNotifications caps the log; the oldest entries past the cap are
// evicted on every append.
const maxNotifications = 50

// DefaultNotificationRetention is the age past which notifications are
// eligible for pruning.
const DefaultNotificationRetention = 24 * time.Hour

// AppendNotification inserts a notification at the head of the log.
// An empty ID gets a generated UUID; an empty CreatedAt gets the current
// time. Appending an existing ID overwrites the entry rather than
// duplicating it. After insertion the log is trimmed to the
// maxNotifications most recent entries and an "added" event is broadcast.
func (s *SQLiteStore) AppendNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// seq records insertion order so that head-of-log ordering does not
	// depend on wall-clock timestamps being distinct.
	var seq int64
	if err := tx.GetContext(ctx, &seq,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM notifications",
	); err != nil {
		return fmt.Errorf("allocating notification seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO notifications (id, title, message, type, read, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Message, string(n.Type),
		boolToInt(n.Read), n.CreatedAt.UTC(), seq,
	)
	if err != nil {
		return fmt.Errorf("appending notification %s: %w", n.ID, err)
	}

	// Tail eviction: keep only the most recent entries.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM notifications WHERE id NOT IN (
			SELECT id FROM notifications ORDER BY seq DESC LIMIT ?
		)`, maxNotifications,
	)
	if err != nil {
		return fmt.Errorf("trimming notification log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing notification append: %w", err)
	}

	s.broadcast(NotificationAdded)
	return nil
}

// Notifications returns the full log, most recent first.
func (s *SQLiteStore) Notifications(
	ctx context.Context,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, title, message, type, read, created_at
		FROM notifications ORDER BY seq DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read. Marking an
// absent id is a no-op, not an error.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id string,
) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.broadcast(NotificationUpdated)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1")
	if err != nil {
		return fmt.Errorf("marking all notifications as read: %w", err)
	}

	s.broadcast(NotificationUpdated)
	return nil
}

// UnreadNotificationCount returns the number of unread notifications.
func (s *SQLiteStore) UnreadNotificationCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE read = 0",
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// PruneNotificationsOlderThan removes notifications older than maxAge.
// Callers are expected to invoke this periodically (the app does so at
// startup); the store never prunes on its own.
func (s *SQLiteStore) PruneNotificationsOlderThan(
	ctx context.Context,
	maxAge time.Duration,
) error {
	cutoff := time.Now().Add(-maxAge).UTC()
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE created_at < ?", cutoff,
	)
	if err != nil {
		return fmt.Errorf("pruning notifications: %w", err)
	}
	return nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		ntype     string
		readInt   int
		createdAt time.Time
	)

	err := rows.Scan(&n.ID, &n.Title, &n.Message, &ntype, &readInt, &createdAt)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Type = model.NotificationType(ntype)
	n.Read = readInt != 0
	n.CreatedAt = createdAt.UTC()

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
