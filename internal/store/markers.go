package store

import (
	"context"
	"fmt"
)

// Dedup markers record that a due notification has already been emitted
// for a (task, event kind) pair. They persist independently of the
// notification log so that repeated scans, and restarts, never re-alert
// for the same event.

// HasMarker reports whether a marker exists for the task and kind.
func (s *SQLiteStore) HasMarker(
	ctx context.Context,
	taskID int64,
	kind string,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM dedup_markers WHERE task_id = ? AND kind = ?",
		taskID, kind,
	)
	if err != nil {
		return false, fmt.Errorf("checking dedup marker (%d, %s): %w", taskID, kind, err)
	}
	return count > 0, nil
}

// SetMarker records a marker for the task and kind. Setting an existing
// marker is a no-op.
func (s *SQLiteStore) SetMarker(
	ctx context.Context,
	taskID int64,
	kind string,
) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO dedup_markers (task_id, kind) VALUES (?, ?)",
		taskID, kind,
	)
	if err != nil {
		return fmt.Errorf("setting dedup marker (%d, %s): %w", taskID, kind, err)
	}
	return nil
}

// ClearTaskMarkers removes every marker for the task, re-arming due
// notifications after its due date moves.
func (s *SQLiteStore) ClearTaskMarkers(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM dedup_markers WHERE task_id = ?", taskID,
	)
	if err != nil {
		return fmt.Errorf("clearing dedup markers for task %d: %w", taskID, err)
	}
	return nil
}
