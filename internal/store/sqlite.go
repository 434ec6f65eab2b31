package store

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NotificationEvent identifies the kind of change broadcast to
// notification subscribers.
type NotificationEvent string

const (
	// NotificationAdded is broadcast after a successful append.
	NotificationAdded NotificationEvent = "added"

	// NotificationUpdated is broadcast after read flags change.
	NotificationUpdated NotificationEvent = "updated"
)

// SQLiteStore is the local persistence scope for notifications and
// due-notification dedup markers. It survives restarts and is shared
// by every component in the process.
type SQLiteStore struct {
	db *sqlx.DB

	subMu   sync.Mutex
	subs    map[int]func(NotificationEvent)
	nextSub int
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		subs: make(map[int]func(NotificationEvent)),
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SubscribeNotifications registers a callback invoked after every
// notification mutation. It returns a token for UnsubscribeNotifications.
// Callbacks run synchronously on the mutating goroutine and must not
// call back into the store's notification operations.
func (s *SQLiteStore) SubscribeNotifications(fn func(NotificationEvent)) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSub++
	s.subs[s.nextSub] = fn
	return s.nextSub
}

// UnsubscribeNotifications removes a previously registered callback.
// Unknown tokens are ignored.
func (s *SQLiteStore) UnsubscribeNotifications(token int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	delete(s.subs, token)
}

// broadcast invokes every subscriber with the given event. Subscribers
// are copied under the lock and invoked outside it.
func (s *SQLiteStore) broadcast(ev NotificationEvent) {
	s.subMu.Lock()
	fns := make([]func(NotificationEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}
