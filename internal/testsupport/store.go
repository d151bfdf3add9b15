// Package testsupport provides an in-process reminder backend for tests: the
// four chat destinations over HTTP, push frames over websocket and long
// polling, and a SQLite reminder store swept for due reminders.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// TimeLayout is the format of reminder times in replies.
const TimeLayout = "2006-01-02 15:04:05"

// ReminderStore keeps reminders in SQLite.
type ReminderStore struct {
	db *sql.DB
}

// NewReminderStore opens the store at dsn and creates its schema.
func NewReminderStore(dsn string) (*ReminderStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &ReminderStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *ReminderStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task TEXT NOT NULL,
			due_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(due_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *ReminderStore) Close() error {
	return s.db.Close()
}

// Add stores a reminder for task due at due.
func (s *ReminderStore) Add(ctx context.Context, task string, due time.Time) (protocol.Reminder, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (task, due_at) VALUES (?, ?)`,
		task, due.UnixMilli())
	if err != nil {
		return protocol.Reminder{}, fmt.Errorf("failed to add reminder: %w", err)
	}
	return toReminder(task, due.UnixMilli()), nil
}

// List returns every stored reminder, earliest first.
func (s *ReminderStore) List(ctx context.Context) ([]protocol.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task, due_at FROM reminders ORDER BY due_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	reminders := []protocol.Reminder{}
	for rows.Next() {
		var task string
		var dueAt int64
		if err := rows.Scan(&task, &dueAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, toReminder(task, dueAt))
	}
	return reminders, rows.Err()
}

// DeleteMatching deletes the oldest reminder whose task occurs in message.
// It reports whether a reminder was deleted.
func (s *ReminderStore) DeleteMatching(ctx context.Context, message string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, task FROM reminders ORDER BY id`)
	if err != nil {
		return false, fmt.Errorf("failed to query reminders: %w", err)
	}

	var matchID int64 = -1
	for rows.Next() {
		var id int64
		var task string
		if err := rows.Scan(&id, &task); err != nil {
			rows.Close()
			return false, fmt.Errorf("failed to scan reminder: %w", err)
		}
		if task != "" && strings.Contains(message, task) {
			matchID = id
			break
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	if matchID < 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, matchID); err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}
	return true, nil
}

// TakeDue removes and returns every reminder due at or before now.
func (s *ReminderStore) TakeDue(ctx context.Context, now time.Time) ([]protocol.Reminder, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoff := now.UnixMilli()
	rows, err := tx.QueryContext(ctx,
		`SELECT task, due_at FROM reminders WHERE due_at <= ? ORDER BY due_at, id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}

	var due []protocol.Reminder
	for rows.Next() {
		var task string
		var dueAt int64
		if err := rows.Scan(&task, &dueAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		due = append(due, toReminder(task, dueAt))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE due_at <= ?`, cutoff); err != nil {
		return nil, fmt.Errorf("failed to delete due reminders: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return due, nil
}

func toReminder(task string, dueAt int64) protocol.Reminder {
	return protocol.Reminder{
		Task: task,
		Time: time.UnixMilli(dueAt).Format(TimeLayout),
	}
}
