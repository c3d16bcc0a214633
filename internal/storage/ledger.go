// Package storage locates the launcher's data directory and keeps the task
// history ledger and the registered Java runtimes in one SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"

	_ "modernc.org/sqlite"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    handle      INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    arg         TEXT NOT NULL,
    status      TEXT NOT NULL,
    code        INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    started_at  DATETIME NOT NULL,
    finished_at DATETIME
)`

// ErrNotFound is returned when a task record is not found.
var ErrNotFound = errors.New("task record not found")

// TaskRecord is one row of the task history
type TaskRecord struct {
	ID         string            `json:"id"`
	Handle     uint64            `json:"handle"`
	Kind       string            `json:"kind"`
	Arg        string            `json:"arg,omitempty"`
	Status     models.TaskStatus `json:"status"`
	Code       int               `json:"code"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Ledger records when tasks start and how they end. It is history only;
// nothing is resumed from it.
type Ledger interface {
	RecordStart(ctx context.Context, rec *TaskRecord) error
	RecordFinish(ctx context.Context, id string, status models.TaskStatus, code int, errText string) error
	Get(ctx context.Context, id string) (*TaskRecord, error)
	List(ctx context.Context, limit, offset int) ([]*TaskRecord, int, error)
	Close() error
}

// Compile-time interface satisfaction check.
var _ Ledger = (*SQLiteLedger)(nil)

// SQLiteLedger implements Ledger using SQLite.
type SQLiteLedger struct {
	db *sql.DB
}

// NewID generates a new ULID string for a task record.
func NewID() string {
	return ulid.Make().String()
}

// NewSQLiteLedger opens the SQLite database at dbPath and runs migrations.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createTasksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tasks table: %w", err)
	}

	if _, err := db.Exec(createJVMsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create jvms table: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Close closes the underlying database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// RecordStart inserts a running task. An empty ID is filled in.
func (l *SQLiteLedger) RecordStart(ctx context.Context, rec *TaskRecord) error {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = models.TaskStatusRunning
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO tasks (id, handle, kind, arg, status, code, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, int64(rec.Handle), rec.Kind, rec.Arg, string(rec.Status), rec.Code, rec.Error,
		rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// RecordFinish sets the terminal status and outcome of a task.
func (l *SQLiteLedger) RecordFinish(ctx context.Context, id string, status models.TaskStatus, code int, errText string) error {
	result, err := l.db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, code = ?, error = ?, finished_at = ? WHERE id = ?",
		string(status), code, errText, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Get retrieves a task record by ID.
func (l *SQLiteLedger) Get(ctx context.Context, id string) (*TaskRecord, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, handle, kind, arg, status, code, error, started_at, finished_at
		FROM tasks WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return rec, nil
}

// List returns a page of records, newest first, along with the total count.
func (l *SQLiteLedger) List(ctx context.Context, limit, offset int) ([]*TaskRecord, int, error) {
	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, handle, kind, arg, status, code, error, started_at, finished_at
		FROM tasks ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var records []*TaskRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}

	return records, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*TaskRecord, error) {
	rec := &TaskRecord{}
	var handle int64
	var status string
	if err := s.Scan(
		&rec.ID, &handle, &rec.Kind, &rec.Arg, &status, &rec.Code, &rec.Error,
		&rec.StartedAt, &rec.FinishedAt,
	); err != nil {
		return nil, err
	}
	rec.Handle = uint64(handle)
	rec.Status = models.TaskStatus(status)
	return rec, nil
}
