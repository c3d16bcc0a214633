package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const createJVMsTable = `
CREATE TABLE IF NOT EXISTS jvms (
    seq      INTEGER PRIMARY KEY AUTOINCREMENT,
    id       TEXT NOT NULL UNIQUE,
    name     TEXT NOT NULL,
    path     TEXT NOT NULL,
    args     TEXT NOT NULL DEFAULT '[]',
    env      TEXT NOT NULL DEFAULT '[]',
    added_at DATETIME NOT NULL
)`

// ErrJVMNotFound is returned when a registered runtime is not found.
var ErrJVMNotFound = errors.New("jvm not found")

// JVM is a registered Java runtime. Args are passed to java ahead of the
// version's own JVM arguments and Env entries (KEY=VALUE) extend the game's
// environment.
type JVM struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Args    []string  `json:"args,omitempty"`
	Env     []string  `json:"env,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// JVMRegistry keeps the runtimes a game can be started with, in the order
// they were added.
type JVMRegistry interface {
	AddJVM(ctx context.Context, jvm *JVM) error
	RemoveJVM(ctx context.Context, id string) error
	ListJVMs(ctx context.Context) ([]*JVM, error)
}

var _ JVMRegistry = (*SQLiteLedger)(nil)

// AddJVM appends a runtime. An empty ID is filled in.
func (l *SQLiteLedger) AddJVM(ctx context.Context, jvm *JVM) error {
	if jvm.ID == "" {
		jvm.ID = NewID()
	}
	if jvm.AddedAt.IsZero() {
		jvm.AddedAt = time.Now().UTC()
	}

	args, err := encodeList(jvm.Args)
	if err != nil {
		return err
	}
	env, err := encodeList(jvm.Env)
	if err != nil {
		return err
	}

	_, err = l.db.ExecContext(ctx,
		"INSERT INTO jvms (id, name, path, args, env, added_at) VALUES (?, ?, ?, ?, ?, ?)",
		jvm.ID, jvm.Name, jvm.Path, args, env, jvm.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("insert jvm: %w", err)
	}
	return nil
}

// RemoveJVM deletes the runtime with id.
func (l *SQLiteLedger) RemoveJVM(ctx context.Context, id string) error {
	result, err := l.db.ExecContext(ctx, "DELETE FROM jvms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete jvm: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrJVMNotFound
	}
	return nil
}

// ListJVMs returns every runtime, oldest first.
func (l *SQLiteLedger) ListJVMs(ctx context.Context) ([]*JVM, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT id, name, path, args, env, added_at FROM jvms ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list jvms: %w", err)
	}
	defer rows.Close()

	var jvms []*JVM
	for rows.Next() {
		jvm := &JVM{}
		var args, env string
		if err := rows.Scan(&jvm.ID, &jvm.Name, &jvm.Path, &args, &env, &jvm.AddedAt); err != nil {
			return nil, fmt.Errorf("scan jvm: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &jvm.Args); err != nil {
			return nil, fmt.Errorf("decode args of jvm %s: %w", jvm.ID, err)
		}
		if err := json.Unmarshal([]byte(env), &jvm.Env); err != nil {
			return nil, fmt.Errorf("decode env of jvm %s: %w", jvm.ID, err)
		}
		jvms = append(jvms, jvm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jvms: %w", err)
	}

	return jvms, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}
