package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"topicbook/internal/backend"
	"topicbook/pkg/topicbook"
)

// Ledger records task lifecycles in DuckDB.
type Ledger struct {
	db *sql.DB
}

var (
	_ backend.Ledger  = (*Ledger)(nil)
	_ backend.History = (*Ledger)(nil)
)

// Open opens (or creates) the ledger at path and applies the schema. An
// empty path opens an in-memory database.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("duckdb: ping %q: %w", path, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// NewLedger wraps an existing connection. The schema must already exist.
func NewLedger(db *sql.DB) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("duckdb: db is nil")
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordCreated inserts a new task row.
func (l *Ledger) RecordCreated(ctx context.Context, info backend.TaskInfo) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO tasks (task_id, request_key, topic, description, status, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID.String(),
		RequestKey(info.Topic, info.Description),
		info.Topic,
		info.Description,
		string(info.Status),
		info.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("duckdb: insert task %s: %w", info.ID, err)
	}
	return nil
}

// RecordFinished stores the final status of a task.
func (l *Ledger) RecordFinished(ctx context.Context, info backend.TaskInfo) error {
	res, err := l.db.ExecContext(ctx, `
UPDATE tasks SET status = ?, filename = ?, error = ?, finished_at = ?
WHERE task_id = ?`,
		string(info.Status),
		nullString(info.Filename),
		nullString(info.Error),
		nullTime(info.FinishedAt),
		info.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("duckdb: update task %s: %w", info.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("duckdb: update task %s: %w", info.ID, backend.ErrTaskNotFound)
	}
	return nil
}

// List returns up to limit tasks, newest first. A limit of zero or less
// returns every task.
func (l *Ledger) List(ctx context.Context, limit int) ([]backend.TaskInfo, error) {
	query := `
SELECT task_id, topic, description, status, filename, error, created_at, finished_at
FROM tasks ORDER BY created_at DESC, task_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("duckdb: list tasks: %w", err)
	}
	defer rows.Close()

	var out []backend.TaskInfo
	for rows.Next() {
		var (
			info              backend.TaskInfo
			id, status        string
			filename, errText sql.NullString
			finishedAt        sql.NullTime
		)
		if err := rows.Scan(&id, &info.Topic, &info.Description, &status, &filename, &errText, &info.CreatedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("duckdb: scan task: %w", err)
		}
		info.ID = topicbook.TaskID(id)
		info.Status = backend.Status(status)
		info.Filename = filename.String
		info.Error = errText.String
		if finishedAt.Valid {
			info.FinishedAt = finishedAt.Time
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Stats returns the attempt summary for a topic and description.
func (l *Ledger) Stats(ctx context.Context, topic, description string) (backend.TopicStats, error) {
	var stats backend.TopicStats
	err := l.db.QueryRowContext(ctx, `
SELECT topic, attempts, succeeded, failed FROM v_topic_stats WHERE request_key = ?`,
		RequestKey(topic, description),
	).Scan(&stats.Topic, &stats.Attempts, &stats.Succeeded, &stats.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.TopicStats{}, nil
	}
	if err != nil {
		return backend.TopicStats{}, fmt.Errorf("duckdb: topic stats: %w", err)
	}
	return stats, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullTime(value time.Time) sql.NullTime {
	return sql.NullTime{Time: value.UTC(), Valid: !value.IsZero()}
}
