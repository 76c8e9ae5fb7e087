package backend

import (
	"context"
	"errors"
	"time"

	"topicbook/pkg/topicbook"
)

// ErrTaskNotFound reports an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// Status is the lifecycle of a generation task on the server.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Finished reports whether the task will produce no more progress lines.
func (s Status) Finished() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// TaskInfo describes a task for listings and the ledger.
type TaskInfo struct {
	ID          topicbook.TaskID `json:"task_id"`
	Topic       string           `json:"topic"`
	Description string           `json:"description,omitempty"`
	Status      Status           `json:"status"`
	Filename    string           `json:"filename,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	FinishedAt  time.Time        `json:"finished_at,omitzero"`
}

// Backend provides server-side task operations.
type Backend interface {
	// Create registers a task and schedules its generation.
	Create(ctx context.Context, req topicbook.TaskRequest) (topicbook.TaskID, error)
	// Follow replays the task's progress from the first line and blocks
	// until the task finishes, emit fails or ctx ends. It returns the
	// final status.
	Follow(ctx context.Context, id topicbook.TaskID, emit func(line string) error) (Status, error)
	// Tasks lists known tasks, newest first.
	Tasks(ctx context.Context) ([]TaskInfo, error)
}

// Ledger records task lifecycle transitions outside the process.
type Ledger interface {
	RecordCreated(ctx context.Context, info TaskInfo) error
	RecordFinished(ctx context.Context, info TaskInfo) error
}

// TopicStats summarizes attempts for one normalized topic and description.
type TopicStats struct {
	Topic     string `json:"topic"`
	Attempts  int    `json:"attempts"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// History reads tasks recorded by a Ledger, including earlier server runs.
type History interface {
	// List returns up to limit tasks, newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]TaskInfo, error)
	Stats(ctx context.Context, topic, description string) (TopicStats, error)
}
