package live

import (
	"time"

	"topicbook/pkg/topicbook"
)

// State captures what the live view shows for the current session.
type State struct {
	Topic     string
	TaskID    topicbook.TaskID
	Phase     topicbook.State
	Entries   []topicbook.LogEntry
	LastError string
	StartedAt time.Time
	EndedAt   time.Time
}

// Loading mirrors the monitor's loading flag.
func (s State) Loading() bool {
	return s.Phase.Loading()
}

// Elapsed returns how long the session has been running, or ran for.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.EndedAt.IsZero() {
		now = s.EndedAt
	}
	return now.Sub(s.StartedAt)
}
