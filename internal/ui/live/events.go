package live

import "topicbook/pkg/topicbook"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventReset clears the log for a new session.
	EventReset EventKind = iota
	// EventTask names the task being followed.
	EventTask
	// EventState delivers a session state transition.
	EventState
	// EventEntry appends one log line.
	EventEntry
	// EventTerminal signals the completion sentinel.
	EventTerminal
	// EventError reports a submission or stream failure.
	EventError
)

// Event carries a UI update payload.
type Event struct {
	Kind   EventKind
	TaskID topicbook.TaskID
	State  topicbook.State
	Entry  topicbook.LogEntry
	Err    error
}
