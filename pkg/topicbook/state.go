package topicbook

// State is the monitoring state of the current session.
type State int

const (
	// StateIdle is the initial state before any submission.
	StateIdle State = iota
	// StateSubmitting covers the in-flight creation request.
	StateSubmitting
	// StateStreaming means a status channel is open for the current task.
	StateStreaming
	// StateCompleted means the sentinel was received.
	StateCompleted
	// StateFailed means submission or streaming failed.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loading reports whether work is in progress for the session.
func (s State) Loading() bool {
	return s == StateSubmitting || s == StateStreaming
}

// Terminal reports whether the session has settled.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
