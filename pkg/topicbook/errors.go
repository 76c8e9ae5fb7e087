package topicbook

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest reports a TaskRequest that cannot be submitted.
	ErrInvalidRequest = errors.New("invalid task request")
	// ErrMalformedEvent reports a status stream payload that is not valid text.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrStreamClosed reports a status stream that ended before the sentinel.
	ErrStreamClosed = errors.New("stream closed before completion")
	// ErrSuperseded reports a session replaced by a newer one before it resolved.
	ErrSuperseded = errors.New("session superseded")
	// ErrClosed reports use of a monitor after Close.
	ErrClosed = errors.New("monitor closed")
	// ErrBookNotFound reports an unknown artifact filename.
	ErrBookNotFound = errors.New("book not found")
)

// SubmissionError reports a failed POST /generate.
type SubmissionError struct {
	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submit task: http %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submit task: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// StreamError reports a channel-level failure after a session started.
type StreamError struct {
	TaskID TaskID
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("status stream %s: %v", e.TaskID, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// AsSubmissionError wraps err as a SubmissionError unless it already is one.
func AsSubmissionError(err error) error {
	if err == nil {
		return nil
	}
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return err
	}
	return &SubmissionError{Err: err}
}

// AsStreamError wraps err as a StreamError for the task unless it already is one.
func AsStreamError(id TaskID, err error) error {
	if err == nil {
		return nil
	}
	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return err
	}
	return &StreamError{TaskID: id, Err: err}
}
