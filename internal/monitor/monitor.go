// Package monitor drives one generation session at a time: it submits a
// task, follows the task's status stream, and keeps the ordered log and
// loading state that the presentation layer renders.
package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"topicbook/internal/logging"
	"topicbook/pkg/topicbook"
)

// Config wires a Monitor.
type Config struct {
	Submitter topicbook.Submitter
	Streamer  topicbook.Streamer
	Observer  Observer
	Logger    *slog.Logger
	// ReportStreamErrors appends topicbook.StreamFailedText to the log when
	// a status stream fails. Off by default: the absence of further lines
	// and loading=false are the failure signal.
	ReportStreamErrors bool
}

// Snapshot is a point-in-time copy of the monitor state.
type Snapshot struct {
	State   topicbook.State
	TaskID  topicbook.TaskID
	Entries []topicbook.LogEntry
}

// Loading reports whether the session is submitting or streaming.
func (s Snapshot) Loading() bool {
	return s.State.Loading()
}

// Lines returns the log entry texts in order.
func (s Snapshot) Lines() []string {
	lines := make([]string, len(s.Entries))
	for i, entry := range s.Entries {
		lines[i] = entry.Text
	}
	return lines
}

// Monitor owns the current session and its single status channel.
type Monitor struct {
	submitter    topicbook.Submitter
	streamer     topicbook.Streamer
	observer     Observer
	logger       *slog.Logger
	reportErrors bool

	base       context.Context
	cancelBase context.CancelFunc

	mu      sync.Mutex
	session uint64
	state   topicbook.State
	taskID  topicbook.TaskID
	entries []topicbook.LogEntry
	slot    *channelSlot
	settled chan struct{}
	closed  bool
}

// New constructs an idle Monitor.
func New(cfg Config) *Monitor {
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	base, cancel := context.WithCancel(context.Background())
	return &Monitor{
		submitter:    cfg.Submitter,
		streamer:     cfg.Streamer,
		observer:     observer,
		logger:       logging.OrDiscard(cfg.Logger),
		reportErrors: cfg.ReportStreamErrors,
		base:         base,
		cancelBase:   cancel,
		state:        topicbook.StateIdle,
		settled:      make(chan struct{}),
	}
}

// Submit starts a new session for req. Any previous session is torn down
// before the request is sent. On success the status channel for the
// returned task is opened in the background.
//
// If another Submit, Attach, or Close happens while the request is in
// flight, the result is discarded and ErrSuperseded is returned along with
// whatever id the backend assigned.
func (m *Monitor) Submit(ctx context.Context, req topicbook.TaskRequest) (topicbook.TaskID, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", topicbook.ErrClosed
	}
	session := m.beginLocked()
	m.setStateLocked(topicbook.StateSubmitting)
	m.mu.Unlock()

	m.logger.Debug("submitting task", "session", session, "topic", req.Topic)
	id, err := m.submit(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || session != m.session {
		m.logger.Debug("discarding superseded submission", "session", session, "task_id", id)
		return id, topicbook.ErrSuperseded
	}
	if err != nil {
		err = topicbook.AsSubmissionError(err)
		m.logger.Warn("task submission failed", "session", session, "error", err)
		m.appendLocked(topicbook.NewLogEntry(topicbook.SubmissionFailedText))
		m.setStateLocked(topicbook.StateFailed)
		m.observer.OnError(err)
		return "", err
	}
	m.streamLocked(id)
	return id, nil
}

// Attach starts a session that follows an existing task without
// submitting a new one.
func (m *Monitor) Attach(id topicbook.TaskID) error {
	if id.IsZero() {
		return errors.New("monitor: task id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return topicbook.ErrClosed
	}
	m.beginLocked()
	m.streamLocked(id)
	return nil
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Loading reports whether the current session is submitting or streaming.
func (m *Monitor) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Loading()
}

// Wait blocks until the current session completes or fails. It returns
// ErrSuperseded if a newer session replaced it and ErrClosed if the
// monitor was closed meanwhile.
func (m *Monitor) Wait(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	if !m.state.Loading() {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, nil
	}
	settled := m.settled
	session := m.session
	m.mu.Unlock()

	select {
	case <-settled:
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshotLocked()
	switch {
	case m.closed:
		return snap, topicbook.ErrClosed
	case m.session != session:
		return snap, topicbook.ErrSuperseded
	}
	return snap, nil
}

// Close tears the monitor down and releases any open channel.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.session++
	m.releaseLocked()
	m.closeSettledLocked()
	m.cancelBase()
}

func (m *Monitor) submit(ctx context.Context, req topicbook.TaskRequest) (topicbook.TaskID, error) {
	if m.submitter == nil {
		return "", &topicbook.SubmissionError{Err: errors.New("no submitter configured")}
	}
	return m.submitter.Submit(ctx, req)
}

// beginLocked invalidates the previous session: its channel is released
// before anything else so two channels never coexist.
func (m *Monitor) beginLocked() uint64 {
	m.session++
	m.releaseLocked()
	m.closeSettledLocked()
	m.settled = make(chan struct{})
	m.entries = nil
	m.taskID = ""
	m.observer.OnReset()
	return m.session
}

func (m *Monitor) streamLocked(id topicbook.TaskID) {
	m.taskID = id
	m.observer.OnTask(id)
	m.setStateLocked(topicbook.StateStreaming)
	slot := newChannelSlot(m.base, id, m.session)
	m.slot = slot
	m.logger.Debug("opening status channel", "session", m.session, "task_id", id)
	go m.watch(slot)
}

func (m *Monitor) watch(slot *channelSlot) {
	defer slot.release()
	if m.streamer == nil {
		m.fail(slot, errors.New("no streamer configured"))
		return
	}
	ch, err := m.streamer.OpenStatus(slot.ctx, slot.id)
	if err != nil {
		m.fail(slot, err)
		return
	}
	if !slot.attach(ch) {
		return
	}
	for {
		event, err := ch.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = topicbook.ErrStreamClosed
			}
			m.fail(slot, err)
			return
		}
		if m.deliver(slot, event) {
			return
		}
	}
}

// deliver applies one inbound event. It reports whether the watcher should stop.
func (m *Monitor) deliver(slot *channelSlot, event topicbook.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot != slot {
		return true
	}
	if !event.IsMessage() {
		m.logger.Debug("ignoring non-message event", "task_id", slot.id, "type", event.Type)
		return false
	}
	if event.Data == topicbook.Sentinel {
		m.slot = nil
		slot.release()
		m.logger.Debug("task completed", "session", slot.session, "task_id", slot.id, "entries", len(m.entries))
		m.setStateLocked(topicbook.StateCompleted)
		m.observer.OnTerminal(slot.id)
		return true
	}
	m.appendLocked(topicbook.NewLogEntry(event.Data))
	return false
}

// fail ends the session owning slot. Failures of released slots are the
// expected result of teardown and are dropped.
func (m *Monitor) fail(slot *channelSlot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot != slot {
		return
	}
	m.slot = nil
	slot.release()
	err = topicbook.AsStreamError(slot.id, err)
	m.logger.Warn("status stream failed", "session", slot.session, "task_id", slot.id, "error", err)
	if m.reportErrors {
		m.appendLocked(topicbook.NewLogEntry(topicbook.StreamFailedText))
	}
	m.setStateLocked(topicbook.StateFailed)
	m.observer.OnError(err)
}

func (m *Monitor) releaseLocked() {
	if m.slot == nil {
		return
	}
	m.logger.Debug("releasing status channel", "session", m.slot.session, "task_id", m.slot.id)
	m.slot.release()
	m.slot = nil
}

func (m *Monitor) appendLocked(entry topicbook.LogEntry) {
	m.entries = append(m.entries, entry)
	m.observer.OnEntry(entry)
}

func (m *Monitor) setStateLocked(state topicbook.State) {
	m.state = state
	m.observer.OnState(state)
	if state.Terminal() {
		m.closeSettledLocked()
	}
}

func (m *Monitor) closeSettledLocked() {
	select {
	case <-m.settled:
	default:
		close(m.settled)
	}
}

func (m *Monitor) snapshotLocked() Snapshot {
	entries := make([]topicbook.LogEntry, len(m.entries))
	copy(entries, m.entries)
	return Snapshot{State: m.state, TaskID: m.taskID, Entries: entries}
}
