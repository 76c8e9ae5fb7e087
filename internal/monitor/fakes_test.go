package monitor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"topicbook/pkg/topicbook"
)

// fakeChannel is an in-memory status channel driven by the test.
type fakeChannel struct {
	id     topicbook.TaskID
	events chan topicbook.Event
	errs   chan error
	closed chan struct{}
	once   sync.Once
	closes atomic.Int32
	owner  *fakeStreamer
}

func (c *fakeChannel) Next() (topicbook.Event, error) {
	select {
	case <-c.closed:
		return topicbook.Event{}, io.EOF
	default:
	}
	select {
	case event := <-c.events:
		return event, nil
	case err := <-c.errs:
		return topicbook.Event{}, err
	case <-c.closed:
		return topicbook.Event{}, io.EOF
	}
}

func (c *fakeChannel) Close() error {
	c.closes.Add(1)
	c.once.Do(func() {
		close(c.closed)
		c.owner.live.Add(-1)
	})
	return nil
}

func (c *fakeChannel) send(lines ...string) {
	for _, line := range lines {
		c.events <- topicbook.Event{Data: line}
	}
}

func (c *fakeChannel) sendEvent(event topicbook.Event) {
	c.events <- event
}

func (c *fakeChannel) fail(err error) {
	c.errs <- err
}

func (c *fakeChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeStreamer hands out fakeChannels and tracks how many are live.
type fakeStreamer struct {
	mu       sync.Mutex
	channels map[topicbook.TaskID]*fakeChannel
	opened   chan *fakeChannel
	openErr  map[topicbook.TaskID]error
	live     atomic.Int32
	maxLive  atomic.Int32
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{
		channels: map[topicbook.TaskID]*fakeChannel{},
		opened:   make(chan *fakeChannel, 16),
		openErr:  map[topicbook.TaskID]error{},
	}
}

func (s *fakeStreamer) OpenStatus(ctx context.Context, id topicbook.TaskID) (topicbook.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.openErr[id]; err != nil {
		return nil, err
	}
	ch := &fakeChannel{
		id:     id,
		events: make(chan topicbook.Event, 64),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
		owner:  s,
	}
	s.channels[id] = ch
	live := s.live.Add(1)
	for {
		prev := s.maxLive.Load()
		if live <= prev || s.maxLive.CompareAndSwap(prev, live) {
			break
		}
	}
	s.opened <- ch
	return ch, nil
}

func (s *fakeStreamer) channel(id topicbook.TaskID) *fakeChannel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[id]
}

func (s *fakeStreamer) openCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels)
}

type submitResult struct {
	id  topicbook.TaskID
	err error
}

// fakeSubmitter returns queued results. A result with a gate blocks until
// the gate is closed.
type fakeSubmitter struct {
	mu       sync.Mutex
	results  []submitResult
	gates    map[int]chan struct{}
	requests []topicbook.TaskRequest
}

func (s *fakeSubmitter) queue(id topicbook.TaskID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, submitResult{id: id, err: err})
}

func (s *fakeSubmitter) gate(call int) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gates == nil {
		s.gates = map[int]chan struct{}{}
	}
	gate := make(chan struct{})
	s.gates[call] = gate
	return gate
}

func (s *fakeSubmitter) Submit(ctx context.Context, req topicbook.TaskRequest) (topicbook.TaskID, error) {
	s.mu.Lock()
	call := len(s.requests)
	s.requests = append(s.requests, req)
	if call >= len(s.results) {
		s.mu.Unlock()
		return "", fmt.Errorf("unexpected submit #%d", call)
	}
	result := s.results[call]
	gate := s.gates[call]
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return result.id, result.err
}

func (s *fakeSubmitter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// recordingObserver captures every callback as a readable string.
type recordingObserver struct {
	mu      sync.Mutex
	events  []string
	states  []topicbook.State
	entries []string
	errs    []error
}

func (o *recordingObserver) OnReset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "reset")
	o.entries = nil
}

func (o *recordingObserver) OnTask(id topicbook.TaskID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "task:"+string(id))
}

func (o *recordingObserver) OnState(state topicbook.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "state:"+state.String())
	o.states = append(o.states, state)
}

func (o *recordingObserver) OnEntry(entry topicbook.LogEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "entry:"+entry.Text)
	o.entries = append(o.entries, entry.Text)
}

func (o *recordingObserver) OnTerminal(id topicbook.TaskID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "terminal:"+string(id))
}

func (o *recordingObserver) OnError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "error")
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) snapshot() ([]string, []topicbook.State, []string, []error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...),
		append([]topicbook.State(nil), o.states...),
		append([]string(nil), o.entries...),
		append([]error(nil), o.errs...)
}
