package monitor

import (
	"context"
	"sync"

	"topicbook/pkg/topicbook"
)

// channelSlot owns at most one open status channel for a task.
type channelSlot struct {
	id      topicbook.TaskID
	session uint64
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	channel  topicbook.Channel
	released bool
	once     sync.Once
}

func newChannelSlot(parent context.Context, id topicbook.TaskID, session uint64) *channelSlot {
	ctx, cancel := context.WithCancel(parent)
	return &channelSlot{id: id, session: session, ctx: ctx, cancel: cancel}
}

// attach stores an opened channel. It closes the channel and reports false
// when the slot was released while the channel was being opened.
func (s *channelSlot) attach(ch topicbook.Channel) bool {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		_ = ch.Close()
		return false
	}
	s.channel = ch
	s.mu.Unlock()
	return true
}

// release cancels the open or pending channel exactly once.
func (s *channelSlot) release() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.released = true
		ch := s.channel
		s.mu.Unlock()
		if ch != nil {
			_ = ch.Close()
		}
	})
}
