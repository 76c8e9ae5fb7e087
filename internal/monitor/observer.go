package monitor

import "topicbook/pkg/topicbook"

// Observer receives session updates from a Monitor.
//
// Callbacks run synchronously and in order while the monitor holds its
// lock. Implementations must return promptly and must not call back into
// the Monitor.
type Observer interface {
	// OnReset signals that a new session started and the log was cleared.
	OnReset()
	// OnTask delivers the id of the task the session follows, just before
	// the session enters Streaming.
	OnTask(id topicbook.TaskID)
	// OnState delivers every state transition.
	OnState(state topicbook.State)
	// OnEntry delivers a log entry in arrival order.
	OnEntry(entry topicbook.LogEntry)
	// OnTerminal signals that the sentinel completed the session.
	OnTerminal(id topicbook.TaskID)
	// OnError signals a submission or stream failure.
	OnError(err error)
}

// NopObserver ignores all updates.
type NopObserver struct{}

func (NopObserver) OnReset()                    {}
func (NopObserver) OnTask(topicbook.TaskID)     {}
func (NopObserver) OnState(topicbook.State)     {}
func (NopObserver) OnEntry(topicbook.LogEntry)  {}
func (NopObserver) OnTerminal(topicbook.TaskID) {}
func (NopObserver) OnError(error)               {}

type multiObserver []Observer

// Observers fans updates out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) OnReset() {
	for _, o := range m {
		o.OnReset()
	}
}

func (m multiObserver) OnTask(id topicbook.TaskID) {
	for _, o := range m {
		o.OnTask(id)
	}
}

func (m multiObserver) OnState(state topicbook.State) {
	for _, o := range m {
		o.OnState(state)
	}
}

func (m multiObserver) OnEntry(entry topicbook.LogEntry) {
	for _, o := range m {
		o.OnEntry(entry)
	}
}

func (m multiObserver) OnTerminal(id topicbook.TaskID) {
	for _, o := range m {
		o.OnTerminal(id)
	}
}

func (m multiObserver) OnError(err error) {
	for _, o := range m {
		o.OnError(err)
	}
}
