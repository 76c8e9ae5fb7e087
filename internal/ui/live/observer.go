package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"topicbook/internal/monitor"
	"topicbook/pkg/topicbook"
)

// Controller runs the live UI and implements monitor.Observer.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	err     error

	mu     sync.Mutex
	closed bool
}

var _ monitor.Observer = (*Controller)(nil)

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options, programOpts ...tea.ProgramOption) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	programOpts = append([]tea.ProgramOption{tea.WithOutput(stdout)}, programOpts...)
	program := tea.NewProgram(model, programOpts...)
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, controller.err = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop once queued events are drawn.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Quit stops the UI immediately.
func (c *Controller) Quit() {
	if c == nil {
		return
	}
	c.program.Quit()
}

// Done is closed when the UI has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the UI has exited and returns its error.
func (c *Controller) Wait() error {
	if c == nil {
		return nil
	}
	<-c.done
	return c.err
}

// OnReset forwards session resets to the UI.
func (c *Controller) OnReset() {
	c.send(Event{Kind: EventReset})
}

// OnTask forwards the followed task id to the UI.
func (c *Controller) OnTask(id topicbook.TaskID) {
	c.send(Event{Kind: EventTask, TaskID: id})
}

// OnState forwards state transitions to the UI.
func (c *Controller) OnState(state topicbook.State) {
	c.send(Event{Kind: EventState, State: state})
}

// OnEntry forwards log entries to the UI.
func (c *Controller) OnEntry(entry topicbook.LogEntry) {
	c.send(Event{Kind: EventEntry, Entry: entry})
}

// OnTerminal forwards completion to the UI.
func (c *Controller) OnTerminal(id topicbook.TaskID) {
	c.send(Event{Kind: EventTerminal, TaskID: id})
}

// OnError forwards failures to the UI.
func (c *Controller) OnError(err error) {
	c.send(Event{Kind: EventError, Err: err})
}

// send delivers an event in order. It blocks while the UI is busy and
// drops the event once the UI has exited, so log lines are never lost
// while the view is up.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	case <-c.done:
	}
}
