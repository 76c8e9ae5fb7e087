package live

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chromeHeight is the number of rows used around the log viewport.
const chromeHeight = 5

// Model renders a live console UI using Bubble Tea.
type Model struct {
	state        State
	spinner      spinner.Model
	viewport     viewport.Model
	events       <-chan Event
	opts         Options
	tickInterval time.Duration
	now          time.Time
	clock        func() time.Time
}

// Options configures the live UI model.
type Options struct {
	NoColor      bool
	Topic        string
	TickInterval time.Duration
	// Linger keeps the view open after the session settles.
	Linger bool
	// Resubmit starts a new session when the user presses r.
	Resubmit func() error
}

// NewModel constructs a live UI model for an event stream.
func NewModel(events <-chan Event, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !opts.NoColor {
		sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	}
	m := Model{
		state:        State{Topic: opts.Topic},
		spinner:      sp,
		viewport:     viewport.New(80, 20),
		events:       events,
		opts:         opts,
		tickInterval: tickInterval,
		now:          time.Now(),
		clock:        time.Now,
	}
	m.refresh()
	return m
}

// State returns the current view state.
func (m Model) State() State {
	return m.state
}

// Init starts the spinner and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.spinner.Tick, tick(m.tickInterval))
}

// Update consumes UI events, key presses and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch typed.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.opts.Resubmit != nil && !m.state.Loading() {
				return m, resubmit(m.opts.Resubmit)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(typed)
		return m, cmd
	case tea.WindowSizeMsg:
		m.viewport.Width = typed.Width
		m.viewport.Height = max(typed.Height-chromeHeight, 3)
		m.refresh()
		return m, nil
	case EventMsg:
		m.now = m.clock()
		m.state = Reduce(m.state, typed.Event, m.now)
		m.refresh()
		if m.settled(typed.Event) && !m.opts.Linger {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	case resubmitErrMsg:
		m.state.LastError = typed.err.Error()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	}
	return m, nil
}

// View renders the live UI.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderTitle(m.state, m.opts.NoColor),
		renderStatus(m.state, m.spinner.View(), m.now, m.opts.NoColor),
		"",
		m.viewport.View(),
		renderFooter(m.state, m.opts.Resubmit != nil && m.opts.Linger, m.opts.NoColor),
	)
}

// refresh re-renders the log and keeps the newest line in view.
func (m *Model) refresh() {
	m.viewport.SetContent(renderLog(m.state, m.opts.NoColor))
	m.viewport.GotoBottom()
}

// settled reports whether event closes the session. Terminal states are
// always followed by OnTerminal or OnError, so quitting on those keeps
// the final error in view.
func (m Model) settled(event Event) bool {
	switch event.Kind {
	case EventTerminal, EventError:
		return !m.state.Loading()
	}
	return false
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

type resubmitErrMsg struct {
	err error
}

// tickMsg carries a clock tick for updates.
type tickMsg time.Time

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}

func resubmit(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return resubmitErrMsg{err: err}
		}
		return nil
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
