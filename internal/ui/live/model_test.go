package live

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicbook/pkg/topicbook"
)

func newTestModel(opts Options) Model {
	opts.NoColor = true
	m := NewModel(nil, opts)
	m.clock = func() time.Time { return time.Unix(0, 0) }
	return m
}

func apply(t *testing.T, m Model, events ...Event) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, event := range events {
		var next tea.Model
		next, cmd = m.Update(EventMsg{Event: event})
		m = next.(Model)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelShowsIdlePlaceholder(t *testing.T) {
	m := newTestModel(Options{})
	assert.Contains(t, m.View(), IdlePlaceholder)
}

func TestModelShowsWaitingPlaceholderWhileLoading(t *testing.T) {
	m := newTestModel(Options{})
	m, _ = apply(t, m,
		Event{Kind: EventReset},
		Event{Kind: EventState, State: topicbook.StateSubmitting},
	)
	view := m.View()
	assert.Contains(t, view, WaitingPlaceholder)
	assert.Contains(t, view, "Submitting")
}

func TestModelRendersLogAndQuitsOnCompletion(t *testing.T) {
	m := newTestModel(Options{Topic: "Quantum Computing"})
	m, cmd := apply(t, m,
		Event{Kind: EventReset},
		Event{Kind: EventState, State: topicbook.StateSubmitting},
		Event{Kind: EventTask, TaskID: "abc123"},
		Event{Kind: EventState, State: topicbook.StateStreaming},
		Event{Kind: EventEntry, Entry: topicbook.NewLogEntry("--- Chapter 1")},
		Event{Kind: EventEntry, Entry: topicbook.NewLogEntry("Generating outline...")},
	)
	assert.False(t, isQuit(cmd))

	view := m.View()
	assert.Contains(t, view, "TopicBook: Quantum Computing")
	assert.Contains(t, view, "task abc123")
	assert.Less(t, strings.Index(view, "--- Chapter 1"), strings.Index(view, "Generating outline..."))
	assert.NotContains(t, view, topicbook.Sentinel)

	m, cmd = apply(t, m,
		Event{Kind: EventState, State: topicbook.StateCompleted},
		Event{Kind: EventTerminal, TaskID: "abc123"},
	)
	assert.True(t, isQuit(cmd))
	assert.Contains(t, m.View(), "Completed")
}

func TestModelLingersAndResubmits(t *testing.T) {
	calls := 0
	m := newTestModel(Options{Linger: true, Resubmit: func() error {
		calls++
		return errors.New("backend down")
	}})
	m, cmd := apply(t, m,
		Event{Kind: EventReset},
		Event{Kind: EventState, State: topicbook.StateFailed},
		Event{Kind: EventError, Err: errors.New("submit task: http 500: boom")},
	)
	assert.False(t, isQuit(cmd))
	assert.Contains(t, m.View(), "r generate again")
	assert.Contains(t, m.View(), "error: submit task: http 500: boom")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, 1, calls)
	next, _ = next.(Model).Update(msg)
	assert.Equal(t, "backend down", next.(Model).State().LastError)
}

func TestModelIgnoresResubmitWhileLoading(t *testing.T) {
	m := newTestModel(Options{Linger: true, Resubmit: func() error {
		t.Fatal("resubmitted while loading")
		return nil
	}})
	m, _ = apply(t, m, Event{Kind: EventState, State: topicbook.StateStreaming})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestModelQuitKey(t *testing.T) {
	m := newTestModel(Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, isQuit(cmd))
}

func TestModelFollowsNewestLine(t *testing.T) {
	m := newTestModel(Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: chromeHeight + 3})
	m = next.(Model)
	var events []Event
	for i := 0; i < 20; i++ {
		events = append(events, Event{Kind: EventEntry, Entry: topicbook.NewLogEntry("line " + string(rune('a'+i)))})
	}
	m, _ = apply(t, m, events...)
	view := m.viewport.View()
	assert.Contains(t, view, "line t")
	assert.NotContains(t, view, "line a")
	assert.True(t, m.viewport.AtBottom())
}

func TestWaitForEventQuitsWhenClosed(t *testing.T) {
	events := make(chan Event)
	close(events)
	_, ok := waitForEvent(events)().(tea.QuitMsg)
	assert.True(t, ok)
}
