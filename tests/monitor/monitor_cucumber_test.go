//go:build cucumber

package monitorfeatures

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"topicbook/internal/monitor"
	"topicbook/internal/testutil"
	"topicbook/pkg/topicbook"
	"topicbook/pkg/topicbook/httpclient"
)

// TestMonitorFeatures executes the task monitor scenarios via godog.
func TestMonitorFeatures(t *testing.T) {
	featurePath := filepath.Join("..", "..", "spec", "features", "monitor.feature")
	state := &monitorState{t: t}
	suite := godog.TestSuite{
		Name: "monitor",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			InitializeScenario(ctx, state)
		},
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{featurePath},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the monitor feature.
func InitializeScenario(ctx *godog.ScenarioContext, state *monitorState) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		state.close()
		return ctx, nil
	})

	ctx.Step(`^the backend assigns task "([^"]+)"$`, state.backendAssigns)
	ctx.Step(`^the backend fails every submission$`, state.backendFails)
	ctx.Step(`^task "([^"]+)" streams:$`, state.taskStreams)
	ctx.Step(`^task "([^"]+)" finishes with the sentinel$`, state.taskFinishes)
	ctx.Step(`^task "([^"]+)" stays open$`, state.taskHolds)
	ctx.Step(`^I submit the topic "([^"]+)"$`, state.submitTopic)
	ctx.Step(`^the log shows "([^"]+)"$`, state.logShows)
	ctx.Step(`^the session settles as "([^"]+)"$`, state.sessionSettles)
	ctx.Step(`^the log is:$`, state.logIs)
	ctx.Step(`^the monitor is not loading$`, state.notLoading)
	ctx.Step(`^no status stream was opened$`, state.noStreamOpened)
	ctx.Step(`^the log was reset before "([^"]+)" arrived$`, state.resetBefore)
	ctx.Step(`^no status stream is left open$`, state.noStreamLeftOpen)
}

const settleTimeout = 5 * time.Second

// monitorState holds scenario state for the feature tests.
type monitorState struct {
	t        *testing.T
	ids      []topicbook.TaskID
	tasks    map[topicbook.TaskID]testutil.ScriptedTask
	server   *testutil.ScriptedServer
	mon      *monitor.Monitor
	observer *journal
}

func (s *monitorState) reset() {
	s.close()
	s.ids = nil
	s.tasks = map[topicbook.TaskID]testutil.ScriptedTask{}
	s.server = nil
	s.observer = &journal{}
}

func (s *monitorState) close() {
	if s.mon != nil {
		s.mon.Close()
		s.mon = nil
	}
	if s.server != nil {
		s.server.Close()
	}
}

func (s *monitorState) backendAssigns(id string) error {
	s.ids = append(s.ids, topicbook.TaskID(id))
	return nil
}

func (s *monitorState) backendFails() error {
	s.ids = nil
	return nil
}

func (s *monitorState) taskStreams(id string, table *godog.Table) error {
	task := s.tasks[topicbook.TaskID(id)]
	task.Lines = append(task.Lines, tableLines(table)...)
	s.tasks[topicbook.TaskID(id)] = task
	return nil
}

func (s *monitorState) taskFinishes(id string) error {
	task := s.tasks[topicbook.TaskID(id)]
	task.Done = true
	s.tasks[topicbook.TaskID(id)] = task
	return nil
}

func (s *monitorState) taskHolds(id string) error {
	task := s.tasks[topicbook.TaskID(id)]
	task.Hold = true
	s.tasks[topicbook.TaskID(id)] = task
	return nil
}

// ensureMonitor starts the scripted backend and monitor on first use.
func (s *monitorState) ensureMonitor() {
	if s.mon != nil {
		return
	}
	s.server = testutil.NewScriptedServer(s.t, s.ids, s.tasks)
	client := httpclient.New(s.server.URL)
	s.mon = monitor.New(monitor.Config{
		Submitter: client,
		Streamer:  client,
		Observer:  s.observer,
	})
}

func (s *monitorState) submitTopic(topic string) error {
	s.ensureMonitor()
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	_, err := s.mon.Submit(ctx, topicbook.TaskRequest{Topic: topic})
	var subErr *topicbook.SubmissionError
	if err != nil && !errors.As(err, &subErr) {
		return err
	}
	return nil
}

func (s *monitorState) logShows(line string) error {
	deadline := time.Now().Add(settleTimeout)
	for time.Now().Before(deadline) {
		if slices.Contains(s.mon.Snapshot().Lines(), line) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("log never showed %q: %q", line, s.mon.Snapshot().Lines())
}

func (s *monitorState) sessionSettles(want string) error {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	snap, err := s.mon.Wait(ctx)
	if err != nil {
		return err
	}
	if snap.State.String() != want {
		return fmt.Errorf("expected state %s, got %s", want, snap.State)
	}
	return nil
}

func (s *monitorState) logIs(table *godog.Table) error {
	want := tableLines(table)
	got := s.mon.Snapshot().Lines()
	if !slices.Equal(want, got) {
		return fmt.Errorf("expected log %q, got %q", want, got)
	}
	return nil
}

func (s *monitorState) notLoading() error {
	if s.mon.Loading() {
		return errors.New("monitor is still loading")
	}
	return nil
}

func (s *monitorState) noStreamOpened() error {
	for _, entry := range s.observer.entries() {
		if entry == "task" {
			return errors.New("a status stream was opened")
		}
	}
	return nil
}

func (s *monitorState) resetBefore(line string) error {
	events := s.observer.entries()
	lastReset := -1
	for i, event := range events {
		switch event {
		case "reset":
			lastReset = i
		case "entry:" + line:
			if lastReset < 0 {
				return fmt.Errorf("no reset before %q: %q", line, events)
			}
			for _, earlier := range events[lastReset:i] {
				if earlier != "reset" && earlier != "task" && earlier != "state" {
					return fmt.Errorf("unexpected %q between reset and %q", earlier, line)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("%q never arrived: %q", line, events)
}

func (s *monitorState) noStreamLeftOpen() error {
	deadline := time.Now().Add(settleTimeout)
	for time.Now().Before(deadline) {
		if s.server.ActiveStreams() == 0 {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("%d status streams still open", s.server.ActiveStreams())
}

func tableLines(table *godog.Table) []string {
	lines := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		lines = append(lines, row.Cells[0].Value)
	}
	return lines
}

// journal records observer callbacks in arrival order.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) record(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *journal) entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.events)
}

func (j *journal) OnReset()                         { j.record("reset") }
func (j *journal) OnTask(topicbook.TaskID)          { j.record("task") }
func (j *journal) OnState(topicbook.State)          { j.record("state") }
func (j *journal) OnEntry(entry topicbook.LogEntry) { j.record("entry:" + entry.Text) }
func (j *journal) OnTerminal(topicbook.TaskID)      { j.record("terminal") }
func (j *journal) OnError(error)                    { j.record("error") }
