package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"topicbook/internal/backend"
	"topicbook/internal/pipeline"
	"topicbook/internal/testutil"
	"topicbook/pkg/topicbook"
)

type stubPipeline struct {
	lines []string
	err   error
	gate  chan struct{}
}

func (p stubPipeline) Run(ctx context.Context, _ topicbook.TaskRequest, emit pipeline.Emit) (string, error) {
	for i, line := range p.lines {
		emit(line)
		if i == 0 && p.gate != nil {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-p.gate:
			}
		}
	}
	if p.err != nil {
		return "", p.err
	}
	return "# book\n", nil
}

type stubStore struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func (s *stubStore) Save(topic, content string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[topic] = content
	return "Generated-Books/" + topic + ".md", nil
}

type recordingLedger struct {
	mu       sync.Mutex
	created  []backend.TaskInfo
	finished []backend.TaskInfo
}

func (l *recordingLedger) RecordCreated(_ context.Context, info backend.TaskInfo) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.created = append(l.created, info)
	return nil
}

func (l *recordingLedger) RecordFinished(_ context.Context, info backend.TaskInfo) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished = append(l.finished, info)
	return errors.New("ledger offline")
}

func (l *recordingLedger) finishedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.finished)
}

func newBackendForTest(t *testing.T, opts Options) *MemoryBackend {
	t.Helper()
	if opts.Now == nil {
		opts.Now = testutil.NewStepClock(time.Unix(1700000000, 0), time.Second).Now
	}
	b := New(opts)
	t.Cleanup(b.Close)
	return b
}

func create(t *testing.T, b *MemoryBackend, topic string) topicbook.TaskID {
	t.Helper()
	id, err := b.Create(testutil.Context(t, time.Second), topicbook.TaskRequest{Topic: topic})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return id
}

func follow(t *testing.T, b *MemoryBackend, id topicbook.TaskID) ([]string, backend.Status) {
	t.Helper()
	var lines []string
	status, err := b.Follow(testutil.Context(t, 2*time.Second), id, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	return lines, status
}
