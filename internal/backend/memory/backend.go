package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"topicbook/internal/backend"
	"topicbook/internal/logging"
	"topicbook/internal/pipeline"
	"topicbook/pkg/topicbook"
)

// DefaultWorkers bounds concurrent generations when Options.Workers is unset.
const DefaultWorkers = 2

// Store persists finished books.
type Store interface {
	Save(topic, content string) (string, error)
}

// Options wires dependencies for New.
type Options struct {
	Pipeline pipeline.Pipeline
	Store    Store
	Ledger   backend.Ledger
	Workers  int
	// Now stamps task creation and completion. Nil uses time.Now.
	Now      func() time.Time
	Logger   *slog.Logger
}

// MemoryBackend keeps tasks and their progress logs in memory.
type MemoryBackend struct {
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger
	pipe   pipeline.Pipeline
	store  Store
	ledger backend.Ledger
	sem    *semaphore.Weighted
	tasks  map[topicbook.TaskID]*task
	order  []topicbook.TaskID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ backend.Backend = (*MemoryBackend)(nil)

// New creates a MemoryBackend. A nil pipeline falls back to the scripted one.
func New(opts Options) *MemoryBackend {
	if opts.Pipeline == nil {
		opts.Pipeline = pipeline.Scripted{}
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryBackend{
		now:    opts.Now,
		logger: logging.OrDiscard(opts.Logger),
		pipe:   opts.Pipeline,
		store:  opts.Store,
		ledger: opts.Ledger,
		sem:    semaphore.NewWeighted(int64(opts.Workers)),
		tasks:  map[topicbook.TaskID]*task{},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close cancels running generations and waits for their workers.
func (m *MemoryBackend) Close() {
	m.cancel()
	m.wg.Wait()
}
