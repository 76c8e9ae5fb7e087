package memory

import (
	"context"
	"slices"

	"topicbook/internal/backend"
	"topicbook/pkg/topicbook"
)

// Follow replays every progress line of the task and then waits for more
// until the task finishes.
func (m *MemoryBackend) Follow(ctx context.Context, id topicbook.TaskID, emit func(line string) error) (backend.Status, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return "", backend.ErrTaskNotFound
	}

	cursor := 0
	for {
		m.mu.Lock()
		pending := slices.Clone(t.lines[cursor:])
		status := t.info.Status
		wait := t.notify
		m.mu.Unlock()

		for _, line := range pending {
			if err := emit(line); err != nil {
				return status, err
			}
		}
		cursor += len(pending)
		if status.Finished() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-wait:
		}
	}
}

// Tasks lists every known task, newest first.
func (m *MemoryBackend) Tasks(ctx context.Context) ([]backend.TaskInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]backend.TaskInfo, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.tasks[m.order[i]].info)
	}
	return out, nil
}

// Task returns a single task's info.
func (m *MemoryBackend) Task(id topicbook.TaskID) (backend.TaskInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return backend.TaskInfo{}, false
	}
	return t.info, true
}
