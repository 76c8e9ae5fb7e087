package memory

import (
	"topicbook/internal/backend"
)

type task struct {
	info   backend.TaskInfo
	lines  []string
	notify chan struct{}
}

func newTask(info backend.TaskInfo) *task {
	return &task{info: info, notify: make(chan struct{})}
}

// wakeLocked releases every follower blocked on the current notify channel.
func (t *task) wakeLocked() {
	close(t.notify)
	t.notify = make(chan struct{})
}

func (m *MemoryBackend) appendLine(t *task, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.lines = append(t.lines, line)
	t.wakeLocked()
}

func (m *MemoryBackend) setStatus(t *task, status backend.Status, mutate func(*backend.TaskInfo)) backend.TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.info.Status = status
	if mutate != nil {
		mutate(&t.info)
	}
	if status.Finished() {
		t.info.FinishedAt = m.now()
	}
	t.wakeLocked()
	return t.info
}
