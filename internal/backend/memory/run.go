package memory

import (
	"context"
	"fmt"

	"topicbook/internal/backend"
	"topicbook/pkg/topicbook"
)

// SuccessPrefix starts the last progress line of a successful generation.
const SuccessPrefix = "🎉 Success! Your TopicBook has been generated: "

func (m *MemoryBackend) run(t *task, req topicbook.TaskRequest) {
	defer m.wg.Done()
	id := t.info.ID

	if err := m.sem.Acquire(m.ctx, 1); err != nil {
		m.finishFailed(t, err)
		return
	}
	defer m.sem.Release(1)

	m.setStatus(t, backend.StatusRunning, nil)
	m.logger.Debug("task running", "task_id", id)

	content, err := m.pipe.Run(m.ctx, req, func(line string) {
		m.appendLine(t, line)
	})
	if err != nil {
		m.finishFailed(t, err)
		return
	}

	var path string
	if m.store != nil {
		path, err = m.store.Save(req.Topic, content)
		if err != nil {
			m.finishFailed(t, fmt.Errorf("save book: %w", err))
			return
		}
	}
	if path != "" {
		m.appendLine(t, SuccessPrefix+path)
	}
	info := m.setStatus(t, backend.StatusSucceeded, func(info *backend.TaskInfo) {
		info.Filename = path
	})
	m.logger.Info("task succeeded", "task_id", id, "filename", path)
	m.record(info)
}

func (m *MemoryBackend) finishFailed(t *task, err error) {
	m.appendLine(t, fmt.Sprintf("❌ Could not complete generation: %v. Exiting.", err))
	info := m.setStatus(t, backend.StatusFailed, func(info *backend.TaskInfo) {
		info.Error = err.Error()
	})
	m.logger.Warn("task failed", "task_id", t.info.ID, "error", err)
	m.record(info)
}

func (m *MemoryBackend) record(info backend.TaskInfo) {
	if m.ledger == nil {
		return
	}
	// The backend context may already be canceled during shutdown.
	if err := m.ledger.RecordFinished(context.WithoutCancel(m.ctx), info); err != nil {
		m.logger.Warn("ledger record failed", "task_id", info.ID, "error", err)
	}
}
