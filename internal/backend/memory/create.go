package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"topicbook/internal/backend"
	"topicbook/pkg/topicbook"
)

// Create registers a pending task and hands it to a worker.
func (m *MemoryBackend) Create(ctx context.Context, req topicbook.TaskRequest) (topicbook.TaskID, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := m.ctx.Err(); err != nil {
		return "", fmt.Errorf("backend closed: %w", err)
	}
	info := backend.TaskInfo{
		ID:          topicbook.TaskID(uuid.NewString()),
		Topic:       req.Topic,
		Description: req.Description,
		Status:      backend.StatusPending,
		CreatedAt:   m.now(),
	}
	t := newTask(info)

	m.mu.Lock()
	m.tasks[info.ID] = t
	m.order = append(m.order, info.ID)
	m.wg.Add(1)
	m.mu.Unlock()

	if m.ledger != nil {
		if err := m.ledger.RecordCreated(ctx, info); err != nil {
			m.logger.Warn("ledger record failed", "task_id", info.ID, "error", err)
		}
	}
	m.logger.Info("task created", "task_id", info.ID, "topic", info.Topic)

	go m.run(t, req)
	return info.ID, nil
}
