package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"topicbook/internal/backend"
	"topicbook/pkg/topicbook"
)

const maxRequestBytes = 64 << 10

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.backend == nil {
		h.writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	var req topicbook.TaskRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	id, err := h.backend.Create(r.Context(), req)
	if errors.Is(err, topicbook.ErrInvalidRequest) {
		h.writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err != nil {
		h.logger.Error("create task failed", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "backend_error")
		return
	}
	h.metrics.tasksCreated.Inc()
	writeJSON(w, http.StatusOK, topicbook.CreateTaskResponse{TaskID: id})
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if h.backend == nil {
		h.writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}
	id := topicbook.TaskID(chi.URLParam(r, "task_id"))
	stream := &sseWriter{w: w, flusher: flusher}

	h.metrics.activeStreams.Inc()
	defer h.metrics.activeStreams.Dec()

	status, err := h.backend.Follow(r.Context(), id, func(line string) error {
		if err := stream.start(); err != nil {
			return err
		}
		h.metrics.linesSent.Inc()
		return stream.data(line)
	})
	switch {
	case errors.Is(err, backend.ErrTaskNotFound):
		h.metrics.streamsClosed.WithLabelValues("not_found").Inc()
		h.writeError(w, http.StatusNotFound, "task_not_found")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.metrics.streamsClosed.WithLabelValues("client_gone").Inc()
		return
	case err != nil:
		h.metrics.streamsClosed.WithLabelValues("write_error").Inc()
		h.logger.Warn("status stream write failed", "task_id", id, "error", err)
		return
	}
	if err := stream.start(); err != nil {
		return
	}
	if status == backend.StatusSucceeded {
		_ = stream.data(topicbook.Sentinel)
	}
	// A failed task ends the stream without the sentinel.
	h.metrics.streamsClosed.WithLabelValues(string(status)).Inc()
}

func (h *handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}

	var (
		tasks []backend.TaskInfo
		err   error
	)
	switch {
	case h.history != nil:
		tasks, err = h.history.List(r.Context(), limit)
	case h.backend != nil:
		tasks, err = h.backend.Tasks(r.Context())
		if limit > 0 && len(tasks) > limit {
			tasks = tasks[:limit]
		}
	default:
		h.writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	if err != nil {
		h.logger.Error("list tasks failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	if tasks == nil {
		tasks = []backend.TaskInfo{}
	}
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: tasks})
}

func (h *handler) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusNotFound, "ledger_disabled")
		return
	}
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	stats, err := h.history.Stats(r.Context(), topic, r.URL.Query().Get("description"))
	if err != nil {
		h.logger.Error("topic stats failed", "topic", topic, "error", err)
		h.writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	if stats.Topic == "" {
		stats.Topic = topic
	}
	writeJSON(w, http.StatusOK, stats)
}

// sseWriter writes status lines as server-sent events. Headers are sent
// lazily so an unknown task can still be answered with a JSON 404.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseWriter) start() error {
	if s.started {
		return nil
	}
	s.started = true
	header := s.w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
	return nil
}

// data writes one event. Embedded newlines become separate data fields,
// which the receiver joins back with LF.
func (s *sseWriter) data(payload string) error {
	payload = strings.ReplaceAll(payload, "\r\n", "\n")
	payload = strings.ReplaceAll(payload, "\r", "\n")
	var b strings.Builder
	for _, line := range strings.Split(payload, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}
