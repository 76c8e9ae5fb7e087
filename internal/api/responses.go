package api

import (
	"encoding/json"
	"net/http"

	"topicbook/internal/backend"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

type tasksResponse struct {
	Tasks []backend.TaskInfo `json:"tasks"`
}

func (h *handler) writeError(w http.ResponseWriter, status int, code string) {
	h.metrics.rejected.WithLabelValues(code).Inc()
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"encode_failed"}`)
	}
	writeBytes(w, status, data)
}

func writeBytes(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
