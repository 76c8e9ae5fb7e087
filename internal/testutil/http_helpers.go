package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"topicbook/pkg/topicbook"
)

// Record serves one request against handler and returns the recorder.
func Record(t testing.TB, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ScriptedTask describes how a ScriptedServer answers for one task.
type ScriptedTask struct {
	Lines []string
	// Done appends the [DONE] sentinel after Lines.
	Done bool
	// Hold keeps the stream open after Lines until the server closes.
	Hold bool
}

// ScriptedServer is a fake generation backend with canned responses. Each
// POST /generate pops the next task id from IDs.
type ScriptedServer struct {
	URL string

	mu       sync.Mutex
	ids      []topicbook.TaskID
	tasks    map[topicbook.TaskID]ScriptedTask
	requests []topicbook.TaskRequest
	streams  int
	release  chan struct{}
	server   *httptest.Server
}

// NewScriptedServer starts a scripted server that is closed with the test.
func NewScriptedServer(t testing.TB, ids []topicbook.TaskID, tasks map[topicbook.TaskID]ScriptedTask) *ScriptedServer {
	t.Helper()
	s := &ScriptedServer{
		ids:     append([]topicbook.TaskID(nil), ids...),
		tasks:   tasks,
		release: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /status/{task_id}", s.handleStatus)
	s.server = httptest.NewServer(mux)
	s.URL = s.server.URL
	t.Cleanup(s.Close)
	return s
}

// Close releases held streams and stops the server.
func (s *ScriptedServer) Close() {
	s.mu.Lock()
	select {
	case <-s.release:
	default:
		close(s.release)
	}
	s.mu.Unlock()
	s.server.Close()
}

// Requests returns the decoded bodies of every POST /generate.
func (s *ScriptedServer) Requests() []topicbook.TaskRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]topicbook.TaskRequest(nil), s.requests...)
}

// ActiveStreams returns the number of status streams still being served.
func (s *ScriptedServer) ActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams
}

func (s *ScriptedServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req topicbook.TaskRequest
	_ = decodeJSON(r, &req)
	s.mu.Lock()
	s.requests = append(s.requests, req)
	if len(s.ids) == 0 {
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"no_task_scripted"}`))
		return
	}
	id := s.ids[0]
	s.ids = s.ids[1:]
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"task_id":%q}`, id)
}

func (s *ScriptedServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := topicbook.TaskID(r.PathValue("task_id"))
	s.mu.Lock()
	task, ok := s.tasks[id]
	if ok {
		s.streams++
	}
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer func() {
		s.mu.Lock()
		s.streams--
		s.mu.Unlock()
	}()
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	write := func(data string) {
		for _, line := range strings.Split(data, "\n") {
			_, _ = fmt.Fprintf(w, "data: %s\n", line)
		}
		_, _ = fmt.Fprint(w, "\n")
		if flusher != nil {
			flusher.Flush()
		}
	}
	for _, line := range task.Lines {
		write(line)
	}
	if task.Done {
		write(topicbook.Sentinel)
	}
	if task.Hold {
		select {
		case <-r.Context().Done():
		case <-s.release:
		}
	}
}
