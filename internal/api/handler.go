package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"topicbook/internal/backend"
	"topicbook/internal/logging"
	"topicbook/pkg/topicbook"
)

// WelcomeMessage is served from GET /.
const WelcomeMessage = "Welcome to the TopicBook API!"

// Books serves finished artifacts.
type Books interface {
	List() ([]string, error)
	Get(filename string) (topicbook.Book, error)
}

// Config wires dependencies for the HTTP handler.
type Config struct {
	Backend  backend.Backend
	Books    Books
	History  backend.History
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// NewHandler builds the HTTP handler for the generation API.
func NewHandler(cfg Config) http.Handler {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	h := &handler{
		backend: cfg.Backend,
		books:   cfg.Books,
		history: cfg.History,
		logger:  logging.OrDiscard(cfg.Logger),
		metrics: newMetrics(cfg.Registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/", h.handleWelcome)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	r.Post("/generate", h.handleGenerate)
	r.Get("/status/{task_id}", h.handleStatus)
	r.Get("/tasks", h.handleTasks)
	r.Get("/tasks/stats", h.handleTaskStats)
	r.Get("/books", h.handleBooks)
	r.Get("/books/{filename}", h.handleBook)
	return r
}

type handler struct {
	backend backend.Backend
	books   Books
	history backend.History
	logger  *slog.Logger
	metrics *metrics
}

func (h *handler) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: WelcomeMessage})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true})
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
