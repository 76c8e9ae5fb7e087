// Package devserver runs a local generation backend that speaks the same
// HTTP contract as the production service.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"topicbook/internal/api"
	"topicbook/internal/backend"
	"topicbook/internal/backend/memory"
	"topicbook/internal/duckdb"
	"topicbook/internal/library"
	"topicbook/internal/logging"
	"topicbook/internal/pipeline"
)

const shutdownTimeout = 5 * time.Second

// Config captures the settings for the dev server.
type Config struct {
	Addr       string
	LibraryDir string
	LedgerPath string
	Workers    int
	StepDelay  time.Duration
	Logger     *slog.Logger
}

// Server owns the backend and HTTP handler for one dev server instance.
type Server struct {
	handler http.Handler
	backend *memory.MemoryBackend
	ledger  *duckdb.Ledger
	logger  *slog.Logger
}

// New wires the library, optional ledger, task backend and API handler.
func New(ctx context.Context, cfg Config) (*Server, error) {
	logger := logging.OrDiscard(cfg.Logger)
	if cfg.LibraryDir == "" {
		cfg.LibraryDir = library.DefaultDir
	}

	var (
		ledger  backend.Ledger
		history backend.History
		duck    *duckdb.Ledger
	)
	if cfg.LedgerPath != "" {
		opened, err := duckdb.Open(ctx, cfg.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("devserver: %w", err)
		}
		duck = opened
		ledger = opened
		history = opened
	}

	lib := library.New(cfg.LibraryDir)
	mem := memory.New(memory.Options{
		Pipeline: pipeline.Scripted{StepDelay: cfg.StepDelay},
		Store:    lib,
		Ledger:   ledger,
		Workers:  cfg.Workers,
		Logger:   logger,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	handler := api.NewHandler(api.Config{
		Backend:  mem,
		Books:    lib,
		History:  history,
		Logger:   logger,
		Registry: registry,
	})
	return &Server{handler: handler, backend: mem, ledger: duck, logger: logger}, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops running generations and closes the ledger.
func (s *Server) Close() error {
	s.backend.Close()
	if s.ledger != nil {
		return s.ledger.Close()
	}
	return nil
}

// Serve listens on cfg.Addr until ctx is canceled.
func Serve(ctx context.Context, cfg Config) error {
	if ctx == nil {
		return errors.New("devserver: context is nil")
	}
	if cfg.Addr == "" {
		return errors.New("devserver: addr is required")
	}
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("devserver: listen: %w", err)
	}
	return ServeListener(ctx, listener, cfg)
}

// ServeListener serves on an existing listener until ctx is canceled.
func ServeListener(ctx context.Context, listener net.Listener, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			srv.logger.Warn("close ledger failed", "error", err)
		}
	}()

	httpServer := &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.logger.Info("dev server listening", "addr", listener.Addr().String(), "library", cfg.LibraryDir)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		// Open status streams only end when their tasks do, so stop the
		// workers first and let the handlers drain.
		srv.backend.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
