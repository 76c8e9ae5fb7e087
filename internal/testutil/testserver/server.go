// Package testserver starts the generation API for integration tests.
package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"topicbook/internal/api"
	"topicbook/internal/backend"
	"topicbook/internal/backend/memory"
	"topicbook/internal/library"
	"topicbook/internal/pipeline"
)

// ServerConfig wires dependencies for StartServer.
type ServerConfig struct {
	Backend    backend.Backend
	Pipeline   pipeline.Pipeline
	LibraryDir string
}

// ServerInstance represents a running HTTP test server.
type ServerInstance struct {
	BaseURL string
	Library *library.Library
	Close   func()
}

// StartServer launches the generation API over httptest. Without an
// explicit backend it runs an in-memory one backed by a temp library.
func StartServer(t testing.TB, cfg ServerConfig) *ServerInstance {
	t.Helper()
	if cfg.LibraryDir == "" {
		cfg.LibraryDir = t.TempDir()
	}
	lib := library.New(cfg.LibraryDir)
	closers := []func(){}
	if cfg.Backend == nil {
		mem := memory.New(memory.Options{Pipeline: cfg.Pipeline, Store: lib})
		cfg.Backend = mem
		closers = append(closers, mem.Close)
	}
	server := httptest.NewServer(api.NewHandler(api.Config{
		Backend:  cfg.Backend,
		Books:    lib,
		Registry: prometheus.NewRegistry(),
	}))
	inst := &ServerInstance{
		BaseURL: server.URL,
		Library: lib,
	}
	inst.Close = func() {
		for _, closeFn := range closers {
			closeFn()
		}
		server.Close()
	}
	t.Cleanup(inst.Close)
	return inst
}
