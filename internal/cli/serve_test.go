package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"topicbook/internal/devserver"
)

// TestServeCommandPassesConfig ensures serve forwards parsed flags to the dev server.
func TestServeCommandPassesConfig(t *testing.T) {
	var gotConfig devserver.Config
	origServe := serveDev
	serveDev = func(_ context.Context, cfg devserver.Config) error {
		gotConfig = cfg
		return nil
	}
	t.Cleanup(func() { serveDev = origServe })

	cmd := findCommand("serve")
	if cmd == nil {
		t.Fatalf("serve command not found")
	}
	var stdout, stderr bytes.Buffer
	exitCode := cmd.Run([]string{
		"--addr", "127.0.0.1:8123",
		"--library", "books",
		"--ledger", "tasks.duckdb",
		"--workers", "3",
		"--step-delay", "5ms",
	}, &stdout, &stderr)
	if exitCode != ExitOK {
		t.Fatalf("expected exit ok, got %d: %s", exitCode, stderr.String())
	}
	if gotConfig.Addr != "127.0.0.1:8123" {
		t.Fatalf("unexpected addr: %s", gotConfig.Addr)
	}
	if gotConfig.LibraryDir != "books" || gotConfig.LedgerPath != "tasks.duckdb" {
		t.Fatalf("unexpected paths: %+v", gotConfig)
	}
	if gotConfig.Workers != 3 || gotConfig.StepDelay != 5*time.Millisecond {
		t.Fatalf("unexpected pipeline settings: %+v", gotConfig)
	}
	if gotConfig.Logger == nil {
		t.Fatalf("expected logger")
	}
}

func TestServeCommandRejectsBadFlags(t *testing.T) {
	cmd := findCommand("serve")
	for _, args := range [][]string{
		{"--workers", "0"},
		{"--addr", ""},
		{"--log-level", "loud"},
		{"extra"},
	} {
		var stdout, stderr bytes.Buffer
		if code := cmd.Run(args, &stdout, &stderr); code != ExitUsage {
			t.Fatalf("%v: expected usage exit, got %d", args, code)
		}
	}
}

func TestServeCommandReportsServerError(t *testing.T) {
	origServe := serveDev
	serveDev = func(context.Context, devserver.Config) error {
		return errors.New("address in use")
	}
	t.Cleanup(func() { serveDev = origServe })

	var stdout, stderr bytes.Buffer
	if code := findCommand("serve").Run(nil, &stdout, &stderr); code != ExitError {
		t.Fatalf("expected error exit, got %d", code)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("address in use")) {
		t.Fatalf("expected server error, got %q", stderr.String())
	}
}
