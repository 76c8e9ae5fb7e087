package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"topicbook/internal/devserver"
	"topicbook/internal/library"
	"topicbook/internal/logging"
)

// serveDev is a test seam for running the dev backend.
var serveDev = devserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		addr := fs.String("addr", "127.0.0.1:8000", "Address to listen on")
		libraryDir := fs.String("library", library.DefaultDir, "Directory for generated books")
		ledgerPath := fs.String("ledger", "", "DuckDB file recording task history")
		workers := fs.Int("workers", 2, "Concurrent generation tasks")
		stepDelay := fs.Duration("step-delay", 300*time.Millisecond, "Pause between pipeline steps")
		logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}
		if *addr == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}
		if *workers < 1 {
			fmt.Fprintln(stderr, "--workers must be at least 1")
			return ExitUsage
		}
		if _, err := logging.ParseLevel(*logLevel); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}

		cfg := devserver.Config{
			Addr:       *addr,
			LibraryDir: *libraryDir,
			LedgerPath: *ledgerPath,
			Workers:    *workers,
			StepDelay:  *stepDelay,
			Logger:     logging.New(stderr, logging.Options{Level: *logLevel}),
		}
		ctx, stop := signalContext(context.Background())
		defer stop()

		fmt.Fprintf(stdout, "Serving generation backend at http://%s\n", cfg.Addr)
		if err := serveDev(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
