package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"topicbook/internal/config"
	"topicbook/internal/monitor"
	"topicbook/internal/ui/live"
	"topicbook/internal/ui/plain"
	"topicbook/pkg/topicbook"
	"topicbook/pkg/topicbook/httpclient"
)

// client is the backend surface the commands use.
type client interface {
	topicbook.Submitter
	topicbook.Streamer
	topicbook.Catalog
}

// newClient is a test seam for the HTTP client.
var newClient = func(cfg config.Config) client {
	return httpclient.NewWithTimeout(cfg.BaseURL, cfg.RequestTimeout)
}

// signalContext is a test seam for interrupt handling.
var signalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// session describes one monitored run.
type session struct {
	cfg      config.Config
	verbose  bool
	topic    string
	linger   bool
	start    func(ctx context.Context, mon *monitor.Monitor) error
	resubmit func(ctx context.Context, mon *monitor.Monitor) error
}

// runSession drives a monitor with the live or plain observer and maps the
// final state to an exit code.
func runSession(s session, stdout, stderr io.Writer) int {
	decision, err := resolveUIMode(s.cfg.UI, s.verbose, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return ExitUsage
	}
	if decision.warning != "" {
		fmt.Fprintln(stderr, decision.warning)
	}

	ctx, stop := signalContext(context.Background())
	defer stop()

	logger := newLogger(s.cfg, stderr)
	api := newClient(s.cfg)
	monCfg := monitor.Config{
		Submitter:          api,
		Streamer:           api,
		Logger:             logger,
		ReportStreamErrors: s.cfg.ReportStreamErrors,
	}

	if !decision.useLive {
		monCfg.Observer = plain.New(stdout, stderr, s.cfg.NoColor)
		mon := monitor.New(monCfg)
		defer mon.Close()
		return waitPlain(ctx, s, mon, stderr)
	}

	var mon *monitor.Monitor
	opts := live.Options{
		NoColor: s.cfg.NoColor,
		Topic:   s.topic,
		Linger:  s.linger,
	}
	if s.resubmit != nil {
		opts.Resubmit = func() error {
			err := s.resubmit(ctx, mon)
			if errors.Is(err, topicbook.ErrClosed) {
				return err
			}
			return nil
		}
	}
	controller := live.Start(stdout, opts)
	monCfg.Observer = controller
	mon = monitor.New(monCfg)
	return waitLive(ctx, s, mon, controller, stderr)
}

func waitPlain(ctx context.Context, s session, mon *monitor.Monitor, stderr io.Writer) int {
	if err := s.start(ctx, mon); err != nil && mon.Snapshot().State != topicbook.StateFailed {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitError
	}
	snap, err := mon.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(stderr, "interrupted")
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return ExitError
	}
	return exitCodeFor(snap.State)
}

func waitLive(ctx context.Context, s session, mon *monitor.Monitor, controller *live.Controller, stderr io.Writer) int {
	startErr := s.start(ctx, mon)
	if startErr != nil && mon.Snapshot().State != topicbook.StateFailed {
		controller.Quit()
	}

	interrupted := false
	select {
	case <-controller.Done():
	case <-ctx.Done():
		interrupted = true
		controller.Quit()
	}
	uiErr := controller.Wait()
	snap := mon.Snapshot()
	mon.Close()
	controller.Close()

	switch {
	case uiErr != nil:
		fmt.Fprintf(stderr, "live ui: %v\n", uiErr)
		return ExitError
	case interrupted:
		fmt.Fprintln(stderr, "interrupted")
		return ExitError
	case startErr != nil && snap.State != topicbook.StateFailed:
		fmt.Fprintf(stderr, "error: %v\n", startErr)
		return ExitError
	}
	if !snap.TaskID.IsZero() {
		fmt.Fprintf(stderr, "task %s %s\n", snap.TaskID, snap.State)
	}
	return exitCodeFor(snap.State)
}

func exitCodeFor(state topicbook.State) int {
	if state == topicbook.StateCompleted {
		return ExitOK
	}
	return ExitError
}
