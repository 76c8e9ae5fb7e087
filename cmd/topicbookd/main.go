package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"topicbook/internal/devserver"
	"topicbook/internal/logging"
)

const defaultConfigPath = "topicbookd.yaml"

// main launches topicbookd.
func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes topicbookd and returns an exit code.
func run(args []string) int {
	fs := flag.NewFlagSet("topicbookd", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "path to topicbookd config")
	listen := fs.String("listen", "", "override server.listen_addr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	if *listen != "" {
		cfg.Server.ListenAddr = *listen
	}

	logger := logging.New(os.Stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	serverCfg := serverConfig(cfg)
	serverCfg.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := devserver.Serve(ctx, serverCfg); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}
