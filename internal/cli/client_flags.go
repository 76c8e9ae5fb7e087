package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"topicbook/internal/config"
	"topicbook/internal/logging"
)

// clientFlags are shared by the commands that talk to the backend.
type clientFlags struct {
	configPath string
	baseURL    string
	ui         string
	noColor    bool
	verbose    bool
	timeout    time.Duration
}

func (f *clientFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to config file (default: search for .topicbook/config.yml)")
	fs.StringVar(&f.baseURL, "base-url", "", "Backend base URL")
	fs.StringVar(&f.ui, "ui", "", "UI mode: auto|live|plain")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.verbose, "verbose", false, "Log debug output to stderr")
	fs.DurationVar(&f.timeout, "timeout", 0, "Timeout for non-streaming requests")
}

// load resolves the config file and applies flag overrides.
func (f *clientFlags) load() (config.Config, error) {
	cfg, _, err := loadConfig(config.Options{Path: f.configPath})
	if err != nil {
		return config.Config{}, err
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.ui != "" {
		cfg.UI = f.ui
	}
	if f.noColor {
		cfg.NoColor = true
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	if f.timeout > 0 {
		cfg.RequestTimeout = f.timeout
	}
	config.Normalize(&cfg)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config, stderr io.Writer) *slog.Logger {
	return logging.New(stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// loadConfig is a test seam for config resolution.
var loadConfig = config.Load

func reportConfigError(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Invalid configuration:\n%v\n", err)
	return ExitError
}
