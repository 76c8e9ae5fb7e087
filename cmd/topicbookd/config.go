package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"topicbook/internal/devserver"
	"topicbook/internal/library"
	"topicbook/internal/logging"
)

// config describes the topicbookd YAML configuration.
type config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Library struct {
		Dir string `yaml:"dir"`
	} `yaml:"library"`
	Pipeline struct {
		StepDelayMS int `yaml:"step_delay_ms"`
		Workers     int `yaml:"workers"`
	} `yaml:"pipeline"`
	Ledger struct {
		Path string `yaml:"path"`
	} `yaml:"ledger"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// loadConfig reads the configuration file and fills defaults. A missing
// file at the default path yields the defaults.
func loadConfig(path string, required bool) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8000"
	}
	if cfg.Library.Dir == "" {
		cfg.Library.Dir = library.DefaultDir
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 2
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Pipeline.StepDelayMS < 0 {
		return cfg, fmt.Errorf("pipeline.step_delay_ms must not be negative")
	}
	if cfg.Pipeline.Workers < 0 {
		return cfg, fmt.Errorf("pipeline.workers must be positive")
	}
	if !logging.ValidFormat(cfg.Log.Format) {
		return cfg, fmt.Errorf("log.format must be text or json")
	}
	return cfg, nil
}

// serverConfig converts the file config into devserver settings.
func serverConfig(cfg config) devserver.Config {
	return devserver.Config{
		Addr:       cfg.Server.ListenAddr,
		LibraryDir: cfg.Library.Dir,
		LedgerPath: cfg.Ledger.Path,
		Workers:    cfg.Pipeline.Workers,
		StepDelay:  time.Duration(cfg.Pipeline.StepDelayMS) * time.Millisecond,
	}
}
