package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TOPICBOOK_BASE_URL.
const EnvPrefix = "TOPICBOOK"

// Options controls where Load looks for settings.
type Options struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// SearchDir is where the upward search for .topicbook/config.yml
	// starts when Path is empty. Empty means the working directory.
	SearchDir string
	// Env looks up environment variables. Nil uses the process environment.
	Env func(string) (string, bool)
}

// Load layers defaults, the config file and environment overrides, then
// normalizes and validates the result. It returns the file used, if any.
func Load(opts Options) (Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		found, err := FindConfigPath(opts.SearchDir)
		switch {
		case errors.Is(err, ErrConfigNotFound):
		case err != nil:
			return Config{}, "", err
		default:
			path = found
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, path, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := bindEnv(v, opts.Env); err != nil {
		return Config{}, path, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, path, fmt.Errorf("decode config: %w", err)
	}
	Normalize(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("no_color", cfg.NoColor)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("report_stream_errors", cfg.ReportStreamErrors)
}

var envKeys = []string{
	"base_url",
	"request_timeout",
	"ui",
	"no_color",
	"log_level",
	"log_format",
	"report_stream_errors",
}

// bindEnv copies overrides into v. Explicit Set calls keep tests independent
// of the process environment.
func bindEnv(v *viper.Viper, lookup func(string) (string, bool)) error {
	if lookup == nil {
		v.SetEnvPrefix(EnvPrefix)
		for _, key := range envKeys {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("bind env %s: %w", key, err)
			}
		}
		return nil
	}
	for _, key := range envKeys {
		if value, ok := lookup(EnvPrefix + "_" + strings.ToUpper(key)); ok {
			v.Set(key, value)
		}
	}
	return nil
}
