package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"topicbook/internal/logging"
)

// ErrInvalidConfig is matched by every *ValidationError.
var ErrInvalidConfig = errors.New("invalid config")

// Issue is one rejected field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field, in check order.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ErrInvalidConfig.Error()
	}
	var b strings.Builder
	for i, issue := range err.Issues {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %s %s", issue.Field, issue.Message)
	}
	return b.String()
}

func (err *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate checks a normalized config.
func Validate(cfg Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.BaseURL == "" {
		add("base_url", "is required")
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("base_url", "must be an http(s) URL")
	}
	if cfg.RequestTimeout < 0 {
		add("request_timeout", "must not be negative")
	}
	switch cfg.UI {
	case UIAuto, UILive, UIPlain:
	default:
		add("ui", "must be one of auto, live, plain")
	}
	if cfg.LogLevel != "" {
		if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
			add("log_level", "must be one of debug, info, warn, error")
		}
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		add("log_format", "must be text or json")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
