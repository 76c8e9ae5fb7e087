package config

import "time"

// UI modes accepted by Config.UI.
const (
	UIAuto  = "auto"
	UILive  = "live"
	UIPlain = "plain"
)

// Config holds client settings.
type Config struct {
	BaseURL            string        `mapstructure:"base_url"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	UI                 string        `mapstructure:"ui"`
	NoColor            bool          `mapstructure:"no_color"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	ReportStreamErrors bool          `mapstructure:"report_stream_errors"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
		UI:             UIAuto,
		LogLevel:       "warn",
		LogFormat:      "text",
	}
}
