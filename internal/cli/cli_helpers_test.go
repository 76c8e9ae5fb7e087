package cli

import (
	"bytes"
	"testing"

	"topicbook/internal/config"
)

type runResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the CLI with config discovery isolated from the host.
func runCLI(t *testing.T, args ...string) runResult {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	original := loadConfig
	loadConfig = func(opts config.Options) (config.Config, string, error) {
		opts.SearchDir = t.TempDir()
		opts.Env = func(string) (string, bool) { return "", false }
		return original(opts)
	}
	t.Cleanup(func() { loadConfig = original })

	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}
