package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigDirName  = ".topicbook"
	ConfigFileName = "config.yml"
)

// configFileNames are tried in order inside each .topicbook directory.
var configFileNames = []string{ConfigFileName, "config.yaml"}

// ErrConfigNotFound reports that no config file exists in the search path.
var ErrConfigNotFound = errors.New("config file not found")

// userConfigDir is a test seam for the per-user fallback location.
var userConfigDir = os.UserConfigDir

// ConfigPath returns where a project config lives under root.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigDirName, ConfigFileName)
}

// FindConfigPath looks for .topicbook/config.yml in startDir and each of its
// parents, then in the user config directory (topicbook/config.yml).
func FindConfigPath(startDir string) (string, error) {
	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		found, err := firstFile(filepath.Join(dir, ConfigDirName))
		if found != "" || err != nil {
			return found, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if base, err := userConfigDir(); err == nil && base != "" {
		found, err := firstFile(filepath.Join(base, "topicbook"))
		if found != "" || err != nil {
			return found, err
		}
	}
	return "", fmt.Errorf("no %s above %s: %w", filepath.Join(ConfigDirName, ConfigFileName), start, ErrConfigNotFound)
}

// firstFile returns the first config file name present in dir.
func firstFile(dir string) (string, error) {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return "", fmt.Errorf("stat config path %q: %w", candidate, err)
		case info.IsDir():
			return "", fmt.Errorf("config path %q is a directory", candidate)
		}
		return candidate, nil
	}
	return "", nil
}
