package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"topicbook/internal/config"
)

// uiModeDecision says which observer renders the session.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode picks the live view only when stdout can host it. Verbose
// logs share the terminal with the view, so they force plain output.
func resolveUIMode(mode string, verbose bool, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = config.UIAuto
	}
	if normalized != config.UIAuto && normalized != config.UILive && normalized != config.UIPlain {
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
	if verbose || normalized == config.UIPlain {
		return uiModeDecision{}, nil
	}
	tty := isTerminal(stdout)
	if normalized == config.UILive && !tty {
		return uiModeDecision{warning: "Live UI requested but stdout is not a TTY; falling back to plain output."}, nil
	}
	return uiModeDecision{useLive: tty}, nil
}

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	fd, ok := fileDescriptor(stdout)
	return ok && term.IsTerminal(fd)
}

// terminalWidth returns the width of stdout, or fallback when unknown.
func terminalWidth(stdout io.Writer, fallback int) int {
	fd, ok := fileDescriptor(stdout)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func fileDescriptor(w io.Writer) (int, bool) {
	if w == nil {
		return 0, false
	}
	if file, ok := w.(*os.File); ok {
		return int(file.Fd()), true
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return int(fder.Fd()), true
	}
	return 0, false
}
