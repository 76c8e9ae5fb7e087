package live

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"topicbook/pkg/topicbook"
)

const (
	// IdlePlaceholder is shown before the first generation.
	IdlePlaceholder = "The log will appear here once you start a generation."
	// WaitingPlaceholder is shown while loading with an empty log.
	WaitingPlaceholder = "Waiting for task to start..."
)

// renderLog renders the log panel content.
func renderLog(state State, noColor bool) string {
	if len(state.Entries) == 0 {
		placeholder := IdlePlaceholder
		if state.Loading() {
			placeholder = WaitingPlaceholder
		}
		return stylize(placeholder, noColor, lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true))
	}
	lines := make([]string, len(state.Entries))
	for i, entry := range state.Entries {
		lines[i] = renderEntry(entry, noColor)
	}
	return strings.Join(lines, "\n")
}

// renderEntry emphasizes section headers.
func renderEntry(entry topicbook.LogEntry, noColor bool) string {
	if !entry.IsSection() {
		return entry.Text
	}
	return stylize(entry.Text, noColor, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")))
}

// renderStatus renders the status line under the title.
func renderStatus(state State, spinner string, now time.Time, noColor bool) string {
	var parts []string
	if state.Loading() {
		parts = append(parts, spinner+" "+phaseLabel(state.Phase))
	} else {
		parts = append(parts, phaseLabel(state.Phase))
	}
	if !state.TaskID.IsZero() {
		parts = append(parts, "task "+state.TaskID.Short())
	}
	if elapsed := state.Elapsed(now); elapsed > 0 {
		parts = append(parts, elapsed.Round(100*time.Millisecond).String())
	}
	line := strings.Join(parts, " | ")
	return stylize(line, noColor, lipgloss.NewStyle().Foreground(phaseColor(state.Phase)))
}

// renderTitle renders the header line.
func renderTitle(state State, noColor bool) string {
	title := "TopicBook"
	if state.Topic != "" {
		title += ": " + state.Topic
	}
	return stylize(title, noColor, lipgloss.NewStyle().Bold(true))
}

// renderFooter renders the key help and any error.
func renderFooter(state State, canResubmit bool, noColor bool) string {
	help := "q quit"
	if canResubmit && !state.Loading() {
		help = "r generate again | " + help
	}
	footer := stylize(help, noColor, lipgloss.NewStyle().Foreground(lipgloss.Color("240")))
	if state.LastError == "" {
		return footer
	}
	errLine := stylize("error: "+state.LastError, noColor, lipgloss.NewStyle().Foreground(lipgloss.Color("160")))
	return errLine + "\n" + footer
}

func phaseLabel(phase topicbook.State) string {
	switch phase {
	case topicbook.StateIdle:
		return "Idle"
	case topicbook.StateSubmitting:
		return "Submitting"
	case topicbook.StateStreaming:
		return "Generating"
	case topicbook.StateCompleted:
		return "Completed"
	case topicbook.StateFailed:
		return "Failed"
	default:
		return phase.String()
	}
}

func phaseColor(phase topicbook.State) lipgloss.Color {
	switch phase {
	case topicbook.StateCompleted:
		return lipgloss.Color("42")
	case topicbook.StateFailed:
		return lipgloss.Color("160")
	case topicbook.StateSubmitting, topicbook.StateStreaming:
		return lipgloss.Color("214")
	default:
		return lipgloss.Color("244")
	}
}

// stylize applies optional styling.
func stylize(text string, noColor bool, style lipgloss.Style) string {
	if noColor {
		return text
	}
	return style.Render(text)
}
