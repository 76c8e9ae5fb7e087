// Package plain prints monitor updates line by line for pipes and
// terminals without cursor control.
package plain

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"topicbook/internal/monitor"
	"topicbook/pkg/topicbook"
)

// Printer writes each log entry as it arrives. Status changes go to a
// separate writer so the log stream stays clean.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	status  io.Writer
	noColor bool
	section lipgloss.Style
	failed  lipgloss.Style
}

var _ monitor.Observer = (*Printer)(nil)

// New returns a Printer. A nil status writer discards status lines.
func New(out, status io.Writer, noColor bool) *Printer {
	if status == nil {
		status = io.Discard
	}
	return &Printer{
		out:     out,
		status:  status,
		noColor: noColor,
		section: lipgloss.NewStyle().Bold(true),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

func (p *Printer) OnReset() {}

func (p *Printer) OnTask(id topicbook.TaskID) {
	p.statusf("task %s\n", id)
}

func (p *Printer) OnState(state topicbook.State) {
	if state == topicbook.StateSubmitting {
		p.statusf("submitting...\n")
	}
}

func (p *Printer) OnEntry(entry topicbook.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	text := entry.Text
	if entry.IsSection() && !p.noColor {
		text = p.section.Render(text)
	}
	_, _ = fmt.Fprintln(p.out, text)
}

func (p *Printer) OnTerminal(id topicbook.TaskID) {
	p.statusf("task %s completed\n", id)
}

func (p *Printer) OnError(err error) {
	msg := "error: " + err.Error()
	if !p.noColor {
		msg = p.failed.Render(msg)
	}
	p.statusf("%s\n", msg)
}

func (p *Printer) statusf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.status, format, args...)
}
