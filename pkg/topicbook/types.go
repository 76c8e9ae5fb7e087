package topicbook

import (
	"strings"
)

const (
	// Sentinel is the status stream payload that marks normal completion.
	Sentinel = "[DONE]"
	// SectionPrefix marks a log line as a section header.
	SectionPrefix = "---"
	// SubmissionFailedText is the log entry appended when a task cannot be started.
	SubmissionFailedText = "Error: Could not start the task."
	// StreamFailedText is the optional log entry appended when a status stream fails.
	StreamFailedText = "Error: Lost connection to the task."
)

// TaskID is the opaque handle the backend returns for a submitted task.
type TaskID string

// IsZero reports whether the id is absent.
func (id TaskID) IsZero() bool {
	return id == ""
}

// Short returns the first 8 characters of the id for display.
func (id TaskID) Short() string {
	runes := []rune(string(id))
	if len(runes) > 8 {
		return string(runes[:8])
	}
	return string(id)
}

// String returns the raw id.
func (id TaskID) String() string {
	return string(id)
}

// LogEntry is a single line emitted by the backend for a task.
type LogEntry struct {
	Text string
}

// NewLogEntry wraps a line of text.
func NewLogEntry(text string) LogEntry {
	return LogEntry{Text: text}
}

// IsSection reports whether the entry is a section header.
func (e LogEntry) IsSection() bool {
	return strings.HasPrefix(e.Text, SectionPrefix)
}

// Event is one decoded server-sent event from a status stream.
type Event struct {
	ID   string
	Type string
	Data string
}

// IsMessage reports whether the event has the default message type.
func (e Event) IsMessage() bool {
	return e.Type == "" || e.Type == "message"
}

// IsSentinel reports whether the event terminates the stream normally.
func (e Event) IsSentinel() bool {
	return e.IsMessage() && e.Data == Sentinel
}

// CreateTaskResponse is the success payload of POST /generate.
type CreateTaskResponse struct {
	TaskID TaskID `json:"task_id"`
}

// Book is a completed artifact fetched from the catalog.
type Book struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Title returns the display title for the book.
func (b Book) Title() string {
	return BookTitle(b.Filename)
}

// BookTitle converts an artifact filename into a display title.
func BookTitle(filename string) string {
	title := strings.Replace(filename, ".md", "", 1)
	return strings.ReplaceAll(title, "_", " ")
}
