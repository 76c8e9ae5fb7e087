package httpclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"topicbook/pkg/topicbook"
)

const byteOrderMark = "\ufeff"

// eventStream decodes a text/event-stream body one event at a time.
type eventStream struct {
	body      io.ReadCloser
	dec       *eventDecoder
	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	closed    bool
}

func newEventStream(body io.ReadCloser) *eventStream {
	return &eventStream{body: body, dec: newEventDecoder(body)}
}

// Next returns the next dispatched event.
func (s *eventStream) Next() (topicbook.Event, error) {
	event, err := s.dec.next()
	if err != nil {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return topicbook.Event{}, io.EOF
		}
		return topicbook.Event{}, err
	}
	return event, nil
}

// Close releases the underlying connection. Safe to call more than once.
func (s *eventStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// eventDecoder implements the event-stream line protocol: data lines are
// joined with LF, a blank line dispatches, comments and retry are ignored.
type eventDecoder struct {
	r         *bufio.Reader
	started   bool
	afterCR   bool
	data      strings.Builder
	hasData   bool
	eventType string
	lastID    string
}

func newEventDecoder(r io.Reader) *eventDecoder {
	return &eventDecoder{r: bufio.NewReader(r)}
}

func (d *eventDecoder) next() (topicbook.Event, error) {
	for {
		line, err := d.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" {
				// An event without its terminating blank line is discarded.
				return topicbook.Event{}, io.EOF
			}
			if !errors.Is(err, io.EOF) {
				return topicbook.Event{}, err
			}
		}
		if line == "" {
			if err != nil {
				return topicbook.Event{}, io.EOF
			}
			if event, ok := d.dispatch(); ok {
				if !utf8.ValidString(event.Data) {
					return topicbook.Event{}, fmt.Errorf("%w: payload is not valid UTF-8", topicbook.ErrMalformedEvent)
				}
				return event, nil
			}
			continue
		}
		d.processLine(line)
		if err != nil {
			return topicbook.Event{}, io.EOF
		}
	}
}

// readLine returns one line without its terminator. Lines end in CRLF, LF
// or a lone CR. An LF directly after a CR is dropped on the next read, so a
// CR-terminated line is returned without waiting for more input.
func (d *eventDecoder) readLine() (string, error) {
	var b strings.Builder
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return d.finishLine(b.String()), err
		}
		if d.afterCR {
			d.afterCR = false
			if c == '\n' {
				continue
			}
		}
		switch c {
		case '\n':
			return d.finishLine(b.String()), nil
		case '\r':
			d.afterCR = true
			return d.finishLine(b.String()), nil
		}
		b.WriteByte(c)
	}
}

func (d *eventDecoder) finishLine(line string) string {
	if !d.started && line != "" {
		d.started = true
		line = strings.TrimPrefix(line, byteOrderMark)
	}
	return line
}

func (d *eventDecoder) processLine(line string) {
	if strings.HasPrefix(line, ":") {
		return
	}
	field, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}
	switch field {
	case "data":
		d.data.WriteString(value)
		d.data.WriteByte('\n')
		d.hasData = true
	case "event":
		d.eventType = value
	case "id":
		if !strings.ContainsRune(value, 0) {
			d.lastID = value
		}
	}
}

func (d *eventDecoder) dispatch() (topicbook.Event, bool) {
	defer func() {
		d.data.Reset()
		d.hasData = false
		d.eventType = ""
	}()
	if !d.hasData {
		return topicbook.Event{}, false
	}
	data := strings.TrimSuffix(d.data.String(), "\n")
	return topicbook.Event{ID: d.lastID, Type: d.eventType, Data: data}, true
}
