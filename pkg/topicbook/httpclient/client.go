package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"topicbook/pkg/topicbook"
)

// Client talks to a TopicBook backend over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	// stream has no timeout; status channels stay open until the server
	// ends them or the caller releases them.
	stream *http.Client
}

var (
	_ topicbook.Submitter = (*Client)(nil)
	_ topicbook.Streamer  = (*Client)(nil)
	_ topicbook.Catalog   = (*Client)(nil)
)

// New constructs a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		stream:  &http.Client{},
	}
}

// NewWithTimeout constructs a client whose JSON requests use the given timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	c := New(baseURL)
	c.client = &http.Client{Timeout: timeout}
	return c
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit creates a generation task via POST /generate.
func (c *Client) Submit(ctx context.Context, req topicbook.TaskRequest) (topicbook.TaskID, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", &topicbook.SubmissionError{Err: err}
	}
	body, status, err := c.do(ctx, http.MethodPost, "/generate", payload)
	if err != nil {
		return "", &topicbook.SubmissionError{StatusCode: status, Err: err}
	}
	if status < 200 || status >= 300 {
		return "", &topicbook.SubmissionError{StatusCode: status, Err: decodeHTTPError(body)}
	}
	var res topicbook.CreateTaskResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", &topicbook.SubmissionError{StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	if res.TaskID.IsZero() {
		return "", &topicbook.SubmissionError{StatusCode: status, Err: errors.New("response is missing task_id")}
	}
	return res.TaskID, nil
}

// OpenStatus opens the server-sent event stream for a task via GET /status/{task_id}.
func (c *Client) OpenStatus(ctx context.Context, id topicbook.TaskID) (topicbook.Channel, error) {
	if id.IsZero() {
		return nil, &topicbook.StreamError{Err: errors.New("task id is required")}
	}
	endpoint := c.baseURL + "/status/" + url.PathEscape(string(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &topicbook.StreamError{TaskID: id, Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, &topicbook.StreamError{TaskID: id, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &topicbook.StreamError{TaskID: id, Err: fmt.Errorf("http %d: %w", resp.StatusCode, decodeHTTPError(body))}
	}
	if !isEventStream(resp.Header.Get("Content-Type")) {
		resp.Body.Close()
		return nil, &topicbook.StreamError{
			TaskID: id,
			Err:    fmt.Errorf("%w: unexpected content type %q", topicbook.ErrMalformedEvent, resp.Header.Get("Content-Type")),
		}
	}
	return newEventStream(resp.Body), nil
}

// ListBooks returns artifact filenames via GET /books.
func (c *Client) ListBooks(ctx context.Context) ([]string, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/books", nil)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list books: http %d: %w", status, decodeHTTPError(body))
	}
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("list books: decode response: %w", err)
	}
	return names, nil
}

// GetBook fetches one artifact via GET /books/{filename}.
func (c *Client) GetBook(ctx context.Context, filename string) (topicbook.Book, error) {
	if strings.TrimSpace(filename) == "" {
		return topicbook.Book{}, fmt.Errorf("get book: filename is required")
	}
	body, status, err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(filename), nil)
	if err != nil {
		return topicbook.Book{}, fmt.Errorf("get book %s: %w", filename, err)
	}
	if status == http.StatusNotFound {
		return topicbook.Book{}, fmt.Errorf("get book %s: %w", filename, topicbook.ErrBookNotFound)
	}
	if status != http.StatusOK {
		return topicbook.Book{}, fmt.Errorf("get book %s: http %d: %w", filename, status, decodeHTTPError(body))
	}
	var book topicbook.Book
	if err := json.Unmarshal(body, &book); err != nil {
		return topicbook.Book{}, fmt.Errorf("get book %s: decode response: %w", filename, err)
	}
	return book, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail"`
}

func decodeHTTPError(body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		if resp.Detail != nil {
			return fmt.Errorf("%v", resp.Detail)
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return errors.New("unexpected response")
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return errors.New(text)
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/event-stream"
}
