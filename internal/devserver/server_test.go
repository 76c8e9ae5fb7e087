package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicbook/internal/backend"
	"topicbook/internal/duckdb"
	"topicbook/internal/testutil"
	"topicbook/pkg/topicbook"
	"topicbook/pkg/topicbook/httpclient"
)

func TestServeListenerRoundTrip(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ledgerPath := filepath.Join(t.TempDir(), "tasks.duckdb")
	cfg := Config{LibraryDir: t.TempDir(), LedgerPath: ledgerPath}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, listener, cfg) }()

	client := httpclient.New("http://" + listener.Addr().String())
	reqCtx := testutil.Context(t, 5*time.Second)
	var id topicbook.TaskID
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		id, err = client.Submit(reqCtx, topicbook.TaskRequest{Topic: "Go"})
		return err == nil
	}, "dev server never accepted a task")

	ch, err := client.OpenStatus(reqCtx, id)
	require.NoError(t, err)
	for {
		ev, err := ch.Next()
		require.NoError(t, err)
		if ev.IsSentinel() {
			break
		}
	}
	require.NoError(t, ch.Close())

	base := "http://" + listener.Addr().String()
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		var stats backend.TopicStats
		return getJSON(reqCtx, base+"/tasks/stats?topic=Go", &stats) == nil && stats.Succeeded == 1
	}, "ledger stats never recorded the finished task")
	var listed struct {
		Tasks []backend.TaskInfo `json:"tasks"`
	}
	require.NoError(t, getJSON(reqCtx, base+"/tasks", &listed))
	require.Len(t, listed.Tasks, 1)
	assert.Equal(t, id, listed.Tasks[0].ID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	ledger, err := duckdb.Open(testutil.Context(t, 2*time.Second), ledgerPath)
	require.NoError(t, err)
	defer ledger.Close()
	tasks, err := ledger.List(testutil.Context(t, 2*time.Second), 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
}

func TestShutdownEndsOpenStreams(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := Config{LibraryDir: t.TempDir(), StepDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, listener, cfg) }()

	client := httpclient.New("http://" + listener.Addr().String())
	reqCtx := testutil.Context(t, 5*time.Second)
	var id topicbook.TaskID
	testutil.Eventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		id, err = client.Submit(reqCtx, topicbook.TaskRequest{Topic: "Go"})
		return err == nil
	}, "dev server never accepted a task")
	ch, err := client.OpenStatus(reqCtx, id)
	require.NoError(t, err)
	defer ch.Close()
	_, err = ch.Next()
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	// The task failed, so the stream ends without the sentinel.
	for {
		ev, err := ch.Next()
		if err != nil {
			break
		}
		assert.False(t, ev.IsSentinel())
	}
}

func TestServeRequiresAddr(t *testing.T) {
	err := Serve(context.Background(), Config{})
	assert.EqualError(t, err, "devserver: addr is required")
}

func TestHandlerHealth(t *testing.T) {
	srv, err := New(context.Background(), Config{LibraryDir: t.TempDir()})
	require.NoError(t, err)
	defer srv.Close()
	rec := testutil.Record(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
