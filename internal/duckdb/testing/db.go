// Package duckdbtesting builds task ledgers for tests.
package duckdbtesting

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/require"

	"topicbook/internal/backend"
	"topicbook/internal/duckdb"
)

const timeout = 2 * time.Second

// OpenLedger returns a ledger over a fresh in-memory database along with
// the raw handle for schema assertions. Both close with the test.
func OpenLedger(t testing.TB) (*duckdb.Ledger, *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err, "open duckdb")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx), "ping duckdb")
	require.NoError(t, duckdb.EnsureSchema(ctx, db))

	ledger, err := duckdb.NewLedger(db)
	require.NoError(t, err)
	return ledger, db
}

// Seed records each task as created and, for finished statuses, as
// finished with the same info.
func Seed(t testing.TB, ledger *duckdb.Ledger, tasks ...backend.TaskInfo) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, info := range tasks {
		created := info
		created.Status = backend.StatusPending
		require.NoError(t, ledger.RecordCreated(ctx, created), "seed %s", info.ID)
		if info.Status.Finished() {
			require.NoError(t, ledger.RecordFinished(ctx, info), "finish %s", info.ID)
		}
	}
}
