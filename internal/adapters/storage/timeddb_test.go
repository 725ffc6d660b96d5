package storage

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable/internal/metrics"
)

func openTimedConn(t *testing.T, m *metrics.Metrics, slowMs int) *Conn {
	t.Helper()
	db := openTestDB(t)
	db.metrics = m
	if slowMs > 0 {
		db.threshold = float64(slowMs)
	}
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = conn.ExecContext(context.Background(), "CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)")
	require.NoError(t, err)
	return conn
}

// TestConn_RecordsEveryCall verifies Exec, Query and QueryRow are all timed.
func TestConn_RecordsEveryCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	conn := openTimedConn(t, m, 0)
	ctx := context.Background()

	_, err = conn.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	require.NoError(t, err)

	rows, err := conn.QueryContext(ctx, "SELECT id, val FROM test")
	require.NoError(t, err)
	count := 0
	for rows.Next() {
		count++
	}
	rows.Close()
	assert.Equal(t, 1, count)

	var val string
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val))
	assert.Equal(t, "hello", val)

	// one series per op: exec, query, query_row
	n, err := testutil.GatherAndCount(reg, "timetable_db_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// TestConn_SlowQueryWarns verifies queries over the threshold log at warn.
func TestConn_SlowQueryWarns(t *testing.T) {
	conn := openTimedConn(t, nil, 0)
	conn.threshold = 0

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	_, err := conn.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "x")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"slow_query"`)
	assert.Contains(t, buf.String(), `"op":"exec"`)
}

// TestConn_FastQueryDebug verifies fast queries stay at debug level.
func TestConn_FastQueryDebug(t *testing.T) {
	conn := openTimedConn(t, nil, 60_000)

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.InfoLevel).WithContext(context.Background())

	_, err := conn.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "x")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

// TestConn_CloseTwice verifies a second Close is not an error.
func TestConn_CloseTwice(t *testing.T) {
	db := openTestDB(t)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
}

// TestDB_ConcurrentConns verifies each goroutine can hold its own Conn.
func TestDB_ConcurrentConns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := db.Conn(ctx)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			var one int
			errs <- conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
