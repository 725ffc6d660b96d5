package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"timetable/internal/metrics"
)

// SQLDB is the database interface used by all stores.
// *sql.DB, *sql.Conn and *Conn all satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Compile-time checks.
var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*sql.Conn)(nil)
	_ SQLDB = (*Conn)(nil)
)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// Conn is one pooled connection reserved for a single request. Queries are
// written with ? placeholders and rebound for the pool's dialect; every call
// is timed, logged when slow and recorded in metrics.
type Conn struct {
	conn      *sql.Conn
	dialect   Dialect
	metrics   *metrics.Metrics
	threshold float64
}

// logQuery logs and records a query timing.
func (c *Conn) logQuery(ctx context.Context, op string, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	l := zerolog.Ctx(ctx)
	if durationMs >= c.threshold {
		l.Warn().Str("op", op).Float64("duration_ms", durationMs).Msg("slow_query")
	} else {
		l.Debug().Str("op", op).Float64("duration_ms", durationMs).Msg("query")
	}
	c.metrics.ObserveQuery(op, elapsed)
}

// ExecContext wraps sql.Conn.ExecContext with rebinding and timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := c.conn.ExecContext(ctx, Rebind(c.dialect, query), args...)
	c.logQuery(ctx, "exec", start)
	return result, err
}

// QueryContext wraps sql.Conn.QueryContext with rebinding and timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := c.conn.QueryContext(ctx, Rebind(c.dialect, query), args...)
	c.logQuery(ctx, "query", start)
	return rows, err
}

// QueryRowContext wraps sql.Conn.QueryRowContext with rebinding and timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := c.conn.QueryRowContext(ctx, Rebind(c.dialect, query), args...)
	c.logQuery(ctx, "query_row", start)
	return row
}

// Close returns the connection to the pool. Safe to call more than once.
func (c *Conn) Close() error {
	err := c.conn.Close()
	if err == sql.ErrConnDone {
		return nil
	}
	return err
}
