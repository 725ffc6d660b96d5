package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"timetable/internal/metrics"
)

// ErrNotConfigured is returned when no database URL was provided.
var ErrNotConfigured = errors.New("DATABASE_URL not configured")

// sqlitePragmas are appended to every SQLite DSN. foreign_keys is per
// connection in SQLite, so it has to ride on the DSN rather than a one-off Exec.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Options tunes the connection pool and instrumentation.
type Options struct {
	MaxOpenConns int
	SlowQueryMs  int
	Metrics      *metrics.Metrics
}

// DB is the process-wide connection pool. Request handlers never query it
// directly; they take one Conn per request.
type DB struct {
	db        *sql.DB
	dialect   Dialect
	metrics   *metrics.Metrics
	threshold float64
}

// ParseURL maps a DATABASE_URL onto a database/sql driver name and DSN.
// postgres:// and postgresql:// select pgx; sqlite:// and file: select SQLite.
// PRE: none
// POST: Returns driver, dsn and dialect, or an error for unknown schemes
func ParseURL(url string) (driver, dsn string, dialect Dialect, err error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", "", 0, ErrNotConfigured
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, DialectPostgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", withPragmas(strings.TrimPrefix(url, "sqlite://")), DialectSQLite, nil
	case strings.HasPrefix(url, "file:"):
		return "sqlite", withPragmas(url), DialectSQLite, nil
	}
	return "", "", 0, fmt.Errorf("unsupported database url scheme in %q", redact(url))
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	return "..."
}

// Open opens the pool described by url and verifies connectivity.
// PRE: url is a non-empty DATABASE_URL
// POST: Returns a pinged pool, or ErrNotConfigured / a driver error
func Open(ctx context.Context, url string, opts Options) (*DB, error) {
	driver, dsn, dialect, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	threshold := float64(opts.SlowQueryMs)
	if threshold <= 0 {
		threshold = DefaultSlowQueryMs
	}
	return &DB{db: db, dialect: dialect, metrics: opts.Metrics, threshold: threshold}, nil
}

// Dialect reports which SQL flavour the pool speaks.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Conn reserves a single connection for the caller. The caller must Close
// it; Close returns the connection to the pool.
// PRE: ctx is the request context
// POST: Returns a dedicated connection or the pool error
func (d *DB) Conn(ctx context.Context) (*Conn, error) {
	c, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{conn: c, dialect: d.dialect, metrics: d.metrics, threshold: d.threshold}, nil
}

// InitDB creates the schema if it does not exist yet.
// PRE: db is a valid database connection
// POST: All tables and indexes exist
func InitDB(ctx context.Context, db SQLDB, dialect Dialect) error {
	for _, stmt := range schema(dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// schema returns the DDL for dialect. Reference tables are normally owned
// by another system; these definitions exist so a fresh database works.
func schema(dialect Dialect) []string {
	id, ts := "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	if dialect == DialectPostgres {
		id, ts = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS campuses (
		id ` + id + `,
		name TEXT NOT NULL,
		address TEXT
	)`,
		`CREATE TABLE IF NOT EXISTS teachers (
		id ` + id + `,
		full_name TEXT NOT NULL,
		email TEXT,
		phone TEXT
	)`,
		`CREATE TABLE IF NOT EXISTS "groups" (
		id ` + id + `,
		name TEXT NOT NULL,
		campus_id BIGINT REFERENCES campuses(id),
		year INTEGER
	)`,
		`CREATE TABLE IF NOT EXISTS schedules (
		id ` + id + `,
		group_id BIGINT NOT NULL REFERENCES "groups"(id),
		teacher_id BIGINT NOT NULL REFERENCES teachers(id),
		campus_id BIGINT NOT NULL REFERENCES campuses(id),
		subject TEXT NOT NULL,
		room TEXT NOT NULL DEFAULT '',
		day_of_week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at ` + ts + ` NOT NULL,
		updated_at ` + ts + ` NOT NULL,
		deleted_at ` + ts + `
	)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_group ON schedules (group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_teacher ON schedules (teacher_id)`,
		`CREATE INDEX IF NOT EXISTS idx_teachers_full_name ON teachers (full_name)`,
		`CREATE INDEX IF NOT EXISTS idx_groups_name ON "groups" (name)`,
		`CREATE INDEX IF NOT EXISTS idx_campuses_name ON campuses (name)`,
	}
}
