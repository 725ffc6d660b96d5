package web

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"timetable/internal/adapters/http/middleware"
	"timetable/internal/adapters/storage"
	"timetable/internal/metrics"
)

// DefaultMaxImportBytes caps an import request body. Base64 inflates the
// workbook by a third, so this admits roughly 15 MiB files.
const DefaultMaxImportBytes = 20 << 20

// Allowed methods per route, as advertised to preflight requests.
const (
	dataMethods     = "GET, OPTIONS"
	scheduleMethods = "GET, POST, PUT, DELETE, OPTIONS"
	importMethods   = "POST, OPTIONS"
)

// Options configures NewMux.
type Options struct {
	// DB is the connection pool. Nil means DATABASE_URL was not configured;
	// data routes then answer 500.
	DB *storage.DB

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs the metrics endpoint. Nil or an empty MetricsPath
	// disables it.
	Gatherer    prometheus.Gatherer
	MetricsPath string

	CORSOrigin         string
	RateLimitPerSecond int
	SlowRequestMs      int
	MaxImportBytes     int64

	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Server holds the dependencies shared by the handlers. Each request takes
// its own connection from db.
type Server struct {
	db             *storage.DB
	metrics        *metrics.Metrics
	maxImportBytes int64
	now            func() time.Time
}

// NewMux wires HTTP handlers for the app. The rate limiter's janitor stops
// when ctx is done.
func NewMux(ctx context.Context, opts Options) http.Handler {
	s := &Server{
		db:             opts.DB,
		metrics:        opts.Metrics,
		maxImportBytes: opts.MaxImportBytes,
		now:            opts.Now,
	}
	if s.maxImportBytes <= 0 {
		s.maxImportBytes = DefaultMaxImportBytes
	}
	if s.now == nil {
		s.now = time.Now
	}

	mux := http.NewServeMux()
	mux.Handle("/api/data", middleware.Preflight(dataMethods)(http.HandlerFunc(s.handleData)))
	mux.Handle("/api/schedule", middleware.Preflight(scheduleMethods)(http.HandlerFunc(s.handleSchedule)))
	mux.Handle("/api/import", middleware.Preflight(importMethods)(http.HandlerFunc(s.handleImport)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.MetricsPath != "" && opts.Gatherer != nil {
		mux.Handle("GET "+opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	var limiter *middleware.RateLimiter
	if opts.RateLimitPerSecond > 0 {
		limiter = middleware.NewRateLimiter(ctx, opts.RateLimitPerSecond, time.Second)
	}

	// Apply middleware: RequestID -> Timing -> AllowOrigin -> SecurityHeaders -> RateLimit -> Recover -> Mux
	return middleware.Chain(mux,
		middleware.Recover,
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
		middleware.AllowOrigin(opts.CORSOrigin),
		middleware.Timing(opts.SlowRequestMs, opts.Metrics),
		middleware.RequestID(opts.Logger),
	)
}

// conn reserves a connection for the request. The caller must Close it.
func (s *Server) conn(ctx context.Context) (*storage.Conn, error) {
	if s.db == nil {
		return nil, storage.ErrNotConfigured
	}
	return s.db.Conn(ctx)
}
