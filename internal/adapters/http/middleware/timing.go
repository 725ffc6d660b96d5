package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"timetable/internal/metrics"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

// unmatchedRoute labels requests no pattern matched, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that logs request duration and records it in m.
// Normal requests log at DEBUG; requests at or above slowMs log at WARN.
// The route label is the ServeMux pattern that matched, so it must wrap the
// mux without an intervening request clone.
func Timing(slowMs int, m *metrics.Metrics) func(http.Handler) http.Handler {
	threshold := float64(slowMs)
	if threshold <= 0 {
		threshold = DefaultSlowRequestMs
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0
				route := r.Pattern
				if route == "" {
					route = unmatchedRoute
				}

				l := zerolog.Ctx(r.Context())
				if durationMs >= threshold {
					l.Warn().Str("route", route).Int("status", sw.status).Float64("duration_ms", durationMs).Msg("slow_request")
				} else {
					l.Debug().Str("route", route).Int("status", sw.status).Float64("duration_ms", durationMs).Msg("request")
				}

				m.ObserveRequest(route, r.Method, sw.status, elapsed)

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
