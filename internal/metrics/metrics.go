// Package metrics holds the Prometheus collectors shared by the HTTP layer,
// the storage layer and the importer. A nil *Metrics is valid and records
// nothing, so callers never need to guard their calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import row outcomes used as the "outcome" label.
const (
	OutcomeImported = "imported"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// Metrics records request, query and import statistics.
type Metrics struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	queries    *prometheus.HistogramVec
	importRows *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer defaults to the
// global Prometheus registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	queries := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_db_query_duration_seconds",
		Help:    "Database call latency by operation",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"op"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_import_rows_total",
		Help: "Spreadsheet rows processed by the importer, by outcome",
	}, []string{"outcome"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if queries, err = register(reg, queries); err != nil {
		return nil, err
	}
	if importRows, err = register(reg, importRows); err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, latency: latency, queries: queries, importRows: importRows}, nil
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveQuery records the latency of one database call.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(op).Observe(d.Seconds())
}

// AddImportRows counts n importer rows with the given outcome.
func (m *Metrics) AddImportRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importRows.WithLabelValues(outcome).Add(float64(n))
}
