package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	web "timetable/internal/adapters/http"
	"timetable/internal/adapters/storage"
	"timetable/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before serving")
	return cmd
}

// serve runs the API until ctx is canceled. A missing database URL is not
// fatal: the server starts and data routes report the configuration error.
func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg := a.cfg

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	var m *metrics.Metrics
	if reg != nil {
		var err error
		if m, err = metrics.New(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	db, err := a.openDB(ctx, m)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		a.log.Warn().Msg("database_not_configured")
	case err != nil:
		return err
	default:
		defer db.Close()
		if migrate {
			if err := migrateDB(ctx, db); err != nil {
				return err
			}
			a.log.Info().Str("dialect", db.Dialect().String()).Msg("schema_ready")
		}
	}

	opts := web.Options{
		DB:                 db,
		Logger:             a.log,
		Metrics:            m,
		CORSOrigin:         cfg.HTTP.CORSOrigin,
		RateLimitPerSecond: cfg.HTTP.RateLimitPerSecond,
		SlowRequestMs:      cfg.HTTP.SlowRequestMs,
		MaxImportBytes:     cfg.Import.MaxBodyBytes,
	}
	if reg != nil {
		opts.Gatherer = reg
		opts.MetricsPath = cfg.Metrics.Path
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           web.NewMux(ctx, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", cfg.HTTP.Addr).Str("version", version).Msg("server_started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info().Msg("server_stopped")
	return nil
}

// openDB opens the configured pool. The returned error wraps
// storage.ErrNotConfigured when no URL is set.
func (a *app) openDB(ctx context.Context, m *metrics.Metrics) (*storage.DB, error) {
	return storage.Open(ctx, a.cfg.Database.URL, storage.Options{
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		SlowQueryMs:  a.cfg.Database.SlowQueryMs,
		Metrics:      m,
	})
}
