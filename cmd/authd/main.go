// Command authd runs the stateless token authentication service.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/authops/auth"
	"github.com/jonwraymond/authops/config"
	"github.com/jonwraymond/authops/health"
	"github.com/jonwraymond/authops/observe"
	"github.com/jonwraymond/authops/server"
	"github.com/jonwraymond/authops/userstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "authd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "authd",
		Tracing: observe.TracingConfig{
			Enabled:   cfg.TracingExporter != "" && cfg.TracingExporter != "none",
			Exporter:  cfg.TracingExporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.MetricsExporter != "" && cfg.MetricsExporter != "none",
			Exporter: cfg.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.LogLevel,
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	logger := obs.Logger()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
	})
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.SeedUsers {
		if err := userstore.Seed(ctx, store, userstore.DefaultSeedUsers()); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	authMetrics, err := observe.NewAuthMetrics(obs.Meter())
	if err != nil {
		return err
	}
	requestMetrics, err := observe.NewRequestMetrics(obs.Meter())
	if err != nil {
		return err
	}

	authenticator := auth.NewRequestAuthenticator(tokens, store, logger, authMetrics,
		auth.AuthenticatorConfig{LookupTimeout: cfg.LookupTimeout})

	agg := health.NewAggregator()
	agg.Register(health.PingerChecker("userstore", store))
	agg.Register(auth.SigningKeyChecker("signing_key", tokens))

	srv := server.New(server.Config{Listen: cfg.Listen}, server.Deps{
		Tokens:        tokens,
		Verifier:      store,
		Authenticator: authenticator,
		Health:        agg,
		Logger:        logger,
		AuthMetrics:   authMetrics,
		Observability: observe.NewMiddleware(observe.NewTracer(obs.Tracer()), requestMetrics, logger),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if cfg.MetricsExporter == "prometheus" {
		g.Go(func() error { return runTelemetry(ctx, cfg.TelemetryListen, logger) })
	}

	return g.Wait()
}

func openStore(cfg *config.Config) (userstore.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return userstore.NewSQLiteStore(userstore.SQLiteStoreConfig{Path: cfg.SQLitePath})
	default:
		return userstore.NewMemoryStore(), nil
	}
}

// runTelemetry serves the Prometheus scrape endpoint on its own
// listener, away from the API surface.
func runTelemetry(ctx context.Context, listen string, logger observe.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "telemetry listening", observe.Field{Key: "addr", Value: listen})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("telemetry serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
