package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/authops/auth"
	"github.com/jonwraymond/authops/health"
	"github.com/jonwraymond/authops/observe"
)

// Config configures the HTTP server.
type Config struct {
	// Listen is the API listen address.
	Listen string

	// ShutdownTimeout bounds graceful shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration
}

// Deps are the collaborators the server wires into its routes.
type Deps struct {
	// Tokens issues tokens for the login flow.
	Tokens *auth.TokenService

	// Verifier checks credentials at login.
	Verifier auth.CredentialVerifier

	// Authenticator is the per-request authentication middleware.
	Authenticator *auth.RequestAuthenticator

	// Health aggregates the readiness checks. Optional.
	Health *health.Aggregator

	// Logger is the structured logger. Optional.
	Logger observe.Logger

	// AuthMetrics records login metrics. Optional.
	AuthMetrics *observe.AuthMetrics

	// Observability instruments every request. Optional.
	Observability *observe.Middleware
}

// Server is the HTTP authentication service.
type Server struct {
	config  Config
	logger  observe.Logger
	handler http.Handler
}

// New creates a server with its full route table and middleware chain.
func New(cfg Config, deps Deps) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = observe.NopLogger()
	}

	return &Server{
		config:  cfg,
		logger:  deps.Logger,
		handler: buildRoutes(deps),
	}
}

// buildRoutes assembles the route table. The authenticator wraps every
// route; it never rejects, so public routes cost only a header check,
// and the per-route guards enforce the actual policy.
func buildRoutes(deps Deps) http.Handler {
	responder := auth.NewUnauthorizedResponder(deps.Logger)
	policy := auth.NewPolicy(responder, deps.Logger)

	mux := http.NewServeMux()

	// Public routes.
	mux.Handle("POST /signin", NewLoginHandler(deps.Verifier, deps.Tokens, deps.Logger, deps.AuthMetrics))
	mux.HandleFunc("GET /healthz", health.LivenessHandler())
	if deps.Health != nil {
		mux.HandleFunc("GET /readyz", health.ReadinessHandler(deps.Health))
		mux.HandleFunc("GET /health", health.DetailedHandler(deps.Health))
	}

	// Protected routes.
	mux.Handle("GET /hello/{name}", policy.RequireAuthenticated(http.HandlerFunc(greetHandler)))
	mux.Handle("GET /user/{name}", policy.RequireRole("USER", http.HandlerFunc(userHandler)))
	mux.Handle("GET /admin/{name}", policy.RequireRole("ADMIN", http.HandlerFunc(adminHandler)))

	// CapturePattern sits directly around the mux so the observability
	// middleware can attribute the request to its matched route even
	// though the authenticator re-derives the request in between.
	handler := observe.CapturePattern(mux)
	if deps.Authenticator != nil {
		handler = deps.Authenticator.Wrap(handler)
	}
	if deps.Observability != nil {
		handler = deps.Observability.Wrap(handler)
	}
	return handler
}

// Handler returns the fully wired handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "server listening", observe.Field{Key: "addr", Value: s.config.Listen})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
