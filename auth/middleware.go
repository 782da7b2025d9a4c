package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/authops/observe"
)

// AuthenticatorConfig configures the request authenticator.
type AuthenticatorConfig struct {
	// LookupTimeout bounds each user lookup call.
	// Default: 2 seconds.
	LookupTimeout time.Duration
}

// RequestAuthenticator is the per-request authentication middleware.
//
// For every inbound request it extracts a candidate bearer token,
// validates it, resolves the subject to a full identity through the
// UserLookup collaborator, and attaches that identity to the request
// context. Every failure along the way (missing header, invalid token,
// unreachable lookup, even a panicking collaborator) degrades the
// request to anonymous. The middleware never writes a response and
// always forwards to the next handler exactly once; rejecting anonymous
// requests on protected routes is the Policy's job.
//
// Concurrent lookups for the same username are coalesced, so a burst of
// requests bearing tokens for one subject costs a single store round trip.
type RequestAuthenticator struct {
	tokens  *TokenService
	users   UserLookup
	logger  observe.Logger
	metrics *observe.AuthMetrics
	timeout time.Duration
	group   singleflight.Group
}

// NewRequestAuthenticator creates a request authenticator. The metrics
// recorder may be nil.
func NewRequestAuthenticator(tokens *TokenService, users UserLookup, logger observe.Logger, metrics *observe.AuthMetrics, config ...AuthenticatorConfig) *RequestAuthenticator {
	cfg := AuthenticatorConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	return &RequestAuthenticator{
		tokens:  tokens,
		users:   users,
		logger:  logger,
		metrics: metrics,
		timeout: cfg.LookupTimeout,
	}
}

// Wrap returns a handler that authenticates the request before invoking
// next. Idempotent and side-effect-free beyond the request context: two
// requests with the same valid token resolve to the same identity
// independently.
func (a *RequestAuthenticator) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := a.authenticate(r); id != nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the request to an identity, or nil for anonymous.
// It must not let any failure escape: a crash in identity establishment
// must never take down the request pipeline.
func (a *RequestAuthenticator) authenticate(r *http.Request) (id *Identity) {
	ctx := r.Context()

	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error(ctx, "request authentication panicked, continuing anonymous",
				observe.Field{Key: "panic", Value: fmt.Sprint(rec)},
				observe.Field{Key: "path", Value: r.URL.Path},
			)
			id = nil
		}
	}()

	token, ok := BearerFromRequest(r)
	if !ok {
		return nil
	}

	if err := a.tokens.Check(token); err != nil {
		reason := failureReason(err)
		a.metrics.TokenRejected(ctx, reason)

		// An unsupported scheme points at a version or key-config
		// mismatch between issuer and validator, not client noise.
		if errors.Is(err, ErrTokenUnsupported) {
			a.logger.Error(ctx, "token rejected", observe.Field{Key: "reason", Value: reason})
		} else {
			a.logger.Debug(ctx, "token rejected", observe.Field{Key: "reason", Value: reason})
		}
		return nil
	}

	subject, err := a.tokens.Subject(token)
	if err != nil {
		a.metrics.TokenRejected(ctx, "malformed")
		a.logger.Error(ctx, "validated token has no usable subject", observe.Field{Key: "error", Value: err.Error()})
		return nil
	}

	id, err = a.lookup(ctx, subject)
	if err != nil {
		a.metrics.LookupFailed(ctx)
		a.logger.Warn(ctx, "user lookup failed, continuing anonymous",
			observe.Field{Key: "username", Value: subject},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil
	}
	return id
}

// lookup resolves a username through the collaborator with a bounded
// timeout. In-flight lookups for the same username are shared; the
// shared call is detached from the triggering request's cancellation so
// one canceled request cannot fail the whole group. Each waiter gets
// its own copy of the result, never the shared value.
func (a *RequestAuthenticator) lookup(ctx context.Context, username string) (*Identity, error) {
	v, err, _ := a.group.Do(username, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return a.users.Lookup(lctx, username)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Identity).Clone(), nil
}

// failureReason maps a Check error onto a stable diagnostic label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenEmpty):
		return "empty"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenUnsupported):
		return "unsupported"
	default:
		return "malformed"
	}
}
