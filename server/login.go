package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonwraymond/authops/auth"
	"github.com/jonwraymond/authops/observe"
)

// LoginRequest is the signin request body. The password lives only in
// memory for the duration of the request and is never logged.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the signin success body. Roles appear in the order
// the credential store returns them.
type LoginResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Token    string   `json:"token"`
}

// loginFailure is the signin failure body.
type loginFailure struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// LoginHandler authenticates a username/password pair and issues a
// token. Credential failures answer 404 rather than 401, so the
// endpoint does not confirm whether an account exists.
type LoginHandler struct {
	verifier auth.CredentialVerifier
	tokens   *auth.TokenService
	logger   observe.Logger
	metrics  *observe.AuthMetrics
}

// NewLoginHandler creates a login handler. The metrics recorder may be nil.
func NewLoginHandler(verifier auth.CredentialVerifier, tokens *auth.TokenService, logger observe.Logger, metrics *observe.AuthMetrics) *LoginHandler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &LoginHandler{
		verifier: verifier,
		tokens:   tokens,
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginFailure{Message: "Malformed request body", Status: false})
		return
	}

	id, err := h.verifier.Verify(ctx, req.Username, req.Password)
	if err != nil {
		h.metrics.LoginAttempt(ctx, false, time.Since(start))
		h.logger.Info(ctx, "login rejected", observe.Field{Key: "username", Value: req.Username})
		writeJSON(w, http.StatusNotFound, loginFailure{Message: "Bad credentials", Status: false})
		return
	}

	token, err := h.tokens.Issue(id)
	if err != nil {
		h.metrics.LoginAttempt(ctx, false, time.Since(start))
		h.logger.Error(ctx, "token issuance failed", observe.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusInternalServerError, loginFailure{Message: "Internal server error", Status: false})
		return
	}

	h.metrics.LoginAttempt(ctx, true, time.Since(start))
	h.metrics.TokenIssued(ctx)
	h.logger.Info(ctx, "login succeeded", observe.Field{Key: "username", Value: id.Username})

	writeJSON(w, http.StatusOK, LoginResponse{
		Username: id.Username,
		Roles:    id.Roles,
		Token:    token,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
