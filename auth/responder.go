package auth

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/authops/observe"
)

// errorBody is the uniform JSON shape for authentication and
// authorization failures.
type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// UnauthorizedResponder formats the uniform error response emitted when
// a request reaches a protected route without an established identity.
// It is the single place where an authentication failure becomes visible
// to the caller; the RequestAuthenticator itself never writes responses.
type UnauthorizedResponder struct {
	logger observe.Logger
}

// NewUnauthorizedResponder creates a responder.
func NewUnauthorizedResponder(logger observe.Logger) *UnauthorizedResponder {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &UnauthorizedResponder{logger: logger}
}

// Respond writes a 401 with a structured JSON body carrying the status
// code, a short error label, a human-readable message, and the denied
// request path.
func (u *UnauthorizedResponder) Respond(w http.ResponseWriter, r *http.Request, message string) {
	u.logger.Error(r.Context(), "unauthorized",
		observe.Field{Key: "message", Value: message},
		observe.Field{Key: "path", Value: r.URL.Path},
	)

	writeErrorBody(w, errorBody{
		Status:  http.StatusUnauthorized,
		Error:   "Unauthorized",
		Message: message,
		Path:    r.URL.Path,
	})
}

func writeErrorBody(w http.ResponseWriter, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	_ = json.NewEncoder(w).Encode(body)
}
