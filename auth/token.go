package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBytes is the minimum decoded signing key length. HMAC-SHA256
// needs at least a 256-bit key to keep its full security margin.
const MinKeyBytes = 32

// TokenConfig configures the token service.
type TokenConfig struct {
	// Secret is the base64-encoded (std alphabet) symmetric signing key.
	// Decoded it must be at least MinKeyBytes long.
	Secret string

	// TTL is the token lifetime. Tokens expire at issued-at + TTL and
	// the expiry instant itself is outside the valid window.
	TTL time.Duration

	// Clock overrides the time source for issuance and expiry checks.
	// Default: time.Now. Intended for tests.
	Clock func() time.Time
}

// TokenService issues and validates compact signed tokens (JWS, HS256).
//
// The signing key is fixed at construction and never mutated; the service
// is safe for concurrent use without locking. A key change (new process,
// new config) invalidates every previously issued token.
type TokenService struct {
	key   []byte
	ttl   time.Duration
	clock func() time.Time
}

// NewTokenService creates a token service from the given configuration.
// An undecodable or undersized secret is a construction error: callers
// are expected to treat it as startup-fatal, not retry per request.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("%w: %d bytes decoded, need at least %d", ErrKeyTooShort, len(key), MinKeyBytes)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %v", cfg.TTL)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &TokenService{
		key:   key,
		ttl:   cfg.TTL,
		clock: clock,
	}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed token for the given identity. The token carries
// three claims: subject (username), issued-at, and expiration. Pure
// computation apart from reading the clock; no I/O.
func (s *TokenService) Issue(id *Identity) (string, error) {
	if id == nil || id.Username == "" {
		return "", fmt.Errorf("issue token: identity has no username")
	}

	now := s.clock()
	claims := jwt.RegisteredClaims{
		Subject:   id.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate reports whether the token is currently valid: well-formed,
// signed by the process key with the expected scheme, and not yet
// expired. False is a normal outcome: callers must treat it as
// "proceed as anonymous", never as a fatal error.
func (s *TokenService) Validate(token string) bool {
	return s.Check(token) == nil
}

// Check is Validate with diagnostics: it returns nil for a valid token
// and otherwise one of ErrTokenEmpty, ErrTokenMalformed, ErrTokenExpired,
// ErrTokenSignature, or ErrTokenUnsupported. The distinction exists for
// logging only; all failures mean the same thing to control flow.
func (s *TokenService) Check(token string) error {
	if token == "" {
		return ErrTokenEmpty
	}

	parser := jwt.NewParser(
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.Parse(token, s.keyFunc)
	if err != nil {
		return s.classify(err)
	}
	if !parsed.Valid {
		return ErrTokenMalformed
	}
	return nil
}

// Subject returns the subject claim of an already-validated token. It
// does not re-check expiry: the contract is that callers invoke it only
// after Validate reports true. A token that does not parse or verify
// produces a loud error rather than a silent empty identity.
func (s *TokenService) Subject(token string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.Parse(token, s.keyFunc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: missing subject claim", ErrTokenMalformed)
	}
	return subject, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrTokenUnsupported, token.Header["alg"])
	}
	return s.key, nil
}

func (s *TokenService) classify(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		return ErrTokenUnsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenMalformed
	}
}
