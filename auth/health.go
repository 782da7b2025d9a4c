package auth

import (
	"context"

	"github.com/jonwraymond/authops/health"
)

// SigningKeyChecker reports whether the token service can round-trip a
// token with its signing key. The probe token never leaves the process.
func SigningKeyChecker(name string, tokens *TokenService) health.Checker {
	return health.NewCheckerFunc(name, func(ctx context.Context) health.Result {
		token, err := tokens.Issue(&Identity{Username: "healthcheck"})
		if err != nil {
			return health.Unhealthy("token issuance failed", err)
		}
		if err := tokens.Check(token); err != nil {
			return health.Unhealthy("token round trip failed", err)
		}
		return health.Healthy("signing key operational")
	})
}
