package httpx

import (
	"context"

	domainauth "github.com/target/authgate/internal/domain/auth"
)

// principalKey is an unexported context key type to avoid collisions across packages.
type principalKey struct{}

// SetPrincipalInContext returns a child context that carries the authenticated caller.
func SetPrincipalInContext(ctx context.Context, p domainauth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipalFromContext returns the authenticated caller and a boolean indicating presence.
func GetPrincipalFromContext(ctx context.Context) (domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domainauth.Principal)
	if !ok || p.UserID == "" {
		return domainauth.Principal{}, false
	}
	return p, true
}
