package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/target/authgate/internal/domain/auth"
)

// ErrInvalidToken is wrapped by TokenIssuer.Verify for every rejected token
// (bad signature, expired, malformed or missing claims).
var ErrInvalidToken = errors.New("invalid token")

// UserStore persists user records.
// Missing records are reported as errors.AppError with code not_found and
// unique violations as code conflict with Field set.
type UserStore interface {
	Create(ctx context.Context, u domainauth.NewUser) (domainauth.User, error)
	GetByEmail(ctx context.Context, email string) (domainauth.User, error)
	GetByID(ctx context.Context, id string) (domainauth.User, error)
	ExistsByNumber(ctx context.Context, number int64) (bool, error)
	Delete(ctx context.Context, id string) error
	UpdateRole(ctx context.Context, id string, role domainauth.Role) (domainauth.User, error)
}

// PasswordHasher derives and checks one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns false with a nil error on mismatch; errors are reserved for malformed hashes.
	Verify(hash, password string) (bool, error)
}

// TokenIssuer creates and checks signed, time-limited session tokens.
type TokenIssuer interface {
	Issue(userID string, role domainauth.Role) (string, domainauth.SessionClaims, error)
	Verify(token string) (domainauth.SessionClaims, error)
}

// TokenRevoker records tokens that must no longer validate before their expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
