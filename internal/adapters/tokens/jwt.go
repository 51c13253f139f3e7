package tokens

// Package tokens provides the HS256 JWT implementation of ports.TokenIssuer.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/target/authgate/internal/domain/auth"
	"github.com/target/authgate/internal/ports"
)

// DefaultTTL is the session token lifetime when none is configured.
const DefaultTTL = time.Hour

var _ ports.TokenIssuer = (*JWTIssuer)(nil)

// claims is the wire payload: {id, role, jti, iat, exp} plus iss when configured.
type claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuerOptions groups dependencies for NewJWTIssuer.
type JWTIssuerOptions struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// JWTIssuer signs and verifies session tokens with a shared secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. The secret must be non-empty.
func NewJWTIssuer(opts JWTIssuerOptions) (*JWTIssuer, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JWTIssuer{secret: opts.Secret, ttl: ttl, issuer: opts.Issuer, now: now}, nil
}

// TTL returns the lifetime of issued tokens.
func (j *JWTIssuer) TTL() time.Duration { return j.ttl }

func (j *JWTIssuer) Issue(userID string, role domainauth.Role) (string, domainauth.SessionClaims, error) {
	if userID == "" {
		return "", domainauth.SessionClaims{}, errors.New("user id is required")
	}

	// JWT timestamps have second precision.
	now := j.now().Truncate(time.Second)
	c := claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", domainauth.SessionClaims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, toSessionClaims(c), nil
}

func (j *JWTIssuer) Verify(token string) (domainauth.SessionClaims, error) {
	if token == "" {
		return domainauth.SessionClaims{}, fmt.Errorf("%w: empty token", ports.ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return domainauth.SessionClaims{}, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	if !parsed.Valid || c.UserID == "" {
		return domainauth.SessionClaims{}, fmt.Errorf("%w: missing subject", ports.ErrInvalidToken)
	}

	return toSessionClaims(c), nil
}

func toSessionClaims(c claims) domainauth.SessionClaims {
	out := domainauth.SessionClaims{
		UserID:  c.UserID,
		Role:    domainauth.ParseRole(c.Role),
		TokenID: c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
