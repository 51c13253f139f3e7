package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
	"github.com/target/authgate/internal/observability/metrics"
	"github.com/target/authgate/internal/observability/statsd"
	"github.com/target/authgate/internal/ports"
)

// Client-facing messages. HTTP handlers render these verbatim.
const (
	MsgUserExists         = "User already registered"
	MsgNumberExists       = "Number already registered"
	MsgUserNotFound       = "User not found"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUnauthorized       = "Unauthorized"
	MsgInvalidToken       = "Invalid token"
	MsgInternal           = "Internal server error"
)

// Credentials groups the credential primitives AuthService depends on.
type Credentials struct {
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
	// Revoker is optional. When nil, logout only clears the cookie and a
	// previously issued token stays valid until it expires.
	Revoker ports.TokenRevoker
}

// AuthObservability groups optional logging and metrics sinks.
type AuthObservability struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users         ports.UserStore
	Credentials   Credentials
	Observability AuthObservability
}

// AuthService registers users, checks credentials and validates session tokens.
// It holds no mutable state; every call is independent.
type AuthService struct {
	users   ports.UserStore
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	revoker ports.TokenRevoker
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Users == nil {
		panic("UserStore is required")
	}
	if opts.Credentials.Hasher == nil {
		panic("PasswordHasher is required")
	}
	if opts.Credentials.Tokens == nil {
		panic("TokenIssuer is required")
	}

	logger := opts.Observability.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Observability.Metrics
	if sink == nil {
		sink = statsd.NopSink{}
	}

	return &AuthService{
		users:   opts.Users,
		hasher:  opts.Credentials.Hasher,
		tokens:  opts.Credentials.Tokens,
		revoker: opts.Credentials.Revoker,
		logger:  logger.With("component", "auth_service"),
		metrics: sink,
	}
}

// RegisterInput carries the fields of a signup request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Number   int64
	// Role is free-form; absent or unknown values register a normal user.
	Role string
}

// RegisterResult is a created user plus its first session token.
type RegisterResult struct {
	User      domainauth.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user and issues a session token for it.
// Either both happen or neither is visible afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *RegisterResult, err error) {
	start := time.Now()
	defer func() { s.emit(metrics.OpRegister, start, err) }()

	name := strings.TrimSpace(in.Name)
	email := domainauth.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, apperrors.ValidationField("name", "name is required")
	case email == "":
		return nil, apperrors.ValidationField("email", "email is required")
	case in.Password == "":
		return nil, apperrors.ValidationField("password", "password is required")
	}

	if _, lookupErr := s.users.GetByEmail(ctx, email); lookupErr == nil {
		return nil, apperrors.ConflictField("email", MsgUserExists)
	} else if !apperrors.IsNotFound(lookupErr) {
		return nil, s.internal(ctx, "lookup user by email", lookupErr)
	}

	taken, err := s.users.ExistsByNumber(ctx, in.Number)
	if err != nil {
		return nil, s.internal(ctx, "check number", err)
	}
	if taken {
		return nil, apperrors.ConflictField("number", MsgNumberExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	user, err := s.users.Create(ctx, domainauth.NewUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Number:       in.Number,
		Role:         domainauth.ParseRole(in.Role),
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			// Lost a race with a concurrent signup for the same email or number.
			return nil, conflictFor(apperrors.GetField(err))
		}
		return nil, s.internal(ctx, "create user", err)
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.discardUser(ctx, user.ID)
		return nil, s.internal(ctx, "issue token", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return &RegisterResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// AuthResult is an authenticated user plus a fresh session token.
type AuthResult struct {
	User      domainauth.User
	Token     string
	ExpiresAt time.Time
}

// Authenticate checks an email/password pair and issues a session token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (res *AuthResult, err error) {
	start := time.Now()
	defer func() { s.emit(metrics.OpAuthenticate, start, err) }()

	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		return nil, s.internal(ctx, "lookup user by email", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, s.internal(ctx, "verify password", err)
	}
	if !ok {
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, s.internal(ctx, "issue token", err)
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// ValidateSession resolves a session token to the caller's identity. The role is read
// from the user store, not from the token, so role changes apply immediately.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (p domainauth.Principal, err error) {
	start := time.Now()
	defer func() { s.emit(metrics.OpValidateSession, start, err) }()

	if token == "" {
		return domainauth.Principal{}, apperrors.Unauthorized(MsgUnauthorized)
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domainauth.Principal{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, MsgInvalidToken)
	}

	if s.revoker != nil {
		revoked, revErr := s.revoker.IsRevoked(ctx, claims.TokenID)
		if revErr != nil {
			return domainauth.Principal{}, s.internal(ctx, "check token revocation", revErr)
		}
		if revoked {
			return domainauth.Principal{}, apperrors.Unauthorized(MsgInvalidToken)
		}
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domainauth.Principal{}, apperrors.Unauthorized(MsgUserNotFound)
		}
		return domainauth.Principal{}, s.internal(ctx, "lookup user by id", err)
	}

	return domainauth.Principal{UserID: user.ID, Role: user.Role}, nil
}

// EndSessionResult tells the transport what to do with the client's credential.
type EndSessionResult struct {
	ClearCookie bool
}

// EndSession logs the caller out. It always succeeds.
func (s *AuthService) EndSession(ctx context.Context, token string) EndSessionResult {
	start := time.Now()
	defer s.emit(metrics.OpEndSession, start, nil)

	if s.revoker == nil || token == "" {
		return EndSessionResult{ClearCookie: true}
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return EndSessionResult{ClearCookie: true}
	}
	if revErr := s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); revErr != nil {
		s.logger.WarnContext(ctx, "token revocation failed", "user_id", claims.UserID, "error", revErr)
	}
	return EndSessionResult{ClearCookie: true}
}

// discardUser removes a user created earlier in a failed Register call.
func (s *AuthService) discardUser(ctx context.Context, userID string) {
	if err := s.users.Delete(context.WithoutCancel(ctx), userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to roll back registration", "user_id", userID, "error", err)
	}
}

// internal logs the cause and returns an error that carries no detail to clients.
func (s *AuthService) internal(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "auth operation failed", "op", op, "error", err)
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgInternal)
}

func (s *AuthService) emit(op string, start time.Time, err error) {
	metrics.EmitAuthOutcome(s.metrics, metrics.AuthMetric{
		Operation: op,
		Duration:  time.Since(start),
		Err:       err,
	})
}

func conflictFor(field string) error {
	if field == "number" {
		return apperrors.ConflictField("number", MsgNumberExists)
	}
	return apperrors.ConflictField("email", MsgUserExists)
}
