package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
	"github.com/target/authgate/internal/ports"
)

// UserAdminOptions groups dependencies for UserAdmin.
type UserAdminOptions struct {
	Users  ports.UserStore
	Logger *slog.Logger // optional
}

// UserAdmin provides operator actions on user accounts.
type UserAdmin struct {
	users  ports.UserStore
	logger *slog.Logger
}

// NewUserAdmin constructs a new UserAdmin.
func NewUserAdmin(opts UserAdminOptions) *UserAdmin {
	if opts.Users == nil {
		panic("UserStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserAdmin{users: opts.Users, logger: logger}
}

// GetUser looks a user up by email.
func (a *UserAdmin) GetUser(ctx context.Context, email string) (domainauth.User, error) {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return domainauth.User{}, apperrors.ValidationField("email", "email is required")
	}
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SetRole changes the role of the user with the given email. Unlike signup, an
// unknown role is rejected rather than defaulted.
func (a *UserAdmin) SetRole(ctx context.Context, email, role string) (domainauth.User, error) {
	r, ok := domainauth.LookupRole(role)
	if !ok {
		return domainauth.User{}, apperrors.ValidationField("role", "role must be admin or normal")
	}

	user, err := a.GetUser(ctx, email)
	if err != nil {
		return domainauth.User{}, err
	}
	if user.Role == r {
		return user, nil
	}

	updated, err := a.users.UpdateRole(ctx, user.ID, r)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("update role: %w", err)
	}
	a.logger.InfoContext(ctx, "user role changed",
		"user_id", updated.ID,
		"from", user.Role,
		"to", updated.Role,
	)
	return updated, nil
}
