// Package testutil provides testing utilities and helpers for authgate.
package testutil

import (
	"fmt"
	"sync/atomic"

	domainauth "github.com/target/authgate/internal/domain/auth"
)

var userSeq atomic.Int64

// NewUserBuilder provides a fluent interface for building domainauth.NewUser values for testing.
type NewUserBuilder struct {
	u domainauth.NewUser
}

// NewUser creates a NewUserBuilder with unique email and number defaults.
func NewUser() *NewUserBuilder {
	n := userSeq.Add(1)
	return &NewUserBuilder{
		u: domainauth.NewUser{
			Name:         fmt.Sprintf("Test User %d", n),
			Email:        fmt.Sprintf("user%d@example.com", n),
			PasswordHash: "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z0N8r1Z0yJ8pQ8fY5qT5x1aW",
			Number:       100000 + n,
			Role:         domainauth.RoleNormal,
		},
	}
}

// WithName sets the display name.
func (b *NewUserBuilder) WithName(name string) *NewUserBuilder {
	b.u.Name = name
	return b
}

// WithEmail sets the email address.
func (b *NewUserBuilder) WithEmail(email string) *NewUserBuilder {
	b.u.Email = email
	return b
}

// WithNumber sets the unique number.
func (b *NewUserBuilder) WithNumber(n int64) *NewUserBuilder {
	b.u.Number = n
	return b
}

// WithRole sets the role.
func (b *NewUserBuilder) WithRole(role domainauth.Role) *NewUserBuilder {
	b.u.Role = role
	return b
}

// Build returns the constructed value.
func (b *NewUserBuilder) Build() domainauth.NewUser {
	return b.u
}
