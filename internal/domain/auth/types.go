package auth

// Package auth contains domain-level types for users, credentials and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and token claims.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNormal Role = "normal"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleNormal:
		return true
	default:
		return false
	}
}

// ParseRole maps input to a Role. Only the exact enumerated values are
// recognized; anything else, including "ADMIN", yields RoleNormal.
func ParseRole(s string) Role {
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleNormal
}

// LookupRole resolves operator input case-insensitively: ok is false for unknown values.
func LookupRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// NormalizeEmail returns the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is a registered account as persisted by the user store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Number       int64     `json:"number"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the client-facing projection of a User.
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Number int64  `json:"number"`
	Role   Role   `json:"role"`
}

// Public strips credentials and bookkeeping fields.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Number: u.Number,
		Role:   u.Role,
	}
}

// NewUser carries the fields needed to create a user record.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Number       int64
	Role         Role
}

// SessionClaims is the verified payload of a session token.
type SessionClaims struct {
	UserID    string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal identifies the caller behind a valid session.
type Principal struct {
	UserID string `json:"id"`
	Role   Role   `json:"role"`
}

// IsAdmin returns true if the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
