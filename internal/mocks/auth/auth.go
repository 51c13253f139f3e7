package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
	"github.com/target/authgate/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.UserStore      = (*MemoryUserStore)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
	_ ports.TokenIssuer    = (*StaticTokenIssuer)(nil)
	_ ports.TokenRevoker   = (*MemoryRevoker)(nil)
)

// MemoryUserStore is an in-memory user store for unit tests.
// It enforces email and number uniqueness like the Postgres schema does.
// The optional Func fields override the default behavior for error injection.
type MemoryUserStore struct {
	CreateFunc         func(ctx context.Context, u domainauth.NewUser) (domainauth.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (domainauth.User, error)
	GetByIDFunc        func(ctx context.Context, id string) (domainauth.User, error)
	ExistsByNumberFunc func(ctx context.Context, number int64) (bool, error)
	DeleteFunc         func(ctx context.Context, id string) error

	mu     sync.Mutex
	users  map[string]domainauth.User
	nextID int
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]domainauth.User)}
}

func (m *MemoryUserStore) init() {
	if m.users == nil {
		m.users = make(map[string]domainauth.User)
	}
}

func (m *MemoryUserStore) Create(ctx context.Context, u domainauth.NewUser) (domainauth.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()

	email := domainauth.NormalizeEmail(u.Email)
	for _, existing := range m.users {
		if existing.Email == email {
			return domainauth.User{}, apperrors.ConflictField("email", "duplicate email")
		}
		if existing.Number == u.Number {
			return domainauth.User{}, apperrors.ConflictField("number", "duplicate number")
		}
	}

	m.nextID++
	now := time.Now()
	user := domainauth.User{
		ID:           fmt.Sprintf("user-%d", m.nextID),
		Name:         u.Name,
		Email:        email,
		PasswordHash: u.PasswordHash,
		Number:       u.Number,
		Role:         u.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (domainauth.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email = domainauth.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domainauth.User{}, apperrors.NotFound("User not found")
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (domainauth.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domainauth.User{}, apperrors.NotFound("User not found")
	}
	return u, nil
}

func (m *MemoryUserStore) ExistsByNumber(ctx context.Context, number int64) (bool, error) {
	if m.ExistsByNumberFunc != nil {
		return m.ExistsByNumberFunc(ctx, number)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryUserStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return apperrors.NotFound("User not found")
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryUserStore) UpdateRole(_ context.Context, id string, role domainauth.Role) (domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domainauth.User{}, apperrors.NotFound("User not found")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return u, nil
}

// Len returns the number of stored users.
func (m *MemoryUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// plainPrefix marks hashes produced by PlainHasher.
const plainPrefix = "plain:"

// PlainHasher is a reversible stand-in for bcrypt that keeps unit tests fast.
type PlainHasher struct {
	HashErr   error
	VerifyErr error
}

func (h PlainHasher) Hash(password string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return plainPrefix + password, nil
}

func (h PlainHasher) Verify(hash, password string) (bool, error) {
	if h.VerifyErr != nil {
		return false, h.VerifyErr
	}
	if !strings.HasPrefix(hash, plainPrefix) {
		return false, errors.New("malformed hash")
	}
	return strings.TrimPrefix(hash, plainPrefix) == password, nil
}

// StaticTokenIssuer issues sequential opaque tokens and remembers their claims.
type StaticTokenIssuer struct {
	TTL      time.Duration
	IssueErr error

	mu     sync.Mutex
	seq    int
	tokens map[string]domainauth.SessionClaims
}

// NewStaticTokenIssuer creates an issuer whose tokens live for one hour.
func NewStaticTokenIssuer() *StaticTokenIssuer {
	return &StaticTokenIssuer{TTL: time.Hour, tokens: make(map[string]domainauth.SessionClaims)}
}

func (s *StaticTokenIssuer) Issue(userID string, role domainauth.Role) (string, domainauth.SessionClaims, error) {
	if s.IssueErr != nil {
		return "", domainauth.SessionClaims{}, s.IssueErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = make(map[string]domainauth.SessionClaims)
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	s.seq++
	now := time.Now()
	token := fmt.Sprintf("token-%d", s.seq)
	claims := domainauth.SessionClaims{
		UserID:    userID,
		Role:      role,
		TokenID:   fmt.Sprintf("jti-%d", s.seq),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.tokens[token] = claims
	return token, claims, nil
}

func (s *StaticTokenIssuer) Verify(token string) (domainauth.SessionClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.tokens[token]
	if !ok {
		return domainauth.SessionClaims{}, fmt.Errorf("%w: unknown token", ports.ErrInvalidToken)
	}
	if !time.Now().Before(claims.ExpiresAt) {
		return domainauth.SessionClaims{}, fmt.Errorf("%w: expired", ports.ErrInvalidToken)
	}
	return claims, nil
}

// Expire moves the token's expiry into the past.
func (s *StaticTokenIssuer) Expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claims, ok := s.tokens[token]; ok {
		claims.ExpiresAt = time.Now().Add(-time.Second)
		s.tokens[token] = claims
	}
}

// MemoryRevoker is an in-memory revocation list for unit tests.
type MemoryRevoker struct {
	Err error

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryRevoker creates an empty revocation list.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time)}
}

func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = make(map[string]time.Time)
	}
	m.revoked[tokenID] = until
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}
