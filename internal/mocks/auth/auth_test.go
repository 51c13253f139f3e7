package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
	"github.com/target/authgate/internal/ports"
)

func TestMemoryUserStore_CreateAndLookup(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	u, err := store.Create(ctx, domainauth.NewUser{Name: "Ann", Email: "Ann@X.com", Number: 1, Role: domainauth.RoleNormal})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ann@x.com", u.Email)

	byEmail, err := store.GetByEmail(ctx, "ANN@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)

	exists, err := store.ExistsByNumber(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryUserStore_Uniqueness(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	_, err := store.Create(ctx, domainauth.NewUser{Email: "a@x.com", Number: 1})
	require.NoError(t, err)

	_, err = store.Create(ctx, domainauth.NewUser{Email: "a@x.com", Number: 2})
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "email", apperrors.GetField(err))

	_, err = store.Create(ctx, domainauth.NewUser{Email: "b@x.com", Number: 1})
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "number", apperrors.GetField(err))
}

func TestMemoryUserStore_NotFound(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	_, err := store.GetByEmail(ctx, "nobody@x.com")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = store.GetByID(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(store.Delete(ctx, "missing")))
}

func TestMemoryUserStore_UpdateRoleAndDelete(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	u, err := store.Create(ctx, domainauth.NewUser{Email: "a@x.com", Number: 1, Role: domainauth.RoleNormal})
	require.NoError(t, err)

	updated, err := store.UpdateRole(ctx, u.ID, domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, updated.Role)

	require.NoError(t, store.Delete(ctx, u.ID))
	assert.Equal(t, 0, store.Len())
}

func TestPlainHasher(t *testing.T) {
	h := PlainHasher{}
	hash, err := h.Hash("pw")
	require.NoError(t, err)

	ok, err := h.Verify(hash, "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Verify("garbage", "pw")
	assert.Error(t, err)
}

func TestStaticTokenIssuer(t *testing.T) {
	issuer := NewStaticTokenIssuer()

	token, claims, err := issuer.Issue("u1", domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	verified, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, claims, verified)

	issuer.Expire(token)
	_, err = issuer.Verify(token)
	assert.True(t, errors.Is(err, ports.ErrInvalidToken))

	_, err = issuer.Verify("bogus")
	assert.True(t, errors.Is(err, ports.ErrInvalidToken))
}

func TestMemoryRevoker(t *testing.T) {
	r := NewMemoryRevoker()
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
