package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/authgate/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewRevocationStoreWithPrefix(client, "test:revoked:")
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, "test:revoked:jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRevocationStore_ExpiredTokenIsNotStored(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewRevocationStoreWithPrefix(client, "test:revoked:")
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))

	exists, err := client.Exists(ctx, "test:revoked:jti-old").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestRevocationStore_ExpiresWithTTL(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewRevocationStoreWithPrefix(client, "test:revoked:")
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-short", time.Now().Add(1100*time.Millisecond)))
	time.Sleep(1500 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_EmptyTokenID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewRevocationStore(client)
	ctx := context.Background()

	assert.Error(t, store.Revoke(ctx, "", time.Now().Add(time.Minute)))

	revoked, err := store.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_ClosedClient(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRevocationStore(client)
	require.NoError(t, client.Close())

	_, err := store.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}
