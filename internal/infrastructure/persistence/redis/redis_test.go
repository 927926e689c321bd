package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// 需要真实Redis,通过AUTOPARTS_TEST_REDIS_ADDR指定(如127.0.0.1:6379),使用15号库
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("AUTOPARTS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AUTOPARTS_TEST_REDIS_ADDR未设置,跳过Redis测试")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(newTestClient(t))
	ctx := context.Background()

	_, err := store.GetSession(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, store.SaveSession(ctx, 7, map[string]interface{}{"email": "ana@example.cl"}, time.Minute))
	session, err := store.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.cl", session["email"])

	require.NoError(t, store.DeleteSession(ctx, 7))
	_, err = store.GetSession(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	revoked, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestProductCache(t *testing.T) {
	cache := NewProductCache(newTestClient(t), time.Minute)
	ctx := context.Background()

	_, ok := cache.Load(ctx, 42)
	assert.False(t, ok)

	cache.Store(ctx, 42, []byte(`{"id":42}`))
	data, ok := cache.Load(ctx, 42)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":42}`, string(data))

	cache.Invalidate(ctx, 42, 43)
	_, ok = cache.Load(ctx, 42)
	assert.False(t, ok)
}
