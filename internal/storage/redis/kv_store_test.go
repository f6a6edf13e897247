package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

func setupTestRedis(t *testing.T, options ...Option) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewKVStore(client, options...), mr
}

func TestKVStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "cart")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestKVStore_SetGetRemove(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:alice", `[]`))
	mr.CheckGet(t, "cart:alice", `[]`)

	value, err := store.Get(ctx, "cart:alice")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Remove(ctx, "cart:alice"))
	assert.False(t, mr.Exists("cart:alice"))
	require.NoError(t, store.Remove(ctx, "cart:alice"))
}

func TestKVStore_TTL(t *testing.T) {
	store, mr := setupTestRedis(t, WithTTL(time.Hour))

	require.NoError(t, store.Set(context.Background(), "cart", `[]`))
	assert.Equal(t, time.Hour, mr.TTL("cart"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(context.Background(), "cart")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestKVStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	mr.Close()

	_, err := store.Get(ctx, "cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	require.Error(t, store.Set(ctx, "cart", `[]`))
	require.Error(t, store.Ping(ctx))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	mr.CheckGet(t, "k", "v")
}
