package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a RedisStore backed by it.
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_Get(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("waveshop:cart", "payload"))

	data, err := store.Get(context.Background(), "waveshop:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_SetThenDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(ctx, "waveshop:cart", []byte("payload")))
	assert.True(t, mr.Exists("waveshop:cart"))

	require.NoError(t, store.Delete(ctx, "waveshop:cart"))
	assert.False(t, mr.Exists("waveshop:cart"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "waveshop:cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}
