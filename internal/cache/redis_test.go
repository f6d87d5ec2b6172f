package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisStore(client), mr
}

func TestKeyNaming(t *testing.T) {
	require.Equal(t, "followers:u2", FollowersKey("u2"))
	require.Equal(t, "following:u1", FollowingKey("u1"))
}

func TestRedisStoreGetMiss(t *testing.T) {
	store, _ := newTestStore(t)

	value, ok, err := store.Get(context.Background(), FollowersKey("u1"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, value)
}

func TestRedisStorePutWithExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutWithExpiry(ctx, FollowersKey("u2"), []byte("[]"), time.Hour))

	value, ok, err := store.Get(ctx, FollowersKey("u2"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", string(value))
	require.Equal(t, time.Hour, mr.TTL(FollowersKey("u2")))

	mr.FastForward(time.Hour + time.Second)
	_, ok, err = store.Get(ctx, FollowersKey("u2"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStoreInvalidateIsIdempotent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutWithExpiry(ctx, FollowingKey("u1"), []byte("[]"), time.Hour))
	require.NoError(t, store.Invalidate(ctx, FollowingKey("u1"), FollowersKey("u2")))
	require.False(t, mr.Exists(FollowingKey("u1")))

	require.NoError(t, store.Invalidate(ctx, FollowingKey("u1")))
	require.NoError(t, store.Invalidate(ctx))
}

func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), FollowersKey("u1"))
	require.Error(t, err)
	require.Error(t, store.Invalidate(context.Background(), FollowersKey("u1")))
}
