package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"character-image-generator/backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestMemoryStore_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, time.Minute)

	_, found, err := GetJSON[cachedThing](ctx, store, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, store, "k", cachedThing{Name: "Aria", Age: 30}, 0))
	got, found, err := GetJSON[cachedThing](ctx, store, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, cachedThing{Name: "Aria", Age: 30}, *got)
	assert.Equal(t, 1, store.Count())

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, 0)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, 0)
	require.NoError(t, store.Set(ctx, "k", []byte("{not json"), 0))

	_, found, err := GetJSON[cachedThing](ctx, store, "k")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewRedisClient_ParsesURL(t *testing.T) {
	client, err := NewRedisClient(config.RedisConfig{URL: "redis://:secret@cache.local:6380/2"})
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "cache.local:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	plain, err := NewRedisClient(config.RedisConfig{URL: "localhost:6379", DB: 3})
	require.NoError(t, err)
	defer plain.Close()
	assert.Equal(t, "localhost:6379", plain.Options().Addr)
	assert.Equal(t, 3, plain.Options().DB)
}

// Skips unless a Redis server is reachable at REDIS_TEST_URL.
func TestRedisStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, config.RedisConfig{URL: url, DB: 15})
	if err != nil {
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}
	store := NewRedisStore(client, "test:")
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	raw, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), raw)

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
