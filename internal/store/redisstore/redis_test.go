package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/eventboard-server/internal/store"
)

func TestOpen_InvalidURL(t *testing.T) {
	_, err := Open(Options{URL: "not a url"})
	assert.Error(t, err)
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(Options{URL: "redis://127.0.0.1:1/0", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Equal(t, "eventboard:events", New(client, "", nil).Key("events"))
	assert.Equal(t, "staging:bookmarks", New(client, "staging:", nil).Key("bookmarks"))
}

func TestGet_ConnectionErrorIsNotNotFound(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	b := New(client, "", nil)
	defer b.Close()

	_, err := b.Get(context.Background(), "events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get events from redis")
}

func openMiniredis(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := Open(Options{URL: "redis://" + mr.Addr(), Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestBackend_SetGet(t *testing.T) {
	b, _ := openMiniredis(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, store.KeyEvents, []byte(`[{"id":1}]`)))
	got, err := b.Get(ctx, store.KeyEvents)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	require.NoError(t, b.Set(ctx, store.KeyEvents, []byte(`[]`)))
	got, err = b.Get(ctx, store.KeyEvents)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestBackend_MissingKeyIsNotFound(t *testing.T) {
	b, _ := openMiniredis(t)

	_, err := b.Get(context.Background(), store.KeyBookmarks)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBackend_PrefixOnWire(t *testing.T) {
	b, mr := openMiniredis(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, store.KeyBookmarks, []byte("[2,3]")))

	raw, err := mr.Get("eventboard:bookmarks")
	require.NoError(t, err)
	assert.Equal(t, "[2,3]", raw)
	assert.False(t, mr.Exists(store.KeyBookmarks), "unprefixed key must not be written")
	assert.Zero(t, mr.TTL("eventboard:bookmarks"), "records never expire")
}

func TestBackend_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := Open(Options{URL: "redis://" + mr.Addr(), Prefix: "staging:"})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, mr.Set("staging:events", `[{"id":9}]`))
	got, err := b.Get(context.Background(), store.KeyEvents)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":9}]`, string(got))
}

func TestBackend_ThroughStore(t *testing.T) {
	b, mr := openMiniredis(t)
	ctx := context.Background()
	st := store.New(b, store.Options{})

	require.NoError(t, st.SaveBookmarks(ctx, []int64{4, 1}))
	assert.Equal(t, []int64{4, 1}, st.LoadBookmarks(ctx))

	raw, err := mr.Get("eventboard:bookmarks")
	require.NoError(t, err)
	assert.JSONEq(t, "[4,1]", raw)
}
