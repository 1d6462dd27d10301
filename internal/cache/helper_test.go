package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestAside_MissThenHit(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func() (widget, error) {
		fetches++
		return widget{ID: 7, Name: "gears"}, nil
	}

	got, err := Aside(ctx, rdb, "quill:widget:7", "widget", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "gears", got.Name)
	assert.Equal(t, 1, fetches)
	assert.True(t, mr.Exists("quill:widget:7"))

	got, err = Aside(ctx, rdb, "quill:widget:7", "widget", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, 1, fetches, "second lookup should be served from cache")
}

func TestAside_NilClientFallsThrough(t *testing.T) {
	got, err := Aside(context.Background(), nil, "k", "widget", time.Minute, func() (widget, error) {
		return widget{ID: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)

	wantErr := errors.New("db down")
	_, err := Aside(context.Background(), rdb, "k", "widget", time.Minute, func() (widget, error) {
		return widget{}, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists("k"))
}

func TestAside_CorruptPayloadDropped(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	got, err := Aside(context.Background(), rdb, "k", "widget", time.Minute, func() (widget, error) {
		return widget{ID: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)
}

func TestInvalidate(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))

	Invalidate(context.Background(), rdb, "a", "b")
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))

	// Nil client is a no-op.
	Invalidate(context.Background(), nil, "a")
}
