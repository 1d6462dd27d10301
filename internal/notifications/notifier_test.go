package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestNotifier_PublishUser(t *testing.T) {
	rdb := newTestRedis(t)
	notifier := NewNotifier(rdb)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, UserChannel(42))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, notifier.PublishUser(ctx, 42, `{"type":"new_post"}`))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "notifications:user:42", msg.Channel)
		assert.JSONEq(t, `{"type":"new_post"}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, notifier.PublishUser(ctx, 1, "x"))
	assert.NoError(t, notifier.PublishBroadcast(ctx, "x"))
	assert.NoError(t, notifier.StartPatternSubscriber(ctx, func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:7", UserChannel(7))
}
