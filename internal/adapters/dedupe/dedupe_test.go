package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestLRUClaim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, err := NewLRU(2)
	require.NoError(t, err)

	claimed, err := l.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = l.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, claimed)

	require.NoError(t, l.Release(ctx, "evt_1"))
	claimed, _ = l.Claim(ctx, "evt_1")
	require.True(t, claimed, "a released event can be claimed again")

	// evt_1 is evicted once two newer events arrive
	l.Claim(ctx, "evt_2")
	l.Claim(ctx, "evt_3")
	claimed, _ = l.Claim(ctx, "evt_1")
	require.True(t, claimed)
}

func TestNewLRURejectsBadSize(t *testing.T) {
	t.Parallel()

	_, err := NewLRU(0)
	require.Error(t, err)
}

func TestRedisClaim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client := newRedis(t)
	r := NewRedis(client, time.Minute, time.Hour)

	claimed, err := r.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed)
	require.True(t, mr.Exists(keyPrefix+"evt_1"))
	require.Equal(t, time.Minute, mr.TTL(keyPrefix+"evt_1"))

	claimed, err = r.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, claimed)

	require.NoError(t, r.Release(ctx, "evt_1"))
	claimed, err = r.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, r.Complete(ctx, "evt_1"))
	require.Equal(t, time.Hour, mr.TTL(keyPrefix+"evt_1"))

	mr.FastForward(2 * time.Hour)
	claimed, err = r.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed, "claims expire after the ttl")
}

func TestRedisUnfinishedClaimExpiresEarly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client := newRedis(t)
	r := NewRedis(client, time.Minute, time.Hour)

	claimed, err := r.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed)

	// Processing never completed, e.g. the instance died mid-dispatch
	mr.FastForward(2 * time.Minute)
	claimed, err = r.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed, "a redelivery is processed again")
}

func TestNewRedisClampsProcessingTTL(t *testing.T) {
	t.Parallel()

	_, client := newRedis(t)
	require.Equal(t, time.Hour, NewRedis(client, 0, time.Hour).processingTTL)
	require.Equal(t, time.Hour, NewRedis(client, 2*time.Hour, time.Hour).processingTTL)
}

func TestRedisClaimStoreDown(t *testing.T) {
	t.Parallel()

	mr, client := newRedis(t)
	r := NewRedis(client, time.Minute, time.Hour)
	mr.Close()

	_, err := r.Claim(context.Background(), "evt_1")
	require.Error(t, err)
}

func TestTieredClaim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client := newRedis(t)

	newInstance := func() *Tiered {
		local, err := NewLRU(16)
		require.NoError(t, err)
		return NewTiered(TieredParams{
			Local:  local,
			Shared: NewRedis(client, time.Minute, time.Hour),
			Logger: zerolog.Nop(),
		})
	}
	a, b := newInstance(), newInstance()

	claimed, err := a.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = a.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, claimed, "repeat on the same instance")

	claimed, err = b.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, claimed, "repeat on another instance")

	require.NoError(t, a.Complete(ctx, "evt_1"))
	require.Equal(t, time.Hour, mr.TTL(keyPrefix+"evt_1"))

	require.NoError(t, a.Release(ctx, "evt_1"))
	require.False(t, mr.Exists(keyPrefix+"evt_1"))
	claimed, err = a.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestTieredClaimForgetsLocalOnStoreFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client := newRedis(t)
	local, err := NewLRU(16)
	require.NoError(t, err)
	tiered := NewTiered(TieredParams{Local: local, Shared: NewRedis(client, time.Minute, time.Hour), Logger: zerolog.Nop()})

	mr.SetError("ERR store unavailable")
	_, err = tiered.Claim(ctx, "evt_1")
	require.Error(t, err)

	mr.SetError("")
	claimed, err := tiered.Claim(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, claimed, "a failed claim must not poison the local cache")
}
