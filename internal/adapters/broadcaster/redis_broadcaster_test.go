package broadcaster

import (
	"context"
	"testing"
	"time"

	"big4-auction-service/internal/ports/outbound"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) *RedisBroadcaster {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewBroadcaster(RedisBroadcasterParams{RedisClient: client, Logger: zerolog.Nop()})
	t.Cleanup(func() {
		b.Close()
		client.Close()
	})
	return b
}

func TestPublishReachesSubscriber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := newTestBroadcaster(t)
	itemID := uuid.New()
	events := make(chan outbound.Event, 4)

	require.NoError(t, b.Subscribe(ctx, itemID, "client-1", events))
	require.True(t, b.IsSubscribed(ctx, itemID, "client-1"))

	// Subscribing twice is a no-op
	require.NoError(t, b.Subscribe(ctx, itemID, "client-1", events))

	require.NoError(t, b.Publish(ctx, itemID, outbound.Event{
		Type: outbound.EventTypeBidPlaced,
		Data: map[string]interface{}{"amount": "25"},
	}))

	select {
	case ev := <-events:
		require.Equal(t, outbound.EventTypeBidPlaced, ev.Type)
		require.Equal(t, itemID, ev.ItemID)
		require.Equal(t, "25", ev.Data["amount"])
		require.NotZero(t, ev.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := newTestBroadcaster(t)
	itemID := uuid.New()
	events := make(chan outbound.Event, 4)

	require.NoError(t, b.Subscribe(ctx, itemID, "client-1", events))
	require.NoError(t, b.Unsubscribe(ctx, itemID, "client-1"))
	require.False(t, b.IsSubscribed(ctx, itemID, "client-1"))

	// Unknown subscriptions are ignored
	require.NoError(t, b.Unsubscribe(ctx, uuid.New(), "client-2"))

	require.NoError(t, b.Publish(ctx, itemID, outbound.Event{Type: outbound.EventTypeItemClosed}))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after unsubscribe: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoveClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := newTestBroadcaster(t)
	first, second := uuid.New(), uuid.New()
	events := make(chan outbound.Event, 4)

	require.NoError(t, b.Subscribe(ctx, first, "client-1", events))
	require.NoError(t, b.Subscribe(ctx, second, "client-1", events))
	require.True(t, b.IsSubscribed(ctx, second, "client-1"))

	b.RemoveClient("client-1")
	require.False(t, b.IsSubscribed(ctx, first, "client-1"))
	require.False(t, b.IsSubscribed(ctx, second, "client-1"))
}
