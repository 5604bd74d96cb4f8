package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroadcaster fans item events out to local clients through Redis
// pub/sub, so every process sees bids accepted by any other.
// Event channels belong to the caller and are never closed here.
type RedisBroadcaster struct {
	client        *redis.Client
	subscribers   map[string]chan outbound.Event // clientID -> local channel
	pubsubs       map[string]*redis.PubSub       // clientID -> pubsub instance
	clientsToItem map[string]map[uuid.UUID]bool  // clientID -> itemID -> subscribed
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	logger        zerolog.Logger
}

type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

func NewBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisBroadcaster{
		client:        params.RedisClient,
		subscribers:   make(map[string]chan outbound.Event),
		pubsubs:       make(map[string]*redis.PubSub),
		clientsToItem: make(map[string]map[uuid.UUID]bool),
		ctx:           ctx,
		cancel:        cancel,
		logger:        params.Logger.With().Str("component", "redis_broadcaster").Logger(),
	}
}

func itemChannel(itemID uuid.UUID) string {
	return fmt.Sprintf("item:%s", itemID.String())
}

// Subscribe subscribes a client to events for a specific item
func (r *RedisBroadcaster) Subscribe(ctx context.Context, itemID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clientsToItem[clientID][itemID] {
		r.logger.Debug().
			Str("client_id", clientID).
			Str("item_id", itemID.String()).
			Msg("Client already subscribed to item")
		return nil
	}

	pubsub, exists := r.pubsubs[clientID]
	if !exists {
		pubsub = r.client.Subscribe(ctx, itemChannel(itemID))
		// Wait for the confirmation so a publish right after Subscribe is not missed
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			r.logger.Error().Err(err).Str("client_id", clientID).Str("item_id", itemID.String()).Msg("Failed to subscribe to Redis channel")
			return fmt.Errorf("failed to subscribe to item: %w", err)
		}
		r.pubsubs[clientID] = pubsub
		r.subscribers[clientID] = eventChan
		go r.listenForRedisMessages(pubsub, clientID, eventChan)
	} else if err := pubsub.Subscribe(ctx, itemChannel(itemID)); err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID).Str("item_id", itemID.String()).Msg("Failed to subscribe to Redis channel")
		return fmt.Errorf("failed to subscribe to item: %w", err)
	}

	if r.clientsToItem[clientID] == nil {
		r.clientsToItem[clientID] = make(map[uuid.UUID]bool)
	}
	r.clientsToItem[clientID][itemID] = true

	r.logger.Info().
		Str("client_id", clientID).
		Str("item_id", itemID.String()).
		Msg("Client subscribed to item via Redis")
	return nil
}

// Unsubscribe unsubscribes a client from events for a specific item
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, itemID uuid.UUID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, exists := r.clientsToItem[clientID]
	if !exists || !items[itemID] {
		return nil
	}
	delete(items, itemID)

	pubsub := r.pubsubs[clientID]
	if len(items) == 0 {
		r.dropClientLocked(clientID)
	} else if pubsub != nil {
		if err := pubsub.Unsubscribe(ctx, itemChannel(itemID)); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Str("item_id", itemID.String()).Msg("Error unsubscribing from Redis channel")
			return fmt.Errorf("failed to unsubscribe from item: %w", err)
		}
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("item_id", itemID.String()).
		Msg("Client unsubscribed from item")
	return nil
}

// RemoveClient drops every subscription held by clientID
func (r *RedisBroadcaster) RemoveClient(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropClientLocked(clientID)
}

func (r *RedisBroadcaster) dropClientLocked(clientID string) {
	delete(r.clientsToItem, clientID)
	delete(r.subscribers, clientID)
	if pubsub, exists := r.pubsubs[clientID]; exists {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}
}

// Publish publishes an event to all subscribers of an item via Redis
func (r *RedisBroadcaster) Publish(ctx context.Context, itemID uuid.UUID, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	event.ItemID = itemID

	eventJSON, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := r.client.Publish(ctx, itemChannel(itemID), eventJSON)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Info().
		Str("event_type", string(event.Type)).
		Str("item_id", itemID.String()).
		Int64("subscriber_count", result.Val()).
		Msg("Published event to item")

	return nil
}

// IsSubscribed checks if a client is subscribed to an item
func (r *RedisBroadcaster) IsSubscribed(ctx context.Context, itemID uuid.UUID, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.clientsToItem[clientID][itemID]
}

// listenForRedisMessages forwards Redis messages to the client's local channel
func (r *RedisBroadcaster) listenForRedisMessages(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("client_id", clientID).Msg("Redis message listener panic for client")
		}
	}()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Debug().Str("client_id", clientID).Msg("Redis channel closed for client")
				return
			}

			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal Redis message for client")
				continue
			}

			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Local channel full for client, dropping event")
			}

		case <-r.ctx.Done():
			return
		}
	}
}

// Close drops all subscriptions. The Redis client is left open for its other users.
func (r *RedisBroadcaster) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	for clientID := range r.pubsubs {
		r.dropClientLocked(clientID)
	}
	return nil
}
