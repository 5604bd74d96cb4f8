// Package dedupe remembers which provider webhook events were already
// processed so at-least-once delivery results in one effect.
package dedupe

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "webhook:event:"

// LRU is a process-local claim set bounded by size
type LRU struct {
	cache *lru.Cache
}

// NewLRU creates a claim set holding at most size event IDs
func NewLRU(size int) (*LRU, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedupe cache: %w", err)
	}
	return &LRU{cache: cache}, nil
}

func (l *LRU) Claim(ctx context.Context, eventID string) (bool, error) {
	seen, _ := l.cache.ContainsOrAdd(eventID, struct{}{})
	return !seen, nil
}

// Complete is a no-op: local claims die with the process anyway
func (l *LRU) Complete(ctx context.Context, eventID string) error {
	return nil
}

func (l *LRU) Release(ctx context.Context, eventID string) error {
	l.cache.Remove(eventID)
	return nil
}

// Redis is a claim set shared by every instance. A fresh claim expires
// after processingTTL; Complete extends it to ttl.
type Redis struct {
	client        *redis.Client
	processingTTL time.Duration
	ttl           time.Duration
}

func NewRedis(client *redis.Client, processingTTL, ttl time.Duration) *Redis {
	if processingTTL <= 0 || processingTTL > ttl {
		processingTTL = ttl
	}
	return &Redis{client: client, processingTTL: processingTTL, ttl: ttl}
}

func (r *Redis) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+eventID, time.Now().Unix(), r.processingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim event %s: %w", eventID, err)
	}
	return ok, nil
}

func (r *Redis) Complete(ctx context.Context, eventID string) error {
	if err := r.client.Expire(ctx, keyPrefix+eventID, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete event %s: %w", eventID, err)
	}
	return nil
}

func (r *Redis) Release(ctx context.Context, eventID string) error {
	if err := r.client.Del(ctx, keyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("failed to release event %s: %w", eventID, err)
	}
	return nil
}

// Tiered answers repeats from the local cache and falls through to the
// shared store for events this instance has not seen.
type Tiered struct {
	local  *LRU
	shared *Redis
	logger zerolog.Logger
}

type TieredParams struct {
	Local  *LRU
	Shared *Redis
	Logger zerolog.Logger
}

func NewTiered(params TieredParams) *Tiered {
	return &Tiered{
		local:  params.Local,
		shared: params.Shared,
		logger: params.Logger.With().Str("component", "webhook_dedupe").Logger(),
	}
}

func (t *Tiered) Claim(ctx context.Context, eventID string) (bool, error) {
	claimed, _ := t.local.Claim(ctx, eventID)
	if !claimed {
		t.logger.Debug().Str("event_id", eventID).Msg("Event seen by this instance")
		return false, nil
	}

	claimed, err := t.shared.Claim(ctx, eventID)
	if err != nil {
		t.local.Release(ctx, eventID)
		return false, err
	}
	if !claimed {
		t.logger.Debug().Str("event_id", eventID).Msg("Event claimed by another instance")
	}
	return claimed, nil
}

func (t *Tiered) Complete(ctx context.Context, eventID string) error {
	return t.shared.Complete(ctx, eventID)
}

func (t *Tiered) Release(ctx context.Context, eventID string) error {
	t.local.Release(ctx, eventID)
	return t.shared.Release(ctx, eventID)
}
