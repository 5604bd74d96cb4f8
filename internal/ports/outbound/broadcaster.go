package outbound

//go:generate mockgen -source=broadcaster.go -destination=../../mocks/mock_broadcaster.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event being broadcasted
type EventType string

const (
	EventTypeItemUpdated EventType = "item.updated"
	EventTypeBidPlaced   EventType = "bid.placed"
	EventTypeItemClosed  EventType = "item.closed"
	EventTypeError       EventType = "error"
)

// Event represents a broadcast event
type Event struct {
	Type      EventType              `json:"type"`
	ItemID    uuid.UUID              `json:"item_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for broadcasting item events
type Broadcaster interface {
	// Subscribe subscribes a client to events for a specific item.
	// All items a client follows deliver to the same channel.
	Subscribe(ctx context.Context, itemID uuid.UUID, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from events for a specific item
	Unsubscribe(ctx context.Context, itemID uuid.UUID, clientID string) error

	// Publish publishes an event to all subscribers of an item
	Publish(ctx context.Context, itemID uuid.UUID, event Event) error

	// IsSubscribed checks if a client is subscribed to an item
	IsSubscribed(ctx context.Context, itemID uuid.UUID, clientID string) bool
}

// CloseScheduler arranges for items to be closed when their window ends
type CloseScheduler interface {
	Schedule(ctx context.Context, itemID uuid.UUID, endTime time.Time) error
	Cancel(ctx context.Context, itemID uuid.UUID) error
}
