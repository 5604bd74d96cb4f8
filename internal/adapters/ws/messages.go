package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypePlaceBid    MessageType = "place_bid"
	MessageTypeGetItem     MessageType = "get_item"
	MessageTypePing        MessageType = "ping"

	// Server to Client message types
	MessageTypeBidPlaced  MessageType = "bid_placed"
	MessageTypeItemClosed MessageType = "item_closed"
	MessageTypeItemUpdate MessageType = "item_update"
	MessageTypeError      MessageType = "error"
	MessageTypePong       MessageType = "pong"
)

// ClientMessage is a frame received from a websocket client.
// Amount accepts a JSON number or a decimal string.
type ClientMessage struct {
	Type      MessageType      `json:"type"`
	ItemID    *uuid.UUID       `json:"item_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	ItemID    *uuid.UUID             `json:"item_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Kind      string                 `json:"kind,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

// NewErrorMessage reports err to the client together with its error class
func NewErrorMessage(err error, itemID *uuid.UUID) *ServerMessage {
	text := err.Error()
	return &ServerMessage{
		Type:      MessageTypeError,
		ItemID:    itemID,
		Error:     &text,
		Kind:      shared.KindOf(err),
		Timestamp: time.Now().Unix(),
	}
}

// NewItemMessage renders the public state of an item
func NewItemMessage(item *listing.Item) *ServerMessage {
	msg := NewServerMessage(MessageTypeItemUpdate)
	msg.ItemID = &item.ID
	msg.Data["title"] = item.Title
	msg.Data["seller_id"] = item.SellerID
	msg.Data["status"] = item.Status
	msg.Data["start_time"] = item.StartTime.Format(time.RFC3339)
	msg.Data["end_time"] = item.EndTime.Format(time.RFC3339)
	msg.Data["starting_bid"] = item.StartingBid.String()
	msg.Data["current_bid"] = item.CurrentBid.String()
	if item.HighBidderID != nil {
		msg.Data["high_bidder_id"] = item.HighBidderID
	}
	return msg
}

func (m *ClientMessage) validateItemID() error {
	if m.ItemID == nil || *m.ItemID == uuid.Nil {
		return shared.ErrItemIDRequired
	}
	return nil
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse client message: %v", shared.ErrValidation, err)
	}

	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe, MessageTypeGetItem:
		return m.validateItemID()
	case MessageTypePlaceBid:
		if err := m.validateItemID(); err != nil {
			return err
		}
		if m.Amount == nil || !m.Amount.IsPositive() {
			return shared.ErrInvalidAmount
		}
	case MessageTypePing:
	default:
		return shared.ErrUnknownMessageType
	}

	return nil
}
