package ws

import (
	"testing"

	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseAndValidateClientMessage(t *testing.T) {
	t.Parallel()

	itemID := uuid.New().String()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "ping", raw: `{"type":"ping"}`},
		{name: "subscribe", raw: `{"type":"subscribe","item_id":"` + itemID + `"}`},
		{name: "bid with string amount", raw: `{"type":"place_bid","item_id":"` + itemID + `","amount":"12.50"}`},
		{name: "bid with number amount", raw: `{"type":"place_bid","item_id":"` + itemID + `","amount":12.5}`},
		{name: "not json", raw: `{type}`, wantErr: shared.ErrValidation},
		{name: "missing type", raw: `{"item_id":"` + itemID + `"}`, wantErr: shared.ErrMessageTypeRequired},
		{name: "unknown type", raw: `{"type":"shout"}`, wantErr: shared.ErrUnknownMessageType},
		{name: "subscribe without item", raw: `{"type":"subscribe"}`, wantErr: shared.ErrItemIDRequired},
		{name: "get item with nil uuid", raw: `{"type":"get_item","item_id":"00000000-0000-0000-0000-000000000000"}`, wantErr: shared.ErrItemIDRequired},
		{name: "bid without amount", raw: `{"type":"place_bid","item_id":"` + itemID + `"}`, wantErr: shared.ErrInvalidAmount},
		{name: "negative bid", raw: `{"type":"place_bid","item_id":"` + itemID + `","amount":"-1"}`, wantErr: shared.ErrInvalidAmount},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := ParseClientMessage([]byte(tt.raw))
			if err == nil {
				err = msg.Validate()
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, "validation", shared.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConvertEventToMessage(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	tests := []struct {
		event outbound.EventType
		want  MessageType
	}{
		{event: outbound.EventTypeBidPlaced, want: MessageTypeBidPlaced},
		{event: outbound.EventTypeItemClosed, want: MessageTypeItemClosed},
		{event: outbound.EventTypeItemUpdated, want: MessageTypeItemUpdate},
	}

	for _, tt := range tests {

		tt := tt
		msg := convertEventToMessage(outbound.Event{
			Type:      tt.event,
			ItemID:    itemID,
			Data:      map[string]interface{}{"amount": "25"},
			Timestamp: 42,
		})
		require.Equal(t, tt.want, msg.Type)
		require.Equal(t, itemID, *msg.ItemID)
		require.Equal(t, "25", msg.Data["amount"])
		require.Equal(t, int64(42), msg.Timestamp)
	}
}

func TestNewErrorMessageCarriesKind(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	msg := NewErrorMessage(shared.ErrBidTooLow, &itemID)
	require.Equal(t, MessageTypeError, msg.Type)
	require.Equal(t, "domain_conflict", msg.Kind)
	require.Equal(t, shared.ErrBidTooLow.Error(), *msg.Error)
	require.Equal(t, itemID, *msg.ItemID)
}
