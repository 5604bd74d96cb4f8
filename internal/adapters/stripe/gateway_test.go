package stripe

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/shared"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testSecret = "whsec_test_secret"

func newTestGateway() *Gateway {
	return NewGateway(GatewayParams{
		Config: Config{
			SecretKey:      "sk_test_123",
			PublishableKey: "pk_test_123",
			WebhookSecret:  testSecret,
		},
		Logger: zerolog.Nop(),
	})
}

func sign(payload []byte, secret string, at time.Time) string {
	mac := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac))
}

func TestParseWebhook(t *testing.T) {
	t.Parallel()

	gw := newTestGateway()
	now := time.Now()

	tests := []struct {
		name    string
		payload string
		secret  string
		at      time.Time
		want    *payment.WebhookEvent
		wantErr error
	}{
		{
			name: "setup intent succeeded",
			payload: `{"id":"evt_1","object":"event","type":"setup_intent.succeeded",
				"data":{"object":{"id":"seti_1","object":"setup_intent","customer":"cus_1","payment_method":"pm_1"}}}`,
			want: &payment.WebhookEvent{
				ID:              "evt_1",
				Type:            payment.EventSetupIntentSucceeded,
				CustomerID:      "cus_1",
				PaymentMethodID: "pm_1",
				SetupIntentID:   "seti_1",
			},
		},
		{
			name: "setup intent failed carries the reason",
			payload: `{"id":"evt_2","object":"event","type":"setup_intent.setup_failed",
				"data":{"object":{"id":"seti_2","object":"setup_intent","customer":"cus_1",
				"last_setup_error":{"message":"Your card was declined."}}}}`,
			want: &payment.WebhookEvent{
				ID:             "evt_2",
				Type:           payment.EventSetupIntentSetupFailed,
				CustomerID:     "cus_1",
				SetupIntentID:  "seti_2",
				FailureMessage: "Your card was declined.",
			},
		},
		{
			name: "payment method attached",
			payload: `{"id":"evt_3","object":"event","type":"payment_method.attached",
				"data":{"object":{"id":"pm_9","object":"payment_method","customer":"cus_7"}}}`,
			want: &payment.WebhookEvent{
				ID:              "evt_3",
				Type:            payment.EventPaymentMethodAttached,
				CustomerID:      "cus_7",
				PaymentMethodID: "pm_9",
			},
		},
		{
			name:    "unhandled type keeps only id and type",
			payload: `{"id":"evt_4","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`,
			want:    &payment.WebhookEvent{ID: "evt_4", Type: "invoice.paid"},
		},
		{
			name:    "wrong secret",
			payload: `{"id":"evt_5","object":"event","type":"setup_intent.succeeded"}`,
			secret:  "whsec_other",
			wantErr: shared.ErrInvalidSignature,
		},
		{
			name:    "stale timestamp",
			payload: `{"id":"evt_6","object":"event","type":"setup_intent.succeeded"}`,
			at:      now.Add(-time.Hour),
			wantErr: shared.ErrInvalidSignature,
		},
		{
			name:    "signed but not json",
			payload: `not json`,
			wantErr: shared.ErrMalformedPayload,
		},
		{
			name:    "missing event id",
			payload: `{"object":"event","type":"setup_intent.succeeded"}`,
			wantErr: shared.ErrMalformedPayload,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			secret := tt.secret
			if secret == "" {
				secret = testSecret
			}
			at := tt.at
			if at.IsZero() {
				at = now
			}
			payload := []byte(tt.payload)

			got, err := gw.ParseWebhook(payload, sign(payload, secret, at))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, shared.ErrExternalService)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseWebhookMissingHeader(t *testing.T) {
	t.Parallel()

	_, err := newTestGateway().ParseWebhook([]byte(`{"id":"evt_1"}`), "")
	require.ErrorIs(t, err, shared.ErrInvalidSignature)
}

func TestPublishableKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pk_test_123", newTestGateway().PublishableKey())
}
