package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxWebhookBytes caps webhook bodies; provider events are far smaller
const maxWebhookBytes = 65536

const signatureHeader = "Stripe-Signature"

func (h *Handler) PublicKey(c *gin.Context) {
	JSONResponse(c, http.StatusOK, gin.H{"publicKey": h.services.Payments.PublishableKey()}, "publishable key")
}

// CreateSetupIntent starts a card setup for the caller
func (h *Handler) CreateSetupIntent(c *gin.Context) {
	intent, err := h.services.Payments.CreateSetupIntent(c.Request.Context(), callerID(c))
	if err != nil {
		h.writeError(c, "CreateSetupIntent", err)
		return
	}
	JSONResponse(c, http.StatusOK, intent, "setup intent created")
}

// Webhook verifies and dispatches a provider event. Any 2xx tells the
// provider to stop redelivering.
func (h *Handler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	payload, err := c.GetRawData()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read webhook body")
		JSONError(c, http.StatusRequestEntityTooLarge, err, "webhook body too large")
		return
	}

	if err := h.services.Payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		h.writeError(c, "Webhook", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
