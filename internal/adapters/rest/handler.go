package rest

import (
	"fmt"
	"net/http"
	"time"

	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errInvalidPathID = fmt.Errorf("%w: path id must be a UUID", shared.ErrValidation)

// Services groups the use cases served over HTTP
type Services struct {
	Listing       inbound.ListingService
	Bids          inbound.BidService
	Settlement    inbound.SettlementService
	Accounts      inbound.AccountService
	Notifications inbound.NotificationService
	Feedback      inbound.FeedbackService
	Payments      inbound.PaymentService
}

// Handler holds the gin handlers of every route
type Handler struct {
	services Services
	clock    func() time.Time
	logger   zerolog.Logger
}

type HandlerParams struct {
	Services Services
	// Clock is the time used for manual close requests; defaults to time.Now
	Clock  func() time.Time
	Logger zerolog.Logger
}

func NewHandler(params HandlerParams) *Handler {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		services: params.Services,
		clock:    clock,
		logger:   params.Logger.With().Str("component", "rest_handler").Logger(),
	}
}

// pathID parses a UUID path parameter and reports a 400 when it is malformed
func (h *Handler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		JSONError(c, http.StatusBadRequest, errInvalidPathID, "invalid request")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "big4-auction"})
}
