package rest

import (
	"errors"
	"fmt"
	"net/http"

	"big4-auction-service/internal/domain/shared"

	"github.com/gin-gonic/gin"
)

var errInternal = errors.New("internal server error")

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
		"kind":    shared.KindOf(err),
	})
}

// MapErrorToHTTP maps an error class to a status code and a short message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrInvalidSignature), errors.Is(err, shared.ErrMalformedPayload):
		return http.StatusBadRequest, "invalid webhook"
	case errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, shared.ErrPaymentNotEnabled):
		return http.StatusServiceUnavailable, "payments are not configured"
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, shared.ErrDomainConflict):
		return http.StatusConflict, "request conflicts with current state"
	case errors.Is(err, shared.ErrExternalService):
		return http.StatusBadGateway, "upstream service failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeError maps err and hides the detail of unclassified failures
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	status, message := MapErrorToHTTP(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("op", op).Msg("Request failed")
		JSONError(c, status, errInternal, message)
		return
	}
	h.logger.Debug().Err(err).Str("op", op).Str("kind", shared.KindOf(err)).Msg("Request rejected")
	JSONError(c, status, err, message)
}

// handleBindError sends a standardized JSON error for binding failures
func (h *Handler) handleBindError(c *gin.Context, op string, err error) {
	wrapped := fmt.Errorf("%w: invalid request payload: %v", shared.ErrValidation, err)
	h.logger.Warn().Str("op", op).Err(err).Msg("Binding error")
	JSONError(c, http.StatusBadRequest, wrapped, "invalid request payload")
}
