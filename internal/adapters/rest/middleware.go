package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	userIDHeader = "X-User-ID"
	callerKey    = "caller_id"
)

var (
	errMissingCaller = errors.New("X-User-ID header is required")
	errInvalidCaller = errors.New("X-User-ID header must be a UUID")
)

// requestLogger logs every request with its timing
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// requireCaller resolves the X-User-ID header; session management lives
// in front of this service
func requireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(userIDHeader)
		if raw == "" {
			JSONError(c, http.StatusUnauthorized, errMissingCaller, "unauthorized")
			c.Abort()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			JSONError(c, http.StatusBadRequest, errInvalidCaller, "invalid request")
			c.Abort()
			return
		}
		c.Set(callerKey, id)
		c.Next()
	}
}

func callerID(c *gin.Context) uuid.UUID {
	return c.MustGet(callerKey).(uuid.UUID)
}
