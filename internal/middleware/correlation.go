package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
	localCorrelationID  = "correlation_id"
)

type correlationIDKey struct{}

// CorrelationID ensures every request carries a correlation identifier and binds a
// request-scoped logger to the user context.
func CorrelationID(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get(headerCorrelationID))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get(headerRequestID))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(localCorrelationID, incoming)
		c.Set(headerCorrelationID, incoming)

		ctx := context.WithValue(c.UserContext(), correlationIDKey{}, incoming)
		ctx = logger.With().Str("correlation_id", incoming).Logger().WithContext(ctx)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localCorrelationID).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}
