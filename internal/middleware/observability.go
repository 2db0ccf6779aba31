package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

const apiPrefix = "/api/v2"

// Observability records request metrics for the authoring API and emits one access
// log line per request through the correlation-scoped logger when available.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), apiPrefix) {
			return err
		}
		elapsed := time.Since(start)

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		method := c.Method()
		status := c.Response().StatusCode()
		code := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, code).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(method, route, code).Inc()
		}

		event := accessEvent(requestLogger(c, logger), status)
		event = event.
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed)
		if userID, ok := c.Locals(LocalUserID).(uint); ok && userID != 0 {
			event = event.Uint("user_id", userID)
		}
		if formID := c.Params("formId"); formID != "" {
			event = event.Str("form_id", formID)
		}
		event.Msg("http access")

		return err
	}
}

// requestLogger prefers the logger bound by CorrelationID so access lines share its fields.
func requestLogger(c *fiber.Ctx, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(c.UserContext()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	l := fallback.With().Str("correlation_id", GetCorrelationID(c)).Logger()
	return &l
}

func accessEvent(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status == fiber.StatusBadGateway:
		// storage or upstream save failure surfaced by the submit flow
		return l.Error().Str("class", "upstream")
	case status >= fiber.StatusInternalServerError:
		return l.Error().Str("class", "server")
	case status >= fiber.StatusBadRequest:
		return l.Warn().Str("class", "client")
	default:
		return l.Info()
	}
}
