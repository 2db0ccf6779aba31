package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newObservedApp(buf *bytes.Buffer) *fiber.App {
	logger := zerolog.New(buf)
	app := fiber.New()
	app.Use(CorrelationID(logger))
	app.Use(Observability(logger))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, uint(77))
		return c.Next()
	})
	return app
}

func TestObservabilityLogsUpstreamFailureWithFormContext(t *testing.T) {
	var buf bytes.Buffer
	app := newObservedApp(&buf)
	app.Post("/api/v2/assignment-forms/:formId/submit", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v2/assignment-forms/f-1/submit", nil)
	req.Header.Set("X-Correlation-ID", "corr-9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "error", entry["level"])
	require.Equal(t, "upstream", entry["class"])
	require.Equal(t, "corr-9", entry["correlation_id"])
	require.Equal(t, "f-1", entry["form_id"])
	require.Equal(t, "/api/v2/assignment-forms/:formId/submit", entry["route"])
	require.EqualValues(t, 77, entry["user_id"])
	require.EqualValues(t, 502, entry["status"])
}

func TestObservabilityIgnoresNonAPIPaths(t *testing.T) {
	var buf bytes.Buffer
	app := newObservedApp(&buf)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Zero(t, buf.Len())
}

func TestObservabilityClassifiesClientErrors(t *testing.T) {
	var buf bytes.Buffer
	app := newObservedApp(&buf)
	app.Get("/api/v2/assignments/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/assignments/3", nil))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "client", entry["class"])
	require.NotContains(t, entry, "form_id")
}
