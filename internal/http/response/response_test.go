package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return OK(c, fiber.StatusCreated, fiber.Map{"id": "1"})
	})
	app.Get("/msg", func(c *fiber.Ctx) error {
		return Message(c, fiber.StatusOK, "done")
	})
	app.Get("/err", func(c *fiber.Ctx) error {
		c.Locals(RequestIDLocalKey, "rid-1")
		return Error(c, fiber.StatusConflict, "MONTH_ALREADY_CLOSED", "month is already closed")
	})

	t.Run("ok", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, true, body["status"])
		assert.Equal(t, map[string]any{"id": "1"}, body["data"])
		assert.NotContains(t, body, "message")
		assert.NotContains(t, body, "code")
	})

	t.Run("message", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/msg", nil))
		require.NoError(t, err)

		var body Envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Status)
		assert.Equal(t, "done", body.Message)
	})

	t.Run("error", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/err", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		var body Envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Status)
		assert.Equal(t, "MONTH_ALREADY_CLOSED", body.Code)
		assert.Equal(t, "month is already closed", body.Message)
		assert.Equal(t, "rid-1", body.RequestID)
	})
}
