package rayid_test

import (
	"net/http/httptest"
	"testing"

	"achievement-hub/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayID(t *testing.T) {
	var seen string
	app := fiber.New()
	app.Use(rayid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(rayid.LocalsKey).(string)
		return c.SendStatus(fiber.StatusNoContent)
	})

	t.Run("Generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)

		id := resp.Header.Get(rayid.Header)
		_, err = uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("Propagated", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(rayid.Header, incoming)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, incoming, resp.Header.Get(rayid.Header))
		assert.Equal(t, incoming, seen)
	})

	t.Run("Malformed replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(rayid.Header, "<script>")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.NotEqual(t, "<script>", resp.Header.Get(rayid.Header))
	})
}
