package auth_test

import (
	"net/http/httptest"
	"testing"

	"achievement-hub/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestAuth(t *testing.T) {
	app := newApp(auth.Config{ApiKey: "secret", Skip: []string{"/swagger"}})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"Missing key", "/library/", "", fiber.StatusUnauthorized},
		{"Wrong key", "/library/", "nope", fiber.StatusUnauthorized},
		{"Header key", "/library/", "secret", fiber.StatusOK},
		{"Query key", "/library/?api_key=secret", "", fiber.StatusOK},
		{"Skipped prefix", "/swagger/index.html", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(auth.Header, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	resp, err := newApp(auth.Config{}).Test(httptest.NewRequest("GET", "/sync/last", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
