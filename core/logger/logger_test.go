package logger_test

import (
	"net/http/httptest"
	"testing"

	"achievement-hub/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   logger.Config
		debug bool
	}{
		{"Production JSON", logger.Config{Level: "info", Format: "json"}, false},
		{"Debug console", logger.Config{Level: "debug", Format: "console"}, true},
		{"Unknown level falls back to info", logger.Config{Level: "loud"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		logger.WithRayID(base, c).Info("without")
		c.Locals("ray_id", "abc-123")
		logger.WithRayID(base, c).Info("with")
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "abc-123", entries[1].ContextMap()["ray_id"])
}

func TestNew_WarnLevel(t *testing.T) {
	l, err := logger.New(&logger.Config{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	app := fiber.New()
	app.Use(logger.Middleware(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("Request served").Len())
	failed := logs.FilterMessage("Request error").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "/fail", failed[0].ContextMap()["path"])
}
