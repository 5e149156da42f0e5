package sync

import (
	"context"
	"errors"

	"achievement-hub/core/logger"
	"achievement-hub/core/provider"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/scan", h.HandleScan)
	group.Post("/refresh", h.HandleRefresh)
	group.Delete("/", h.HandleCancel)
	group.Get("/last", h.HandleLast)
	group.Post("/games/:id", h.HandleRefreshTitle)
}

// HandleScan runs a full scan.
// @Summary Full Scan
// @Description Scan every configured platform and merge the results into the library.
// @Tags sync
// @Produce json
// @Success 200 {object} Report "Run Report"
// @Failure 409 {object} map[string]string "Superseded by another run"
// @Router /sync/scan [post]
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	return h.run(c, KindScan)
}

// HandleRefresh runs an incremental refresh.
// @Summary Incremental Refresh
// @Description Fetch recently played titles and merge those that changed.
// @Tags sync
// @Produce json
// @Success 200 {object} Report "Run Report"
// @Failure 409 {object} map[string]string "Superseded by another run"
// @Router /sync/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	return h.run(c, KindRefresh)
}

func (h *Handler) run(c *fiber.Ctx, kind Kind) error {
	l := logger.WithRayID(h.service.logger, c)

	var (
		report *Report
		err    error
	)
	if kind == KindScan {
		report, err = h.service.Scan(c.Context())
	} else {
		report, err = h.service.Refresh(c.Context())
	}
	if errors.Is(err, context.Canceled) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "superseded by another sync run",
		})
	}
	if err != nil {
		l.Error("Sync run failed", zap.String("kind", string(kind)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleCancel cancels the run in flight.
// @Summary Cancel Sync
// @Description Cancel the scan or refresh currently running.
// @Tags sync
// @Success 202 {object} map[string]string "Cancelled"
// @Router /sync [delete]
func (h *Handler) HandleCancel(c *fiber.Ctx) error {
	h.service.Cancel()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "cancelled"})
}

// HandleLast returns the report of the last finished run.
// @Summary Last Report
// @Tags sync
// @Produce json
// @Success 200 {object} Report "Run Report"
// @Failure 404 {object} map[string]string "No run yet"
// @Router /sync/last [get]
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	report := h.service.LastReport()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no sync has run yet"})
	}
	return c.JSON(report)
}

// HandleRefreshTitle refreshes a single title.
// @Summary Refresh Title
// @Description Re-fetch one title's achievements from its platform.
// @Tags sync
// @Produce json
// @Param id path string true "Game Identifier (e.g. 'steam-440')"
// @Success 200 {object} models.Game "Refreshed Game"
// @Failure 400 {object} map[string]string "Unknown platform"
// @Failure 404 {object} map[string]string "Title not found"
// @Failure 502 {object} map[string]string "Platform error"
// @Router /sync/games/{id} [post]
func (h *Handler) HandleRefreshTitle(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	game, err := h.service.RefreshTitle(c.Context(), id)
	switch {
	case err == nil:
		return c.JSON(game)
	case errors.Is(err, provider.ErrUnknownPlatform):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, provider.ErrTitleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Title refresh failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
}
