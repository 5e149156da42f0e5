package archive

import (
	"achievement-hub/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the archive.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archive")
	group.Get("/summary", h.HandleSummary)
	group.Get("/games/:id/achievements", h.HandleAchievements)
}

// HandleSummary returns per-platform archive totals.
// @Summary Archive Summary
// @Description Per-platform game and achievement totals of the SQL archive.
// @Tags archive
// @Produce json
// @Success 200 {array} PlatformSummary "Summary"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /archive/summary [get]
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	out, err := h.service.Summary(c.UserContext())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Archive summary failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(out)
}

// HandleAchievements returns the archived achievements of a game.
// @Summary Archived Achievements
// @Description Achievements of one game as last archived.
// @Tags archive
// @Produce json
// @Param id path string true "Game identifier"
// @Success 200 {array} AchievementRecord "Achievements"
// @Failure 404 {object} map[string]string "Not archived"
// @Router /archive/games/{id}/achievements [get]
func (h *Handler) HandleAchievements(c *fiber.Ctx) error {
	out, err := h.service.Achievements(c.UserContext(), c.Params("id"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Archive lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(out) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no archived achievements for this game"})
	}
	return c.JSON(out)
}
