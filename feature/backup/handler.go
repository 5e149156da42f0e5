package backup

import (
	"achievement-hub/core/library"
	"achievement-hub/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for backups.
type Handler struct {
	service *Service
	store   *library.Store
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, store *library.Store) *Handler {
	return &Handler{service: service, store: store}
}

// RegisterRoutes registers the backup routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/backup")
	group.Get("/snapshots", h.HandleSnapshots)
	group.Post("/push", h.HandlePush)
}

// HandleSnapshots lists stored snapshots.
// @Summary List Snapshots
// @Description Timestamped copies of the library document, newest first.
// @Tags backup
// @Produce json
// @Success 200 {array} Snapshot "Snapshots"
// @Failure 502 {object} map[string]string "Object store unavailable"
// @Router /backup/snapshots [get]
func (h *Handler) HandleSnapshots(c *fiber.Ctx) error {
	out, err := h.service.Snapshots(c.UserContext())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing snapshots failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	if out == nil {
		out = []Snapshot{}
	}
	return c.JSON(out)
}

// HandlePush uploads the current library immediately.
// @Summary Push Backup
// @Description Upload the in-memory library to the object store.
// @Tags backup
// @Success 204 "Uploaded"
// @Failure 502 {object} map[string]string "Object store unavailable"
// @Router /backup/push [post]
func (h *Handler) HandlePush(c *fiber.Ctx) error {
	if err := h.service.Push(c.UserContext(), h.store.Document()); err != nil {
		logger.WithRayID(h.service.logger, c).Error("Backup push failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
