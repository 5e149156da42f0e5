package browse

import (
	"errors"

	"achievement-hub/core/logger"
	"achievement-hub/core/view"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the library view.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the library routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/library")
	group.Get("/", h.HandleWindow)
	group.Post("/scroll", h.HandleScroll)
	group.Put("/preferences", h.HandlePreferences)
	group.Get("/stats", h.HandleStats)
	group.Get("/games/:id", h.HandleGame)
}

// HandleWindow returns the materialized window.
// @Summary Library Window
// @Description Get the currently materialized page window of the filtered, sorted library.
// @Tags library
// @Produce json
// @Param reset query bool false "Move back to the first page"
// @Success 200 {object} view.Window "Window"
// @Router /library [get]
func (h *Handler) HandleWindow(c *fiber.Ctx) error {
	return c.JSON(h.service.Window(c.QueryBool("reset")))
}

// ScrollResponse is returned by the scroll endpoint.
type ScrollResponse struct {
	Adjustment view.Adjustment `json:"adjustment"`
	Window     view.Window     `json:"window"`
}

// HandleScroll reports a scroll position.
// @Summary Scroll
// @Description Report the viewport; the window grows or trims and the offset compensation is returned.
// @Tags library
// @Accept json
// @Produce json
// @Param viewport body view.Viewport true "Viewport"
// @Success 200 {object} ScrollResponse "Adjustment and Window"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /library/scroll [post]
func (h *Handler) HandleScroll(c *fiber.Ctx) error {
	var vp view.Viewport
	if err := c.BodyParser(&vp); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid viewport"})
	}
	adj, w := h.service.Scroll(vp)
	return c.JSON(ScrollResponse{Adjustment: adj, Window: w})
}

// HandlePreferences updates filters, sort order and page size.
// @Summary Update View
// @Description Persist view preferences, apply an optional search and return the first page.
// @Tags library
// @Accept json
// @Produce json
// @Param request body ViewRequest true "View settings"
// @Success 200 {object} view.Window "Window"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /library/preferences [put]
func (h *Handler) HandlePreferences(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ViewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	w, err := h.service.UpdateView(c.Context(), req)
	if errors.Is(err, ErrInvalidOrder) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("View update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(w)
}

// HandleStats returns library statistics.
// @Summary Library Statistics
// @Tags library
// @Produce json
// @Success 200 {object} stats.Snapshot "Statistics"
// @Router /library/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// HandleGame returns one game.
// @Summary Game Detail
// @Tags library
// @Produce json
// @Param id path string true "Game Identifier (e.g. 'steam-440')"
// @Success 200 {object} models.Game "Game"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /library/games/{id} [get]
func (h *Handler) HandleGame(c *fiber.Ctx) error {
	g, err := h.service.Game(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(g)
}
