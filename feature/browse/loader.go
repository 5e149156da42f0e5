package browse

import (
	"achievement-hub/core/library"
	"achievement-hub/core/stats"
	"achievement-hub/core/view"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the library browsing feature.
func NewFeature(store *library.Store, projector *view.Projector, cache *stats.Cache, logger *zap.Logger) *Feature {
	svc := NewService(store, projector, cache, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "library"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
