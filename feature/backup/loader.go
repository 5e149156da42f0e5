package backup

import (
	"achievement-hub/core/library"

	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	store   *library.Store
}

// NewFeature creates the backup feature. A nil service leaves it disabled.
func NewFeature(service *Service, store *library.Store) *Feature {
	return &Feature{service: service, store: store}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "backup"
}

// IsEnabled reports whether an object store is configured.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.store).RegisterRoutes(app)
	return nil
}
