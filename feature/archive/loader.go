package archive

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
}

// NewFeature creates the archive feature. A nil service leaves it disabled.
func NewFeature(service *Service) *Feature {
	return &Feature{service: service}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "archive"
}

// IsEnabled reports whether an archive database is connected.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service).RegisterRoutes(app)
	return nil
}
