package browse

import (
	"context"
	"errors"
	"fmt"

	"achievement-hub/core/library"
	"achievement-hub/core/models"
	"achievement-hub/core/stats"
	"achievement-hub/core/view"

	"go.uber.org/zap"
)

var (
	// ErrInvalidOrder is returned for an unknown sort key.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrGameNotFound is returned when the library has no game with the identifier.
	ErrGameNotFound = errors.New("game not found")
)

// ViewRequest carries new view settings. Search is applied but never persisted.
type ViewRequest struct {
	library.Preferences
	Search string `json:"search"`
}

// Service reads the library through the projector and statistics cache.
type Service struct {
	store     *library.Store
	projector *view.Projector
	stats     *stats.Cache
	logger    *zap.Logger
}

// NewService creates a browse service.
func NewService(store *library.Store, projector *view.Projector, cache *stats.Cache, logger *zap.Logger) *Service {
	return &Service{store: store, projector: projector, stats: cache, logger: logger}
}

// Window returns the materialized window, optionally moved back to the first page.
func (s *Service) Window(reset bool) view.Window {
	if reset {
		s.projector.Reset()
	}
	return s.projector.Window()
}

// Scroll applies a viewport report and returns the compensation and the new window.
func (s *Service) Scroll(vp view.Viewport) (view.Adjustment, view.Window) {
	adj := s.projector.Scroll(vp)
	return adj, s.projector.Window()
}

// UpdateView persists the preferences, applies the settings and returns the first page.
func (s *Service) UpdateView(ctx context.Context, req ViewRequest) (view.Window, error) {
	order, ok := view.ParseOrder(req.OrderBy)
	if req.OrderBy != "" && !ok {
		return view.Window{}, fmt.Errorf("%w: %q", ErrInvalidOrder, req.OrderBy)
	}

	settings := view.SettingsFromPreferences(req.Preferences)
	settings.Order = order
	settings.Filter.Search = req.Search

	s.store.SetPreferences(settings.Preferences())
	if err := s.store.Save(ctx, false); err != nil {
		s.logger.Error("Failed to save preferences", zap.Error(err))
	}

	s.projector.SetSettings(settings)
	return s.projector.Window(), nil
}

// Stats returns the library statistics.
func (s *Service) Stats() stats.Snapshot {
	return s.stats.Get()
}

// Game returns one game by identifier.
func (s *Service) Game(id string) (models.Game, error) {
	g, ok := s.store.Get(id)
	if !ok {
		return models.Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g, nil
}
