package provider

import (
	"context"
	"errors"

	"achievement-hub/core/models"
)

var (
	// ErrUnknownPlatform is returned when no provider serves a platform.
	ErrUnknownPlatform = errors.New("no provider registered for platform")
	// ErrTitleNotFound is returned by RefreshTitle when the platform does not know the title.
	ErrTitleNotFound = errors.New("title not found")
	// ErrNotConfigured is returned by a Factory when the credentials it needs are missing.
	ErrNotConfigured = errors.New("provider not configured")
)

// Provider is the contract every platform integration implements.
type Provider interface {
	// Name returns a human readable name for logs.
	Name() string

	// Platform returns the platform served by this provider.
	Platform() models.Platform

	// GetLibrary performs a full library scan.
	GetLibrary(ctx context.Context) ([]models.Game, error)

	// RefreshLibrary fetches only recently played or updated titles. Implementations may
	// skip titles the Catalog already knows to have no achievements.
	RefreshLibrary(ctx context.Context) ([]models.Game, error)

	// RefreshTitle re-fetches the full achievement detail of one title.
	RefreshTitle(ctx context.Context, id string) (models.Game, error)
}

// Catalog gives providers read access to already known games.
type Catalog interface {
	Get(id string) (models.Game, bool)
}

// Factory constructs a provider. Construction may need network round trips (resolving a
// vanity name, exchanging a credential) and may fail.
type Factory struct {
	Platform models.Platform
	New      func(ctx context.Context) (Provider, error)
}

// NoCatalog is a Catalog that knows no games.
type NoCatalog struct{}

// Get always reports the game as unknown.
func (NoCatalog) Get(string) (models.Game, bool) {
	return models.Game{}, false
}
