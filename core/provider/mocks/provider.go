package mocks

import (
	"context"

	"achievement-hub/core/models"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of provider.Provider
type Provider struct {
	mock.Mock
	PlatformValue models.Platform
}

// NewProvider creates a mock provider for the given platform.
func NewProvider(p models.Platform) *Provider {
	return &Provider{PlatformValue: p}
}

func (m *Provider) Name() string {
	return "mock-" + string(m.PlatformValue)
}

func (m *Provider) Platform() models.Platform {
	return m.PlatformValue
}

func (m *Provider) GetLibrary(ctx context.Context) ([]models.Game, error) {
	args := m.Called(ctx)
	if games, ok := args.Get(0).([]models.Game); ok {
		return games, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) RefreshLibrary(ctx context.Context) ([]models.Game, error) {
	args := m.Called(ctx)
	if games, ok := args.Get(0).([]models.Game); ok {
		return games, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) RefreshTitle(ctx context.Context, id string) (models.Game, error) {
	args := m.Called(ctx, id)
	if g, ok := args.Get(0).(models.Game); ok {
		return g, args.Error(1)
	}
	return models.Game{}, args.Error(1)
}
