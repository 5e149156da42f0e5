package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"achievement-hub/core/models"

	"go.uber.org/zap"
)

// Registry holds the providers active for this session.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.Platform]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[models.Platform]Provider),
	}
}

// Build runs every factory concurrently and registers the providers that constructed.
// Failed factories are logged and left out; an unconfigured provider is only noted at debug.
func Build(ctx context.Context, logger *zap.Logger, factories ...Factory) *Registry {
	r := NewRegistry()

	var wg sync.WaitGroup
	for _, f := range factories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.New(ctx)
			switch {
			case errors.Is(err, ErrNotConfigured):
				logger.Debug("Provider not configured", zap.String("platform", string(f.Platform)))
				return
			case err != nil:
				logger.Warn("Provider failed to initialize",
					zap.String("platform", string(f.Platform)),
					zap.Error(err),
				)
				return
			}
			r.Register(p)
			logger.Info("Provider ready", zap.String("provider", p.Name()))
		}()
	}
	wg.Wait()

	return r
}

// Register adds or replaces the provider for its platform.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Platform()] = p
}

// Get returns the provider for a platform.
func (r *Registry) Get(p models.Platform) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prov, ok := r.providers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
	}
	return prov, nil
}

// ForID returns the provider serving the namespace of a game identifier.
func (r *Registry) ForID(id string) (Provider, error) {
	p, err := models.PlatformFromID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPlatform, err)
	}
	return r.Get(p)
}

// All returns every registered provider, ordered by platform for stable logs.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Platform() < out[j].Platform()
	})
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
