package stats

import (
	"sync"

	"achievement-hub/core/models"
)

// Property names reported to listeners on Refresh.
const (
	PropTotalGames           = "total_games"
	PropTotalAchievements    = "total_achievements"
	PropUnlockedAchievements = "unlocked_achievements"
	PropPerfectGames         = "perfect_games"
	PropPercentComplete      = "percent_complete"
)

// Properties lists every derived property.
var Properties = []string{
	PropTotalGames,
	PropTotalAchievements,
	PropUnlockedAchievements,
	PropPerfectGames,
	PropPercentComplete,
}

// Source provides the games statistics are derived from.
type Source interface {
	Games() []models.Game
}

// Snapshot is one computation of the library counters.
type Snapshot struct {
	TotalGames           int `json:"total_games"`
	TotalAchievements    int `json:"total_achievements"`
	UnlockedAchievements int `json:"unlocked_achievements"`
	PerfectGames         int `json:"perfect_games"`
	PercentComplete      int `json:"percent_complete"`
}

// Compute derives a snapshot in a single pass.
func Compute(games []models.Game) Snapshot {
	var s Snapshot
	s.TotalGames = len(games)
	for _, g := range games {
		total := g.TotalCount()
		unlocked := g.UnlockedCount()
		s.TotalAchievements += total
		s.UnlockedAchievements += unlocked
		if total > 0 && unlocked == total {
			s.PerfectGames++
		}
	}
	if s.TotalAchievements > 0 {
		s.PercentComplete = s.UnlockedAchievements * 100 / s.TotalAchievements
	}
	return s
}

// Change is delivered to listeners after a forced refresh.
type Change struct {
	Snapshot   Snapshot
	Properties []string
}

// Cache recomputes statistics lazily, after being invalidated.
type Cache struct {
	source Source

	mu       sync.Mutex
	dirty    bool
	snapshot Snapshot

	listenerMu sync.RWMutex
	listeners  []func(Change)
}

// New creates a cache over source. The first Get computes the statistics.
func New(source Source) *Cache {
	return &Cache{source: source, dirty: true}
}

// Invalidate marks the statistics stale. It is cheap and safe to call from store
// notifications.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// IsDirty reports whether the next Get will recompute.
func (c *Cache) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Get returns the statistics, recomputing them if stale.
func (c *Cache) Get() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		c.snapshot = Compute(c.source.Games())
		c.dirty = false
	}
	return c.snapshot
}

// Refresh forces a recomputation and notifies every listener once with all properties.
func (c *Cache) Refresh() Snapshot {
	c.mu.Lock()
	c.snapshot = Compute(c.source.Games())
	c.dirty = false
	snap := c.snapshot
	c.mu.Unlock()

	c.listenerMu.RLock()
	listeners := append([]func(Change)(nil), c.listeners...)
	c.listenerMu.RUnlock()

	change := Change{Snapshot: snap, Properties: Properties}
	for _, fn := range listeners {
		fn(change)
	}
	return snap
}

// Subscribe registers fn for Refresh notifications.
func (c *Cache) Subscribe(fn func(Change)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}
