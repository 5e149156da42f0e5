package stats_test

import (
	"testing"

	"achievement-hub/core/library"
	"achievement-hub/core/models"
	"achievement-hub/core/stats"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type staticSource struct {
	games []models.Game
	calls int
}

func (s *staticSource) Games() []models.Game {
	s.calls++
	return s.games
}

func game(id string, unlocked, total int) models.Game {
	list := make([]models.Achievement, total)
	for i := range list {
		list[i] = models.Achievement{IsUnlocked: i < unlocked}
	}
	return models.Game{ID: id, Achievements: list}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		games []models.Game
		want  stats.Snapshot
	}{
		{
			name: "Empty",
			want: stats.Snapshot{},
		},
		{
			name:  "NoAchievementsAnywhere",
			games: []models.Game{game("a", 0, 0), game("b", 0, 0)},
			want:  stats.Snapshot{TotalGames: 2},
		},
		{
			name:  "ThreeOfFour",
			games: []models.Game{game("a", 3, 4)},
			want:  stats.Snapshot{TotalGames: 1, TotalAchievements: 4, UnlockedAchievements: 3, PercentComplete: 75},
		},
		{
			name:  "TruncatesOneThird",
			games: []models.Game{game("a", 1, 3)},
			want:  stats.Snapshot{TotalGames: 1, TotalAchievements: 3, UnlockedAchievements: 1, PercentComplete: 33},
		},
		{
			name:  "PerfectNeedsAchievements",
			games: []models.Game{game("a", 2, 2), game("b", 0, 0), game("c", 1, 2)},
			want:  stats.Snapshot{TotalGames: 3, TotalAchievements: 4, UnlockedAchievements: 3, PerfectGames: 1, PercentComplete: 75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stats.Compute(tt.games))
		})
	}
}

func TestCache_LazyRecompute(t *testing.T) {
	src := &staticSource{games: []models.Game{game("a", 1, 2)}}
	c := stats.New(src)

	assert.True(t, c.IsDirty())
	assert.Equal(t, 1, c.Get().TotalGames)
	assert.Equal(t, 1, c.Get().TotalGames)
	assert.Equal(t, 1, src.calls)

	src.games = append(src.games, game("b", 2, 2))
	assert.Equal(t, 1, c.Get().TotalGames, "stale until invalidated")

	c.Invalidate()
	assert.Equal(t, 2, c.Get().TotalGames)
	assert.Equal(t, 2, src.calls)
}

func TestCache_RefreshNotifiesOnce(t *testing.T) {
	src := &staticSource{games: []models.Game{game("a", 2, 2)}}
	c := stats.New(src)

	var changes []stats.Change
	c.Subscribe(func(ch stats.Change) { changes = append(changes, ch) })

	snap := c.Refresh()
	assert.Equal(t, 1, snap.PerfectGames)
	assert.Len(t, changes, 1)
	assert.ElementsMatch(t, stats.Properties, changes[0].Properties)
	assert.Equal(t, snap, changes[0].Snapshot)
	assert.False(t, c.IsDirty())
}

func TestCache_InvalidatedByStore(t *testing.T) {
	store := library.New(nil, zap.NewNop())
	c := stats.New(store)
	store.Subscribe(c.Invalidate)

	assert.Equal(t, 0, c.Get().TotalGames)
	store.AddOrUpdate(game("steam-1", 1, 1))
	assert.True(t, c.IsDirty())
	assert.Equal(t, 1, c.Get().TotalGames)
	assert.Equal(t, 1, c.Get().PerfectGames)
}
