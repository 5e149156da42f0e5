package models_test

import (
	"testing"
	"time"

	"achievement-hub/core/models"

	"github.com/stretchr/testify/assert"
)

func achievements(unlocked, total int) []models.Achievement {
	list := make([]models.Achievement, total)
	for i := range list {
		list[i] = models.Achievement{ID: string(rune('a' + i)), IsUnlocked: i < unlocked}
	}
	return list
}

func TestGame_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		unlocked int
		total    int
		want     int
	}{
		{"NoAchievements", 0, 0, 0},
		{"ThreeOfFour", 3, 4, 75},
		{"OneOfThreeTruncates", 1, 3, 33},
		{"TwoOfThreeTruncates", 2, 3, 66},
		{"Complete", 5, 5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := models.Game{Achievements: achievements(tt.unlocked, tt.total)}
			assert.Equal(t, tt.want, g.Percentage())
		})
	}
}

func TestGame_CompletionFlags(t *testing.T) {
	empty := models.Game{}
	assert.False(t, empty.IsComplete())
	assert.False(t, empty.IsStarted())
	assert.False(t, empty.HasAchievements())

	partial := models.Game{Achievements: achievements(1, 2)}
	assert.False(t, partial.IsComplete())
	assert.True(t, partial.IsStarted())

	perfect := models.Game{Achievements: achievements(2, 2)}
	assert.True(t, perfect.IsComplete())
}

func TestGameID_RoundTrip(t *testing.T) {
	id := models.GameID(models.PlatformRetroAchievements, "20")
	assert.Equal(t, "ra-20", id)

	p, err := models.PlatformFromID(id)
	assert.NoError(t, err)
	assert.Equal(t, models.PlatformRetroAchievements, p)
	assert.Equal(t, "20", models.NativeID(id))

	_, err = models.PlatformFromID("nonamespace")
	assert.Error(t, err)

	_, err = models.PlatformFromID("zzz-1")
	assert.Error(t, err)
}

func TestGame_NeedsEnrichment(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	assert.True(t, models.Game{}.NeedsEnrichment(now, week))

	fresh := models.Game{}.WithEstimate(models.Estimate{FetchedAt: now.Add(-24 * time.Hour)})
	assert.False(t, fresh.NeedsEnrichment(now, week))

	stale := models.Game{}.WithEstimate(models.Estimate{FetchedAt: now.Add(-8 * 24 * time.Hour)})
	assert.True(t, stale.NeedsEnrichment(now, week))
}

func TestEstimate_Found(t *testing.T) {
	var nilEstimate *models.Estimate
	assert.False(t, nilEstimate.Found())
	assert.False(t, (&models.Estimate{FetchedAt: time.Now()}).Found())
	assert.True(t, (&models.Estimate{MainStory: 12.5}).Found())
}
