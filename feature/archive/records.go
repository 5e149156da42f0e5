package archive

import (
	"time"

	"achievement-hub/core/models"
)

// GameRecord is one row of the archived_games table.
type GameRecord struct {
	ID                 string    `gorm:"column:id;primaryKey;size:128"`
	Platform           string    `gorm:"column:platform;size:32;index"`
	Name               string    `gorm:"column:name;size:512"`
	Author             string    `gorm:"column:author;size:255"`
	Icon               string    `gorm:"column:icon;size:1024"`
	PlaytimeMinutes    int       `gorm:"column:playtime_minutes"`
	Unlocked           int       `gorm:"column:unlocked"`
	Total              int       `gorm:"column:total"`
	Percentage         int       `gorm:"column:percentage"`
	LastUpdated        time.Time `gorm:"column:last_updated"`
	MainStoryHours     *float64  `gorm:"column:main_story_hours"`
	CompletionistHours *float64  `gorm:"column:completionist_hours"`
	ArchivedAt         time.Time `gorm:"column:archived_at"`
}

// TableName overrides the gorm default.
func (GameRecord) TableName() string { return "archived_games" }

// AchievementRecord is one row of the archived_achievements table.
type AchievementRecord struct {
	GameID      string     `gorm:"column:game_id;primaryKey;size:128"`
	ID          string     `gorm:"column:achievement_id;primaryKey;size:255"`
	Position    int        `gorm:"column:position"`
	Title       string     `gorm:"column:title;size:512"`
	Description string     `gorm:"column:description;type:text"`
	IsUnlocked  bool       `gorm:"column:is_unlocked"`
	IsHidden    bool       `gorm:"column:is_hidden"`
	UnlockedOn  *time.Time `gorm:"column:unlocked_on"`
	Rarity      *float64   `gorm:"column:rarity"`
}

// TableName overrides the gorm default.
func (AchievementRecord) TableName() string { return "archived_achievements" }

var gameColumns = []string{"id", "platform", "name", "author", "icon", "playtime_minutes", "unlocked", "total",
	"percentage", "last_updated", "main_story_hours", "completionist_hours", "archived_at"}

var achievementColumns = []string{"game_id", "achievement_id", "position", "title", "description", "is_unlocked",
	"is_hidden", "unlocked_on", "rarity"}

func toRecords(g models.Game, now time.Time) (GameRecord, []AchievementRecord) {
	rec := GameRecord{
		ID:              g.ID,
		Platform:        string(g.Platform),
		Name:            g.Name,
		Author:          g.Author,
		Icon:            g.Icon,
		PlaytimeMinutes: g.PlaytimeMinutes,
		Unlocked:        g.UnlockedCount(),
		Total:           g.TotalCount(),
		Percentage:      g.Percentage(),
		LastUpdated:     g.LastUpdated.UTC(),
		ArchivedAt:      now,
	}
	if g.HowLongToBeat.Found() {
		main, full := g.HowLongToBeat.MainStory, g.HowLongToBeat.Completionist
		rec.MainStoryHours, rec.CompletionistHours = &main, &full
	}

	achievements := make([]AchievementRecord, len(g.Achievements))
	for i, a := range g.Achievements {
		achievements[i] = AchievementRecord{
			GameID:      g.ID,
			ID:          a.ID,
			Position:    i,
			Title:       a.Title,
			Description: a.Description,
			IsUnlocked:  a.IsUnlocked,
			IsHidden:    a.IsHidden,
			UnlockedOn:  a.UnlockedOn,
			Rarity:      a.RarityPercentage,
		}
	}
	return rec, achievements
}
