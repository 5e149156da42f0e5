package archive_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"achievement-hub/core/database"
	"achievement-hub/core/models"
	"achievement-hub/feature/archive"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func newArchive(t *testing.T) (*archive.Service, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	svc := archive.NewService(db, archive.Config{BatchSize: 2}, zap.NewNop())
	require.NoError(t, svc.Prepare(context.Background(), true))
	return svc, db
}

func library() []models.Game {
	unlocked := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []models.Game{
		{
			ID: "steam-440", Name: "Team Fortress 2", Platform: models.PlatformSteam, PlaytimeMinutes: 600,
			Achievements: []models.Achievement{
				{ID: "A", Title: "First", IsUnlocked: true, UnlockedOn: &unlocked, RarityPercentage: ptr(50.0)},
				{ID: "B", Title: "Second"},
			},
			HowLongToBeat: &models.Estimate{MainStory: 10, Completionist: 40},
		},
		{ID: "steam-70", Name: "Half-Life", Platform: models.PlatformSteam, Achievements: []models.Achievement{}},
		{
			ID: "ra-1", Name: "Sonic", Platform: models.PlatformRetroAchievements, PlaytimeMinutes: -1,
			Achievements: []models.Achievement{{ID: "9", Title: "Rings", IsUnlocked: true}},
		},
	}
}

func TestPublish(t *testing.T) {
	svc, db := newArchive(t)
	ctx := context.Background()

	require.NoError(t, svc.Publish(ctx, library()))

	var games []archive.GameRecord
	require.NoError(t, db.Order("id").Find(&games).Error)
	require.Len(t, games, 3)
	assert.Equal(t, "ra-1", games[0].ID)

	tf2 := games[2]
	assert.Equal(t, "steam-440", tf2.ID)
	assert.Equal(t, 1, tf2.Unlocked)
	assert.Equal(t, 2, tf2.Total)
	assert.Equal(t, 50, tf2.Percentage)
	require.NotNil(t, tf2.MainStoryHours)
	assert.Equal(t, 10.0, *tf2.MainStoryHours)
	assert.Nil(t, games[1].MainStoryHours)

	achs, err := svc.Achievements(ctx, "steam-440")
	require.NoError(t, err)
	require.Len(t, achs, 2)
	assert.Equal(t, "A", achs[0].ID)
	require.NotNil(t, achs[0].UnlockedOn)
	assert.True(t, achs[0].UnlockedOn.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestPublish_ReplacesAchievements(t *testing.T) {
	svc, db := newArchive(t)
	ctx := context.Background()
	require.NoError(t, svc.Publish(ctx, library()))

	updated := library()[:1]
	updated[0].Name = "TF2"
	updated[0].Achievements = []models.Achievement{{ID: "C", Title: "Only", IsUnlocked: true}}
	require.NoError(t, svc.Publish(ctx, updated))

	var count int64
	require.NoError(t, db.Model(&archive.GameRecord{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	var tf2 archive.GameRecord
	require.NoError(t, db.First(&tf2, "id = ?", "steam-440").Error)
	assert.Equal(t, "TF2", tf2.Name)
	assert.Equal(t, 100, tf2.Percentage)

	achs, err := svc.Achievements(ctx, "steam-440")
	require.NoError(t, err)
	require.Len(t, achs, 1)
	assert.Equal(t, "C", achs[0].ID)
}

func TestPublish_Empty(t *testing.T) {
	svc, _ := newArchive(t)
	assert.NoError(t, svc.Publish(context.Background(), nil))
}

func TestPublish_RollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `archived_games`").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	svc := archive.NewService(db, archive.Config{}, nil)
	err = svc.Publish(context.Background(), library())
	assert.ErrorContains(t, err, "upsert games")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrepare_ChecksExistingSchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE archived_games (id TEXT PRIMARY KEY, name TEXT)").Error)

	svc := archive.NewService(db, archive.Config{}, nil)
	err = svc.Prepare(context.Background(), false)
	assert.ErrorIs(t, err, archive.ErrSchemaMismatch)

	require.NoError(t, svc.Prepare(context.Background(), true))
	assert.NoError(t, svc.Prepare(context.Background(), false))
}

func TestSummary(t *testing.T) {
	svc, _ := newArchive(t)
	require.NoError(t, svc.Publish(context.Background(), library()))

	out, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []archive.PlatformSummary{
		{Platform: "retroachievements", Games: 1, Unlocked: 1, Total: 1},
		{Platform: "steam", Games: 2, Unlocked: 1, Total: 2},
	}, out)
}

func TestHandler(t *testing.T) {
	svc, _ := newArchive(t)
	require.NoError(t, svc.Publish(context.Background(), library()))

	feature := archive.NewFeature(svc)
	assert.True(t, feature.IsEnabled())
	assert.False(t, archive.NewFeature(nil).IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/archive/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summary []archive.PlatformSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Len(t, summary, 2)

	resp, err = app.Test(httptest.NewRequest("GET", "/archive/games/ra-1/achievements", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/archive/games/steam-70/achievements", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
