package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"achievement-hub/core/database"
	"achievement-hub/core/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSchemaMismatch is returned by Prepare when an existing table lacks archive columns.
var ErrSchemaMismatch = errors.New("archive schema mismatch")

// PlatformSummary aggregates the archived games of one platform.
type PlatformSummary struct {
	Platform string `json:"platform"`
	Games    int    `json:"games"`
	Unlocked int    `json:"unlocked"`
	Total    int    `json:"total"`
}

// Service mirrors the library into SQL tables.
type Service struct {
	db        *gorm.DB
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an archive service over db.
func NewService(db *gorm.DB, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}
	return &Service{
		db:        db,
		batchSize: batch,
		logger:    logger.With(zap.String("feature", "archive")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Prepare migrates the archive tables, or checks them when migrate is false.
func (s *Service) Prepare(ctx context.Context, migrate bool) error {
	db := s.db.WithContext(ctx)
	if migrate {
		if err := db.AutoMigrate(&GameRecord{}, &AchievementRecord{}); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
		return nil
	}

	checks := map[string][]string{
		GameRecord{}.TableName():        gameColumns,
		AchievementRecord{}.TableName(): achievementColumns,
	}
	for table, columns := range checks {
		missing, err := database.MissingColumns(db, table, columns)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s lacks %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
		}
	}
	return nil
}

// Name identifies the sink in logs.
func (s *Service) Name() string { return "archive" }

// Publish upserts every game and replaces its achievements, in one transaction.
func (s *Service) Publish(ctx context.Context, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}

	now := s.now()
	records := make([]GameRecord, 0, len(games))
	ids := make([]string, 0, len(games))
	var achievements []AchievementRecord
	for _, g := range games {
		rec, achs := toRecords(g, now)
		records = append(records, rec)
		ids = append(ids, g.ID)
		achievements = append(achievements, achs...)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(records, s.batchSize).Error
		if err != nil {
			return fmt.Errorf("upsert games: %w", err)
		}

		for start := 0; start < len(ids); start += s.batchSize {
			end := min(start+s.batchSize, len(ids))
			if err := tx.Where("game_id IN ?", ids[start:end]).Delete(&AchievementRecord{}).Error; err != nil {
				return fmt.Errorf("clear achievements: %w", err)
			}
		}

		if len(achievements) > 0 {
			if err := tx.CreateInBatches(achievements, s.batchSize).Error; err != nil {
				return fmt.Errorf("insert achievements: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Library archived", zap.Int("games", len(records)), zap.Int("achievements", len(achievements)))
	return nil
}

// Summary returns per-platform totals of the archive.
func (s *Service) Summary(ctx context.Context) ([]PlatformSummary, error) {
	var out []PlatformSummary
	err := s.db.WithContext(ctx).
		Model(&GameRecord{}).
		Select("platform, COUNT(*) AS games, COALESCE(SUM(unlocked), 0) AS unlocked, COALESCE(SUM(total), 0) AS total").
		Group("platform").
		Order("platform").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("archive summary: %w", err)
	}
	return out, nil
}

// Achievements returns the archived achievements of one game in display order.
func (s *Service) Achievements(ctx context.Context, gameID string) ([]AchievementRecord, error) {
	var out []AchievementRecord
	err := s.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("position").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("archived achievements: %w", err)
	}
	return out, nil
}
