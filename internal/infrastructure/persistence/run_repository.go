package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
)

// GormRunRepository persists migration run history using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Record saves the report of a finished run
func (r *GormRunRepository) Record(ctx context.Context, report *migration.Report) error {
	return r.db.WithContext(ctx).Save(newRunModel(report)).Error
}

// LastSuccessfulRun returns the start time of the most recent run for the
// entity that completed without failures. It feeds the delta-sync watermark:
// using the start time rather than the completion time means items modified
// while the run was in flight are picked up again.
func (r *GormRunRepository) LastSuccessfulRun(ctx context.Context, entity migration.EntityType) (*time.Time, error) {
	var model MigrationRunModel
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND completed_at IS NOT NULL AND failed = 0", entity.String()).
		Order("started_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	started := model.StartedAt
	return &started, nil
}

// History returns the most recent runs for an entity, newest first
func (r *GormRunRepository) History(ctx context.Context, entity migration.EntityType, limit int) ([]*migration.Report, error) {
	if limit <= 0 {
		limit = 20
	}

	var models []MigrationRunModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ?", entity.String()).
		Order("started_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	reports := make([]*migration.Report, 0, len(models))
	for i := range models {
		report, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
