package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
)

// GormMappingRepository persists id mappings using GORM
type GormMappingRepository struct {
	db *gorm.DB
}

// NewGormMappingRepository creates a new GormMappingRepository
func NewGormMappingRepository(db *gorm.DB) *GormMappingRepository {
	return &GormMappingRepository{db: db}
}

// Save records one source-to-destination pair. Saving the same source id
// again overwrites the destination id, so replays converge instead of failing.
func (r *GormMappingRepository) Save(ctx context.Context, entity migration.EntityType, sourceID, destinationID int64) error {
	model := IDMapModel{
		EntityType:    entity.String(),
		SourceID:      sourceID,
		DestinationID: destinationID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}, {Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"destination_id"}),
		}).
		Create(&model).Error
}

// SaveAll records a batch of pairs from an in-memory mapping
func (r *GormMappingRepository) SaveAll(ctx context.Context, entity migration.EntityType, mapping *migration.IDMapping) error {
	entries := mapping.Snapshot()
	if len(entries) == 0 {
		return nil
	}

	models := make([]IDMapModel, 0, len(entries))
	for src, dst := range entries {
		models = append(models, IDMapModel{
			EntityType:    entity.String(),
			SourceID:      src,
			DestinationID: dst,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_type"}, {Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"destination_id"}),
		}).
		CreateInBatches(models, 200).Error
}

// Load returns the persisted mapping for one entity type
func (r *GormMappingRepository) Load(ctx context.Context, entity migration.EntityType) (*migration.IDMapping, error) {
	var models []IDMapModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ?", entity.String()).
		Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make(map[int64]int64, len(models))
	for _, m := range models {
		entries[m.SourceID] = m.DestinationID
	}
	return migration.NewIDMappingFrom(entries), nil
}

// Count returns how many pairs are persisted for one entity type
func (r *GormMappingRepository) Count(ctx context.Context, entity migration.EntityType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&IDMapModel{}).
		Where("entity_type = ?", entity.String()).
		Count(&count).Error
	return count, err
}
