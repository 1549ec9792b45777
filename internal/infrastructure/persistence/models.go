package persistence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
)

// IDMapModel is the persistence model for one source-to-destination id pair.
// The (entity_type, source_id) pair is unique so a re-run can never record a
// conflicting mapping.
type IDMapModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	EntityType    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_entity_source"`
	SourceID      int64     `gorm:"not null;uniqueIndex:idx_entity_source"`
	DestinationID int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (IDMapModel) TableName() string {
	return "id_mappings"
}

// MigrationRunModel is the persistence model for one entity migration run
type MigrationRunModel struct {
	RunID       string     `gorm:"type:varchar(36);primaryKey"`
	EntityType  string     `gorm:"type:varchar(20);not null;index"`
	Total       int        `gorm:"not null;default:0"`
	Succeeded   int        `gorm:"not null;default:0"`
	Skipped     int        `gorm:"not null;default:0"`
	Failed      int        `gorm:"not null;default:0"`
	Warnings    string     `gorm:"type:text;default:'[]'"`
	Failures    string     `gorm:"type:text;default:'[]'"`
	StartedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (MigrationRunModel) TableName() string {
	return "migration_runs"
}

// Succeeded means the run completed with no failed items; a run with partial
// failures is recorded but does not advance the delta-sync watermark.
func (m *MigrationRunModel) IsSuccessful() bool {
	return m.CompletedAt != nil && m.Failed == 0
}

// newRunModel converts a completed report into its persistence model
func newRunModel(report *migration.Report) *MigrationRunModel {
	model := &MigrationRunModel{
		RunID:      report.RunID.String(),
		EntityType: report.Entity.String(),
		Total:      report.Stats.Total,
		Succeeded:  report.Stats.Succeeded,
		Skipped:    report.Stats.Skipped,
		Failed:     report.Stats.Failed,
		StartedAt:  report.StartedAt,
	}
	if !report.CompletedAt.IsZero() {
		completed := report.CompletedAt
		model.CompletedAt = &completed
	}
	if data, err := json.Marshal(report.Warnings); err == nil {
		model.Warnings = string(data)
	}
	if data, err := json.Marshal(report.Failures); err == nil {
		model.Failures = string(data)
	}
	return model
}

// ToDomain converts the persistence model back into a report
func (m *MigrationRunModel) ToDomain() (*migration.Report, error) {
	runID, err := uuid.Parse(m.RunID)
	if err != nil {
		return nil, err
	}

	report := &migration.Report{
		RunID:  runID,
		Entity: migration.EntityType(m.EntityType),
		Stats: migration.Stats{
			Total:     m.Total,
			Succeeded: m.Succeeded,
			Skipped:   m.Skipped,
			Failed:    m.Failed,
		},
		StartedAt: m.StartedAt,
	}
	if m.CompletedAt != nil {
		report.CompletedAt = *m.CompletedAt
	}
	if m.Warnings != "" {
		if err := json.Unmarshal([]byte(m.Warnings), &report.Warnings); err != nil {
			return nil, err
		}
	}
	if m.Failures != "" {
		if err := json.Unmarshal([]byte(m.Failures), &report.Failures); err != nil {
			return nil, err
		}
	}
	return report, nil
}
