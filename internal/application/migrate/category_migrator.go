package migrate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/application/transform"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/logger"
)

// CategoryMigrator moves the source category tree onto the destination,
// parents before children. Each node goes pending -> skipped | created |
// failed; one node's failure never aborts the hierarchy.
type CategoryMigrator struct {
	source  Source
	dest    Destination
	mapping *migration.IDMapping
	names   map[string]int64
	sink    migration.ProgressSink
	logger  *zap.Logger
}

// NewCategoryMigrator creates a category migrator writing into the given
// mapping. Pre-populated mapping entries survive, so re-runs converge.
func NewCategoryMigrator(source Source, dest Destination, mapping *migration.IDMapping, sink migration.ProgressSink, logger *zap.Logger) *CategoryMigrator {
	if sink == nil {
		sink = migration.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryMigrator{
		source:  source,
		dest:    dest,
		mapping: mapping,
		names:   make(map[string]int64),
		sink:    sink,
		logger:  logger,
	}
}

// NameIndex returns the migrated name -> destination id snapshot for the
// product migrator. Valid after Run completes.
func (m *CategoryMigrator) NameIndex() *migration.CategoryIndex {
	return migration.NewCategoryIndex(m.names)
}

// Run migrates the whole category hierarchy and always returns a complete
// report. The returned error is non-nil only for run-fatal conditions:
// failure to fetch the source tree, or cancellation.
func (m *CategoryMigrator) Run(ctx context.Context) (*migration.Report, error) {
	report := migration.NewReport(migration.EntityCategory)
	ctx, _ = logger.WithRunID(ctx, m.logger, report.RunID.String())
	defer func() {
		report.Complete()
		m.sink.OnReport(report)
	}()

	categories, err := m.source.FetchAllCategories(ctx)
	if err != nil {
		var connErr *migration.ConnectionError
		if errors.As(err, &connErr) {
			return report, fmt.Errorf("%w: %v", migration.ErrSourceUnreachable, err)
		}
		return report, err
	}

	nodes, excluded, warnings := transform.PlanCategories(categories)
	report.Stats.Total = len(categories)
	report.AddWarnings(warnings)

	for _, ex := range excluded {
		report.RecordSkipped()
		report.AddWarning(migration.Warnf(migration.EntityCategory, ex.ID,
			"category %q excluded: %s (depth %d)", ex.Name, ex.Reason, ex.Depth))
	}

	for _, node := range nodes {
		if err := checkCancelled(ctx); err != nil {
			return report, err
		}
		m.migrateOne(ctx, node, report)
		m.sink.OnProgress(migration.Progress{
			Entity:  migration.EntityCategory,
			Stats:   report.Stats,
			Current: node.Category.Name,
		})
	}

	return report, nil
}

func (m *CategoryMigrator) migrateOne(ctx context.Context, node transform.CategoryNode, report *migration.Report) {
	cat := node.Category

	// A child whose parent failed is still attempted at the root, so one
	// failure never blocks a whole subtree
	var parentID int64
	if cat.Parent != 0 {
		if dst, ok := m.mapping.Get(cat.Parent); ok {
			parentID = dst
		} else {
			report.AddWarning(migration.Warnf(migration.EntityCategory, cat.ID,
				"parent of %q was not migrated, attaching to root", cat.Name))
		}
	}

	existing, err := m.dest.FindCategoryByName(ctx, cat.Name, &parentID)
	if err != nil {
		logger.FromContext(ctx).Warn("category existence check failed",
			zap.Int64("source_id", cat.ID), zap.String("name", cat.Name), zap.Error(err))
		report.RecordFailed(cat.ID, cat.Name, err)
		return
	}
	if existing != nil {
		m.bind(cat.ID, cat.Name, existing.ID)
		report.RecordSkipped()
		return
	}

	created, err := m.dest.CreateCategory(ctx, &bigcommerce.CategoryCreate{
		Name:        cat.Name,
		ParentID:    parentID,
		Description: cat.Description,
		IsVisible:   true,
	})
	if err != nil {
		if migration.IsDuplicate(err) {
			report.RecordSkipped()
			return
		}
		logger.FromContext(ctx).Warn("category create failed",
			zap.Int64("source_id", cat.ID), zap.String("name", cat.Name), zap.Error(err))
		report.RecordFailed(cat.ID, cat.Name, err)
		return
	}

	m.bind(cat.ID, cat.Name, created.ID)
	report.RecordCreated()
}

func (m *CategoryMigrator) bind(sourceID int64, name string, destinationID int64) {
	m.mapping.Put(sourceID, destinationID)
	m.names[name] = destinationID
}
