package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/application/transform"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/logger"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// ProductMigrator moves products, with their options and variants, onto the
// destination. It consumes the category migrator's name index as a read-only
// snapshot.
type ProductMigrator struct {
	source     Source
	dest       Destination
	mapping    *migration.IDMapping
	categories *migration.CategoryIndex
	processed  shared.ProcessedStore
	policy     transform.Policy
	sink       migration.ProgressSink
	logger     *zap.Logger

	// ModifiedAfter limits the run to items changed since the watermark;
	// zero migrates everything
	ModifiedAfter time.Time

	// ProcessedTTL bounds how long processed-item markers outlive the run
	ProcessedTTL time.Duration
}

// NewProductMigrator creates a product migrator
func NewProductMigrator(
	source Source,
	dest Destination,
	mapping *migration.IDMapping,
	categories *migration.CategoryIndex,
	processed shared.ProcessedStore,
	policy transform.Policy,
	sink migration.ProgressSink,
	logger *zap.Logger,
) *ProductMigrator {
	if sink == nil {
		sink = migration.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductMigrator{
		source:       source,
		dest:         dest,
		mapping:      mapping,
		categories:   categories,
		processed:    processed,
		policy:       policy,
		sink:         sink,
		logger:       logger,
		ProcessedTTL: 24 * time.Hour,
	}
}

// Run migrates all products page by page in source pagination order and
// always returns a complete report. Per-item failures are recorded and
// processing continues; only source-level fetch failures and cancellation
// are fatal.
func (m *ProductMigrator) Run(ctx context.Context) (*migration.Report, error) {
	report := migration.NewReport(migration.EntityProduct)
	ctx, _ = logger.WithRunID(ctx, m.logger, report.RunID.String())
	defer func() {
		report.Complete()
		m.sink.OnReport(report)
	}()

	page := 1
	for {
		products, pagination, err := m.source.ListProducts(ctx, woocommerce.ListOptions{
			Page:          page,
			ModifiedAfter: m.ModifiedAfter,
		})
		if err != nil {
			var connErr *migration.ConnectionError
			if errors.As(err, &connErr) {
				return report, fmt.Errorf("%w: %v", migration.ErrSourceUnreachable, err)
			}
			return report, err
		}
		if page == 1 {
			report.Stats.Total = pagination.Total
		}

		for i := range products {
			if err := checkCancelled(ctx); err != nil {
				return report, err
			}
			m.migrateOne(ctx, &products[i], report)
			m.sink.OnProgress(migration.Progress{
				Entity:  migration.EntityProduct,
				Stats:   report.Stats,
				Current: products[i].Name,
			})
		}

		page++
		if page > pagination.TotalPages || len(products) == 0 {
			break
		}
	}

	return report, nil
}

func (m *ProductMigrator) migrateOne(ctx context.Context, src *woocommerce.Product, report *migration.Report) {
	sku := src.SKU
	if sku == "" {
		sku = transform.SynthesizeSKU(m.policy.SKUPrefix, src.ID)
	}

	if m.alreadyProcessed(ctx, sku) {
		report.RecordSkipped()
		return
	}

	existing, err := m.dest.FindProductBySKU(ctx, sku)
	if err != nil {
		report.RecordFailed(src.ID, src.Name, err)
		return
	}
	if existing != nil {
		m.mapping.Put(src.ID, existing.ID)
		m.markProcessed(ctx, sku)
		report.RecordSkipped()
		return
	}

	var variations []woocommerce.Variation
	if src.IsVariable() {
		variations, err = m.source.FetchAllVariations(ctx, src.ID)
		if err != nil {
			report.RecordFailed(src.ID, src.Name, err)
			return
		}
	}

	payload, warnings, err := transform.TransformProduct(src, variations, m.categories, m.policy)
	report.AddWarnings(warnings)
	if err != nil {
		report.RecordFailed(src.ID, src.Name, err)
		return
	}

	created, err := m.dest.CreateProduct(ctx, payload)
	if err != nil {
		if migration.IsDuplicate(err) {
			m.markProcessed(ctx, sku)
			report.RecordSkipped()
			return
		}
		logger.FromContext(ctx).Warn("product create failed",
			zap.Int64("source_id", src.ID), zap.String("sku", sku), zap.Error(err))
		report.RecordFailed(src.ID, src.Name, err)
		return
	}

	m.mapping.Put(src.ID, created.ID)
	m.markProcessed(ctx, sku)
	report.RecordCreated()
}

// alreadyProcessed consults the shared processed-item store so a resumed run
// skips items it has already answered. Store errors degrade to a destination
// existence check rather than failing the item.
func (m *ProductMigrator) alreadyProcessed(ctx context.Context, sku string) bool {
	if m.processed == nil {
		return false
	}
	done, err := m.processed.IsProcessed(ctx, processedKey(sku))
	if err != nil {
		logger.FromContext(ctx).Debug("processed-store lookup failed", zap.String("sku", sku), zap.Error(err))
		return false
	}
	return done
}

func (m *ProductMigrator) markProcessed(ctx context.Context, sku string) {
	if m.processed == nil {
		return
	}
	if _, err := m.processed.MarkProcessed(ctx, processedKey(sku), m.ProcessedTTL); err != nil {
		logger.FromContext(ctx).Debug("processed-store mark failed", zap.String("sku", sku), zap.Error(err))
	}
}

func processedKey(sku string) string {
	return "product:" + sku
}
