package migrate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/application/transform"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/logger"
)

// Runner drives the selected entity migrations in dependency order:
// categories always run before products, because the product migrator
// consumes the category name index as a read-only snapshot. Customers are
// independent and run last.
type Runner struct {
	source    Source
	dest      Destination
	mappings  MappingStore
	runs      RunStore
	processed shared.ProcessedStore
	policy    transform.Policy
	sink      migration.ProgressSink
	logger    *zap.Logger

	// Entities selects which migrations run; order is normalized internally
	Entities []migration.EntityType

	// DeltaSync limits the product run to items modified since the last
	// successful product run
	DeltaSync bool

	// CustomerBatch caps the customers per bulk create call
	CustomerBatch int

	// ProcessedTTL bounds how long processed-item markers outlive a run;
	// zero keeps the migrator default
	ProcessedTTL time.Duration
}

// NewRunner wires a runner over the two APIs and the local state stores.
// mappings and runs may be nil, in which case state does not survive the
// process.
func NewRunner(
	source Source,
	dest Destination,
	mappings MappingStore,
	runs RunStore,
	processed shared.ProcessedStore,
	policy transform.Policy,
	sink migration.ProgressSink,
	logger *zap.Logger,
) *Runner {
	if sink == nil {
		sink = migration.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		source:    source,
		dest:      dest,
		mappings:  mappings,
		runs:      runs,
		processed: processed,
		policy:    policy,
		sink:      sink,
		logger:    logger,
		Entities: []migration.EntityType{
			migration.EntityCategory,
			migration.EntityProduct,
			migration.EntityCustomer,
		},
		CustomerBatch: 10,
	}
}

// Run executes the selected migrations and returns every report produced,
// in execution order. A run only aborts on fatal conditions (unreachable
// source, invalid selection, cancellation); per-item failures are inside the
// reports.
func (r *Runner) Run(ctx context.Context) ([]*migration.Report, error) {
	selected := make(map[migration.EntityType]bool, len(r.Entities))
	for _, entity := range r.Entities {
		if !entity.IsValid() {
			return nil, migration.NewConfigurationError(
				fmt.Sprintf("unknown entity type %q", entity), nil)
		}
		selected[entity] = true
	}
	if len(selected) == 0 {
		return nil, migration.NewConfigurationError("no entities selected", nil)
	}

	var reports []*migration.Report
	var categoryIndex *migration.CategoryIndex

	if selected[migration.EntityCategory] {
		report, index, err := r.runCategories(ctx)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
		categoryIndex = index
	} else if selected[migration.EntityProduct] {
		r.logger.Warn("product migration selected without categories; " +
			"source category references will be dropped with warnings")
	}

	if selected[migration.EntityProduct] {
		report, err := r.runProducts(ctx, categoryIndex)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}

	if selected[migration.EntityCustomer] {
		report, err := r.runCustomers(ctx)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}

	return reports, nil
}

func (r *Runner) runCategories(ctx context.Context) (*migration.Report, *migration.CategoryIndex, error) {
	mapping, err := r.loadMapping(ctx, migration.EntityCategory)
	if err != nil {
		return nil, nil, err
	}

	migrator := NewCategoryMigrator(r.source, r.dest, mapping, r.sink, r.logger)
	report, runErr := migrator.Run(ctx)

	r.persist(ctx, migration.EntityCategory, mapping, report)
	return report, migrator.NameIndex(), runErr
}

func (r *Runner) runProducts(ctx context.Context, categories *migration.CategoryIndex) (*migration.Report, error) {
	mapping, err := r.loadMapping(ctx, migration.EntityProduct)
	if err != nil {
		return nil, err
	}

	migrator := NewProductMigrator(r.source, r.dest, mapping, categories, r.processed, r.policy, r.sink, r.logger)
	if r.ProcessedTTL > 0 {
		migrator.ProcessedTTL = r.ProcessedTTL
	}

	if r.DeltaSync && r.runs != nil {
		watermark, err := r.runs.LastSuccessfulRun(ctx, migration.EntityProduct)
		if err != nil {
			r.logger.Warn("delta watermark lookup failed, running full sync", zap.Error(err))
		} else if watermark != nil {
			migrator.ModifiedAfter = *watermark
			r.logger.Info("delta sync enabled",
				zap.Time("modified_after", *watermark))
		}
	}

	report, runErr := migrator.Run(ctx)
	r.persist(ctx, migration.EntityProduct, mapping, report)
	return report, runErr
}

func (r *Runner) runCustomers(ctx context.Context) (*migration.Report, error) {
	mapping, err := r.loadMapping(ctx, migration.EntityCustomer)
	if err != nil {
		return nil, err
	}

	migrator := NewCustomerMigrator(r.source, r.dest, mapping, r.sink, r.logger)
	if r.CustomerBatch > 0 {
		migrator.BatchSize = r.CustomerBatch
	}

	report, runErr := migrator.Run(ctx)
	r.persist(ctx, migration.EntityCustomer, mapping, report)
	return report, runErr
}

// loadMapping restores the persisted mapping so a re-run converges instead
// of re-creating
func (r *Runner) loadMapping(ctx context.Context, entity migration.EntityType) (*migration.IDMapping, error) {
	if r.mappings == nil {
		return migration.NewIDMapping(), nil
	}
	mapping, err := r.mappings.Load(ctx, entity)
	if err != nil {
		return nil, migration.NewConfigurationError(
			fmt.Sprintf("cannot load %s id mapping", entity), err)
	}
	return mapping, nil
}

// persist saves run state with a bounded grace period even when the run's
// context is already cancelled, so partial progress is not lost
func (r *Runner) persist(ctx context.Context, entity migration.EntityType, mapping *migration.IDMapping, report *migration.Report) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}

	log := r.logger
	if report != nil {
		// The run id travels in the context so the store's SQL logging can
		// correlate with the run
		ctx, log = logger.WithRunID(ctx, r.logger, report.RunID.String())
	}

	if r.mappings != nil {
		if err := r.mappings.SaveAll(ctx, entity, mapping); err != nil {
			log.Error("failed to persist id mapping",
				zap.String("entity", entity.String()), zap.Error(err))
		}
	}
	if r.runs != nil && report != nil {
		if err := r.runs.Record(ctx, report); err != nil {
			log.Error("failed to persist run report",
				zap.String("entity", entity.String()), zap.Error(err))
		}
	}
}
