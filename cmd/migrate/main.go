package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/application/migrate"
	"github.com/signal-x-studio/bc-migration-sub002/internal/application/transform"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/cache"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/config"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/gateway"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/logger"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/persistence"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migrate a merchant catalog between e-commerce platforms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newHistoryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var entities []string
	var deltaSync bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the catalog migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(entities) > 0 {
				cfg.Migration.Entities = entities
			}
			if cmd.Flags().Changed("delta") {
				cfg.Migration.DeltaSync = deltaSync
			}

			log, err := logger.New(&logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cfg.Log.Output,
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync(log) }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, cleanup, err := buildRunner(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			reports, err := runner.Run(ctx)
			for _, report := range reports {
				printReport(report)
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&entities, "entities", nil,
		"entity types to migrate (category, product, customer)")
	cmd.Flags().BoolVar(&deltaSync, "delta", false,
		"only migrate items modified since the last successful run")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [entity]",
		Short: "Show past migration runs for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := migration.EntityType(args[0])
			if !entity.IsValid() {
				return fmt.Errorf("unknown entity type %q", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := persistence.NewDatabase(&cfg.Database, zap.NewNop())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			reports, err := persistence.NewGormRunRepository(db.DB).History(cmd.Context(), entity, limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}
			for _, report := range reports {
				fmt.Printf("%s  %s  total=%d created=%d skipped=%d failed=%d warnings=%d\n",
					report.StartedAt.Format("2006-01-02 15:04:05"),
					report.RunID,
					report.Stats.Total, report.Stats.Succeeded,
					report.Stats.Skipped, report.Stats.Failed,
					len(report.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show")
	return cmd
}

// buildRunner wires the engine from configuration. The returned cleanup
// closes every store it opened.
func buildRunner(cfg *config.Config, log *zap.Logger) (*migrate.Runner, func(), error) {
	source, err := woocommerce.NewClient(&woocommerce.Config{
		BaseURL:        cfg.Source.BaseURL,
		ConsumerKey:    cfg.Source.ConsumerKey,
		ConsumerSecret: cfg.Source.ConsumerSecret,
		PageSize:       cfg.Source.PageSize,
		Timeout:        cfg.Source.Timeout,
	}, log)
	if err != nil {
		return nil, nil, migration.NewConfigurationError("invalid source configuration", err)
	}

	destCfg := &bigcommerce.Config{
		APIBaseURL:  cfg.Destination.APIBaseURL,
		StoreHash:   cfg.Destination.StoreHash,
		AccessToken: cfg.Destination.AccessToken,
		Timeout:     cfg.Destination.Timeout,
	}
	limiter := gateway.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	policy := gateway.BackoffPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Factor:      cfg.Retry.Factor,
		MaxDelay:    cfg.Retry.MaxDelay,
	}
	gw, err := bigcommerce.NewGateway(destCfg, limiter, policy, log)
	if err != nil {
		return nil, nil, migration.NewConfigurationError("invalid destination configuration", err)
	}
	dest, err := bigcommerce.NewClient(destCfg, gw, log)
	if err != nil {
		return nil, nil, migration.NewConfigurationError("invalid destination configuration", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, nil, migration.NewConfigurationError("cannot open state database", err)
	}

	processed := cache.NewProcessedStore(cfg.Redis, log)

	transformPolicy := transform.DefaultPolicy()
	transformPolicy.StrictSelections = cfg.Migration.StrictSelections

	runner := migrate.NewRunner(
		source,
		dest,
		persistence.NewGormMappingRepository(db.DB),
		persistence.NewGormRunRepository(db.DB),
		processed,
		transformPolicy,
		consoleSink{},
		log,
	)
	runner.DeltaSync = cfg.Migration.DeltaSync
	runner.CustomerBatch = cfg.Migration.CustomerBatch
	runner.ProcessedTTL = cfg.Migration.ProcessedTTL

	selected := make([]migration.EntityType, 0, len(cfg.Migration.Entities))
	for _, e := range cfg.Migration.Entities {
		selected = append(selected, migration.EntityType(e))
	}
	runner.Entities = selected

	cleanup := func() {
		_ = processed.Close()
		_ = db.Close()
	}
	return runner, cleanup, nil
}

// consoleSink renders progress to stdout on a single updating line.
type consoleSink struct{}

func (consoleSink) OnProgress(p migration.Progress) {
	fmt.Printf("\r%s: %d/%d (created %d, skipped %d, failed %d)   ",
		p.Entity, p.Stats.Processed(), p.Stats.Total,
		p.Stats.Succeeded, p.Stats.Skipped, p.Stats.Failed)
}

func (consoleSink) OnReport(r *migration.Report) {
	fmt.Println()
}

func printReport(report *migration.Report) {
	fmt.Printf("\n%s migration %s\n", report.Entity, report.RunID)
	fmt.Printf("  total:   %d\n", report.Stats.Total)
	fmt.Printf("  created: %d\n", report.Stats.Succeeded)
	fmt.Printf("  skipped: %d\n", report.Stats.Skipped)
	fmt.Printf("  failed:  %d\n", report.Stats.Failed)

	if len(report.Warnings) > 0 {
		fmt.Printf("  warnings (%d):\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}
	if len(report.Failures) > 0 {
		fmt.Printf("  failures (%d):\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("    - [%d] %s: %s\n", f.SourceID, f.Name, f.Message)
		}
	}
}
