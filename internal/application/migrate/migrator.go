package migrate

import (
	"context"
	"time"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// Source is the read side of a migration: the source platform's paginated
// list endpoints
type Source interface {
	ListProducts(ctx context.Context, opts woocommerce.ListOptions) ([]woocommerce.Product, woocommerce.Pagination, error)
	ListCustomers(ctx context.Context, opts woocommerce.ListOptions) ([]woocommerce.Customer, woocommerce.Pagination, error)
	FetchAllCategories(ctx context.Context) ([]woocommerce.Category, error)
	FetchAllVariations(ctx context.Context, productID int64) ([]woocommerce.Variation, error)
}

// Destination is the write side: create endpoints plus the filtered lookups
// the idempotency checks use
type Destination interface {
	CreateCategory(ctx context.Context, payload *bigcommerce.CategoryCreate) (*bigcommerce.Category, error)
	FindCategoryByName(ctx context.Context, name string, parentID *int64) (*bigcommerce.Category, error)
	CreateProduct(ctx context.Context, payload *bigcommerce.ProductCreate) (*bigcommerce.Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*bigcommerce.Product, error)
	CreateCustomers(ctx context.Context, payload []bigcommerce.CustomerCreate) ([]bigcommerce.Customer, error)
	FindCustomersByEmail(ctx context.Context, emails []string) ([]bigcommerce.Customer, error)
}

// MappingStore persists source-to-destination id pairs across runs
type MappingStore interface {
	SaveAll(ctx context.Context, entity migration.EntityType, mapping *migration.IDMapping) error
	Load(ctx context.Context, entity migration.EntityType) (*migration.IDMapping, error)
}

// RunStore persists run reports and answers the delta-sync watermark
type RunStore interface {
	Record(ctx context.Context, report *migration.Report) error
	LastSuccessfulRun(ctx context.Context, entity migration.EntityType) (*time.Time, error)
}

// checkCancelled returns the context error between items so a caller can
// abort a long migration cleanly, never mid-write
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
