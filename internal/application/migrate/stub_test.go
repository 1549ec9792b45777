package migrate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// fakeSource serves a fixed catalog with single-page pagination
type fakeSource struct {
	categories []woocommerce.Category
	products   []woocommerce.Product
	variations map[int64][]woocommerce.Variation
	customers  []woocommerce.Customer

	pageSize int
	listErr  error

	// lastModifiedAfter records the delta filter of the latest product list call
	lastModifiedAfter time.Time
}

func (s *fakeSource) page(total, page int) (int, int, woocommerce.Pagination) {
	size := s.pageSize
	if size <= 0 {
		size = 100
	}
	totalPages := (total + size - 1) / size
	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end, woocommerce.Pagination{Total: total, TotalPages: totalPages}
}

func (s *fakeSource) ListProducts(ctx context.Context, opts woocommerce.ListOptions) ([]woocommerce.Product, woocommerce.Pagination, error) {
	if s.listErr != nil {
		return nil, woocommerce.Pagination{}, s.listErr
	}
	s.lastModifiedAfter = opts.ModifiedAfter
	start, end, p := s.page(len(s.products), opts.Page)
	return s.products[start:end], p, nil
}

func (s *fakeSource) ListCustomers(ctx context.Context, opts woocommerce.ListOptions) ([]woocommerce.Customer, woocommerce.Pagination, error) {
	if s.listErr != nil {
		return nil, woocommerce.Pagination{}, s.listErr
	}
	start, end, p := s.page(len(s.customers), opts.Page)
	return s.customers[start:end], p, nil
}

func (s *fakeSource) FetchAllCategories(ctx context.Context) ([]woocommerce.Category, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.categories, nil
}

func (s *fakeSource) FetchAllVariations(ctx context.Context, productID int64) ([]woocommerce.Variation, error) {
	return s.variations[productID], nil
}

// fakeDest simulates the destination store's state and records every write
type fakeDest struct {
	mu sync.Mutex

	nextID     int64
	categories []bigcommerce.Category
	products   []bigcommerce.Product
	customers  []bigcommerce.Customer

	createCategoryCalls int
	createProductCalls  int
	createCustomerCalls int
	batchSizes          []int

	failCategoryNames map[string]error
	createProductErr  error
}

func newFakeDest() *fakeDest {
	return &fakeDest{nextID: 100}
}

func (d *fakeDest) allocate() int64 {
	d.nextID++
	return d.nextID
}

func (d *fakeDest) CreateCategory(ctx context.Context, payload *bigcommerce.CategoryCreate) (*bigcommerce.Category, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.createCategoryCalls++
	if err, ok := d.failCategoryNames[payload.Name]; ok {
		return nil, err
	}
	created := bigcommerce.Category{ID: d.allocate(), Name: payload.Name, ParentID: payload.ParentID}
	d.categories = append(d.categories, created)
	return &created, nil
}

func (d *fakeDest) FindCategoryByName(ctx context.Context, name string, parentID *int64) (*bigcommerce.Category, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.categories {
		if !strings.EqualFold(d.categories[i].Name, name) {
			continue
		}
		if parentID != nil && d.categories[i].ParentID != *parentID {
			continue
		}
		return &d.categories[i], nil
	}
	return nil, nil
}

func (d *fakeDest) CreateProduct(ctx context.Context, payload *bigcommerce.ProductCreate) (*bigcommerce.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.createProductCalls++
	if d.createProductErr != nil {
		return nil, d.createProductErr
	}
	created := bigcommerce.Product{ID: d.allocate(), Name: payload.Name, SKU: payload.SKU}
	d.products = append(d.products, created)
	return &created, nil
}

func (d *fakeDest) FindProductBySKU(ctx context.Context, sku string) (*bigcommerce.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.products {
		if d.products[i].SKU == sku {
			return &d.products[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDest) CreateCustomers(ctx context.Context, payload []bigcommerce.CustomerCreate) ([]bigcommerce.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.createCustomerCalls++
	d.batchSizes = append(d.batchSizes, len(payload))

	created := make([]bigcommerce.Customer, 0, len(payload))
	for _, c := range payload {
		customer := bigcommerce.Customer{ID: d.allocate(), Email: c.Email}
		d.customers = append(d.customers, customer)
		created = append(created, customer)
	}
	return created, nil
}

func (d *fakeDest) FindCustomersByEmail(ctx context.Context, emails []string) ([]bigcommerce.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[strings.ToLower(e)] = true
	}
	var found []bigcommerce.Customer
	for _, c := range d.customers {
		if want[strings.ToLower(c.Email)] {
			found = append(found, c)
		}
	}
	return found, nil
}

// memoryMappingStore keeps persisted mappings in memory per entity
type memoryMappingStore struct {
	mu      sync.Mutex
	entries map[migration.EntityType]map[int64]int64
}

func newMemoryMappingStore() *memoryMappingStore {
	return &memoryMappingStore{entries: make(map[migration.EntityType]map[int64]int64)}
}

func (s *memoryMappingStore) SaveAll(ctx context.Context, entity migration.EntityType, mapping *migration.IDMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[entity] == nil {
		s.entries[entity] = make(map[int64]int64)
	}
	for src, dst := range mapping.Snapshot() {
		s.entries[entity][src] = dst
	}
	return nil
}

func (s *memoryMappingStore) Load(ctx context.Context, entity migration.EntityType) (*migration.IDMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return migration.NewIDMappingFrom(s.entries[entity]), nil
}

// memoryRunStore keeps run reports in memory
type memoryRunStore struct {
	mu      sync.Mutex
	reports []*migration.Report
}

func (s *memoryRunStore) Record(ctx context.Context, report *migration.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *memoryRunStore) LastSuccessfulRun(ctx context.Context, entity migration.EntityType) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var watermark *time.Time
	for _, r := range s.reports {
		if r.Entity == entity && !r.CompletedAt.IsZero() && r.Stats.Failed == 0 {
			if watermark == nil || r.StartedAt.After(*watermark) {
				started := r.StartedAt
				watermark = &started
			}
		}
	}
	return watermark, nil
}
