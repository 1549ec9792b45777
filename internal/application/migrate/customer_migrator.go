package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/logger"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// CustomerMigrator moves customer accounts in bulk. The destination's
// customer create is list-wrapped and accepts at most BatchSize items per
// call; idempotency uses one filtered email lookup per batch.
type CustomerMigrator struct {
	source  Source
	dest    Destination
	mapping *migration.IDMapping
	sink    migration.ProgressSink
	logger  *zap.Logger

	// BatchSize caps how many customers one create call carries
	BatchSize int
}

// NewCustomerMigrator creates a customer migrator
func NewCustomerMigrator(source Source, dest Destination, mapping *migration.IDMapping, sink migration.ProgressSink, logger *zap.Logger) *CustomerMigrator {
	if sink == nil {
		sink = migration.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerMigrator{
		source:    source,
		dest:      dest,
		mapping:   mapping,
		sink:      sink,
		logger:    logger,
		BatchSize: 10,
	}
}

// Run migrates all customers and always returns a complete report
func (m *CustomerMigrator) Run(ctx context.Context) (*migration.Report, error) {
	report := migration.NewReport(migration.EntityCustomer)
	ctx, _ = logger.WithRunID(ctx, m.logger, report.RunID.String())
	defer func() {
		report.Complete()
		m.sink.OnReport(report)
	}()

	page := 1
	for {
		customers, pagination, err := m.source.ListCustomers(ctx, woocommerce.ListOptions{Page: page})
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

		for _, batch := range shared.Chunk(customers, m.BatchSize) {
			if err := checkCancelled(ctx); err != nil {
				return report, err
			}
			m.migrateBatch(ctx, batch, report)
			m.sink.OnProgress(migration.Progress{
				Entity: migration.EntityCustomer,
				Stats:  report.Stats,
			})
		}

		page++
		if page > pagination.TotalPages || len(customers) == 0 {
			break
		}
	}

	return report, nil
}

func (m *CustomerMigrator) migrateBatch(ctx context.Context, batch []woocommerce.Customer, report *migration.Report) {
	// Items without an email cannot be created or deduplicated
	valid := make([]woocommerce.Customer, 0, len(batch))
	for _, c := range batch {
		if c.Email == "" {
			report.RecordFailed(c.ID, c.Username,
				migration.NewValidationError("customer", "email", "email is required"))
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return
	}

	emails := make([]string, 0, len(valid))
	for _, c := range valid {
		emails = append(emails, c.Email)
	}

	existing, err := m.dest.FindCustomersByEmail(ctx, emails)
	if err != nil {
		for _, c := range valid {
			report.RecordFailed(c.ID, c.Email, err)
		}
		return
	}
	existingByEmail := make(map[string]int64, len(existing))
	for _, c := range existing {
		existingByEmail[strings.ToLower(c.Email)] = c.ID
	}

	var payload []bigcommerce.CustomerCreate
	var pending []woocommerce.Customer
	for _, c := range valid {
		if id, ok := existingByEmail[strings.ToLower(c.Email)]; ok {
			m.mapping.Put(c.ID, id)
			report.RecordSkipped()
			continue
		}
		payload = append(payload, transformCustomer(c))
		pending = append(pending, c)
	}
	if len(payload) == 0 {
		return
	}

	created, err := m.dest.CreateCustomers(ctx, payload)
	if err != nil {
		logger.FromContext(ctx).Warn("customer batch create failed",
			zap.Int("batch_size", len(payload)), zap.Error(err))
		for _, c := range pending {
			report.RecordFailed(c.ID, c.Email, err)
		}
		return
	}

	createdByEmail := make(map[string]int64, len(created))
	for _, c := range created {
		createdByEmail[strings.ToLower(c.Email)] = c.ID
	}
	for _, c := range pending {
		id, ok := createdByEmail[strings.ToLower(c.Email)]
		if !ok {
			report.RecordFailed(c.ID, c.Email,
				migration.NewValidationError("customer", "email",
					"created batch response does not contain this customer"))
			continue
		}
		m.mapping.Put(c.ID, id)
		report.RecordCreated()
	}
}

// transformCustomer maps one source customer onto a destination create entry.
// Missing names fall back to the local part of the email so the destination's
// required-name rule cannot reject an otherwise valid account.
func transformCustomer(src woocommerce.Customer) bigcommerce.CustomerCreate {
	first, last := src.FirstName, src.LastName
	if first == "" {
		first = src.Billing.FirstName
	}
	if last == "" {
		last = src.Billing.LastName
	}
	if first == "" {
		if at := strings.IndexByte(src.Email, '@'); at > 0 {
			first = src.Email[:at]
		} else {
			first = src.Email
		}
	}
	if last == "" {
		last = "-"
	}

	create := bigcommerce.CustomerCreate{
		Email:     src.Email,
		FirstName: first,
		LastName:  last,
		Company:   src.Billing.Company,
		Phone:     src.Billing.Phone,
	}
	if addr, ok := convertAddress(src.Billing, first, last); ok {
		create.Addresses = append(create.Addresses, addr)
	}
	return create
}

// convertAddress maps a billing address when it is complete enough for the
// destination to accept
func convertAddress(src woocommerce.CustomerAddress, first, last string) (bigcommerce.CustomerAddress, bool) {
	if src.Address1 == "" || src.City == "" || src.Country == "" {
		return bigcommerce.CustomerAddress{}, false
	}
	if src.FirstName == "" {
		src.FirstName = first
	}
	if src.LastName == "" {
		src.LastName = last
	}
	return bigcommerce.CustomerAddress{
		FirstName:       src.FirstName,
		LastName:        src.LastName,
		Company:         src.Company,
		Address1:        src.Address1,
		Address2:        src.Address2,
		City:            src.City,
		StateOrProvince: src.State,
		PostalCode:      src.Postcode,
		CountryCode:     src.Country,
		Phone:           src.Phone,
	}, true
}
