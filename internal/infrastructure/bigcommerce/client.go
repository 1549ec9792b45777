package bigcommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/gateway"
)

// Executor is the gateway contract the client depends on
type Executor interface {
	Execute(ctx context.Context, op gateway.Operation) (*gateway.Response, error)
}

// Client writes the destination catalog through the BigCommerce v3 API.
// Every call goes through the rate-limited gateway.
type Client struct {
	gw       Executor
	prefix   string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGateway builds the rate-limited gateway for one destination store
func NewGateway(config *Config, limiter *gateway.Limiter, policy gateway.BackoffPolicy, logger *zap.Logger) (*gateway.Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	gw := gateway.New(config.APIBaseURL, limiter, policy, func(r *http.Request) {
		r.Header.Set("X-Auth-Token", config.AccessToken)
	}, logger)
	gw.SetHTTPClient(&http.Client{Timeout: config.Timeout})
	return gw, nil
}

// NewClient creates a destination API client on top of an executor
func NewClient(config *Config, gw Executor, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		gw:       gw,
		prefix:   config.StorePrefix(),
		validate: validator.New(),
		logger:   logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Category Operations
// ---------------------------------------------------------------------------

// CreateCategory creates one category and returns the created entity
func (c *Client) CreateCategory(ctx context.Context, payload *CategoryCreate) (*Category, error) {
	if err := c.validate.Struct(payload); err != nil {
		return nil, migration.NewValidationError("category", "payload", err.Error())
	}

	resp, err := c.gw.Execute(ctx, gateway.Operation{
		Method: http.MethodPost,
		Path:   c.prefix + "/catalog/categories",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var env envelope[Category]
	if err := c.decode(resp.Body, "category", &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// FindCategoryByName looks up an existing category by exact case-insensitive
// name, optionally scoped to a parent. Returns nil when absent.
func (c *Client) FindCategoryByName(ctx context.Context, name string, parentID *int64) (*Category, error) {
	query := url.Values{"name": []string{name}}
	if parentID != nil {
		query.Set("parent_id", strconv.FormatInt(*parentID, 10))
	}

	resp, err := c.gw.Execute(ctx, gateway.Operation{
		Method: http.MethodGet,
		Path:   c.prefix + "/catalog/categories",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	var env envelope[[]Category]
	if err := c.decode(resp.Body, "category", &env); err != nil {
		return nil, err
	}

	for i := range env.Data {
		if strings.EqualFold(env.Data[i].Name, name) {
			return &env.Data[i], nil
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// CreateProduct creates one product with its options and variants embedded
// in a single payload
func (c *Client) CreateProduct(ctx context.Context, payload *ProductCreate) (*Product, error) {
	if err := c.validate.Struct(payload); err != nil {
		return nil, migration.NewValidationError("product", "payload", err.Error())
	}

	resp, err := c.gw.Execute(ctx, gateway.Operation{
		Method: http.MethodPost,
		Path:   c.prefix + "/catalog/products",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var env envelope[Product]
	if err := c.decode(resp.Body, "product", &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// FindProductBySKU looks up an existing product by SKU. Returns nil when absent.
func (c *Client) FindProductBySKU(ctx context.Context, sku string) (*Product, error) {
	resp, err := c.gw.Execute(ctx, gateway.Operation{
		Method: http.MethodGet,
		Path:   c.prefix + "/catalog/products",
		Query:  url.Values{"sku": []string{sku}},
	})
	if err != nil {
		return nil, err
	}

	var env envelope[[]Product]
	if err := c.decode(resp.Body, "product", &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, nil
	}
	return &env.Data[0], nil
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

// CreateCustomers creates customers in bulk. The payload is list-wrapped even
// for a single customer; at most 10 per call.
func (c *Client) CreateCustomers(ctx context.Context, payload []CustomerCreate) ([]Customer, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	for i := range payload {
		if err := c.validate.Struct(&payload[i]); err != nil {
			return nil, migration.NewValidationError("customer", payload[i].Email, err.Error())
		}
	}

	resp, err := c.gw.Execute(ctx, gateway.Operation{
		Method: http.MethodPost,
		Path:   c.prefix + "/customers",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}

	var env envelope[[]Customer]
	if err := c.decode(resp.Body, "customer", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// FindCustomersByEmail returns the existing customers among the given emails
func (c *Client) FindCustomersByEmail(ctx context.Context, emails []string) ([]Customer, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	resp, err := c.gw.Execute(ctx, gateway.Operation{
		Method: http.MethodGet,
		Path:   c.prefix + "/customers",
		Query:  url.Values{"email:in": []string{strings.Join(emails, ",")}},
	})
	if err != nil {
		return nil, err
	}

	var env envelope[[]Customer]
	if err := c.decode(resp.Body, "customer", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// decode unmarshals a v3 envelope; a shape mismatch is a ValidationError,
// never silent zero values
func (c *Client) decode(body []byte, entity string, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return migration.NewValidationError(entity, "response",
			fmt.Sprintf("unexpected response shape: %v", err))
	}
	return nil
}
