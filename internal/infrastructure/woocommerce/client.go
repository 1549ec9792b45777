package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
)

const (
	// apiPrefix is the WooCommerce REST v3 route prefix
	apiPrefix = "/wp-json/wc/v3"
	// maxResponseSize limits the response body size
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Pagination carries the totals WooCommerce returns in response headers
type Pagination struct {
	Total      int
	TotalPages int
}

// ListOptions filters a paginated list call
type ListOptions struct {
	Page int
	// ModifiedAfter limits results to items changed since the timestamp
	// (delta sync); zero means no filter
	ModifiedAfter time.Time
}

// Client reads the source catalog through the WooCommerce REST API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a source API client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// ListCategories returns one page of categories
func (c *Client) ListCategories(ctx context.Context, opts ListOptions) ([]Category, Pagination, error) {
	var categories []Category
	pg, err := c.list(ctx, "/products/categories", opts, nil, &categories)
	return categories, pg, err
}

// ListProducts returns one page of products
func (c *Client) ListProducts(ctx context.Context, opts ListOptions) ([]Product, Pagination, error) {
	var products []Product
	pg, err := c.list(ctx, "/products", opts, nil, &products)
	return products, pg, err
}

// ListVariations returns one page of variations for a variable product
func (c *Client) ListVariations(ctx context.Context, productID int64, opts ListOptions) ([]Variation, Pagination, error) {
	var variations []Variation
	path := fmt.Sprintf("/products/%d/variations", productID)
	pg, err := c.list(ctx, path, opts, nil, &variations)
	return variations, pg, err
}

// ListCustomers returns one page of customers
func (c *Client) ListCustomers(ctx context.Context, opts ListOptions) ([]Customer, Pagination, error) {
	var customers []Customer
	pg, err := c.list(ctx, "/customers", opts, url.Values{"role": []string{"all"}}, &customers)
	return customers, pg, err
}

// variationPageWorkers bounds the concurrent page fetches of one product's
// variation list
const variationPageWorkers = 4

// FetchAllVariations collects every variation of a product across pages, in
// source order. The first page reveals the page count; the remaining pages
// are fetched concurrently and reassembled by page index.
func (c *Client) FetchAllVariations(ctx context.Context, productID int64) ([]Variation, error) {
	first, pg, err := c.ListVariations(ctx, productID, ListOptions{Page: 1})
	if err != nil {
		return nil, err
	}
	if pg.TotalPages <= 1 || len(first) == 0 {
		return first, nil
	}

	pages := make([][]Variation, pg.TotalPages+1)
	pages[1] = first
	rest := make([]int, 0, pg.TotalPages-1)
	for page := 2; page <= pg.TotalPages; page++ {
		rest = append(rest, page)
	}

	// Each worker writes only its own page slot
	errs, err := shared.ForEach(ctx, rest, variationPageWorkers, func(ctx context.Context, page int) error {
		batch, _, err := c.ListVariations(ctx, productID, ListOptions{Page: page})
		if err != nil {
			return err
		}
		pages[page] = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	all := make([]Variation, 0, len(first)*pg.TotalPages)
	for _, batch := range pages[1:] {
		all = append(all, batch...)
	}
	return all, nil
}

// FetchAllCategories collects every category across pages
func (c *Client) FetchAllCategories(ctx context.Context) ([]Category, error) {
	var all []Category
	for page := 1; ; page++ {
		batch, pg, err := c.ListCategories(ctx, ListOptions{Page: page})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if page >= pg.TotalPages || len(batch) == 0 {
			return all, nil
		}
	}
}

// list performs a paginated GET and decodes the response into out
func (c *Client) list(ctx context.Context, path string, opts ListOptions, extra url.Values, out any) (Pagination, error) {
	query := url.Values{}
	for k, vs := range extra {
		query[k] = vs
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(c.config.PageSize))
	query.Set("orderby", "id")
	query.Set("order", "asc")
	if !opts.ModifiedAfter.IsZero() {
		query.Set("modified_after", opts.ModifiedAfter.UTC().Format(time.RFC3339))
	}

	reqURL := c.config.BaseURL + apiPrefix + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Pagination{}, migration.NewValidationError("source", "url", err.Error())
	}
	req.SetBasicAuth(c.config.ConsumerKey, c.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Pagination{}, &migration.ConnectionError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Pagination{}, &migration.ConnectionError{Op: "GET " + path, Err: err}
	}

	if resp.StatusCode >= 400 {
		return Pagination{}, &migration.APIError{
			Method: http.MethodGet,
			Path:   path,
			Status: resp.StatusCode,
			Body:   string(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return Pagination{}, migration.NewValidationError("source", path,
			fmt.Sprintf("unexpected response shape: %v", err))
	}

	return parsePagination(resp.Header), nil
}

// parsePagination reads the totals WooCommerce sends as response headers
func parsePagination(h http.Header) Pagination {
	pg := Pagination{TotalPages: 1}
	if v := h.Get("X-WP-Total"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pg.Total = n
		}
	}
	if v := h.Get("X-WP-TotalPages"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pg.TotalPages = n
		}
	}
	return pg
}
