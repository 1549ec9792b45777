package bigcommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/gateway"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &Config{
		APIBaseURL:  server.URL,
		StoreHash:   "abc123",
		AccessToken: "test-token",
	}

	limiter := gateway.NewLimiter(100, time.Second)
	policy := gateway.BackoffPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Factor:      2.0,
		MaxDelay:    10 * time.Millisecond,
	}
	gw, err := NewGateway(cfg, limiter, policy, nil)
	require.NoError(t, err)

	client, err := NewClient(cfg, gw, nil)
	require.NoError(t, err)
	return client, server
}

func TestCreateCategory(t *testing.T) {
	var gotPath, gotToken string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Auth-Token")

		var payload CategoryCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Shoes", payload.Name)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": 42, "name": "Shoes", "parent_id": 0},
		})
	})

	created, err := client.CreateCategory(context.Background(), &CategoryCreate{
		Name:      "Shoes",
		IsVisible: true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, "/stores/abc123/v3/catalog/categories", gotPath)
	assert.Equal(t, "test-token", gotToken)
}

func TestCreateCategoryValidatesPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid payload must not reach the API")
	})

	_, err := client.CreateCategory(context.Background(), &CategoryCreate{Name: ""})

	var vErr *migration.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "category", vErr.Entity)
}

func TestFindCategoryByName(t *testing.T) {
	tests := []struct {
		name      string
		search    string
		parentID  *int64
		response  []Category
		wantID    int64
		wantFound bool
	}{
		{
			name:      "exact match",
			search:    "Shoes",
			response:  []Category{{ID: 7, Name: "Shoes"}},
			wantID:    7,
			wantFound: true,
		},
		{
			name:      "case-insensitive match",
			search:    "SHOES",
			response:  []Category{{ID: 7, Name: "shoes"}},
			wantID:    7,
			wantFound: true,
		},
		{
			name:      "substring results filtered out",
			search:    "Shoes",
			response:  []Category{{ID: 9, Name: "Running Shoes"}},
			wantFound: false,
		},
		{
			name:      "absent",
			search:    "Hats",
			response:  nil,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				json.NewEncoder(w).Encode(envelope[[]Category]{Data: tt.response})
			})

			found, err := client.FindCategoryByName(context.Background(), tt.search, tt.parentID)
			require.NoError(t, err)

			if !tt.wantFound {
				assert.Nil(t, found)
				return
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.wantID, found.ID)
			assert.Contains(t, gotQuery, "name=")
		})
	}
}

func TestFindCategoryByNameScopesParent(t *testing.T) {
	var gotParent string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotParent = r.URL.Query().Get("parent_id")
		json.NewEncoder(w).Encode(envelope[[]Category]{})
	})

	parent := int64(12)
	_, err := client.FindCategoryByName(context.Background(), "Boots", &parent)

	require.NoError(t, err)
	assert.Equal(t, "12", gotParent)
}

func TestCreateProduct(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload ProductCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "WC-101", payload.SKU)
		assert.Len(t, payload.Variants, 2)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": 555, "sku": "WC-101"},
		})
	})

	created, err := client.CreateProduct(context.Background(), &ProductCreate{
		Name:   "T-Shirt",
		Type:   ProductTypePhysical,
		SKU:    "WC-101",
		Weight: 1,
		Options: []ProductOption{{
			DisplayName:  "Size",
			Type:         OptionTypeRectangle,
			OptionValues: []OptionValue{{Label: "S"}, {Label: "M"}},
		}},
		Variants: []Variant{
			{SKU: "WC-101-S", OptionValues: []VariantOptionValue{{OptionDisplayName: "Size", Label: "S"}}},
			{SKU: "WC-101-M", OptionValues: []VariantOptionValue{{OptionDisplayName: "Size", Label: "M"}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(555), created.ID)
}

func TestFindProductBySKU(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sku") == "WC-101" {
			json.NewEncoder(w).Encode(envelope[[]Product]{Data: []Product{{ID: 555, SKU: "WC-101"}}})
			return
		}
		json.NewEncoder(w).Encode(envelope[[]Product]{})
	})

	found, err := client.FindProductBySKU(context.Background(), "WC-101")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(555), found.ID)

	missing, err := client.FindProductBySKU(context.Background(), "WC-999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateCustomersListWrapped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload []CustomerCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload), "payload must be a JSON array")
		require.Len(t, payload, 1)

		json.NewEncoder(w).Encode(envelope[[]Customer]{
			Data: []Customer{{ID: 900, Email: payload[0].Email}},
		})
	})

	created, err := client.CreateCustomers(context.Background(), []CustomerCreate{
		{Email: "a@example.com", FirstName: "Ada", LastName: "Lovelace"},
	})

	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int64(900), created[0].ID)
}

func TestCreateCustomersRejectsInvalidEmail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid payload must not reach the API")
	})

	_, err := client.CreateCustomers(context.Background(), []CustomerCreate{
		{Email: "not-an-email", FirstName: "Ada", LastName: "Lovelace"},
	})

	var vErr *migration.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "customer", vErr.Entity)
}

func TestFindCustomersByEmail(t *testing.T) {
	var gotFilter string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("email:in")
		json.NewEncoder(w).Encode(envelope[[]Customer]{
			Data: []Customer{{ID: 900, Email: "a@example.com"}},
		})
	})

	found, err := client.FindCustomersByEmail(context.Background(),
		[]string{"a@example.com", "b@example.com"})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a@example.com,b@example.com", gotFilter)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"title":"duplicate sku"}`))
	})

	_, err := client.CreateProduct(context.Background(), &ProductCreate{
		Name: "T-Shirt", Type: ProductTypePhysical, SKU: "WC-101",
	})

	var apiErr *migration.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.False(t, apiErr.Retriable())
}
