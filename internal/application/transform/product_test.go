package transform

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

func emptyIndex() *migration.CategoryIndex {
	return migration.NewCategoryIndex(nil)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name string
		src  woocommerce.Product
		want bigcommerce.ProductType
	}{
		{
			name: "simple shipped product is physical",
			src:  woocommerce.Product{Name: "Mug", Type: woocommerce.ProductTypeSimple, ShippingRequired: true},
			want: bigcommerce.ProductTypePhysical,
		},
		{
			name: "virtual product is digital",
			src:  woocommerce.Product{Name: "Service", Type: woocommerce.ProductTypeSimple, Virtual: true},
			want: bigcommerce.ProductTypeDigital,
		},
		{
			name: "downloadable without shipping is digital",
			src:  woocommerce.Product{Name: "E-Book", Type: woocommerce.ProductTypeSimple, Downloadable: true},
			want: bigcommerce.ProductTypeDigital,
		},
		{
			name: "downloadable with shipping stays physical",
			src:  woocommerce.Product{Name: "Boxed Software", Type: woocommerce.ProductTypeSimple, Downloadable: true, ShippingRequired: true},
			want: bigcommerce.ProductTypePhysical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, _, err := TransformProduct(&tt.src, nil, emptyIndex(), DefaultPolicy())
			require.NoError(t, err)
			assert.Equal(t, tt.want, dest.Type)
		})
	}
}

func TestGroupedTypeWarnsAboutNarrowing(t *testing.T) {
	src := woocommerce.Product{ID: 9, Name: "Bundle", Type: woocommerce.ProductTypeGrouped}

	_, warnings, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())

	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "grouped")
}

func TestBlankNameIsHardFailure(t *testing.T) {
	src := woocommerce.Product{ID: 1, SKU: "X"}

	_, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())

	var vErr *migration.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
}

func TestSKUSynthesisIsDeterministic(t *testing.T) {
	src := woocommerce.Product{ID: 4321, Name: "Mug"}

	first, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())
	require.NoError(t, err)
	second, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, "WC-4321", first.SKU)
	assert.Equal(t, first.SKU, second.SKU)
}

func TestPhysicalWeightDefaults(t *testing.T) {
	tests := []struct {
		name        string
		src         woocommerce.Product
		wantWeight  float64
		wantWarning bool
	}{
		{
			name:        "physical with zero weight defaults to 1",
			src:         woocommerce.Product{Name: "Mug", Weight: "0"},
			wantWeight:  1,
			wantWarning: true,
		},
		{
			name:        "physical with missing weight defaults to 1",
			src:         woocommerce.Product{Name: "Mug"},
			wantWeight:  1,
			wantWarning: true,
		},
		{
			name:       "physical with real weight keeps it",
			src:        woocommerce.Product{Name: "Mug", Weight: "0.35"},
			wantWeight: 0.35,
		},
		{
			name:       "digital keeps zero weight without warning",
			src:        woocommerce.Product{Name: "E-Book", Virtual: true, Weight: "0"},
			wantWeight: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, warnings, err := TransformProduct(&tt.src, nil, emptyIndex(), DefaultPolicy())
			require.NoError(t, err)
			assert.Equal(t, tt.wantWeight, dest.Weight)

			weightWarned := false
			for _, w := range warnings {
				if w.Message == "physical product has no weight, defaulted to 1" {
					weightWarned = true
				}
			}
			assert.Equal(t, tt.wantWarning, weightWarned)
		})
	}
}

func TestPriceCoercion(t *testing.T) {
	tests := []struct {
		price string
		want  float64
	}{
		{"19.99", 19.99},
		{"", 0},
		{"not-a-price", 0},
	}

	for _, tt := range tests {
		src := woocommerce.Product{Name: "Mug", Price: tt.price}
		dest, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, tt.want, dest.Price, "price %q", tt.price)
	}
}

func TestUnresolvedCategoryIsDroppedWithWarning(t *testing.T) {
	index := migration.NewCategoryIndex(map[string]int64{"Shoes": 42})
	src := woocommerce.Product{
		ID:   7,
		Name: "Sneaker",
		Categories: []woocommerce.CategoryRef{
			{ID: 1, Name: "Shoes"},
			{ID: 2, Name: "Vanished"},
		},
	}

	dest, warnings, err := TransformProduct(&src, nil, index, DefaultPolicy())

	require.NoError(t, err)
	assert.Equal(t, []int64{42}, dest.Categories)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "Vanished")
}

func TestCategoryLookupIsCaseInsensitive(t *testing.T) {
	index := migration.NewCategoryIndex(map[string]int64{"Shoes": 42})
	src := woocommerce.Product{
		Name:       "Sneaker",
		Categories: []woocommerce.CategoryRef{{Name: "SHOES"}},
	}

	dest, warnings, err := TransformProduct(&src, nil, index, DefaultPolicy())

	require.NoError(t, err)
	assert.Equal(t, []int64{42}, dest.Categories)
	assert.Empty(t, warnings)
}

func TestVariableProductBranch(t *testing.T) {
	src := woocommerce.Product{
		ID:    10,
		Name:  "T-Shirt",
		SKU:   "TS",
		Type:  woocommerce.ProductTypeVariable,
		Price: "30.00",
		Attributes: []woocommerce.Attribute{
			{Name: "Size", Variation: true, Options: []string{"S", "M"}},
		},
	}
	variations := []woocommerce.Variation{
		{ID: 1, SKU: "TS-S", Price: "25.00", Purchasable: true,
			Attributes: []woocommerce.VariationAttribute{{Name: "Size", Option: "S"}}},
		{ID: 2, SKU: "TS-M", Price: "27.50", Purchasable: true,
			Attributes: []woocommerce.VariationAttribute{{Name: "Size", Option: "M"}}},
	}

	dest, _, err := TransformProduct(&src, variations, emptyIndex(), DefaultPolicy())

	require.NoError(t, err)
	assert.Equal(t, bigcommerce.TrackingVariant, dest.InventoryTracking)
	assert.Equal(t, 25.0, dest.Price, "headline price is the lowest variant price")
	require.Len(t, dest.Options, 1)
	require.Len(t, dest.Variants, 2)
}

func TestStockTracking(t *testing.T) {
	qty := 12
	managed := woocommerce.Product{Name: "Mug", ManageStock: true, StockQuantity: &qty}
	dest, _, err := TransformProduct(&managed, nil, emptyIndex(), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, bigcommerce.TrackingProduct, dest.InventoryTracking)
	assert.Equal(t, 12, dest.InventoryLevel)

	unmanaged := woocommerce.Product{Name: "Mug"}
	dest, _, err = TransformProduct(&unmanaged, nil, emptyIndex(), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, bigcommerce.TrackingNone, dest.InventoryTracking)
}

func TestImageOrderAndThumbnail(t *testing.T) {
	src := woocommerce.Product{
		Name: "Mug",
		Images: []woocommerce.Image{
			{Src: "https://cdn.example.com/a.jpg", Alt: "front"},
			{Src: "https://cdn.example.com/b.jpg", Alt: "back"},
		},
	}

	dest, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())

	require.NoError(t, err)
	require.Len(t, dest.Images, 2)
	assert.True(t, dest.Images[0].IsThumbnail)
	assert.False(t, dest.Images[1].IsThumbnail)
	assert.Equal(t, 1, dest.Images[1].SortOrder)
}

func TestTransformIsDeterministic(t *testing.T) {
	src := woocommerce.Product{
		ID:   77,
		Name: "Mug",
		Type: woocommerce.ProductTypeSimple,
	}

	first, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())
	require.NoError(t, err)
	second, _, err := TransformProduct(&src, nil, emptyIndex(), DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("%+v", first), fmt.Sprintf("%+v", second))
}
