package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// TransformProduct maps one source product (and its variations, when it is a
// variable product) onto a destination create payload. The function is pure:
// it performs no I/O and is deterministic given its inputs.
//
// Lossy mapping decisions surface as warnings; the only hard failure is a
// blank product name, which excludes the item from migration.
func TransformProduct(
	src *woocommerce.Product,
	variations []woocommerce.Variation,
	categories *migration.CategoryIndex,
	policy Policy,
) (*bigcommerce.ProductCreate, []migration.Warning, error) {
	if src.Name == "" {
		return nil, nil, migration.NewValidationError("product", "name", "product name is required")
	}

	var warnings []migration.Warning

	productType := classify(src)
	switch src.Type {
	case woocommerce.ProductTypeGrouped, woocommerce.ProductTypeExternal:
		warnings = append(warnings, migration.Warnf(migration.EntityProduct, src.ID,
			"product type %q has no destination equivalent, migrated as %s", src.Type, productType))
	}

	sku := src.SKU
	if sku == "" {
		sku = SynthesizeSKU(policy.SKUPrefix, src.ID)
		warnings = append(warnings, migration.Warnf(migration.EntityProduct, src.ID,
			"blank SKU, synthesized %q", sku))
	}

	weight := parseAmount(src.Weight)
	if productType == bigcommerce.ProductTypePhysical && weight == 0 {
		weight = policy.DefaultWeight
		warnings = append(warnings, migration.Warnf(migration.EntityProduct, src.ID,
			"physical product has no weight, defaulted to %v", policy.DefaultWeight))
	}

	dest := &bigcommerce.ProductCreate{
		Name:        src.Name,
		Type:        productType,
		SKU:         sku,
		Description: src.Description,
		Weight:      weight,
		Price:       parseAmount(src.Price),
		SalePrice:   parseAmount(src.SalePrice),
		IsVisible:   src.Status == "publish",
	}

	for _, ref := range src.Categories {
		id, ok := categories.Lookup(ref.Name)
		if !ok {
			warnings = append(warnings, migration.Warnf(migration.EntityProduct, src.ID,
				"category %q not found on destination, dropped", ref.Name))
			continue
		}
		dest.Categories = append(dest.Categories, id)
	}

	for i, img := range src.Images {
		dest.Images = append(dest.Images, bigcommerce.ProductImage{
			ImageURL:    img.Src,
			IsThumbnail: i == 0,
			SortOrder:   i,
			Description: img.Alt,
		})
	}

	if src.ManageStock && src.StockQuantity != nil {
		dest.InventoryTracking = bigcommerce.TrackingProduct
		dest.InventoryLevel = *src.StockQuantity
	} else {
		dest.InventoryTracking = bigcommerce.TrackingNone
	}

	if src.IsVariable() && len(variations) > 0 {
		options, variants, variantWarnings := TransformVariations(variations, src.Attributes, sku, src.ID, policy)
		warnings = append(warnings, variantWarnings...)

		dest.Options = options
		dest.Variants = variants
		dest.InventoryTracking = bigcommerce.TrackingVariant
		dest.InventoryLevel = 0

		// Headline price convention: lowest parseable variant price wins
		if min, ok := minVariantPrice(variations); ok {
			dest.Price = min
		}
	}

	return dest, warnings, nil
}

// classify narrows the source's four-way type enum onto the destination's
// two-way one. Virtual products and downloadables that need no shipping are
// digital; everything else ships.
func classify(src *woocommerce.Product) bigcommerce.ProductType {
	if src.Virtual || (src.Downloadable && !src.ShippingRequired) {
		return bigcommerce.ProductTypeDigital
	}
	return bigcommerce.ProductTypePhysical
}

// SynthesizeSKU builds a deterministic SKU from a source numeric id
func SynthesizeSKU(prefix string, sourceID int64) string {
	return fmt.Sprintf("%s%d", prefix, sourceID)
}

// parseAmount coerces a decimal string to a float. Unparsable or absent
// values become 0, never an error.
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// minVariantPrice returns the lowest parseable positive variation price
func minVariantPrice(variations []woocommerce.Variation) (float64, bool) {
	var min decimal.Decimal
	found := false
	for _, v := range variations {
		if v.Price == "" {
			continue
		}
		d, err := decimal.NewFromString(v.Price)
		if err != nil {
			continue
		}
		if !found || d.LessThan(min) {
			min = d
			found = true
		}
	}
	if !found {
		return 0, false
	}
	f, _ := min.Float64()
	return f, true
}
