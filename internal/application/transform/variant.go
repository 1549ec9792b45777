package transform

import (
	"fmt"
	"strings"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// purchasingDisabledMessage is shown on variants that exist in the catalog
// but cannot currently be bought
const purchasingDisabledMessage = "This option is currently unavailable."

// TransformVariations maps a variable product's variations and declared
// attributes onto destination options and variants. Only attributes flagged
// for variation become options. Like TransformProduct it is pure and
// deterministic.
func TransformVariations(
	variations []woocommerce.Variation,
	attributes []woocommerce.Attribute,
	parentSKU string,
	parentID int64,
	policy Policy,
) ([]bigcommerce.ProductOption, []bigcommerce.Variant, []migration.Warning) {
	var warnings []migration.Warning

	axes := variationAxes(attributes)
	options := make([]bigcommerce.ProductOption, 0, len(axes))
	for i, attr := range axes {
		opt := bigcommerce.ProductOption{
			DisplayName: attr.Name,
			Type:        policy.OptionTypeFor(attr.Name),
			SortOrder:   i,
		}
		for j, value := range attr.Options {
			opt.OptionValues = append(opt.OptionValues, bigcommerce.OptionValue{
				Label:     value,
				SortOrder: j,
			})
		}
		options = append(options, opt)
	}

	if len(variations) > policy.MaxVariants {
		warnings = append(warnings, migration.Warnf(migration.EntityProduct, parentID,
			"product has %d variations, destination accepts at most %d; the remaining %d were not migrated",
			len(variations), policy.MaxVariants, len(variations)-policy.MaxVariants))
		variations = variations[:policy.MaxVariants]
	}

	variants := make([]bigcommerce.Variant, 0, len(variations))
	for _, v := range variations {
		sku := v.SKU
		if sku == "" {
			sku = fmt.Sprintf("%s-%d", parentSKU, v.ID)
		}

		selections, dropped := linkSelections(v.Attributes, axes)
		for _, pair := range dropped {
			warnings = append(warnings, migration.Warnf(migration.EntityProduct, parentID,
				"variation %d: attribute %q option %q does not match any declared value, pairing dropped",
				v.ID, pair.Name, pair.Option))
		}
		if len(dropped) > 0 && policy.StrictSelections {
			warnings = append(warnings, migration.Warnf(migration.EntityProduct, parentID,
				"variation %d excluded: %d of its selections could not be resolved", v.ID, len(dropped)))
			continue
		}

		variant := bigcommerce.Variant{
			SKU:          sku,
			Price:        parseAmount(v.Price),
			Weight:       parseAmount(v.Weight),
			OptionValues: selections,
		}
		if v.ManageStock && v.StockQuantity != nil {
			variant.InventoryLevel = *v.StockQuantity
		}
		if !v.Purchasable || v.StockStatus == woocommerce.StockStatusOutOfStock {
			variant.PurchasingDisabled = true
			variant.PurchasingDisabledMessage = purchasingDisabledMessage
		}
		if v.Image != nil {
			variant.ImageURL = v.Image.Src
		}

		variants = append(variants, variant)
	}

	return options, variants, warnings
}

// variationAxes returns the attributes that generate variants, in source order
func variationAxes(attributes []woocommerce.Attribute) []woocommerce.Attribute {
	axes := make([]woocommerce.Attribute, 0, len(attributes))
	for _, attr := range attributes {
		if attr.Variation {
			axes = append(axes, attr)
		}
	}
	return axes
}

// linkSelections resolves each (attribute, selected option) pair to a
// declared option value, matching attribute name and option text
// case-insensitively. The destination label is the declared value, so a
// selection that differs only in case still links. Unresolvable pairs are
// returned separately for the caller's policy to decide.
func linkSelections(
	pairs []woocommerce.VariationAttribute,
	axes []woocommerce.Attribute,
) ([]bigcommerce.VariantOptionValue, []woocommerce.VariationAttribute) {
	var selections []bigcommerce.VariantOptionValue
	var dropped []woocommerce.VariationAttribute

	for _, pair := range pairs {
		axis, ok := findAxis(axes, pair.Name)
		if !ok {
			dropped = append(dropped, pair)
			continue
		}

		label, ok := findValue(axis.Options, pair.Option)
		if !ok {
			dropped = append(dropped, pair)
			continue
		}

		selections = append(selections, bigcommerce.VariantOptionValue{
			OptionDisplayName: axis.Name,
			Label:             label,
		})
	}

	return selections, dropped
}

func findAxis(axes []woocommerce.Attribute, name string) (woocommerce.Attribute, bool) {
	for _, axis := range axes {
		if strings.EqualFold(axis.Name, name) {
			return axis, true
		}
	}
	return woocommerce.Attribute{}, false
}

func findValue(declared []string, selected string) (string, bool) {
	for _, value := range declared {
		if strings.EqualFold(value, selected) {
			return value, true
		}
	}
	return "", false
}
