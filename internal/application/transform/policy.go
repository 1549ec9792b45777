package transform

import (
	"strings"

	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/bigcommerce"
)

// Policy holds the tunable mapping decisions of the transformer. Defaults
// reproduce the source platform's observable behavior; callers override
// individual knobs where a store needs different choices.
type Policy struct {
	// SKUPrefix is prepended to the source id when synthesizing a blank SKU
	SKUPrefix string

	// DefaultWeight replaces a zero weight on physical products
	DefaultWeight float64

	// MaxVariants caps how many variants one product may carry
	MaxVariants int

	// StrictSelections excludes a variant entirely when one of its
	// attribute/option pairs cannot be resolved. The default keeps the
	// variant with the unresolvable pairing dropped.
	StrictSelections bool

	// OptionTypes overrides the presentation-type heuristic per attribute
	// name (case-insensitive)
	OptionTypes map[string]bigcommerce.OptionType
}

// DefaultPolicy returns the mapping decisions used unless overridden
func DefaultPolicy() Policy {
	return Policy{
		SKUPrefix:     "WC-",
		DefaultWeight: 1,
		MaxVariants:   600,
	}
}

// OptionTypeFor picks a presentation type for an attribute name. The
// heuristic is display-only and never blocks migration: color-like names get
// a swatch, size-like names get rectangles, everything else a dropdown.
func (p Policy) OptionTypeFor(attributeName string) bigcommerce.OptionType {
	name := strings.ToLower(strings.TrimSpace(attributeName))

	if override, ok := p.OptionTypes[name]; ok {
		return override
	}

	switch {
	case strings.Contains(name, "color"), strings.Contains(name, "colour"):
		return bigcommerce.OptionTypeSwatch
	case strings.Contains(name, "size"):
		return bigcommerce.OptionTypeRectangle
	default:
		return bigcommerce.OptionTypeDropdown
	}
}
