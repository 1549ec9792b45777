package bigcommerce

// Typed DTOs for the BigCommerce v3 catalog payloads the engine writes and
// the envelopes it reads back.

// ProductType is the destination's two-way product classification
type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeDigital  ProductType = "digital"
)

// InventoryTracking selects the destination stock tracking mode
type InventoryTracking string

const (
	TrackingNone    InventoryTracking = "none"
	TrackingProduct InventoryTracking = "product"
	TrackingVariant InventoryTracking = "variant"
)

// OptionType is the presentation type of an option's value picker
type OptionType string

const (
	OptionTypeSwatch    OptionType = "swatch"
	OptionTypeRectangle OptionType = "rectangles"
	OptionTypeDropdown  OptionType = "dropdown"
)

// OptionValue is one selectable value of an option
type OptionValue struct {
	Label     string `json:"label" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

// ProductOption is a named axis of variation with its ordered values
type ProductOption struct {
	DisplayName  string        `json:"display_name" validate:"required"`
	Type         OptionType    `json:"type" validate:"required"`
	SortOrder    int           `json:"sort_order"`
	OptionValues []OptionValue `json:"option_values" validate:"min=1,dive"`
}

// VariantOptionValue links a variant to one value of one option, resolved by
// display name and label
type VariantOptionValue struct {
	OptionDisplayName string `json:"option_display_name" validate:"required"`
	Label             string `json:"label" validate:"required"`
}

// Variant is one purchasable combination of option values
type Variant struct {
	ID                        int64                `json:"id,omitempty"`
	SKU                       string               `json:"sku" validate:"required"`
	Price                     float64              `json:"price,omitempty"`
	Weight                    float64              `json:"weight,omitempty"`
	InventoryLevel            int                  `json:"inventory_level"`
	PurchasingDisabled        bool                 `json:"purchasing_disabled"`
	PurchasingDisabledMessage string               `json:"purchasing_disabled_message,omitempty"`
	ImageURL                  string               `json:"image_url,omitempty"`
	OptionValues              []VariantOptionValue `json:"option_values" validate:"dive"`
}

// ProductImage is one entry of the product's ordered image list
type ProductImage struct {
	ImageURL    string `json:"image_url" validate:"required,url"`
	IsThumbnail bool   `json:"is_thumbnail"`
	SortOrder   int    `json:"sort_order"`
	Description string `json:"description,omitempty"`
}

// ProductCreate is the create payload for one destination product, embedding
// options and variants in a single request
type ProductCreate struct {
	Name              string            `json:"name" validate:"required"`
	Type              ProductType       `json:"type" validate:"required,oneof=physical digital"`
	SKU               string            `json:"sku" validate:"required"`
	Description       string            `json:"description,omitempty"`
	Weight            float64           `json:"weight"`
	Price             float64           `json:"price"`
	SalePrice         float64           `json:"sale_price,omitempty"`
	Categories        []int64           `json:"categories,omitempty"`
	InventoryTracking InventoryTracking `json:"inventory_tracking"`
	InventoryLevel    int               `json:"inventory_level,omitempty"`
	IsVisible         bool              `json:"is_visible"`
	Images            []ProductImage    `json:"images,omitempty"`
	Options           []ProductOption   `json:"options,omitempty" validate:"dive"`
	Variants          []Variant         `json:"variants,omitempty" validate:"dive"`
}

// Product is a destination product as returned by the API
type Product struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// CategoryCreate is the create payload for one destination category
type CategoryCreate struct {
	Name        string `json:"name" validate:"required"`
	ParentID    int64  `json:"parent_id"`
	Description string `json:"description,omitempty"`
	IsVisible   bool   `json:"is_visible"`
}

// Category is a destination category as returned by the API
type Category struct {
	ID       int64  `json:"id" validate:"required"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id"`
}

// CustomerAddress is one address on a customer create payload
type CustomerAddress struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Company         string `json:"company,omitempty"`
	Address1        string `json:"address1"`
	Address2        string `json:"address2,omitempty"`
	City            string `json:"city"`
	StateOrProvince string `json:"state_or_province"`
	PostalCode      string `json:"postal_code"`
	CountryCode     string `json:"country_code"`
	Phone           string `json:"phone,omitempty"`
}

// CustomerCreate is one entry of the list-wrapped customer create payload
type CustomerCreate struct {
	Email     string            `json:"email" validate:"required,email"`
	FirstName string            `json:"first_name" validate:"required"`
	LastName  string            `json:"last_name" validate:"required"`
	Company   string            `json:"company,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Addresses []CustomerAddress `json:"addresses,omitempty"`
}

// Customer is a destination customer as returned by the API
type Customer struct {
	ID    int64  `json:"id" validate:"required"`
	Email string `json:"email"`
}

// envelope is the {data, meta} wrapper every v3 response uses
type envelope[T any] struct {
	Data T    `json:"data"`
	Meta meta `json:"meta"`
}

type meta struct {
	Pagination struct {
		Total       int `json:"total"`
		Count       int `json:"count"`
		PerPage     int `json:"per_page"`
		CurrentPage int `json:"current_page"`
		TotalPages  int `json:"total_pages"`
	} `json:"pagination"`
}
