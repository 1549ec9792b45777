package woocommerce

// Typed DTOs for the WooCommerce REST v3 payloads the engine reads. Shapes
// are validated at the client boundary so bad source data surfaces as a
// ValidationError instead of propagating silently.

// ProductType is the source's four-way product classification
type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
	ProductTypeGrouped  ProductType = "grouped"
	ProductTypeExternal ProductType = "external"
)

// StockStatus is the source stock availability enum
type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)

// Dimensions carries physical size as decimal strings
type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// Image is one entry of a product's ordered image list
type Image struct {
	ID       int64  `json:"id"`
	Src      string `json:"src"`
	Name     string `json:"name"`
	Alt      string `json:"alt"`
	Position int    `json:"position"`
}

// CategoryRef is a product's reference to a category by id and name
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Attribute declares a named axis of product variation. Options are ordered;
// the Variation flag marks attributes that generate variants.
type Attribute struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// Product is one source catalog product
type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	SKU              string        `json:"sku"`
	Type             ProductType   `json:"type"`
	Status           string        `json:"status"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Virtual          bool          `json:"virtual"`
	Downloadable     bool          `json:"downloadable"`
	ShippingRequired bool          `json:"shipping_required"`
	Price            string        `json:"price"`
	RegularPrice     string        `json:"regular_price"`
	SalePrice        string        `json:"sale_price"`
	Weight           string        `json:"weight"`
	Dimensions       Dimensions    `json:"dimensions"`
	ManageStock      bool          `json:"manage_stock"`
	StockQuantity    *int          `json:"stock_quantity"`
	StockStatus      StockStatus   `json:"stock_status"`
	Images           []Image       `json:"images"`
	Categories       []CategoryRef `json:"categories"`
	Attributes       []Attribute   `json:"attributes"`
	DateModified     string        `json:"date_modified_gmt"`
}

// IsVariable reports whether the product carries purchasable variations
func (p *Product) IsVariable() bool {
	return p.Type == ProductTypeVariable
}

// VariationAttribute is one (attribute name, selected option) pair on a variation
type VariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// Variation belongs to exactly one variable product
type Variation struct {
	ID            int64                `json:"id"`
	SKU           string               `json:"sku"`
	Price         string               `json:"price"`
	RegularPrice  string               `json:"regular_price"`
	SalePrice     string               `json:"sale_price"`
	Weight        string               `json:"weight"`
	Dimensions    Dimensions           `json:"dimensions"`
	ManageStock   bool                 `json:"manage_stock"`
	StockQuantity *int                 `json:"stock_quantity"`
	StockStatus   StockStatus          `json:"stock_status"`
	Purchasable   bool                 `json:"purchasable"`
	Image         *Image               `json:"image"`
	Attributes    []VariationAttribute `json:"attributes"`
}

// Category is one node of the source category tree. Parent 0 means root.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int64  `json:"parent"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// CustomerAddress is a customer's billing or shipping address
type CustomerAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Customer is one source customer account
type Customer struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Username    string          `json:"username"`
	Billing     CustomerAddress `json:"billing"`
	Shipping    CustomerAddress `json:"shipping"`
	DateCreated string          `json:"date_created_gmt"`
}
