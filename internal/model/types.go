// Package model defines the domain types persisted and served by the service.
package model

// Product is a single catalog entry. The JSON field set matches the persisted
// catalog document and must stay stable.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// ProductPatch is a partial product update. A nil field was not supplied.
// A supplied field only replaces the stored value when it is non-zero;
// Thumbnails is the exception and replaces whenever present, empty or not.
type ProductPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Code        *string   `json:"code"`
	Price       *float64  `json:"price"`
	Status      *bool     `json:"status"`
	Stock       *int      `json:"stock"`
	Category    *string   `json:"category"`
	Thumbnails  *[]string `json:"thumbnails"`
}

// LineItem is a product reference plus quantity inside a cart. The persisted
// key for the product id is "product", inherited from the existing cart
// document format.
type LineItem struct {
	ProductID int `json:"product"`
	Quantity  int `json:"quantity"`
}

// Cart is an ordered list of line items.
type Cart struct {
	ID       int        `json:"id"`
	Products []LineItem `json:"products"`
}
