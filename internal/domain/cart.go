package domain

import (
	"github.com/shopspring/decimal"
)

// ProductSnapshot is the slice of a catalog product a cart line item owns by
// copy. Price is captured at add time and never re-read from the catalog.
type ProductSnapshot struct {
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	ImageURL      string          `json:"image_url"`
}

// LineItem is one cart entry: a product snapshot plus chosen customization
// and quantity. Quantity is always >= 1; an item at quantity 0 is removed,
// never stored.
type LineItem struct {
	ID          string          `json:"id"`
	Product     ProductSnapshot `json:"product"`
	Quantity    int             `json:"quantity"`
	Color       string          `json:"color,omitempty"`
	Handle      string          `json:"handle,omitempty"`
	CustomLabel string          `json:"custom_label,omitempty"`
}

// VariantKey is the tuple that identifies a cart variant. Adding the same
// tuple twice merges into one line item instead of duplicating.
type VariantKey struct {
	ProductID   int64
	Color       string
	Handle      string
	CustomLabel string
}

func (it LineItem) Key() VariantKey {
	return VariantKey{
		ProductID:   it.Product.ProductID,
		Color:       it.Color,
		Handle:      it.Handle,
		CustomLabel: it.CustomLabel,
	}
}
