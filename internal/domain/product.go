package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. The cart never references it directly; adding
// to cart captures a ProductSnapshot copy.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	ImageURL      string          `json:"image_url"`
	Colors        []string        `json:"colors"`
	Handles       []string        `json:"handles"`
	InStock       bool            `json:"in_stock"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Snapshot captures the priced fields the cart owns by copy.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		ImageURL:      p.ImageURL,
	}
}
