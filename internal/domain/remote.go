package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartRecord mirrors one row of the remote cart_items table. The record id is
// shared with the local line-item id so feed events can be matched by
// identity.
type CartRecord struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Color         string          `json:"selected_color"`
	Handle        string          `json:"selected_handle"`
	CustomLabel   string          `json:"custom_name"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Item converts the remote record into its local line-item form.
func (r CartRecord) Item() LineItem {
	return LineItem{
		ID: r.ID,
		Product: ProductSnapshot{
			ProductID:     r.ProductID,
			Name:          r.ProductName,
			Price:         r.Price,
			OriginalPrice: r.OriginalPrice,
			ImageURL:      r.ImageURL,
		},
		Quantity:    r.Quantity,
		Color:       r.Color,
		Handle:      r.Handle,
		CustomLabel: r.CustomLabel,
	}
}

// NewRecord builds the remote row for a local line item, reusing the item id.
func NewRecord(userID string, it LineItem) CartRecord {
	return CartRecord{
		ID:            it.ID,
		UserID:        userID,
		ProductID:     it.Product.ProductID,
		Quantity:      it.Quantity,
		Color:         it.Color,
		Handle:        it.Handle,
		CustomLabel:   it.CustomLabel,
		ProductName:   it.Product.Name,
		Price:         it.Product.Price,
		OriginalPrice: it.Product.OriginalPrice,
		ImageURL:      it.Product.ImageURL,
	}
}

type FeedEventType string

const (
	FeedInsert FeedEventType = "insert"
	FeedUpdate FeedEventType = "update"
	FeedDelete FeedEventType = "delete"
)

// FeedEvent is one server-pushed change to the user's cart rows. Origin tags
// the session that caused the write when the transport carries it; events
// from this session are safe to re-apply either way.
type FeedEvent struct {
	Type   FeedEventType `json:"type"`
	New    *CartRecord   `json:"new,omitempty"`
	Old    *CartRecord   `json:"old,omitempty"`
	Origin string        `json:"origin,omitempty"`
}
