package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(productID int64, price string, qty int) LineItem {
	return LineItem{
		ID: "it-1",
		Product: ProductSnapshot{
			ProductID:     productID,
			Name:          "bead bracelet",
			Price:         decimal.RequireFromString(price),
			OriginalPrice: decimal.RequireFromString(price),
		},
		Quantity: qty,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalItems)
	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.Shipping.IsZero(), "empty cart pays no shipping")
	assert.True(t, s.Total.IsZero())
}

func TestSummarizeTotals(t *testing.T) {
	items := []LineItem{
		item(1, "25.50", 2), // 51.00
		item(2, "10", 3),    // 30.00
	}

	s := Summarize(items)

	assert.Equal(t, 5, s.TotalItems)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("81")), "subtotal = %s", s.Subtotal)
	assert.True(t, s.Shipping.Equal(decimal.NewFromInt(15)))
	assert.True(t, s.Tax.Equal(decimal.RequireFromString("6.48")), "tax = %s", s.Tax)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("102.48")), "total = %s", s.Total)
}

func TestSummarizeShippingWaived(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		qty      int
		shipping string
	}{
		{"below threshold", "100", 1, "15"},
		{"just below threshold", "199.99", 1, "15"},
		{"at threshold", "200", 1, "0"},
		{"above threshold", "250", 1, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize([]LineItem{item(7, tt.subtotal, tt.qty)})
			assert.True(t, s.Shipping.Equal(decimal.RequireFromString(tt.shipping)),
				"shipping = %s", s.Shipping)
			// tax stays 8% of subtotal regardless of the shipping waiver
			assert.True(t, s.Tax.Equal(s.Subtotal.Mul(decimal.RequireFromString("0.08"))))
		})
	}
}

func TestSummarizeDiscount(t *testing.T) {
	it := item(3, "40", 2)
	it.Product.OriginalPrice = decimal.RequireFromString("50")

	s := Summarize([]LineItem{it})

	assert.True(t, s.Discount.Equal(decimal.NewFromInt(20)), "discount = %s", s.Discount)
	// subtotal uses the captured price, not the original price
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(80)))
}

func TestRecordItemRoundTrip(t *testing.T) {
	it := item(9, "12.75", 4)
	it.Color = "teal"
	it.CustomLabel = "for mona"

	rec := NewRecord("user-1", it)
	require.Equal(t, it.ID, rec.ID)
	require.Equal(t, "user-1", rec.UserID)

	back := rec.Item()
	assert.Equal(t, it.Key(), back.Key())
	assert.Equal(t, it.Quantity, back.Quantity)
	assert.True(t, it.Product.Price.Equal(back.Product.Price))
}
