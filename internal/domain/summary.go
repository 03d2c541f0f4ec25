package domain

import "github.com/shopspring/decimal"

var (
	shippingFee       = decimal.NewFromInt(15)
	freeShippingAbove = decimal.NewFromInt(200)
	taxRate           = decimal.NewFromFloat(0.08)
)

// Summary is derived from the full item set and never mutated independently.
type Summary struct {
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// Summarize recomputes the cart summary from scratch. Shipping is a flat fee
// waived once the subtotal reaches the free-shipping threshold; tax is a flat
// percentage of the subtotal.
func Summarize(items []LineItem) Summary {
	s := Summary{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Shipping: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		s.TotalItems += it.Quantity
		s.Subtotal = s.Subtotal.Add(it.Product.Price.Mul(qty))
		if it.Product.OriginalPrice.GreaterThan(it.Product.Price) {
			delta := it.Product.OriginalPrice.Sub(it.Product.Price)
			s.Discount = s.Discount.Add(delta.Mul(qty))
		}
	}

	if s.Subtotal.GreaterThan(decimal.Zero) && s.Subtotal.LessThan(freeShippingAbove) {
		s.Shipping = shippingFee
	}
	s.Tax = s.Subtotal.Mul(taxRate)
	s.Total = s.Subtotal.Add(s.Shipping).Add(s.Tax)
	return s
}
