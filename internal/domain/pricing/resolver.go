package pricing

import (
	"github.com/shopspring/decimal"
)

// ResolvePrice returns the unit price of the slab covering quantity.
//
// Slabs are scanned in order and the first match wins. For a set returned by
// Validate exactly one slab matches, so order does not matter; for an
// unvalidated set the tie-breaking is not a guarantee.
func ResolvePrice(rs RangeSet, quantity int64) (decimal.Decimal, error) {
	for _, r := range rs {
		if r.Contains(quantity) {
			return r.UnitPrice, nil
		}
	}
	return decimal.Zero, &PriceNotFoundError{Quantity: quantity}
}

// Quote is a priced quantity
type Quote struct {
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Range     PriceRange      `json:"range"`
}

// QuoteFor resolves the slab for quantity and computes the line total.
// Quote.Range is a copy and shares no memory with rs.
func QuoteFor(rs RangeSet, quantity int64) (Quote, error) {
	for _, r := range rs {
		if r.Contains(quantity) {
			if r.MaxQuantity != nil {
				r = r.WithMaxQuantity(*r.MaxQuantity)
			}
			return Quote{
				Quantity:  quantity,
				UnitPrice: r.UnitPrice,
				Total:     r.UnitPrice.Mul(decimal.NewFromInt(quantity)),
				Range:     r,
			}, nil
		}
	}
	return Quote{}, &PriceNotFoundError{Quantity: quantity}
}
