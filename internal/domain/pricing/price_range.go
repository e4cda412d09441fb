// Package pricing holds the quantity-tiered ("ladder") pricing model for catalog items.
//
// A ladder is a RangeSet: an ordered list of PriceRange slabs that tiles the positive
// integers, e.g. "1-9 pcs at 5.00, 10+ pcs at 4.00". Validate is the only gate between a
// candidate set (admin input, vendor import) and a set that may be persisted or priced
// against. All functions in this package are pure and safe for concurrent use.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceRange is a single slab of a ladder price schedule.
type PriceRange struct {
	// MinQuantity is the first quantity (inclusive) covered by this slab.
	MinQuantity int64 `json:"min_quantity"`
	// MaxQuantity is the last quantity (inclusive) covered by this slab.
	// nil means the slab is unbounded (open to infinity).
	MaxQuantity *int64 `json:"max_quantity"`
	// UnitPrice is the per-unit price applied to quantities in this slab.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// SortOrder records where the slab came from (input position). Not semantic.
	SortOrder int `json:"sort_order"`
}

// NewPriceRange creates a bounded slab covering [minQty, maxQty].
func NewPriceRange(minQty, maxQty int64, unitPrice decimal.Decimal) PriceRange {
	return PriceRange{
		MinQuantity: minQty,
		MaxQuantity: &maxQty,
		UnitPrice:   unitPrice,
	}
}

// NewUnboundedPriceRange creates an open-ended slab covering [minQty, +inf).
func NewUnboundedPriceRange(minQty int64, unitPrice decimal.Decimal) PriceRange {
	return PriceRange{
		MinQuantity: minQty,
		UnitPrice:   unitPrice,
	}
}

// IsUnbounded returns true if the slab has no upper bound
func (r PriceRange) IsUnbounded() bool {
	return r.MaxQuantity == nil
}

// Contains reports whether quantity falls inside the slab
func (r PriceRange) Contains(quantity int64) bool {
	if quantity < r.MinQuantity {
		return false
	}
	return r.MaxQuantity == nil || quantity <= *r.MaxQuantity
}

// WithMaxQuantity returns a copy of the slab with the given upper bound.
// The returned slab never aliases the receiver's MaxQuantity pointer.
func (r PriceRange) WithMaxQuantity(maxQty int64) PriceRange {
	r.MaxQuantity = &maxQty
	return r
}

// Label renders the quantity part of the slab, e.g. "1-9", "10+" or "1".
func (r PriceRange) Label() string {
	switch {
	case r.MaxQuantity == nil:
		return fmt.Sprintf("%d+", r.MinQuantity)
	case *r.MaxQuantity == r.MinQuantity:
		return fmt.Sprintf("%d", r.MinQuantity)
	default:
		return fmt.Sprintf("%d-%d", r.MinQuantity, *r.MaxQuantity)
	}
}

// Equal compares two slabs by bounds and price. SortOrder is ignored.
func (r PriceRange) Equal(other PriceRange) bool {
	if r.MinQuantity != other.MinQuantity || !r.UnitPrice.Equal(other.UnitPrice) {
		return false
	}
	if r.MaxQuantity == nil || other.MaxQuantity == nil {
		return r.MaxQuantity == nil && other.MaxQuantity == nil
	}
	return *r.MaxQuantity == *other.MaxQuantity
}

// RangeSet is an ordered sequence of slabs. A RangeSet returned by Validate
// satisfies every ladder invariant; any other RangeSet is only a candidate.
type RangeSet []PriceRange

// Len returns the number of slabs
func (rs RangeSet) Len() int {
	return len(rs)
}

// IsEmpty returns true if the set has no slabs
func (rs RangeSet) IsEmpty() bool {
	return len(rs) == 0
}

// Last returns the final slab. ok is false for an empty set.
func (rs RangeSet) Last() (PriceRange, bool) {
	if len(rs) == 0 {
		return PriceRange{}, false
	}
	return rs[len(rs)-1], true
}

// Clone returns a deep copy so callers can never share MaxQuantity pointers.
func (rs RangeSet) Clone() RangeSet {
	if rs == nil {
		return nil
	}
	out := make(RangeSet, len(rs))
	for i, r := range rs {
		if r.MaxQuantity != nil {
			r = r.WithMaxQuantity(*r.MaxQuantity)
		}
		out[i] = r
	}
	return out
}

// Equal compares two sets slab by slab
func (rs RangeSet) Equal(other RangeSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for i := range rs {
		if !rs[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
