package pricing

import (
	"fmt"
	"strings"
)

// segmentSeparator joins formatted slabs
const segmentSeparator = "; "

// Format renders a ladder for display, e.g. "1 pc: $2.50; 2+ pcs: $2.00".
// Slabs are rendered in the given order; callers pass a validated (sorted) set.
func Format(rs RangeSet, currencySymbol string) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, formatRange(r, currencySymbol))
	}
	return strings.Join(parts, segmentSeparator)
}

func formatRange(r PriceRange, sym string) string {
	price := r.UnitPrice.StringFixed(2)
	switch {
	case r.MaxQuantity == nil:
		return fmt.Sprintf("%d+ pcs: %s%s", r.MinQuantity, sym, price)
	case *r.MaxQuantity == r.MinQuantity:
		return fmt.Sprintf("%d pc: %s%s", r.MinQuantity, sym, price)
	default:
		return fmt.Sprintf("%d-%d pcs: %s%s", r.MinQuantity, *r.MaxQuantity, sym, price)
	}
}
