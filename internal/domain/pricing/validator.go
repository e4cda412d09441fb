package pricing

import (
	"sort"
)

// Validate sorts a candidate list of slabs and checks that it tiles the positive
// integers: starts at 1, no gaps, no overlaps, only the last slab unbounded.
//
// The input slice is not modified. On success the returned RangeSet is a fresh,
// sorted copy; on failure the error is a *ValidationError.
func Validate(candidates []PriceRange) (RangeSet, error) {
	if len(candidates) == 0 {
		return nil, errEmptyInput()
	}

	ranges := RangeSet(candidates).Clone()
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].MinQuantity < ranges[j].MinQuantity
	})

	if ranges[0].MinQuantity != 1 {
		return nil, errInvalidFirstRange(ranges[0].MinQuantity)
	}

	for i, r := range ranges {
		if r.MinQuantity <= 0 {
			return nil, errInvalidBounds(i, "min quantity must be positive")
		}
		if !r.UnitPrice.IsPositive() {
			return nil, errInvalidBounds(i, "unit price must be positive")
		}
		if r.MaxQuantity != nil && *r.MaxQuantity < r.MinQuantity {
			return nil, errInvalidBounds(i, "max quantity must not be less than min quantity")
		}
	}

	for i := 0; i < len(ranges)-1; i++ {
		current, next := ranges[i], ranges[i+1]
		if current.MaxQuantity == nil {
			return nil, errMissingUpperBound(i)
		}
		expected := *current.MaxQuantity + 1
		if next.MinQuantity != expected {
			return nil, errGapDetected(i+1, expected, next.MinQuantity)
		}
	}

	last := len(ranges) - 1
	if ranges[last].MaxQuantity != nil {
		return nil, errTrailingRangeMustBeUnbounded(last)
	}

	return ranges, nil
}
