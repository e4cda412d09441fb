package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(v int64) *int64 {
	return &v
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireValidationError(t *testing.T, err error, kind ValidationErrorKind) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	assert.Equal(t, kind, verr.Kind)
	assert.NotEmpty(t, verr.Message)
	return verr
}

func TestValidate_ValidSet(t *testing.T) {
	candidates := []PriceRange{
		{MinQuantity: 1, MaxQuantity: qty(9), UnitPrice: price("5")},
		{MinQuantity: 10, UnitPrice: price("4")},
	}

	rs, err := Validate(candidates)

	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, int64(1), rs[0].MinQuantity)
	assert.Equal(t, int64(9), *rs[0].MaxQuantity)
	assert.True(t, rs[1].IsUnbounded())
}

func TestValidate_SortsUnorderedInput(t *testing.T) {
	candidates := []PriceRange{
		{MinQuantity: 100, UnitPrice: price("3.50"), SortOrder: 0},
		{MinQuantity: 1, MaxQuantity: qty(9), UnitPrice: price("5.00"), SortOrder: 1},
		{MinQuantity: 10, MaxQuantity: qty(99), UnitPrice: price("4.25"), SortOrder: 2},
	}

	rs, err := Validate(candidates)

	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, []int64{1, 10, 100}, []int64{rs[0].MinQuantity, rs[1].MinQuantity, rs[2].MinQuantity})
	assert.Equal(t, 1, rs[0].SortOrder, "sort order is carried through as provenance")

	// caller's slice is left untouched
	assert.Equal(t, int64(100), candidates[0].MinQuantity)
}

func TestValidate_DoesNotAliasInput(t *testing.T) {
	candidates := []PriceRange{
		{MinQuantity: 1, MaxQuantity: qty(4), UnitPrice: price("2")},
		{MinQuantity: 5, UnitPrice: price("1")},
	}

	rs, err := Validate(candidates)
	require.NoError(t, err)

	*candidates[0].MaxQuantity = 99
	assert.Equal(t, int64(4), *rs[0].MaxQuantity)
}

func TestValidate_Idempotent(t *testing.T) {
	candidates := []PriceRange{
		{MinQuantity: 1, MaxQuantity: qty(1), UnitPrice: price("2.5")},
		{MinQuantity: 2, MaxQuantity: qty(49), UnitPrice: price("2.2")},
		{MinQuantity: 50, UnitPrice: price("2")},
	}

	first, err := Validate(candidates)
	require.NoError(t, err)
	second, err := Validate(first)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		candidates  []PriceRange
		kind        ValidationErrorKind
		index       int
		expectedMin int64
		actualMin   int64
	}{
		{
			name:       "empty input",
			candidates: nil,
			kind:       KindEmptyInput,
			index:      -1,
		},
		{
			name: "first range does not start at one",
			candidates: []PriceRange{
				{MinQuantity: 2, UnitPrice: price("5")},
			},
			kind:        KindInvalidFirstRange,
			index:       0,
			expectedMin: 1,
			actualMin:   2,
		},
		{
			name: "zero first range",
			candidates: []PriceRange{
				{MinQuantity: 0, MaxQuantity: qty(5), UnitPrice: price("5")},
				{MinQuantity: 6, UnitPrice: price("4")},
			},
			kind:        KindInvalidFirstRange,
			index:       0,
			expectedMin: 1,
			actualMin:   0,
		},
		{
			name: "zero price",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(5), UnitPrice: price("5")},
				{MinQuantity: 6, UnitPrice: decimal.Zero},
			},
			kind:  KindInvalidBounds,
			index: 1,
		},
		{
			name: "negative price",
			candidates: []PriceRange{
				{MinQuantity: 1, UnitPrice: price("-1")},
			},
			kind:  KindInvalidBounds,
			index: 0,
		},
		{
			name: "max below min",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(5), UnitPrice: price("5")},
				{MinQuantity: 6, MaxQuantity: qty(3), UnitPrice: price("4")},
				{MinQuantity: 7, UnitPrice: price("3")},
			},
			kind:  KindInvalidBounds,
			index: 1,
		},
		{
			name: "unbounded range in the middle",
			candidates: []PriceRange{
				{MinQuantity: 1, UnitPrice: price("5")},
				{MinQuantity: 10, UnitPrice: price("4")},
			},
			kind:  KindMissingUpperBound,
			index: 0,
		},
		{
			name: "gap between ranges",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(5), UnitPrice: price("5")},
				{MinQuantity: 7, UnitPrice: price("4")},
			},
			kind:        KindGapDetected,
			index:       1,
			expectedMin: 6,
			actualMin:   7,
		},
		{
			name: "overlapping ranges",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(10), UnitPrice: price("5")},
				{MinQuantity: 8, UnitPrice: price("4")},
			},
			kind:        KindGapDetected,
			index:       1,
			expectedMin: 11,
			actualMin:   8,
		},
		{
			name: "duplicate min quantity",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(1), UnitPrice: price("5")},
				{MinQuantity: 1, UnitPrice: price("4")},
			},
			kind:        KindGapDetected,
			index:       1,
			expectedMin: 2,
			actualMin:   1,
		},
		{
			name: "last range bounded",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(9), UnitPrice: price("5")},
				{MinQuantity: 10, MaxQuantity: qty(99), UnitPrice: price("4")},
			},
			kind:  KindTrailingRangeMustBeUnbounded,
			index: 1,
		},
		{
			name: "single bounded range",
			candidates: []PriceRange{
				{MinQuantity: 1, MaxQuantity: qty(1), UnitPrice: price("5")},
			},
			kind:  KindTrailingRangeMustBeUnbounded,
			index: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Validate(tt.candidates)

			assert.Nil(t, rs)
			verr := requireValidationError(t, err, tt.kind)
			assert.Equal(t, tt.index, verr.Index)
			assert.Equal(t, tt.expectedMin, verr.ExpectedMin)
			assert.Equal(t, tt.actualMin, verr.ActualMin)
			assert.Equal(t, string(tt.kind), verr.Code())
		})
	}
}

func TestValidationError_ToDomainError(t *testing.T) {
	_, err := Validate([]PriceRange{
		{MinQuantity: 1, MaxQuantity: qty(5), UnitPrice: price("5")},
		{MinQuantity: 7, UnitPrice: price("4")},
	})
	verr := requireValidationError(t, err, KindGapDetected)

	de := verr.ToDomainError()
	assert.Equal(t, "GAP_DETECTED", de.Code)
	assert.Equal(t, "price range 1 must start at quantity 6, got 7", de.Message)
}
