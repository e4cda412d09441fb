package vendortext

import (
	"testing"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wantRange struct {
	min   int64
	max   int64 // 0 means unbounded
	price string
}

func assertRanges(t *testing.T, want []wantRange, got pricing.RangeSet) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.min, got[i].MinQuantity, "range %d min", i)
		if w.max == 0 {
			assert.Nil(t, got[i].MaxQuantity, "range %d should be unbounded", i)
		} else if assert.NotNil(t, got[i].MaxQuantity, "range %d max", i) {
			assert.Equal(t, w.max, *got[i].MaxQuantity, "range %d max", i)
		}
		assert.True(t, decimal.RequireFromString(w.price).Equal(got[i].UnitPrice),
			"range %d price: want %s, got %s", i, w.price, got[i].UnitPrice)
	}
}

func TestParser_Parse(t *testing.T) {
	p := NewParser()

	t.Run("glued marketplace ladder", func(t *testing.T) {
		rs := p.Parse("20 - 999 pieces$0.251000 - 9999 pieces$0.24>= 10000 pieces$0.23")

		assertRanges(t, []wantRange{
			{20, 999, "0.25"},
			{1000, 9999, "0.24"},
			{10000, 0, "0.23"},
		}, rs)
	})

	t.Run("empty input", func(t *testing.T) {
		rs := p.Parse("")
		assert.NotNil(t, rs)
		assert.Empty(t, rs)
	})

	t.Run("text without slabs", func(t *testing.T) {
		assert.Empty(t, p.Parse("Free shipping on all orders"))
	})

	t.Run("full-width characters", func(t *testing.T) {
		rs := p.Parse("１－９ pieces＄５．００≥ １０ pieces ＄４．５０")

		assertRanges(t, []wantRange{
			{1, 9, "5.00"},
			{10, 0, "4.50"},
		}, rs)
	})

	t.Run("thousands separators", func(t *testing.T) {
		rs := p.Parse("1 - 999 pcs$1.20>= 1,000 pcs$0.95")

		assertRanges(t, []wantRange{
			{1, 999, "1.20"},
			{1000, 0, "0.95"},
		}, rs)
	})

	t.Run("singletons are stretched to the next slab", func(t *testing.T) {
		rs := p.Parse("1 piece$5.0010 pieces$4.50>= 100 pieces$4.00")

		assertRanges(t, []wantRange{
			{1, 9, "5.00"},
			{10, 99, "4.50"},
			{100, 0, "4.00"},
		}, rs)
	})

	t.Run("short upper bound is widened", func(t *testing.T) {
		rs := p.Parse("1 - 5 pcs$2.0010 - 49 pcs$1.80>= 50 pcs$1.50")

		assertRanges(t, []wantRange{
			{1, 9, "2.00"},
			{10, 49, "1.80"},
			{50, 0, "1.50"},
		}, rs)
	})

	t.Run("out of order slabs are sorted", func(t *testing.T) {
		rs := p.Parse(">= 100 pcs $1.00 1 - 99 pcs $2.00")

		assertRanges(t, []wantRange{
			{1, 99, "2.00"},
			{100, 0, "1.00"},
		}, rs)
		assert.Equal(t, 1, rs[0].SortOrder)
		assert.Equal(t, 0, rs[1].SortOrder)
	})

	t.Run("noise between unit and price", func(t *testing.T) {
		for _, in := range []string{
			"1 - 9 pieces: $5.00>= 10 pieces: $4.00",
			"1 - 9 pieces US$5.00>= 10 pieces US$4.00",
		} {
			rs, report := p.ParseWithReport(in)

			assertRanges(t, []wantRange{
				{1, 9, "5.00"},
				{10, 0, "4.00"},
			}, rs)
			assert.Empty(t, report.Dropped, in)
		}
	})

	t.Run("unit followed by a new slab has no price", func(t *testing.T) {
		rs, report := p.ParseWithReport("1 - 9 pieces: 10 - 99 pieces$4.00>= 100 pieces$3.00")

		assertRanges(t, []wantRange{
			{10, 99, "4.00"},
			{100, 0, "3.00"},
		}, rs)
		require.Len(t, report.Dropped, 1)
		assert.Equal(t, DroppedSegment{Text: "1 - 9 pieces:", Reason: DropMissingPrice}, report.Dropped[0])
	})

	t.Run("fractional quantity is dropped", func(t *testing.T) {
		rs := p.Parse("1.5 - 9 pcs$2.00>= 10 pcs$1.00")

		assertRanges(t, []wantRange{
			{10, 0, "1.00"},
		}, rs)
	})
}

func TestParser_ParseResultValidates(t *testing.T) {
	p := NewParser()

	inputs := []string{
		"20 - 999 pieces$0.251000 - 9999 pieces$0.24>= 10000 pieces$0.23",
		"1 piece$5.0010 pieces$4.50>= 100 pieces$4.00",
		"1 - 5 pcs$2.0010 - 49 pcs$1.80>= 50 pcs$1.50",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := pricing.Validate(p.Parse(in))
			// the first input starts at 20, which the validator rejects
			if in == inputs[0] {
				var verr *pricing.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, pricing.KindInvalidFirstRange, verr.Kind)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParser_ParseWithReport(t *testing.T) {
	p := NewParser()

	t.Run("segments", func(t *testing.T) {
		rs, report := p.ParseWithReport("20 - 999 pieces$0.251000 - 9999 pieces$0.24>= 10000 pieces$0.23")

		require.Len(t, report.Segments, 3)
		assert.Equal(t, ShapeBounded, report.Segments[0].Shape)
		assert.Equal(t, "20 - 999 pieces$0.25", report.Segments[0].Text)
		assert.Equal(t, ShapeBounded, report.Segments[1].Shape)
		assert.Equal(t, "1000 - 9999 pieces$0.24", report.Segments[1].Text)
		assert.Equal(t, ShapeUnbounded, report.Segments[2].Shape)
		assert.Equal(t, ">= 10000 pieces$0.23", report.Segments[2].Text)
		assert.Empty(t, report.Dropped)
		assert.False(t, report.HasRepairs())
		assert.True(t, rs.Equal(p.Parse("20 - 999 pieces$0.251000 - 9999 pieces$0.24>= 10000 pieces$0.23")))
	})

	t.Run("repairs", func(t *testing.T) {
		_, report := p.ParseWithReport("1 piece$5.001 - 5 pcs$4.8010 - 49 pcs$4.50>= 50 pcs$4.00")

		// "1 piece" and "1 - 5" share a start, so neither is touched
		require.Len(t, report.Repairs, 1)
		assert.Equal(t, RepairWidenedUpperBound, report.Repairs[0].Kind)
		assert.Equal(t, 1, report.Repairs[0].SortOrder)
		require.NotNil(t, report.Repairs[0].From)
		assert.Equal(t, int64(5), *report.Repairs[0].From)
		assert.Equal(t, int64(9), report.Repairs[0].To)
	})

	t.Run("upper bound below its own start is widened", func(t *testing.T) {
		rs, report := p.ParseWithReport("1 - 9 pieces$5.00 10 - 2 pieces$4.00>= 20 pieces$3.00")

		assertRanges(t, []wantRange{
			{1, 9, "5.00"},
			{10, 19, "4.00"},
			{20, 0, "3.00"},
		}, rs)
		require.Len(t, report.Repairs, 1)
		assert.Equal(t, RepairWidenedUpperBound, report.Repairs[0].Kind)
		assert.Equal(t, 1, report.Repairs[0].SortOrder)
		require.NotNil(t, report.Repairs[0].From)
		assert.Equal(t, int64(2), *report.Repairs[0].From)
		assert.Equal(t, int64(19), report.Repairs[0].To)

		_, err := pricing.Validate(rs)
		assert.NoError(t, err)
	})

	t.Run("filled upper bound has no previous value", func(t *testing.T) {
		_, report := p.ParseWithReport("1 piece$5.0010 pieces$4.50")

		require.Len(t, report.Repairs, 1)
		assert.Equal(t, RepairFilledUpperBound, report.Repairs[0].Kind)
		assert.Nil(t, report.Repairs[0].From)
		assert.Equal(t, int64(9), report.Repairs[0].To)
	})

	t.Run("dropped segments", func(t *testing.T) {
		rs, report := p.ParseWithReport("Ships in 3 days. 1 - 9 pieces$5.00>= 10 pieces")

		assertRanges(t, []wantRange{{1, 9, "5.00"}}, rs)
		require.Len(t, report.Dropped, 2)
		assert.Equal(t, DroppedSegment{Text: "3", Reason: DropUnexpectedFormat}, report.Dropped[0])
		assert.Equal(t, DroppedSegment{Text: ">= 10 pieces", Reason: DropMissingPrice}, report.Dropped[1])
	})

	t.Run("incomplete trailing slab", func(t *testing.T) {
		_, report := p.ParseWithReport("1 - 9 pieces$5.00 10 -")

		require.Len(t, report.Dropped, 1)
		assert.Equal(t, DropIncompleteSlab, report.Dropped[0].Reason)
		assert.Equal(t, "10 -", report.Dropped[0].Text)
	})
}

func TestParser_WithPriceScale(t *testing.T) {
	p := NewParser(WithPriceScale(3))
	assert.Equal(t, 3, p.Scale())

	rs := p.Parse("1 - 9 pcs$0.12510 - 99 pcs$0.110>= 100 pcs$0.100")

	assertRanges(t, []wantRange{
		{1, 9, "0.125"},
		{10, 99, "0.110"},
		{100, 0, "0.100"},
	}, rs)
}

func TestNewParser_IgnoresNonPositiveScale(t *testing.T) {
	assert.Equal(t, DefaultPriceScale, NewParser(WithPriceScale(0)).Scale())
	assert.Equal(t, DefaultPriceScale, NewParser(WithPriceScale(-1)).Scale())
}

func TestExtractFirstPrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"marketplace ladder", "20 - 999 pieces$0.251000 - 9999 pieces$0.24>= 10000 pieces$0.23", "0.25"},
		{"empty", "", "0"},
		{"no digits", "contact seller", "0"},
		{"price preferred over quantity", "10 pieces $0.30", "0.30"},
		{"space after dollar", "$ 3.99 each", "3.99"},
		{"bare number fallback", "Price: 12.5 USD", "12.5"},
		{"full width", "＄１．２０", "1.20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFirstPrice(tt.raw)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParse_PackageLevel(t *testing.T) {
	rs := Parse("1 - 9 pcs$2.00>= 10 pcs$1.50")
	assertRanges(t, []wantRange{{1, 9, "2.00"}, {10, 0, "1.50"}}, rs)
}
