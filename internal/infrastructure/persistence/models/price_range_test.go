package models

import (
	"testing"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRangeModel_TableName(t *testing.T) {
	assert.Equal(t, "product_price_ranges", PriceRangeModel{}.TableName())
}

func TestPriceRangeModel_RoundTrip(t *testing.T) {
	tenantID, productID := uuid.New(), uuid.New()
	rs := pricing.RangeSet{
		pricing.NewPriceRange(1, 9, decimal.RequireFromString("5.00")),
		pricing.NewUnboundedPriceRange(10, decimal.RequireFromString("4.25")),
	}
	rs[1].SortOrder = 1

	rows := PriceRangeModelsFromDomain(tenantID, productID, rs)
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	assert.Equal(t, tenantID, rows[0].TenantID)
	assert.Equal(t, productID, rows[1].ProductID)
	assert.Nil(t, rows[1].MaxQuantity)

	*rs[0].MaxQuantity = 100
	assert.Equal(t, int64(9), *rows[0].MaxQuantity, "model must not alias the domain bound")

	back := RangeSetFromModels(rows)
	assert.Equal(t, "1-9", back[0].Label())
	assert.Equal(t, "10+", back[1].Label())
	assert.Equal(t, 1, back[1].SortOrder)
	assert.True(t, back[1].UnitPrice.Equal(decimal.RequireFromString("4.25")))
}
