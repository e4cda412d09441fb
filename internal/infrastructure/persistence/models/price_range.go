package models

import (
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRangeModel is the persistence model for one slab of a product ladder.
// A product's ladder is the set of rows sharing (tenant_id, product_id).
type PriceRangeModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_range_product,priority:1"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_range_product,priority:2"`
	MinQuantity int64           `gorm:"not null;index:idx_price_range_product,priority:3"`
	MaxQuantity *int64
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (PriceRangeModel) TableName() string {
	return "product_price_ranges"
}

// ToDomain converts the persistence model to a domain PriceRange.
func (m *PriceRangeModel) ToDomain() pricing.PriceRange {
	r := pricing.PriceRange{
		MinQuantity: m.MinQuantity,
		UnitPrice:   m.UnitPrice,
		SortOrder:   m.SortOrder,
	}
	if m.MaxQuantity != nil {
		r = r.WithMaxQuantity(*m.MaxQuantity)
	}
	return r
}

// FromDomain populates the persistence model from a domain PriceRange.
// ID and CreatedAt are left to the caller.
func (m *PriceRangeModel) FromDomain(tenantID, productID uuid.UUID, r pricing.PriceRange) {
	m.TenantID = tenantID
	m.ProductID = productID
	m.MinQuantity = r.MinQuantity
	m.MaxQuantity = nil
	if r.MaxQuantity != nil {
		maxQty := *r.MaxQuantity
		m.MaxQuantity = &maxQty
	}
	m.UnitPrice = r.UnitPrice
	m.SortOrder = r.SortOrder
}

// PriceRangeModelsFromDomain creates one row per slab with fresh IDs.
func PriceRangeModelsFromDomain(tenantID, productID uuid.UUID, rs pricing.RangeSet) []PriceRangeModel {
	out := make([]PriceRangeModel, len(rs))
	for i, r := range rs {
		out[i].ID = uuid.New()
		out[i].FromDomain(tenantID, productID, r)
	}
	return out
}

// RangeSetFromModels converts rows back into a RangeSet in row order.
func RangeSetFromModels(rows []PriceRangeModel) pricing.RangeSet {
	rs := make(pricing.RangeSet, len(rows))
	for i := range rows {
		rs[i] = rows[i].ToDomain()
	}
	return rs
}
