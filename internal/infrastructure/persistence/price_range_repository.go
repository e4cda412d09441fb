package persistence

import (
	"context"
	"fmt"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPriceRangeRepository implements pricing.Repository using GORM
type GormPriceRangeRepository struct {
	db *gorm.DB
}

// NewGormPriceRangeRepository creates a new GormPriceRangeRepository
func NewGormPriceRangeRepository(db *gorm.DB) *GormPriceRangeRepository {
	return &GormPriceRangeRepository{db: db}
}

var _ pricing.Repository = (*GormPriceRangeRepository)(nil)

// LoadRanges returns the ladder of a product ordered by min quantity.
// A product without a ladder yields an empty set.
func (r *GormPriceRangeRepository) LoadRanges(ctx context.Context, tenantID, productID uuid.UUID) (pricing.RangeSet, error) {
	var rows []models.PriceRangeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("min_quantity ASC, sort_order ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load price ranges: %w", err)
	}
	return models.RangeSetFromModels(rows), nil
}

// ReplaceRanges deletes every stored slab of the product and inserts rs in one transaction.
// An empty rs clears the ladder.
func (r *GormPriceRangeRepository) ReplaceRanges(ctx context.Context, tenantID, productID uuid.UUID, rs pricing.RangeSet) error {
	rows := models.PriceRangeModelsFromDomain(tenantID, productID, rs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("tenant_id = ? AND product_id = ?", tenantID, productID).
			Delete(&models.PriceRangeModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete price ranges: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert price ranges: %w", err)
		}
		return nil
	})
}
