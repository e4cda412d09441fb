package pricing

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence of a product's ladder.
//
// A ladder is stored and replaced as a whole unit: there is no single-slab update.
type Repository interface {
	// LoadRanges returns the persisted ladder of a product ordered by min quantity.
	// An empty set (not an error) is returned when the product has no ladder.
	LoadRanges(ctx context.Context, tenantID, productID uuid.UUID) (RangeSet, error)

	// ReplaceRanges atomically deletes every prior slab of the product and stores rs.
	// rs must have passed Validate; readers never observe a partially replaced ladder.
	ReplaceRanges(ctx context.Context, tenantID, productID uuid.UUID, rs RangeSet) error
}
