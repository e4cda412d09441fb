package pricing

import (
	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/domain/shared/valueobject"
	"github.com/erp/ladderprice/internal/infrastructure/vendortext"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRangeInput is one slab of an admin-defined ladder
type PriceRangeInput struct {
	MinQuantity int64           `json:"min_quantity"`
	MaxQuantity *int64          `json:"max_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// SetLadderRequest replaces a product's ladder.
// Business rules (coverage, ordering, positive prices) are enforced by pricing.Validate.
type SetLadderRequest struct {
	Ranges []PriceRangeInput `json:"ranges" validate:"max=100"`
}

// ToCandidates converts the request into unvalidated slabs, tagging each with its input position
func (r SetLadderRequest) ToCandidates() []pricing.PriceRange {
	out := make([]pricing.PriceRange, len(r.Ranges))
	for i, in := range r.Ranges {
		pr := pricing.PriceRange{
			MinQuantity: in.MinQuantity,
			UnitPrice:   in.UnitPrice,
			SortOrder:   i,
		}
		if in.MaxQuantity != nil {
			pr = pr.WithMaxQuantity(*in.MaxQuantity)
		}
		out[i] = pr
	}
	return out
}

// QuoteRequest asks for the price of a quantity
type QuoteRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

// ImportVendorTextRequest carries raw marketplace ladder text
type ImportVendorTextRequest struct {
	Text   string `json:"text" validate:"max=4096"`
	Source string `json:"source" validate:"omitempty,max=100"`
}

// PriceRangeResponse is a slab in API responses
type PriceRangeResponse struct {
	MinQuantity int64           `json:"min_quantity"`
	MaxQuantity *int64          `json:"max_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Label       string          `json:"label"`
}

// LadderResponse is a product's ladder
type LadderResponse struct {
	TenantID  uuid.UUID            `json:"tenant_id"`
	ProductID uuid.UUID            `json:"product_id"`
	Currency  string               `json:"currency"`
	Ranges    []PriceRangeResponse `json:"ranges"`
	Display   string               `json:"display"`
}

// LadderCheckResponse is a ladder that passed validation, normalized into ladder order
type LadderCheckResponse struct {
	Currency string               `json:"currency"`
	Ranges   []PriceRangeResponse `json:"ranges"`
	Display  string               `json:"display"`
}

// QuoteResponse is a priced quantity
type QuoteResponse struct {
	ProductID uuid.UUID          `json:"product_id"`
	Quantity  int64              `json:"quantity"`
	UnitPrice valueobject.Money  `json:"unit_price"`
	Total     valueobject.Money  `json:"total"`
	Range     PriceRangeResponse `json:"range"`
}

// VendorPreviewResponse is the outcome of parsing vendor text without saving it
type VendorPreviewResponse struct {
	// Candidates are the parsed slabs before validation, in ladder order
	Candidates []PriceRangeResponse `json:"candidates"`
	// Valid reports whether the candidates pass validation
	Valid bool `json:"valid"`
	// Error is the validation failure when Valid is false
	Error     *pricing.ValidationError    `json:"error,omitempty"`
	Display   string                      `json:"display,omitempty"`
	BasePrice decimal.Decimal             `json:"base_price"`
	Segments  []vendortext.Segment        `json:"segments"`
	Repairs   []vendortext.Repair         `json:"repairs,omitempty"`
	Dropped   []vendortext.DroppedSegment `json:"dropped,omitempty"`
}

// VendorImportResponse is the outcome of a successful vendor import
type VendorImportResponse struct {
	Ladder    LadderResponse              `json:"ladder"`
	BasePrice decimal.Decimal             `json:"base_price"`
	Repairs   []vendortext.Repair         `json:"repairs,omitempty"`
	Dropped   []vendortext.DroppedSegment `json:"dropped,omitempty"`
}

// ToPriceRangeResponse converts a domain slab to a response
func ToPriceRangeResponse(r pricing.PriceRange) PriceRangeResponse {
	resp := PriceRangeResponse{
		MinQuantity: r.MinQuantity,
		UnitPrice:   r.UnitPrice,
		Label:       r.Label(),
	}
	if r.MaxQuantity != nil {
		maxQty := *r.MaxQuantity
		resp.MaxQuantity = &maxQty
	}
	return resp
}

// ToPriceRangeResponses converts a RangeSet to responses
func ToPriceRangeResponses(rs pricing.RangeSet) []PriceRangeResponse {
	out := make([]PriceRangeResponse, len(rs))
	for i, r := range rs {
		out[i] = ToPriceRangeResponse(r)
	}
	return out
}
