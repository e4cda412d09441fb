package cli

import (
	"errors"
	"fmt"
	"testing"

	pricingapp "github.com/erp/ladderprice/internal/application/pricing"
	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	vErr := &pricing.ValidationError{Kind: pricing.KindGapDetected, Index: 1, Message: "gap"}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"validation", vErr, ExitInvalidInput},
		{"wrapped validation", fmt.Errorf("import: %w", vErr), ExitInvalidInput},
		{"reported validation", &reportedError{err: vErr}, ExitInvalidInput},
		{"price not found", &pricing.PriceNotFoundError{Quantity: 5}, ExitInternal},
		{"ladder not found", pricingapp.ErrLadderNotFound, ExitNotFound},
		{"generic not found", shared.ErrNotFound, ExitNotFound},
		{"invalid request", shared.NewDomainError(pricingapp.CodeInvalidRequest, "quantity: must be at least 1"), ExitInvalidInput},
		{"other domain error", shared.NewDomainError("CONFLICT", "x"), ExitInternal},
		{"usage", &UsageError{Message: "bad"}, ExitUsage},
		{"unknown", errors.New("db down"), ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestToErrorResponse(t *testing.T) {
	vErr := &pricing.ValidationError{Kind: pricing.KindMissingUpperBound, Index: 0, Message: "range 0 has no upper bound"}

	resp := ToErrorResponse(vErr)
	assert.Equal(t, "MISSING_UPPER_BOUND", resp.Code)
	assert.Same(t, vErr, resp.Detail)

	resp = ToErrorResponse(errors.New("connection refused"))
	assert.Equal(t, ErrCodeInternal, resp.Code)
	assert.Equal(t, "connection refused", resp.Message)
	assert.Nil(t, resp.Detail)
}
