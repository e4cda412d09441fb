package pricing

import (
	"fmt"

	"github.com/erp/ladderprice/internal/domain/shared"
)

// ValidationErrorKind classifies why a candidate RangeSet was rejected
type ValidationErrorKind string

const (
	KindEmptyInput                   ValidationErrorKind = "EMPTY_INPUT"
	KindInvalidFirstRange            ValidationErrorKind = "INVALID_FIRST_RANGE"
	KindInvalidBounds                ValidationErrorKind = "INVALID_BOUNDS"
	KindMissingUpperBound            ValidationErrorKind = "MISSING_UPPER_BOUND"
	KindGapDetected                  ValidationErrorKind = "GAP_DETECTED"
	KindTrailingRangeMustBeUnbounded ValidationErrorKind = "TRAILING_RANGE_MUST_BE_UNBOUNDED"
)

// CodePriceNotFound is the error code for a quantity that no slab covers
const CodePriceNotFound = "PRICE_NOT_FOUND"

// ValidationError is a business-rule rejection of a candidate RangeSet.
// Index refers to the position in the sorted candidate list, or -1 when the
// error concerns the set as a whole.
type ValidationError struct {
	Kind        ValidationErrorKind `json:"kind"`
	Index       int                 `json:"index"`
	ExpectedMin int64               `json:"expected_min,omitempty"`
	ActualMin   int64               `json:"actual_min,omitempty"`
	Message     string              `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Code returns the stable error code
func (e *ValidationError) Code() string {
	return string(e.Kind)
}

// ToDomainError converts to the generic coded domain error
func (e *ValidationError) ToDomainError() *shared.DomainError {
	return shared.NewDomainError(e.Code(), e.Message)
}

// PriceNotFoundError means no slab covers the requested quantity. Against a set that
// passed Validate this indicates corrupted persisted data.
type PriceNotFoundError struct {
	Quantity int64 `json:"quantity"`
}

// Error implements the error interface
func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("no price range covers quantity %d", e.Quantity)
}

// Code returns the stable error code
func (e *PriceNotFoundError) Code() string {
	return CodePriceNotFound
}

// ToDomainError converts to the generic coded domain error
func (e *PriceNotFoundError) ToDomainError() *shared.DomainError {
	return shared.NewDomainError(e.Code(), e.Error())
}

func errEmptyInput() *ValidationError {
	return &ValidationError{
		Kind:    KindEmptyInput,
		Index:   -1,
		Message: "at least one price range is required",
	}
}

func errInvalidFirstRange(actual int64) *ValidationError {
	return &ValidationError{
		Kind:        KindInvalidFirstRange,
		Index:       0,
		ExpectedMin: 1,
		ActualMin:   actual,
		Message:     fmt.Sprintf("first price range must start at quantity 1, got %d", actual),
	}
}

func errInvalidBounds(index int, message string) *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidBounds,
		Index:   index,
		Message: fmt.Sprintf("price range %d: %s", index, message),
	}
}

func errMissingUpperBound(index int) *ValidationError {
	return &ValidationError{
		Kind:    KindMissingUpperBound,
		Index:   index,
		Message: fmt.Sprintf("price range %d has no max quantity but is not the last range", index),
	}
}

func errGapDetected(index int, expected, actual int64) *ValidationError {
	return &ValidationError{
		Kind:        KindGapDetected,
		Index:       index,
		ExpectedMin: expected,
		ActualMin:   actual,
		Message:     fmt.Sprintf("price range %d must start at quantity %d, got %d", index, expected, actual),
	}
}

func errTrailingRangeMustBeUnbounded(index int) *ValidationError {
	return &ValidationError{
		Kind:    KindTrailingRangeMustBeUnbounded,
		Index:   index,
		Message: fmt.Sprintf("last price range %d must have no max quantity", index),
	}
}
