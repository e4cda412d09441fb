package cli

import (
	"errors"

	pricingapp "github.com/erp/ladderprice/internal/application/pricing"
	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/domain/shared"
)

// Exit codes
const (
	ExitOK           = 0
	ExitInternal     = 1
	ExitInvalidInput = 2
	ExitNotFound     = 3
	ExitUsage        = 64
)

// Error codes reported for errors that carry none of their own
const (
	ErrCodeInternal = "INTERNAL_ERROR"
	ErrCodeUsage    = "USAGE"
)

// ErrorResponse is the error envelope written in JSON mode
type ErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Detail  *pricing.ValidationError `json:"detail,omitempty"`
}

// UsageError reports a malformed command line
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

func usagef(msg string) error { return &UsageError{Message: msg} }

// reportedError wraps an error whose details are already part of the command output
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// ToErrorResponse maps err to the error envelope
func ToErrorResponse(err error) ErrorResponse {
	var (
		vErr      *pricing.ValidationError
		nfErr     *pricing.PriceNotFoundError
		domainErr *shared.DomainError
		usageErr  *UsageError
	)
	switch {
	case errors.As(err, &vErr):
		return ErrorResponse{Code: vErr.Code(), Message: vErr.Message, Detail: vErr}
	case errors.As(err, &nfErr):
		return ErrorResponse{Code: nfErr.Code(), Message: nfErr.Error()}
	case errors.As(err, &domainErr):
		return ErrorResponse{Code: domainErr.Code, Message: domainErr.Message}
	case errors.As(err, &usageErr):
		return ErrorResponse{Code: ErrCodeUsage, Message: usageErr.Message}
	default:
		return ErrorResponse{Code: ErrCodeInternal, Message: err.Error()}
	}
}

// ExitCode maps err to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		vErr      *pricing.ValidationError
		nfErr     *pricing.PriceNotFoundError
		domainErr *shared.DomainError
		usageErr  *UsageError
	)
	switch {
	case errors.As(err, &vErr):
		return ExitInvalidInput
	case errors.As(err, &nfErr):
		// a stored ladder that misses a quantity is corrupt data
		return ExitInternal
	case errors.As(err, &usageErr):
		return ExitUsage
	case errors.As(err, &domainErr):
		switch domainErr.Code {
		case shared.ErrNotFound.Code, pricingapp.ErrLadderNotFound.Code:
			return ExitNotFound
		case shared.ErrInvalidInput.Code, pricingapp.CodeInvalidRequest:
			return ExitInvalidInput
		}
		return ExitInternal
	default:
		return ExitInternal
	}
}
