// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Input errors
	ErrMissingSymbol     = &Error{Code: "MISSING_SYMBOL", Message: "no company symbol found"}
	ErrMissingSearchTerm = &Error{Code: "MISSING_SEARCH_TERM", Message: "no search term found"}
	ErrInvalidInput      = &Error{Code: "INVALID_INPUT", Message: "invalid request parameter"}

	// Data errors
	ErrStatementNotFound = &Error{Code: "STATEMENT_NOT_FOUND", Message: "statement not found"}
	ErrNoData            = &Error{Code: "NO_DATA", Message: "no data for selected company"}
	ErrPriceNotFound     = &Error{Code: "PRICE_NOT_FOUND", Message: "closing price not found"}

	// Sector errors
	ErrNoSector = &Error{Code: "NO_SECTOR", Message: "no sector for selected company"}
	ErrNoPeers  = &Error{Code: "NO_PEERS", Message: "no companies in selected sector"}

	// Computation errors
	ErrComputationFailed = &Error{Code: "COMPUTATION_FAILED", Message: "computation failed"}

	// Provider errors
	ErrProviderFailed = &Error{Code: "PROVIDER_FAILED", Message: "provider request failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
