package domain

import "fmt"

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeCredential = "CREDENTIAL_ERROR"
	ErrCodeUpstream   = "UPSTREAM_ERROR"
	ErrCodeParsing    = "PARSING_ERROR"
	ErrCodeDatabase   = "DATABASE_ERROR"
	ErrCodeAnalysis   = "ANALYSIS_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Error constructors

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewCredentialError creates a new credential error
func NewCredentialError(msg string) error {
	return &DomainError{
		Code:    ErrCodeCredential,
		Message: msg,
	}
}

// NewUpstreamError creates a new upstream vendor error
func NewUpstreamError(msg string, err error) error {
	return &DomainError{
		Code:    ErrCodeUpstream,
		Message: msg,
		Err:     err,
	}
}

// NewParsingError creates a new parsing error
func NewParsingError(msg string, err error) error {
	return &DomainError{
		Code:    ErrCodeParsing,
		Message: msg,
		Err:     err,
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(err error) error {
	return &DomainError{
		Code:    ErrCodeDatabase,
		Message: "A database error occurred",
		Err:     err,
	}
}

// NewAnalysisError creates an error for the case where both the primary and
// the fallback analysis paths failed.
func NewAnalysisError(primaryErr, fallbackErr error) error {
	return &DomainError{
		Code:    ErrCodeAnalysis,
		Message: fmt.Sprintf("analysis failed: primary: %v; fallback: %v", primaryErr, fallbackErr),
		Err:     primaryErr,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(msg string) error {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: msg,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// Helper functions to check error types

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeNotFound
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeValidation
	}
	return false
}

// IsCredential checks if the error is a credential error
func IsCredential(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeCredential
	}
	return false
}

// IsUpstream checks if the error is an upstream vendor error
func IsUpstream(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeUpstream
	}
	return false
}

// IsParsing checks if the error is a parsing error
func IsParsing(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeParsing
	}
	return false
}

// IsDatabase checks if the error is a database error
func IsDatabase(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeDatabase
	}
	return false
}

// IsAnalysis checks if the error is a double-failure analysis error
func IsAnalysis(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == ErrCodeAnalysis
	}
	return false
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	if de, ok := err.(*DomainError); ok {
		return de.Code
	}
	return ErrCodeInternal
}
