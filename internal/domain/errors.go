package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code and message so that wrapped
// variants (NewDomainErrorWithCause) still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidRating = NewDomainError(ErrCodeValidation, "rating must be between 1 and 5")
	ErrInvalidPlant  = NewDomainError(ErrCodeValidation, "invalid plant")
)

// Not found errors
var (
	ErrPlantNotFound                 = NewDomainError(ErrCodeNotFound, "plant not found")
	ErrRecommendationRequestNotFound = NewDomainError(ErrCodeNotFound, "recommendation request not found")
)

// Persistence errors
var (
	ErrRequestLogFailed = NewDomainError(ErrCodeInternalError, "failed to log recommendation request")
	ErrFeedbackFailed   = NewDomainError(ErrCodeInternalError, "failed to save feedback")
	ErrCatalogFetch     = NewDomainError(ErrCodeInternalError, "failed to fetch plant catalog")
)
