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
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidPropertyType       = NewDomainError(ErrCodeValidation, "invalid property type")
	ErrInvalidPropertyStatus     = NewDomainError(ErrCodeValidation, "invalid property status")
	ErrInvalidEmbeddingJobStatus = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrPropertyNotFound = NewDomainError(ErrCodeNotFound, "property not found")
	ErrInquiryNotFound  = NewDomainError(ErrCodeNotFound, "inquiry not found")
	ErrAgentNotFound    = NewDomainError(ErrCodeNotFound, "agent not found")
	ErrAPIKeyNotFound   = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrPhotoNotFound    = NewDomainError(ErrCodeNotFound, "photo not found")
)

// Already exists errors
var (
	ErrAgentAlreadyExists  = NewDomainError(ErrCodeAlreadyExists, "agent already exists")
	ErrAPIKeyAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Authorization errors
var (
	ErrAPIKeyRevoked   = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey   = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrNotListingOwner = NewDomainError(ErrCodeForbidden, "listing belongs to another agent")
)

// Operation errors
var (
	ErrListingNotActive = NewDomainError(ErrCodeInvalidOperation, "listing is not active")
	ErrSearchFailed     = NewDomainError(ErrCodeInternalError, "failed to fetch properties")
)
