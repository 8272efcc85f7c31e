package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrExceedsAmountDue    = NewDomainError("EXCEEDS_AMOUNT_DUE", "Payment amount exceeds the amount due")
	ErrAlreadyConverted    = NewDomainError("ALREADY_CONVERTED", "Quote has already been converted to an invoice")
	ErrNotYetDue           = NewDomainError("NOT_YET_DUE", "Recurring template is not yet due for generation")
	ErrTemplateExpired     = NewDomainError("TEMPLATE_EXPIRED", "Recurring template has passed its end date")
	ErrTemplateInactive    = NewDomainError("TEMPLATE_INACTIVE", "Recurring template is inactive")
)
