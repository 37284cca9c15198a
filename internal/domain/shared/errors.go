package shared

import "fmt"

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

// Error codes used across the synchronization core
const (
	CodeTenantNotFound       = "TENANT_NOT_FOUND"
	CodeTenantMisconfigured  = "TENANT_MISCONFIGURED"
	CodeConfigurationMissing = "CONFIGURATION_MISSING"
	CodeUnknownOperationKey  = "UNKNOWN_OPERATION_KEY"
	CodeHandlerFailure       = "HANDLER_FAILURE"
	CodePersistenceFailure   = "PERSISTENCE_FAILURE"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidState         = "INVALID_STATE"
)

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// NewTenantNotFoundError reports that no directory entry matched the given code.
func NewTenantNotFoundError(code string) *DomainError {
	if code == "" {
		return NewDomainError(CodeTenantNotFound, "no tenant resolved from request context or explicit id")
	}
	return NewDomainError(CodeTenantNotFound, fmt.Sprintf("tenant %q not found in directory", code))
}

// NewTenantMisconfiguredError reports a directory entry that cannot be used,
// typically because it lacks a database target.
func NewTenantMisconfiguredError(code, reason string) *DomainError {
	return NewDomainError(CodeTenantMisconfigured, fmt.Sprintf("tenant %q is misconfigured: %s", code, reason))
}

// NewConfigurationMissingError reports an absent process-wide setting by name.
func NewConfigurationMissingError(setting string) *DomainError {
	return NewDomainError(CodeConfigurationMissing, fmt.Sprintf("required configuration %q is not set", setting))
}

// NewUnknownOperationKeyError reports a dispatch failure for an item whose
// operation key is empty or has no registered handler.
func NewUnknownOperationKeyError(key string) *DomainError {
	if key == "" {
		return NewDomainError(CodeUnknownOperationKey, "unknown operation key: item has no operation key")
	}
	return NewDomainError(CodeUnknownOperationKey, fmt.Sprintf("unknown operation key %q: no handler registered", key))
}
