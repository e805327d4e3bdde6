package errors

import (
	"fmt"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Common Error Constructors ---

// SelfDependency creates an AppError for a provider that depends on itself.
func SelfDependency(specification string) *AppError {
	return &AppError{
		Code:    ErrCodeSelfDependency,
		Message: fmt.Sprintf("Provider for %s is dependent on itself.", specification),
		Details: map[string]any{"specification": specification},
	}
}

// MissingDependency creates an AppError for a dependency nobody provides.
func MissingDependency(dependency, dependant string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingDependency,
		Message: fmt.Sprintf("Cannot find dependency %s for %s provider.", dependency, dependant),
		Details: map[string]any{"dependency": dependency, "dependant": dependant},
	}
}

// DependencyCycle creates an AppError for a closed loop of dependencies.
func DependencyCycle(cycle []string) *AppError {
	return &AppError{
		Code:    ErrCodeDependencyCycle,
		Message: fmt.Sprintf("Dependency cycle: %s.", strings.Join(cycle, " -> ")),
		Details: map[string]any{"cycle": cycle},
	}
}

// UnknownScope creates an AppError for an unrecognised scope type.
func UnknownScope(scopeType string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownScope,
		Message: fmt.Sprintf("Scope type %q is not registered.", scopeType),
		Details: map[string]any{"scope_type": scopeType},
	}
}

// NotFound creates an AppError for a specification that is not registered.
func NotFound(specification string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("No provider registered for %s.", specification),
		Details: map[string]any{"specification": specification},
	}
}

// InvalidArgument creates an AppError for a malformed call.
func InvalidArgument(reason string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: reason,
		Cause:   cause,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates a new AppError wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred.",
		Cause:   cause,
	}
}
