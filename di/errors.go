package di

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/wiring/errors"
)

// Usage errors. They are wrapped with context; test with errors.Is.
var (
	ErrInvalidArgumentKey      = errors.New("di: argument key matches no parameter")
	ErrMissingArgument         = errors.New("di: missing value for direct parameter")
	ErrArgumentType            = errors.New("di: argument is not assignable to parameter")
	ErrInvalidFactory          = errors.New("di: invalid factory")
	ErrUnhashableSpecification = errors.New("di: specification is not hashable")
)

// SelfDependencyError reports a provider that injects its own specification.
type SelfDependencyError struct {
	Specification Specification
}

func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("di: provider for %s is dependent on itself", e.Specification)
}

// AppError converts the error for structured reporting.
func (e *SelfDependencyError) AppError() *apperrors.AppError {
	return apperrors.SelfDependency(e.Specification.String()).WithCause(e)
}

// MissingDependencyError reports a dependency no provider is registered for.
type MissingDependencyError struct {
	Dependency Specification
	Dependant  Specification
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("di: cannot find dependency %s for %s provider", e.Dependency, e.Dependant)
}

// AppError converts the error for structured reporting.
func (e *MissingDependencyError) AppError() *apperrors.AppError {
	return apperrors.MissingDependency(e.Dependency.String(), e.Dependant.String()).WithCause(e)
}

// DependencyCycleError reports a closed loop of dependencies. Cycle starts
// and ends with the same specification.
type DependencyCycleError struct {
	Cycle []Specification
}

func (e *DependencyCycleError) Error() string {
	return "di: dependency cycle: " + strings.Join(e.names(), " -> ")
}

// AppError converts the error for structured reporting.
func (e *DependencyCycleError) AppError() *apperrors.AppError {
	return apperrors.DependencyCycle(e.names()).WithCause(e)
}

func (e *DependencyCycleError) names() []string {
	names := make([]string, len(e.Cycle))
	for i, s := range e.Cycle {
		names[i] = s.String()
	}
	return names
}

// UnknownScopeError reports a registration with a scope type the graph does not know.
type UnknownScopeError struct {
	ScopeType ScopeType
}

func (e *UnknownScopeError) Error() string {
	return fmt.Sprintf("di: unknown scope type %q", string(e.ScopeType))
}

// AppError converts the error for structured reporting.
func (e *UnknownScopeError) AppError() *apperrors.AppError {
	return apperrors.UnknownScope(string(e.ScopeType)).WithCause(e)
}

// NotRegisteredError reports an acquisition of a specification without provider.
type NotRegisteredError struct {
	Specification Specification
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("di: no provider registered for %s", e.Specification)
}

// AppError converts the error for structured reporting.
func (e *NotRegisteredError) AppError() *apperrors.AppError {
	return apperrors.NotFound(e.Specification.String()).WithCause(e)
}

// ToAppError converts any error returned by this package into an AppError.
// Errors raised by factories become INTERNAL_ERROR with the original cause.
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	var converter interface{ AppError() *apperrors.AppError }
	if errors.As(err, &converter) {
		return converter.AppError()
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	for _, usage := range []error{ErrInvalidArgumentKey, ErrMissingArgument, ErrArgumentType, ErrInvalidFactory, ErrUnhashableSpecification} {
		if errors.Is(err, usage) {
			return apperrors.InvalidArgument(err.Error(), err)
		}
	}
	return apperrors.Internal(err)
}
