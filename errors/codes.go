package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Graph structure errors, reported by validation.
const (
	// ErrCodeSelfDependency indicates a provider injects its own specification.
	ErrCodeSelfDependency ErrorCode = "SELF_DEPENDENCY"
	// ErrCodeMissingDependency indicates a provider depends on an unregistered specification.
	ErrCodeMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	// ErrCodeDependencyCycle indicates a closed loop of dependency edges.
	ErrCodeDependencyCycle ErrorCode = "DEPENDENCY_CYCLE"
)

// Registration and resolution errors
const (
	// ErrCodeUnknownScope indicates a registration named a scope type the graph does not know.
	ErrCodeUnknownScope ErrorCode = "UNKNOWN_SCOPE"
	// ErrCodeNotFound indicates the requested specification is not registered.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates a malformed acquisition or registration call.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates invalid configuration or user input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected failure, usually raised by a factory.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// structuralCodes are the codes produced by graph validation.
var structuralCodes = map[ErrorCode]bool{
	ErrCodeSelfDependency:    true,
	ErrCodeMissingDependency: true,
	ErrCodeDependencyCycle:   true,
}

// IsStructuralCode returns true if the code describes a malformed dependency graph.
func IsStructuralCode(code ErrorCode) bool {
	return structuralCodes[code]
}
