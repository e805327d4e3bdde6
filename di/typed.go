package di

import "fmt"

// Resolve gets spec from g and asserts the result to T.
//
// Example:
//
//	repo, err := di.Resolve[contracts.UserRepository](g, di.TypeOf[contracts.UserRepository]())
//	if err != nil {
//	    return fmt.Errorf("failed to get user repository: %w", err)
//	}
func Resolve[T any](g *Graph, spec any, args ...any) (T, error) {
	var zero T
	instance, err := g.Get(spec, args...)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: %v is %T, expected %T", spec, instance, zero)
	}
	return result, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](g *Graph, spec any, args ...any) T {
	v, err := Resolve[T](g, spec, args...)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %v: %v", spec, err))
	}
	return v
}

// TryResolve returns the zero value and false when spec cannot be resolved
// as a T. Use it when a dependency is optional.
func TryResolve[T any](g *Graph, spec any, args ...any) (T, bool) {
	v, err := Resolve[T](g, spec, args...)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
