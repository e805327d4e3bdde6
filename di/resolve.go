package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Arguments overrides factory parameters for one acquisition. Keys are
// parameter positions (integers) or parameter names (strings). When a
// position and a name address the same parameter, the name wins.
type Arguments map[any]any

// NamedArg binds a value to a parameter name in Get.
type NamedArg struct {
	Name  string
	Value any
}

// Named returns a NamedArg for Get.
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// Acquire resolves spec with the given overrides. Parameters without an
// override are injected from the graph or take their declared default.
func (g *Graph) Acquire(spec any, args Arguments) (any, error) {
	return g.AcquireContext(context.Background(), spec, args)
}

// AcquireContext is Acquire with a context passed to factories that accept
// one and to the Observer.
func (g *Graph) AcquireContext(ctx context.Context, spec any, args Arguments) (any, error) {
	key, err := NewKey(spec)
	if err != nil {
		return nil, err
	}
	p, ok := g.lookup(key)
	if !ok {
		return nil, &NotRegisteredError{Specification: key}
	}
	overrides, err := bindArguments(key, p.Params(), args)
	if err != nil {
		return nil, err
	}
	r := &resolution{graph: g}
	return r.provide(ctx, p, overrides)
}

// Get resolves spec binding positional values to parameters from position
// 0, regardless of their kind, and NamedArg values by name. Named values
// win over positional ones for the same parameter.
func (g *Graph) Get(spec any, args ...any) (any, error) {
	return g.GetContext(context.Background(), spec, args...)
}

// GetContext is Get with a context.
func (g *Graph) GetContext(ctx context.Context, spec any, args ...any) (any, error) {
	arguments := make(Arguments, len(args))
	position := 0
	for _, a := range args {
		if named, ok := a.(NamedArg); ok {
			arguments[named.Name] = named.Value
			continue
		}
		arguments[position] = a
		position++
	}
	return g.AcquireContext(ctx, spec, arguments)
}

// bindArguments maps argument keys to parameter positions.
func bindArguments(spec Specification, params InjectionSpec, args Arguments) (map[int]any, error) {
	if len(args) == 0 {
		return nil, nil
	}

	overrides := make(map[int]any, len(args))
	named := make(map[int]any)
	var invalid []string

	for k, v := range args {
		switch key := k.(type) {
		case string:
			p, ok := params.Lookup(key)
			if !ok {
				invalid = append(invalid, fmt.Sprintf("%q", key))
				continue
			}
			named[p.Position] = v
		default:
			pos, ok := position(k)
			if !ok || pos < 0 || pos >= params.Len() {
				invalid = append(invalid, fmt.Sprintf("%#v", k))
				continue
			}
			overrides[pos] = v
		}
	}

	if len(invalid) > 0 {
		slices.Sort(invalid)
		return nil, fmt.Errorf("%w: %s has %d parameters, got keys %s",
			ErrInvalidArgumentKey, spec, params.Len(), strings.Join(invalid, ", "))
	}

	for pos, v := range named {
		overrides[pos] = v
	}
	return overrides, nil
}

func position(k any) (int, bool) {
	rv := reflect.ValueOf(k)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > uint64(^uint(0)>>1) {
			return -1, true
		}
		return int(rv.Uint()), true
	}
	return 0, false
}

// resolution carries the state of one Acquire/Get call.
type resolution struct {
	graph *Graph
	path  []Specification
}

func (r *resolution) observer() Observer {
	if r.graph.observer == nil {
		return nopObserver{}
	}
	return r.graph.observer
}

// provide materializes p, guarding against dependency loops on the
// current path.
func (r *resolution) provide(ctx context.Context, p Provider, overrides map[int]any) (any, error) {
	spec := p.Specification()
	if i := slices.Index(r.path, spec); i >= 0 {
		cycle := append(slices.Clone(r.path[i:]), spec)
		return nil, &DependencyCycleError{Cycle: cycle}
	}

	obs := r.observer()
	ctx = obs.ProviderStarted(ctx, spec)

	r.path = append(r.path, spec)
	value, cached, err := p.acquire(ctx, r, overrides)
	r.path = r.path[:len(r.path)-1]

	obs.ProviderFinished(ctx, spec, cached, err)
	return value, err
}

// parameter resolves one parameter: override, then injection, then default.
func (r *resolution) parameter(ctx context.Context, owner Specification, param Parameter, overrides map[int]any) (any, error) {
	if v, ok := overrides[param.Position]; ok {
		return v, nil
	}
	if param.Kind == ParamInjected {
		dep, ok := r.graph.lookup(param.Dependency)
		if !ok {
			return nil, &NotRegisteredError{Specification: param.Dependency}
		}
		return r.provide(ctx, dep, nil)
	}
	if param.HasDefault {
		return param.Default, nil
	}
	return nil, fmt.Errorf("%w: parameter %q of %s", ErrMissingArgument, param.Name, owner)
}
