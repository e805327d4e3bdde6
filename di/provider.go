package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/wiring/logger"
)

// Provider produces the value registered for one specification. The set of
// providers is closed: InstanceProvider and FactoryProvider.
type Provider interface {
	Specification() Specification
	ScopeType() ScopeType
	Params() InjectionSpec
	Dependencies() []Specification

	acquire(ctx context.Context, r *resolution, overrides map[int]any) (value any, cached bool, err error)
	bind(scope Scope) Provider
}

// InstanceProvider returns a literal value.
type InstanceProvider struct {
	spec  Specification
	value any
}

// NewInstanceProvider creates a provider for an already computed value.
func NewInstanceProvider(spec any, value any) (*InstanceProvider, error) {
	key, err := NewKey(spec)
	if err != nil {
		return nil, err
	}
	return &InstanceProvider{spec: key, value: value}, nil
}

func (p *InstanceProvider) Specification() Specification  { return p.spec }
func (p *InstanceProvider) ScopeType() ScopeType          { return NoScope }
func (p *InstanceProvider) Params() InjectionSpec         { return InjectionSpec{} }
func (p *InstanceProvider) Dependencies() []Specification { return nil }

// Value returns the registered literal.
func (p *InstanceProvider) Value() any { return p.value }

func (p *InstanceProvider) acquire(context.Context, *resolution, map[int]any) (any, bool, error) {
	return p.value, false, nil
}

func (p *InstanceProvider) bind(Scope) Provider { return p }

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// FactoryProvider calls a function whose parameters are described by an
// InjectionSpec. The function may take a leading context.Context, which is
// not part of the InjectionSpec, and must return T or (T, error).
type FactoryProvider struct {
	spec      Specification
	fn        reflect.Value
	params    InjectionSpec
	scopeType ScopeType
	scope     Scope
	withCtx   bool
	withErr   bool
}

// NewFactoryProvider checks factory against params and creates an unbound
// provider. The scope instance is attached when the provider is registered.
func NewFactoryProvider(spec any, factory any, params InjectionSpec, scopeType ScopeType) (*FactoryProvider, error) {
	key, err := NewKey(spec)
	if err != nil {
		return nil, err
	}

	fn := reflect.ValueOf(factory)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: %s: factory must be a function, got %T", ErrInvalidFactory, key, factory)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: %s: variadic factories are not supported", ErrInvalidFactory, key)
	}

	withErr := false
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%w: %s: second result must be of type error, got %s", ErrInvalidFactory, key, ft.Out(1))
		}
		withErr = true
	default:
		return nil, fmt.Errorf("%w: %s: factory must return (value) or (value, error)", ErrInvalidFactory, key)
	}

	withCtx := ft.NumIn() > 0 && ft.In(0) == contextType
	arity := ft.NumIn()
	if withCtx {
		arity--
	}
	if arity != params.Len() {
		return nil, fmt.Errorf("%w: %s: factory takes %d parameters, injection spec declares %d",
			ErrInvalidFactory, key, arity, params.Len())
	}

	if scopeType == "" {
		scopeType = NoScope
	}

	return &FactoryProvider{
		spec:      key,
		fn:        fn,
		params:    params,
		scopeType: scopeType,
		withCtx:   withCtx,
		withErr:   withErr,
	}, nil
}

func (p *FactoryProvider) Specification() Specification  { return p.spec }
func (p *FactoryProvider) ScopeType() ScopeType          { return p.scopeType }
func (p *FactoryProvider) Params() InjectionSpec         { return p.params }
func (p *FactoryProvider) Dependencies() []Specification { return p.params.Dependencies() }

func (p *FactoryProvider) bind(scope Scope) Provider {
	bound := *p
	bound.scope = scope
	return &bound
}

func (p *FactoryProvider) acquire(ctx context.Context, r *resolution, overrides map[int]any) (any, bool, error) {
	scope := p.scope
	if scope == nil {
		scope = noScope{}
	}

	if v, ok := scope.Fetch(p.spec); ok {
		return v, true, nil
	}
	if guarded, ok := scope.(Guarded); ok {
		release := guarded.Guard(p.spec)
		defer release()
		// another caller may have stored the value while we waited
		if v, ok := scope.Fetch(p.spec); ok {
			return v, true, nil
		}
	}

	ft := p.fn.Type()
	offset := 0
	args := make([]reflect.Value, 0, ft.NumIn())
	if p.withCtx {
		args = append(args, reflect.ValueOf(&ctx).Elem())
		offset = 1
	}

	for _, param := range p.params.params {
		v, err := r.parameter(ctx, p.spec, param, overrides)
		if err != nil {
			return nil, false, err
		}
		rv, err := argumentValue(v, ft.In(param.Position+offset))
		if err != nil {
			return nil, false, fmt.Errorf("%w: parameter %q of %s: %v", ErrArgumentType, param.Name, p.spec, err)
		}
		args = append(args, rv)
	}

	r.graph.log.Debug("invoking factory", map[string]interface{}{
		logger.FieldSpecification: p.spec.String(),
		logger.FieldScope:         string(p.scopeType),
	})

	out := p.fn.Call(args)
	if p.withErr && !out[1].IsNil() {
		return nil, false, out[1].Interface().(error)
	}
	value := out[0].Interface()

	scope.Store(p.spec, value)
	return value, false, nil
}

func argumentValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", v, t)
	}
	return rv, nil
}
