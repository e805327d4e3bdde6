package di

import (
	"fmt"
)

// ParamKind tells whether a parameter is supplied by the caller or injected.
type ParamKind uint8

const (
	ParamDirect ParamKind = iota
	ParamInjected
)

func (k ParamKind) String() string {
	if k == ParamInjected {
		return "injected"
	}
	return "direct"
}

// InjectedMarker marks a parameter default as "resolve from the graph".
// Without an explicit specification the parameter's own name is used.
type InjectedMarker struct {
	spec     any
	explicit bool
}

// Injected returns a marker for the given specification, or for the
// parameter's own name when called without arguments.
func Injected(spec ...any) InjectedMarker {
	if len(spec) == 0 {
		return InjectedMarker{}
	}
	return InjectedMarker{spec: spec[0], explicit: true}
}

// Parameter describes one formal parameter of a factory.
type Parameter struct {
	Position   int
	Name       string
	Kind       ParamKind
	Default    any
	HasDefault bool
	Dependency Specification
}

// ParamDecl declares one parameter; see Arg, Default and Inject.
type ParamDecl struct {
	name       string
	value      any
	hasDefault bool
	extra      int
}

// Arg declares a direct parameter without a default. Callers must supply it.
func Arg(name string) ParamDecl {
	return ParamDecl{name: name}
}

// Default declares a parameter with a literal default. Passing an
// InjectedMarker as value makes the parameter injected.
func Default(name string, value any) ParamDecl {
	return ParamDecl{name: name, value: value, hasDefault: true}
}

// Inject declares an injected parameter. spec is optional; without it the
// parameter name is the dependency key.
func Inject(name string, spec ...any) ParamDecl {
	d := Default(name, Injected(spec...))
	if len(spec) > 1 {
		d.extra = len(spec) - 1
	}
	return d
}

// InjectionSpec is the ordered, immutable parameter list of a factory.
type InjectionSpec struct {
	params []Parameter
	byName map[string]int
}

// NewInjectionSpec builds an InjectionSpec from declarations in positional order.
func NewInjectionSpec(decls ...ParamDecl) (InjectionSpec, error) {
	spec := InjectionSpec{
		params: make([]Parameter, 0, len(decls)),
		byName: make(map[string]int, len(decls)),
	}
	for i, d := range decls {
		if d.name == "" {
			return InjectionSpec{}, fmt.Errorf("%w: parameter %d has no name", ErrInvalidFactory, i)
		}
		if _, dup := spec.byName[d.name]; dup {
			return InjectionSpec{}, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidFactory, d.name)
		}
		if d.extra > 0 {
			return InjectionSpec{}, fmt.Errorf("%w: parameter %q injects more than one specification", ErrInvalidFactory, d.name)
		}

		p := Parameter{Position: i, Name: d.name, Kind: ParamDirect}
		if marker, ok := d.value.(InjectedMarker); ok {
			key := any(d.name)
			if marker.explicit {
				key = marker.spec
			}
			dep, err := NewKey(key)
			if err != nil {
				return InjectionSpec{}, fmt.Errorf("parameter %q: %w", d.name, err)
			}
			p.Kind = ParamInjected
			p.Dependency = dep
		} else if d.hasDefault {
			p.Default = d.value
			p.HasDefault = true
		}

		spec.params = append(spec.params, p)
		spec.byName[d.name] = i
	}
	return spec, nil
}

// Params is like NewInjectionSpec but panics on invalid declarations.
func Params(decls ...ParamDecl) InjectionSpec {
	spec, err := NewInjectionSpec(decls...)
	if err != nil {
		panic(err)
	}
	return spec
}

// Len returns the number of parameters.
func (s InjectionSpec) Len() int { return len(s.params) }

// Parameters returns a copy of the parameter list.
func (s InjectionSpec) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Lookup finds a parameter by name.
func (s InjectionSpec) Lookup(name string) (Parameter, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Parameter{}, false
	}
	return s.params[i], true
}

// Dependencies returns the distinct specifications of injected parameters
// in positional order.
func (s InjectionSpec) Dependencies() []Specification {
	var deps []Specification
	seen := make(map[Specification]struct{})
	for _, p := range s.params {
		if p.Kind != ParamInjected {
			continue
		}
		if _, ok := seen[p.Dependency]; ok {
			continue
		}
		seen[p.Dependency] = struct{}{}
		deps = append(deps, p.Dependency)
	}
	return deps
}
