package di

import (
	"cmp"
	"fmt"
	"reflect"
	"strconv"
)

// Kind tells which variant a Specification holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindName
	KindType
	KindValue
)

// Specification is the registry key of a Graph. It is a closed variant of
// a name, a type identity or an arbitrary comparable value. Specifications
// are comparable and can be used as map keys.
type Specification struct {
	kind  Kind
	name  string
	typ   reflect.Type
	value any
}

// Name returns a specification identified by a string.
func Name(name string) Specification {
	return Specification{kind: KindName, name: name}
}

// TypeSpec returns a specification identified by a Go type.
func TypeSpec(t reflect.Type) Specification {
	return Specification{kind: KindType, typ: t}
}

// TypeOf returns a specification identified by the type parameter.
//
//	g.RegisterFactory(di.TypeOf[*Service](), NewService)
func TypeOf[T any]() Specification {
	return TypeSpec(reflect.TypeFor[T]())
}

// NewKey normalises v into a Specification. Strings become names,
// reflect.Type values become type identities, a Specification is returned
// as is and any other comparable value is used verbatim. Values that cannot
// be hashed yield ErrUnhashableSpecification.
func NewKey(v any) (Specification, error) {
	switch k := v.(type) {
	case Specification:
		if k.kind == KindInvalid {
			return Specification{}, fmt.Errorf("%w: zero specification", ErrUnhashableSpecification)
		}
		return k, nil
	case string:
		return Name(k), nil
	case reflect.Type:
		if k == nil {
			return Specification{}, fmt.Errorf("%w: nil type", ErrUnhashableSpecification)
		}
		return TypeSpec(k), nil
	case nil:
		return Specification{}, fmt.Errorf("%w: nil", ErrUnhashableSpecification)
	}

	if !reflect.ValueOf(v).Comparable() {
		return Specification{}, fmt.Errorf("%w: %T", ErrUnhashableSpecification, v)
	}
	return Specification{kind: KindValue, value: v}, nil
}

// Key is like NewKey but panics on values that cannot be hashed.
func Key(v any) Specification {
	spec, err := NewKey(v)
	if err != nil {
		panic(err)
	}
	return spec
}

// Kind returns the variant held by s.
func (s Specification) Kind() Kind { return s.kind }

// IsZero reports whether s is the zero Specification.
func (s Specification) IsZero() bool { return s.kind == KindInvalid }

// Value returns the underlying key: the name, the reflect.Type or the raw value.
func (s Specification) Value() any {
	switch s.kind {
	case KindName:
		return s.name
	case KindType:
		return s.typ
	case KindValue:
		return s.value
	}
	return nil
}

func (s Specification) String() string {
	switch s.kind {
	case KindName:
		return strconv.Quote(s.name)
	case KindType:
		return "type(" + s.typ.String() + ")"
	case KindValue:
		return fmt.Sprintf("%T(%v)", s.value, s.value)
	}
	return "<invalid>"
}

// compareSpecs orders specifications by kind, then by string form.
func compareSpecs(a, b Specification) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	return cmp.Compare(a.String(), b.String())
}
