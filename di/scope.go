package di

import (
	"errors"
	"io"
	"slices"
	"sync"
)

// ScopeType names a caching policy. A Graph keeps one Scope per type.
type ScopeType string

const (
	// NoScope recomputes the value on every acquisition.
	NoScope ScopeType = "none"
	// ProcessScope computes the value once and reuses it for the life of the Graph.
	ProcessScope ScopeType = "process"
)

// Scope caches provider values by specification.
type Scope interface {
	Fetch(spec Specification) (any, bool)
	Store(spec Specification, value any)
}

// Guarded is implemented by scopes that serialise the first
// materialization of a specification. Guard blocks until the caller owns
// spec and returns the function releasing it.
type Guarded interface {
	Guard(spec Specification) (release func())
}

// Evicter is implemented by scopes that can drop a cached value. The graph
// evicts a specification when its provider is replaced or removed.
type Evicter interface {
	Evict(spec Specification)
}

type noScope struct{}

func (noScope) Fetch(Specification) (any, bool) { return nil, false }
func (noScope) Store(Specification, any)        {}

// SingletonScope backs ProcessScope: it stores the first value produced for
// each specification and guarantees at most one factory invocation per
// specification under concurrent first access.
type SingletonScope struct {
	mu     sync.RWMutex
	values map[Specification]any
	order  []Specification
	guards map[Specification]*sync.Mutex
}

// NewSingletonScope creates an empty SingletonScope.
func NewSingletonScope() *SingletonScope {
	return &SingletonScope{
		values: make(map[Specification]any),
		guards: make(map[Specification]*sync.Mutex),
	}
}

// Fetch returns the cached value for spec.
func (s *SingletonScope) Fetch(spec Specification) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[spec]
	return v, ok
}

// Store caches value for spec.
func (s *SingletonScope) Store(spec Specification, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.values[spec]; !exists {
		s.order = append(s.order, spec)
	}
	s.values[spec] = value
}

// Guard serialises materialization of spec.
func (s *SingletonScope) Guard(spec Specification) func() {
	s.mu.Lock()
	m, ok := s.guards[spec]
	if !ok {
		m = &sync.Mutex{}
		s.guards[spec] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Evict drops the cached value for spec without closing it.
func (s *SingletonScope) Evict(spec Specification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[spec]; !ok {
		return
	}
	delete(s.values, spec)
	s.order = slices.DeleteFunc(s.order, func(o Specification) bool { return o == spec })
}

// Len returns the number of cached values.
func (s *SingletonScope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Close closes every cached value implementing io.Closer, most recently
// stored first, and empties the cache.
func (s *SingletonScope) Close() error {
	s.mu.Lock()
	order := s.order
	values := s.values
	s.order = nil
	s.values = make(map[Specification]any)
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if c, ok := values[order[i]].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
