package di

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/wiring/dag"
	"github.com/kbukum/wiring/logger"
)

// Graph is the registry of providers. Registration is expected to finish
// before concurrent resolution begins; resolution itself is safe for
// concurrent use.
type Graph struct {
	id        string
	mu        sync.RWMutex
	providers map[Specification]Provider
	scopes    map[ScopeType]Scope
	log       *logger.Logger
	observer  Observer
	engine    *dag.Engine
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for registration and validation events.
func WithLogger(l *logger.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

// WithObserver installs an Observer notified around every provider materialization.
func WithObserver(o Observer) Option {
	return func(g *Graph) { g.observer = o }
}

// WithID replaces the generated graph identifier.
func WithID(id string) Option {
	return func(g *Graph) {
		if id != "" {
			g.id = id
		}
	}
}

// WithMaxParallel limits how many providers of one dependency level Warm
// builds concurrently (0 = unlimited).
func WithMaxParallel(n int) Option {
	return func(g *Graph) { g.engine.MaxParallel = n }
}

// New creates an empty Graph with the NoScope and ProcessScope scope types.
func New(opts ...Option) *Graph {
	g := &Graph{
		id:        uuid.NewString(),
		providers: make(map[Specification]Provider),
		scopes: map[ScopeType]Scope{
			NoScope:      noScope{},
			ProcessScope: NewSingletonScope(),
		},
		engine: &dag.Engine{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.WithComponent("di")
	}
	g.log = g.log.WithFields(map[string]interface{}{logger.FieldGraphID: g.id})
	return g
}

// ID returns the unique identifier of the graph, used to correlate logs and traces.
func (g *Graph) ID() string { return g.id }

// RegisterScope makes a scope type available to factory registrations.
// Registering an existing type replaces its scope: providers of that type
// are rebound to the new scope and the old one is closed when it
// implements io.Closer.
func (g *Graph) RegisterScope(t ScopeType, scope Scope) error {
	if t == "" || scope == nil {
		return fmt.Errorf("%w: scope type and scope are required", ErrInvalidFactory)
	}

	g.mu.Lock()
	old, replaced := g.scopes[t]
	g.scopes[t] = scope
	rebound := 0
	if replaced {
		for spec, p := range g.providers {
			if p.ScopeType() == t {
				g.providers[spec] = p.bind(scope)
				rebound++
			}
		}
	}
	g.mu.Unlock()

	if !replaced {
		return nil
	}
	g.log.Debug("scope replaced", map[string]interface{}{
		logger.FieldScope: string(t),
		logger.FieldCount: rebound,
	})
	if c, ok := old.(io.Closer); ok && !sameScope(old, scope) {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing replaced scope %s: %w", t, err)
		}
	}
	return nil
}

func sameScope(a, b Scope) bool {
	ta := reflect.TypeOf(a)
	return ta == reflect.TypeOf(b) && ta.Comparable() && a == b
}

// Scope returns the scope registered for t.
func (g *Graph) Scope(t ScopeType) (Scope, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.scopes[t]
	return s, ok
}

// RegisterInstance registers value under spec. The value is returned as is
// on every acquisition.
func (g *Graph) RegisterInstance(spec any, value any) error {
	p, err := NewInstanceProvider(spec, value)
	if err != nil {
		return err
	}
	return g.RegisterProvider(p)
}

// FactoryOption configures RegisterFactory.
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	params    InjectionSpec
	paramsErr error
	scope     ScopeType
}

// WithParams declares the factory parameters in positional order.
func WithParams(decls ...ParamDecl) FactoryOption {
	return func(o *factoryOptions) {
		o.params, o.paramsErr = NewInjectionSpec(decls...)
	}
}

// WithInjectionSpec uses a prebuilt InjectionSpec.
func WithInjectionSpec(spec InjectionSpec) FactoryOption {
	return func(o *factoryOptions) {
		o.params, o.paramsErr = spec, nil
	}
}

// WithScope selects the caching policy. The default is NoScope.
func WithScope(t ScopeType) FactoryOption {
	return func(o *factoryOptions) { o.scope = t }
}

// RegisterFactory registers factory under spec. Nothing is installed when
// the factory does not match its parameters or the scope type is unknown.
func (g *Graph) RegisterFactory(spec any, factory any, opts ...FactoryOption) error {
	o := factoryOptions{scope: NoScope}
	for _, opt := range opts {
		opt(&o)
	}
	if o.paramsErr != nil {
		return o.paramsErr
	}

	p, err := NewFactoryProvider(spec, factory, o.params, o.scope)
	if err != nil {
		return err
	}
	return g.RegisterProvider(p)
}

// RegisterProvider installs p, replacing any provider of the same
// specification. Factory providers are bound to this graph's scope of
// their type.
func (g *Graph) RegisterProvider(p Provider) error {
	if p == nil {
		return fmt.Errorf("%w: nil provider", ErrInvalidFactory)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	scope, ok := g.scopes[p.ScopeType()]
	if !ok {
		g.log.Warn("unknown scope type", map[string]interface{}{
			logger.FieldSpecification: p.Specification().String(),
			logger.FieldScope:         string(p.ScopeType()),
		})
		return &UnknownScopeError{ScopeType: p.ScopeType()}
	}

	spec := p.Specification()
	_, replaced := g.providers[spec]
	g.providers[spec] = p.bind(scope)
	if replaced {
		g.evictLocked(spec)
	}

	g.log.Debug("provider registered", map[string]interface{}{
		logger.FieldSpecification: spec.String(),
		logger.FieldScope:         string(p.ScopeType()),
		"replaced":                replaced,
	})
	return nil
}

// Unregister removes the provider for spec and drops any cached value.
// It reports whether a provider was removed.
func (g *Graph) Unregister(spec any) bool {
	key, err := NewKey(spec)
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.providers[key]; !ok {
		return false
	}
	delete(g.providers, key)
	g.evictLocked(key)
	return true
}

func (g *Graph) evictLocked(spec Specification) {
	for _, s := range g.scopes {
		if e, ok := s.(Evicter); ok {
			e.Evict(spec)
		}
	}
}

// Has reports whether a provider is registered for spec.
func (g *Graph) Has(spec any) bool {
	_, ok := g.Provider(spec)
	return ok
}

// Provider returns the provider registered for spec.
func (g *Graph) Provider(spec any) (Provider, bool) {
	key, err := NewKey(spec)
	if err != nil {
		return nil, false
	}
	return g.lookup(key)
}

func (g *Graph) lookup(spec Specification) (Provider, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.providers[spec]
	return p, ok
}

// Len returns the number of registered providers.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.providers)
}

// Specifications returns every registered specification in a stable order.
func (g *Graph) Specifications() []Specification {
	providers := g.sortedProviders()
	specs := make([]Specification, len(providers))
	for i, p := range providers {
		specs[i] = p.Specification()
	}
	return specs
}

func (g *Graph) sortedProviders() []Provider {
	g.mu.RLock()
	providers := make([]Provider, 0, len(g.providers))
	for _, p := range g.providers {
		providers = append(providers, p)
	}
	g.mu.RUnlock()

	slices.SortFunc(providers, func(a, b Provider) int {
		return compareSpecs(a.Specification(), b.Specification())
	})
	return providers
}

// Close closes the cached values of every scope that implements io.Closer
// and empties those caches. Providers stay registered.
func (g *Graph) Close() error {
	g.mu.RLock()
	types := make([]ScopeType, 0, len(g.scopes))
	for t := range g.scopes {
		types = append(types, t)
	}
	g.mu.RUnlock()
	slices.Sort(types)

	var firstErr error
	for _, t := range types {
		s, _ := g.Scope(t)
		c, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			g.log.Warn("closing scope failed", map[string]interface{}{
				logger.FieldScope: string(t),
				logger.FieldError: err.Error(),
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
