package di

import (
	"fmt"

	"github.com/kbukum/wiring/logger"
)

// Module is a named bundle of registrations installed together with
// Graph.Load. Entries are applied in the order they were added.
type Module struct {
	name    string
	entries []func(g *Graph) error
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{name: name}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Len returns the number of registrations in the module.
func (m *Module) Len() int { return len(m.entries) }

// Instance adds an instance registration.
func (m *Module) Instance(spec any, value any) *Module {
	m.entries = append(m.entries, func(g *Graph) error {
		return g.RegisterInstance(spec, value)
	})
	return m
}

// Factory adds a factory registration.
func (m *Module) Factory(spec any, factory any, opts ...FactoryOption) *Module {
	m.entries = append(m.entries, func(g *Graph) error {
		return g.RegisterFactory(spec, factory, opts...)
	})
	return m
}

// Include appends every registration of other.
func (m *Module) Include(other *Module) *Module {
	m.entries = append(m.entries, other.entries...)
	return m
}

// AddTo applies the module to g, stopping at the first failing registration.
func (m *Module) AddTo(g *Graph) error {
	for i, entry := range m.entries {
		if err := entry(g); err != nil {
			return fmt.Errorf("module %s: registration %d: %w", m.name, i, err)
		}
	}
	return nil
}

// Load applies modules in order.
func (g *Graph) Load(modules ...*Module) error {
	for _, m := range modules {
		if err := m.AddTo(g); err != nil {
			return err
		}
		g.log.Debug("module loaded", map[string]interface{}{
			"module":          m.name,
			logger.FieldCount: m.Len(),
		})
	}
	return nil
}
