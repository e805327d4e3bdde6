package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/wiring/di"
)

// GraphComponent runs a di.Graph as a component.
type GraphComponent struct {
	name  string
	graph *di.Graph

	validate func(ctx context.Context, g *di.Graph) error
	warm     func(ctx context.Context, g *di.Graph) error

	mu      sync.RWMutex
	started bool
	lastErr error
}

// GraphOption configures a GraphComponent.
type GraphOption func(*GraphComponent)

// WithValidation validates the graph on Start using fn, or Graph.Validate
// when fn is nil.
func WithValidation(fn func(ctx context.Context, g *di.Graph) error) GraphOption {
	return func(c *GraphComponent) {
		if fn == nil {
			fn = func(_ context.Context, g *di.Graph) error { return g.Validate() }
		}
		c.validate = fn
	}
}

// WithWarmUp builds scoped providers on Start using fn, or Graph.Warm when
// fn is nil.
func WithWarmUp(fn func(ctx context.Context, g *di.Graph) error) GraphOption {
	return func(c *GraphComponent) {
		if fn == nil {
			fn = func(ctx context.Context, g *di.Graph) error { return g.Warm(ctx) }
		}
		c.warm = fn
	}
}

// NewGraphComponent wraps g.
func NewGraphComponent(name string, g *di.Graph, opts ...GraphOption) *GraphComponent {
	c := &GraphComponent{name: name, graph: g}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GraphComponent) Name() string { return c.name }

// Graph returns the wrapped graph.
func (c *GraphComponent) Graph() *di.Graph { return c.graph }

// Start validates and warms the graph as configured.
func (c *GraphComponent) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.validate != nil {
		if err := c.validate(ctx, c.graph); err != nil {
			c.lastErr = err
			return fmt.Errorf("validating graph: %w", err)
		}
	}
	if c.warm != nil {
		if err := c.warm(ctx, c.graph); err != nil {
			c.lastErr = err
			return fmt.Errorf("warming graph: %w", err)
		}
	}
	c.started = true
	c.lastErr = nil
	return nil
}

// Stop closes every cached value of the graph that implements io.Closer.
func (c *GraphComponent) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	return c.graph.Close()
}

// Health reports unhealthy while the graph fails validation or its last
// start failed.
func (c *GraphComponent) Health(context.Context) Health {
	c.mu.RLock()
	lastErr, started := c.lastErr, c.started
	c.mu.RUnlock()

	h := Health{Name: c.name, Status: StatusHealthy}
	switch err := c.graph.Validate(); {
	case err != nil:
		h.Status, h.Message = StatusUnhealthy, err.Error()
	case lastErr != nil:
		h.Status, h.Message = StatusUnhealthy, lastErr.Error()
	case !started:
		h.Status, h.Message = StatusDegraded, "not started"
	}
	return h
}

// Describe reports the graph in the startup summary.
func (c *GraphComponent) Describe() Description {
	return Description{
		Name:    c.name,
		Type:    "graph",
		Details: fmt.Sprintf("id=%s providers=%d", c.graph.ID(), c.graph.Len()),
	}
}
