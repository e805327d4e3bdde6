package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/wiring/di"
	"github.com/kbukum/wiring/logger"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	calls    *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, "start:"+m.name)
	}
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, "stop:"+m.name)
	}
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) Health { return m.health }

func newRegistry() *Registry { return NewRegistry(logger.Nop()) }

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.Register(&mockComponent{name: "db"}))
	assert.Error(t, r.Register(&mockComponent{name: "db"}))
	assert.Len(t, r.All(), 1)
	assert.NotNil(t, r.Get("db"))
	assert.Nil(t, r.Get("cache"))
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var calls []string
	r := newRegistry()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, r.Register(&mockComponent{name: name, calls: &calls}))
	}

	require.NoError(t, r.StartAll(context.Background()))
	require.NoError(t, r.StopAll(context.Background()))
	assert.Equal(t, []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}, calls)
}

func TestRegistry_StartFailureStopsStartedOnly(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	r := newRegistry()
	require.NoError(t, r.Register(&mockComponent{name: "a", calls: &calls}))
	require.NoError(t, r.Register(&mockComponent{name: "b", calls: &calls, startErr: boom}))
	require.NoError(t, r.Register(&mockComponent{name: "c", calls: &calls}))

	err := r.StartAll(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NoError(t, r.StopAll(context.Background()))
	assert.Equal(t, []string{"start:a", "start:b", "stop:a"}, calls)
}

func TestRegistry_StopJoinsErrors(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	r := newRegistry()
	require.NoError(t, r.Register(&mockComponent{name: "a", stopErr: e1}))
	require.NoError(t, r.Register(&mockComponent{name: "b", stopErr: e2}))
	require.NoError(t, r.StartAll(context.Background()))

	err := r.StopAll(context.Background())
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestRegistry_HealthAll(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.Register(&mockComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}}))
	require.NoError(t, r.Register(&mockComponent{name: "b", health: Health{Name: "b", Status: StatusDegraded}}))

	assert.Equal(t, []Health{
		{Name: "a", Status: StatusHealthy},
		{Name: "b", Status: StatusDegraded},
	}, r.HealthAll(context.Background()))
}

func TestRegistry_RegisterFromGraph(t *testing.T) {
	g := di.New(di.WithLogger(logger.Nop()))
	require.NoError(t, g.RegisterFactory("worker", func() Component {
		return &mockComponent{name: "worker"}
	}, di.WithScope(di.ProcessScope)))
	require.NoError(t, g.RegisterInstance("not-a-component", 42))

	r := newRegistry()
	require.NoError(t, r.RegisterFromGraph(g, "worker"))
	assert.NotNil(t, r.Get("worker"))

	assert.Error(t, r.RegisterFromGraph(g, "not-a-component"))
	assert.Error(t, r.RegisterFromGraph(g, "missing"))
}

type resource struct{ closed bool }

func (r *resource) Close() error {
	r.closed = true
	return nil
}

func TestGraphComponent_Lifecycle(t *testing.T) {
	g := di.New(di.WithLogger(logger.Nop()))
	res := &resource{}
	builds := 0
	require.NoError(t, g.RegisterFactory("res", func() *resource {
		builds++
		return res
	}, di.WithScope(di.ProcessScope)))

	c := NewGraphComponent("graph", g, WithValidation(nil), WithWarmUp(nil))
	assert.Equal(t, StatusDegraded, c.Health(context.Background()).Status)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 1, builds, "warm-up builds process-scoped providers")
	assert.Equal(t, StatusHealthy, c.Health(context.Background()).Status)

	require.NoError(t, c.Stop(context.Background()))
	assert.True(t, res.closed)

	d := c.Describe()
	assert.Equal(t, "graph", d.Type)
	assert.Contains(t, d.Details, "providers=1")
}

func TestGraphComponent_StartFailsOnInvalidGraph(t *testing.T) {
	g := di.New(di.WithLogger(logger.Nop()))
	require.NoError(t, g.RegisterFactory("a", func(v any) any { return v }, di.WithParams(di.Inject("v", "missing"))))

	c := NewGraphComponent("graph", g, WithValidation(nil))
	err := c.Start(context.Background())

	var missing *di.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	h := c.Health(context.Background())
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Contains(t, h.Message, `"missing"`)
}

func TestGraphComponent_CustomHooks(t *testing.T) {
	g := di.New(di.WithLogger(logger.Nop()))
	var calls []string
	c := NewGraphComponent("graph", g,
		WithValidation(func(context.Context, *di.Graph) error { calls = append(calls, "validate"); return nil }),
		WithWarmUp(func(context.Context, *di.Graph) error { calls = append(calls, "warm"); return nil }),
	)
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, []string{"validate", "warm"}, calls)
	assert.Same(t, g, c.Graph())
}
