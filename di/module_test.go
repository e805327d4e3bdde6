package di

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_Load(t *testing.T) {
	t.Parallel()

	base := NewModule("base").Instance("greeting", "hello")
	app := NewModule("app").
		Include(base).
		Factory("message", func(greeting, name string) string { return greeting + " " + name },
			WithParams(Inject("greeting"), Default("name", "world")))

	assert.Equal(t, "app", app.Name())
	assert.Equal(t, 2, app.Len())

	g := newTestGraph(t)
	require.NoError(t, g.Load(app))
	require.NoError(t, g.Validate())

	msg, err := Resolve[string](g, "message")
	require.NoError(t, err)
	assert.Equal(t, "hello world", msg)
}

func TestModule_LoadStopsAtFirstError(t *testing.T) {
	t.Parallel()

	m := NewModule("broken").
		Instance("ok", 1).
		Factory("bad", func() int { return 0 }, WithScope("request")).
		Instance("never", 2)

	g := newTestGraph(t)
	err := g.Load(m)

	var scopeErr *UnknownScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Contains(t, err.Error(), "module broken: registration 1")
	assert.True(t, g.Has("ok"))
	assert.False(t, g.Has("never"))
}

func TestGraph_Warm(t *testing.T) {
	t.Parallel()

	var cfgBuilds, dbBuilds, handlerBuilds atomic.Int32
	g := newTestGraph(t, WithMaxParallel(2))
	require.NoError(t, g.RegisterFactory("config", func() string {
		cfgBuilds.Add(1)
		return "dsn"
	}, WithScope(ProcessScope)))
	require.NoError(t, g.RegisterFactory("db", func(dsn string) *testDB {
		dbBuilds.Add(1)
		return &testDB{connected: dsn == "dsn"}
	}, WithParams(Inject("dsn", "config")), WithScope(ProcessScope)))
	require.NoError(t, g.RegisterFactory("handler", func(db *testDB) *testService {
		handlerBuilds.Add(1)
		return &testService{ok: db.connected}
	}, WithParams(Inject("db"))))

	require.NoError(t, g.Warm(context.Background()))
	assert.Equal(t, int32(1), cfgBuilds.Load())
	assert.Equal(t, int32(1), dbBuilds.Load())
	assert.Equal(t, int32(0), handlerBuilds.Load(), "unscoped providers are not warmed")

	svc, err := Resolve[*testService](g, "handler")
	require.NoError(t, err)
	assert.True(t, svc.ok)
	assert.Equal(t, int32(1), dbBuilds.Load())
}

func TestGraph_WarmFailures(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("a", func(v any) any { return v }, WithParams(Inject("v", "a"))))
	var selfErr *SelfDependencyError
	assert.ErrorAs(t, g.Warm(context.Background()), &selfErr)

	boom := errors.New("boom")
	g = newTestGraph(t)
	require.NoError(t, g.RegisterFactory("broken", func() (int, error) { return 0, boom }, WithScope(ProcessScope)))
	assert.ErrorIs(t, g.Warm(context.Background()), boom)
}

func TestResolve_Typed(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t)
	require.NoError(t, g.RegisterInstance(TypeOf[*testDB](), &testDB{connected: true}))
	require.NoError(t, g.RegisterInstance("nothing", nil))

	db, err := Resolve[*testDB](g, TypeOf[*testDB]())
	require.NoError(t, err)
	assert.True(t, db.connected)

	_, err = Resolve[string](g, TypeOf[*testDB]())
	assert.Error(t, err)

	nothing, err := Resolve[*testDB](g, "nothing")
	require.NoError(t, err)
	assert.Nil(t, nothing)

	_, ok := TryResolve[*testDB](g, "missing")
	assert.False(t, ok)

	assert.NotPanics(t, func() { MustResolve[*testDB](g, TypeOf[*testDB]()) })
	assert.Panics(t, func() { MustResolve[*testDB](g, "missing") })
}
