package di

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/wiring/logger"
)

// acquireGraph registers
//
//	function(a, b, c, foo=None, bar=None)
//
// with a, c and foo injected from the integer keys 1, 3 and 4.
func acquireGraph(t *testing.T) *Graph {
	t.Helper()
	g := newTestGraph(t)
	require.NoError(t, g.RegisterInstance(1, 11))
	require.NoError(t, g.RegisterInstance(2, 22))
	require.NoError(t, g.RegisterInstance(3, 33))
	require.NoError(t, g.RegisterInstance(4, 44))
	require.NoError(t, g.RegisterFactory("function",
		func(a, b, c, foo, bar any) []any { return []any{a, b, c, foo, bar} },
		WithParams(
			Inject("a", 1),
			Arg("b"),
			Inject("c", 3),
			Inject("foo", 4),
			Default("bar", nil),
		)))
	return g
}

func TestAcquire_Arguments(t *testing.T) {
	t.Parallel()
	g := acquireGraph(t)

	v, err := g.Acquire("function", Arguments{1: 22, "bar": 55})
	require.NoError(t, err)
	assert.Equal(t, []any{11, 22, 33, 44, 55}, v)

	v, err = g.Acquire("function", Arguments{1: 22, "foo": 100, "bar": 55})
	require.NoError(t, err)
	assert.Equal(t, []any{11, 22, 33, 100, 55}, v)

	v, err = g.Acquire("function", Arguments{0: "override", 1: 22})
	require.NoError(t, err)
	assert.Equal(t, []any{"override", 22, 33, 44, nil}, v)
}

func TestAcquire_InvalidKeys(t *testing.T) {
	t.Parallel()
	g := acquireGraph(t)

	tests := []struct {
		name string
		args Arguments
	}{
		{"composite key", Arguments{[3]string{"foo", "bar", "baz"}: 1}},
		{"unknown name", Arguments{"nope": 1}},
		{"position out of range", Arguments{5: 1}},
		{"negative position", Arguments{-1: 1}},
		{"float key", Arguments{1.5: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Acquire("function", tc.args)
			assert.ErrorIs(t, err, ErrInvalidArgumentKey)
		})
	}
}

func TestAcquire_NameWinsOverPosition(t *testing.T) {
	t.Parallel()
	g := acquireGraph(t)

	v, err := g.Acquire("function", Arguments{1: 22, 3: "positional", "foo": "named"})
	require.NoError(t, err)
	assert.Equal(t, []any{11, 22, 33, "named", nil}, v)
}

func TestAcquire_MissingDirectArgument(t *testing.T) {
	t.Parallel()
	g := acquireGraph(t)

	_, err := g.Acquire("function", nil)
	require.ErrorIs(t, err, ErrMissingArgument)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestAcquire_NotRegistered(t *testing.T) {
	t.Parallel()
	g := newTestGraph(t)

	_, err := g.Acquire("ghost", nil)
	var notFound *NotRegisteredError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, Name("ghost"), notFound.Specification)

	require.NoError(t, g.RegisterFactory("needs-ghost", func(v any) any { return v },
		WithParams(Inject("v", "ghost"))))
	_, err = g.Get("needs-ghost")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, Name("ghost"), notFound.Specification)
}

func TestAcquire_ArgumentType(t *testing.T) {
	t.Parallel()
	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("double", func(n int) int { return n * 2 }, WithParams(Arg("n"))))

	_, err := g.Get("double", "four")
	assert.ErrorIs(t, err, ErrArgumentType)

	v, err := g.Get("double", 4)
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestGet_Arguments(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t)
	require.NoError(t, g.RegisterInstance(1, 11))
	require.NoError(t, g.RegisterFactory("function",
		func(a, b, c any) []any { return []any{a, b, c} },
		WithParams(Arg("a"), Default("b", nil), Inject("c", 1)),
	))

	v, err := g.Get("function", 33, Named("b", 22))
	require.NoError(t, err)
	assert.Equal(t, []any{33, 22, 11}, v)

	v, err = g.Get("function", 33, Named("b", 22), Named("c", 44))
	require.NoError(t, err)
	assert.Equal(t, []any{33, 22, 44}, v)

	v, err = g.Get("function", 33, 22, 44)
	require.NoError(t, err)
	assert.Equal(t, []any{33, 22, 44}, v)

	_, err = g.Get("function", 1, 2, 3, 4)
	assert.ErrorIs(t, err, ErrInvalidArgumentKey)
}

func TestGet_FactoryErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("broken", func() (int, error) { return 0, boom }, WithScope(ProcessScope)))

	_, err := g.Get("broken")
	assert.Same(t, boom, err)

	scope, ok := g.Scope(ProcessScope)
	require.True(t, ok)
	_, cached := scope.Fetch(Name("broken"))
	assert.False(t, cached, "failed factories must not be cached")
}

func TestGet_ContextFactory(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("from-ctx",
		func(ctx context.Context, suffix string) string {
			return ctx.Value(ctxKey{}).(string) + suffix
		},
		WithParams(Default("suffix", "!")),
	))

	ctx := context.WithValue(context.Background(), ctxKey{}, "hello")
	v, err := g.GetContext(ctx, "from-ctx")
	require.NoError(t, err)
	assert.Equal(t, "hello!", v)
}

func TestGet_RuntimeCycleDetected(t *testing.T) {
	t.Parallel()

	identity := func(v any) any { return v }
	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("a", identity, WithParams(Inject("b")), WithScope(ProcessScope)))
	require.NoError(t, g.RegisterFactory("b", identity, WithParams(Inject("a")), WithScope(ProcessScope)))

	_, err := g.Get("a")
	var cycleErr *DependencyCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []Specification{Name("a"), Name("b"), Name("a")}, cycleErr.Cycle)
}

func TestScope_ProcessVersusNone(t *testing.T) {
	t.Parallel()

	var counter int
	next := func() int {
		counter++
		return counter
	}

	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("scoped", next, WithScope(ProcessScope)))
	require.NoError(t, g.RegisterFactory("unscoped", next))

	for i := 0; i < 3; i++ {
		v, err := g.Get("scoped")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}
	for _, want := range []int{2, 3, 4} {
		v, err := g.Get("unscoped")
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

func TestScope_CachedValueIgnoresArguments(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("greeting", func(name string) string { return "hi " + name },
		WithParams(Default("name", "first")), WithScope(ProcessScope)))

	v, err := g.Get("greeting")
	require.NoError(t, err)
	require.Equal(t, "hi first", v)

	v, err = g.Get("greeting", "second")
	require.NoError(t, err)
	assert.Equal(t, "hi first", v)
}

func TestScope_ConcurrentFirstAccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	g := newTestGraph(t)
	require.NoError(t, g.RegisterFactory("slow", func() *testDB {
		calls.Add(1)
		<-release
		return &testDB{connected: true}
	}, WithScope(ProcessScope)))

	const workers = 16
	results := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := g.Get("slow")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []Specification
	finished []observed
}

type observed struct {
	spec   Specification
	cached bool
	err    error
}

func (o *recordingObserver) ProviderStarted(ctx context.Context, spec Specification) context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, spec)
	return ctx
}

func (o *recordingObserver) ProviderFinished(_ context.Context, spec Specification, cached bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, observed{spec: spec, cached: cached, err: err})
}

func TestObserver_Notified(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	g := newTestGraph(t, WithObserver(obs))
	require.NoError(t, g.RegisterInstance("host", "localhost"))
	require.NoError(t, g.RegisterFactory("client", func(h string) string { return "client@" + h },
		WithParams(Inject("h", "host")), WithScope(ProcessScope)))

	_, err := g.Get("client")
	require.NoError(t, err)
	_, err = g.Get("client")
	require.NoError(t, err)

	assert.Equal(t, []Specification{Name("client"), Name("host"), Name("client")}, obs.started)
	assert.Equal(t, []observed{
		{spec: Name("host")},
		{spec: Name("client")},
		{spec: Name("client"), cached: true},
	}, obs.finished)
}

func TestGet_LogsFactoryInvocation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)
	g := New(WithLogger(log))
	require.NoError(t, g.RegisterFactory("answer", func() int { return 42 }, WithScope(ProcessScope)))
	buf.Reset()

	_, err := g.Get("answer")
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] != "invoking factory" {
			continue
		}
		found = true
		assert.Equal(t, `"answer"`, entry[logger.FieldSpecification])
		assert.Equal(t, string(ProcessScope), entry[logger.FieldScope])
	}
	assert.True(t, found, "factory invocation was not logged")
}
