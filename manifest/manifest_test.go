package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/wiring/di"
	"github.com/kbukum/wiring/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func buildGraph(t *testing.T, m *Manifest) *di.Graph {
	t.Helper()
	mod, err := m.Module()
	require.NoError(t, err)
	g := di.New(di.WithLogger(logger.Nop()))
	require.NoError(t, g.Load(mod))
	return g
}

const ordersManifest = `
name: orders
providers:
  - name: db.dsn
    value: postgres://localhost/orders
  - name: pool
    scope: process
    params:
      - name: dsn
        inject: db.dsn
      - name: size
        default: 10
  - name: handler
    params:
      - name: pool
        inject: pool
      - name: verbose
`

func TestParse(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(ordersManifest))
	require.NoError(t, err)

	assert.Equal(t, "orders", m.Name)
	require.Len(t, m.Providers, 3)
	assert.True(t, m.Providers[0].IsInstance())
	assert.False(t, m.Providers[1].IsInstance())
	assert.Equal(t, "process", m.Providers[1].Scope)
	assert.Equal(t, "db.dsn", m.Providers[1].Params[0].Inject)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("providers: {"))
	require.Error(t, err)
}

func TestModule_Resolve(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(ordersManifest))
	require.NoError(t, err)
	g := buildGraph(t, m)

	require.NoError(t, g.Validate())

	pool, err := di.Resolve[map[string]any](g, "pool")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dsn": "postgres://localhost/orders", "size": 10}, pool)

	handler, err := g.Acquire("handler", di.Arguments{"verbose": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"pool": pool, "verbose": true}, handler)

	_, err = g.Acquire("handler", nil)
	require.ErrorIs(t, err, di.ErrMissingArgument)
}

func TestModule_ProcessScopeCaches(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(ordersManifest))
	require.NoError(t, err)
	g := buildGraph(t, m)

	first, err := g.Get("pool")
	require.NoError(t, err)
	second, err := g.Get("pool", "other")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestModule_MissingDependency(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(`
name: broken
providers:
  - name: service
    params:
      - name: db
        inject: database
`))
	require.NoError(t, err)
	g := buildGraph(t, m)

	var missing *di.MissingDependencyError
	require.ErrorAs(t, g.Validate(), &missing)
	assert.Equal(t, di.Name("database"), missing.Dependency)
}

func TestModule_UnknownScope(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(`
name: scoped
providers:
  - name: service
    scope: request
`))
	require.NoError(t, err)
	mod, err := m.Module()
	require.NoError(t, err)

	var unknown *di.UnknownScopeError
	require.ErrorAs(t, di.New(di.WithLogger(logger.Nop())).Load(mod), &unknown)
}

func TestModule_ProviderWithoutName(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte("name: x\nproviders:\n  - value: 1\n"))
	require.NoError(t, err)
	_, err = m.Module()
	require.Error(t, err)
}

func TestLoad_Includes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "shared"), 0o700))
	writeFile(t, filepath.Join(dir, "shared"), "base.yaml", `
name: base
providers:
  - name: db.dsn
    value: postgres://base
  - name: region
    value: eu-west-1
`)
	path := writeFile(t, dir, "app.yaml", `
name: app
include:
  - shared/base.yaml
providers:
  - name: db.dsn
    value: postgres://override
  - name: client
    params:
      - name: dsn
        inject: db.dsn
`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "app", m.Name)
	assert.Equal(t, path, m.Path)

	names := make([]string, 0, len(m.Providers))
	for _, p := range m.Providers {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"db.dsn", "region", "client"}, names)

	g := buildGraph(t, m)
	client, err := di.Resolve[map[string]any](g, "client")
	require.NoError(t, err)
	assert.Equal(t, "postgres://override", client["dsn"])
}

func TestLoad_IncludeCycle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: a\ninclude: [b.yaml]\n")
	path := writeFile(t, dir, "b.yaml", "name: b\ninclude: [a.yaml]\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
