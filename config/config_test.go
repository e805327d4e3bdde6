package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/wiring/di"
	"github.com/kbukum/wiring/errors"
	"github.com/kbukum/wiring/validation"
)

// testFS resolves files on disk and loads .env files through t.Setenv so
// variables do not leak between tests.
type testFS struct {
	t     *testing.T
	files map[string]bool
}

func (fs testFS) Exists(path string) bool {
	if fs.files != nil {
		return fs.files[path]
	}
	return OSFileSystem{}.Exists(path)
}

func (fs testFS) LoadEnv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for k, v := range values {
		if _, set := os.LookupEnv(k); !set {
			fs.t.Setenv(k, v)
		}
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const settingsYAML = `
name: orders
environment: staging
logging:
  level: warn
  format: json
graph:
  validate: true
  warm: true
  max_parallel: 4
tracing:
  enabled: true
  endpoint: collector:4318
  sample_rate: 0.25
instances:
  db:
    host: localhost
    port: 5432
  greeting: hello
`

func TestLoadSettings_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", settingsYAML)

	s, err := LoadSettings("orders", WithConfigFile(path), WithFileSystem(testFS{t: t}))
	require.NoError(t, err)

	assert.Equal(t, "orders", s.Name)
	assert.Equal(t, "staging", s.Environment)
	assert.Equal(t, "warn", s.Logging.Level)
	assert.Equal(t, "json", s.Logging.Format)
	assert.True(t, s.Graph.Validate)
	assert.True(t, s.Graph.Warm)
	assert.Equal(t, 4, s.Graph.MaxParallel)
	assert.True(t, s.Tracing.Enabled)
	assert.Equal(t, "collector:4318", s.Tracing.Endpoint)
	assert.InDelta(t, 0.25, s.Tracing.SampleRate, 1e-9)
	assert.False(t, s.Metrics.Enabled)
	assert.Equal(t, 15*time.Second, s.Metrics.Interval)

	assert.Equal(t, map[string]any{
		"db.host":  "localhost",
		"db.port":  5432,
		"greeting": "hello",
	}, s.InstanceValues())
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("bare", WithFileSystem(testFS{t: t, files: map[string]bool{}}))
	require.NoError(t, err)

	assert.Equal(t, "bare", s.Name)
	assert.Equal(t, "development", s.Environment)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.True(t, s.Graph.Validate)
	assert.False(t, s.Graph.Warm)
	assert.Equal(t, 1.0, s.Tracing.SampleRate)
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", settingsYAML)
	envPath := writeFile(t, dir, ".env", "GRAPH_MAX_PARALLEL=8\nTRACING_SAMPLE_RATE=0.5\n")
	t.Setenv("LOGGING_LEVEL", "error")

	s, err := LoadSettings("orders",
		WithConfigFile(path),
		WithEnvFile(envPath),
		WithFileSystem(testFS{t: t}),
	)
	require.NoError(t, err)

	assert.Equal(t, "error", s.Logging.Level)
	assert.Equal(t, 8, s.Graph.MaxParallel)
	assert.InDelta(t, 0.5, s.Tracing.SampleRate, 1e-9)
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: orders
environment: qa
graph:
  validate: false
  warm: true
  max_parallel: -1
  id: not-a-uuid
`)

	_, err := LoadSettings("orders", WithConfigFile(path), WithFileSystem(testFS{t: t}))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, errors.ErrCodeInvalidInput, appErr.Code)

	fields, ok := appErr.Details["fields"].([]validation.FieldError)
	require.True(t, ok)
	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	for _, want := range []string{"environment", "graph.max_parallel", "graph.id", "graph.warm"} {
		assert.True(t, got[want], "missing field error for %s in %v", want, fields)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	var s Settings
	err := Load("orders", &s, WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
	assert.Error(t, err)
}

func TestResolve_SearchOrder(t *testing.T) {
	fs := testFS{t: t, files: map[string]bool{
		"./config/config.yml":      true,
		"./config.yml":             true,
		"./.env":                   true,
		"./cmd/orders/.env.orders": true,
	}}

	files := Resolve("orders", LoaderConfig{FileSystem: fs})
	assert.Equal(t, "./config/config.yml", files.ConfigFile)
	assert.Equal(t, "./cmd/orders/.env.orders", files.EnvFile)

	explicit := Resolve("orders", LoaderConfig{FileSystem: fs, ConfigFile: "custom.yml", EnvFile: "custom.env"})
	assert.Equal(t, ResolvedFiles{ConfigFile: "custom.yml", EnvFile: "custom.env"}, explicit)

	none := Resolve("orders", LoaderConfig{FileSystem: testFS{t: t, files: map[string]bool{}}})
	assert.Equal(t, ResolvedFiles{}, none)
}

func TestEnvKeyVariants(t *testing.T) {
	assert.Equal(t,
		[]string{"graph_max_parallel", "graph.max_parallel", "graph_max.parallel"},
		envKeyVariants("GRAPH_MAX_PARALLEL"))
	assert.Equal(t, []string{"name"}, envKeyVariants("NAME"))
}

func TestSettings_ApplyDefaults(t *testing.T) {
	s := Settings{Name: "svc", Environment: "production"}
	s.ApplyDefaults()
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)

	dev := Settings{Name: "svc"}
	dev.ApplyDefaults()
	assert.Equal(t, "development", dev.Environment)
	assert.Equal(t, "debug", dev.Logging.Level)
	assert.NoError(t, dev.Validate())
}

func TestSettings_Module(t *testing.T) {
	s := &Settings{
		Name: "orders",
		Instances: map[string]any{
			"db":       map[string]any{"host": "localhost"},
			"greeting": "hello",
		},
	}
	m := s.Module()
	assert.Equal(t, "config:orders", m.Name())
	assert.Equal(t, 3, m.Len())

	g := di.New()
	require.NoError(t, g.Load(m))

	host, err := g.Get("db.host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	got, err := di.Resolve[*Settings](g, di.TypeOf[*Settings]())
	require.NoError(t, err)
	assert.Same(t, s, got)
}
