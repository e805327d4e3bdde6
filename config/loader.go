package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/wiring/logger"
)

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem uses the real file system and process environment.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds the loader options.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	Defaults   map[string]any
}

// LoaderOption configures Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the file system, mainly for tests.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile skips the search and reads path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile skips the search and loads path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithDefaults sets fallback values for absent keys.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// ResolvedFiles are the files Load reads.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolve returns the explicit files of lc or searches the standard
// locations for name.
func Resolve(name string, lc LoaderConfig) ResolvedFiles {
	fs := lc.FileSystem
	if fs == nil {
		fs = OSFileSystem{}
	}
	files := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(fs, configCandidates(name))
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(fs, envCandidates(name))
	}
	return files
}

func configCandidates(name string) []string {
	var paths []string
	for _, dir := range []string{"./cmd/" + name, "./config/" + name, "./config", "."} {
		for _, file := range []string{"config.yml", "config.yaml"} {
			paths = append(paths, dir+"/"+file)
		}
	}
	return paths
}

func envCandidates(name string) []string {
	var paths []string
	for _, file := range []string{".env." + name, ".env"} {
		for _, dir := range []string{"./cmd/" + name, "./config", "."} {
			paths = append(paths, dir+"/"+file)
		}
	}
	return paths
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// Load reads the configuration of name into cfg: defaults, then the YAML
// file, then environment variables (including those from the .env file).
func Load(name string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}
	files := Resolve(name, lc)
	log := logger.WithComponent("config")

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", logger.Fields("path", files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decoding config for %s: %w", name, err)
	}

	log.Debug("configuration loaded", logger.Fields(
		"name", name,
		"config_file", files.ConfigFile,
		"env_file", files.EnvFile,
	))
	return nil
}

// LoadSettings loads, defaults and validates Settings for name.
func LoadSettings(name string, opts ...LoaderOption) (*Settings, error) {
	s := &Settings{}
	opts = append([]LoaderOption{WithDefaults(Defaults())}, opts...)
	if err := Load(name, s, opts...); err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = name
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// bindEnv sets every variable under each key it may address.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an UPPER_SNAKE variable to the dotted keys it may
// address, splitting at each underscore once:
//
//	GRAPH_MAX_PARALLEL -> graph_max_parallel, graph.max_parallel, graph_max.parallel
func envKeyVariants(env string) []string {
	lower := strings.ToLower(env)
	parts := strings.Split(lower, "_")
	variants := []string{lower}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}
