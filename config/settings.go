package config

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/kbukum/wiring/di"
	"github.com/kbukum/wiring/logger"
	"github.com/kbukum/wiring/validation"
)

// Settings is the configuration of an application graph.
type Settings struct {
	Name        string         `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string         `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string         `yaml:"version" mapstructure:"version"`
	Logging     logger.Config  `yaml:"logging" mapstructure:"logging"`
	Graph       GraphConfig    `yaml:"graph" mapstructure:"graph"`
	Tracing     TracingConfig  `yaml:"tracing" mapstructure:"tracing"`
	Metrics     MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Instances   map[string]any `yaml:"instances" mapstructure:"instances" validate:"dive,keys,specname,endkeys"`
}

// GraphConfig controls how the graph is checked and prepared at startup.
type GraphConfig struct {
	// ID fixes the graph identifier used in logs and spans.
	ID          string `yaml:"id" mapstructure:"id"`
	Validate    bool   `yaml:"validate" mapstructure:"validate"`
	Warm        bool   `yaml:"warm" mapstructure:"warm"`
	MaxParallel int    `yaml:"max_parallel" mapstructure:"max_parallel" validate:"gte=0"`
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// Defaults returns the values Viper falls back to for keys absent from
// every source.
func Defaults() map[string]any {
	return map[string]any{
		"environment":         "development",
		"graph.validate":      true,
		"tracing.endpoint":    "localhost:4318",
		"tracing.insecure":    true,
		"tracing.sample_rate": 1.0,
		"metrics.endpoint":    "localhost:4318",
		"metrics.insecure":    true,
		"metrics.interval":    "15s",
	}
}

// ApplyDefaults fills fields left empty by callers that build Settings in code.
func (s *Settings) ApplyDefaults() {
	if s.Environment == "" {
		s.Environment = "development"
	}
	if s.Environment == "development" && s.Logging.Level == "" {
		s.Logging.Level = "debug"
	}
	s.Logging.ApplyDefaults()
}

// Validate checks struct tags and cross-field rules, reporting every
// failing field at once.
func (s *Settings) Validate() error {
	v := validation.New()
	v.Merge("settings", validation.Validate(s))
	v.Merge("logging", s.Logging.Validate())
	v.OptionalUUID("graph.id", s.Graph.ID)
	v.Custom(!s.Graph.Warm || s.Graph.Validate, "graph.warm", "requires graph.validate")
	return v.Err()
}

// InstanceValues flattens Instances into dotted specification names.
func (s *Settings) InstanceValues() map[string]any {
	out := make(map[string]any)
	flatten("", s.Instances, out)
	return out
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}

// Module registers the settings under di.TypeOf[*Settings]() and every
// instance value under its flattened name.
func (s *Settings) Module() *di.Module {
	m := di.NewModule(fmt.Sprintf("config:%s", s.Name)).
		Instance(di.TypeOf[*Settings](), s)

	values := s.InstanceValues()
	for _, name := range slices.Sorted(maps.Keys(values)) {
		m.Instance(name, values[name])
	}
	return m
}
