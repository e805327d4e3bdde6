package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/wiring/di"
)

// Manifest is a parsed manifest file.
type Manifest struct {
	Name      string     `yaml:"name"`
	Include   []string   `yaml:"include,omitempty"`
	Providers []Provider `yaml:"providers"`

	// Path is the file the manifest was read from.
	Path string `yaml:"-"`
}

// Provider declares one provider.
type Provider struct {
	Name   string    `yaml:"name"`
	Scope  string    `yaml:"scope,omitempty"`
	Value  yaml.Node `yaml:"value,omitempty"`
	Params []Param   `yaml:"params,omitempty"`
}

// Param declares one factory parameter. Inject names the provider to
// inject; otherwise Default, when present, is used for missing arguments.
type Param struct {
	Name    string    `yaml:"name"`
	Inject  string    `yaml:"inject,omitempty"`
	Default yaml.Node `yaml:"default,omitempty"`
}

// IsInstance reports whether the provider declares a literal value.
func (p Provider) IsInstance() bool {
	return !p.Value.IsZero()
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// Load reads path and every manifest it includes, transitively. The
// returned manifest holds the merged providers with includes first.
func Load(path string) (*Manifest, error) {
	return load(path, map[string]bool{})
}

func load(path string, stack map[string]bool) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if stack[abs] {
		return nil, fmt.Errorf("manifest: include cycle at %s", path)
	}
	stack[abs] = true
	defer delete(stack, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: parsing %s: %w", path, err)
	}
	m.Path = path

	var merged []Provider
	for _, inc := range m.Include {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(abs), inc)
		}
		child, err := load(inc, stack)
		if err != nil {
			return nil, err
		}
		merged = mergeProviders(merged, child.Providers)
	}
	m.Providers = mergeProviders(merged, m.Providers)
	return m, nil
}

func mergeProviders(base, overrides []Provider) []Provider {
	out := append([]Provider(nil), base...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Name] = i
	}
	for _, p := range overrides {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

// Module converts the manifest into registrations.
func (m *Manifest) Module() (*di.Module, error) {
	mod := di.NewModule(m.Name)
	for _, p := range m.Providers {
		if p.Name == "" {
			return nil, fmt.Errorf("manifest %s: provider without name", m.Name)
		}
		if p.IsInstance() {
			var v any
			if err := p.Value.Decode(&v); err != nil {
				return nil, fmt.Errorf("manifest %s: provider %s: %w", m.Name, p.Name, err)
			}
			mod.Instance(p.Name, v)
			continue
		}

		decls, names, err := p.declarations()
		if err != nil {
			return nil, fmt.Errorf("manifest %s: provider %s: %w", m.Name, p.Name, err)
		}
		opts := []di.FactoryOption{di.WithParams(decls...)}
		if p.Scope != "" {
			opts = append(opts, di.WithScope(di.ScopeType(p.Scope)))
		}
		mod.Factory(p.Name, paramsFactory(names), opts...)
	}
	return mod, nil
}

func (p Provider) declarations() ([]di.ParamDecl, []string, error) {
	decls := make([]di.ParamDecl, 0, len(p.Params))
	names := make([]string, 0, len(p.Params))
	for _, param := range p.Params {
		switch {
		case param.Inject != "":
			decls = append(decls, di.Inject(param.Name, param.Inject))
		case !param.Default.IsZero():
			var v any
			if err := param.Default.Decode(&v); err != nil {
				return nil, nil, fmt.Errorf("parameter %s: %w", param.Name, err)
			}
			decls = append(decls, di.Default(param.Name, v))
		default:
			decls = append(decls, di.Arg(param.Name))
		}
		names = append(names, param.Name)
	}
	return decls, names, nil
}

var (
	anyType = reflect.TypeFor[any]()
	mapType = reflect.TypeFor[map[string]any]()
)

// paramsFactory builds func(any, ..., any) map[string]any returning its
// arguments keyed by parameter name.
func paramsFactory(names []string) any {
	in := make([]reflect.Type, len(names))
	for i := range in {
		in[i] = anyType
	}
	ft := reflect.FuncOf(in, []reflect.Type{mapType}, false)
	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		out := make(map[string]any, len(args))
		for i, a := range args {
			out[names[i]] = a.Interface()
		}
		return []reflect.Value{reflect.ValueOf(out)}
	}).Interface()
}
