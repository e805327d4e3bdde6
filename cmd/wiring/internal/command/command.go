package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/wiring/bootstrap"
	"github.com/kbukum/wiring/config"
	"github.com/kbukum/wiring/logger"
	"github.com/kbukum/wiring/manifest"
)

// Output formats.
const (
	OutputHuman = ""
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// errSilent is returned after a command already reported its failure.
var errSilent = errors.New("")

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	Manifest   string
	ConfigName string
	ConfigFile string
	EnvFile    string
	Output     string
	Debug      bool
}

func (o *GlobalOptions) validateOutput() error {
	switch o.Output {
	case OutputHuman, OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf("invalid output format %q: expected json or yaml", o.Output)
}

// Highlight renders a heading in the CLI accent colour.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✔")
	failMark = color.New(color.FgRed).Sprint("✘")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

// render writes v in the requested machine format.
func render(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func newLogger(opts *GlobalOptions, w io.Writer) *logger.Logger {
	if !opts.Debug {
		return logger.Nop()
	}
	cfg := logger.Config{Level: "debug", Format: logger.FormatConsole, NoColor: color.NoColor}
	return logger.NewWithWriter(&cfg, "wiring", w)
}

// openApp loads the manifest and settings and assembles an application
// around them without starting it.
func openApp(opts *GlobalOptions, log *logger.Logger) (*bootstrap.App, *manifest.Manifest, error) {
	if opts.Manifest == "" {
		return nil, nil, errors.New("a manifest is required (--file)")
	}
	m, err := manifest.Load(opts.Manifest)
	if err != nil {
		return nil, nil, err
	}
	mod, err := m.Module()
	if err != nil {
		return nil, nil, err
	}

	name := m.Name
	if name == "" {
		name = "wiring"
	}
	settings, err := loadSettings(opts, name)
	if err != nil {
		return nil, nil, err
	}

	app, err := bootstrap.New(settings,
		bootstrap.WithLogger(log),
		bootstrap.WithModules(mod),
		bootstrap.WithSummaryOutput(nil),
	)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("manifest loaded", logger.Fields("path", m.Path, logger.FieldCount, len(m.Providers)))
	return app, m, nil
}

func loadSettings(opts *GlobalOptions, name string) (*config.Settings, error) {
	if opts.ConfigFile == "" && opts.EnvFile == "" && opts.ConfigName == "" {
		return &config.Settings{Name: name, Graph: config.GraphConfig{Validate: true}}, nil
	}
	if opts.ConfigName != "" {
		name = opts.ConfigName
	}
	return config.LoadSettings(name,
		config.WithConfigFile(opts.ConfigFile),
		config.WithEnvFile(opts.EnvFile),
	)
}
