package command

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/wiring/di"
)

// GraphReport describes the registered providers of a graph.
type GraphReport struct {
	ID        string           `json:"id" yaml:"id"`
	Providers []ProviderReport `json:"providers" yaml:"providers"`
	Levels    [][]string       `json:"levels,omitempty" yaml:"levels,omitempty"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// ProviderReport describes one provider.
type ProviderReport struct {
	Specification string        `json:"specification" yaml:"specification"`
	Type          string        `json:"type" yaml:"type"`
	Scope         string        `json:"scope" yaml:"scope"`
	Parameters    []ParamReport `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ParamReport describes one factory parameter.
type ParamReport struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	Dependency string `json:"dependency,omitempty" yaml:"dependency,omitempty"`
	Default    any    `json:"default,omitempty" yaml:"default,omitempty"`
}

func newGraphCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the providers of a graph grouped by dependency level",
		Long: Highlight("wiring graph -f <manifest> [-o json|yaml]") + "\n\n" +
			"Print every registered provider with its scope and parameters.\n" +
			"Providers are grouped into levels; a level only depends on earlier ones.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := openApp(global, newLogger(global, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() { _ = app.Graph.Close() }()

			report := describeGraph(app.Graph)
			if global.Output != OutputHuman {
				return render(cmd.OutOrStdout(), global.Output, report)
			}
			writeGraph(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

// label renders a specification without quoting plain names.
func label(spec di.Specification) string {
	if spec.Kind() == di.KindName {
		return spec.Value().(string)
	}
	return spec.String()
}

func describeGraph(g *di.Graph) GraphReport {
	report := GraphReport{ID: g.ID()}
	for _, spec := range g.Specifications() {
		p, ok := g.Provider(spec)
		if !ok {
			continue
		}
		report.Providers = append(report.Providers, describeProvider(p))
	}

	levels, err := g.Levels()
	if err != nil {
		report.Error = err.Error()
		return report
	}
	for _, level := range levels {
		names := make([]string, 0, len(level))
		for _, spec := range level {
			names = append(names, label(spec))
		}
		report.Levels = append(report.Levels, names)
	}
	return report
}

func describeProvider(p di.Provider) ProviderReport {
	r := ProviderReport{
		Specification: label(p.Specification()),
		Type:          "factory",
		Scope:         string(p.ScopeType()),
	}
	if _, ok := p.(*di.InstanceProvider); ok {
		r.Type = "instance"
	}
	for _, param := range p.Params().Parameters() {
		pr := ParamReport{Name: param.Name, Kind: param.Kind.String()}
		if param.Kind == di.ParamInjected {
			pr.Dependency = label(param.Dependency)
		} else if param.HasDefault {
			pr.Default = param.Default
		}
		r.Parameters = append(r.Parameters, pr)
	}
	return r
}

func writeGraph(w io.Writer, r GraphReport) {
	fmt.Fprintf(w, "%s %s (%d providers)\n", Highlight("graph"), r.ID, len(r.Providers))
	byName := make(map[string]ProviderReport, len(r.Providers))
	for _, p := range r.Providers {
		byName[p.Specification] = p
	}

	if r.Error != "" {
		fmt.Fprintf(w, "%s %s\n", warnMark, r.Error)
		for _, p := range r.Providers {
			writeProvider(w, p)
		}
		return
	}
	for i, level := range r.Levels {
		fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprintf("level %d", i))
		for _, name := range level {
			writeProvider(w, byName[name])
		}
	}
}

func writeProvider(w io.Writer, p ProviderReport) {
	fmt.Fprintf(w, "  %s  %s, scope %s\n", p.Specification, p.Type, p.Scope)
	for _, param := range p.Parameters {
		switch {
		case param.Dependency != "":
			fmt.Fprintf(w, "    %s <- %s\n", param.Name, param.Dependency)
		case param.Default != nil:
			fmt.Fprintf(w, "    %s = %v\n", param.Name, param.Default)
		default:
			fmt.Fprintf(w, "    %s (required)\n", param.Name)
		}
	}
}
