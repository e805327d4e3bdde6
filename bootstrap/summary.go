package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/wiring/component"
	"github.com/kbukum/wiring/di"
)

// Summary describes a started application.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	notes           []string
}

// NewSummary creates a summary for a service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// StartupDuration returns the recorded startup time.
func (s *Summary) StartupDuration() time.Duration { return s.startupDuration }

// AddNote appends a free-form line to the summary.
func (s *Summary) AddNote(note string) {
	s.notes = append(s.notes, note)
}

// Write renders the summary with the graph shape and live component health.
func (s *Summary) Write(w io.Writer, registry *component.Registry, g *di.Graph) {
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	if g != nil {
		writeGraph(w, g)
	}
	if registry != nil {
		writeComponents(w, registry)
	}
	if len(s.notes) > 0 {
		fmt.Fprintf(w, "\n📝 Notes\n")
		for i, n := range s.notes {
			fmt.Fprintf(w, "   %s %s\n", branch(i, len(s.notes)), n)
		}
	}
	fmt.Fprintln(w)
}

func writeGraph(w io.Writer, g *di.Graph) {
	scoped := map[di.ScopeType]int{}
	for _, spec := range g.Specifications() {
		if p, ok := g.Provider(spec); ok {
			scoped[p.ScopeType()]++
		}
	}

	fmt.Fprintf(w, "\n🧩 Graph %s\n", g.ID())
	lines := []string{
		fmt.Sprintf("providers: %d (process: %d, none: %d)", g.Len(), scoped[di.ProcessScope], scoped[di.NoScope]),
	}
	if levels, err := g.Levels(); err != nil {
		lines = append(lines, "❌ "+err.Error())
	} else {
		lines = append(lines, fmt.Sprintf("dependency levels: %d", len(levels)))
	}
	for i, l := range lines {
		fmt.Fprintf(w, "   %s %s\n", branch(i, len(lines)), l)
	}
}

func writeComponents(w io.Writer, registry *component.Registry) {
	all := registry.All()
	if len(all) == 0 {
		return
	}
	health := registry.HealthAll(context.Background())

	fmt.Fprintf(w, "\n📦 Components\n")
	healthy := 0
	for i, c := range all {
		h := health[i]
		if h.Status == component.StatusHealthy {
			healthy++
		}
		line := fmt.Sprintf("%s %s: %s", healthIcon(h.Status), c.Name(), strings.ToLower(string(h.Status)))
		if d, ok := c.(component.Describable); ok {
			if desc := d.Describe(); desc.Details != "" {
				line += " [" + desc.Details + "]"
			}
		}
		if h.Message != "" {
			line += " - " + h.Message
		}
		fmt.Fprintf(w, "   %s %s\n", branch(i, len(all)), line)
	}

	if healthy == len(all) {
		fmt.Fprintf(w, "✅ All components healthy (%d/%d)\n", healthy, len(all))
	} else {
		fmt.Fprintf(w, "⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(all))
	}
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
