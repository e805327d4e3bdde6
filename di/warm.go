package di

import (
	"context"
	"time"

	"github.com/kbukum/wiring/dag"
	"github.com/kbukum/wiring/logger"
)

// Warm validates the graph and materializes every provider whose scope
// caches values, dependencies first. Providers of one dependency level are
// built concurrently, bounded by WithMaxParallel. The first failure is
// returned unchanged.
func (g *Graph) Warm(ctx context.Context) error {
	providers := g.sortedProviders()
	if err := validateProviders(providers); err != nil {
		return err
	}

	byspec := make(map[Specification]Provider, len(providers))
	for _, p := range providers {
		byspec[p.Specification()] = p
	}
	d := dependencyGraph(providers)

	start := time.Now()
	res, err := dag.Execute(ctx, g.engine, d,
		func(spec Specification) bool {
			p := byspec[spec]
			return p.ScopeType() != NoScope
		},
		func(ctx context.Context, spec Specification) error {
			r := &resolution{graph: g}
			_, err := r.provide(ctx, byspec[spec], nil)
			return err
		},
	)
	if err != nil {
		return err
	}

	warmed := 0
	for _, nr := range res.NodeResults {
		if nr.Status == dag.StatusCompleted {
			warmed++
		}
	}
	if err := res.Err(d.Nodes()); err != nil {
		g.log.Warn("graph warm-up failed", map[string]interface{}{
			logger.FieldError: err.Error(),
			logger.FieldCount: warmed,
		})
		return err
	}

	g.log.Info("graph warmed", logger.MergeDuration(map[string]interface{}{
		logger.FieldCount: warmed,
	}, time.Since(start)))
	return nil
}
