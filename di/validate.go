package di

import (
	"github.com/kbukum/wiring/dag"
	"github.com/kbukum/wiring/logger"
)

// DependencyEdge links a dependant provider to one specification it injects.
type DependencyEdge struct {
	Dependant  Specification
	Dependency Specification
}

// Edges returns one edge per distinct injected dependency of every
// provider, in stable order.
func (g *Graph) Edges() []DependencyEdge {
	var edges []DependencyEdge
	for _, p := range g.sortedProviders() {
		for _, dep := range p.Dependencies() {
			edges = append(edges, DependencyEdge{Dependant: p.Specification(), Dependency: dep})
		}
	}
	return edges
}

// Validate checks the registry for self-dependencies, then missing
// dependencies, then cycles, and returns the first violation found. It has
// no side effects and can be called any number of times.
func (g *Graph) Validate() error {
	providers := g.sortedProviders()
	err := validateProviders(providers)
	if err != nil {
		g.log.Warn("graph validation failed", map[string]interface{}{
			logger.FieldError: err.Error(),
			logger.FieldCount: len(providers),
		})
		return err
	}
	g.log.Debug("graph validated", map[string]interface{}{logger.FieldCount: len(providers)})
	return nil
}

func validateProviders(providers []Provider) error {
	registered := make(map[Specification]struct{}, len(providers))
	for _, p := range providers {
		registered[p.Specification()] = struct{}{}
	}

	for _, p := range providers {
		for _, dep := range p.Dependencies() {
			if dep == p.Specification() {
				return &SelfDependencyError{Specification: dep}
			}
		}
	}

	for _, p := range providers {
		for _, dep := range p.Dependencies() {
			if _, ok := registered[dep]; !ok {
				return &MissingDependencyError{Dependency: dep, Dependant: p.Specification()}
			}
		}
	}

	if cycle := dependencyGraph(providers).FindCycle(); cycle != nil {
		return &DependencyCycleError{Cycle: cycle}
	}
	return nil
}

func dependencyGraph(providers []Provider) *dag.Graph[Specification] {
	d := dag.New[Specification]()
	for _, p := range providers {
		d.AddNode(p.Specification())
	}
	for _, p := range providers {
		for _, dep := range p.Dependencies() {
			d.AddEdge(p.Specification(), dep)
		}
	}
	return d
}

// Levels validates the graph and groups its specifications by dependency
// depth: level 0 has no dependencies and every specification comes after
// all of its dependencies.
func (g *Graph) Levels() ([][]Specification, error) {
	providers := g.sortedProviders()
	if err := validateProviders(providers); err != nil {
		return nil, err
	}
	levels, err := dag.BuildLevels(dependencyGraph(providers))
	if ce := dag.AsCycleError[Specification](err); ce != nil {
		return nil, &DependencyCycleError{Cycle: ce.Cycle}
	}
	return levels, err
}
