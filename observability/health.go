package observability

import (
	"context"
	"strconv"

	"github.com/kbukum/wiring/di"
)

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates component health.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
}

// AddComponent adds a component result; down wins over degraded.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	switch h.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// GraphChecker reports a graph as down while it fails validation.
type GraphChecker struct {
	Name  string
	Graph *di.Graph
}

// CheckHealth validates the graph.
func (c GraphChecker) CheckHealth(context.Context) Health {
	name := c.Name
	if name == "" {
		name = "graph"
	}
	h := Health{
		Name:   name,
		Status: HealthStatusUp,
		Details: map[string]string{
			"graph_id":  c.Graph.ID(),
			"providers": strconv.Itoa(c.Graph.Len()),
		},
	}
	if err := c.Graph.Validate(); err != nil {
		h.Status = HealthStatusDown
		h.Message = err.Error()
		h.Details["code"] = string(di.ToAppError(err).Code)
	}
	return h
}
