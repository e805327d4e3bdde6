package dag

import "time"

// Node statuses reported in a Result.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Result holds the outcome of an Engine run.
type Result[K comparable] struct {
	NodeResults map[K]NodeResult
	Duration    time.Duration
}

// NodeResult holds the outcome of one node.
type NodeResult struct {
	Status   string
	Duration time.Duration
	Error    error
}

// Err returns the first failure in iteration order of nodes, or nil.
func (r *Result[K]) Err(nodes []K) error {
	for _, k := range nodes {
		if nr, ok := r.NodeResults[k]; ok && nr.Error != nil {
			return nr.Error
		}
	}
	return nil
}
