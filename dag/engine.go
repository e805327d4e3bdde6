package dag

import (
	"context"
	"sync"
	"time"
)

// NodeFunc is run once per node by the Engine.
type NodeFunc[K comparable] func(ctx context.Context, node K) error

// NodeFilter returns true if a node should run.
type NodeFilter[K comparable] func(node K) bool

// Engine runs a function over a graph in dependency order. Nodes of one
// level run concurrently.
type Engine struct {
	// MaxParallel limits concurrent nodes per level (0 = unlimited).
	MaxParallel int
}

// Execute runs fn for every node accepted by filter (nil accepts all),
// level by level. Execution stops after the first level that reports a
// failure; the failure is recorded in the Result, not returned.
func Execute[K comparable](ctx context.Context, e *Engine, g *Graph[K], filter NodeFilter[K], fn NodeFunc[K]) (*Result[K], error) {
	start := time.Now()

	levels, err := BuildLevels(g)
	if err != nil {
		return nil, err
	}

	result := &Result[K]{NodeResults: make(map[K]NodeResult)}

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var toRun []K
		for _, k := range level {
			if filter != nil && !filter(k) {
				result.NodeResults[k] = NodeResult{Status: StatusSkipped}
				continue
			}
			toRun = append(toRun, k)
		}
		if len(toRun) == 0 {
			continue
		}

		if failed := executeLevel(ctx, e, toRun, fn, result); failed {
			break
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (e *Engine) concurrency(levelSize int) int {
	if e == nil || e.MaxParallel <= 0 || e.MaxParallel > levelSize {
		return levelSize
	}
	return e.MaxParallel
}

func executeLevel[K comparable](ctx context.Context, e *Engine, nodes []K, fn NodeFunc[K], result *Result[K]) bool {
	var mu sync.Mutex
	var wg sync.WaitGroup
	failed := false

	sem := make(chan struct{}, e.concurrency(len(nodes)))

	for _, k := range nodes {
		wg.Add(1)
		go func(node K) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			nodeStart := time.Now()
			err := fn(ctx, node)
			nr := NodeResult{Status: StatusCompleted, Duration: time.Since(nodeStart)}
			if err != nil {
				nr.Status = StatusFailed
				nr.Error = err
			}

			mu.Lock()
			result.NodeResults[node] = nr
			if err != nil {
				failed = true
			}
			mu.Unlock()
		}(k)
	}

	wg.Wait()
	return failed
}
