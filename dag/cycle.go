package dag

import (
	"errors"
	"fmt"
	"strings"
)

// CycleError reports a closed loop of edges. Cycle starts and ends with
// the same node.
type CycleError[K comparable] struct {
	Cycle []K
}

func (e *CycleError[K]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		parts[i] = fmt.Sprint(k)
	}
	return "dag: cycle detected: " + strings.Join(parts, " -> ")
}

// AsCycleError returns the CycleError in err's chain, or nil.
func AsCycleError[K comparable](err error) *CycleError[K] {
	var ce *CycleError[K]
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	done
)

// FindCycle runs a depth-first traversal from every unvisited node and
// returns the first cycle found, or nil. The returned slice runs from the
// first repeated node along the recursion stack back to that node.
func (g *Graph[K]) FindCycle() []K {
	state := make(map[K]visitState, len(g.order))
	var stack []K

	var visit func(k K) []K
	visit = func(k K) []K {
		state[k] = onStack
		stack = append(stack, k)
		for _, dep := range g.deps[k] {
			switch state[dep] {
			case onStack:
				return closeCycle(stack, dep)
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[k] = done
		return nil
	}

	for _, k := range g.order {
		if state[k] != unvisited {
			continue
		}
		if cycle := visit(k); cycle != nil {
			return cycle
		}
	}
	return nil
}

func closeCycle[K comparable](stack []K, repeated K) []K {
	start := 0
	for i, k := range stack {
		if k == repeated {
			start = i
			break
		}
	}
	cycle := make([]K, 0, len(stack)-start+1)
	cycle = append(cycle, stack[start:]...)
	return append(cycle, repeated)
}
