package dag

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Level 0 holds nodes without dependencies; every node appears after all
// of its dependencies. Nodes within the same level are independent of each
// other. A cycle yields a *CycleError.
func BuildLevels[K comparable](g *Graph[K]) ([][]K, error) {
	remaining := make(map[K]int, len(g.order))
	dependants := make(map[K][]K)

	for _, k := range g.order {
		remaining[k] = len(g.deps[k])
		for _, dep := range g.deps[k] {
			dependants[dep] = append(dependants[dep], k)
		}
	}

	var queue []K
	for _, k := range g.order {
		if remaining[k] == 0 {
			queue = append(queue, k)
		}
	}

	var levels [][]K
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []K
		for _, k := range queue {
			for _, d := range dependants[k] {
				remaining[d]--
				if remaining[d] == 0 {
					next = append(next, d)
				}
			}
		}
		queue = next
	}

	if visited != len(g.order) {
		return nil, &CycleError[K]{Cycle: g.FindCycle()}
	}
	return levels, nil
}
