package dag

// Graph declares nodes and the edges between them.
// An edge From -> To means From depends on To.
type Graph[K comparable] struct {
	order []K
	deps  map[K][]K
}

// Edge represents a dependency: From depends on To.
type Edge[K comparable] struct {
	From K
	To   K
}

// New creates an empty graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{deps: make(map[K][]K)}
}

// AddNode adds a node if it is not present yet.
func (g *Graph[K]) AddNode(k K) {
	if _, ok := g.deps[k]; ok {
		return
	}
	g.deps[k] = nil
	g.order = append(g.order, k)
}

// AddEdge records that from depends on to, adding both nodes as needed.
// Duplicate edges are kept once.
func (g *Graph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.deps[from] {
		if existing == to {
			return
		}
	}
	g.deps[from] = append(g.deps[from], to)
}

// Nodes returns the nodes in insertion order.
func (g *Graph[K]) Nodes() []K {
	out := make([]K, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the direct dependencies of k in insertion order.
func (g *Graph[K]) Dependencies(k K) []K {
	out := make([]K, len(g.deps[k]))
	copy(out, g.deps[k])
	return out
}

// Edges returns every edge, grouped by dependant in insertion order.
func (g *Graph[K]) Edges() []Edge[K] {
	var edges []Edge[K]
	for _, from := range g.order {
		for _, to := range g.deps[from] {
			edges = append(edges, Edge[K]{From: from, To: to})
		}
	}
	return edges
}

// Has reports whether k is a node of the graph.
func (g *Graph[K]) Has(k K) bool {
	_, ok := g.deps[k]
	return ok
}

// Len returns the number of nodes.
func (g *Graph[K]) Len() int {
	return len(g.order)
}
