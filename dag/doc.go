// Package dag provides a small directed graph over comparable keys.
//
// Edges point from a dependant to its dependency. The package answers the
// three questions a dependency graph needs: is there a cycle (FindCycle),
// in which order can the nodes be built (BuildLevels), and how can a
// function be run over every node with dependencies first (Engine).
//
// Iteration follows node insertion order, so callers that insert nodes in
// a stable order get reproducible cycles and levels.
package dag
