// Package component manages the lifecycle of long-lived parts of an
// application: components start in registration order and stop in reverse.
//
// GraphComponent adapts a di.Graph to the lifecycle: Start validates and
// warms the graph, Stop closes its cached singletons.
package component
