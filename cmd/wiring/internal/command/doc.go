// Package command implements the wiring CLI: validating, inspecting and
// resolving dependency graphs declared in manifests.
package command
