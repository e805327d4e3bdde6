// Package errors provides the structured error type shared by wiring
// packages. Every dependency-graph failure can be rendered as an AppError
// with a machine-readable code and details naming the offending
// specifications.
package errors
