// Package version reports build information of the wiring binary.
//
// Values are injected at link time and fall back to the module build info:
//
//	go build -ldflags "-X github.com/kbukum/wiring/version.Version=1.2.0" ./cmd/wiring
package version
