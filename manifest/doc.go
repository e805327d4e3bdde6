// Package manifest declares dependency graphs in YAML.
//
// A manifest lists providers by name. A provider with a value is an
// instance; any other provider is a factory whose result is the map of its
// resolved parameters, which makes manifests suitable for checking the
// shape of a graph before code exists:
//
//	name: orders
//	include:
//	  - base.yaml
//	providers:
//	  - name: db.dsn
//	    value: postgres://localhost/orders
//	  - name: pool
//	    scope: process
//	    params:
//	      - name: dsn
//	        inject: db.dsn
//	      - name: size
//	        default: 10
//
// Includes are resolved relative to the including file; a provider
// declared later replaces an earlier one of the same name.
package manifest
