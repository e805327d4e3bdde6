// Package validation checks configuration before a graph is assembled.
//
// Struct tags are evaluated with go-playground/validator. Field paths in
// errors use mapstructure keys, so they match the configuration file:
//
//	type GraphConfig struct {
//	    MaxParallel int    `mapstructure:"max_parallel" validate:"gte=0"`
//	    DefaultScope string `mapstructure:"default_scope" validate:"omitempty,scopetype"`
//	}
//	err := validation.Validate(cfg) // graph.max_parallel: must be at least 0
//
// Cross-field rules use the collecting Validator:
//
//	v := validation.New()
//	v.OptionalUUID("graph.id", cfg.Graph.ID)
//	v.SpecificationName("instances", key)
//	err := v.Err()
package validation
