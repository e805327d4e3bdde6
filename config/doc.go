// Package config loads the settings of an application built on a
// dependency graph.
//
// Load reads config.yml with Viper, loads a .env file with godotenv and
// overlays environment variables: GRAPH_MAX_PARALLEL=4 sets
// graph.max_parallel.
//
//	settings, err := config.LoadSettings("orders")
//	if err != nil {
//	    return err
//	}
//	err = graph.Load(settings.Module())
//
// Keys under instances become instance providers; nested maps are
// flattened to dotted names, so
//
//	instances:
//	  db:
//	    host: localhost
//
// registers "db.host".
package config
