// Package bootstrap assembles an application around a dependency graph.
//
// New applies and validates the settings, initializes the logger, builds
// the graph from the settings' instances and the given modules, and
// registers it as the first component. Run starts the components
// (validating and warming the graph as configured), waits for a shutdown
// signal and stops everything in reverse order, closing cached singletons.
//
//	settings, _ := config.LoadSettings("orders")
//	app, err := bootstrap.New(settings, bootstrap.WithModules(orders.Module()))
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
package bootstrap
