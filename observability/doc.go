// Package observability wires OpenTelemetry into a dependency graph.
//
// Tracing and metrics are exported over OTLP/HTTP:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing"))
//	defer mp.Shutdown(ctx)
//
// GraphObserver turns every provider materialization into a "di.provide"
// span and records counters and durations per specification:
//
//	obs, err := observability.NewGraphObserver(
//	    observability.Tracer(observability.InstrumentationName),
//	    observability.Meter(observability.InstrumentationName),
//	)
//	g := di.New(di.WithObserver(obs))
//
// Health reports whether a graph validates:
//
//	health := observability.NewServiceHealth("billing", "1.0.0")
//	health.AddComponent(observability.GraphChecker{Graph: g}.CheckHealth(ctx))
package observability
