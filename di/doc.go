// Package di provides a dependency-injection graph.
//
// A Graph maps specifications (names, types or other comparable keys) to
// providers. A provider is either a literal instance or a factory function
// whose parameters are described by an InjectionSpec: each parameter is
// either supplied by the caller or injected from another specification of
// the same graph.
//
// # Registration
//
//	g := di.New()
//	_ = g.RegisterInstance("db.hostname", "example.com")
//	_ = g.RegisterFactory("db", NewConnection,
//	    di.WithParams(di.Inject("hostname", "db.hostname")),
//	    di.WithScope(di.ProcessScope),
//	)
//
// # Validation
//
// Validate reports self-dependencies, missing dependencies and cycles
// before anything is built. It is an explicit, on-demand pass:
//
//	if err := g.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Resolution
//
//	conn, err := di.Resolve[*Connection](g, "db")
//
// Acquire overrides parameters by position or name; Get binds positional
// values first and Named values by name:
//
//	v, err := g.Acquire("report", di.Arguments{1: "draft", "format": "pdf"})
//	v, err = g.Get("report", "q3", di.Named("format", "pdf"))
package di
