package di

import "context"

// Observer is notified around every provider materialization, including
// scope cache hits. ProviderStarted may return a derived context; it is
// passed to the factory and to nested resolutions.
type Observer interface {
	ProviderStarted(ctx context.Context, spec Specification) context.Context
	ProviderFinished(ctx context.Context, spec Specification, cached bool, err error)
}

type nopObserver struct{}

func (nopObserver) ProviderStarted(ctx context.Context, _ Specification) context.Context { return ctx }
func (nopObserver) ProviderFinished(context.Context, Specification, bool, error)         {}
