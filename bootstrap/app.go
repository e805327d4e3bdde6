package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/wiring/component"
	"github.com/kbukum/wiring/config"
	"github.com/kbukum/wiring/di"
	"github.com/kbukum/wiring/logger"
	"github.com/kbukum/wiring/observability"
)

// GraphComponentName is the registry name of the application graph.
const GraphComponentName = "graph"

// App owns the graph, the component registry and the telemetry providers
// of an application.
type App struct {
	Name       string
	Version    string
	Settings   *config.Settings
	Graph      *di.Graph
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	observer        *observability.GraphObserver
	gracefulTimeout time.Duration
	summaryOut      io.Writer
	shutdowns       []func(context.Context) error

	onConfigure []func(ctx context.Context, app *App) error
	onStart     []Hook
	onReady     []Hook
	onStop      []Hook
}

// New validates settings and assembles the application. Nothing is started.
func New(settings *config.Settings, opts ...Option) (*App, error) {
	if settings == nil {
		return nil, errors.New("bootstrap: settings are required")
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Name:            settings.Name,
		Version:         settings.Version,
		Settings:        settings,
		gracefulTimeout: o.gracefulTimeout,
		summaryOut:      o.summaryOut,
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&settings.Logging, settings.Name)
		logger.SetGlobalLogger(app.Logger)
	}

	graphOpts := []di.Option{
		di.WithLogger(app.Logger.WithComponent("di")),
		di.WithID(settings.Graph.ID),
		di.WithMaxParallel(settings.Graph.MaxParallel),
	}
	if settings.Tracing.Enabled || settings.Metrics.Enabled {
		obs, err := observability.NewGraphObserver(
			observability.Tracer(observability.InstrumentationName),
			observability.Meter(observability.InstrumentationName),
		)
		if err != nil {
			return nil, fmt.Errorf("creating graph observer: %w", err)
		}
		app.observer = obs
		graphOpts = append(graphOpts, di.WithObserver(obs))
	}
	app.Graph = di.New(append(graphOpts, o.graphOptions...)...)

	modules := append([]*di.Module{settings.Module(), app.module()}, o.modules...)
	if err := app.Graph.Load(modules...); err != nil {
		return nil, fmt.Errorf("loading modules: %w", err)
	}

	app.Components = component.NewRegistry(app.Logger.WithComponent("component"))
	if err := app.Components.Register(component.NewGraphComponent(GraphComponentName, app.Graph, app.graphLifecycle()...)); err != nil {
		return nil, err
	}

	app.Summary = NewSummary(settings.Name, settings.Version)
	return app, nil
}

// module exposes the application logger to factories.
func (a *App) module() *di.Module {
	return di.NewModule("bootstrap").
		Instance(di.TypeOf[*logger.Logger](), a.Logger)
}

func (a *App) graphLifecycle() []component.GraphOption {
	var opts []component.GraphOption
	if a.Settings.Graph.Validate {
		if a.observer != nil {
			opts = append(opts, component.WithValidation(a.observer.Validate))
		} else {
			opts = append(opts, component.WithValidation(nil))
		}
	}
	if a.Settings.Graph.Warm {
		if a.observer != nil {
			opts = append(opts, component.WithWarmUp(a.observer.Warm))
		} else {
			opts = append(opts, component.WithWarmUp(nil))
		}
	}
	return opts
}

// RegisterComponent adds c after the graph component.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback run after the components started.
func (a *App) OnConfigure(fn func(ctx context.Context, app *App) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck reports every component that is not healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Health aggregates component health into a service report.
func (a *App) Health(ctx context.Context) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(a.Name, a.Version)
	for _, h := range a.Components.HealthAll(ctx) {
		sh.AddComponent(observability.Health{
			Name:    h.Name,
			Status:  healthStatus(h.Status),
			Message: h.Message,
		})
	}
	return sh
}

func healthStatus(s component.HealthStatus) observability.HealthStatus {
	switch s {
	case component.StatusHealthy:
		return observability.HealthStatusUp
	case component.StatusDegraded:
		return observability.HealthStatusDegraded
	default:
		return observability.HealthStatusDown
	}
}

// Run starts the application, blocks until a signal or ctx is done and
// shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.Shutdown(context.Background())
}

// RunTask starts the application, runs task and shuts down. SIGINT and
// SIGTERM cancel the task context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	stop()

	if err := a.Shutdown(context.Background()); err != nil && taskErr == nil {
		return err
	}
	return taskErr
}

// Start initializes telemetry, starts the components and runs the
// configure and start hooks. On failure everything started is stopped.
func (a *App) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		logger.FieldGraphID, a.Graph.ID(),
	))

	if err := a.startup(ctx); err != nil {
		if stopErr := a.Shutdown(context.Background()); stopErr != nil {
			a.Logger.Error("shutdown after failed start", logger.Fields(logger.FieldError, stopErr.Error()))
		}
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	if a.summaryOut != nil {
		a.Summary.Write(a.summaryOut, a.Components, a.Graph)
	}
	return nil
}

func (a *App) startup(ctx context.Context) error {
	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("starting components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}
	return nil
}

func (a *App) initTelemetry(ctx context.Context) error {
	s := a.Settings
	if s.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    s.Name,
			ServiceVersion: s.Version,
			Environment:    s.Environment,
			Endpoint:       s.Tracing.Endpoint,
			Insecure:       s.Tracing.Insecure,
			SampleRate:     s.Tracing.SampleRate,
		})
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, tp.Shutdown)
	}
	if s.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
			ServiceName:    s.Name,
			ServiceVersion: s.Version,
			Environment:    s.Environment,
			Endpoint:       s.Metrics.Endpoint,
			Insecure:       s.Metrics.Insecure,
			Interval:       s.Metrics.Interval,
		})
		if err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, mp.Shutdown)
	}
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx is done.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks, stops the components (closing the graph's
// cached singletons) and flushes telemetry, within the graceful timeout.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil

	err := errors.Join(errs...)
	if err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	a.Logger.Info("application shutdown complete")
	return nil
}
