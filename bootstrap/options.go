package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/kbukum/wiring/di"
	"github.com/kbukum/wiring/logger"
)

// Option configures New.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	modules         []*di.Module
	graphOptions    []di.Option
	summaryOut      io.Writer
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 15 * time.Second, summaryOut: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger uses l instead of a logger built from the settings.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}

// WithModules loads modules into the graph after the settings module.
func WithModules(modules ...*di.Module) Option {
	return func(o *appOptions) { o.modules = append(o.modules, modules...) }
}

// WithGraphOptions passes extra options to di.New.
func WithGraphOptions(opts ...di.Option) Option {
	return func(o *appOptions) { o.graphOptions = append(o.graphOptions, opts...) }
}

// WithSummaryOutput writes the startup summary to w; nil disables it.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
