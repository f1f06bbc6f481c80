package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ciricc/benchparser/internal/aggregate"
	"github.com/ciricc/benchparser/internal/config"
	"github.com/ciricc/benchparser/internal/monitor"
	"github.com/ciricc/benchparser/internal/report"
)

type Application struct {
	Config      config.Config
	Log         *slog.Logger
	Builder     *report.Builder
	readMonitor monitor.ReadMonitor
}

type Opts struct {
	Diagnostics io.Writer
}

type Opt func(opts *Opts)

// WithDiagnostics redirects log output, stderr by default.
func WithDiagnostics(w io.Writer) Opt {
	return func(opts *Opts) { opts.Diagnostics = w }
}

func buildOpts(defaultOpts Opts, opts ...Opt) Opts {
	o := defaultOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func New(cfg config.Config, opts ...Opt) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOpts(Opts{Diagnostics: os.Stderr}, opts...)

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(o.Diagnostics, &slog.HandlerOptions{
		Level: level,
	}))

	readMonitor := monitor.NewSemaphoreReadMonitor(int64(cfg.Workers))

	aggregator := aggregate.NewAggregator(
		cfg,
		log,
		readMonitor,
	)

	builder := report.NewBuilder(
		cfg,
		log,
		aggregator,
	)

	return &Application{
		Config:      cfg,
		Log:         log,
		Builder:     builder,
		readMonitor: readMonitor,
	}, nil
}

// Run builds the report and writes it to the configured output path.
func (a *Application) Run(ctx context.Context) error {
	start := time.Now()

	corpus, err := a.Builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if err := a.Builder.WriteFile(a.Config.Output.Path, corpus); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	metrics := a.readMonitor.GetMetrics()
	a.Log.InfoContext(ctx, "Report written",
		"path", a.Config.Output.Path,
		"kernels", len(corpus),
		"measurements", metrics.Completed,
		"missing", metrics.Failed,
		"elapsed", time.Since(start).String())
	return nil
}

// Metrics returns read statistics collected so far.
func (a *Application) Metrics() monitor.ReadMetrics {
	return a.readMonitor.GetMetrics()
}
