package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/ciricc/benchparser/internal/config"
	"github.com/ciricc/benchparser/internal/logparse"
	"github.com/ciricc/benchparser/internal/monitor"
	"github.com/ciricc/benchparser/pkg/benchreport"
	"golang.org/x/sync/errgroup"
)

var (
	ErrZeroMeasurement = errors.New("zero runtime measurement")
)

// modes per size: baseline, parallel CPU, parallel accelerator
const modesPerSize = 3

type Aggregator struct {
	cfg         config.Config
	logger      *slog.Logger
	readMonitor monitor.ReadMonitor
}

func NewAggregator(
	cfg config.Config,
	logger *slog.Logger,
	readMonitor monitor.ReadMonitor,
) *Aggregator {
	return &Aggregator{
		cfg:         cfg,
		logger:      logger,
		readMonitor: readMonitor,
	}
}

// LogFileName returns the name of the log written by one mode at one size,
// e.g. "omp_gpu_2048.log".
func LogFileName(prefix string, size int, ext string) string {
	return prefix + "_" + strconv.Itoa(size) + ext
}

// Aggregate parses every log of the kernel stored in dir. Missing or
// unparseable logs leave the matching cells absent; the call never fails.
func (a *Aggregator) Aggregate(ctx context.Context, name, dir string) benchreport.KernelReport {
	sizes := a.cfg.Input.Sizes
	prefixes := a.cfg.Prefixes()

	paths := make([]string, 0, len(sizes)*modesPerSize)
	for _, s := range sizes {
		for _, p := range prefixes {
			paths = append(paths, filepath.Join(dir, LogFileName(p, s.ID, a.cfg.Input.Extension)))
		}
	}

	log := a.logger.With("kernel", name)
	times := make([]benchreport.Measurement, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			times[i] = a.read(gctx, log, path)
			return nil
		})
	}
	_ = g.Wait()

	report := benchreport.KernelReport{
		Name:  name,
		Dir:   dir,
		Sizes: make([]benchreport.SizeRecord, 0, len(sizes)),
	}
	for i, s := range sizes {
		t := times[i*modesPerSize : (i+1)*modesPerSize]
		report.Sizes = append(report.Sizes, benchreport.SizeRecord{
			Size:        s.ID,
			Label:       s.Label,
			CPU:         t[0],
			OmpCPU:      t[1],
			OmpGPU:      t[2],
			SpeedOmpCPU: SignedRatio(t[0], t[1]),
			SpeedOmpGPU: SignedRatio(t[0], t[2]),
		})
	}
	return report
}

func (a *Aggregator) read(ctx context.Context, log *slog.Logger, path string) benchreport.Measurement {
	if err := a.readMonitor.Acquire(ctx); err != nil {
		return benchreport.Absent(fmt.Errorf("%s: %w", path, err))
	}

	m := logparse.ParseFile(path)
	a.readMonitor.Release(m.Valid)

	if !m.Valid {
		log.WarnContext(ctx, "Failed to read measurement", "path", path, "error", m.Err)
		return m
	}
	log.DebugContext(ctx, "Parsed log", "path", path, "mean", m.Value)
	return m
}

// SignedRatio compares a baseline runtime with an alternate runtime. When the
// alternate is faster or equal the result is baseline/alternate; when it is
// slower the result is -alternate/baseline. Either input being absent, or a
// zero divisor, yields an absent speedup.
func SignedRatio(baseline, alternate benchreport.Measurement) benchreport.Speedup {
	if !baseline.Valid {
		return benchreport.AbsentSpeedup(baseline.Err)
	}
	if !alternate.Valid {
		return benchreport.AbsentSpeedup(alternate.Err)
	}

	a, b := baseline.Value, alternate.Value
	if b > a {
		if a == 0 {
			return benchreport.AbsentSpeedup(ErrZeroMeasurement)
		}
		return benchreport.NewSpeedup(-b / a)
	}
	if b == 0 {
		return benchreport.AbsentSpeedup(ErrZeroMeasurement)
	}
	return benchreport.NewSpeedup(a / b)
}
