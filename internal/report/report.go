package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ciricc/benchparser/internal/aggregate"
	"github.com/ciricc/benchparser/internal/config"
	"github.com/ciricc/benchparser/pkg/benchreport"
	"github.com/samber/lo"
)

// NameColumn heads the first column of the report.
const NameColumn = "kernelName"

type Builder struct {
	cfg        config.Config
	logger     *slog.Logger
	aggregator *aggregate.Aggregator
}

func NewBuilder(
	cfg config.Config,
	logger *slog.Logger,
	aggregator *aggregate.Aggregator,
) *Builder {
	return &Builder{
		cfg:        cfg,
		logger:     logger,
		aggregator: aggregator,
	}
}

// Build aggregates every kernel directory directly under the configured logs
// directory. It only fails when that directory cannot be listed or ctx is done.
func (b *Builder) Build(ctx context.Context) (benchreport.Corpus, error) {
	root := b.cfg.Input.LogsDir
	kernels, err := kernelDirs(root)
	if err != nil {
		return nil, err
	}
	if b.cfg.Output.SortKernels {
		sort.Strings(kernels)
	}

	b.logger.DebugContext(ctx, "Discovered kernels", "root", root, "count", len(kernels))

	corpus := make(benchreport.Corpus, 0, len(kernels))
	for _, name := range kernels {
		if err := ctx.Err(); err != nil {
			return corpus, err
		}
		corpus = append(corpus, b.aggregator.Aggregate(ctx, name, filepath.Join(root, name)))
	}
	return corpus, ctx.Err()
}

// kernelDirs lists the names of the subdirectories of root, following
// symlinks. Other entries are skipped.
func kernelDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list kernels: %w", err)
	}

	dirs := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(root, e.Name()))
			return err == nil && info.IsDir()
		}
		return e.IsDir()
	})
	return lo.Map(dirs, func(e fs.DirEntry, _ int) string { return e.Name() }), nil
}

// Header returns the column names: NameColumn followed by one column per
// size and metric, e.g. "speedOmpGpuLarge".
func (b *Builder) Header() []string {
	cols := lo.FlatMap(b.cfg.Input.Sizes, func(s config.Size, _ int) []string {
		return lo.Map(benchreport.Metrics, func(metric string, _ int) string {
			return metric + s.Label
		})
	})
	return append([]string{NameColumn}, cols...)
}

func (b *Builder) Row(k benchreport.KernelReport) []string {
	return append([]string{k.Name}, k.Cells(b.cfg.Output.Precision)...)
}

func (b *Builder) WriteCSV(w io.Writer, corpus benchreport.Corpus) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(b.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, k := range corpus {
		if err := cw.Write(b.Row(k)); err != nil {
			return fmt.Errorf("write row %s: %w", k.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, replacing any existing file.
func (b *Builder) WriteFile(path string, corpus benchreport.Corpus) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.WriteCSV(f, corpus); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
