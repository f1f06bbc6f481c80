package aggregate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ciricc/benchparser/internal/config"
	"github.com/ciricc/benchparser/internal/monitor"
	"github.com/ciricc/benchparser/pkg/benchreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func present(v float64) benchreport.Measurement { return benchreport.Present(v) }

func TestSignedRatio(t *testing.T) {
	tests := []struct {
		name     string
		baseline benchreport.Measurement
		alt      benchreport.Measurement
		want     float64
	}{
		{"twice as fast", present(2), present(1), 2},
		{"twice as slow", present(1), present(2), -2},
		{"equal", present(1), present(1), 1},
		{"fractional", present(3), present(1.5), 2},
		{"four times slower", present(0.5), present(2), -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SignedRatio(tt.baseline, tt.alt)
			require.True(t, s.Valid)
			assert.InDelta(t, tt.want, s.Ratio, 1e-12)
		})
	}
}

func TestSignedRatioAbsence(t *testing.T) {
	missing := benchreport.Absent(os.ErrNotExist)

	s := SignedRatio(present(1), missing)
	assert.False(t, s.Valid)
	assert.ErrorIs(t, s.Err, os.ErrNotExist)

	s = SignedRatio(missing, present(1))
	assert.False(t, s.Valid)

	s = SignedRatio(missing, missing)
	assert.False(t, s.Valid)
}

func TestSignedRatioZero(t *testing.T) {
	assert.ErrorIs(t, SignedRatio(present(0), present(1)).Err, ErrZeroMeasurement)
	assert.ErrorIs(t, SignedRatio(present(1), present(0)).Err, ErrZeroMeasurement)
	assert.ErrorIs(t, SignedRatio(present(0), present(0)).Err, ErrZeroMeasurement)
}

func TestLogFileName(t *testing.T) {
	assert.Equal(t, "omp_gpu_2048.log", LogFileName("omp_gpu", 2048, ".log"))
	assert.Equal(t, "cpu_512.log", LogFileName("cpu", 512, ".log"))
}

// writeKernel writes every log of a kernel: baseline takes base seconds,
// omp_cpu half of that and omp_gpu twice as long.
func writeKernel(t *testing.T, dir string, base float64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, s := range config.Default().Input.Sizes {
		factor := float64(s.ID) / 512
		logs := map[string]float64{
			"cpu":     base * factor,
			"omp_cpu": base * factor / 2,
			"omp_gpu": base * factor * 2,
		}
		for prefix, v := range logs {
			content := fmt.Sprintf("Runtime (0): %.6f\nRuntime (1): %.6f\n", v*0.5, v*1.5)
			path := filepath.Join(dir, LogFileName(prefix, s.ID, ".log"))
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		}
	}
}

func newAggregator(workers int, out io.Writer) (*Aggregator, *monitor.SemaphoreReadMonitor) {
	cfg := config.Default()
	cfg.Workers = workers
	m := monitor.NewSemaphoreReadMonitor(int64(workers))
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewAggregator(cfg, logger, m), m
}

func TestAggregateCompleteKernel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2MM")
	writeKernel(t, dir, 1.0)

	agg, m := newAggregator(1, io.Discard)
	report := agg.Aggregate(context.Background(), "2MM", dir)

	assert.Equal(t, "2MM", report.Name)
	require.Len(t, report.Sizes, 4)
	assert.Equal(t, 12, report.Measured())

	large := report.Sizes[3]
	assert.Equal(t, 4096, large.Size)
	assert.Equal(t, "Large", large.Label)
	assert.InDelta(t, 8.0, large.CPU.Value, 1e-9)
	assert.InDelta(t, 4.0, large.OmpCPU.Value, 1e-9)
	assert.InDelta(t, 16.0, large.OmpGPU.Value, 1e-9)
	assert.InDelta(t, 2.0, large.SpeedOmpCPU.Ratio, 1e-9)
	assert.InDelta(t, -2.0, large.SpeedOmpGPU.Ratio, 1e-9)

	assert.Equal(t, []string{"1.000000", "0.500000", "2.000000", "2.000000", "-2.000000"}, report.Sizes[0].Cells(6))
	assert.Equal(t, monitor.ReadMetrics{MaxReads: 1, Completed: 12}, m.GetMetrics())
}

func TestAggregateEmptyKernel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "3MM")
	require.NoError(t, os.Mkdir(dir, 0o755))

	var diag bytes.Buffer
	agg, m := newAggregator(1, &diag)
	report := agg.Aggregate(context.Background(), "3MM", dir)

	require.Len(t, report.Sizes, 4)
	assert.Zero(t, report.Measured())
	for _, cell := range report.Cells(6) {
		assert.Equal(t, benchreport.NaN, cell)
	}
	assert.Equal(t, int64(12), m.GetMetrics().Failed)
	assert.Contains(t, diag.String(), "omp_gpu_4096.log")
	assert.Contains(t, diag.String(), "kernel=3MM")
}

func TestAggregatePartialKernel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "GEMM")
	writeKernel(t, dir, 1.0)
	require.NoError(t, os.Remove(filepath.Join(dir, "omp_gpu_1024.log")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cpu_2048.log"), []byte("crashed\n"), 0o644))

	agg, _ := newAggregator(1, io.Discard)
	report := agg.Aggregate(context.Background(), "GEMM", dir)

	small := report.Sizes[1]
	assert.True(t, small.CPU.Valid)
	assert.True(t, small.SpeedOmpCPU.Valid)
	assert.False(t, small.OmpGPU.Valid)
	assert.False(t, small.SpeedOmpGPU.Valid)

	medium := report.Sizes[2]
	assert.False(t, medium.CPU.Valid)
	assert.True(t, medium.OmpCPU.Valid)
	assert.False(t, medium.SpeedOmpCPU.Valid)
	assert.False(t, medium.SpeedOmpGPU.Valid)

	assert.Equal(t, 10, report.Measured())
}

func TestAggregateWorkersDoNotChangeResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "SYRK")
	writeKernel(t, dir, 0.25)
	require.NoError(t, os.Remove(filepath.Join(dir, "omp_cpu_512.log")))

	seq, _ := newAggregator(1, io.Discard)
	par, m := newAggregator(4, io.Discard)

	want := seq.Aggregate(context.Background(), "SYRK", dir)
	got := par.Aggregate(context.Background(), "SYRK", dir)

	assert.Equal(t, want.Cells(6), got.Cells(6))
	assert.Equal(t, int64(11), m.GetMetrics().Completed)
	assert.Equal(t, int64(1), m.GetMetrics().Failed)
}

func TestAggregateCancelled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ATAX")
	writeKernel(t, dir, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg, _ := newAggregator(1, io.Discard)
	report := agg.Aggregate(ctx, "ATAX", dir)

	assert.Zero(t, report.Measured())
	assert.ErrorIs(t, report.Sizes[0].CPU.Err, context.Canceled)
}
