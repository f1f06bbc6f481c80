package monitor

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SemaphoreReadMonitor implements ReadMonitor using a weighted semaphore.
type SemaphoreReadMonitor struct {
	sem       *semaphore.Weighted
	maxWeight int64
	activeCnt atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewSemaphoreReadMonitor creates a monitor allowing maxConcurrency reads at
// once. Values below one are raised to one.
func NewSemaphoreReadMonitor(maxConcurrency int64) *SemaphoreReadMonitor {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	return &SemaphoreReadMonitor{
		sem:       semaphore.NewWeighted(maxConcurrency),
		maxWeight: maxConcurrency,
	}
}

func (m *SemaphoreReadMonitor) GetMetrics() ReadMetrics {
	return ReadMetrics{
		ActiveReads: m.activeCnt.Load(),
		MaxReads:    m.maxWeight,
		Completed:   m.completed.Load(),
		Failed:      m.failed.Load(),
	}
}

func (m *SemaphoreReadMonitor) Acquire(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	m.activeCnt.Add(1)
	return nil
}

func (m *SemaphoreReadMonitor) Release(ok bool) {
	if ok {
		m.completed.Add(1)
	} else {
		m.failed.Add(1)
	}
	m.activeCnt.Add(-1)
	m.sem.Release(1)
}

var _ ReadMonitor = (*SemaphoreReadMonitor)(nil)
