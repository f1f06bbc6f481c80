package monitor

import "context"

// ReadMetrics represents log read statistics
type ReadMetrics struct {
	// ActiveReads is the number of log files currently being read
	ActiveReads int64
	// MaxReads is the maximum number of concurrent reads allowed
	MaxReads int64
	// Completed counts reads that produced a measurement
	Completed int64
	// Failed counts reads that ended without a measurement
	Failed int64
}

// ReadMonitor bounds and counts log file reads.
type ReadMonitor interface {
	// GetMetrics returns current read statistics
	GetMetrics() ReadMetrics

	// Acquire blocks until a read slot is free or ctx is done.
	// The caller MUST call Release() when the read completes.
	Acquire(ctx context.Context) error

	// Release frees a read slot and records whether the read produced a value
	Release(ok bool)
}
