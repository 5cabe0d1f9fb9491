package rawmem

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    directBytes prometheus.Gauge
//	}
//
//	func (p *PrometheusCollector) RecordAllocate(kind rawmem.Backing, bytes int64, err error) {
//	    if err == nil && kind == rawmem.Direct {
//	        p.directBytes.Add(float64(bytes))
//	    }
//	}
type MetricsCollector interface {
	// RecordAllocate is called after each allocation or mapping attempt.
	RecordAllocate(kind Backing, bytes int64, err error)

	// RecordRelease is called when a direct or mapped resource is released.
	// viaCleanup is true when the release came from the GC safety net.
	RecordRelease(kind Backing, bytes int64, viaCleanup bool)

	// RecordGrowth is called after each growth request.
	RecordGrowth(from, to int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(Backing, int64, error)            {}
func (NoopMetricsCollector) RecordRelease(Backing, int64, bool)              {}
func (NoopMetricsCollector) RecordGrowth(int64, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocateCount    atomic.Int64
	AllocateErrors   atomic.Int64
	AllocatedBytes   atomic.Int64
	ReleaseCount     atomic.Int64
	ReleasedBytes    atomic.Int64
	CleanupCount     atomic.Int64
	GrowthCount      atomic.Int64
	GrowthErrors     atomic.Int64
	GrowthTotalNanos atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(_ Backing, bytes int64, err error) {
	b.AllocateCount.Add(1)
	if err != nil {
		b.AllocateErrors.Add(1)
		return
	}
	b.AllocatedBytes.Add(bytes)
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(_ Backing, bytes int64, viaCleanup bool) {
	b.ReleaseCount.Add(1)
	b.ReleasedBytes.Add(bytes)
	if viaCleanup {
		b.CleanupCount.Add(1)
	}
}

// RecordGrowth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrowth(_, _ int64, duration time.Duration, err error) {
	b.GrowthCount.Add(1)
	b.GrowthTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowthErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocateCount:  b.AllocateCount.Load(),
		AllocateErrors: b.AllocateErrors.Load(),
		AllocatedBytes: b.AllocatedBytes.Load(),
		ReleaseCount:   b.ReleaseCount.Load(),
		ReleasedBytes:  b.ReleasedBytes.Load(),
		CleanupCount:   b.CleanupCount.Load(),
		GrowthCount:    b.GrowthCount.Load(),
		GrowthErrors:   b.GrowthErrors.Load(),
		GrowthAvgNanos: b.getAvgGrowthNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgGrowthNanos() int64 {
	count := b.GrowthCount.Load()
	if count == 0 {
		return 0
	}
	return b.GrowthTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocateCount  int64
	AllocateErrors int64
	AllocatedBytes int64
	ReleaseCount   int64
	ReleasedBytes  int64
	CleanupCount   int64
	GrowthCount    int64
	GrowthErrors   int64
	GrowthAvgNanos int64
}
