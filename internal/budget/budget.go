package budget

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when an off-heap reservation would exceed the limit.
	ErrMemoryLimitExceeded = errors.New("off-heap memory limit exceeded")
	// ErrUnknownKind is returned for a reservation of a kind the budget does not track.
	ErrUnknownKind = errors.New("unknown allocation kind")
)

// Kind classifies the allocations a Budget accounts for.
type Kind int

const (
	// Direct is anonymous off-heap memory.
	Direct Kind = iota
	// Mapped is a file mapping.
	Mapped
)

func (k Kind) String() string {
	if k == Mapped {
		return "mapped"
	}
	return "direct"
}

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for direct (anonymous off-heap) memory.
	// Mapped files are tracked but not limited since their pages belong to the
	// page cache. If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// IOLimitBytesPerSec is the maximum throughput for rate-limited writers.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Stats is a point-in-time view of the live allocations a Budget tracks.
type Stats struct {
	DirectAllocations int64
	DirectBytes       int64
	MappedAllocations int64
	MappedBytes       int64
	Limit             int64
}

type counter struct {
	allocs atomic.Int64
	bytes  atomic.Int64
}

// Budget accounts for off-heap and mapped allocations and throttles bulk IO.
type Budget struct {
	cfg Config

	memSem   *semaphore.Weighted // nil if unlimited
	counters [2]counter

	ioLimiter *rate.Limiter
}

// New creates a new budget.
func New(cfg Config) *Budget {
	b := &Budget{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		b.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		b.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return b
}

// Reserve records a new allocation of the given kind.
// Returns ErrMemoryLimitExceeded if a direct reservation would exceed the limit.
// Non-blocking - callers control retry/backoff policy.
func (b *Budget) Reserve(kind Kind, bytes int64) error {
	if b == nil || bytes < 0 {
		return nil
	}
	if kind != Direct && kind != Mapped {
		return ErrUnknownKind
	}

	if kind == Direct && b.memSem != nil && bytes > 0 {
		if !b.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c := &b.counters[kind]
	c.allocs.Add(1)
	c.bytes.Add(bytes)
	return nil
}

// Release returns an allocation previously recorded with Reserve.
func (b *Budget) Release(kind Kind, bytes int64) {
	if b == nil || bytes < 0 || (kind != Direct && kind != Mapped) {
		return
	}

	if kind == Direct && b.memSem != nil && bytes > 0 {
		b.memSem.Release(bytes)
	}

	c := &b.counters[kind]
	c.allocs.Add(-1)
	c.bytes.Add(-bytes)
}

// Stats returns the current allocation counters.
func (b *Budget) Stats() Stats {
	if b == nil {
		return Stats{}
	}
	return Stats{
		DirectAllocations: b.counters[Direct].allocs.Load(),
		DirectBytes:       b.counters[Direct].bytes.Load(),
		MappedAllocations: b.counters[Mapped].allocs.Load(),
		MappedBytes:       b.counters[Mapped].bytes.Load(),
		Limit:             b.cfg.MemoryLimitBytes,
	}
}

// MemoryLimit returns the configured direct memory limit in bytes (0 if unlimited).
func (b *Budget) MemoryLimit() int64 {
	if b == nil {
		return 0
	}
	return b.cfg.MemoryLimitBytes
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the limiter burst are admitted in burst-sized steps.
func (b *Budget) AcquireIO(ctx context.Context, bytes int) error {
	if b == nil || b.ioLimiter == nil {
		return nil
	}
	burst := b.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := b.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
// Returns true if tokens were acquired, false otherwise.
func (b *Budget) TryAcquireIO(bytes int) bool {
	if b == nil || b.ioLimiter == nil {
		return true
	}
	return b.ioLimiter.AllowN(time.Now(), bytes)
}
