// Package budget accounts for off-heap and mapped allocations and throttles bulk IO.
//
//	┌───────────────────────────────────────────────┐
//	│                    Budget                     │
//	├─────────────────────────┬─────────────────────┤
//	│  Direct / Mapped        │  IO Rate Limiter    │
//	│  counters + hard limit  │  (token bucket)     │
//	├─────────────────────────┼─────────────────────┤
//	│  Reserve (fail-fast)    │  AcquireIO          │
//	│  Release                │  RateLimitedWriter  │
//	│  Stats                  │  RateLimitedReader  │
//	└─────────────────────────┴─────────────────────┘
//
// # Memory Accounting
//
// Every live direct allocation and file mapping is counted by kind. Direct
// reservations can additionally be capped with a weighted semaphore; Reserve is
// non-blocking and returns ErrMemoryLimitExceeded immediately:
//
//	b := budget.New(budget.Config{MemoryLimitBytes: 1 << 30})
//	if err := b.Reserve(budget.Direct, n); err != nil {
//	    // caller decides retry/backoff
//	}
//	defer b.Release(budget.Direct, n)
//
// # IO Rate Limiting
//
//	b := budget.New(budget.Config{IOLimitBytesPerSec: 100 << 20})
//	w := budget.NewRateLimitedWriter(ctx, file, b)
//
// # Nil Safety
//
// All methods handle a nil Budget gracefully - they become no-ops.
package budget
