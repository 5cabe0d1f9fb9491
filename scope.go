package rawmem

import (
	"runtime"
	"sync/atomic"

	"github.com/hupe1980/rawmem/internal/budget"
	"github.com/hupe1980/rawmem/internal/mmap"
)

// Scope owns one direct allocation or file mapping. Every view derived from
// the resource points at the same Scope and is alive exactly as long as it is.
//
// Close releases the storage immediately. If a Scope becomes unreachable while
// still open, a runtime cleanup releases the storage and logs a warning; that
// path exists only as a safety net and runs at an unspecified time.
type Scope struct {
	alive   atomic.Bool
	rel     *releaser
	cleanup runtime.Cleanup
}

// releaser performs the actual release. It must not reference its Scope, or the
// cleanup attached to the Scope could never run.
type releaser struct {
	mapping  *mmap.Mapping
	kind     Backing
	capacity int64
	env      *env
	done     atomic.Bool
}

func (r *releaser) release(viaCleanup bool) error {
	if r.done.Swap(true) {
		return nil
	}

	err := translateError(r.mapping.Close())

	bk := budget.Direct
	if r.kind == Mapped {
		bk = budget.Mapped
	}
	r.env.budget.Release(bk, r.capacity)
	r.env.metrics.RecordRelease(r.kind, r.capacity, viaCleanup)

	if viaCleanup {
		r.env.logger.LogCleanup(r.kind, r.capacity, err)
	} else {
		r.env.logger.LogRelease(r.kind, r.capacity, err)
	}
	return err
}

func newScope(m *mmap.Mapping, kind Backing, capacity int64, e *env) *Scope {
	s := &Scope{
		rel: &releaser{mapping: m, kind: kind, capacity: capacity, env: e},
	}
	s.alive.Store(true)
	s.cleanup = runtime.AddCleanup(s, func(r *releaser) { _ = r.release(true) }, s.rel)
	return s
}

// IsAlive reports whether the storage is still mapped.
func (s *Scope) IsAlive() bool {
	return s == nil || s.alive.Load()
}

// Close releases the storage. It is idempotent: later calls return nil.
func (s *Scope) Close() error {
	if s == nil || !s.alive.Swap(false) {
		return nil
	}
	s.cleanup.Stop()
	return s.rel.release(false)
}

// Handle is the owner of a direct allocation. Closing it invalidates the
// Memory it hands out and every view derived from that Memory.
type Handle struct {
	mem   *Memory
	scope *Scope
}

// Memory returns the owned resource.
func (h *Handle) Memory() *Memory { return h.mem }

// IsAlive reports whether the allocation has not been released yet.
func (h *Handle) IsAlive() bool { return h.scope.IsAlive() }

// Close releases the allocation. It is idempotent.
func (h *Handle) Close() error { return h.scope.Close() }
