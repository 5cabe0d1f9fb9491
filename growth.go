package rawmem

import (
	"fmt"
	"sync"
	"time"
)

// GrowthServer supplies a larger replacement when a resource runs out of room.
//
// Request must return a resource of at least capacity bytes in the byte order
// of current. Moving live data from the old resource to the new one is the
// caller's job. RequestClose tells the server the old resource may be
// released; next identifies the replacement and may be ignored.
type GrowthServer interface {
	Request(current *Memory, capacity int64) (*Memory, error)
	RequestClose(old, next *Memory) error
}

// RequestGrowth asks the configured GrowthServer for a replacement of at
// least capacity bytes and checks the server kept its side of the contract.
func (m *Memory) RequestGrowth(capacity int64) (*Memory, error) {
	if err := m.checkAlive(); err != nil {
		return nil, err
	}
	if m.server == nil {
		return nil, fmt.Errorf("%w: no growth server configured", ErrUnsupported)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}

	start := time.Now()
	next, err := m.requestGrowth(capacity)
	m.env.metrics.RecordGrowth(m.Capacity(), capacity, time.Since(start), err)
	m.env.logger.LogGrowth(m.Capacity(), capacity, err)
	return next, err
}

func (m *Memory) requestGrowth(capacity int64) (*Memory, error) {
	next, err := m.server.Request(m, capacity)
	if err != nil {
		return nil, err
	}
	switch {
	case next == nil:
		return nil, fmt.Errorf("%w: server returned no resource", ErrGrowthProtocol)
	case next.Capacity() < capacity:
		return nil, fmt.Errorf("%w: server returned %d bytes, requested %d", ErrGrowthProtocol, next.Capacity(), capacity)
	case next.ByteOrder() != m.order:
		return nil, fmt.Errorf("%w: server returned %v, requested %v", ErrGrowthProtocol, next.ByteOrder(), m.order)
	}
	return next, nil
}

// RequestClose hands m back to its GrowthServer once its contents have been
// moved to next.
func (m *Memory) RequestClose(next *Memory) error {
	if m.server == nil {
		return fmt.Errorf("%w: no growth server configured", ErrUnsupported)
	}
	return m.server.RequestClose(m, next)
}

// HeapGrowthServer allocates replacements on the Go heap. Releasing the old
// resource is left to the garbage collector.
type HeapGrowthServer struct {
	opts []Option
}

// NewHeapGrowthServer returns a server that passes opts to Allocate.
func NewHeapGrowthServer(opts ...Option) *HeapGrowthServer {
	return &HeapGrowthServer{opts: opts}
}

// DefaultGrowthServer is a heap growth server without options.
var DefaultGrowthServer GrowthServer = NewHeapGrowthServer()

// Request implements GrowthServer.
func (s *HeapGrowthServer) Request(current *Memory, capacity int64) (*Memory, error) {
	if current == nil {
		return nil, fmt.Errorf("%w: current resource is nil", ErrInvalidArgument)
	}
	opts := append(append([]Option(nil), s.opts...), WithByteOrder(current.ByteOrder()), WithGrowthServer(s))
	return Allocate(capacity, opts...)
}

// RequestClose implements GrowthServer.
func (s *HeapGrowthServer) RequestClose(_, _ *Memory) error { return nil }

// DirectGrowthServer allocates replacements off-heap and releases them when
// asked. Every resource it hands out stays tracked until RequestClose.
type DirectGrowthServer struct {
	opts []Option

	mu      sync.Mutex
	handles map[*Scope]*Handle
}

// NewDirectGrowthServer returns a server that passes opts to AllocateDirect.
func NewDirectGrowthServer(opts ...Option) *DirectGrowthServer {
	return &DirectGrowthServer{
		opts:    opts,
		handles: make(map[*Scope]*Handle),
	}
}

// Request implements GrowthServer.
func (s *DirectGrowthServer) Request(current *Memory, capacity int64) (*Memory, error) {
	if current == nil {
		return nil, fmt.Errorf("%w: current resource is nil", ErrInvalidArgument)
	}
	opts := append(append([]Option(nil), s.opts...), WithByteOrder(current.ByteOrder()), WithGrowthServer(s))
	h, err := AllocateDirect(capacity, opts...)
	if err != nil {
		return nil, err
	}
	if h.scope != nil {
		s.mu.Lock()
		s.handles[h.scope] = h
		s.mu.Unlock()
	}
	return h.Memory(), nil
}

// RequestClose implements GrowthServer. It releases old when the server
// allocated it or when old owns its storage. Heap resources need no release.
func (s *DirectGrowthServer) RequestClose(old, _ *Memory) error {
	if old == nil {
		return fmt.Errorf("%w: resource to close is nil", ErrInvalidArgument)
	}
	if old.scope == nil {
		return nil
	}

	s.mu.Lock()
	h, ok := s.handles[old.scope]
	delete(s.handles, old.scope)
	s.mu.Unlock()

	switch {
	case ok:
		return h.Close()
	case old.owner:
		return old.scope.Close()
	default:
		return fmt.Errorf("%w: resource was not allocated by this server and does not own its storage", ErrGrowthProtocol)
	}
}

// Outstanding returns how many resources the server handed out that were not
// released through RequestClose yet.
func (s *DirectGrowthServer) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Close releases every outstanding resource.
func (s *DirectGrowthServer) Close() error {
	s.mu.Lock()
	handles := s.handles
	s.handles = make(map[*Scope]*Handle)
	s.mu.Unlock()

	var firstErr error
	for _, h := range handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
