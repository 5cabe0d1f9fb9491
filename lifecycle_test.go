package rawmem

import (
	"bytes"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseInvalidatesRegions(t *testing.T) {
	// A region works until its parent is closed.
	h, err := AllocateDirect(64)
	require.NoError(t, err)
	m := h.Memory()
	require.NoError(t, m.PutByte(10, 7))

	r, err := m.Region(8, 8, NativeOrder)
	require.NoError(t, err)
	b, err := r.GetByte(2)
	require.NoError(t, err)
	assert.Equal(t, byte(7), b)

	buf, err := r.AsBuffer(NativeOrder)
	require.NoError(t, err)

	require.NoError(t, h.Close())

	_, err = r.GetByte(2)
	assert.ErrorIs(t, err, ErrNotAlive)
	assert.False(t, r.IsAlive())
	assert.False(t, m.IsAlive())
	assert.False(t, buf.IsAlive())

	_, err = buf.ReadByte()
	assert.ErrorIs(t, err, ErrNotAlive)
	_, err = m.Region(0, 1, NativeOrder)
	assert.ErrorIs(t, err, ErrNotAlive)
	_, err = m.AsBuffer(NativeOrder)
	assert.ErrorIs(t, err, ErrNotAlive)
	assert.ErrorIs(t, m.PutByte(0, 1), ErrNotAlive)
	_, err = Equal(m, 0, m, 0, 0)
	assert.ErrorIs(t, err, ErrNotAlive)
	_, err = m.RequestGrowth(128)
	assert.ErrorIs(t, err, ErrNotAlive)
}

func TestCloseIdempotent(t *testing.T) {
	mc := &BasicMetricsCollector{}
	h, err := AllocateDirect(32, WithMetricsCollector(mc))
	require.NoError(t, err)

	assert.True(t, h.IsAlive())
	require.NoError(t, h.Close())
	assert.False(t, h.IsAlive())
	require.NoError(t, h.Close())
	assert.False(t, h.IsAlive())
	require.NoError(t, h.Memory().Close())

	st := mc.GetStats()
	assert.Equal(t, int64(1), st.AllocateCount)
	assert.Equal(t, int64(1), st.ReleaseCount)
	assert.Zero(t, st.CleanupCount)
}

func TestMemoryClose(t *testing.T) {
	heap, err := Allocate(8)
	require.NoError(t, err)
	assert.NoError(t, heap.Close())
	assert.True(t, heap.IsAlive())

	h, err := AllocateDirect(8)
	require.NoError(t, err)
	r, err := h.Memory().Region(0, 4, NativeOrder)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Close(), ErrUnsupported)
	assert.True(t, h.IsAlive())

	require.NoError(t, h.Memory().Close())
	assert.False(t, h.IsAlive())
}

func TestDirectMemory(t *testing.T) {
	h, err := AllocateDirect(4096, WithByteOrder(NonNativeOrder))
	require.NoError(t, err)
	defer h.Close()

	m := h.Memory()
	assert.False(t, m.HasArray())
	_, err = m.Array()
	assert.ErrorIs(t, err, ErrUnsupported)

	require.NoError(t, m.PutInt64(4088, -9))
	v, err := m.GetInt64(4088)
	require.NoError(t, err)
	assert.Equal(t, int64(-9), v)

	z, err := m.GetInt64(0)
	require.NoError(t, err)
	assert.Zero(t, z)
}

func TestBudgetLimitsDirect(t *testing.T) {
	b := NewBudget(BudgetConfig{MemoryLimitBytes: 1000})

	h1, err := AllocateDirect(600, WithBudget(b))
	require.NoError(t, err)

	_, err = AllocateDirect(600, WithBudget(b))
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	// Heap allocations are not accounted.
	_, err = Allocate(600, WithBudget(b))
	require.NoError(t, err)

	st := b.Stats()
	assert.Equal(t, int64(1), st.DirectAllocations)
	assert.Equal(t, int64(600), st.DirectBytes)

	require.NoError(t, h1.Close())
	assert.Zero(t, b.Stats().DirectBytes)

	h2, err := AllocateDirect(600, WithBudget(b))
	require.NoError(t, err)
	require.NoError(t, h2.Close())
}

func TestCleanupReleasesForgottenHandle(t *testing.T) {
	mc := &BasicMetricsCollector{}
	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	func() {
		h, err := AllocateDirect(1024, WithMetricsCollector(mc), WithLogger(logger))
		require.NoError(t, err)
		_ = h.Memory().PutByte(0, 1)
	}()

	// The cleanup runs at an unspecified time; give it a bounded chance.
	deadline := time.Now().Add(5 * time.Second)
	for mc.GetStats().CleanupCount == 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if mc.GetStats().CleanupCount == 0 {
		t.Skip("cleanup did not run within the deadline")
	}
	assert.Equal(t, int64(1), mc.GetStats().ReleaseCount)
	assert.Contains(t, logs.String(), "Close was never called")
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h, err := AllocateDirect(128, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = Allocate(-1, WithLogger(logger))
	require.Error(t, err)

	out := logs.String()
	assert.Contains(t, out, "msg=allocated")
	assert.Contains(t, out, "backing=Direct")
	assert.Contains(t, out, "msg=released")
	assert.Contains(t, out, `msg="allocate failed"`)

	logs.Reset()
	logger.WithBacking(Mapped).WithPath("/tmp/x").Info("hello")
	assert.Contains(t, logs.String(), "backing=Mapped")
	assert.Contains(t, logs.String(), "path=/tmp/x")
}

func TestWithLogLevel(t *testing.T) {
	h, err := AllocateDirect(16, WithLogLevel(slog.LevelError))
	require.NoError(t, err)
	require.NoError(t, h.Close())
}
