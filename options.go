package rawmem

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/hupe1980/rawmem/internal/budget"
	"github.com/hupe1980/rawmem/internal/fs"
	"github.com/hupe1980/rawmem/internal/mem"
)

type options struct {
	order     binary.ByteOrder
	readOnly  bool
	alignment int
	server    GrowthServer
	logger    *Logger
	metrics   MetricsCollector
	budget    *budget.Budget
	fsys      fs.FileSystem
}

// Option configures how a factory builds a resource.
type Option func(*options)

// WithByteOrder sets the byte order multi-byte values are stored in.
// Any binary.ByteOrder works, including binary.NativeEndian. Defaults to NativeOrder.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithReadOnly makes the resource reject every write. For Map it also opens
// the file read-only.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) {
		o.readOnly = readOnly
	}
}

// WithAlignment aligns the first byte of heap and direct allocations to a
// power-of-two boundary.
func WithAlignment(alignment int) Option {
	return func(o *options) {
		o.alignment = alignment
	}
}

// WithGrowthServer attaches the collaborator that supplies larger replacements
// through Memory.RequestGrowth. A nil server disables growth.
func WithGrowthServer(server GrowthServer) Option {
	return func(o *options) {
		o.server = server
	}
}

// WithLogger configures the logger for allocation, mapping and release events.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel configures a text logger at the given level.
// This is a convenience wrapper around WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures the collector notified of allocations,
// releases and growth. If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithBudget accounts direct and mapped allocations against b instead of
// DefaultBudget.
func WithBudget(b *Budget) Option {
	return func(o *options) {
		if b == nil {
			b = DefaultBudget
		}
		o.budget = b
	}
}

// withFileSystem swaps the file system used by Map. Tests use it to inject faults.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{
		order:   NativeOrder,
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
		budget:  DefaultBudget,
		fsys:    fs.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	order, err := canonicalOrder(o.order)
	if err != nil {
		return o, err
	}
	o.order = order

	if o.alignment != 0 && !mem.IsPowerOfTwo(o.alignment) {
		return o, fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidArgument, o.alignment)
	}
	return o, nil
}

func (o *options) env() *env {
	return &env{logger: o.logger, metrics: o.metrics, budget: o.budget}
}

// env is the ambient configuration shared by a root resource and all views
// derived from it.
type env struct {
	logger  *Logger
	metrics MetricsCollector
	budget  *budget.Budget
}

var defaultEnv = &env{
	logger:  NoopLogger(),
	metrics: NoopMetricsCollector{},
	budget:  DefaultBudget,
}

// Budget accounts live direct and mapped allocations, optionally caps direct
// memory, and throttles WriteRangeTo.
type Budget = budget.Budget

// BudgetConfig holds the limits of a Budget.
type BudgetConfig = budget.Config

// BudgetStats is a point-in-time view of a Budget's counters.
type BudgetStats = budget.Stats

// NewBudget creates a budget with the given limits.
func NewBudget(cfg BudgetConfig) *Budget {
	return budget.New(cfg)
}

// DefaultBudget tracks every direct and mapped allocation made without
// WithBudget. It has no limits.
var DefaultBudget = budget.New(budget.Config{})
