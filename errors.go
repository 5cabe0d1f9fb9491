package rawmem

import (
	"errors"
	"fmt"

	"github.com/hupe1980/rawmem/internal/budget"
	"github.com/hupe1980/rawmem/internal/mmap"
)

var (
	// ErrOutOfRange is returned when an offset, length or cursor position falls
	// outside a resource.
	ErrOutOfRange = errors.New("out of range")

	// ErrReadOnly is returned when mutating through a read-only view.
	ErrReadOnly = errors.New("resource is read-only")

	// ErrNotAlive is returned when touching a resource whose scope was closed.
	ErrNotAlive = errors.New("resource is not alive")

	// ErrInvalidArgument is returned for missing required parameters, negative
	// capacities and copies of a range onto itself.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported is returned for operations the view cannot represent, such
	// as growth without a configured server.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrGrowthProtocol is returned when a GrowthServer breaks its contract.
	ErrGrowthProtocol = errors.New("growth protocol violation")

	// ErrMemoryLimitExceeded is returned when a direct allocation would exceed the configured budget.
	ErrMemoryLimitExceeded = budget.ErrMemoryLimitExceeded
)

// BoundsError describes a rejected (offset, length) pair.
//
// It matches ErrOutOfRange with errors.Is.
type BoundsError struct {
	Offset   int64
	Length   int64
	Capacity int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("out of range: offset %d, length %d, capacity %d", e.Offset, e.Length, e.Capacity)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfRange }

// PositionError describes a rejected cursor configuration.
//
// It matches ErrOutOfRange with errors.Is.
type PositionError struct {
	Start    int64
	Position int64
	End      int64
	Capacity int64
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("invalid cursor: start %d, position %d, end %d, capacity %d (need 0 <= start <= position <= end <= capacity)",
		e.Start, e.Position, e.End, e.Capacity)
}

func (e *PositionError) Unwrap() error { return ErrOutOfRange }

// translateError maps errors of the mapping layer onto the package sentinels,
// keeping the original in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mmap.ErrClosed):
		return fmt.Errorf("%w: %w", ErrNotAlive, err)
	case errors.Is(err, mmap.ErrReadOnly):
		return fmt.Errorf("%w: %w", ErrReadOnly, err)
	case errors.Is(err, mmap.ErrUnsupported):
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	case errors.Is(err, mmap.ErrOutOfBounds),
		errors.Is(err, mmap.ErrInvalidOffset),
		errors.Is(err, mmap.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
