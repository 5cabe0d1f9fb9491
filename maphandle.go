package rawmem

import (
	"errors"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/rawmem/internal/budget"
	"github.com/hupe1980/rawmem/internal/conv"
	"github.com/hupe1980/rawmem/internal/mmap"
)

// AccessPattern hints to the kernel how a mapping will be read.
type AccessPattern = mmap.AccessPattern

// Access patterns accepted by MapHandle.Advise.
const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
	AccessDontNeed   = mmap.AccessDontNeed
)

// MapHandle is the owner of a file mapping.
type MapHandle struct {
	Handle
	mapping *mmap.Mapping
	path    string
}

// Map maps capacity bytes of the file at path, starting at fileOffset.
//
// The mapping is writable unless WithReadOnly(true) is given or the file
// cannot be opened for writing. A writable mapping extends the file when it
// reaches past the end; a read-only mapping must lie within the file.
// fileOffset does not need to be page aligned.
func Map(path string, fileOffset, capacity int64, opts ...Option) (*MapHandle, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	e := o.env()

	h, err := mapFile(path, fileOffset, capacity, &o, e)
	e.metrics.RecordAllocate(Mapped, capacity, err)
	e.logger.LogMap(path, fileOffset, capacity, o.readOnly, err)
	return h, err
}

// MapFile maps the whole file at path read-only.
func MapFile(path string, opts ...Option) (*MapHandle, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	fi, err := o.fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	return Map(path, 0, fi.Size(), append(opts, WithReadOnly(true))...)
}

func mapFile(path string, fileOffset, capacity int64, o *options, e *env) (*MapHandle, error) {
	if fileOffset < 0 {
		return nil, fmt.Errorf("%w: negative file offset %d", ErrInvalidArgument, fileOffset)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}
	size, err := conv.Int64ToInt(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	mode := mmap.ReadWrite
	flag := os.O_RDWR | os.O_CREATE
	if o.readOnly {
		mode, flag = mmap.ReadOnly, os.O_RDONLY
	}
	f, err := o.fsys.OpenFile(path, flag, 0o644)
	if err != nil && mode == mmap.ReadWrite && errors.Is(err, os.ErrPermission) {
		e.logger.Debug("file not writable, mapping read-only", "path", path)
		o.readOnly = true
		mode = mmap.ReadOnly
		f, err = o.fsys.OpenFile(path, os.O_RDONLY, 0)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, fileOffset, size, mode)
	if err != nil {
		return nil, translateError(err)
	}

	if capacity == 0 {
		_ = m.Close()
		return &MapHandle{Handle: Handle{mem: zeroMemory(o.order, nil, e)}, mapping: m, path: path}, nil
	}

	if err := e.budget.Reserve(budget.Mapped, capacity); err != nil {
		_ = m.Close()
		return nil, err
	}
	scope := newScope(m, Mapped, capacity, e)

	// Mapped storage cannot be replaced in place, so it never grows.
	o.server = nil
	v := newRoot(m.Bytes(), Mapped, o, e)
	v.scope = scope
	v.owner = true
	return &MapHandle{
		Handle:  Handle{mem: &Memory{v}, scope: scope},
		mapping: m,
		path:    path,
	}, nil
}

// Path returns the mapped file.
func (h *MapHandle) Path() string { return h.path }

func (h *MapHandle) check() error {
	if !h.IsAlive() {
		return ErrNotAlive
	}
	return nil
}

// Force writes modified pages back to the file and waits for the write to
// complete. It fails with ErrReadOnly on a read-only mapping.
func (h *MapHandle) Force() error {
	if err := h.check(); err != nil {
		return err
	}
	if h.scope == nil {
		return nil
	}
	if h.mem.IsReadOnly() {
		return ErrReadOnly
	}
	return translateError(h.mapping.Flush())
}

// Load reads the whole mapping into physical memory.
func (h *MapHandle) Load() error {
	if err := h.check(); err != nil {
		return err
	}
	if h.scope == nil {
		return nil
	}
	return translateError(h.mapping.Load())
}

// IsLoaded reports whether every page of the mapping is resident. Platforms
// without residency information report ErrUnsupported.
func (h *MapHandle) IsLoaded() (bool, error) {
	if err := h.check(); err != nil {
		return false, err
	}
	if h.scope == nil {
		return true, nil
	}
	ok, err := h.mapping.IsLoaded()
	return ok, translateError(err)
}

// Resident returns the indexes of the resident pages of the mapping. Page 0
// is the page holding the first byte of the resource.
func (h *MapHandle) Resident() (*roaring.Bitmap, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	rb := roaring.New()
	if h.scope == nil {
		return rb, nil
	}
	pages, err := h.mapping.Resident()
	if err != nil {
		return nil, translateError(err)
	}
	for i, resident := range pages {
		if resident {
			rb.Add(uint32(i))
		}
	}
	return rb, nil
}

// Advise passes an access pattern hint to the kernel.
func (h *MapHandle) Advise(pattern AccessPattern) error {
	if err := h.check(); err != nil {
		return err
	}
	if h.scope == nil {
		return nil
	}
	return translateError(h.mapping.Advise(pattern))
}
