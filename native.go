package hotswap

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/pboyd/malloc"
)

// arenaStartSize is the initial executable arena size. The arena grows on
// demand; this just avoids remapping for small workloads.
const arenaStartSize = 1 << 16

var (
	bootstrapOnce sync.Once
	bootstrapped  *NativeAccess
	bootstrapErr  error
)

// Bootstrap acquires trusted low-level access for the process: an mmap'd
// executable arena that loaded units live in. It runs once; every later call
// returns the same provider (or the same denial). Run it before building an
// engine, or the engine will refuse every call.
func Bootstrap() (*NativeAccess, error) {
	bootstrapOnce.Do(func() {
		if !nativeSupported {
			bootstrapErr = errors.New("privilege bootstrap: platform not supported")
			return
		}
		na := &NativeAccess{
			regions: make(map[Handle][]byte),
			next:    1,
		}
		if err := na.alloc.init(arenaStartSize); err != nil {
			bootstrapErr = fmt.Errorf("privilege bootstrap: %w", err)
			return
		}
		na.granted = true
		bootstrapped = na
	})
	return bootstrapped, bootstrapErr
}

// NativeAccess implements Access over an executable memory arena. Each
// RawDefine allocates a region in the arena; Patch and Redirect mutate it
// inside an RWX window and flip it back afterwards.
type NativeAccess struct {
	alloc   allocator
	granted bool

	mu      sync.Mutex
	regions map[Handle][]byte
	next    Handle
}

var _ Access = (*NativeAccess)(nil)

func (a *NativeAccess) Granted() bool {
	return a != nil && a.granted
}

func (a *NativeAccess) RawDefine(name string, code []byte) (Handle, error) {
	if !a.Granted() {
		return 0, ErrUnavailable
	}
	if len(code) == 0 {
		return 0, fmt.Errorf("define %q: empty code", name)
	}

	a.alloc.BeginMutate()
	defer a.alloc.EndMutate()

	region, err := a.alloc.Allocate(len(code))
	if err != nil {
		return 0, fmt.Errorf("define %q: %w", name, err)
	}
	copy(region, code)

	a.mu.Lock()
	h := a.next
	a.next++
	a.regions[h] = region
	a.mu.Unlock()
	return h, nil
}

// Region returns a copy of the unit's backing bytes. Callers never get a
// reference into the arena: all writes go through Patch or Redirect.
func (a *NativeAccess) Region(h Handle) ([]byte, error) {
	region, err := a.lookup(h)
	if err != nil {
		return nil, err
	}

	cp := make([]byte, len(region))
	copy(cp, region)
	return cp, nil
}

func (a *NativeAccess) Patch(h Handle, off int, b []byte) error {
	region, err := a.lookup(h)
	if err != nil {
		return err
	}
	if off < 0 || off+len(b) > len(region) {
		return fmt.Errorf("patch unit %d: %d bytes at %d exceeds %d-byte region", h, len(b), off, len(region))
	}

	a.alloc.BeginMutate()
	defer a.alloc.EndMutate()

	copy(region[off:], b)
	return nil
}

// Redirect plants a jump shim at the start of old's region pointing at repl's
// region, then hardens the patched pages back to read-execute.
func (a *NativeAccess) Redirect(old, repl Handle) error {
	oldRegion, err := a.lookup(old)
	if err != nil {
		return err
	}
	replRegion, err := a.lookup(repl)
	if err != nil {
		return err
	}

	a.alloc.BeginMutate()
	defer a.alloc.EndMutate()

	dest := uintptr(unsafe.Pointer(unsafe.SliceData(replRegion)))
	if err := insertJump(oldRegion, dest); err != nil {
		return fmt.Errorf("redirect unit %d: %w", old, err)
	}

	return mprotect(oldRegion, mprotectRX)
}

// Release unloads a unit and returns its region to the arena. Anything still
// redirected at the unit keeps jumping into freed memory, so only release
// units nothing points at.
func (a *NativeAccess) Release(h Handle) error {
	region, err := a.lookup(h)
	if err != nil {
		return err
	}

	a.alloc.BeginMutate()
	defer a.alloc.EndMutate()

	a.alloc.Free(region)

	a.mu.Lock()
	delete(a.regions, h)
	a.mu.Unlock()
	return nil
}

// DescribeUnit disassembles the unit's current region for debugging.
func (a *NativeAccess) DescribeUnit(h Handle) (string, error) {
	region, err := a.lookup(h)
	if err != nil {
		return "", err
	}
	return disassemble(region)
}

func (a *NativeAccess) lookup(h Handle) ([]byte, error) {
	if !a.Granted() {
		return nil, ErrUnavailable
	}

	a.mu.Lock()
	region, ok := a.regions[h]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unit %d: not loaded", h)
	}
	return region, nil
}

// allocator wraps a malloc arena whose pages stay read-execute except inside
// a BeginMutate/EndMutate window.
type allocator struct {
	*malloc.Arena
	mprotect func(int) error
	mu       sync.Mutex
	initOnce sync.Once
	mutable  bool
}

func (a *allocator) init(startSize int) error {
	var err error
	a.initOnce.Do(func() {
		be := malloc.MmapBackend(malloc.MmapProt(mprotectExec), malloc.MmapFlags(map_32bit))
		if protBE, ok := be.(malloc.ProtectedArenaBackend); ok {
			a.mprotect = protBE.Protect
		} else {
			a.mprotect = func(int) error {
				return nil
			}
		}

		a.Arena = malloc.NewArena(uint64(startSize), malloc.Backend(be))
		if a.Arena == nil {
			err = errors.New("unable to initialize arena")
			return
		}
		a.mutable = true
	})
	return err
}

func (a *allocator) BeginMutate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// BeginMutate can run before the initial allocation.
	if a.mprotect == nil || a.mutable {
		return nil
	}

	err := a.mprotect(mprotectRWX)
	if err == nil {
		a.mutable = true
	}
	return err
}

func (a *allocator) EndMutate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.mutable {
		return nil
	}

	err := a.mprotect(mprotectRX)
	if err == nil {
		a.mutable = false
	}
	return err
}

func (a *allocator) Allocate(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.init(size)
	if err != nil {
		return nil, fmt.Errorf("error initializing allocator: %w", err)
	}

	if !a.mutable {
		panic("Allocate called in immutable state")
	}

	return malloc.MallocSlice[byte](a.Arena, size)
}

func (a *allocator) Free(buf []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.mutable {
		panic("Free called in immutable state")
	}

	malloc.FreeSlice(a.Arena, buf)
}
