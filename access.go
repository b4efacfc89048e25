package hotswap

import "errors"

// Handle identifies one loaded unit. It is issued by an Access provider and is
// opaque to the engine: strategies hand it back to the provider and never look
// inside.
type Handle uint64

// ErrUnavailable is returned when the low-level capability was never granted.
var ErrUnavailable = errors.New("trusted low-level access not granted")

// Access is the low-level capability every strategy ultimately depends on.
// The engine treats it as read-only configuration: it is injected once at
// construction and probed, never mutated.
//
// NativeAccess implements it over an executable memory arena. Tests substitute
// in-memory fakes.
type Access interface {
	// Granted reports whether trusted low-level access was acquired.
	Granted() bool

	// RawDefine loads code as a fresh unit and returns its handle.
	RawDefine(name string, code []byte) (Handle, error)

	// Region returns the bytes currently backing a loaded unit.
	Region(h Handle) ([]byte, error)

	// Patch overwrites len(b) bytes at off within the unit's region.
	Patch(h Handle, off int, b []byte) error

	// Redirect points an old unit at a replacement unit, so that the old
	// handle's region transfers control to the replacement.
	Redirect(old, repl Handle) error
}

// deniedAccess is the Access used when the privilege bootstrap failed. Every
// operation reports ErrUnavailable.
type deniedAccess struct{}

// Denied returns an Access that was never granted. The engine built over it
// refuses every call, which is the documented degraded mode.
func Denied() Access { return deniedAccess{} }

func (deniedAccess) Granted() bool                            { return false }
func (deniedAccess) RawDefine(string, []byte) (Handle, error) { return 0, ErrUnavailable }
func (deniedAccess) Region(Handle) ([]byte, error)            { return nil, ErrUnavailable }
func (deniedAccess) Patch(Handle, int, []byte) error          { return ErrUnavailable }
func (deniedAccess) Redirect(Handle, Handle) error            { return ErrUnavailable }
