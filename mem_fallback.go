//go:build !unix && !windows

package hotswap

import "errors"

const (
	mprotectRX   = 0
	mprotectRWX  = 0
	mprotectExec = 0
)

const nativeSupported = false

// No way to change page protection here, so the privilege bootstrap cannot
// produce a trusted arena. Bootstrap fails and the engine stays unavailable.
func mprotect(buf []byte, flags int) error {
	return errors.New("page protection not supported on this platform")
}
