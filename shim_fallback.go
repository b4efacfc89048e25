//go:build !amd64 && !arm64

package hotswap

import "errors"

var errNoShim = errors.New("jump shims not implemented on this architecture")

func insertJump(buf []byte, dest uintptr) error {
	return errNoShim
}

func disassemble(code []byte) (string, error) {
	return "", errNoShim
}
