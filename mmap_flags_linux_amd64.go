//go:build linux && amd64

package hotswap

import "syscall"

// Keep the arena in the low 2GiB so rel32 jump shims can always reach it.
const map_32bit = syscall.MAP_32BIT
