//go:build !linux || !amd64

package hotswap

// Only linux/amd64 has a flag to request low mappings. Everywhere else we
// trust the OS; shims between regions of the same arena are in range either
// way.
const map_32bit = 0
