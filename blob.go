package hotswap

import (
	"encoding/binary"
	"fmt"
)

const (
	// blobMagic is the big-endian format marker a well-formed blob starts with.
	blobMagic = 0xCAFEBABE

	// blobHeaderLen is the minimum length needed to read the marker, the
	// version and the pool count.
	blobHeaderLen = 10

	blobVersionOffset   = 6
	blobPoolCountOffset = 8
)

// CodeBlob holds the structural facts read from a raw code buffer. It never
// fully parses the buffer; it only looks far enough to tell whether the bytes
// could plausibly be a code unit.
//
// A blob with an unknown format marker is still "parsed" as long as it is long
// enough. Synthetic test payloads rely on that.
type CodeBlob struct {
	data       []byte
	parsed     bool
	wellFormed bool
	version    uint16
	poolCount  uint16
}

// ParseBlob inspects data and returns the derived facts. It never fails; a
// nil or short buffer yields a blob with Parsed() == false.
func ParseBlob(data []byte) *CodeBlob {
	b := &CodeBlob{data: data}
	if len(data) < blobHeaderLen {
		return b
	}

	b.parsed = true
	if binary.BigEndian.Uint32(data) == blobMagic {
		b.wellFormed = true
		b.version = binary.BigEndian.Uint16(data[blobVersionOffset:])
		b.poolCount = binary.BigEndian.Uint16(data[blobPoolCountOffset:])
	}
	return b
}

// Parsed reports whether the buffer was long enough to read a header.
func (b *CodeBlob) Parsed() bool { return b.parsed }

// WellFormed reports whether the buffer starts with the format marker.
func (b *CodeBlob) WellFormed() bool { return b.wellFormed }

// Version returns the format version, or zero if the blob is not well-formed.
func (b *CodeBlob) Version() uint16 { return b.version }

// PoolCount returns the declared constant pool entry count, or zero if the
// blob is not well-formed.
func (b *CodeBlob) PoolCount() uint16 { return b.poolCount }

// Size returns the length of the raw buffer.
func (b *CodeBlob) Size() int { return len(b.data) }

// Bytes returns the raw buffer. The caller owns it; the blob never copies.
func (b *CodeBlob) Bytes() []byte { return b.data }

// Index returns the offset of the first occurrence of needle in the buffer,
// or -1 if absent. Plain quadratic scan; blobs are small and this runs once
// per patch site.
func (b *CodeBlob) Index(needle []byte) int {
	if len(needle) == 0 || len(needle) > len(b.data) {
		return -1
	}
	for i := 0; i+len(needle) <= len(b.data); i++ {
		j := 0
		for ; j < len(needle); j++ {
			if b.data[i+j] != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}

// Contains reports whether needle occurs anywhere in the buffer.
func (b *CodeBlob) Contains(needle []byte) bool {
	return b.Index(needle) >= 0
}

// Describe returns a one-line summary for logs and unit detail strings.
func (b *CodeBlob) Describe() string {
	switch {
	case !b.parsed:
		return fmt.Sprintf("unparsed blob (%d bytes)", len(b.data))
	case !b.wellFormed:
		return fmt.Sprintf("parsed blob, unknown marker (%d bytes)", len(b.data))
	default:
		return fmt.Sprintf("well-formed blob, version %d, %d pool entries (%d bytes)", b.version, b.poolCount, len(b.data))
	}
}
