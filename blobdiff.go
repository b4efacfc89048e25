package hotswap

import (
	"errors"
	"fmt"
)

// byteRun is a contiguous range of differing bytes between two code buffers.
type byteRun struct {
	Off int
	Len int
}

type codeDifferences struct {
	SizeA, SizeB int
	Runs         []byteRun
}

func (d *codeDifferences) Error() error {
	if d.SizeA != d.SizeB {
		return fmt.Errorf("size mismatch: %d != %d", d.SizeA, d.SizeB)
	}

	errs := []error{}
	for _, run := range d.Runs {
		errs = append(errs, fmt.Errorf("bytes differ at offset %d (%d bytes)", run.Off, run.Len))
	}
	return errors.Join(errs...)
}

// equal reports whether the two buffers were identical.
func (d *codeDifferences) equal() bool {
	return d.SizeA == d.SizeB && len(d.Runs) == 0
}

// headerClean reports whether no differing run touches the blob header.
func (d *codeDifferences) headerClean() bool {
	for _, run := range d.Runs {
		if run.Off < blobHeaderLen {
			return false
		}
	}
	return true
}

// diffCode compares two code buffers and collects the differing byte runs.
// Runs are only meaningful when the sizes match; a size mismatch is reported
// on its own since there is no sensible alignment to diff against.
func diffCode(a, b []byte) *codeDifferences {
	diff := &codeDifferences{SizeA: len(a), SizeB: len(b)}
	if len(a) != len(b) {
		return diff
	}

	for i := 0; i < len(a); {
		if a[i] == b[i] {
			i++
			continue
		}

		run := byteRun{Off: i, Len: 1}
		for i++; i < len(a) && a[i] != b[i]; i++ {
			run.Len++
		}
		diff.Runs = append(diff.Runs, run)
	}

	return diff
}
