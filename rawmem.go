package hotswap

import "fmt"

// rawMemoryPatch treats the loaded unit as a plain byte region and overwrites
// it, no questions asked. Most powerful and most dangerous: if the new layout
// differs from the old one this will happily corrupt the unit. The only
// structural demand is that the new code fits in the existing region.
type rawMemoryPatch struct {
	access Access
}

func (s *rawMemoryPatch) Name() string        { return nameRawMemory }
func (s *rawMemoryPatch) Available() bool     { return s.access != nil && s.access.Granted() }
func (s *rawMemoryPatch) NeedsAnalysis() bool { return false }

func (s *rawMemoryPatch) Attempt(target Handle, code []byte, blob *CodeBlob) (bool, error) {
	if len(code) == 0 {
		return false, nil
	}

	region, err := s.access.Region(target)
	if err != nil {
		return false, fmt.Errorf("read region: %w", err)
	}

	if len(code) > len(region) {
		return false, nil
	}

	if err := s.access.Patch(target, 0, code); err != nil {
		return false, fmt.Errorf("overwrite region: %w", err)
	}

	// Zero the tail so no stale bytes from the old unit survive.
	if tail := len(region) - len(code); tail > 0 {
		if err := s.access.Patch(target, len(code), make([]byte, tail)); err != nil {
			return false, fmt.Errorf("zero tail: %w", err)
		}
	}
	return true, nil
}
