package hotswap

import "fmt"

// directReplacement swaps a unit's code in place. It is the cheapest and most
// surgical technique, but it assumes the new code has the same shape as the
// old: same size, well-formed, only the bodies differ. Anything else fails
// fast so a stronger technique can take over.
type directReplacement struct {
	access Access
}

func (s *directReplacement) Name() string        { return nameDirect }
func (s *directReplacement) Available() bool     { return s.access != nil && s.access.Granted() }
func (s *directReplacement) NeedsAnalysis() bool { return true }

func (s *directReplacement) Attempt(target Handle, code []byte, blob *CodeBlob) (bool, error) {
	if !blob.WellFormed() {
		// Direct replacement trusts the blob's structure, so it refuses
		// anything without the format marker.
		return false, nil
	}

	region, err := s.access.Region(target)
	if err != nil {
		return false, fmt.Errorf("read region: %w", err)
	}

	if len(code) != len(region) {
		// Not an internal failure: the unit simply isn't structurally
		// compatible with in-place replacement.
		return false, nil
	}

	if err := s.access.Patch(target, 0, code); err != nil {
		return false, fmt.Errorf("patch region: %w", err)
	}
	return true, nil
}
