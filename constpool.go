package hotswap

import "fmt"

// constantPoolPatch rewrites literal table entries inside an existing unit
// instead of replacing the whole body. It applies when only embedded
// constants changed: same size, same header, same declared pool entry count,
// and every differing byte run past the header.
type constantPoolPatch struct {
	access Access
}

func (s *constantPoolPatch) Name() string        { return nameConstPool }
func (s *constantPoolPatch) Available() bool     { return s.access != nil && s.access.Granted() }
func (s *constantPoolPatch) NeedsAnalysis() bool { return true }

func (s *constantPoolPatch) Attempt(target Handle, _ []byte, blob *CodeBlob) (bool, error) {
	if !blob.WellFormed() {
		return false, nil
	}

	region, err := s.access.Region(target)
	if err != nil {
		return false, fmt.Errorf("read region: %w", err)
	}

	current := ParseBlob(region)
	if !current.WellFormed() || current.PoolCount() != blob.PoolCount() {
		return false, nil
	}

	// The analyzed blob is the source of truth for what gets patched in.
	code := blob.Bytes()
	diff := diffCode(region, code)
	if diff.SizeA != diff.SizeB || !diff.headerClean() {
		// The change reaches past the constant table; this technique
		// can't express it.
		return false, nil
	}
	if diff.equal() {
		// Nothing to patch; identical code counts as redefined.
		return true, nil
	}

	for _, run := range diff.Runs {
		if err := s.access.Patch(target, run.Off, code[run.Off:run.Off+run.Len]); err != nil {
			return false, fmt.Errorf("patch run at %d: %w", run.Off, err)
		}
	}
	return true, nil
}
