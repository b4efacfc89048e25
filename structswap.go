package hotswap

import "fmt"

// structureSwap abandons the old unit's body entirely: it defines a fresh
// unit from the new code and redirects the old handle to it. More invasive
// than patching, but it works whenever the provider can load the blob at all.
type structureSwap struct {
	access Access
}

func (s *structureSwap) Name() string        { return nameStructSwap }
func (s *structureSwap) Available() bool     { return s.access != nil && s.access.Granted() }
func (s *structureSwap) NeedsAnalysis() bool { return false }

func (s *structureSwap) Attempt(target Handle, code []byte, blob *CodeBlob) (bool, error) {
	if len(code) == 0 {
		return false, nil
	}

	repl, err := s.access.RawDefine(fmt.Sprintf("swap-%d", target), code)
	if err != nil {
		return false, fmt.Errorf("define replacement: %w", err)
	}

	if err := s.access.Redirect(target, repl); err != nil {
		// The replacement unit stays loaded but unreachable. The arena
		// reclaims it with the provider; nothing to unwind here.
		return false, fmt.Errorf("redirect: %w", err)
	}
	return true, nil
}
