package hotswap

import (
	"bytes"
	"sync"
)

// PendingIntent records a redefinition the fallback strategy accepted but did
// not perform. The caller (or a reload hook outside this package) can drain
// these and apply them when the unit is next loaded.
type PendingIntent struct {
	Target Handle
	Code   []byte
}

// compatibilityFallback is the strategy of last resort. It always reports
// available, so a call never fails purely because nothing applied. Identical
// code degrades to a no-op success; anything else is journaled as an intent
// for deferred application. It only gives up when the low-level capability is
// missing entirely.
type compatibilityFallback struct {
	access Access

	mu      sync.Mutex
	pending []PendingIntent
}

func (s *compatibilityFallback) Name() string        { return nameFallback }
func (s *compatibilityFallback) Available() bool     { return true }
func (s *compatibilityFallback) NeedsAnalysis() bool { return false }

func (s *compatibilityFallback) Attempt(target Handle, code []byte, blob *CodeBlob) (bool, error) {
	if s.access == nil || !s.access.Granted() {
		return false, nil
	}

	region, err := s.access.Region(target)
	if err == nil && bytes.Equal(region, code) {
		// Already equivalent, nothing to do.
		return true, nil
	}

	cp := make([]byte, len(code))
	copy(cp, code)

	s.mu.Lock()
	s.pending = append(s.pending, PendingIntent{Target: target, Code: cp})
	s.mu.Unlock()
	return true, nil
}

// drain returns the journaled intents and clears the journal.
func (s *compatibilityFallback) drain() []PendingIntent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.pending
	s.pending = nil
	return out
}
