package hotswap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectReplacement(t *testing.T) {
	fa := newFakeAccess()
	s := &directReplacement{access: fa}

	assert.Equal(t, "DirectMethodReplacement", s.Name())
	assert.True(t, s.Available())
	assert.True(t, s.NeedsAnalysis())

	t.Run("rejects unknown marker", func(t *testing.T) {
		h := fa.load(make([]byte, 16))
		ok, err := s.Attempt(h, make([]byte, 16), ParseBlob(make([]byte, 16)))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects size mismatch", func(t *testing.T) {
		h := fa.load(make([]byte, 16))
		code := wellFormedBlob(61, 2, 24)
		ok, err := s.Attempt(h, code, ParseBlob(code))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("replaces in place", func(t *testing.T) {
		h := fa.load(wellFormedBlob(61, 2, 16))
		code := wellFormedBlob(61, 2, 16)
		code[12] = 0xAB

		ok, err := s.Attempt(h, code, ParseBlob(code))
		require.NoError(t, err)
		assert.True(t, ok)

		region, err := fa.Region(h)
		require.NoError(t, err)
		assert.Equal(t, code, region)
	})

	t.Run("reports patch failure", func(t *testing.T) {
		h := fa.load(wellFormedBlob(61, 2, 16))
		fa.failPatch = true
		defer func() { fa.failPatch = false }()

		code := wellFormedBlob(61, 2, 16)
		ok, err := s.Attempt(h, code, ParseBlob(code))
		assert.False(t, ok)
		assert.ErrorContains(t, err, "patch")
	})
}

func TestConstantPoolPatch(t *testing.T) {
	fa := newFakeAccess()
	s := &constantPoolPatch{access: fa}

	assert.Equal(t, "ConstantPoolPatch", s.Name())
	assert.True(t, s.NeedsAnalysis())

	t.Run("patches only the differing runs", func(t *testing.T) {
		old := wellFormedBlob(61, 4, 32)
		copy(old[16:], []byte("oldconst"))
		h := fa.load(old)

		code := wellFormedBlob(61, 4, 32)
		copy(code[16:], []byte("newconst"))

		before := fa.patches
		ok, err := s.Attempt(h, code, ParseBlob(code))
		require.NoError(t, err)
		assert.True(t, ok)

		region, err := fa.Region(h)
		require.NoError(t, err)
		assert.Equal(t, code, region)
		assert.Equal(t, before+1, fa.patches, "one run, one patch")
	})

	t.Run("identical code is a no-op success", func(t *testing.T) {
		code := wellFormedBlob(61, 4, 32)
		h := fa.load(code)

		before := fa.patches
		ok, err := s.Attempt(h, code, ParseBlob(code))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, before, fa.patches)
	})

	t.Run("rejects pool count change", func(t *testing.T) {
		h := fa.load(wellFormedBlob(61, 4, 32))
		code := wellFormedBlob(61, 5, 32)
		ok, err := s.Attempt(h, code, ParseBlob(code))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects size change", func(t *testing.T) {
		h := fa.load(wellFormedBlob(61, 4, 32))
		code := wellFormedBlob(61, 4, 40)
		ok, err := s.Attempt(h, code, ParseBlob(code))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects malformed current region", func(t *testing.T) {
		h := fa.load(make([]byte, 32))
		code := wellFormedBlob(61, 4, 32)
		ok, err := s.Attempt(h, code, ParseBlob(code))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStructureSwap(t *testing.T) {
	fa := newFakeAccess()
	s := &structureSwap{access: fa}

	assert.Equal(t, "InternalStructureSwap", s.Name())
	assert.False(t, s.NeedsAnalysis())

	t.Run("defines and redirects", func(t *testing.T) {
		h := fa.load(make([]byte, 16))
		ok, err := s.Attempt(h, []byte("replacement code"), nil)
		require.NoError(t, err)
		assert.True(t, ok)

		repl, redirected := fa.redirects[h]
		require.True(t, redirected)
		region, err := fa.Region(repl)
		require.NoError(t, err)
		assert.Equal(t, []byte("replacement code"), region)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		h := fa.load(make([]byte, 16))
		ok, err := s.Attempt(h, nil, nil)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reports redirect failure", func(t *testing.T) {
		h := fa.load(make([]byte, 16))
		fa.failRedirect[h] = true

		ok, err := s.Attempt(h, []byte("code"), nil)
		assert.False(t, ok)
		assert.ErrorContains(t, err, "redirect")
	})
}

func TestRawMemoryPatch(t *testing.T) {
	fa := newFakeAccess()
	s := &rawMemoryPatch{access: fa}

	assert.Equal(t, "RawMemoryPatch", s.Name())
	assert.False(t, s.NeedsAnalysis())

	t.Run("overwrites and zeroes the tail", func(t *testing.T) {
		h := fa.load([]byte("0123456789abcdef"))
		ok, err := s.Attempt(h, []byte("new"), nil)
		require.NoError(t, err)
		assert.True(t, ok)

		region, err := fa.Region(h)
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), region[:3])
		assert.Equal(t, make([]byte, 13), region[3:])
	})

	t.Run("rejects oversized code", func(t *testing.T) {
		h := fa.load(make([]byte, 8))
		ok, err := s.Attempt(h, make([]byte, 9), nil)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCompatibilityFallback(t *testing.T) {
	t.Run("always reports available", func(t *testing.T) {
		s := &compatibilityFallback{access: Denied()}
		assert.True(t, s.Available())
		assert.False(t, s.NeedsAnalysis())
	})

	t.Run("fails without the capability", func(t *testing.T) {
		s := &compatibilityFallback{access: Denied()}
		ok, err := s.Attempt(1, []byte("code"), nil)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, s.drain())
	})

	t.Run("equivalent code is a no-op success", func(t *testing.T) {
		fa := newFakeAccess()
		s := &compatibilityFallback{access: fa}
		h := fa.load([]byte("same bytes"))

		ok, err := s.Attempt(h, []byte("same bytes"), nil)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, s.drain())
	})

	t.Run("journals different code", func(t *testing.T) {
		fa := newFakeAccess()
		s := &compatibilityFallback{access: fa}
		h := fa.load([]byte("old"))

		ok, err := s.Attempt(h, []byte("new"), nil)
		require.NoError(t, err)
		assert.True(t, ok)

		pending := s.drain()
		require.Len(t, pending, 1)
		assert.Equal(t, h, pending[0].Target)
		assert.Equal(t, []byte("new"), pending[0].Code)
		assert.Empty(t, s.drain(), "drain clears the journal")
	})
}
