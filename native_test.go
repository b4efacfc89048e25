package hotswap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapRoundTrip(t *testing.T) {
	access, err := Bootstrap()
	if err != nil {
		t.Skipf("privilege bootstrap unavailable: %v", err)
	}
	require.True(t, access.Granted())

	h, err := access.RawDefine("roundtrip", []byte("original code bytes"))
	require.NoError(t, err)

	region, err := access.Region(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("original code bytes"), region)

	require.NoError(t, access.Patch(h, 0, []byte("patched")))
	region, err = access.Region(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("patched"), region[:7])

	err = access.Patch(h, len(region), []byte("x"))
	assert.Error(t, err, "out of range patch must be refused")

	require.NoError(t, access.Release(h))
	_, err = access.Region(h)
	assert.ErrorContains(t, err, "not loaded")
}

func TestBootstrapIsProcessWide(t *testing.T) {
	a, errA := Bootstrap()
	b, errB := Bootstrap()
	assert.Equal(t, errA, errB)
	if errA == nil {
		assert.Same(t, a, b)
	}
}

func TestNativeAccessUnknownUnit(t *testing.T) {
	access, err := Bootstrap()
	if err != nil {
		t.Skipf("privilege bootstrap unavailable: %v", err)
	}

	_, err = access.Region(Handle(1 << 40))
	assert.ErrorContains(t, err, "not loaded")
}

func TestNativeAccessEngine(t *testing.T) {
	access, err := Bootstrap()
	if err != nil {
		t.Skipf("privilege bootstrap unavailable: %v", err)
	}

	code := wellFormedBlob(61, 2, 32)
	h, err := access.RawDefine("engine-unit", code)
	require.NoError(t, err)

	newCode := wellFormedBlob(61, 2, 32)
	newCode[16] = 0xEE

	res := New(access).Redefine([]Request{{Target: h, Code: newCode}})
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, "DirectMethodReplacement", res.Strategy)

	region, err := access.Region(h)
	require.NoError(t, err)
	assert.Equal(t, newCode, region)
}
