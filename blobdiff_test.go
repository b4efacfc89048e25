package hotswap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffCode(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		a := wellFormedBlob(61, 2, 16)
		diff := diffCode(a, a)
		assert.True(t, diff.equal())
		assert.True(t, diff.headerClean())
		assert.NoError(t, diff.Error())
	})

	t.Run("size mismatch", func(t *testing.T) {
		diff := diffCode(make([]byte, 16), make([]byte, 20))
		assert.False(t, diff.equal())
		assert.Empty(t, diff.Runs)
		assert.ErrorContains(t, diff.Error(), "size mismatch: 16 != 20")
	})

	t.Run("collects runs", func(t *testing.T) {
		a := wellFormedBlob(61, 2, 24)
		b := wellFormedBlob(61, 2, 24)
		b[12], b[13] = 1, 2
		b[20] = 9

		diff := diffCode(a, b)
		assert.False(t, diff.equal())
		assert.True(t, diff.headerClean())
		assert.Equal(t, []byteRun{{Off: 12, Len: 2}, {Off: 20, Len: 1}}, diff.Runs)
		assert.ErrorContains(t, diff.Error(), "offset 12 (2 bytes)")
	})

	t.Run("header touched", func(t *testing.T) {
		a := wellFormedBlob(61, 2, 16)
		b := wellFormedBlob(62, 2, 16)
		diff := diffCode(a, b)
		assert.False(t, diff.headerClean())
	})
}
