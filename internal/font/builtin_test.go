package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	f := Builtin()

	assert.Equal(t, "tiny", f.Name())
	assert.Equal(t, 6, f.Linespace())
	assert.False(t, f.HasOutline())

	upper, ok := f.GlyphIndex('L')
	require.True(t, ok)
	lower, ok := f.GlyphIndex('l')
	require.True(t, ok)
	assert.NotEqual(t, upper, lower)

	gu, err := f.Glyph(upper, false)
	require.NoError(t, err)
	gl, err := f.Glyph(lower, false)
	require.NoError(t, err)
	bu, err := f.Bitmap(gu)
	require.NoError(t, err)
	bl, err := f.Bitmap(gl)
	require.NoError(t, err)
	assert.Equal(t, bu, bl)
	assert.Equal(t, []byte{
		0xFF, 0, 0,
		0xFF, 0, 0,
		0xFF, 0, 0,
		0xFF, 0, 0,
		0xFF, 0xFF, 0xFF,
	}, bu)

	_, ok = f.GlyphIndex('~')
	assert.False(t, ok)
	assert.NoError(t, f.Close())
}

func TestBuiltinPrintsConsoleText(t *testing.T) {
	w, buf := newTestWriter(t, testFont())
	w.SetFont(Builtin())

	require.NoError(t, w.DrawString(textLayer, 0, 5, "Ok!", 0, AlignLeft, 0xFFFFFFFF, false))
	assert.NotEmpty(t, litColumns(buf, 4))
	assert.Equal(t, 12, w.StringWidth("Ok!", 0))
}
