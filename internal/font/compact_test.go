package font

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, a byte) []byte { return bytes.Repeat([]byte{a}, w*h) }

// testFont has 'A' and 'B' in the direct map and 'é' in the table. Each
// glyph has a half transparent outline.
func testFont() *CompactFont {
	glyph := func(cp rune, w, h int) GlyphImage {
		return GlyphImage{Codepoint: cp, Width: w, Height: h, TSB: h, Advance: w + 1, Alpha: solid(w, h, 0xFF)}
	}
	f := &CompactFont{
		Name:      "test",
		Linespace: 3,
		YShift:    1,
		Glyphs:    []GlyphImage{glyph('B', 2, 2), glyph('A', 2, 2), glyph('é', 1, 1)},
	}
	for _, g := range f.Glyphs {
		o := g
		o.Alpha = solid(g.Width, g.Height, 0x80)
		f.Outlines = append(f.Outlines, o)
	}
	return f
}

func encode(t *testing.T, f *CompactFont) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeCompact(&buf, f))
	return buf.Bytes()
}

func parse(t *testing.T, f *CompactFont) *Compact {
	t.Helper()
	c, err := ParseCompact(bytes.NewReader(encode(t, f)))
	require.NoError(t, err)
	return c
}

func TestCompactHeader(t *testing.T) {
	data := encode(t, testFont())
	le := binary.LittleEndian

	assert.Equal(t, uint32(CompactMagic), le.Uint32(data))
	assert.Equal(t, uint16(6), le.Uint16(data[4:]))
	assert.Equal(t, uint16('A'), le.Uint16(data[6:]))
	assert.Equal(t, uint16(2), le.Uint16(data[8:]))

	c := parse(t, testFont())
	assert.Equal(t, "test", c.Name())
	assert.Equal(t, 6, c.Glyphs())
	assert.Equal(t, 3, c.Linespace())
	assert.Equal(t, 1, c.YShift())
	assert.True(t, c.HasOutline())
}

func TestGlyphIndexASCIIMap(t *testing.T) {
	f := &CompactFont{Name: "ascii"}
	for cp := rune(0x20); cp < 0x20+96; cp++ {
		f.Glyphs = append(f.Glyphs, GlyphImage{Codepoint: cp, Width: 1, Height: 1, Advance: 1, Alpha: []byte{1}})
	}
	c := parse(t, f)

	idx, ok := c.GlyphIndex('A')
	require.True(t, ok)
	assert.Equal(t, 0x21, idx)

	_, ok = c.GlyphIndex(0x20 + 96)
	assert.False(t, ok)
	_, ok = c.GlyphIndex(0x1F)
	assert.False(t, ok)
}

func TestGlyphIndexTable(t *testing.T) {
	c := parse(t, testFont())

	idx, ok := c.GlyphIndex('B')
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = c.GlyphIndex('é')
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = c.GlyphIndex('ß')
	assert.False(t, ok)
	_, ok = c.GlyphIndex(-1)
	assert.False(t, ok)
}

func TestGlyphAndBitmap(t *testing.T) {
	c := parse(t, testFont())

	g, err := c.Glyph(2, false)
	require.NoError(t, err)
	assert.Equal(t, Glyph{Index: 2, Width: 1, Height: 1, TSB: 1, Advance: 2, Start: 8}, g)

	bm, err := c.Bitmap(g)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, bm)

	o, err := c.Glyph(0, true)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Index)
	bm, err = c.Bitmap(o)
	require.NoError(t, err)
	assert.Equal(t, solid(2, 2, 0x80), bm)

	_, err = c.Glyph(6, false)
	assert.ErrorIs(t, err, ErrGlyphRange)
}

func TestGlyphOutlineMissing(t *testing.T) {
	f := testFont()
	f.Outlines = nil
	c := parse(t, f)

	assert.False(t, c.HasOutline())
	_, err := c.Glyph(0, true)
	assert.ErrorIs(t, err, ErrNoOutline)
}

func TestParseCompactErrors(t *testing.T) {
	data := encode(t, testFont())

	bad := bytes.Clone(data)
	bad[0] = 0
	_, err := ParseCompact(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = ParseCompact(bytes.NewReader(data[:10]))
	assert.Error(t, err)

	bad = bytes.Clone(data)
	binary.LittleEndian.PutUint16(bad[4:], 200)
	_, err = ParseCompact(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrCorrupt)

	// Offsets past the end of the file are rejected before any table is read.
	huge := bytes.Clone(data[:compactHeaderSize])
	binary.LittleEndian.PutUint32(huge[16:], 0x7FFFFFF0)
	_, err = ParseCompact(bytes.NewReader(huge))
	assert.ErrorIs(t, err, ErrCorrupt)

	bad = bytes.Clone(data)
	binary.LittleEndian.PutUint32(bad[16:], uint32(len(data)+1))
	_, err = ParseCompact(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestEncodeCompactValidation(t *testing.T) {
	f := testFont()
	f.Glyphs[0].Alpha = nil
	assert.Error(t, EncodeCompact(&bytes.Buffer{}, f))

	f = testFont()
	f.Glyphs[1].Codepoint = 'B'
	assert.Error(t, EncodeCompact(&bytes.Buffer{}, f))

	f = testFont()
	f.Outlines = f.Outlines[:1]
	assert.Error(t, EncodeCompact(&bytes.Buffer{}, f))
}

func TestLoadCompact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000.fnt")
	require.NoError(t, os.WriteFile(path, encode(t, testFont()), 0o644))

	c, err := LoadCompact(path)
	require.NoError(t, err)
	defer c.Close()

	g, err := c.Glyph(1, false)
	require.NoError(t, err)
	bm, err := c.Bitmap(g)
	require.NoError(t, err)
	assert.Len(t, bm, 4)

	_, err = LoadCompact(filepath.Join(t.TempDir(), "nope.fnt"))
	assert.Error(t, err)
}
