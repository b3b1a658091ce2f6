package font

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
)

// GlyphImage is one rendered glyph to be written by EncodeCompact.
type GlyphImage struct {
	Codepoint rune
	Width     int
	Height    int
	LSB       int
	TSB       int
	Advance   int
	Alpha     []byte
}

// CompactFont is the input of EncodeCompact. Outlines is either empty or
// holds one outline per glyph, in the same order as Glyphs.
type CompactFont struct {
	Name      string
	Linespace int
	YShift    int
	Glyphs    []GlyphImage
	Outlines  []GlyphImage
}

func (g *GlyphImage) validate() error {
	if g.Width < 0 || g.Width > 255 || g.Height < 0 || g.Height > 255 {
		return fmt.Errorf("glyph %U: size %dx%d out of range", g.Codepoint, g.Width, g.Height)
	}
	for _, v := range []int{g.LSB, g.TSB, g.Advance} {
		if v < math.MinInt8 || v > math.MaxInt8 {
			return fmt.Errorf("glyph %U: metric %d out of range", g.Codepoint, v)
		}
	}
	if len(g.Alpha) != g.Width*g.Height {
		return fmt.Errorf("glyph %U: %d alpha bytes, want %d", g.Codepoint, len(g.Alpha), g.Width*g.Height)
	}
	return nil
}

// EncodeCompact writes f in the compact .fnt format. Glyphs are sorted by
// code point; the leading run of consecutive code points becomes the
// direct map and the rest go to the searchable code point table.
func EncodeCompact(w io.Writer, f *CompactFont) error {
	n := len(f.Glyphs)
	if len(f.Outlines) != 0 && len(f.Outlines) != n {
		return fmt.Errorf("%d outlines for %d glyphs", len(f.Outlines), n)
	}
	if f.YShift < math.MinInt8 || f.YShift > math.MaxInt8 || f.Linespace < 0 || f.Linespace > math.MaxUint16 {
		return fmt.Errorf("line metrics out of range")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return f.Glyphs[order[a]].Codepoint < f.Glyphs[order[b]].Codepoint
	})

	var fills, outlines []GlyphImage
	for i, o := range order {
		g := f.Glyphs[o]
		if i > 0 && g.Codepoint == fills[i-1].Codepoint {
			return fmt.Errorf("duplicate glyph %U", g.Codepoint)
		}
		fills = append(fills, g)
		if len(f.Outlines) != 0 {
			outlines = append(outlines, f.Outlines[o])
		}
	}
	all := slices.Concat(fills, outlines)
	if len(all) > math.MaxUint16 {
		return fmt.Errorf("too many glyphs: %d", len(all))
	}
	for i := range all {
		if err := all[i].validate(); err != nil {
			return err
		}
	}

	mapStart, mapN := 0, 0
	if n > 0 {
		mapStart = int(fills[0].Codepoint)
		for mapN < n && int(fills[mapN].Codepoint) == mapStart+mapN {
			mapN++
		}
	}
	if mapStart > math.MaxUint16 {
		mapStart, mapN = 0, 0
	}

	nameLen := len(f.Name) + 1
	nameLen += (4 - nameLen%4) % 4
	mapOff := compactHeaderSize + nameLen
	if mapOff > math.MaxUint16 {
		return fmt.Errorf("font name too long")
	}
	descOff := mapOff + 4*(n-mapN)
	dataOff := descOff + glyphRecordSize*len(all)

	le := binary.LittleEndian
	out := make([]byte, dataOff)
	le.PutUint32(out, CompactMagic)
	le.PutUint16(out[4:], uint16(len(all)))
	le.PutUint16(out[6:], uint16(mapStart))
	le.PutUint16(out[8:], uint16(mapN))
	le.PutUint16(out[10:], uint16(mapOff))
	le.PutUint32(out[12:], uint32(descOff))
	le.PutUint32(out[16:], uint32(dataOff))
	le.PutUint16(out[20:], uint16(f.Linespace))
	out[22] = byte(int8(f.YShift))
	if len(outlines) != 0 {
		out[23] = flagHasOutline
	}
	copy(out[compactHeaderSize:], f.Name)

	for i, g := range fills[mapN:] {
		le.PutUint32(out[mapOff+4*i:], uint32(g.Codepoint))
	}

	var start uint32
	for i, g := range all {
		d := out[descOff+glyphRecordSize*i:]
		d[0] = byte(g.Width)
		d[1] = byte(g.Height)
		d[2] = byte(int8(g.LSB))
		d[3] = byte(int8(g.TSB))
		d[4] = byte(int8(g.Advance))
		le.PutUint32(d[8:], start)
		start += uint32(len(g.Alpha))
	}
	for _, g := range all {
		out = append(out, g.Alpha...)
	}

	_, err := w.Write(out)
	return err
}
