// Package font loads the bitmap fonts used for the clock face and the
// status console, and lays strings out onto framebuffer layers.
package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
)

// CompactMagic starts every compact .fnt file.
const CompactMagic = 0x005A54BE

const (
	compactHeaderSize = 24
	glyphRecordSize   = 12
	flagHasOutline    = 1 << 0
)

var (
	ErrBadMagic     = errors.New("font: bad magic")
	ErrCorrupt      = errors.New("font: corrupt file")
	ErrGlyphRange   = errors.New("font: glyph index out of range")
	ErrNoOutline    = errors.New("font: no outline glyphs")
	ErrGlyphMissing = errors.New("font: glyph not found")
)

// Glyph is one glyph description. Bitmaps are Width*Height alpha bytes.
type Glyph struct {
	Index   int
	Width   int
	Height  int
	LSB     int
	TSB     int
	Advance int
	Start   uint32
}

// Compact is an antialiased font in the compact .fnt format. Descriptions
// are held in memory, bitmaps are read on demand.
type Compact struct {
	name       string
	glyphs     int
	mapStart   int
	mapN       int
	linespace  int
	yShift     int
	flags      uint8
	dataOffset int64
	codepoints []uint32
	descs      []Glyph

	mu     sync.Mutex
	rs     io.ReadSeeker
	closer io.Closer
}

// LoadCompact opens a .fnt file. The font keeps the file open for bitmap
// reads until Close.
func LoadCompact(path string) (*Compact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening font: %w", err)
	}
	c, err := ParseCompact(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.closer = f
	return c, nil
}

// ParseCompact reads the header, name, code point table and glyph
// descriptions from rs.
func ParseCompact(rs io.ReadSeeker) (*Compact, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	hdr := make([]byte, compactHeaderSize)
	if _, err := io.ReadFull(rs, hdr); err != nil {
		return nil, fmt.Errorf("reading font header: %w", err)
	}
	le := binary.LittleEndian
	if le.Uint32(hdr) != CompactMagic {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, le.Uint32(hdr))
	}

	c := &Compact{
		rs:         rs,
		glyphs:     int(le.Uint16(hdr[4:])),
		mapStart:   int(le.Uint16(hdr[6:])),
		mapN:       int(le.Uint16(hdr[8:])),
		linespace:  int(le.Uint16(hdr[20:])),
		yShift:     int(int8(hdr[22])),
		flags:      hdr[23],
		dataOffset: int64(le.Uint32(hdr[16:])),
	}
	mapOff := int64(le.Uint16(hdr[10:]))
	descOff := int64(le.Uint32(hdr[12:]))
	if mapOff < compactHeaderSize || descOff < mapOff || c.dataOffset < descOff ||
		(descOff-mapOff)%4 != 0 {
		return nil, fmt.Errorf("%w: table offsets %d %d %d", ErrCorrupt, mapOff, descOff, c.dataOffset)
	}
	if c.dataOffset > size {
		return nil, fmt.Errorf("%w: tables end at %d, file has %d bytes", ErrCorrupt, c.dataOffset, size)
	}
	if n := (c.dataOffset - descOff) / glyphRecordSize; n < int64(c.glyphs) {
		return nil, fmt.Errorf("%w: %d glyph descriptions for %d glyphs", ErrCorrupt, n, c.glyphs)
	}

	tables := make([]byte, c.dataOffset-compactHeaderSize)
	if _, err := io.ReadFull(rs, tables); err != nil {
		return nil, fmt.Errorf("reading font tables: %w", err)
	}
	rel := func(off int64) int64 { return off - compactHeaderSize }

	name := tables[:rel(mapOff)]
	if i := slices.Index(name, 0); i >= 0 {
		name = name[:i]
	}
	c.name = string(name)

	cps := tables[rel(mapOff):rel(descOff)]
	c.codepoints = make([]uint32, len(cps)/4)
	for i := range c.codepoints {
		c.codepoints[i] = le.Uint32(cps[4*i:])
	}

	descs := tables[rel(descOff):]
	c.descs = make([]Glyph, c.glyphs)
	for i := range c.descs {
		d := descs[i*glyphRecordSize:]
		c.descs[i] = Glyph{
			Index:   i,
			Width:   int(d[0]),
			Height:  int(d[1]),
			LSB:     int(int8(d[2])),
			TSB:     int(int8(d[3])),
			Advance: int(int8(d[4])),
			Start:   le.Uint32(d[8:]),
		}
	}
	return c, nil
}

// Close releases the file opened by LoadCompact.
func (c *Compact) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *Compact) Name() string { return c.name }

// Glyphs returns the number of glyphs including the outline bank.
func (c *Compact) Glyphs() int { return c.glyphs }

// Linespace is the baseline distance in pixels.
func (c *Compact) Linespace() int { return c.linespace }

// YShift moves the baseline so that digits sit centred on the display.
func (c *Compact) YShift() int { return c.yShift }

// HasOutline reports whether the second half of the glyphs are outlines.
func (c *Compact) HasOutline() bool { return c.flags&flagHasOutline != 0 }

// GlyphIndex finds the glyph for a code point, first in the contiguous
// map, then by binary search in the code point table.
func (c *Compact) GlyphIndex(cp rune) (int, bool) {
	idx := -1
	if off := int(cp) - c.mapStart; cp >= 0 && off >= 0 && off < c.mapN {
		idx = off
	} else if i, ok := slices.BinarySearch(c.codepoints, uint32(cp)); ok && cp >= 0 {
		idx = i + c.mapN
	}
	if idx < 0 || idx >= c.glyphs {
		return -1, false
	}
	return idx, true
}

// Glyph returns the description of glyph index, or of its outline.
func (c *Compact) Glyph(index int, outline bool) (Glyph, error) {
	if index < 0 || index >= c.glyphs {
		return Glyph{}, fmt.Errorf("%w: %d of %d", ErrGlyphRange, index, c.glyphs)
	}
	if outline {
		if !c.HasOutline() {
			return Glyph{}, ErrNoOutline
		}
		index += c.glyphs / 2
		if index >= c.glyphs {
			return Glyph{}, fmt.Errorf("%w: outline %d of %d", ErrGlyphRange, index, c.glyphs)
		}
	}
	return c.descs[index], nil
}

// Bitmap reads the alpha bytes of g, row by row.
func (c *Compact) Bitmap(g Glyph) ([]byte, error) {
	buf := make([]byte, g.Width*g.Height)
	if len(buf) == 0 {
		return buf, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.rs.Seek(c.dataOffset+int64(g.Start), io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(c.rs, buf); err != nil {
		return nil, fmt.Errorf("reading glyph %d: %w", g.Index, err)
	}
	return buf, nil
}
