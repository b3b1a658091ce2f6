package font

import (
	"bytes"
	"sync"
	"unicode"
)

// tinyWidth and tinyHeight are the cell size of the built-in font.
const (
	tinyWidth  = 3
	tinyHeight = 5
)

// tinyGlyphs holds 3x5 bitmaps, one row per byte, most significant of the
// three bits on the left. Lower case letters reuse the capitals.
var tinyGlyphs = map[rune][tinyHeight]uint8{
	// Numbers
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},

	// Uppercase letters
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b011, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b110, 0b100, 0b110, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},

	// Symbols
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
	'/': {0b001, 0b001, 0b010, 0b100, 0b100},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	':': {0b000, 0b010, 0b000, 0b010, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},

	// Punctuation for the start-up console
	'!': {0b010, 0b010, 0b010, 0b000, 0b010},
	'(': {0b001, 0b010, 0b010, 0b010, 0b001},
	')': {0b100, 0b010, 0b010, 0b010, 0b100},
	',': {0b000, 0b000, 0b000, 0b010, 0b100},
	'\'': {0b010, 0b010, 0b000, 0b000, 0b000},
	'%': {0b101, 0b001, 0b010, 0b100, 0b101},
	'_': {0b000, 0b000, 0b000, 0b000, 0b111},
}

var builtin = sync.OnceValue(func() []byte {
	f := &CompactFont{Name: "tiny", Linespace: tinyHeight + 1}
	for r, rows := range tinyGlyphs {
		f.Glyphs = append(f.Glyphs, tinyGlyph(r, rows))
		if unicode.IsUpper(r) {
			f.Glyphs = append(f.Glyphs, tinyGlyph(unicode.ToLower(r), rows))
		}
	}
	var buf bytes.Buffer
	if err := EncodeCompact(&buf, f); err != nil {
		panic("font: built-in font: " + err.Error())
	}
	return buf.Bytes()
})

func tinyGlyph(r rune, rows [tinyHeight]uint8) GlyphImage {
	g := GlyphImage{
		Codepoint: r,
		Width:     tinyWidth,
		Height:    tinyHeight,
		TSB:       tinyHeight,
		Advance:   tinyWidth + 1,
		Alpha:     make([]byte, tinyWidth*tinyHeight),
	}
	for y, row := range rows {
		for x := 0; x < tinyWidth; x++ {
			if row&(1<<(tinyWidth-1-x)) != 0 {
				g.Alpha[y*tinyWidth+x] = 0xFF
			}
		}
	}
	return g
}

// Builtin returns the 3x5 font used when no console font file is found.
func Builtin() *Compact {
	c, err := ParseCompact(bytes.NewReader(builtin()))
	if err != nil {
		panic("font: built-in font: " + err.Error())
	}
	return c
}
