package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jwulff/pinclock-go/internal/font"
)

// shadeRamp maps alpha to a character, darkest first.
const shadeRamp = " .:-=+*#%@"

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug <file.fnt> [characters]")
		os.Exit(1)
	}
	path := os.Args[1]

	f, err := font.LoadCompact(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Println("Font header:")
	fmt.Printf("  Name: %s\n", f.Name())
	fmt.Printf("  Glyphs: %d\n", f.Glyphs())
	fmt.Printf("  Linespace: %d\n", f.Linespace())
	fmt.Printf("  YShift: %d\n", f.YShift())
	fmt.Printf("  Outline bank: %v\n", f.HasOutline())

	chars := "0123456789:"
	if len(os.Args) > 2 {
		chars = os.Args[2]
	}
	for _, r := range chars {
		idx, ok := f.GlyphIndex(r)
		if !ok {
			fmt.Printf("\n%q: not in font\n", r)
			continue
		}
		dumpGlyph(f, r, idx, false)
		if f.HasOutline() {
			dumpGlyph(f, r, idx, true)
		}
	}
}

func dumpGlyph(f *font.Compact, r rune, idx int, outline bool) {
	g, err := f.Glyph(idx, outline)
	if err != nil {
		fmt.Printf("\n%q: %v\n", r, err)
		return
	}
	kind := "fill"
	if outline {
		kind = "outline"
	}
	fmt.Printf("\n%q %s: index %d, %dx%d, lsb %d, tsb %d, advance %d, offset %d\n",
		r, kind, g.Index, g.Width, g.Height, g.LSB, g.TSB, g.Advance, g.Start)

	bm, err := f.Bitmap(g)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	for y := 0; y < g.Height; y++ {
		var line, hex strings.Builder
		for x := 0; x < g.Width; x++ {
			a := bm[y*g.Width+x]
			line.WriteByte(shadeRamp[int(a)*(len(shadeRamp)-1)/255])
			fmt.Fprintf(&hex, "%02x ", a)
		}
		fmt.Printf("  |%s|  %s\n", line.String(), hex.String())
	}
}
