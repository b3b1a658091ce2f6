// Command fntconv renders a TrueType font into the compact .fnt format.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype/truetype"
	xfont "golang.org/x/image/font"

	"github.com/jwulff/pinclock-go/internal/font"
)

var (
	size    = flag.Float64("size", 24, "font size in pixels")
	outline = flag.Int("outline", 1, "outline width in pixels, 0 for none")
	chars   = flag.String("chars", "0123456789: ", "characters to include")
	ascii   = flag.Bool("ascii", false, "include all printable ASCII")
	name    = flag.String("name", "", "font name stored in the file (default: input file name)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fntconv [flags] <in.ttf> <out.fnt>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	if err := convert(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func convert(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	ttf, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    *size,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	defer face.Close()

	runes := []rune(*chars)
	if *ascii {
		for r := rune(0x20); r < 0x7F; r++ {
			if !strings.ContainsRune(*chars, r) {
				runes = append(runes, r)
			}
		}
	}
	n := *name
	if n == "" {
		n = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}

	f, err := font.RenderFace(face, n, runes, *outline)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := font.EncodeCompact(&buf, f); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d glyphs, linespace %d, %s\n", out, len(f.Glyphs), f.Linespace, humanize.Bytes(uint64(buf.Len())))
	return nil
}
