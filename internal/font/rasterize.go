package font

import (
	"fmt"
	"image"
	"image/color"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// RenderFace rasterizes runes from face into a CompactFont. Runes the face
// lacks are left out. With outline > 0 a second bank is added whose
// glyphs are the fills grown by outline pixels in every direction.
func RenderFace(face xfont.Face, name string, runes []rune, outline int) (*CompactFont, error) {
	m := face.Metrics()
	f := &CompactFont{
		Name:      name,
		Linespace: m.Height.Ceil(),
		YShift:    m.Descent.Ceil(),
	}
	for _, r := range runes {
		dr, mask, mp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		g := GlyphImage{
			Codepoint: r,
			Width:     dr.Dx(),
			Height:    dr.Dy(),
			LSB:       dr.Min.X,
			TSB:       -dr.Min.Y,
			Advance:   adv.Round(),
			Alpha:     make([]byte, dr.Dx()*dr.Dy()),
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				a := color.AlphaModel.Convert(mask.At(mp.X+x, mp.Y+y)).(color.Alpha)
				g.Alpha[y*g.Width+x] = a.A
			}
		}
		if err := g.validate(); err != nil {
			return nil, err
		}
		f.Glyphs = append(f.Glyphs, g)
		if outline > 0 {
			f.Outlines = append(f.Outlines, grow(g, outline))
		}
	}
	if len(f.Glyphs) == 0 {
		return nil, fmt.Errorf("face has none of the %d requested runes", len(runes))
	}
	return f, nil
}

// grow dilates a glyph mask by r pixels, taking the maximum alpha in a
// disc around each pixel.
func grow(g GlyphImage, r int) GlyphImage {
	o := g
	o.Width = g.Width + 2*r
	o.Height = g.Height + 2*r
	o.LSB = g.LSB - r
	o.TSB = g.TSB + r
	o.Alpha = make([]byte, o.Width*o.Height)

	src := image.Rect(0, 0, g.Width, g.Height)
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			var best byte
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					if dx*dx+dy*dy > r*r {
						continue
					}
					p := image.Pt(x-r+dx, y-r+dy)
					if !p.In(src) {
						continue
					}
					best = max(best, g.Alpha[p.Y*g.Width+p.X])
				}
			}
			o.Alpha[y*o.Width+x] = best
		}
	}
	return o
}
