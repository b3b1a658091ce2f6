package framebuffer

import (
	"math"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// gamma maps a linear channel value to a perceptually even output level
// (CIE 1976 lightness).
var gamma [256]uint8

func init() {
	for i := range gamma {
		l := float64(i) / 255 * 100
		var y float64
		if l <= 8 {
			y = l / 903.3
		} else {
			y = math.Pow((l+16)/116, 3)
		}
		gamma[i] = uint8(math.Round(y * 255))
	}
}

// Gamma returns the corrected output level for channel value v.
func Gamma(v uint8) uint8 {
	return gamma[v]
}

// blend folds all layers at index i, bottom first, starting from transparent black.
func (b *Buffer) blend(i int) domain.Pixel {
	var out domain.Pixel
	for _, px := range b.layers {
		out = domain.Over(out, px[i])
	}
	return out
}

// Blended returns the gamma corrected composite at (x, y) packed as
// B<<16 | G<<8 | R, the word the panel encoder consumes.
// Coordinates outside the buffer return 0.
func (b *Buffer) Blended(x, y int) uint32 {
	if !b.inside(x, y) {
		return 0
	}
	p := b.blend(x + y*b.width)
	return uint32(gamma[p.B()])<<16 | uint32(gamma[p.G()])<<8 | uint32(gamma[p.R()])
}

// Composite returns the display colour at (x, y).
func (b *Buffer) Composite(x, y int) domain.RGB {
	w := b.Blended(x, y)
	return domain.NewRGB(uint8(w), uint8(w>>8), uint8(w>>16))
}

// Snapshot composites the whole buffer into an RGB frame.
func (b *Buffer) Snapshot() *domain.Frame {
	f := domain.NewFrame(b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			f.SetPixel(x, y, b.Composite(x, y))
		}
	}
	return f
}
