package domain

import "fmt"

// Pixel is a premultiplied RGBA value packed least significant byte first:
// R in bits 0-7, G in 8-15, B in 16-23 and A in 24-31.
// Colour channels never exceed alpha.
type Pixel uint32

// Common pixels.
const (
	Transparent Pixel = 0x00000000
	OpaqueBlack Pixel = 0xFF000000
	White       Pixel = 0xFFFFFFFF
	Red         Pixel = 0xFF0000FF
	Green       Pixel = 0xFF00FF00
	Blue        Pixel = 0xFFFF0000
)

// NewPixel packs four channels. The caller is responsible for premultiplying.
func NewPixel(r, g, b, a uint8) Pixel {
	return Pixel(uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r))
}

// R returns the red channel.
func (p Pixel) R() uint8 { return uint8(p) }

// G returns the green channel.
func (p Pixel) G() uint8 { return uint8(p >> 8) }

// B returns the blue channel.
func (p Pixel) B() uint8 { return uint8(p >> 16) }

// A returns the alpha channel.
func (p Pixel) A() uint8 { return uint8(p >> 24) }

// Channel returns channel i (0=R, 1=G, 2=B, 3=A).
func (p Pixel) Channel(i int) uint8 {
	return uint8(p >> (uint(i&3) * 8))
}

// WithChannel returns p with channel i replaced by v.
func (p Pixel) WithChannel(i int, v uint8) Pixel {
	shift := uint(i&3) * 8
	return p&^(0xFF<<shift) | Pixel(v)<<shift
}

// Opaque returns p with alpha forced to 255.
func (p Pixel) Opaque() Pixel {
	return p | OpaqueBlack
}

// RGB drops alpha.
func (p Pixel) RGB() RGB {
	return RGB{R: p.R(), G: p.G(), B: p.B()}
}

func (p Pixel) String() string {
	return fmt.Sprintf("RGBA(%d, %d, %d, %d)", p.R(), p.G(), p.B(), p.A())
}

// Scale multiplies every channel of p by (factor+1)/256, rounding down.
// Two channels share one multiply in 16-bit lanes.
func Scale(factor uint8, p Pixel) Pixel {
	s := uint32(factor) + 1
	ag := (uint32(p) >> 8) & 0x00FF00FF
	rb := uint32(p) & 0x00FF00FF
	sag := (s * ag) & 0xFF00FF00
	srb := ((s * rb) >> 8) & 0x00FF00FF
	return Pixel(sag | srb)
}

// Over composites src on top of dst (Porter-Duff source-over for
// premultiplied pixels), channel by channel including alpha.
func Over(dst, src Pixel) Pixel {
	sa := uint32(src.A())
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		d := (uint32(dst) >> shift) & 0xFF
		s := (uint32(src) >> shift) & 0xFF
		v := prelerp(d, s, sa)
		out |= v << shift
	}
	return Pixel(out)
}

// prelerp computes p + q - (a+1)*p/256, clamped to a byte.
func prelerp(p, q, a uint32) uint32 {
	v := p + q - ((a+1)*p)>>8
	if v > 0xFF {
		return 0xFF
	}
	return v
}
