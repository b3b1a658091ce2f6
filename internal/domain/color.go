package domain

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// NumShades is the size of a shade table.
const NumShades = 16

// Shades maps a 4-bit intensity to a pixel, index NumShades-1 being the strongest.
type Shades [NumShades]Pixel

// Hue returns the opaque, fully saturated colour for hue h in degrees.
func Hue(h float64) Pixel {
	return hsv(h, 1)
}

// RandomHue picks a random fully saturated opaque colour.
func RandomHue(rng *rand.Rand) Pixel {
	return Hue(rng.Float64() * 360)
}

func hsv(h, v float64) Pixel {
	r, g, b := colorful.Hsv(h, 1, v).RGB255()
	return NewPixel(r, g, b, 0xFF)
}

// ShadesOpaque fades from opaque black up to c.
func ShadesOpaque(c Pixel) Shades {
	var s Shades
	for i := range s {
		s[i] = Scale(uint8(i*17), c) | OpaqueBlack
	}
	return s
}

// ShadesTransparent fades from fully transparent up to c.
func ShadesTransparent(c Pixel) Shades {
	var s Shades
	for i := range s {
		s[i] = Scale(uint8(i*17), c)
	}
	return s
}

// ShadesHue returns opaque shades of hue h, stepping the HSV value.
func ShadesHue(h float64) Shades {
	var s Shades
	for i := range s {
		s[i] = hsv(h, float64(i)/float64(NumShades-1))
	}
	return s
}

// ShadesHueTransparent returns shades of hue h fading in from transparent.
func ShadesHueTransparent(h float64) Shades {
	return ShadesTransparent(Hue(h))
}
