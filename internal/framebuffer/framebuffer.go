// Package framebuffer holds the layered, premultiplied pixel storage that
// producers draw into and the panel driver composites from.
package framebuffer

import "github.com/jwulff/pinclock-go/internal/domain"

// Layer indices of the reference design, bottom to top.
const (
	LayerBackground = 0
	LayerText       = 1
	LayerAnimation  = 2

	DefaultLayers = 3
)

// Buffer owns N layers of width x height pixels. Layer N-1 is the topmost.
//
// Buffer does no locking of its own; concurrent producers and the
// compositor are kept apart by the layersync barrier.
type Buffer struct {
	width, height int
	layers        [][]domain.Pixel
}

// New allocates a buffer with all layers fully transparent.
func New(width, height, layers int) *Buffer {
	b := &Buffer{
		width:  width,
		height: height,
		layers: make([][]domain.Pixel, layers),
	}
	for i := range b.layers {
		b.layers[i] = make([]domain.Pixel, width*height)
	}
	return b
}

// Width returns the layer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the layer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Layers returns the number of layers.
func (b *Buffer) Layers() int { return len(b.layers) }

func (b *Buffer) layer(l int) []domain.Pixel {
	if l < 0 || l >= len(b.layers) {
		return nil
	}
	return b.layers[l]
}

func (b *Buffer) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// SetPixel overwrites one pixel. Coordinates or layers out of range are ignored.
func (b *Buffer) SetPixel(layer, x, y int, c domain.Pixel) {
	px := b.layer(layer)
	if px == nil || !b.inside(x, y) {
		return
	}
	px[x+y*b.width] = c
}

// SetPixelOver blends c over the existing pixel.
func (b *Buffer) SetPixelOver(layer, x, y int, c domain.Pixel) {
	px := b.layer(layer)
	if px == nil || !b.inside(x, y) {
		return
	}
	i := x + y*b.width
	px[i] = domain.Over(px[i], c)
}

// SetPixelChannel replaces a single channel (0=R .. 3=A) of one pixel.
func (b *Buffer) SetPixelChannel(layer, x, y, ch int, v uint8) {
	px := b.layer(layer)
	if px == nil || !b.inside(x, y) {
		return
	}
	i := x + y*b.width
	px[i] = px[i].WithChannel(ch, v)
}

// GetPixel reads one pixel. Coordinates are clamped to the layer edges so
// neighbourhood filters can read past the border; an unknown layer reads 0.
func (b *Buffer) GetPixel(layer, x, y int) domain.Pixel {
	px := b.layer(layer)
	if px == nil {
		return 0
	}
	x = clamp(x, 0, b.width-1)
	y = clamp(y, 0, b.height-1)
	return px[x+y*b.width]
}

// SetAll fills a layer with c.
func (b *Buffer) SetAll(layer int, c domain.Pixel) {
	px := b.layer(layer)
	for i := range px {
		px[i] = c
	}
}

// FadeOut dims every non-zero pixel of a layer by factor/255 and returns how
// many pixels were non-zero before the call. Repeated calls converge to a
// fully transparent layer.
func (b *Buffer) FadeOut(layer, factor int) int {
	px := b.layer(layer)
	if factor <= 0 {
		factor = 1
	}
	if factor > 255 {
		factor = 255
	}
	scale := uint8(255 - factor)
	touched := 0
	for i, p := range px {
		if p != 0 {
			px[i] = domain.Scale(scale, p)
			touched++
		}
	}
	return touched
}

// ShiftUp scrolls a layer up by n rows and clears the n rows at the bottom.
func (b *Buffer) ShiftUp(layer, n int) {
	px := b.layer(layer)
	if px == nil || n <= 0 {
		return
	}
	if n >= b.height {
		clear(px)
		return
	}
	copy(px, px[n*b.width:])
	clear(px[(b.height-n)*b.width:])
}

// DrawNibbles unpacks a w x h block of 4-bit paletted pixels, two per byte
// with the high nibble first, into a layer at (x0, y0). Index 0xA is
// transparent and leaves a zero pixel.
func (b *Buffer) DrawNibbles(layer, x0, y0, w, h int, data []byte, shades *domain.Shades) {
	for i := 0; i < w*h && i/2 < len(data); i++ {
		v := data[i/2]
		if i&1 == 0 {
			v >>= 4
		}
		v &= 0x0F
		var c domain.Pixel
		if v != 0x0A {
			c = shades[v]
		}
		b.SetPixel(layer, x0+i%w, y0+i/w, c)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
