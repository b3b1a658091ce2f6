package framebuffer

import (
	"testing"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer() *Buffer {
	return New(domain.PanelWidth, domain.PanelHeight, DefaultLayers)
}

func TestNewIsTransparent(t *testing.T) {
	b := newTestBuffer()

	assert.Equal(t, 128, b.Width())
	assert.Equal(t, 32, b.Height())
	assert.Equal(t, 3, b.Layers())
	assert.Equal(t, domain.Transparent, b.GetPixel(2, 10, 10))
}

func TestSetPixelClipsSilently(t *testing.T) {
	b := newTestBuffer()

	// Should not panic
	b.SetPixel(0, -1, 0, domain.White)
	b.SetPixel(0, 128, 0, domain.White)
	b.SetPixel(0, 0, 32, domain.White)
	b.SetPixel(3, 0, 0, domain.White)
	b.SetPixel(-1, 0, 0, domain.White)

	for l := 0; l < b.Layers(); l++ {
		assert.Equal(t, 0, b.FadeOut(l, 1), "layer %d", l)
	}
}

func TestGetPixelClampsCoordinates(t *testing.T) {
	b := newTestBuffer()
	b.SetPixel(0, 0, 0, domain.Red)
	b.SetPixel(0, 127, 31, domain.Blue)

	assert.Equal(t, domain.Red, b.GetPixel(0, -5, -1))
	assert.Equal(t, domain.Blue, b.GetPixel(0, 500, 40))
	assert.Equal(t, domain.Pixel(0), b.GetPixel(7, 0, 0))
}

func TestSetPixelOverBlends(t *testing.T) {
	b := newTestBuffer()
	b.SetPixel(1, 4, 4, domain.OpaqueBlack)
	b.SetPixelOver(1, 4, 4, domain.Scale(127, domain.White))

	p := b.GetPixel(1, 4, 4)
	assert.Equal(t, uint8(255), p.A())
	assert.Equal(t, uint8(127), p.R())
}

func TestSetPixelChannel(t *testing.T) {
	b := newTestBuffer()
	b.SetPixel(0, 1, 1, domain.OpaqueBlack)
	b.SetPixelChannel(0, 1, 1, 2, 99)

	assert.Equal(t, domain.NewPixel(0, 0, 99, 255), b.GetPixel(0, 1, 1))
}

func TestSetAll(t *testing.T) {
	b := newTestBuffer()
	b.SetAll(2, domain.Green)

	assert.Equal(t, domain.Green, b.GetPixel(2, 0, 0))
	assert.Equal(t, domain.Green, b.GetPixel(2, 127, 31))
	assert.Equal(t, domain.Transparent, b.GetPixel(1, 0, 0))

	// Unknown layer is ignored
	b.SetAll(9, domain.Green)
}

func TestFadeOutConverges(t *testing.T) {
	b := newTestBuffer()
	b.SetAll(2, domain.White)

	prev := b.GetPixel(2, 0, 0)
	touched := b.FadeOut(2, 10)
	assert.Equal(t, 128*32, touched)

	calls := 1
	for touched > 0 {
		cur := b.GetPixel(2, 0, 0)
		assert.LessOrEqual(t, cur.R(), prev.R(), "fade must never brighten")
		prev = cur
		touched = b.FadeOut(2, 10)
		calls++
		require.Less(t, calls, 100, "fade did not terminate")
	}
	assert.Equal(t, domain.Transparent, b.GetPixel(2, 64, 16))
}

func TestFadeOutNonPositiveFactor(t *testing.T) {
	b := newTestBuffer()
	b.SetPixel(0, 0, 0, domain.White)

	assert.Equal(t, 1, b.FadeOut(0, 0))
	assert.Equal(t, domain.Scale(254, domain.White), b.GetPixel(0, 0, 0))
	assert.Equal(t, 0, b.FadeOut(5, 10))
}

func TestShiftUp(t *testing.T) {
	b := newTestBuffer()
	b.SetPixel(1, 3, 10, domain.Red)
	b.SetPixel(1, 3, 31, domain.Blue)

	b.ShiftUp(1, 8)

	assert.Equal(t, domain.Red, b.GetPixel(1, 3, 2))
	assert.Equal(t, domain.Blue, b.GetPixel(1, 3, 23))
	for y := 24; y < 32; y++ {
		assert.Equal(t, domain.Transparent, b.GetPixel(1, 3, y))
	}
}

func TestShiftUpWholeLayer(t *testing.T) {
	b := newTestBuffer()
	b.SetAll(1, domain.White)

	b.ShiftUp(1, 0)
	assert.Equal(t, domain.White, b.GetPixel(1, 0, 31))

	b.ShiftUp(1, 40)
	assert.Equal(t, 0, b.FadeOut(1, 1))
}

func TestDrawNibbles(t *testing.T) {
	b := New(4, 1, 1)
	shades := domain.ShadesOpaque(domain.White)

	// pixels: 0xF, 0xA (transparent), 0x0, 0x5
	b.DrawNibbles(0, 0, 0, 4, 1, []byte{0xFA, 0x05}, &shades)

	assert.Equal(t, domain.White, b.GetPixel(0, 0, 0))
	assert.Equal(t, domain.Transparent, b.GetPixel(0, 1, 0))
	assert.Equal(t, domain.OpaqueBlack, b.GetPixel(0, 2, 0))
	assert.Equal(t, shades[5], b.GetPixel(0, 3, 0))
}

func TestDrawNibblesShortData(t *testing.T) {
	b := New(4, 2, 1)
	b.SetAll(0, domain.Red)
	shades := domain.ShadesOpaque(domain.White)

	// only the first two pixels are present
	b.DrawNibbles(0, 0, 0, 4, 2, []byte{0xFF}, &shades)

	assert.Equal(t, domain.White, b.GetPixel(0, 1, 0))
	assert.Equal(t, domain.Red, b.GetPixel(0, 2, 0))
}
