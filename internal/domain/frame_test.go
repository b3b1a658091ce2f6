package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRGB(t *testing.T) {
	rgb := NewRGB(255, 128, 64)
	assert.Equal(t, uint8(255), rgb.R)
	assert.Equal(t, uint8(128), rgb.G)
	assert.Equal(t, uint8(64), rgb.B)
}

func TestRGBString(t *testing.T) {
	rgb := NewRGB(255, 128, 64)
	assert.Equal(t, "RGB(255, 128, 64)", rgb.String())
}

func TestRGBPixelIsOpaque(t *testing.T) {
	p := NewRGB(1, 2, 3).Pixel()
	assert.Equal(t, Pixel(0xFF030201), p)
}

func TestNewFrame(t *testing.T) {
	frame := NewFrame(PanelWidth, PanelHeight)

	assert.Equal(t, 128, frame.Width)
	assert.Equal(t, 32, frame.Height)
	assert.Equal(t, 128*32*BytesPerPixel, len(frame.Pixels))
}

func TestFrameSetGetPixel(t *testing.T) {
	frame := NewFrame(4, 4)
	frame.SetPixel(2, 3, NewRGB(10, 20, 30))

	c := frame.GetPixel(2, 3)
	require.NotNil(t, c)
	assert.Equal(t, NewRGB(10, 20, 30), *c)
}

func TestFrameOutOfBounds(t *testing.T) {
	frame := NewFrame(4, 4)

	// Should not panic
	frame.SetPixel(-1, 0, NewRGB(255, 0, 0))
	frame.SetPixel(0, 4, NewRGB(255, 0, 0))

	assert.Nil(t, frame.GetPixel(4, 0))
	assert.Nil(t, frame.GetPixel(0, -1))
	for _, b := range frame.Pixels {
		assert.Zero(t, b)
	}
}

func TestFrameFillAndClone(t *testing.T) {
	frame := NewFrame(3, 2)
	frame.Fill(NewRGB(1, 2, 3))

	clone := frame.Clone()
	clone.SetPixel(0, 0, NewRGB(9, 9, 9))

	assert.Equal(t, NewRGB(1, 2, 3), *frame.GetPixel(0, 0))
	assert.Equal(t, NewRGB(9, 9, 9), *clone.GetPixel(0, 0))
}

func TestFrameCropAndBlit(t *testing.T) {
	src := NewFrame(8, 2)
	src.SetPixel(5, 1, NewRGB(200, 0, 0))

	half := src.Crop(4, 0, 4, 2)
	assert.Equal(t, NewRGB(200, 0, 0), *half.GetPixel(1, 1))

	dst := NewFrame(4, 4)
	dst.Blit(half, 0, 2)
	assert.Equal(t, NewRGB(200, 0, 0), *dst.GetPixel(1, 3))

	// Cropping past the edge yields black
	edge := src.Crop(6, 0, 4, 2)
	assert.Equal(t, NewRGB(0, 0, 0), *edge.GetPixel(3, 1))
}
