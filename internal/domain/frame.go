// Package domain contains the pixel types shared by the display pipeline.
package domain

import "fmt"

// Reference panel geometry: two chained 64x32 HUB75 modules.
const (
	PanelWidth  = 128
	PanelHeight = 32
)

// BytesPerPixel is the number of bytes per pixel in a Frame (RGB).
const BytesPerPixel = 3

// RGB is an opaque display colour with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// NewRGB creates a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// Pixel converts the colour to an opaque Pixel.
func (c RGB) Pixel() Pixel {
	return NewPixel(c.R, c.G, c.B, 0xFF)
}

// Luma returns the average of the three channels.
func (c RGB) Luma() int {
	return (int(c.R) + int(c.G) + int(c.B)) / 3
}

// String returns a string representation of the RGB color.
func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Frame is a composited, display ready image.
type Frame struct {
	Width  int
	Height int
	// Pixels is a flat array of RGB values: [r0,g0,b0, r1,g1,b1, ...]
	Pixels []byte
}

// NewFrame creates a new frame filled with black.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*BytesPerPixel),
	}
}

// SetPixel sets a single pixel. Out of bounds coordinates are silently ignored.
func (f *Frame) SetPixel(x, y int, color RGB) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	offset := (y*f.Width + x) * BytesPerPixel
	f.Pixels[offset] = color.R
	f.Pixels[offset+1] = color.G
	f.Pixels[offset+2] = color.B
}

// GetPixel returns the color at the specified coordinates, or nil if out of bounds.
func (f *Frame) GetPixel(x, y int) *RGB {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return nil
	}
	offset := (y*f.Width + x) * BytesPerPixel
	return &RGB{
		R: f.Pixels[offset],
		G: f.Pixels[offset+1],
		B: f.Pixels[offset+2],
	}
}

// Fill fills the entire frame with the specified color.
func (f *Frame) Fill(color RGB) {
	for i := 0; i < f.Width*f.Height; i++ {
		offset := i * BytesPerPixel
		f.Pixels[offset] = color.R
		f.Pixels[offset+1] = color.G
		f.Pixels[offset+2] = color.B
	}
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	clone := &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pixels: make([]byte, len(f.Pixels)),
	}
	copy(clone.Pixels, f.Pixels)
	return clone
}

// Blit copies src into f with its top-left corner at (x, y), clipping at the edges.
func (f *Frame) Blit(src *Frame, x, y int) {
	for sy := 0; sy < src.Height; sy++ {
		for sx := 0; sx < src.Width; sx++ {
			if c := src.GetPixel(sx, sy); c != nil {
				f.SetPixel(x+sx, y+sy, *c)
			}
		}
	}
}

// Crop returns the w x h region starting at (x, y). Areas outside f are black.
func (f *Frame) Crop(x, y, w, h int) *Frame {
	out := NewFrame(w, h)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if c := f.GetPixel(x+dx, y+dy); c != nil {
				out.SetPixel(dx, dy, *c)
			}
		}
	}
	return out
}
