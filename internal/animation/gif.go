package animation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"time"

	xdraw "golang.org/x/image/draw"
)

// maxStepDuration is the longest duration one playlist step can hold.
const maxStepDuration = 255 * time.Millisecond

// transparentNibble marks a pixel that lets the layers below show through.
const transparentNibble = 0x0A

// FromGIF converts an animated GIF into an archive animation of w x h
// pixels. Frames are scaled with nearest neighbour sampling and reduced to
// 16 grey levels that index the playback colour shades. Identical frames
// are stored once, and delays longer than a step allows are split.
func FromGIF(name string, id uint16, g *gif.GIF, w, h int) (Animation, error) {
	if len(g.Image) == 0 {
		return Animation{}, errors.New("gif has no frames")
	}
	a := Animation{Name: name, ID: id, Width: w, Height: h}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	stored := make(map[string]uint8)

	for i, frame := range g.Image {
		xdraw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, xdraw.Over)
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)

		px := quantize(scaled)
		fid, ok := stored[string(px)]
		if !ok {
			a.Frames = append(a.Frames, px)
			if len(a.Frames) > 255 {
				return Animation{}, fmt.Errorf("%s: more than 255 distinct frames", name)
			}
			fid = uint8(len(a.Frames))
			stored[string(px)] = fid
		}

		delay := 100 * time.Millisecond
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		for delay > 0 {
			d := min(delay, maxStepDuration)
			a.Steps = append(a.Steps, FrameStep{FrameID: fid, Duration: d})
			delay -= d
		}

		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalBackground {
			xdraw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		}
	}
	if len(a.Steps) > 255 {
		return Animation{}, fmt.Errorf("%s: %d steps, at most 255", name, len(a.Steps))
	}
	return a, a.validate()
}

// quantize packs img into nibbles, high nibble first.
func quantize(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy()/2)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := nibble(img.RGBAAt(x, y))
			if i/2 >= len(out) {
				return out
			}
			if i&1 == 0 {
				out[i/2] |= v << 4
			} else {
				out[i/2] |= v
			}
			i++
		}
	}
	return out
}

func nibble(c color.RGBA) byte {
	if c.A < 0x80 {
		return transparentNibble
	}
	v := color.GrayModel.Convert(c).(color.Gray).Y >> 4
	if v == transparentNibble {
		v++
	}
	return v
}
