package font

import (
	"errors"
	"log/slog"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/logging"
)

// ErrNoFont is returned when drawing before a font was set.
var ErrNoFont = errors.New("font: no font loaded")

// centeredMaxBytes caps the clock string drawn by DrawCentered.
const centeredMaxBytes = 16

// Canvas is the part of the framebuffer that text drawing needs.
type Canvas interface {
	Width() int
	Height() int
	SetPixelOver(layer, x, y int, c domain.Pixel)
	SetAll(layer int, c domain.Pixel)
	ShiftUp(layer, n int)
}

// Align picks which end of a line sits on the anchor point.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Writer draws strings in the current compact font.
type Writer struct {
	canvas Canvas
	layer  int
	font   *Compact
	log    *slog.Logger
}

// NewWriter draws onto canvas. layer is the text layer used by
// DrawCentered and the console.
func NewWriter(canvas Canvas, layer int, log *slog.Logger) *Writer {
	return &Writer{canvas: canvas, layer: layer, log: logging.OrNop(log)}
}

// SetFont switches the current font and returns the previous one. A nil
// font is ignored so that a failed load keeps the old face.
func (w *Writer) SetFont(f *Compact) *Compact {
	prev := w.font
	if f != nil {
		w.font = f
	}
	return prev
}

// Font returns the current font.
func (w *Writer) Font() *Compact { return w.font }

// Layer returns the text layer.
func (w *Writer) Layer() int { return w.layer }

func limit(s string, maxBytes int) string {
	if maxBytes > 0 && maxBytes < len(s) {
		s = s[:maxBytes]
	}
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i]
		}
	}
	return s
}

// StringWidth sums the advances of s up to the first newline, looking at
// no more than maxBytes bytes (all of them if maxBytes <= 0).
func (w *Writer) StringWidth(s string, maxBytes int) int {
	if w.font == nil {
		return 0
	}
	var dec Decoder
	width := 0
	for _, b := range []byte(limit(s, maxBytes)) {
		cp := dec.Feed(b)
		if cp == 0 {
			continue
		}
		if cp == '\n' {
			break
		}
		idx, ok := w.font.GlyphIndex(cp)
		if !ok {
			continue
		}
		if g, err := w.font.Glyph(idx, false); err == nil {
			width += g.Advance
		}
	}
	return width
}

func (w *Writer) lineStart(x int, s string, align Align) int {
	width := w.StringWidth(s, 0)
	switch align {
	case AlignRight:
		return x - width
	case AlignCenter:
		return x - width/2
	default:
		return x
	}
}

// DrawString draws at most maxBytes of s with its first baseline at y. A
// newline moves the baseline down by the font's linespace and aligns the
// following line on x again. Unknown code points are skipped.
func (w *Writer) DrawString(layer, x, y int, s string, maxBytes int, align Align, color domain.Pixel, outline bool) error {
	f := w.font
	if f == nil {
		return ErrNoFont
	}
	if outline && !f.HasOutline() {
		return ErrNoOutline
	}

	s = limit(s, maxBytes)
	cx, cy := w.lineStart(x, s, align), y
	var dec Decoder
	var firstErr error
	for i := 0; i < len(s); i++ {
		cp := dec.Feed(s[i])
		if cp == 0 {
			continue
		}
		if cp == '\n' {
			cy += f.Linespace()
			cx = w.lineStart(x, s[i+1:], align)
			continue
		}

		idx, ok := f.GlyphIndex(cp)
		if !ok {
			w.log.Debug("glyph not found", "codepoint", cp, "font", f.Name())
			continue
		}
		g, err := f.Glyph(idx, outline)
		if err == nil {
			err = w.drawGlyph(layer, g, cx+g.LSB, cy-g.TSB, color)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		cx += g.Advance
	}
	return firstErr
}

func (w *Writer) drawGlyph(layer int, g Glyph, x0, y0 int, color domain.Pixel) error {
	bm, err := w.font.Bitmap(g)
	if err != nil {
		return err
	}
	i := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			a := bm[i]
			i++
			w.canvas.SetPixelOver(layer, x0+x, y0+y, domain.Pixel(a)<<24|domain.Scale(a, color))
		}
	}
	return nil
}

// DrawCentered clears the text layer and draws a short string centred on
// the display, outline first and fill on top. With a font that has no
// outline bank the fill is drawn in the outline colour.
func (w *Writer) DrawCentered(s string, outline, fill domain.Pixel) error {
	f := w.font
	if f == nil {
		return ErrNoFont
	}
	w.canvas.SetAll(w.layer, domain.Transparent)

	x := w.canvas.Width() / 2
	y := w.canvas.Height() - f.YShift()
	if f.HasOutline() {
		if err := w.DrawString(w.layer, x, y, s, centeredMaxBytes, AlignCenter, outline, true); err != nil {
			return err
		}
	} else {
		fill = outline
	}
	return w.DrawString(w.layer, x, y, s, centeredMaxBytes, AlignCenter, fill, false)
}
