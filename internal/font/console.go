package font

import (
	"fmt"
	"strings"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// Console prints status lines at the bottom of the text layer, scrolling
// older lines up.
type Console struct {
	w    *Writer
	font *Compact
	prev *Compact
	x    int
}

// NewConsole prints with f through w.
func NewConsole(w *Writer, f *Compact) *Console {
	return &Console{w: w, font: f}
}

// Begin switches to the console font and clears the text layer.
func (c *Console) Begin() {
	c.prev = c.w.SetFont(c.font)
	c.w.canvas.SetAll(c.w.layer, domain.Transparent)
	c.x = 0
}

func (c *Console) baseline() int {
	f := c.w.Font()
	if f == nil {
		return c.w.canvas.Height()
	}
	return c.w.canvas.Height() - f.Linespace()/4
}

// Printf appends formatted text to the current line. Every newline
// scrolls the layer up by one line and starts over at the left edge.
func (c *Console) Printf(color domain.Pixel, format string, args ...any) error {
	f := c.w.Font()
	if f == nil {
		return ErrNoFont
	}
	var firstErr error
	for i, part := range strings.Split(fmt.Sprintf(format, args...), "\n") {
		if i > 0 {
			c.w.canvas.ShiftUp(c.w.layer, f.Linespace())
			c.x = 0
		}
		if part == "" {
			continue
		}
		if err := c.w.DrawString(c.w.layer, c.x, c.baseline(), part, 0, AlignLeft, color, false); err != nil && firstErr == nil {
			firstErr = err
		}
		c.x += c.w.StringWidth(part, 0)
	}
	return firstErr
}

// End restores the font that was active before Begin.
func (c *Console) End() {
	if c.prev != nil {
		c.w.SetFont(c.prev)
	}
	c.prev = nil
}
