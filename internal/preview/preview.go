// Package preview shows the panel in a terminal, two pixel rows per text
// row using the upper half block.
package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/panel"
)

// ErrQuit is returned by Run when the user closes the preview.
var ErrQuit = errors.New("preview: quit")

const upperHalf = '▀'

// Preview is a panel.Sink drawing into a tcell screen. Show decodes the
// bitplanes, so the terminal shows what the panel shows, BCM depth included.
type Preview struct {
	screen tcell.Screen

	mu    sync.Mutex
	frame *domain.Frame
	n     uint64
	ready chan struct{}
}

// New wraps an initialised screen. The caller owns Init and Fini.
func New(screen tcell.Screen) *Preview {
	return &Preview{
		screen: screen,
		ready:  make(chan struct{}, 1),
	}
}

// Show implements panel.Sink.
func (p *Preview) Show(_ context.Context, out panel.Output) error {
	f := out.Snapshot()
	p.mu.Lock()
	p.frame, p.n = f, out.Frame
	p.mu.Unlock()
	select {
	case p.ready <- struct{}{}:
	default:
	}
	return nil
}

// Run redraws on every new frame until ctx is done or the user presses
// q, Escape or Ctrl-C.
func (p *Preview) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return ErrQuit
				}
			case *tcell.EventResize:
				p.screen.Sync()
			}
		case <-p.ready:
			p.mu.Lock()
			f, n := p.frame, p.n
			p.mu.Unlock()
			p.Draw(f, fmt.Sprintf("frame %d  q to quit", n))
		}
	}
}

// Draw paints f and a status line below it.
func (p *Preview) Draw(f *domain.Frame, status string) {
	p.screen.Clear()
	for y := 0; y < f.Height; y += 2 {
		for x := 0; x < f.Width; x++ {
			style := tcell.StyleDefault.
				Foreground(color(f.GetPixel(x, y))).
				Background(color(f.GetPixel(x, y+1)))
			p.screen.SetContent(x, y/2, upperHalf, nil, style)
		}
	}
	row := (f.Height + 1) / 2
	for i, r := range []rune(status) {
		p.screen.SetContent(i, row, r, nil, tcell.StyleDefault)
	}
	p.screen.Show()
}

// color maps a pixel to a true colour; nil (below the last row) is black.
func color(c *domain.RGB) tcell.Color {
	if c == nil {
		return tcell.NewRGBColor(0, 0, 0)
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
