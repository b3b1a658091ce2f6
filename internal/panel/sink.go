package panel

import (
	"context"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// Output is one encoded frame ready for the bus.
type Output struct {
	Width  int
	Height int
	// Schedule lists the plane to emit for each time slot.
	Schedule []int
	// Planes[p][row*Width+col] is the bus word for plane p.
	Planes [][]uint16
	// SwapPairs is set when bus position x carries display column x^1.
	SwapPairs bool
	Frame     uint64
}

// Word returns the bus word for plane p, scan row and bus position col.
func (o Output) Word(p, row, col int) uint16 {
	return o.Planes[p][row*o.Width+col]
}

// Decode reconstructs the displayed colour at (x, y). Bits below the BCM
// depth are lost.
func (o Output) Decode(x, y int) domain.RGB {
	if x < 0 || x >= o.Width || y < 0 || y >= o.Height {
		return domain.RGB{}
	}
	rows := o.Height / 2
	rBit, gBit, bBit := BitR1, BitG1, BitB1
	if y >= rows {
		y -= rows
		rBit, gBit, bBit = BitR2, BitG2, BitB2
	}
	if o.SwapPairs {
		x ^= 1
	}
	i := y*o.Width + x

	// the R lines carry bits 16-23 of the composite word, the B lines bits 0-7
	k := len(o.Planes)
	var hi, mid, lo uint8
	for pl := 0; pl < k; pl++ {
		bit := uint8(1) << (8 - k + pl)
		word := o.Planes[pl][i]
		if word&rBit != 0 {
			hi |= bit
		}
		if word&gBit != 0 {
			mid |= bit
		}
		if word&bBit != 0 {
			lo |= bit
		}
	}
	return domain.NewRGB(lo, mid, hi)
}

// Snapshot decodes the whole frame.
func (o Output) Snapshot() *domain.Frame {
	f := domain.NewFrame(o.Width, o.Height)
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			f.SetPixel(x, y, o.Decode(x, y))
		}
	}
	return f
}

// Sink receives encoded frames. Show must not retain Output after returning.
type Sink interface {
	Show(ctx context.Context, out Output) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, out Output) error

// Show calls f.
func (f SinkFunc) Show(ctx context.Context, out Output) error { return f(ctx, out) }

// NopSink discards frames.
type NopSink struct{}

// Show does nothing.
func (NopSink) Show(context.Context, Output) error { return nil }

// MultiSink fans a frame out to several sinks, stopping at the first error.
type MultiSink []Sink

// Show forwards out to every sink.
func (m MultiSink) Show(ctx context.Context, out Output) error {
	for _, s := range m {
		if err := s.Show(ctx, out); err != nil {
			return err
		}
	}
	return nil
}
