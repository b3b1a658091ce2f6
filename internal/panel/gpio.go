package panel

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOPins maps the bus bits to line offsets on a GPIO character device.
type GPIOPins struct {
	Chip string `yaml:"chip" json:"chip"`
	// Bus holds the offsets for R1, G1, B1, R2, G2, B2, A, B, C, D, E, LAT, OE.
	Bus   [BusWidth]int `yaml:"bus" json:"bus"`
	Clock int           `yaml:"clock" json:"clock"`
}

// DefaultGPIOPins is the Adafruit RGB Matrix Bonnet wiring on a Raspberry Pi.
func DefaultGPIOPins() GPIOPins {
	return GPIOPins{
		Chip:  "gpiochip0",
		Bus:   [BusWidth]int{5, 13, 6, 12, 16, 23, 22, 26, 27, 20, 24, 21, 4},
		Clock: 17,
	}
}

// lineWriter is the subset of *gpiocdev.Lines the sink drives.
type lineWriter interface {
	SetValues(values []int) error
	Close() error
}

// GPIOSink bit-bangs the scheduled bitplanes onto GPIO lines, one word per
// clock pulse. Show only keeps a copy of the newest frame; Run refreshes the
// panel from it continuously, so UpdateFrame never waits on the bus. Two
// line writes per word make this a bring-up path: a full refresh of a deep
// schedule takes far longer than a frame period.
type GPIOSink struct {
	lines    lineWriter
	inverted bool
	values   []int

	mu     sync.Mutex
	latest Output
	fresh  chan struct{}
}

// NewGPIOSink requests the bus and clock lines as outputs.
func NewGPIOSink(pins GPIOPins, clockInverted bool) (*GPIOSink, error) {
	offsets := make([]int, 0, BusWidth+1)
	offsets = append(offsets, pins.Bus[:]...)
	offsets = append(offsets, pins.Clock)

	initial := make([]int, len(offsets))
	lines, err := gpiocdev.RequestLines(pins.Chip, offsets,
		gpiocdev.AsOutput(initial...),
		gpiocdev.WithConsumer("pinclock"))
	if err != nil {
		return nil, fmt.Errorf("failed to request lines on %s: %w", pins.Chip, err)
	}
	return newGPIOSink(lines, clockInverted), nil
}

func newGPIOSink(lines lineWriter, clockInverted bool) *GPIOSink {
	return &GPIOSink{
		lines:    lines,
		inverted: clockInverted,
		values:   make([]int, BusWidth+1),
		fresh:    make(chan struct{}, 1),
	}
}

// Show stores a copy of out for the refresh loop. The driver reuses its
// planes, so nothing of out is retained.
func (s *GPIOSink) Show(_ context.Context, out Output) error {
	cp := out
	cp.Schedule = slices.Clone(out.Schedule)
	cp.Planes = make([][]uint16, len(out.Planes))
	for i, pl := range out.Planes {
		cp.Planes[i] = slices.Clone(pl)
	}

	s.mu.Lock()
	s.latest = cp
	s.mu.Unlock()
	select {
	case s.fresh <- struct{}{}:
	default:
	}
	return nil
}

// Run waits for the first frame, then shifts out the newest one over and
// over until ctx is done or a line write fails.
func (s *GPIOSink) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.fresh:
	}
	for {
		s.mu.Lock()
		out := s.latest
		s.mu.Unlock()
		if err := s.refresh(ctx, out); err != nil {
			return err
		}
	}
}

// refresh shifts out one full BCM cycle.
func (s *GPIOSink) refresh(ctx context.Context, out Output) error {
	for _, pl := range out.Schedule {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, word := range out.Planes[pl] {
			if err := s.clock(word); err != nil {
				return err
			}
		}
	}
	return nil
}

// clock presents word on the bus and pulses the clock line.
func (s *GPIOSink) clock(word uint16) error {
	for i := 0; i < BusWidth; i++ {
		s.values[i] = int(word>>i) & 1
	}
	idle, active := 0, 1
	if s.inverted {
		idle, active = 1, 0
	}
	s.values[BusWidth] = idle
	if err := s.lines.SetValues(s.values); err != nil {
		return fmt.Errorf("failed to set bus: %w", err)
	}
	s.values[BusWidth] = active
	if err := s.lines.SetValues(s.values); err != nil {
		return fmt.Errorf("failed to pulse clock: %w", err)
	}
	return nil
}

// Close releases the lines.
func (s *GPIOSink) Close() error {
	return s.lines.Close()
}
