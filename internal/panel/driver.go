package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/layersync"
	"github.com/jwulff/pinclock-go/internal/logging"
)

// Source provides composited pixels as B<<16 | G<<8 | R words.
type Source interface {
	Blended(x, y int) uint32
}

// Barrier is the compositor side of the layer sync protocol.
type Barrier interface {
	WaitDrawingDone(ctx context.Context) error
	DoneUpdating()
}

// Driver encodes frames into bitplanes and hands them to a Sink.
type Driver struct {
	cfg      Config
	src      Source
	barrier  Barrier
	sink     Sink
	log      *slog.Logger
	schedule []int

	mu     sync.RWMutex
	planes [][]uint16

	brightness atomic.Int32
	lowPower   atomic.Bool
	frames     atomic.Uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithBarrier makes UpdateFrame wait for all layers before encoding.
func WithBarrier(b Barrier) Option {
	return func(d *Driver) { d.barrier = b }
}

// WithSink sets where encoded frames go. The default discards them.
func WithSink(s Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithLogger sets the driver logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = logging.OrNop(l) }
}

// WithBrightness sets the initial brightness.
func WithBrightness(level int) Option {
	return func(d *Driver) { d.SetBrightness(level) }
}

// New validates cfg, allocates the bitplanes, builds the BCM schedule and
// encodes one initial frame from src. A configuration that cannot be driven
// is fatal to the panel and returned as an error.
func New(cfg Config, src Source, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid panel config: %w", err)
	}
	if src == nil {
		return nil, errors.New("invalid panel config: nil pixel source")
	}

	d := &Driver{
		cfg:      cfg,
		src:      src,
		sink:     NopSink{},
		log:      logging.Nop(),
		schedule: BuildSchedule(cfg.Bitplanes),
		planes:   make([][]uint16, cfg.Bitplanes),
	}
	for i := range d.planes {
		d.planes[i] = make([]uint16, cfg.Width*cfg.Rows())
	}
	d.SetBrightness(2)
	for _, opt := range opts {
		opt(d)
	}

	d.mu.Lock()
	d.encode()
	d.mu.Unlock()

	d.log.Info("panel ready",
		"width", cfg.Width, "height", cfg.Height,
		"bitplanes", cfg.Bitplanes, "slots", len(d.schedule),
		"frame_period", cfg.FramePeriod())
	return d, nil
}

// Config returns the panel configuration.
func (d *Driver) Config() Config { return d.cfg }

// Schedule returns a copy of the BCM slot order.
func (d *Driver) Schedule() []int {
	return append([]int(nil), d.schedule...)
}

// SetBrightness sets the output enable window width, clamped to [0, width-2].
func (d *Driver) SetBrightness(level int) {
	if level < 0 {
		level = 0
	}
	if limit := d.cfg.Width - 2; level > limit {
		level = limit
	}
	d.brightness.Store(int32(level))
}

// Brightness returns the configured brightness.
func (d *Driver) Brightness() int { return int(d.brightness.Load()) }

// SetLowPower caps the brightness at LowPowerBrightness while on.
func (d *Driver) SetLowPower(on bool) { d.lowPower.Store(on) }

// LowPower reports whether the low power cap is active.
func (d *Driver) LowPower() bool { return d.lowPower.Load() }

// Frames returns the number of frames encoded by UpdateFrame.
func (d *Driver) Frames() uint64 { return d.frames.Load() }

// EffectiveBrightness is the brightness after the low power cap.
func (d *Driver) EffectiveBrightness() int {
	br := d.Brightness()
	if d.LowPower() && br > d.cfg.LowPowerBrightness {
		br = d.cfg.LowPowerBrightness
	}
	return br
}

// UpdateFrame runs one compositor cycle: wait for the producers, encode the
// composited layers, release the producers and ship the planes to the sink.
// A barrier timeout only degrades the frame; a cancelled context aborts.
func (d *Driver) UpdateFrame(ctx context.Context) error {
	if d.barrier != nil {
		err := d.barrier.WaitDrawingDone(ctx)
		if err != nil && !errors.Is(err, layersync.ErrTimeout) {
			return err
		}
	}

	d.mu.Lock()
	d.encode()
	d.mu.Unlock()

	if d.barrier != nil {
		d.barrier.DoneUpdating()
	}
	n := d.frames.Add(1)

	d.mu.RLock()
	defer d.mu.RUnlock()
	out := d.output(n)
	if err := d.sink.Show(ctx, out); err != nil {
		return fmt.Errorf("failed to show frame %d: %w", n, err)
	}
	return nil
}

// busColumn maps a bus position to the display column it carries.
func (d *Driver) busColumn(x int) int {
	if d.cfg.SwapPairs {
		return x ^ 1
	}
	return x
}

// encode fills every bitplane from the source. Caller holds mu.
func (d *Driver) encode() {
	w, rows, k := d.cfg.Width, d.cfg.Rows(), d.cfg.Bitplanes
	br := d.EffectiveBrightness()
	oeStart := (w - br) / 2
	oeStop := (w + br) / 2

	for y := 0; y < rows; y++ {
		// the address lines select the row latched at the end of the
		// previous shift, which is the one lit while this row shifts in
		addr := y - 1
		var lbits uint16
		if addr&1 != 0 {
			lbits |= BitA
		}
		if addr&2 != 0 {
			lbits |= BitB
		}
		if addr&4 != 0 {
			lbits |= BitC
		}
		if addr&8 != 0 {
			lbits |= BitD
		}
		if addr&16 != 0 {
			lbits |= BitE
		}

		for x := 0; x < w; x++ {
			col := d.busColumn(x)
			v := lbits
			if col < oeStart || col >= oeStop {
				v |= BitOEN
			}
			if col == w-1 {
				v |= BitLAT
			}

			c1 := d.src.Blended(col, y)
			c2 := d.src.Blended(col, y+rows)

			for pl := 0; pl < k; pl++ {
				mask := uint32(1) << (8 - k + pl)
				word := v
				if c1&(mask<<16) != 0 {
					word |= BitR1
				}
				if c1&(mask<<8) != 0 {
					word |= BitG1
				}
				if c1&mask != 0 {
					word |= BitB1
				}
				if c2&(mask<<16) != 0 {
					word |= BitR2
				}
				if c2&(mask<<8) != 0 {
					word |= BitG2
				}
				if c2&mask != 0 {
					word |= BitB2
				}
				d.planes[pl][y*w+x] = word
			}
		}
	}
}

// Plane returns a copy of bitplane p.
func (d *Driver) Plane(p int) []uint16 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if p < 0 || p >= len(d.planes) {
		return nil
	}
	return append([]uint16(nil), d.planes[p]...)
}

// Decode reconstructs the composited colour at (x, y) from the bitplanes.
// Bits below the BCM depth are lost.
func (d *Driver) Decode(x, y int) domain.RGB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.output(d.frames.Load()).Decode(x, y)
}

// output describes the current planes. Caller holds mu.
func (d *Driver) output(n uint64) Output {
	return Output{
		Width:     d.cfg.Width,
		Height:    d.cfg.Height,
		SwapPairs: d.cfg.SwapPairs,
		Schedule:  d.schedule,
		Planes:    d.planes,
		Frame:     n,
	}
}
