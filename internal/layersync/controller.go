// Package layersync implements the two-phase barrier between layer
// producers and the compositor.
//
// Each layer carries one flag that means both "drawable" and "done". A
// producer clears it in StartDrawing and sets it again in DoneDrawing. The
// compositor clears every flag in WaitDrawingDone, which waits out any
// producer that is mid-draw and keeps new ones out while the layers are
// read, and sets them all again in DoneUpdating. An idle layer keeps its
// flag set, so it never holds up a frame. Every wait is bounded: on timeout
// the caller proceeds and the frame shows stale content instead of freezing
// the display.
package layersync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jwulff/pinclock-go/internal/logging"
)

// DefaultTimeout bounds every barrier wait.
const DefaultTimeout = 500 * time.Millisecond

// ErrTimeout is returned when a wait gave up. The caller should continue.
var ErrTimeout = errors.New("layersync: wait timed out")

// Phase identifies which side of the barrier timed out.
type Phase int

const (
	// PhaseStart is a producer waiting in StartDrawing.
	PhaseStart Phase = iota
	// PhaseWait is the compositor waiting in WaitDrawingDone.
	PhaseWait
)

func (p Phase) String() string {
	if p == PhaseStart {
		return "start_drawing"
	}
	return "wait_drawing_done"
}

// Stats counts timeouts since the controller was created.
type Stats struct {
	StartTimeouts []uint64
	WaitTimeouts  uint64
}

// Controller is the per-layer barrier. The zero value is not usable; call New.
type Controller struct {
	timeout time.Duration
	log     *slog.Logger
	hook    func(Phase, int)

	// a token in ready[l] means layer l is neither being drawn nor being read
	ready []chan struct{}

	startTimeouts []atomic.Uint64
	waitTimeouts  atomic.Uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithLogger sets the logger used to report timeouts.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = logging.OrNop(l) }
}

// WithTimeoutHook registers fn to be called on every timeout. For
// PhaseWait the layer argument is the first layer that had not finished.
func WithTimeoutHook(fn func(Phase, int)) Option {
	return func(c *Controller) { c.hook = fn }
}

// New creates a barrier for n idle layers.
func New(n int, opts ...Option) *Controller {
	c := &Controller{
		timeout:       DefaultTimeout,
		log:           logging.Nop(),
		ready:         make([]chan struct{}, n),
		startTimeouts: make([]atomic.Uint64, n),
	}
	for i := range c.ready {
		c.ready[i] = make(chan struct{}, 1)
		c.ready[i] <- struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layers returns the number of layers guarded by the barrier.
func (c *Controller) Layers() int { return len(c.ready) }

func (c *Controller) valid(layer int) bool {
	return layer >= 0 && layer < len(c.ready)
}

// StartDrawing blocks until layer may be drawn and claims it. It returns
// ErrTimeout if the compositor did not release the layer in time, in which
// case the producer draws anyway. Unknown layers return immediately.
func (c *Controller) StartDrawing(ctx context.Context, layer int) error {
	if !c.valid(layer) {
		return nil
	}
	select {
	case <-c.ready[layer]:
		return nil
	default:
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-c.ready[layer]:
		return nil
	case <-timer.C:
		c.startTimeouts[layer].Add(1)
		c.timedOut(PhaseStart, layer)
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DoneDrawing marks layer as finished.
func (c *Controller) DoneDrawing(layer int) {
	if !c.valid(layer) {
		return
	}
	signal(c.ready[layer])
}

// WaitDrawingDone blocks until no layer is being drawn and claims all of
// them for the compositor. It returns ErrTimeout when some producer did not
// finish in time; layers claimed so far stay claimed until DoneUpdating.
func (c *Controller) WaitDrawingDone(ctx context.Context) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for l, ready := range c.ready {
		select {
		case <-ready:
		case <-timer.C:
			c.waitTimeouts.Add(1)
			c.timedOut(PhaseWait, l)
			return ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// DoneUpdating releases every layer for the next cycle.
func (c *Controller) DoneUpdating() {
	for _, ch := range c.ready {
		signal(ch)
	}
}

// Stats returns a copy of the timeout counters.
func (c *Controller) Stats() Stats {
	s := Stats{
		StartTimeouts: make([]uint64, len(c.startTimeouts)),
		WaitTimeouts:  c.waitTimeouts.Load(),
	}
	for i := range c.startTimeouts {
		s.StartTimeouts[i] = c.startTimeouts[i].Load()
	}
	return s
}

func (c *Controller) timedOut(p Phase, layer int) {
	c.log.Warn("layer sync timeout", "phase", p.String(), "layer", layer, "timeout", c.timeout)
	if c.hook != nil {
		c.hook(p, layer)
	}
}

// signal sets a one slot flag without blocking.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
