package pixoo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/logging"
	"github.com/jwulff/pinclock-go/internal/panel"
)

// picIDLimit is where the device picture counter is reset.
const picIDLimit = 1000

// Device is the part of Client the mirror uses.
type Device interface {
	SendFrame(ctx context.Context, frame *domain.Frame, picID int) error
	ResetGifID(ctx context.Context) error
	SetBrightness(ctx context.Context, brightness int) error
}

// Mirror is a panel.Sink that forwards at most one frame per interval to
// a Pixoo. Show only decodes and queues; Run does the network I/O, so a slow
// device never holds up the panel.
type Mirror struct {
	dev      Device
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	last       time.Time
	pending    *domain.Frame
	brightness int
	sentBright int
	ready      chan struct{}

	picID int
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithMirrorLogger sets the logger.
func WithMirrorLogger(l *slog.Logger) MirrorOption {
	return func(m *Mirror) { m.log = logging.OrNop(l) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MirrorOption {
	return func(m *Mirror) { m.now = now }
}

// NewMirror creates a mirror sending to dev.
func NewMirror(dev Device, interval time.Duration, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		dev:        dev,
		interval:   interval,
		log:        logging.Nop(),
		now:        time.Now,
		brightness: -1,
		sentBright: -1,
		ready:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Show implements panel.Sink.
func (m *Mirror) Show(_ context.Context, out panel.Output) error {
	now := m.now()
	m.mu.Lock()
	if !m.last.IsZero() && now.Sub(m.last) < m.interval {
		m.mu.Unlock()
		return nil
	}
	m.last = now
	m.mu.Unlock()

	folded := Fold(out.Snapshot(), Size)

	m.mu.Lock()
	m.pending = folded
	m.mu.Unlock()
	select {
	case m.ready <- struct{}{}:
	default:
	}
	return nil
}

// SetBrightness queues a panel brightness level for the device.
func (m *Mirror) SetBrightness(level, width int) {
	m.mu.Lock()
	m.brightness = PanelBrightness(level, width)
	m.mu.Unlock()
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Run uploads queued frames until ctx is done. Upload errors are logged
// and the frame is dropped.
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.ready:
		}
		m.flush(ctx)
	}
}

// flush sends whatever is queued.
func (m *Mirror) flush(ctx context.Context) {
	m.mu.Lock()
	frame := m.pending
	m.pending = nil
	bright := m.brightness
	m.mu.Unlock()

	if bright >= 0 && bright != m.sentBright {
		if err := m.dev.SetBrightness(ctx, bright); err != nil {
			m.log.Warn("mirror brightness failed", "error", err)
		} else {
			m.sentBright = bright
		}
	}
	if frame == nil {
		return
	}

	if m.picID == 0 || m.picID >= picIDLimit {
		if err := m.dev.ResetGifID(ctx); err != nil {
			m.log.Warn("mirror reset failed", "error", err)
			return
		}
		m.picID = 0
	}
	m.picID++
	if err := m.dev.SendFrame(ctx, frame, m.picID); err != nil {
		m.log.Warn("mirror upload failed", "error", err, "pic_id", m.picID)
	}
}
