// Package engine runs the clock: the background shader task, the clock
// task with its animations and the panel compositor they feed.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jwulff/pinclock-go/internal/animation"
	"github.com/jwulff/pinclock-go/internal/config"
	"github.com/jwulff/pinclock-go/internal/font"
	"github.com/jwulff/pinclock-go/internal/framebuffer"
	"github.com/jwulff/pinclock-go/internal/layersync"
	"github.com/jwulff/pinclock-go/internal/logging"
	"github.com/jwulff/pinclock-go/internal/panel"
	"github.com/jwulff/pinclock-go/internal/shader"
	"github.com/jwulff/pinclock-go/internal/storage"
)

// Runner is a sink with a background loop, such as the Pixoo mirror or the
// terminal preview. Its Run is started with the engine tasks.
type Runner interface {
	Run(ctx context.Context) error
}

// Dimmer is a sink that follows the panel brightness.
type Dimmer interface {
	SetBrightness(level, width int)
}

// timing holds the pauses of the start-up console and the test pattern.
type timing struct {
	hostname   time.Duration
	loaded     time.Duration
	loadFailed time.Duration
	letsGo     time.Duration
	hold       time.Duration
	second     time.Duration
	tpDiagonal time.Duration
	tpStripe   time.Duration
	tpColor    time.Duration
}

func defaultTiming() timing {
	return timing{
		hostname:   3 * time.Second,
		loaded:     time.Second,
		loadFailed: 5 * time.Second,
		letsGo:     2 * time.Second,
		hold:       3 * time.Second,
		second:     time.Second,
		tpDiagonal: 5 * time.Second,
		tpStripe:   500 * time.Millisecond,
		tpColor:    time.Second,
	}
}

// Engine owns every piece of display state.
type Engine struct {
	cfg config.Settings
	log *slog.Logger
	rng *rand.Rand
	now func() time.Time

	buf         *framebuffer.Buffer
	sync        *layersync.Controller
	driver      *panel.Driver
	shader      *shader.Renderer
	writer      *font.Writer
	console     *font.Console
	consoleFont *font.Compact

	anis    *animation.Reader
	anisErr error
	fonts   int

	store    storage.Store
	sinks    []panel.Sink
	runners  []Runner
	dimmers  []Dimmer
	lowPower bool

	timing timing

	// daylight is 1 by day and 0 by night under the day/night policy, -1 before the first decision
	daylight   int
	lastFrames uint64
	lastTime   time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l) }
}

// WithStore records the catalog, playbacks, stats and the last frame.
func WithStore(s storage.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithSink adds a frame sink. Sinks that implement Runner or Dimmer are
// also run or dimmed with the panel.
func WithSink(s panel.Sink) Option {
	return func(e *Engine) {
		e.sinks = append(e.sinks, s)
		if r, ok := s.(Runner); ok {
			e.runners = append(e.runners, r)
		}
		if d, ok := s.(Dimmer); ok {
			e.dimmers = append(e.dimmers, d)
		}
	}
}

// WithRand injects the random source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock replaces time.Now for the wall clock shown on the display.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLowPower reports a weak supply; brightness is capped while set.
func WithLowPower(on bool) Option {
	return func(e *Engine) { e.lowPower = on }
}

// New builds the engine. Missing animations or fonts are logged and shown
// on the start-up console, they do not stop the clock. Only an invalid
// panel configuration is an error.
func New(cfg config.Settings, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:      cfg,
		log:      logging.Nop(),
		now:      time.Now,
		timing:   defaultTiming(),
		daylight: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pc := cfg.Panel.Config
	e.buf = framebuffer.New(pc.Width, pc.Height, framebuffer.DefaultLayers)
	e.sync = layersync.New(framebuffer.DefaultLayers, layersync.WithLogger(e.log))

	var sink panel.Sink = panel.NopSink{}
	if len(e.sinks) > 0 {
		sink = panel.MultiSink(e.sinks)
	}
	driver, err := panel.New(pc, e.buf,
		panel.WithBarrier(e.sync),
		panel.WithSink(sink),
		panel.WithLogger(e.log),
		panel.WithBrightness(cfg.Power.Day.Brightness),
	)
	if err != nil {
		return nil, err
	}
	driver.SetLowPower(e.lowPower)
	e.driver = driver

	e.shader = shader.New(e.buf, framebuffer.LayerBackground,
		shader.WithRand(rand.New(rand.NewSource(e.rng.Int63()))),
		shader.WithLogger(e.log))
	e.writer = font.NewWriter(e.buf, framebuffer.LayerText, e.log)

	e.loadAssets()
	return e, nil
}

// Buffer exposes the layers, mainly for tests and tools.
func (e *Engine) Buffer() *framebuffer.Buffer { return e.buf }

// Driver returns the panel driver.
func (e *Engine) Driver() *panel.Driver { return e.driver }

// Close releases the asset files.
func (e *Engine) Close() error {
	var errs []error
	if e.anis != nil {
		errs = append(errs, e.anis.Close())
	}
	if f := e.writer.Font(); f != nil && f != e.consoleFont {
		errs = append(errs, f.Close())
	}
	if e.consoleFont != nil {
		errs = append(errs, e.consoleFont.Close())
	}
	return errors.Join(errs...)
}

// Run starts the tasks and blocks until ctx is done or a task fails. A
// cancelled context is a clean shutdown and returns nil.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range e.runners {
		g.Go(func() error { return r.Run(ctx) })
	}
	if e.cfg.Panel.TestPattern {
		g.Go(func() error { return e.testPattern(ctx) })
	} else {
		g.Go(func() error { return e.background(ctx) })
		g.Go(func() error { return e.clock(ctx) })
	}

	err := g.Wait()
	e.cacheFrame()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// draw runs fn with layer claimed. A barrier timeout draws anyway.
func (e *Engine) draw(ctx context.Context, layer int, fn func()) error {
	if err := e.sync.StartDrawing(ctx, layer); err != nil && !errors.Is(err, layersync.ErrTimeout) {
		return err
	}
	fn()
	e.sync.DoneDrawing(layer)
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pacer waits on absolute deadlines so that work done between waits does
// not stretch the period.
type pacer struct {
	next time.Time
}

func newPacer() *pacer { return &pacer{next: time.Now()} }

// wait sleeps until d after the previous deadline. When the caller is
// already late the schedule restarts from now.
func (p *pacer) wait(ctx context.Context, d time.Duration) error {
	p.next = p.next.Add(d)
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
		return ctx.Err()
	}
	return sleep(ctx, p.next.Sub(now))
}

func (e *Engine) cacheFrame() {
	if e.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	frame := &storage.CachedFrame{Frame: e.buf.Snapshot(), GeneratedAt: e.now()}
	if err := e.store.CacheFrame(ctx, frame); err != nil {
		e.log.Warn("failed to cache frame", "error", err)
	}
}
