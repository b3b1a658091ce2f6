package engine

import (
	"context"
	"time"

	"github.com/jwulff/pinclock-go/internal/config"
	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/font"
	"github.com/jwulff/pinclock-go/internal/framebuffer"
	"github.com/jwulff/pinclock-go/internal/storage"
)

// statsRetention is how long stats samples are kept in the store.
const statsRetention = 7 * 24 * time.Hour

// hostnameMaxBytes limits the hostname splash.
const hostnameMaxBytes = 32

// clock shows the start-up console and then runs the once-a-second loop
// that plays animations and redraws the time.
func (e *Engine) clock(ctx context.Context) error {
	if err := e.startup(ctx); err != nil {
		return err
	}
	if err := e.indexCatalog(ctx); err != nil {
		e.log.Warn("catalog not indexed", "error", err)
	}

	d := e.cfg.Delays
	color := domain.White
	sec := 0
	p := newPacer()
	for cycles := 0; ; cycles++ {
		redraw := false

		if e.anis != nil && cycles > 0 && cycles%d.Animation == 0 {
			if err := e.playRandom(ctx); err != nil {
				return err
			}
		}

		if cycles%d.Color == 0 {
			color = domain.OpaqueBlack | domain.Pixel(e.rng.Uint32()&0xFFFFFF)
			redraw = true
		}

		if e.fonts > 0 && cycles%d.Font == 0 {
			e.loadFont(e.rng.Intn(e.fonts))
			redraw = true
		}

		now := e.now().In(e.cfg.Location())
		if redraw || sec > now.Second() {
			if err := e.draw(ctx, framebuffer.LayerText, func() {
				if err := e.writer.DrawCentered(now.Format("15:04"), color, domain.OpaqueBlack); err != nil {
					e.log.Debug("clock not drawn", "error", err)
				}
			}); err != nil {
				return err
			}
			e.applyBrightness(now)
			e.recordStats(ctx, now)
		}
		sec = now.Second()

		if err := p.wait(ctx, e.timing.second); err != nil {
			return err
		}
	}
}

// startup shows the hostname and the asset summary on the console.
func (e *Engine) startup(ctx context.Context) error {
	text := framebuffer.LayerText
	e.writer.SetFont(e.consoleFont)

	if err := e.draw(ctx, text, func() {
		e.buf.SetAll(text, domain.Transparent)
		w, h := e.buf.Width(), e.buf.Height()
		if err := e.writer.DrawString(text, w/2, h/2+4, e.cfg.Hostname, hostnameMaxBytes, font.AlignCenter, domain.White, false); err != nil {
			e.log.Debug("hostname not drawn", "error", err)
		}
	}); err != nil {
		return err
	}
	if err := sleep(ctx, e.timing.hostname); err != nil {
		return err
	}

	if err := e.print(ctx, func() {
		e.console.Begin()
		e.printf(domain.White, "\nUSB power level: ")
		if e.lowPower {
			e.printf(domain.Red, "Low")
		} else {
			e.printf(domain.Green, "High")
		}
		e.printf(domain.White, "\nLoading animations ...")
		if e.anis == nil {
			e.printf(domain.Red, "\n%v", e.anisErr)
		} else {
			h := e.anis.Header()
			e.printf(domain.Green, "\n  N: %d  B: %s", h.Count, h.BuildTag)
		}
	}); err != nil {
		return err
	}
	pause := e.timing.loaded
	if e.anis == nil {
		pause = e.timing.loadFailed
	}
	if err := sleep(ctx, pause); err != nil {
		return err
	}

	if err := e.print(ctx, func() {
		e.printf(domain.White, "\nLoading fonts ...")
		if e.fonts <= 0 {
			e.printf(domain.Red, "\n  No fonts found :(")
		} else {
			e.printf(domain.Green, " N: %d", e.fonts)
		}
	}); err != nil {
		return err
	}
	pause = e.timing.loaded
	if e.fonts <= 0 {
		pause = e.timing.loadFailed
	}
	if err := sleep(ctx, pause); err != nil {
		return err
	}

	if err := e.print(ctx, func() {
		e.printf(domain.White, "\nLet's go !!!")
		e.console.End()
	}); err != nil {
		return err
	}
	return sleep(ctx, e.timing.letsGo)
}

func (e *Engine) print(ctx context.Context, fn func()) error {
	return e.draw(ctx, framebuffer.LayerText, fn)
}

func (e *Engine) printf(color domain.Pixel, format string, args ...any) {
	if err := e.console.Printf(color, format, args...); err != nil {
		e.log.Debug("console", "error", err)
	}
}

// Brightness returns the brightness the policy in p asks for at t, and
// whether it is daytime under the day/night policy (1 day, 0 night, -1
// for the other modes). Day runs from the day switch time up to but not
// including the night switch time.
func Brightness(p config.Power, t time.Time) (level, daylight int) {
	if p.Mode != config.PowerDayNight {
		return p.Day.Brightness, -1
	}
	now := t.Hour()*60 + t.Minute()
	if now >= p.Day.Minutes() && now < p.Night.Minutes() {
		return p.Day.Brightness, 1
	}
	return p.Night.Brightness, 0
}

// applyBrightness sets the panel brightness. Under the day/night policy
// the level only changes when the period changes.
func (e *Engine) applyBrightness(now time.Time) {
	level, daylight := Brightness(e.cfg.Power, now)
	if daylight >= 0 {
		if daylight == e.daylight {
			return
		}
		e.daylight = daylight
		if daylight == 1 {
			e.log.Info("daylight mode", "brightness", level)
		} else {
			e.log.Info("night mode", "brightness", level)
		}
	}
	e.setBrightness(level)
}

func (e *Engine) setBrightness(level int) {
	e.driver.SetBrightness(level)
	width := e.cfg.Panel.Width
	for _, d := range e.dimmers {
		d.SetBrightness(e.driver.EffectiveBrightness(), width)
	}
}

// recordStats logs and stores the frame rate and barrier timeouts.
func (e *Engine) recordStats(ctx context.Context, now time.Time) {
	frames := e.driver.Frames()
	t := time.Now()
	var fps float64
	if !e.lastTime.IsZero() {
		if dt := t.Sub(e.lastTime).Seconds(); dt > 0 {
			fps = float64(frames-e.lastFrames) / dt
		}
	}
	e.lastFrames, e.lastTime = frames, t

	st := e.sync.Stats()
	var starts uint64
	for _, n := range st.StartTimeouts {
		starts += n
	}
	sample := &storage.Stats{
		At:            now,
		FPS:           fps,
		Frames:        frames,
		StartTimeouts: starts,
		WaitTimeouts:  st.WaitTimeouts,
		Brightness:    e.driver.EffectiveBrightness(),
	}
	var fontName string
	if f := e.writer.Font(); f != nil {
		fontName = f.Name()
	}
	e.log.Debug("stats",
		"font", fontName, "fps", fps, "frames", frames,
		"start_timeouts", starts, "wait_timeouts", st.WaitTimeouts,
		"brightness", sample.Brightness)

	if e.store == nil {
		return
	}
	if err := e.store.RecordStats(ctx, sample); err != nil {
		e.log.Warn("failed to record stats", "error", err)
	}
	if err := e.store.DeleteOldStats(ctx, now.Add(-statsRetention)); err != nil {
		e.log.Warn("failed to prune stats", "error", err)
	}
}
