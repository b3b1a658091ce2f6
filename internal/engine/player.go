package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/framebuffer"
	"github.com/jwulff/pinclock-go/internal/storage"
)

// fadeFactor dims the last frame of an animation on every frame period.
const fadeFactor = 10

// playRandom plays a randomly chosen animation.
func (e *Engine) playRandom(ctx context.Context) error {
	if e.anis == nil {
		return nil
	}
	n := e.anis.Header().Count
	if n == 0 {
		return nil
	}
	return e.playAnimation(ctx, e.rng.Intn(n))
}

// playAnimation shows entry index on the animation layer from start to
// finish, then fades it out. A corrupt or unreadable entry is skipped.
func (e *Engine) playAnimation(ctx context.Context, index int) error {
	en, err := e.anis.Entry(index)
	if err != nil {
		e.log.Warn("skipping animation", "index", index, "error", err)
		return nil
	}
	if len(en.Steps) == 0 {
		return nil
	}

	rec := storage.NewPlayback(en.Index, en.Name)
	rec.StartedAt = e.now()
	started := time.Now()

	shades := domain.ShadesOpaque(domain.RandomHue(e.rng))
	w, h := en.Size()
	period := e.cfg.Panel.FramePeriod()
	layer := framebuffer.LayerAnimation

	pb := e.anis.Play(en)
	p := newPacer()
	var drawTime, maxDraw time.Duration
	for {
		step, err := pb.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.log.Warn("animation read failed", "name", en.Name, "error", err)
			break
		}

		t0 := time.Now()
		if err := e.draw(ctx, layer, func() {
			if step.Pixels == nil {
				e.buf.SetAll(layer, domain.Transparent)
				return
			}
			e.buf.DrawNibbles(layer, 0, 0, w, h, step.Pixels, &shades)
		}); err != nil {
			return err
		}
		d := time.Since(t0)
		drawTime += d
		maxDraw = max(maxDraw, d)

		if err := p.wait(ctx, max(step.Duration, period)); err != nil {
			return err
		}
	}

	if en.StoredFrames <= 3 || en.FrameEntries <= 3 {
		if err := sleep(ctx, e.timing.hold); err != nil {
			return err
		}
	}

	p = newPacer()
	for touched := 1; touched > 0; {
		if err := e.draw(ctx, layer, func() {
			touched = e.buf.FadeOut(layer, fadeFactor)
		}); err != nil {
			return err
		}
		if err := p.wait(ctx, period); err != nil {
			return err
		}
	}

	rec.Duration = time.Since(started)
	e.log.Debug("animation played",
		"index", en.Index, "name", en.Name,
		"frames", en.StoredFrames, "steps", en.FrameEntries,
		"draw_avg", drawTime/time.Duration(len(en.Steps)), "draw_max", maxDraw,
		"took", rec.Duration)
	e.recordPlayback(ctx, rec)
	return nil
}

func (e *Engine) recordPlayback(ctx context.Context, p *storage.Playback) {
	if e.store == nil {
		return
	}
	if err := e.store.RecordPlayback(ctx, p); err != nil {
		e.log.Warn("failed to record playback", "error", err)
	}
}
