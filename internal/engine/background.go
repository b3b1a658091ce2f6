package engine

import (
	"context"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/framebuffer"
	"github.com/jwulff/pinclock-go/internal/shader"
)

// shaderFrames is the number of frames between shader changes, 0 to keep
// the first one.
func (e *Engine) shaderFrames() uint {
	period := e.cfg.Panel.FramePeriod()
	if e.cfg.Delays.Shader <= 0 || period <= 0 {
		return 0
	}
	return uint(time.Duration(e.cfg.Delays.Shader) * time.Second / period)
}

// background renders the shader layer and drives the compositor, one
// frame per frame period.
func (e *Engine) background(ctx context.Context) error {
	period := e.cfg.Panel.FramePeriod()
	every := e.shaderFrames()
	kind := shader.Black

	if err := e.draw(ctx, framebuffer.LayerBackground, func() {
		e.buf.SetAll(framebuffer.LayerBackground, domain.OpaqueBlack)
	}); err != nil {
		return err
	}

	p := newPacer()
	for frame := uint(1); ; frame++ {
		if every > 0 && frame%every == 0 {
			if err := e.draw(ctx, framebuffer.LayerBackground, func() {
				kind = e.shader.Pick()
			}); err != nil {
				return err
			}
			e.log.Info("background", "shader", kind.String())
		}

		if err := e.draw(ctx, framebuffer.LayerBackground, func() {
			e.shader.Render(kind, frame)
		}); err != nil {
			return err
		}
		if err := p.wait(ctx, period); err != nil {
			return err
		}
		if err := e.driver.UpdateFrame(ctx); err != nil {
			return err
		}
	}
}
