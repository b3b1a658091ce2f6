package engine

import (
	"context"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/framebuffer"
)

// testPattern cycles through patterns that show wiring and timing faults
// of the panel, until ctx is done.
func (e *Engine) testPattern(ctx context.Context) error {
	e.log.Warn("RGB test pattern mode")
	e.setBrightness(e.cfg.Panel.TPBrightness)

	layer := framebuffer.LayerAnimation
	w, h := e.buf.Width(), e.buf.Height()
	for {
		if err := e.pattern(ctx, "black", 0, func() {
			for l := 0; l < e.buf.Layers(); l++ {
				e.buf.SetAll(l, domain.OpaqueBlack)
			}
		}); err != nil {
			return err
		}

		if err := e.pattern(ctx, "diagonal", e.timing.tpDiagonal, func() {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					c := domain.OpaqueBlack
					if ((x-y)%h+h)%h == 0 {
						c = domain.White
					}
					e.buf.SetPixel(layer, x, y, c)
				}
			}
		}); err != nil {
			return err
		}

		if err := e.stripes(ctx, false); err != nil {
			return err
		}
		if err := e.stripes(ctx, true); err != nil {
			return err
		}

		for _, c := range []struct {
			name string
			px   domain.Pixel
		}{
			{"red", domain.Red},
			{"green", domain.Green},
			{"blue", domain.Blue},
		} {
			if err := e.pattern(ctx, c.name, e.timing.tpColor, func() {
				e.buf.SetAll(layer, c.px)
			}); err != nil {
				return err
			}
		}
	}
}

// stripes shows one pixel wide lines every 8 pixels walking across the
// panel, then every other pixel. Vertical lines unless horizontal is set.
func (e *Engine) stripes(ctx context.Context, horizontal bool) error {
	name := "vertical stripes"
	if horizontal {
		name = "horizontal stripes"
	}
	for i := 0; i < 8; i++ {
		if err := e.pattern(ctx, name, e.timing.tpStripe, e.stripeFunc(8, i, horizontal)); err != nil {
			return err
		}
	}
	for i := 0; i < 4; i++ {
		if err := e.pattern(ctx, name, e.timing.tpStripe, e.stripeFunc(2, i%2, horizontal)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) stripeFunc(width, offset int, horizontal bool) func() {
	return func() {
		for y := 0; y < e.buf.Height(); y++ {
			for x := 0; x < e.buf.Width(); x++ {
				v := x
				if horizontal {
					v = y
				}
				c := domain.OpaqueBlack
				if (v+offset)%width == 0 {
					c = domain.White
				}
				e.buf.SetPixel(framebuffer.LayerAnimation, x, y, c)
			}
		}
	}
}

// pattern draws one test image, shows it and holds it for hold.
func (e *Engine) pattern(ctx context.Context, name string, hold time.Duration, fn func()) error {
	e.log.Debug("test pattern", "pattern", name)
	if err := e.draw(ctx, framebuffer.LayerAnimation, fn); err != nil {
		return err
	}
	if err := e.driver.UpdateFrame(ctx); err != nil {
		return err
	}
	return sleep(ctx, hold)
}
