package framebuffer

import (
	"math"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// AALine draws an antialiased line (Xiaolin Wu) into a layer, blending
// shades[i] over the layer where i grows with pixel coverage.
func (b *Buffer) AALine(layer int, shades *domain.Shades, x0, y0, x1, y1 float64) {
	plot := func(x, y int, c float64) {
		i := int(float64(domain.NumShades-1) * c)
		if i < 0 {
			i = 0
		}
		if i >= domain.NumShades {
			i = domain.NumShades - 1
		}
		b.SetPixelOver(layer, x, y, shades[i])
	}

	steep := math.Abs(y1-y0) > math.Abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	// put swaps coordinates back for steep lines
	put := func(u, v int, c float64) {
		if steep {
			plot(v, u, c)
		} else {
			plot(u, v, c)
		}
	}

	dx := x1 - x0
	gradient := 1.0
	if dx != 0 {
		gradient = (y1 - y0) / dx
	}

	// first endpoint
	xend := math.Round(x0)
	yend := y0 + gradient*(xend-x0)
	xgap := rfpart(x0 + 0.5)
	xpxl1 := int(xend)
	ypxl1 := int(math.Floor(yend))
	put(xpxl1, ypxl1, rfpart(yend)*xgap)
	put(xpxl1, ypxl1+1, fpart(yend)*xgap)
	intery := yend + gradient

	// second endpoint
	xend = math.Round(x1)
	yend = y1 + gradient*(xend-x1)
	xgap = fpart(x1 + 0.5)
	xpxl2 := int(xend)
	ypxl2 := int(math.Floor(yend))
	put(xpxl2, ypxl2, rfpart(yend)*xgap)
	put(xpxl2, ypxl2+1, fpart(yend)*xgap)

	for x := xpxl1 + 1; x <= xpxl2-1; x++ {
		y := int(math.Floor(intery))
		put(x, y, rfpart(intery))
		put(x, y+1, fpart(intery))
		intery += gradient
	}
}

func fpart(x float64) float64  { return x - math.Floor(x) }
func rfpart(x float64) float64 { return 1 - fpart(x) }
