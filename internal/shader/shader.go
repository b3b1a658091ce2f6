// Package shader draws the animated background patterns.
package shader

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/logging"
)

// Kind selects a background pattern.
type Kind int

const (
	Black Kind = iota
	Xor
	Bendy
	AlienFlame
	DoomFlame
	Lasers
)

var kindNames = [...]string{"black", "xor", "bendy", "alien_flame", "doom_flame", "lasers"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a name as returned by String back to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return Black, fmt.Errorf("unknown shader %q", s)
}

// Canvas is the layer access the shaders need.
type Canvas interface {
	Width() int
	Height() int
	SetPixel(layer, x, y int, c domain.Pixel)
	GetPixel(layer, x, y int) domain.Pixel
	SetPixelChannel(layer, x, y, ch int, v uint8)
	SetAll(layer int, c domain.Pixel)
	AALine(layer int, shades *domain.Shades, x0, y0, x1, y1 float64)
}

// Renderer holds the state every shader keeps between frames.
type Renderer struct {
	canvas Canvas
	layer  int
	rng    *rand.Rand
	log    *slog.Logger

	xorZoom  int
	xorBoost int

	bendyI, bendyJ, bendyK, bendyL int

	heat    []uint8
	palette Palette
	wind    int
	damper  int

	laserAngle float64
	laserInner float64
	laserLines int
	laserX     int
	laserY     int
	laserClear bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRand injects the random source, for reproducible output.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) { r.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.log = logging.OrNop(l) }
}

// New creates a renderer drawing into layer of canvas.
func New(canvas Canvas, layer int, opts ...Option) *Renderer {
	w, h := canvas.Width(), canvas.Height()
	r := &Renderer{
		canvas:     canvas,
		layer:      layer,
		log:        logging.Nop(),
		xorZoom:    0x04,
		xorBoost:   7,
		bendyI:     2,
		bendyJ:     3,
		bendyK:     2<<5 - 1,
		bendyL:     3<<5 - 1,
		heat:       make([]uint8, w*(h+1)),
		palette:    PaletteAt(0),
		wind:       1,
		damper:     4,
		laserInner: 10,
		laserLines: 8,
		laserX:     w / 2,
		laserY:     h / 2,
		laserClear: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r
}

// between returns a random integer in [a, b].
func (r *Renderer) between(a, b int) int {
	return a + r.rng.Intn(b-a+1)
}

// Pick chooses the next shader, black four times as likely as any other
// pattern, and clears the layer to opaque black when black was chosen.
func (r *Renderer) Pick() Kind {
	k := Kind(r.between(0, 8))
	if k > Lasers {
		k = Black
	}
	if k == Black {
		r.canvas.SetAll(r.layer, domain.OpaqueBlack)
	}
	return k
}

// RandomPalette switches the flame shader to a random palette.
func (r *Renderer) RandomPalette() Palette {
	id := r.between(0, NumPalettes-1)
	r.palette = PaletteAt(id)
	r.log.Debug("flame palette", "palette", PaletteName(id))
	return r.palette
}

// Render draws frame number frame of kind. Black draws nothing.
func (r *Renderer) Render(kind Kind, frame uint) {
	switch kind {
	case Xor:
		r.xor(frame)
	case Bendy:
		r.bendy(frame)
	case AlienFlame:
		r.alienFlame()
	case DoomFlame:
		r.doomFlame(frame)
	case Lasers:
		r.lasers(frame)
	}
}

// xor draws square interference patterns.
func (r *Renderer) xor(frame uint) {
	w, h := r.canvas.Width(), r.canvas.Height()
	f := int(frame)
	z, b := r.xorZoom, r.xorBoost
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.canvas.SetPixel(r.layer, x, y, domain.NewPixel(
				uint8(((x+y+f)&z)*b),
				uint8(((x-y-f)&z)*b),
				uint8(((x^y)&z)*b),
				0xFF,
			))
		}
	}
	if frame%1024 == 0 {
		r.xorZoom = int(uint16(r.rng.Uint32()))
		r.xorBoost = r.between(1, 8)
	}
}

// bendy draws slowly bending zebra curves.
func (r *Renderer) bendy(frame uint) {
	f := int(frame % 3000)
	if f == 0 {
		r.bendyI = r.between(1, 8)
		r.bendyJ = r.between(1, 8)
		r.bendyK = r.bendyI<<5 - 1
		r.bendyL = r.bendyJ<<5 - 1
	}
	w, h := r.canvas.Width(), r.canvas.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t1 := abs((r.bendyI*y+(f*16)/(x+16))%64-32) * 7
			t2 := abs((r.bendyJ*x+(f*16)/(y+16))%64-32) * 7
			r.canvas.SetPixel(r.layer, x, y, domain.NewPixel(
				uint8(t1&r.bendyK),
				uint8(t2&r.bendyL),
				uint8((t1^t2)&0x88),
				0xFF,
			))
		}
	}
}

// alienFlame grows pixelated RGB smoke from two random seeds on the
// bottom row, one brightening and one dimming.
func (r *Renderer) alienFlame() {
	w, h := r.canvas.Width(), r.canvas.Height()
	bottom := h - 1

	x := r.between(0, w-1)
	r.canvas.SetPixel(r.layer, x, bottom, domain.OpaqueBlack|(r.canvas.GetPixel(r.layer, x, bottom)+2))
	x = r.between(0, w-1)
	r.canvas.SetPixel(r.layer, x, bottom, domain.Scale(127, r.canvas.GetPixel(r.layer, x, bottom)))

	for y := bottom - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			ch := r.between(0, 2)
			sum := int(r.canvas.GetPixel(r.layer, x-1, y+1).Channel(ch)) +
				int(r.canvas.GetPixel(r.layer, x, y+1).Channel(ch)) +
				int(r.canvas.GetPixel(r.layer, x+1, y+1).Channel(ch))
			r.canvas.SetPixelChannel(r.layer, x, y, r.between(0, 2), uint8(min(sum*5/8, 255)))
		}
	}
}

// seedFlames nudges the hidden row below the display up or down in
// random blocks.
func (r *Renderer) seedFlames() {
	w, h := r.canvas.Width(), r.canvas.Height()
	row := r.heat[h*w : (h+1)*w]
	blockLeft, delta := 0, 0
	for x := range row {
		if blockLeft <= 0 {
			blockLeft = r.between(0, 5)
			delta = r.between(-1, 1)
		}
		v := int(row[x]) + delta
		if v < 0 {
			v = 0
		} else if v >= PaletteSize {
			v = PaletteSize - 1
		}
		row[x] = uint8(v)
		blockLeft--
	}
}

// randomizeWind changes how the flames drift and cool.
func (r *Renderer) randomizeWind() {
	r.wind = r.between(-2, 1)
	r.damper = r.between(4, 10)
	r.log.Debug("flame parameters", "wind", r.wind, "damper", r.damper)
}

// spread moves the heat of (x, y) to the row above with some drift.
func (r *Renderer) spread(x, y int) {
	w := r.canvas.Width()
	src := x + y*w
	tx := (x + r.wind + r.between(0, 1) + w) % w
	dst := tx + (y-1)*w

	heat := int(r.heat[src]) - r.between(0, r.damper)
	if heat <= 0 {
		r.heat[dst] = 0
		return
	}
	if r.damper >= 7 {
		heat += int(r.heat[dst]) / 4
	} else {
		heat += int(r.heat[dst]) / 8
	}
	r.heat[dst] = uint8(min(heat, PaletteSize-1))
}

// doomFlame is the classic fire effect coloured by a palette.
func (r *Renderer) doomFlame(frame uint) {
	if frame%25 == 0 {
		r.seedFlames()
		if frame%15000 == 0 {
			r.RandomPalette()
			r.randomizeWind()
		}
	}

	w, h := r.canvas.Width(), r.canvas.Height()
	for y := h; y > 0; y-- {
		for x := 0; x < w; x++ {
			r.spread(x, y)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.canvas.SetPixel(r.layer, x, y, r.palette[int(r.heat[x+y*w])%PaletteSize])
		}
	}
}

// lasers draws rotating radial lines in rainbow colours.
func (r *Renderer) lasers(frame uint) {
	w, h := r.canvas.Width(), r.canvas.Height()
	if frame%2000 == 0 {
		r.laserLines = r.between(3, 32)
		r.laserX = r.between(4, w-5)
		r.laserY = r.between(1, h-2)
		r.laserInner = float64(r.between(0, 200)) / 10
		r.laserClear = r.between(0, 1) == 1
		r.laserAngle = math.Mod(r.laserAngle, 8*math.Pi)
	}

	if r.laserClear {
		r.canvas.SetAll(r.layer, domain.OpaqueBlack)
	}

	cx, cy := float64(r.laserX), float64(r.laserY)
	reach := float64(w)
	for i := 0; i < r.laserLines; i++ {
		a := r.laserAngle + 2*math.Pi*float64(i)/float64(r.laserLines)
		dx, dy := math.Cos(a), math.Sin(a)
		shades := domain.ShadesHueTransparent(360 * float64(i) / float64(r.laserLines))
		r.canvas.AALine(r.layer, &shades, cx+dx*r.laserInner, cy+dy*r.laserInner, cx+dx*reach, cy+dy*reach)
	}
	r.laserAngle += 0.002
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
