package font

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/text/encoding/charmap"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// BMFont block types.
const (
	blockInfo    = 1
	blockCommon  = 2
	blockPages   = 3
	blockChars   = 4
	blockKerning = 5

	charRecordSize = 20
)

// CharInfo is one character record of a BMFont.
type CharInfo struct {
	ID       uint32
	X, Y     int
	Width    int
	Height   int
	XOffset  int
	YOffset  int
	XAdvance int
	Page     uint8
	Channel  uint8
}

// BitmapFont is an AngelCode BMFont whose atlas stores the outline mask in
// the green channel and the fill mask in the red channel.
type BitmapFont struct {
	Name       string
	Size       int
	LineHeight int
	Base       int
	ScaleW     int
	ScaleH     int
	Pages      int
	PageNames  []string

	chars []CharInfo
	atlas image.Image
}

// LoadBitmap loads <prefix>.fnt and its atlas <prefix>_0.bmp.
func LoadBitmap(prefix string) (*BitmapFont, error) {
	f, err := os.Open(prefix + ".fnt")
	if err != nil {
		return nil, fmt.Errorf("opening bitmap font: %w", err)
	}
	defer f.Close()

	bf, err := ParseBitmapFont(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s.fnt: %w", prefix, err)
	}

	a, err := os.Open(prefix + "_0.bmp")
	if err != nil {
		return nil, fmt.Errorf("opening font atlas: %w", err)
	}
	defer a.Close()

	img, err := bmp.Decode(bufio.NewReader(a))
	if err != nil {
		return nil, fmt.Errorf("%s_0.bmp: %w", prefix, err)
	}
	bf.SetAtlas(img)
	return bf, nil
}

// ParseBitmapFont reads a binary BMFont description. The kerning block
// and unknown blocks are skipped.
func ParseBitmapFont(r io.Reader) (*BitmapFont, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("reading BMFont header: %w", err)
	}
	if string(magic[:3]) != "BMF" {
		return nil, ErrBadMagic
	}

	f := &BitmapFont{}
	le := binary.LittleEndian
	var hdr [5]byte
	for {
		if _, err := io.ReadFull(r, hdr[:1]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if _, err := io.ReadFull(r, hdr[1:]); err != nil {
			return nil, fmt.Errorf("reading block %d size: %w", hdr[0], err)
		}
		size := le.Uint32(hdr[1:])
		if size > math.MaxInt32 {
			return nil, fmt.Errorf("%w: block %d of %d bytes", ErrCorrupt, hdr[0], size)
		}

		switch hdr[0] {
		case blockInfo, blockCommon, blockPages, blockChars:
			data, err := io.ReadAll(io.LimitReader(r, int64(size)))
			if err != nil {
				return nil, fmt.Errorf("reading block %d: %w", hdr[0], err)
			}
			if len(data) != int(size) {
				return nil, fmt.Errorf("%w: block %d has %d of %d bytes", ErrCorrupt, hdr[0], len(data), size)
			}
			if err := f.parseBlock(hdr[0], data); err != nil {
				return nil, err
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("skipping block %d: %w", hdr[0], err)
			}
		}
	}
	return f, nil
}

func (f *BitmapFont) parseBlock(kind byte, data []byte) error {
	le := binary.LittleEndian
	short := func(n int) error {
		if len(data) < n {
			return fmt.Errorf("%w: block %d has %d bytes", ErrCorrupt, kind, len(data))
		}
		return nil
	}

	switch kind {
	case blockInfo:
		if err := short(14); err != nil {
			return err
		}
		f.Size = int(int16(le.Uint16(data)))
		f.Name = strings.TrimRight(string(data[14:]), "\x00")
	case blockCommon:
		if err := short(10); err != nil {
			return err
		}
		f.LineHeight = int(le.Uint16(data))
		f.Base = int(le.Uint16(data[2:]))
		f.ScaleW = int(le.Uint16(data[4:]))
		f.ScaleH = int(le.Uint16(data[6:]))
		f.Pages = int(le.Uint16(data[8:]))
	case blockPages:
		for _, name := range strings.Split(string(data), "\x00") {
			if name != "" {
				f.PageNames = append(f.PageNames, name)
			}
		}
	case blockChars:
		f.chars = make([]CharInfo, len(data)/charRecordSize)
		for i := range f.chars {
			d := data[i*charRecordSize:]
			f.chars[i] = CharInfo{
				ID:       le.Uint32(d),
				X:        int(le.Uint16(d[4:])),
				Y:        int(le.Uint16(d[6:])),
				Width:    int(le.Uint16(d[8:])),
				Height:   int(le.Uint16(d[10:])),
				XOffset:  int(int16(le.Uint16(d[12:]))),
				YOffset:  int(int16(le.Uint16(d[14:]))),
				XAdvance: int(int16(le.Uint16(d[16:]))),
				Page:     d[18],
				Channel:  d[19],
			}
		}
	}
	return nil
}

// SetAtlas sets the glyph atlas image.
func (f *BitmapFont) SetAtlas(img image.Image) { f.atlas = img }

// Chars returns the number of character records.
func (f *BitmapFont) Chars() int { return len(f.chars) }

// CharInfo finds the record of an 8-bit character id.
func (f *BitmapFont) CharInfo(id byte) (CharInfo, bool) {
	for _, c := range f.chars {
		if c.ID == uint32(id) {
			return c, true
		}
	}
	return CharInfo{}, false
}

// charIDs maps s to ISO 8859-1 character ids, dropping runes outside it.
func charIDs(s string) []byte {
	ids := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			ids = append(ids, b)
		}
	}
	return ids
}

// BoundingBox measures s. left is the x offset of the first character and
// top the smallest y offset, so drawing at (-left, -top) puts the string
// in the top left corner.
func (f *BitmapFont) BoundingBox(s string) (w, h, left, top int) {
	top, bottom := math.MaxInt, math.MinInt
	for i, id := range charIDs(s) {
		c, ok := f.CharInfo(id)
		if !ok {
			continue
		}
		if i == 0 {
			left = c.XOffset
		}
		w += c.XAdvance
		top = min(top, c.YOffset)
		bottom = max(bottom, c.YOffset+c.Height)
	}
	if bottom < top {
		return 0, 0, 0, 0
	}
	return w, bottom - top, left, top
}

// DrawString draws s with the top of its character cells at y, outline
// pass first.
func (f *BitmapFont) DrawString(c Canvas, layer, x, y int, s string, outline, fill domain.Pixel) {
	ids := charIDs(s)
	f.drawPass(c, layer, x, y, ids, outline, 1)
	f.drawPass(c, layer, x, y, ids, fill, 0)
}

// DrawCentered clears layer and centres the bounding box of s on it.
func (f *BitmapFont) DrawCentered(c Canvas, layer int, s string, outline, fill domain.Pixel) {
	w, h, left, top := f.BoundingBox(s)
	x := -left + (c.Width()-w)/2
	y := -top + (c.Height()-h)/2

	c.SetAll(layer, domain.Transparent)
	f.DrawString(c, layer, x, y, s, outline, fill)
}

// drawPass draws every character using one atlas channel as alpha:
// 0 red, 1 green.
func (f *BitmapFont) drawPass(c Canvas, layer, x, y int, ids []byte, color domain.Pixel, channel int) {
	if f.atlas == nil {
		return
	}
	cx, cy := x, y
	for _, id := range ids {
		if id == '\n' {
			cx = x
			cy += f.LineHeight
			continue
		}
		ci, ok := f.CharInfo(id)
		if !ok {
			continue
		}
		f.copyRect(c, layer, ci, cx+ci.XOffset, cy+ci.YOffset, color, channel)
		cx += ci.XAdvance
	}
}

func (f *BitmapFont) copyRect(c Canvas, layer int, ci CharInfo, x0, y0 int, color domain.Pixel, channel int) {
	b := f.atlas.Bounds()
	for y := 0; y < ci.Height; y++ {
		for x := 0; x < ci.Width; x++ {
			px := image.Pt(b.Min.X+ci.X+x, b.Min.Y+ci.Y+y)
			if !px.In(b) {
				continue
			}
			r, g, _, _ := f.atlas.At(px.X, px.Y).RGBA()
			a := uint8(r >> 8)
			if channel == 1 {
				a = uint8(g >> 8)
			}
			c.SetPixelOver(layer, x0+x, y0+y, domain.Pixel(a)<<24|domain.Scale(a, color))
		}
	}
}
