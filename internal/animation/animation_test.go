package animation

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(w, h int, v byte) []byte {
	return bytes.Repeat([]byte{v}, w*h/2)
}

func testArchive(t *testing.T) []byte {
	t.Helper()
	anis := []Animation{
		{
			Name: "ball", ID: 7, Width: 4, Height: 2,
			Frames: [][]byte{frame(4, 2, 0x11), frame(4, 2, 0x22)},
			Steps: []FrameStep{
				{FrameID: 1, Duration: 40 * time.Millisecond},
				{FrameID: 0, Duration: 20 * time.Millisecond},
				{FrameID: 2, Duration: 100 * time.Millisecond},
			},
		},
		{
			Name: "jackpot", ID: 9, Width: 4, Height: 2,
			Frames: [][]byte{frame(4, 2, 0x33)},
			Steps:  []FrameStep{{FrameID: 1, Duration: 255 * time.Millisecond}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "v1.2.3", anis))
	return buf.Bytes()
}

func TestOpenHeader(t *testing.T) {
	data := testArchive(t)
	r, err := Open(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, Header{Count: 2, BuildTag: "v1.2.3"}, r.Header())
	assert.Zero(t, len(data)%SectorSize)
	assert.NoError(t, r.Close())
}

func TestOpenBadMagic(t *testing.T) {
	data := testArchive(t)
	copy(data, "XYZ")

	_, err := Open(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestOpenTruncated(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("DG")))
	assert.Error(t, err)
}

func TestEntry(t *testing.T) {
	r, err := Open(bytes.NewReader(testArchive(t)))
	require.NoError(t, err)

	e, err := r.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "ball", e.Name)
	assert.Equal(t, uint16(7), e.ID)
	assert.Equal(t, 2, e.StoredFrames)
	assert.Equal(t, 3, e.FrameEntries)
	assert.Equal(t, 4, e.FrameSize())
	assert.Equal(t, int64(3*SectorSize), e.ByteOffset)
	assert.Equal(t, 160*time.Millisecond, e.Duration())

	e, err = r.Entry(1)
	require.NoError(t, err)
	assert.Equal(t, "jackpot", e.Name)
	assert.Equal(t, int64(5*SectorSize), e.ByteOffset)

	_, err = r.Entry(2)
	assert.ErrorIs(t, err, ErrNoEntry)
	_, err = r.Entry(-1)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestEntrySizeFallback(t *testing.T) {
	e := &Entry{}
	w, h := e.Size()
	assert.Equal(t, 128, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, 128*32/2, e.FrameSize())
}

func TestCorruptEntryIsolated(t *testing.T) {
	data := testArchive(t)
	// zero duration on the first step of entry 0
	data[3*SectorSize+1] = 0

	r, err := Open(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = r.Entry(0)
	assert.ErrorIs(t, err, ErrCorruptEntry)

	entries, err := r.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jackpot", entries[0].Name)
}

func TestFrameIDBeyondStoredIsCorrupt(t *testing.T) {
	data := testArchive(t)
	data[5*SectorSize] = 2

	r, err := Open(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = r.Entry(1)
	assert.ErrorIs(t, err, ErrCorruptEntry)
	_, err = r.Entry(0)
	assert.NoError(t, err)
}

func TestPlayback(t *testing.T) {
	r, err := Open(bytes.NewReader(testArchive(t)))
	require.NoError(t, err)
	e, err := r.Entry(0)
	require.NoError(t, err)

	p := r.Play(e)
	assert.Equal(t, 3, p.Remaining())

	s, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), s.FrameID)
	assert.Equal(t, frame(4, 2, 0x11), s.Pixels)
	assert.Equal(t, 40*time.Millisecond, s.Duration)

	s, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), s.FrameID)
	assert.Nil(t, s.Pixels)

	s, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, frame(4, 2, 0x22), s.Pixels)

	_, err = p.Next()
	assert.Equal(t, io.EOF, err)
	_, err = p.Next()
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, p.Remaining())
}

type seekCounter struct {
	*bytes.Reader
	seeks int
}

func (s *seekCounter) Seek(off int64, whence int) (int64, error) {
	s.seeks++
	return s.Reader.Seek(off, whence)
}

func TestPlaybackPreSeeks(t *testing.T) {
	anis := []Animation{{
		Name: "walk", Width: 4, Height: 2,
		Frames: [][]byte{frame(4, 2, 1), frame(4, 2, 2), frame(4, 2, 3)},
		Steps: []FrameStep{
			{FrameID: 1, Duration: time.Millisecond},
			{FrameID: 2, Duration: time.Millisecond},
			{FrameID: 3, Duration: time.Millisecond},
		},
	}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "", anis))

	sc := &seekCounter{Reader: bytes.NewReader(buf.Bytes())}
	r, err := Open(sc)
	require.NoError(t, err)
	e, err := r.Entry(0)
	require.NoError(t, err)

	p := r.Play(e)
	_, err = p.Next()
	require.NoError(t, err)
	before := sc.seeks

	// consecutive frames are contiguous, so no further seeks are needed
	for {
		_, err = p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, before, sc.seeks)
}

func TestEncodeValidation(t *testing.T) {
	cases := map[string]Animation{
		"long name":     {Name: string(bytes.Repeat([]byte("a"), 32)), Width: 2, Height: 2},
		"zero size":     {Name: "a"},
		"short frame":   {Name: "a", Width: 2, Height: 2, Frames: [][]byte{{1}}},
		"zero duration": {Name: "a", Width: 2, Height: 2, Steps: []FrameStep{{FrameID: 0}}},
		"long duration": {Name: "a", Width: 2, Height: 2, Steps: []FrameStep{{Duration: time.Second}}},
		"missing frame": {Name: "a", Width: 2, Height: 2, Steps: []FrameStep{{FrameID: 1, Duration: time.Millisecond}}},
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Encode(io.Discard, "", []Animation{a}))
		})
	}
	assert.Error(t, Encode(io.Discard, "123456789", nil))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ani.dgd")
	require.NoError(t, os.WriteFile(path, testArchive(t), 0o644))

	r, err := OpenFile(path)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.dgd"))
	assert.Error(t, err)
}

func paletted(w, h int, fill uint8) *image.Paletted {
	p := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{
		color.Black, color.White, color.Transparent,
	})
	for i := range p.Pix {
		p.Pix[i] = fill
	}
	return p
}

func TestFromGIF(t *testing.T) {
	last := paletted(4, 2, 2)
	last.SetColorIndex(0, 0, 0)
	g := &gif.GIF{
		Image:  []*image.Paletted{paletted(4, 2, 1), paletted(4, 2, 1), last},
		Delay:  []int{50, 3, 0},
		Config: image.Config{Width: 4, Height: 2},
	}

	a, err := FromGIF("flipper", 5, g, 4, 2)
	require.NoError(t, err)

	assert.Equal(t, "flipper", a.Name)
	assert.Equal(t, uint16(5), a.ID)
	require.Len(t, a.Frames, 2, "repeated frames are stored once")
	assert.Equal(t, frame(4, 2, 0xFF), a.Frames[0])
	assert.Equal(t, []byte{0x0F, 0xFF, 0xFF, 0xFF}, a.Frames[1], "transparent pixels keep the previous frame")
	assert.Equal(t, []FrameStep{
		{FrameID: 1, Duration: 255 * time.Millisecond},
		{FrameID: 1, Duration: 245 * time.Millisecond},
		{FrameID: 1, Duration: 30 * time.Millisecond},
		{FrameID: 2, Duration: 100 * time.Millisecond},
	}, a.Steps)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "gif", []Animation{a}))
}

func TestFromGIFScales(t *testing.T) {
	g := &gif.GIF{Image: []*image.Paletted{paletted(8, 4, 1)}, Delay: []int{10}}

	a, err := FromGIF("big", 1, g, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{frame(4, 2, 0xFF)}, a.Frames)
}

func TestFromGIFEmpty(t *testing.T) {
	_, err := FromGIF("none", 1, &gif.GIF{}, 4, 2)
	assert.Error(t, err)
}

func TestNibble(t *testing.T) {
	assert.Equal(t, byte(0x0A), nibble(color.RGBA{}))
	assert.Equal(t, byte(0x0F), nibble(color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.Equal(t, byte(0x00), nibble(color.RGBA{A: 255}))
	assert.Equal(t, byte(0x0B), nibble(color.RGBA{R: 0xA8, G: 0xA8, B: 0xA8, A: 255}), "grey 10 would read as transparent")
}
