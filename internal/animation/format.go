// Package animation reads and writes DGD animation archives: a sector
// aligned container of 4-bit paletted frames plus per-animation playlists.
package animation

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// Archive layout constants. All multi-byte fields are big-endian.
const (
	Magic      = "DGD"
	SectorSize = 0x200

	buildTagOffset = 0x1EF
	buildTagSize   = 8

	entryNameSize = 32
	entryFixed    = entryNameSize + 10
)

var (
	// ErrBadMagic means the archive does not start with "DGD".
	ErrBadMagic = errors.New("animation: bad magic")
	// ErrCorruptEntry means an entry's playlist is unusable.
	ErrCorruptEntry = errors.New("animation: corrupt entry")
	// ErrNoEntry means an entry index is outside the archive.
	ErrNoEntry = errors.New("animation: no such entry")
)

// Header is the archive preamble.
type Header struct {
	Count    int
	BuildTag string
}

// FrameStep is one playlist element. FrameID 0 shows a blank frame.
type FrameStep struct {
	FrameID  uint8
	Duration time.Duration
}

// Entry describes one animation.
type Entry struct {
	Index        int
	Name         string
	ID           uint16
	ByteOffset   int64
	StoredFrames int
	FrameEntries int
	Width        int
	Height       int
	Steps        []FrameStep
}

// Size returns the frame dimensions, falling back to the panel size when
// the archive left them zero.
func (e *Entry) Size() (w, h int) {
	w, h = e.Width, e.Height
	if w == 0 || h == 0 {
		w, h = domain.PanelWidth, domain.PanelHeight
	}
	return w, h
}

// FrameSize is the number of bytes per stored frame.
func (e *Entry) FrameSize() int {
	w, h := e.Size()
	return w * h / 2
}

// Duration sums the step durations.
func (e *Entry) Duration() time.Duration {
	var d time.Duration
	for _, s := range e.Steps {
		d += s.Duration
	}
	return d
}

func (e *Entry) dataStart() int64 { return e.ByteOffset + SectorSize }

// frameOffset returns the file offset of the 1-based stored frame id.
func (e *Entry) frameOffset(id uint8) int64 {
	return e.dataStart() + int64(e.FrameSize())*int64(int(id)-1)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%d %q id=%d frames=%d steps=%d", e.Index, e.Name, e.ID, e.StoredFrames, e.FrameEntries)
}

func entryOffset(index int) int64 {
	return SectorSize + SectorSize*int64(index)
}

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
