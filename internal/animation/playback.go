package animation

import (
	"io"
	"time"
)

// Step is one decoded playlist element. Pixels is nil for a blank frame,
// otherwise it holds W*H/2 bytes of packed 4-bit pixels.
type Step struct {
	FrameID  uint8
	Pixels   []byte
	Duration time.Duration
}

// Playback walks an entry's playlist once.
type Playback struct {
	r    *Reader
	e    *Entry
	next int
}

// Play starts a playback of e. Nothing is read until Next is called.
func (r *Reader) Play(e *Entry) *Playback {
	return &Playback{r: r, e: e}
}

// Entry returns the entry being played.
func (p *Playback) Entry() *Entry { return p.e }

// Remaining returns the number of steps not yet returned.
func (p *Playback) Remaining() int { return len(p.e.Steps) - p.next }

// Next returns the following step, or io.EOF once the playlist is done.
// After a frame is read the stream is positioned at the frame that comes
// next, so the next call usually reads without seeking.
func (p *Playback) Next() (Step, error) {
	if p.next >= len(p.e.Steps) {
		return Step{}, io.EOF
	}
	fs := p.e.Steps[p.next]
	p.next++

	step := Step{FrameID: fs.FrameID, Duration: fs.Duration}
	if fs.FrameID != 0 {
		px, err := p.r.Frame(p.e, fs.FrameID)
		if err != nil {
			return Step{}, err
		}
		step.Pixels = px
	}

	if p.next < len(p.e.Steps) {
		if id := p.e.Steps[p.next].FrameID; id != 0 {
			if err := p.r.seek(p.e.frameOffset(id)); err != nil {
				return Step{}, err
			}
		}
	}
	return step, nil
}
