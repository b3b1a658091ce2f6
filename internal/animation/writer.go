package animation

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Animation is the input of Encode.
type Animation struct {
	Name   string
	ID     uint16
	Width  int
	Height int
	// Frames are stored frames, each Width*Height/2 bytes. Steps refer to
	// them by 1-based index.
	Frames [][]byte
	Steps  []FrameStep
}

func (a *Animation) validate() error {
	if len(a.Name) >= entryNameSize {
		return fmt.Errorf("name %q longer than %d bytes", a.Name, entryNameSize-1)
	}
	if a.Width <= 0 || a.Width > 255 || a.Height <= 0 || a.Height > 255 {
		return fmt.Errorf("%q: size %dx%d out of range", a.Name, a.Width, a.Height)
	}
	if len(a.Frames) > 255 || len(a.Steps) > 255 {
		return fmt.Errorf("%q: at most 255 frames and steps", a.Name)
	}
	size := a.Width * a.Height / 2
	for i, f := range a.Frames {
		if len(f) != size {
			return fmt.Errorf("%q: frame %d has %d bytes, want %d", a.Name, i+1, len(f), size)
		}
	}
	for i, s := range a.Steps {
		ms := s.Duration / time.Millisecond
		if ms < 1 || ms > 255 {
			return fmt.Errorf("%q: step %d duration %v outside 1..255ms", a.Name, i, s.Duration)
		}
		if int(s.FrameID) > len(a.Frames) {
			return fmt.Errorf("%q: step %d refers to frame %d of %d", a.Name, i, s.FrameID, len(a.Frames))
		}
	}
	return nil
}

// Encode writes a complete archive.
func Encode(w io.Writer, buildTag string, anis []Animation) error {
	if len(anis) > 0xFFFF {
		return fmt.Errorf("too many animations: %d", len(anis))
	}
	if len(buildTag) > buildTagSize {
		return fmt.Errorf("build tag %q longer than %d bytes", buildTag, buildTagSize)
	}
	for i := range anis {
		if err := anis[i].validate(); err != nil {
			return err
		}
	}

	header := make([]byte, SectorSize*(1+len(anis)))
	copy(header, Magic)
	binary.BigEndian.PutUint16(header[3:], uint16(len(anis)))
	copy(header[buildTagOffset:], buildTag)

	var body []byte
	next := int64(len(header))
	for i := range anis {
		a := &anis[i]
		rec := header[entryOffset(i):]
		copy(rec, a.Name)
		binary.BigEndian.PutUint16(rec[32:], a.ID)
		binary.BigEndian.PutUint32(rec[34:], uint32(next/SectorSize))
		rec[38] = uint8(len(a.Frames))
		rec[39] = uint8(len(a.Steps))
		rec[40] = uint8(a.Width)
		rec[41] = uint8(a.Height)

		block := make([]byte, SectorSize, SectorSize+len(a.Frames)*a.Width*a.Height/2)
		for j, s := range a.Steps {
			block[2*j] = s.FrameID
			block[2*j+1] = uint8(s.Duration / time.Millisecond)
		}
		for _, f := range a.Frames {
			block = append(block, f...)
		}
		block = append(block, make([]byte, pad(len(block)))...)
		body = append(body, block...)
		next += int64(len(block))
	}

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func pad(n int) int {
	if r := n % SectorSize; r != 0 {
		return SectorSize - r
	}
	return 0
}
