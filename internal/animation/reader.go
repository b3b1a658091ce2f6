package animation

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Reader gives random access to the entries of one archive.
type Reader struct {
	mu     sync.Mutex
	rs     io.ReadSeeker
	closer io.Closer
	pos    int64
	header Header
}

// Open reads and checks the archive header.
func Open(rs io.ReadSeeker) (*Reader, error) {
	r := &Reader{rs: rs, pos: -1}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenFile opens an archive on disk. The Reader owns the file.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening animation archive: %w", err)
	}
	r, err := Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// Header returns the archive header.
func (r *Reader) Header() Header { return r.header }

// Close releases the underlying file, if the Reader opened it.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) readHeader() error {
	magic := make([]byte, 5)
	if err := r.readAt(0, magic); err != nil {
		return fmt.Errorf("reading archive header: %w", err)
	}
	if string(magic[:3]) != Magic {
		return ErrBadMagic
	}
	tag := make([]byte, buildTagSize)
	if err := r.readAt(buildTagOffset, tag); err != nil {
		return fmt.Errorf("reading build tag: %w", err)
	}
	r.header = Header{
		Count:    int(binary.BigEndian.Uint16(magic[3:])),
		BuildTag: cstring(tag),
	}
	return nil
}

// Entry reads the entry at index together with its playlist. A playlist
// with a zero duration or a frame id beyond the stored frames yields
// ErrCorruptEntry; other entries stay readable.
func (r *Reader) Entry(index int) (*Entry, error) {
	if index < 0 || index >= r.header.Count {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoEntry, index, r.header.Count)
	}

	rec := make([]byte, entryFixed)
	if err := r.readAt(entryOffset(index), rec); err != nil {
		return nil, fmt.Errorf("reading entry %d: %w", index, err)
	}
	e := &Entry{
		Index:        index,
		Name:         cstring(rec[:entryNameSize-1]),
		ID:           binary.BigEndian.Uint16(rec[32:]),
		ByteOffset:   int64(binary.BigEndian.Uint32(rec[34:])) * SectorSize,
		StoredFrames: int(rec[38]),
		FrameEntries: int(rec[39]),
		Width:        int(rec[40]),
		Height:       int(rec[41]),
	}

	list := make([]byte, 2*e.FrameEntries)
	if err := r.readAt(e.ByteOffset, list); err != nil {
		return nil, fmt.Errorf("reading playlist of entry %d: %w", index, err)
	}
	e.Steps = make([]FrameStep, e.FrameEntries)
	for i := range e.Steps {
		id, dur := list[2*i], list[2*i+1]
		if dur == 0 || int(id) > e.StoredFrames {
			return nil, fmt.Errorf("%w: entry %d step %d (frame %d, %d ms)", ErrCorruptEntry, index, i, id, dur)
		}
		e.Steps[i] = FrameStep{FrameID: id, Duration: time.Duration(dur) * time.Millisecond}
	}
	return e, nil
}

// Entries returns every readable entry in archive order, skipping corrupt
// ones. An I/O failure stops the scan and is returned with what was read.
func (r *Reader) Entries() ([]*Entry, error) {
	entries := make([]*Entry, 0, r.header.Count)
	for i := 0; i < r.header.Count; i++ {
		e, err := r.Entry(i)
		if errors.Is(err, ErrCorruptEntry) {
			continue
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Frame reads one stored frame of e. id must be in 1..StoredFrames.
func (r *Reader) Frame(e *Entry, id uint8) ([]byte, error) {
	if id == 0 || int(id) > e.StoredFrames {
		return nil, fmt.Errorf("%w: frame %d of %d", ErrNoEntry, id, e.StoredFrames)
	}
	buf := make([]byte, e.FrameSize())
	if err := r.readAt(e.frameOffset(id), buf); err != nil {
		return nil, fmt.Errorf("reading frame %d of %q: %w", id, e.Name, err)
	}
	return buf, nil
}

func (r *Reader) readAt(off int64, p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.seekLocked(off); err != nil {
		return err
	}
	n, err := io.ReadFull(r.rs, p)
	r.pos += int64(n)
	if err != nil {
		r.pos = -1
	}
	return err
}

// seek positions the stream ahead of a later readAt at off.
func (r *Reader) seek(off int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seekLocked(off)
}

func (r *Reader) seekLocked(off int64) error {
	if r.pos == off {
		return nil
	}
	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		r.pos = -1
		return err
	}
	r.pos = off
	return nil
}
