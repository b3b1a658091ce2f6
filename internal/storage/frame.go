package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// ErrBadFrame is returned for cached frame blobs that cannot be decoded.
var ErrBadFrame = errors.New("storage: bad frame blob")

const frameHeaderSize = 4

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// EncodeFrame packs f as a little endian width and height followed by the
// zstd compressed RGB pixels.
func EncodeFrame(f *domain.Frame) ([]byte, error) {
	if f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Pixels) != f.Width*f.Height*domain.BytesPerPixel {
		return nil, fmt.Errorf("%w: invalid frame", ErrBadFrame)
	}

	var buf bytes.Buffer
	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:], uint16(f.Width))
	binary.LittleEndian.PutUint16(hdr[2:], uint16(f.Height))
	buf.Write(hdr[:])

	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	enc.Reset(&buf)
	if _, err := enc.Write(f.Pixels); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to compress frame: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress frame: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(data []byte) (*domain.Frame, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(data))
	}
	w := int(binary.LittleEndian.Uint16(data[0:]))
	h := int(binary.LittleEndian.Uint16(data[2:]))

	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	if err := dec.Reset(bytes.NewReader(data[frameHeaderSize:])); err != nil {
		return nil, fmt.Errorf("failed to decompress frame: %w", err)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(dec); err != nil {
		return nil, fmt.Errorf("failed to decompress frame: %w", err)
	}
	if out.Len() != w*h*domain.BytesPerPixel {
		return nil, fmt.Errorf("%w: %dx%d frame with %d bytes", ErrBadFrame, w, h, out.Len())
	}
	return &domain.Frame{Width: w, Height: h, Pixels: out.Bytes()}, nil
}
