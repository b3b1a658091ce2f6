package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/pinclock-go/internal/domain"
)

func TestNewPlayback(t *testing.T) {
	p := NewPlayback(3, "multiball")

	_, err := uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, p.AnimationIndex)
	assert.Equal(t, "multiball", p.Name)
	assert.False(t, p.StartedAt.IsZero())
	assert.True(t, p.StartedAt.Before(time.Now().Add(time.Second)))
	assert.NotEqual(t, p.ID, NewPlayback(3, "multiball").ID)
}

func TestErrNotFound(t *testing.T) {
	err := ErrNotFound{Resource: "animation", ID: "123"}

	assert.Equal(t, "animation not found: 123", err.Error())
	assert.True(t, IsNotFound(err))
}

func TestIsNotFoundFalse(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(assert.AnError))
}

func TestFrameRoundTrip(t *testing.T) {
	f := domain.NewFrame(128, 32)
	f.Fill(domain.NewRGB(1, 2, 3))
	f.SetPixel(127, 31, domain.NewRGB(255, 0, 128))

	data, err := EncodeFrame(f)
	require.NoError(t, err)
	assert.Less(t, len(data), len(f.Pixels)/4, "flat frames compress well")

	got, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestEncodeFrameRejectsInvalid(t *testing.T) {
	_, err := EncodeFrame(nil)
	assert.ErrorIs(t, err, ErrBadFrame)

	_, err = EncodeFrame(&domain.Frame{Width: 2, Height: 2, Pixels: make([]byte, 3)})
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame([]byte{1, 2})
	assert.ErrorIs(t, err, ErrBadFrame)

	data, err := EncodeFrame(domain.NewFrame(4, 2))
	require.NoError(t, err)
	data[0] = 5
	_, err = DecodeFrame(data)
	assert.ErrorIs(t, err, ErrBadFrame)

	_, err = DecodeFrame([]byte{1, 0, 1, 0, 'n', 'o', 'p', 'e'})
	assert.Error(t, err)
}
