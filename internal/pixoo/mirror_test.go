package pixoo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
	"github.com/jwulff/pinclock-go/internal/panel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	mu         sync.Mutex
	frames     []*domain.Frame
	picIDs     []int
	resets     int
	brightness []int
	sendErr    error
}

func (f *fakeDevice) SendFrame(_ context.Context, frame *domain.Frame, picID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	f.picIDs = append(f.picIDs, picID)
	return f.sendErr
}

func (f *fakeDevice) ResetGifID(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeDevice) SetBrightness(_ context.Context, b int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brightness = append(f.brightness, b)
	return nil
}

// redOutput is a one-plane 128x32 frame with only the top left pixel lit red.
func redOutput() panel.Output {
	plane := make([]uint16, 128*16)
	plane[0] = panel.BitR1
	return panel.Output{Width: 128, Height: 32, Planes: [][]uint16{plane}, Schedule: []int{0}}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMirrorThrottlesAndQueues(t *testing.T) {
	dev := &fakeDevice{}
	clk := &fakeClock{t: time.Unix(1000, 0)}
	m := NewMirror(dev, time.Second, WithClock(clk.now))
	ctx := context.Background()

	require.NoError(t, m.Show(ctx, redOutput()))
	clk.t = clk.t.Add(500 * time.Millisecond)
	require.NoError(t, m.Show(ctx, panel.Output{Width: 128, Height: 32}))
	m.flush(ctx)

	require.Len(t, dev.frames, 1)
	assert.Equal(t, Size, dev.frames[0].Width)
	assert.Equal(t, domain.NewRGB(0, 0, 128), *dev.frames[0].GetPixel(0, 0), "R lines carry the high byte")
	assert.Equal(t, 1, dev.resets)
	assert.Equal(t, []int{1}, dev.picIDs)

	m.flush(ctx)
	assert.Len(t, dev.frames, 1, "nothing queued")

	clk.t = clk.t.Add(time.Second)
	require.NoError(t, m.Show(ctx, redOutput()))
	m.flush(ctx)
	assert.Equal(t, []int{1, 2}, dev.picIDs)
	assert.Equal(t, 1, dev.resets)
}

func TestMirrorResetsPicID(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMirror(dev, 0)
	m.picID = picIDLimit

	require.NoError(t, m.Show(context.Background(), redOutput()))
	m.flush(context.Background())

	assert.Equal(t, 1, dev.resets)
	assert.Equal(t, []int{1}, dev.picIDs)
}

func TestMirrorBrightnessSentOnChange(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMirror(dev, time.Second)

	m.SetBrightness(64, 128)
	m.flush(context.Background())
	m.SetBrightness(64, 128)
	m.flush(context.Background())
	m.SetBrightness(0, 128)
	m.flush(context.Background())

	assert.Equal(t, []int{50, 0}, dev.brightness)
	assert.Empty(t, dev.frames)
}

func TestMirrorUploadErrorIsNotFatal(t *testing.T) {
	dev := &fakeDevice{sendErr: errors.New("offline")}
	m := NewMirror(dev, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.NoError(t, m.Show(ctx, redOutput()))
	assert.Eventually(t, func() bool {
		dev.mu.Lock()
		defer dev.mu.Unlock()
		return len(dev.frames) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
