package layersync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 50 * time.Millisecond

func newTestController(opts ...Option) *Controller {
	return New(3, append([]Option{WithTimeout(testTimeout)}, opts...)...)
}

func TestLayersStartDrawable(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	for l := 0; l < 3; l++ {
		require.NoError(t, c.StartDrawing(ctx, l))
	}
}

func TestStartDrawingTimesOutWithoutRelease(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	require.NoError(t, c.StartDrawing(ctx, 1))

	start := time.Now()
	err := c.StartDrawing(ctx, 1)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), testTimeout)
	assert.Equal(t, []uint64{0, 1, 0}, c.Stats().StartTimeouts)
}

func TestDoneUpdatingReleasesProducers(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	require.NoError(t, c.StartDrawing(ctx, 0))
	c.DoneUpdating()
	require.NoError(t, c.StartDrawing(ctx, 0))
}

func TestDoneUpdatingIsIdempotent(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	c.DoneUpdating()
	c.DoneUpdating()

	require.NoError(t, c.StartDrawing(ctx, 2))
	assert.ErrorIs(t, c.StartDrawing(ctx, 2), ErrTimeout)
}

func TestIdleLayersDoNotHoldTheFrame(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.WaitDrawingDone(ctx))
		c.DoneUpdating()
	}
	assert.Zero(t, c.Stats().WaitTimeouts)
}

func TestWaitDrawingDoneWaitsForDrawingLayer(t *testing.T) {
	c := newTestController(WithTimeout(time.Second))
	ctx := context.Background()

	require.NoError(t, c.StartDrawing(ctx, 2))

	released := make(chan error, 1)
	go func() { released <- c.WaitDrawingDone(ctx) }()

	select {
	case <-released:
		t.Fatal("compositor must wait for the layer being drawn")
	case <-time.After(20 * time.Millisecond):
	}

	c.DoneDrawing(2)
	select {
	case err := <-released:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("compositor was not released")
	}
}

func TestCompositorKeepsProducersOut(t *testing.T) {
	c := newTestController()
	ctx := context.Background()

	require.NoError(t, c.WaitDrawingDone(ctx))
	assert.ErrorIs(t, c.StartDrawing(ctx, 0), ErrTimeout)

	c.DoneUpdating()
	assert.NoError(t, c.StartDrawing(ctx, 0))
}

func TestWaitDrawingDoneTimeout(t *testing.T) {
	var phases []Phase
	var layers []int
	c := newTestController(WithTimeoutHook(func(p Phase, l int) {
		phases = append(phases, p)
		layers = append(layers, l)
	}))
	ctx := context.Background()

	require.NoError(t, c.StartDrawing(ctx, 1))
	assert.ErrorIs(t, c.WaitDrawingDone(ctx), ErrTimeout)
	assert.Equal(t, []Phase{PhaseWait}, phases)
	assert.Equal(t, []int{1}, layers)
	assert.Equal(t, uint64(1), c.Stats().WaitTimeouts)

	// the stuck producer finishes late; the next cycle is clean
	c.DoneDrawing(1)
	c.DoneUpdating()
	assert.NoError(t, c.WaitDrawingDone(ctx))
}

func TestContextCancel(t *testing.T) {
	c := newTestController(WithTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.StartDrawing(ctx, 0))

	cancel()
	assert.ErrorIs(t, c.StartDrawing(ctx, 0), context.Canceled)
	assert.ErrorIs(t, c.WaitDrawingDone(ctx), context.Canceled)
}

func TestInvalidLayersAreIgnored(t *testing.T) {
	c := newTestController()

	assert.NoError(t, c.StartDrawing(context.Background(), 7))
	assert.NoError(t, c.StartDrawing(context.Background(), -1))
	c.DoneDrawing(9)
}

func TestFullCycle(t *testing.T) {
	c := newTestController(WithTimeout(time.Second))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	drawn := 0
	for l := 0; l < 3; l++ {
		wg.Add(1)
		go func(layer int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if err := c.StartDrawing(ctx, layer); err != nil {
					t.Errorf("layer %d: %v", layer, err)
					return
				}
				mu.Lock()
				drawn++
				mu.Unlock()
				c.DoneDrawing(layer)
			}
		}(l)
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, c.WaitDrawingDone(ctx))
		c.DoneUpdating()
	}
	wg.Wait()

	assert.Equal(t, 15, drawn)
	s := c.Stats()
	assert.Equal(t, []uint64{0, 0, 0}, s.StartTimeouts)
	assert.Zero(t, s.WaitTimeouts)
}
