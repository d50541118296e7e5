package engine

import (
	"image/color"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

func newBarsGraph(t *testing.T, options ...renderer.RendererBuilderOption) (*gputest.Recorder, Graph, controller.BarsController) {
	t.Helper()
	dev := gputest.NewRecorder()
	r := renderer.NewBarsRenderer(dev, append([]renderer.RendererBuilderOption{
		renderer.WithLogger(discard),
		renderer.WithWorkers(1),
	}, options...)...)
	proxy := data.NewBarDataProxy(
		data.NewBarRow([]float32{1, 2}, "r0", "c0", "c1"),
		data.NewBarRow([]float32{3, 4}, "r1", "c0", "c1"),
		data.NewBarRow([]float32{5, 6}, "r2", "c0", "c1"),
	)
	c := controller.NewBarsController(r, proxy, controller.WithLogger(discard))
	g := NewGraph(c, r, WithLogger(discard))
	g.HandleEvent(input.Resize(800, 600, time.Now()))
	t.Cleanup(g.Close)
	return dev, g, c
}

func TestFrameSyncsAndDraws(t *testing.T) {
	dev, g, c := newBarsGraph(t)
	require.NoError(t, g.Frame())

	r := g.Renderer().(renderer.BarsRenderer)
	assert.Equal(t, c.RowCount(), r.RowCount())
	assert.Equal(t, c.ColumnCount(), r.ColumnCount())
	assert.Empty(t, c.Pending())
	assert.Equal(t, 1, dev.Calls["BeginFrame"])
	assert.NotEmpty(t, dev.Draws)
}

func TestRunNeedsWindow(t *testing.T) {
	_, g, _ := newBarsGraph(t)
	assert.ErrorIs(t, g.Run(), ErrNoWindow)
	assert.Nil(t, g.Window())
}

func TestClickSelectsAfterTwoFrames(t *testing.T) {
	dev, g, c := newBarsGraph(t)
	require.NoError(t, g.Frame())

	// Series id 3 is the bar at row 1, column 1.
	dev.Pixel = color.RGBA{R: 3, B: 1 << 5, A: 255}
	g.HandleEvent(input.Press(input.ButtonLeft, 400, 300, time.Now()))
	require.NoError(t, g.Frame())
	assert.Equal(t, controller.NoSelection, c.SelectedBar())

	require.NoError(t, g.Frame())
	assert.Equal(t, controller.Position{Row: 1, Column: 1}, c.SelectedBar())
	assert.Equal(t, controller.ElementSeries, c.SelectedElement())
}

func TestMutationsFromOtherGoroutines(t *testing.T) {
	_, g, c := newBarsGraph(t)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				g.Mutate(func(c controller.Controller) {
					c.SetCameraRotation(float32(i*50+j), 10)
				})
			}
		}()
	}
	for range 20 {
		require.NoError(t, g.Frame())
	}
	wg.Wait()

	require.NoError(t, g.Frame())
	assert.Empty(t, c.Pending())
	assert.Equal(t, float32(10), c.Camera().YRotation)
}

func TestFpsIsReportedToController(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time {
		now = now.Add(250 * time.Millisecond)
		return now
	}
	p := profiler.NewProfiler(profiler.WithClock(clock), profiler.WithInterval(time.Second), profiler.WithLogger(discard))
	_, g, c := newBarsGraph(t, renderer.WithProfiler(p))

	require.NoError(t, g.Frame())
	assert.Equal(t, -1.0, c.CurrentFps())

	g.Mutate(func(c controller.Controller) { c.SetMeasureFps(true) })
	for range 6 {
		require.NoError(t, g.Frame())
	}
	assert.Greater(t, c.CurrentFps(), 0.0)
}

func TestLostContextRecoversOnNextFrame(t *testing.T) {
	dev, g, _ := newBarsGraph(t)
	require.NoError(t, g.Frame())

	dev.Lose()
	assert.ErrorIs(t, g.Frame(), gpu.ErrContextLost)
	require.NoError(t, g.Frame())
	assert.Equal(t, 1, dev.Calls["Restore"])
}

func TestCloseReleasesTheRenderer(t *testing.T) {
	dev, g, _ := newBarsGraph(t)
	require.NoError(t, g.Frame())
	g.Close()
	for _, kind := range []gpu.ObjectKind{gpu.ObjectBuffer, gpu.ObjectTexture, gpu.ObjectProgram, gpu.ObjectTarget} {
		assert.Zero(t, dev.Live(kind))
	}
}
