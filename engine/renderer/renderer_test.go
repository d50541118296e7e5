package renderer

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/drawer"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewport = common.Rect{Width: 800, Height: 600}

// syncFunc is a Source that runs a function instead of a controller.
type syncFunc func()

func (f syncFunc) SynchDataToRenderer() { f() }

var noChanges = syncFunc(func() {})

func testOptions() []RendererBuilderOption {
	return []RendererBuilderOption{WithWorkers(1), WithLogger(slog.New(slog.DiscardHandler))}
}

func sampleBars() data.BarDataProxy {
	return data.NewBarDataProxy(
		data.NewBarRow([]float32{1, 2}, "r0", "c0", "c1"),
		data.NewBarRow([]float32{3, 4}, "r1", "c0", "c1"),
		data.NewBarRow([]float32{5, 6}, "r2", "c0", "c1"),
	)
}

func newSyncedBars(t *testing.T) (*gputest.Recorder, *barsRenderer, controller.BarsController, data.BarDataProxy) {
	t.Helper()
	dev := gputest.NewRecorder()
	r := NewBarsRenderer(dev, testOptions()...)
	p := sampleBars()
	c := controller.NewBarsController(r, p)
	require.NoError(t, c.HandleResize(viewport))
	require.NoError(t, r.Synchronize(c))
	return dev, r.(*barsRenderer), c, p
}

func countPrograms(dev *gputest.Recorder, prefix string) int {
	n := 0
	for _, label := range dev.Programs {
		if strings.HasPrefix(label, prefix) {
			n++
		}
	}
	return n
}

func idColor(id uint32) color.RGBA {
	return color.RGBA{R: uint8(id), G: uint8(id >> 8), B: uint8(id >> 16), A: 255}
}

func TestDrawBeforeSync(t *testing.T) {
	r := NewBarsRenderer(gputest.NewRecorder(), testOptions()...)
	assert.ErrorIs(t, r.Draw(), ErrNotInitialized)
	res, err := r.HandleSelection(10, 10)
	require.NoError(t, err)
	assert.Equal(t, controller.ElementNone, res.Element)
}

func TestShadowQualityRoundTripRecompilesOnce(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	require.Equal(t, 1, countPrograms(dev, "object["))
	assert.Equal(t, shader.ShadowHard, r.ShaderVariant().Shadow)
	assert.Equal(t, 2, dev.Live(gpu.ObjectTarget))
	assert.Equal(t, 6, dev.Live(gpu.ObjectProgram))

	require.NoError(t, c.SetShadowQuality(controller.ShadowQualityHigh))
	require.NoError(t, c.SetShadowQuality(controller.ShadowQualityNone))
	require.NoError(t, r.Synchronize(c))

	assert.Equal(t, 2, countPrograms(dev, "object["))
	assert.Equal(t, shader.ShadowNone, r.ShaderVariant().Shadow)
	// Only the selection target is left once shadows are off.
	assert.Equal(t, 1, dev.Live(gpu.ObjectTarget))
	assert.Equal(t, 6, dev.Live(gpu.ObjectProgram))
}

func TestCompileFailureKeepsPreviousPrograms(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	object := r.shaders.object.ID()

	dev.FailCompile = true
	require.NoError(t, c.SetShadowQuality(controller.ShadowQualitySoftHigh))
	require.NoError(t, r.Synchronize(c))
	assert.Equal(t, object, r.shaders.object.ID())
	assert.True(t, dev.IsLive(object))
	assert.Equal(t, shader.ShadowHard, r.ShaderVariant().Shadow)

	dev.FailCompile = false
	calls := dev.Calls["CreateProgram"]
	require.NoError(t, r.Synchronize(noChanges))
	assert.Equal(t, calls, dev.Calls["CreateProgram"])
	require.NoError(t, r.Draw())
}

func TestConstrainedProfileIgnoresShadows(t *testing.T) {
	dev := gputest.NewRecorder()
	dev.NoDepthTargets = true
	r := NewBarsRenderer(dev, testOptions()...)
	r.UpdateShadowQuality(controller.ShadowQualityHigh)
	r.HandleResize(viewport)
	require.NoError(t, r.Synchronize(noChanges))

	b := r.(*barsRenderer)
	assert.Equal(t, controller.ProfileConstrained, b.Profile())
	assert.Equal(t, shader.ShadowNone, b.ShaderVariant().Shadow)
	assert.Zero(t, countPrograms(dev, "depth"))
	assert.Equal(t, 1, dev.Live(gpu.ObjectTarget))
}

func TestResizeZoom(t *testing.T) {
	r := NewBarsRenderer(gputest.NewRecorder(), testOptions()...).(*barsRenderer)

	r.HandleResize(common.Rect{Width: 1600, Height: 1000})
	assert.InDelta(t, 1.0, r.Zoom(), 1e-6)
	r.HandleResize(common.Rect{Width: 800, Height: 800})
	assert.InDelta(t, 0.625, r.Zoom(), 1e-6)
	r.HandleResize(common.Rect{Width: 400, Height: 800})
	assert.InDelta(t, 0.3125, r.Zoom(), 1e-6)
	r.HandleResize(common.Rect{Width: 4000, Height: 500})
	assert.InDelta(t, 1.0, r.Zoom(), 1e-6)

	r.HandleResize(common.Rect{Width: 0, Height: 600})
	r.HandleResize(common.Rect{Width: 600, Height: 0})
	assert.InDelta(t, 1.0, r.Zoom(), 1e-6)
	assert.Equal(t, common.Rect{Width: 4000, Height: 500}, r.BoundingRect())
}

func TestResizeReallocatesTargets(t *testing.T) {
	dev, r, _, _ := newSyncedBars(t)
	w, h := r.selectionTarget.Size()
	assert.Equal(t, []int{800, 600}, []int{w, h})

	r.HandleResize(common.Rect{Width: 1024, Height: 768})
	w, h = r.selectionTarget.Size()
	assert.Equal(t, []int{1024, 768}, []int{w, h})
	assert.Equal(t, 2, dev.Live(gpu.ObjectTarget))

	dev.FailAlloc = true
	old := r.selectionTarget.ID()
	r.HandleResize(common.Rect{Width: 640, Height: 480})
	assert.Equal(t, old, r.selectionTarget.ID())
	assert.True(t, dev.IsLive(old))
	dev.FailAlloc = false
	require.NoError(t, r.Draw())
}

func TestRowAndColumnCountsFollowProxyAtSync(t *testing.T) {
	_, r, c, p := newSyncedBars(t)
	assert.Equal(t, 3, r.RowCount())
	assert.Equal(t, 2, r.ColumnCount())
	assert.Len(t, r.seriesElements(), 6)

	require.NoError(t, p.AddRows(data.NewBarRow([]float32{7, 8}, "r3")))
	assert.Equal(t, 3, r.RowCount())

	require.NoError(t, r.Synchronize(c))
	assert.Equal(t, 4, r.RowCount())
	assert.Equal(t, 2, r.ColumnCount())
	assert.Len(t, r.seriesElements(), 8)
}

func TestAxisCachesUpdateIndependently(t *testing.T) {
	dev, r, _, _ := newSyncedBars(t)
	x := r.Axis(axis.OrientationX)
	require.Len(t, x.LabelItems(), 2)
	xIDs := []uint32{x.LabelItems()[0].Texture().ID(), x.LabelItems()[1].Texture().ID()}
	zCount := len(r.Axis(axis.OrientationZ).LabelItems())
	assert.Equal(t, 3, zCount)

	calls := dev.Calls["CreateTexture"]
	require.NoError(t, r.Synchronize(syncFunc(func() {
		r.UpdateAxisTitle(axis.OrientationY, "height")
	})))
	assert.Equal(t, calls+1, dev.Calls["CreateTexture"])
	assert.False(t, r.Axis(axis.OrientationY).TitleItem().Empty())
	assert.Equal(t, xIDs, []uint32{x.LabelItems()[0].Texture().ID(), x.LabelItems()[1].Texture().ID()})

	before := dev.Live(gpu.ObjectTexture)
	require.NoError(t, r.Synchronize(syncFunc(func() {
		r.UpdateAxisLabels(axis.OrientationX, []string{"only"})
	})))
	assert.Equal(t, before-1, dev.Live(gpu.ObjectTexture))
	assert.False(t, dev.IsLive(xIDs[0]))
	assert.False(t, dev.IsLive(xIDs[1]))
}

const quadOBJ = `v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
f 1 2 3 4
`

func TestCustomItemRoundTripLeavesNoTexture(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))
	textures := dev.Live(gpu.ObjectTexture)

	it := item.NewCustomItem(item.WithMeshFile(path))
	label := item.NewLabelItem(item.WithText("peak"))
	c.CustomItems().Add(it)
	c.CustomItems().Add(label)
	require.NoError(t, r.Synchronize(c))
	require.Len(t, r.items, 2)
	assert.Equal(t, textures+2, dev.Live(gpu.ObjectTexture))
	assert.Len(t, r.itemElements(), 2)
	require.NoError(t, r.Draw())

	it.SetPosition(mgl32.Vec3{1, 2, 1})
	calls := dev.Calls["CreateTexture"]
	require.NoError(t, r.Synchronize(c))
	assert.Equal(t, calls, dev.Calls["CreateTexture"])

	c.CustomItems().Remove(it)
	c.CustomItems().Remove(label)
	require.NoError(t, r.Synchronize(c))
	assert.Empty(t, r.items)
	assert.Equal(t, textures, dev.Live(gpu.ObjectTexture))
}

func TestCustomItemPlacementIsCapturedAtSync(t *testing.T) {
	_, r, c, _ := newSyncedBars(t)
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	it := item.NewCustomItem(item.WithMeshFile(path), item.WithPositionAbsolute())
	c.CustomItems().Add(it)
	require.NoError(t, r.Synchronize(c))
	require.Len(t, r.itemElements(), 1)
	before := r.itemElements()[0].matrix

	it.SetPosition(mgl32.Vec3{0.5, 0.5, 0.5})
	it.SetVisible(false)
	require.Len(t, r.itemElements(), 1)
	assert.Equal(t, before, r.itemElements()[0].matrix)

	require.NoError(t, r.Synchronize(c))
	assert.Empty(t, r.itemElements())

	it.SetVisible(true)
	require.NoError(t, r.Synchronize(c))
	require.Len(t, r.itemElements(), 1)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, r.itemElements()[0].matrix.Col(3).Vec3())
}

// Run with -race: items move under the frame lock while Draw runs outside it.
func TestDrawDoesNotReadLiveCustomItems(t *testing.T) {
	_, r, c, _ := newSyncedBars(t)
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	it := item.NewCustomItem(item.WithMeshFile(path))
	label := item.NewLabelItem(item.WithText("moving"), item.WithFacingCamera())
	c.CustomItems().Add(it)
	c.CustomItems().Add(label)

	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 200 {
			mu.Lock()
			it.SetPosition(mgl32.Vec3{float32(i % 7), 1, 1})
			label.SetScaling(mgl32.Vec3{0.2, 0.2, float32(i%3) + 0.1})
			it.SetVisible(i%2 == 0)
			mu.Unlock()
		}
	}()

	for range 50 {
		mu.Lock()
		err := r.Synchronize(c)
		mu.Unlock()
		require.NoError(t, err)
		require.NoError(t, r.Draw())
	}
	<-done
}

func TestCustomItemFailuresStayPending(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	it := item.NewCustomItem(item.WithMeshFile(filepath.Join(t.TempDir(), "missing.obj")))
	c.CustomItems().Add(it)
	require.NoError(t, r.Synchronize(c))
	require.Len(t, r.items, 1)
	assert.True(t, r.items[0].pending.Has(item.DirtyMesh))
	assert.True(t, r.items[0].texture.Valid())

	dev.FailAlloc = true
	it.SetTexture(common.SolidImage(4, 4, color.White))
	require.NoError(t, r.Synchronize(c))
	assert.True(t, r.items[0].pending.Has(item.DirtyTexture))
	assert.True(t, r.items[0].texture.Valid())
}

func TestDrawSubmitsEveryPassAndUnbinds(t *testing.T) {
	dev, r, _, _ := newSyncedBars(t)
	require.NoError(t, r.Draw())
	assert.Equal(t, 1, dev.Calls["BeginFrame"])
	assert.Equal(t, 1, dev.Calls["EndFrame"])

	var object, depth int
	for _, d := range dev.Draws {
		switch d.Program {
		case r.shaders.object.ID():
			object++
			assert.Equal(t, uint32(0), d.Target)
			assert.Contains(t, d.Textures, shadowUnit)
		case r.depthProgram.ID():
			depth++
			assert.Equal(t, r.depthTarget.ID(), d.Target)
		}
	}
	assert.Equal(t, 6, object)
	assert.Equal(t, 6, depth)
	assert.Empty(t, dev.EnabledAttributes())
	assert.Zero(t, dev.BoundTextures())
	assert.Zero(t, dev.BoundIndexBuffer())
}

func TestHighlightedBarsUseUniformColor(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	c.SetSelectedBar(1, 1)
	require.NoError(t, r.Synchronize(c))
	require.NoError(t, r.Draw())

	var highlighted int
	for _, d := range dev.Draws {
		if d.Program == r.shaders.background.ID() && d.Uniforms["u_color"] == r.theme.SingleHighlightColor.Vec4() {
			highlighted++
		}
	}
	if r.ShaderVariant().Gradient {
		assert.Equal(t, 1, highlighted)
	}
	var found bool
	for _, e := range r.seriesElements() {
		if e.highlight {
			found = true
			assert.Equal(t, controller.Position{Row: 1, Column: 1}, r.positions[e.index])
		}
	}
	assert.True(t, found)
}

func TestSelectionReadsTheIDPass(t *testing.T) {
	dev, r, _, _ := newSyncedBars(t)
	require.NoError(t, r.Draw())

	// Elements are row-major: row 1, column 1 is the fourth bar.
	dev.Pixel = idColor(encodeSelection(idSeries, 3))
	res, err := r.HandleSelection(400, 300)
	require.NoError(t, err)
	assert.Equal(t, controller.SelectionResult{Element: controller.ElementSeries, Row: 1, Column: 1, Index: -1}, res)

	dev.Pixel = idColor(encodeSelection(idAxisZ, 2))
	res, err = r.HandleSelection(400, 300)
	require.NoError(t, err)
	assert.Equal(t, controller.ElementAxisZLabel, res.Element)
	assert.Equal(t, 2, res.Index)

	dev.Pixel = color.RGBA{A: 255}
	res, err = r.HandleSelection(400, 300)
	require.NoError(t, err)
	assert.Equal(t, controller.ElementNone, res.Element)

	res, err = r.HandleSelection(-5, 300)
	require.NoError(t, err)
	assert.Equal(t, noHit, res)
	res, err = r.HandleSelection(800, 300)
	require.NoError(t, err)
	assert.Equal(t, noHit, res)
}

func TestRequestedSelectionIsPostedWithoutBlocking(t *testing.T) {
	dev, r, _, _ := newSyncedBars(t)
	results := make(chan controller.SelectionResult, 1)
	r.SetSelectionResults(results)

	dev.Pixel = idColor(encodeSelection(idSeries, 0))
	r.RequestSelection(100, 100)
	require.NoError(t, r.Draw())
	require.Len(t, results, 1)

	// The channel is full; the second result is dropped instead of blocking the frame.
	r.RequestSelection(100, 100)
	require.NoError(t, r.Draw())
	res := <-results
	assert.Equal(t, controller.SelectionResult{Element: controller.ElementSeries, Row: 0, Column: 0, Index: -1}, res)
	assert.Empty(t, results)
}

// noReadback hides the PixelReader of the wrapped device.
type noReadback struct {
	gpu.Device
}

func TestCPUPickingWithoutReadback(t *testing.T) {
	dev := gputest.NewRecorder()
	r := NewScatterRenderer(noReadback{dev}, testOptions()...)
	p := data.NewScatterDataProxy(
		data.ScatterItem{Position: mgl32.Vec3{-1, -1, -1}},
		data.ScatterItem{Position: mgl32.Vec3{0, 0, 0}},
		data.ScatterItem{Position: mgl32.Vec3{1, 1, 1}},
	)
	c := controller.NewScatterController(r, p)
	require.NoError(t, c.HandleResize(viewport))
	require.NoError(t, r.Synchronize(c))
	require.NoError(t, r.Synchronize(syncFunc(func() {
		for _, o := range axis.Orientations {
			r.UpdateAxisRange(o, -1, 1)
		}
	})))
	require.NoError(t, r.Draw())

	res, err := r.HandleSelection(400, 300)
	require.NoError(t, err)
	assert.Equal(t, controller.SelectionResult{Element: controller.ElementSeries, Row: -1, Column: -1, Index: 1}, res)
	assert.Zero(t, dev.Calls["ReadPixel"])
}

func TestSurfaceResolvesNearestVertex(t *testing.T) {
	dev := gputest.NewRecorder()
	r := NewSurfaceRenderer(dev, testOptions()...)
	p := data.NewSurfaceDataProxy(
		data.NewSurfaceRow([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, "a"),
		data.NewSurfaceRow([]mgl32.Vec3{{0, 1, 1}, {1, 2, 1}, {2, 1, 1}}, "b"),
	)
	c := controller.NewSurfaceController(r, p)
	require.NoError(t, c.HandleResize(viewport))
	require.NoError(t, r.Synchronize(c))
	assert.Equal(t, 2, r.RowCount())
	assert.Equal(t, 3, r.ColumnCount())

	s := r.(*surfaceRenderer)
	require.NotNil(t, s.surface)
	require.NotNil(t, s.wireframe)
	target := s.points[1][2]
	origin := target.Add(mgl32.Vec3{0, 0, 5})
	res := s.resolve(0, origin, mgl32.Vec3{0, 0, -1})
	assert.Equal(t, controller.SelectionResult{Element: controller.ElementSeries, Row: 1, Column: 2, Index: -1}, res)
	assert.Equal(t, noHit, s.resolve(1, origin, mgl32.Vec3{0, 0, -1}))

	// Unchanged data and ranges keep the meshes.
	buffers := dev.Calls["CreateBuffer"]
	require.NoError(t, r.Synchronize(noChanges))
	assert.Equal(t, buffers, dev.Calls["CreateBuffer"])
}

func TestStaticHintKeepsLabelPlacementsAcrossIdleSyncs(t *testing.T) {
	_, r, c, _ := newSyncedBars(t)
	require.NoError(t, c.SetOptimizationHints(controller.OptimizationStatic))
	require.NoError(t, r.Synchronize(c))
	require.NoError(t, r.Draw())
	cached := len(r.labelMatrices)
	require.NotZero(t, cached)

	require.NoError(t, r.Synchronize(c))
	require.NoError(t, r.Synchronize(noChanges))
	assert.Len(t, r.labelMatrices, cached)
	require.NoError(t, r.Draw())
	assert.Len(t, r.labelMatrices, cached)

	cam := c.Camera()
	c.SetCameraRotation(cam.XRotation+15, cam.YRotation)
	require.NoError(t, r.Synchronize(c))
	assert.Nil(t, r.labelMatrices)
	require.NoError(t, r.Draw())
	require.Len(t, r.labelMatrices, cached)

	c.Axis(axis.OrientationX).SetTitle("quarter")
	require.NoError(t, r.Synchronize(c))
	assert.Nil(t, r.labelMatrices)

	require.NoError(t, r.Draw())
	require.NoError(t, c.SetOptimizationHints(controller.OptimizationDefault))
	require.NoError(t, r.Synchronize(c))
	require.NoError(t, r.Draw())
	assert.Nil(t, r.labelMatrices)
}

func TestContextLossReinitializes(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	require.NoError(t, r.Draw())

	dev.Lose()
	assert.ErrorIs(t, r.Draw(), gpu.ErrContextLost)
	assert.ErrorIs(t, r.Draw(), gpu.ErrContextLost)

	require.NoError(t, r.Synchronize(c))
	assert.Equal(t, 1, dev.Calls["Restore"])
	assert.Len(t, r.Axis(axis.OrientationX).LabelItems(), 2)
	assert.False(t, r.Axis(axis.OrientationX).LabelItems()[0].Empty())
	assert.True(t, dev.IsLive(r.shaders.object.ID()))
	assert.True(t, r.gradient.Valid())

	draws := len(dev.Draws)
	require.NoError(t, r.Draw())
	assert.Greater(t, len(dev.Draws), draws)
}

func TestReleaseFreesEverything(t *testing.T) {
	dev, r, c, _ := newSyncedBars(t)
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))
	c.CustomItems().Add(item.NewCustomItem(item.WithMeshFile(path)))
	require.NoError(t, r.Synchronize(c))
	require.NoError(t, r.Draw())

	r.Release()
	for _, kind := range []gpu.ObjectKind{gpu.ObjectBuffer, gpu.ObjectTexture, gpu.ObjectProgram, gpu.ObjectTarget} {
		assert.Zero(t, dev.Live(kind), "kind %d", kind)
	}
}

// closeCounter counts Close calls on a wrapped drawer.
type closeCounter struct {
	drawer.Drawer
	closed int
}

func (c *closeCounter) Close() {
	c.closed++
	c.Drawer.Close()
}

func TestReleaseClosesOwnedDrawerOnly(t *testing.T) {
	dev := gputest.NewRecorder()
	owned := NewBarsRenderer(dev, WithWorkers(4), WithLogger(slog.New(slog.DiscardHandler))).(*barsRenderer)
	spy := &closeCounter{Drawer: owned.drawer}
	owned.drawer = spy
	owned.Release()
	assert.Equal(t, 1, spy.closed)

	shared := &closeCounter{Drawer: drawer.NewDrawer(dev, drawer.WithWorkers(2))}
	t.Cleanup(shared.Drawer.Close)
	r := NewBarsRenderer(dev, append(testOptions(), WithDrawer(shared))...)
	r.Release()
	assert.Zero(t, shared.closed)
}

func TestFpsIsMeasuredOnlyWhenEnabled(t *testing.T) {
	_, r, c, _ := newSyncedBars(t)
	require.NoError(t, r.Draw())
	fps, ok := r.Fps()
	assert.False(t, ok)
	assert.Equal(t, -1.0, fps)

	c.SetMeasureFps(true)
	require.NoError(t, r.Synchronize(c))
	assert.True(t, r.measureFps)
}

func TestSelectionIDRoundTrip(t *testing.T) {
	for _, kind := range []uint32{idSeries, idAxisX, idAxisY, idAxisZ, idCustomItem} {
		for _, index := range []int{0, 1, 4095, idIndexMask} {
			id := encodeSelection(kind, index)
			assert.NotZero(t, id)
			assert.Less(t, id, uint32(1<<24))
			k, i := decodeSelection(gpu.DecodeID(idColor(id)))
			assert.Equal(t, kind, k)
			assert.Equal(t, index, i)
		}
	}
}
