package controller

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBars() data.BarDataProxy {
	return data.NewBarDataProxy(
		data.NewBarRow([]float32{1, 2}, "r0", "c0", "c1"),
		data.NewBarRow([]float32{3, 4}, "r1", "c0", "c1"),
		data.NewBarRow([]float32{5, 6}, "r2", "c0", "c1"),
	)
}

func newSyncedBars(t *testing.T, options ...ControllerBuilderOption) (BarsController, *fakeBarsRenderer, data.BarDataProxy) {
	t.Helper()
	r := newFakeBarsRenderer()
	p := sampleBars()
	c := NewBarsController(r, p, options...)
	c.SynchDataToRenderer()
	require.Empty(t, c.Pending())
	return c, r, p
}

func recordEvents(c Controller) *[]Event {
	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })
	return &events
}

func TestBarsFirstSyncPushesEverything(t *testing.T) {
	_, r, _ := newSyncedBars(t)

	assert.Equal(t, 3, r.rows)
	assert.Equal(t, 2, r.columns)
	assert.Len(t, r.data, 3)
	assert.Equal(t, DefaultBarSpecs, r.specs)
	assert.Equal(t, NoSelection, r.selected)
	assert.Equal(t, ShadowQualityMedium, r.shadowQuality)
	assert.Equal(t, theme.New(theme.PresetQt), r.theme)
	assert.Equal(t, camera.PresetFront, r.camera.Preset)
	assert.Equal(t, [3]axis.Type{axis.TypeCategory, axis.TypeValue, axis.TypeCategory}, r.axisTypes)
	assert.Equal(t, []string{"r0", "r1", "r2"}, r.axisLabels[axis.OrientationZ])
	assert.Equal(t, []string{"c0", "c1"}, r.axisLabels[axis.OrientationX])
	assert.Equal(t, [2]float32{0, 6}, r.axisRanges[axis.OrientationY])
}

func TestBarsCountsMatchProxyAtSyncTime(t *testing.T) {
	c, r, p := newSyncedBars(t)

	require.NoError(t, p.AddRows(data.NewBarRow([]float32{7, 8}, "r3")))
	assert.Equal(t, 3, r.rows)
	assert.Equal(t, 4, c.RowCount())

	c.SynchDataToRenderer()
	assert.Equal(t, 4, r.rows)
	assert.Equal(t, 2, r.columns)
	assert.Len(t, r.data, 4)
	assert.Equal(t, "r3", r.data[3].Label())
	assert.Equal(t, [2]float32{0, 8}, r.axisRanges[axis.OrientationY])
}

func TestBarsIdempotentSettersMarkNothing(t *testing.T) {
	c, r, _ := newSyncedBars(t)
	events := recordEvents(c)
	before := r.calls["BarSpecs"]

	require.NoError(t, c.SetBarSpecs(DefaultBarSpecs))
	require.NoError(t, c.SetShadowQuality(ShadowQualityMedium))
	require.NoError(t, c.SetSelectionMode(SelectionItem))
	require.NoError(t, c.SetAspectRatio(DefaultAspectRatio))
	c.SetTheme(c.Theme())
	c.SetOrthoProjection(false)
	c.SetSelectedBar(-1, -1)

	assert.Empty(t, *events)
	assert.Empty(t, c.Pending())
	c.SynchDataToRenderer()
	assert.Equal(t, before, r.calls["BarSpecs"])
}

func TestBarsSettersCoalesceUntilSync(t *testing.T) {
	c, r, _ := newSyncedBars(t)
	before := r.calls["ShadowQuality"]

	require.NoError(t, c.SetShadowQuality(ShadowQualityLow))
	require.NoError(t, c.SetShadowQuality(ShadowQualityHigh))
	require.NoError(t, c.SetShadowQuality(ShadowQualitySoftHigh))
	assert.Equal(t, []Aspect{AspectShadowQuality}, c.Pending())

	c.SynchDataToRenderer()
	assert.Equal(t, before+1, r.calls["ShadowQuality"])
	assert.Equal(t, ShadowQualitySoftHigh, r.shadowQuality)

	c.SynchDataToRenderer()
	assert.Equal(t, before+1, r.calls["ShadowQuality"])
}

func TestMultiSeriesSelectionIsRejected(t *testing.T) {
	c, _, _ := newSyncedBars(t)
	require.NoError(t, c.SetSelectionMode(SelectionItemAndRow))

	for _, mode := range []SelectionFlag{
		SelectionMultiSeries,
		SelectionItem | SelectionMultiSeries,
		SelectionSlice | SelectionRow | SelectionMultiSeries,
	} {
		assert.ErrorIs(t, c.SetSelectionMode(mode), ErrInvalidSelectionMode, mode)
	}
	assert.Equal(t, SelectionItemAndRow, c.SelectionMode())
}

func TestBarsRejectedSetterLeavesStateUnchanged(t *testing.T) {
	c, _, _ := newSyncedBars(t)
	events := recordEvents(c)

	err := c.SetBarSpecs(BarSpecs{ThicknessRatio: 0, Spacing: mgl32.Vec2{1, 1}})
	assert.ErrorIs(t, err, ErrInvalidBarSpecs)
	assert.ErrorIs(t, c.SetBarStyle(BarStyle{Mesh: MeshPoint}), ErrInvalidStyle)
	assert.ErrorIs(t, c.SetDataWindow(DataWindow{Rows: -1}), ErrInvalidDataWindow)
	assert.ErrorIs(t, c.SetSelectionMode(SelectionSlice), ErrInvalidSelectionMode)
	assert.ErrorIs(t, c.SetFont(theme.Font{Face: theme.FaceBold, Size: 0}), ErrInvalidFont)
	assert.ErrorIs(t, c.SetZoomLevel(5), ErrInvalidZoom)
	assert.ErrorIs(t, c.HandleResize(common.Rect{Width: -1, Height: 10}), ErrInvalidRect)

	assert.Equal(t, DefaultBarSpecs, c.BarSpecs())
	assert.Equal(t, SelectionItem, c.SelectionMode())
	assert.Empty(t, c.Pending())
	require.Len(t, *events, 7)
	assert.Equal(t, Event{Kind: EventRejected, Aspect: AspectBarSpecs, Err: err}, (*events)[0])
}

func TestBarsOutOfRangeSelectionIsNoSelection(t *testing.T) {
	c, r, _ := newSyncedBars(t)

	c.SetSelectedBar(1, 1)
	assert.Equal(t, Position{Row: 1, Column: 1}, c.SelectedBar())
	assert.Equal(t, ElementSeries, c.SelectedElement())

	c.SetSelectedBar(3, 0)
	assert.Equal(t, NoSelection, c.SelectedBar())
	assert.Equal(t, ElementNone, c.SelectedElement())

	c.SetSelectedBar(0, -4)
	assert.Equal(t, NoSelection, c.SelectedBar())

	c.SynchDataToRenderer()
	assert.Equal(t, NoSelection, r.selected)
}

func TestBarsSelectionFollowsRows(t *testing.T) {
	c, _, p := newSyncedBars(t)
	c.SetSelectedBar(1, 0)

	require.NoError(t, p.InsertRows(0, data.NewBarRow([]float32{9, 9}, "new")))
	assert.Equal(t, Position{Row: 2, Column: 0}, c.SelectedBar())

	require.NoError(t, p.RemoveRows(0, 1))
	assert.Equal(t, Position{Row: 1, Column: 0}, c.SelectedBar())

	require.NoError(t, p.RemoveRows(1, 1))
	assert.Equal(t, NoSelection, c.SelectedBar())
}

func TestBarsSlicing(t *testing.T) {
	c, r, _ := newSyncedBars(t)

	require.NoError(t, c.SetSelectionMode(SelectionItemAndRow|SelectionSlice))
	assert.False(t, c.SlicingActive())
	c.SetSelectedBar(0, 1)
	assert.True(t, c.SlicingActive())

	c.SynchDataToRenderer()
	assert.True(t, r.slicing)

	require.NoError(t, c.SetSelectionMode(SelectionNone))
	assert.False(t, c.SlicingActive())
	assert.Equal(t, NoSelection, c.SelectedBar())
}

func TestBarsDataWindow(t *testing.T) {
	c, r, _ := newSyncedBars(t)
	c.SetSelectedBar(2, 1)

	require.NoError(t, c.SetDataWindow(DataWindow{Rows: 2, Columns: 1}))
	assert.Equal(t, NoSelection, c.SelectedBar())

	c.SynchDataToRenderer()
	assert.Equal(t, 2, r.rows)
	assert.Equal(t, 1, r.columns)
	require.Len(t, r.data, 2)
	assert.Equal(t, []float32{3}, r.data[1].Values())
	assert.Equal(t, []string{"c0"}, r.data[1].ColumnLabels())
	assert.Equal(t, []string{"c0"}, r.axisLabels[axis.OrientationX])

	var visited []float32
	c.(*barsController).grid.each(func(v float32) { visited = append(visited, v) })
	assert.Equal(t, []float32{1, 3}, visited)
}

func TestBarsHitTestResultChannel(t *testing.T) {
	c, r, _ := newSyncedBars(t)

	c.HandleSelection(10, 20)
	assert.Empty(t, r.requests)
	c.SynchDataToRenderer()
	assert.Equal(t, [][2]int{{10, 20}}, r.requests)

	r.results <- SelectionResult{Element: ElementSeries, Row: 2, Column: 1}
	c.SynchDataToRenderer()
	assert.Equal(t, Position{Row: 2, Column: 1}, c.SelectedBar())
	assert.Equal(t, Position{Row: 2, Column: 1}, r.selected)

	r.results <- SelectionResult{Element: ElementAxisZLabel, Index: 1}
	c.SynchDataToRenderer()
	assert.Equal(t, NoSelection, c.SelectedBar())
	assert.Equal(t, ElementAxisZLabel, c.SelectedElement())
	assert.Equal(t, 1, c.SelectedLabelIndex())
	assert.Equal(t, ElementAxisZLabel, r.element)

	r.results <- SelectionResult{Element: ElementNone}
	c.SynchDataToRenderer()
	assert.Equal(t, ElementNone, c.SelectedElement())
	assert.Equal(t, -1, c.SelectedLabelIndex())
}

func TestBarsCustomItemDirtyBitsDrainOnSync(t *testing.T) {
	c, r, _ := newSyncedBars(t)
	it := item.NewCustomItem()

	assert.Equal(t, 0, c.CustomItems().Add(it))
	c.SynchDataToRenderer()
	assert.Equal(t, []item.CustomItem{it}, r.customItems)
	require.Len(t, r.itemUpdates, 1)
	assert.Equal(t, item.DirtyAll, r.itemUpdates[0].dirty)

	it.SetPosition(mgl32.Vec3{1, 0, 0})
	c.SynchDataToRenderer()
	require.Len(t, r.itemUpdates, 2)
	assert.Equal(t, customItemUpdate{0, it, item.DirtyPosition}, r.itemUpdates[1])

	c.SynchDataToRenderer()
	assert.Len(t, r.itemUpdates, 2)

	r.results <- SelectionResult{Element: ElementCustomItem, Index: 0}
	c.SynchDataToRenderer()
	assert.Equal(t, it, c.SelectedCustomItem())

	assert.True(t, c.CustomItems().Remove(it))
	assert.Equal(t, -1, c.SelectedCustomItemIndex())
	c.SynchDataToRenderer()
	assert.Empty(t, r.customItems)
}

func TestBarsAxisBinding(t *testing.T) {
	c, r, _ := newSyncedBars(t)
	old := c.Axis(axis.OrientationY)

	assert.ErrorIs(t, c.SetAxis(axis.OrientationY, axis.NewCategoryAxis()), ErrAxisType)
	assert.ErrorIs(t, c.SetAxis(axis.OrientationY, nil), ErrNilAxis)

	next := axis.NewValueAxis(axis.WithTitle("Sales"))
	require.NoError(t, c.SetAxis(axis.OrientationY, next))
	c.SynchDataToRenderer()
	assert.Equal(t, "Sales", r.axisTitles[axis.OrientationY])
	assert.Equal(t, [2]float32{0, 6}, r.axisRanges[axis.OrientationY])

	old.SetTitle("ignored")
	assert.Empty(t, c.Pending())

	next.SetTitle("Revenue")
	assert.Equal(t, []Aspect{AxisAspect(axis.OrientationY, axis.AspectTitle)}, c.Pending())

	require.NoError(t, c.Axis(axis.OrientationZ).SetLabels([]string{"a", "b", "c"}))
	c.SynchDataToRenderer()
	assert.Equal(t, "Revenue", r.axisTitles[axis.OrientationY])
	assert.Equal(t, []string{"a", "b", "c"}, r.axisLabels[axis.OrientationZ])
}

func TestConstrainedProfileRejectsShadows(t *testing.T) {
	c, r, _ := newSyncedBars(t, WithProfile(ProfileConstrained), WithShadowQuality(ShadowQualityHigh))

	assert.False(t, c.ShadowsSupported())
	assert.Equal(t, ShadowQualityNone, c.ShadowQuality())
	assert.Equal(t, ShadowQualityNone, r.shadowQuality)
	assert.ErrorIs(t, c.SetShadowQuality(ShadowQualityLow), ErrShadowsUnsupported)
	assert.NoError(t, c.SetShadowQuality(ShadowQualityNone))
}

func TestCameraPresetAndRotation(t *testing.T) {
	c, r, _ := newSyncedBars(t)

	require.NoError(t, c.SetCameraPreset(camera.PresetIsometricLeftHigh))
	assert.Equal(t, CameraState{Preset: camera.PresetIsometricLeftHigh, XRotation: 45, YRotation: 45, ZoomLevel: 100}, c.Camera())
	assert.ErrorIs(t, c.SetCameraPreset(camera.PresetNone), ErrInvalidCameraPreset)

	c.SetCameraRotation(190, 120)
	assert.Equal(t, CameraState{Preset: camera.PresetNone, XRotation: -170, YRotation: 90, ZoomLevel: 100}, c.Camera())
	require.NoError(t, c.SetZoomLevel(250))

	c.SynchDataToRenderer()
	assert.Equal(t, c.Camera(), r.camera)
}

func TestMeasureFps(t *testing.T) {
	c, _, _ := newSyncedBars(t)

	c.ReportFps(60)
	assert.Equal(t, -1.0, c.CurrentFps())
	c.SetMeasureFps(true)
	c.ReportFps(60)
	assert.Equal(t, 60.0, c.CurrentFps())
	c.SetMeasureFps(false)
	assert.Equal(t, -1.0, c.CurrentFps())
}

func TestCloseStopsNotifications(t *testing.T) {
	c, _, p := newSyncedBars(t)
	c.Close()

	require.NoError(t, p.AddRows(data.NewBarRow([]float32{1, 1}, "x")))
	c.Axis(axis.OrientationX).SetTitle("x")
	c.CustomItems().Add(item.NewCustomItem())
	assert.Empty(t, c.Pending())
}
