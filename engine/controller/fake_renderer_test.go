package controller

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

type customItemUpdate struct {
	index int
	item  item.CustomItem
	dirty item.DirtyBits
}

// fakeRenderer records every update it receives.
type fakeRenderer struct {
	calls   map[string]int
	results chan<- SelectionResult

	rect          common.Rect
	theme         theme.Theme
	shadowQuality ShadowQuality
	selectionMode SelectionFlag
	axisTypes     [3]axis.Type
	axisTitles    [3]string
	axisLabels    [3][]string
	axisRanges    [3][2]float32
	axisSegments  [3]int
	camera        CameraState
	customItems   []item.CustomItem
	itemUpdates   []customItemUpdate
	element       ElementType
	elementIndex  int
	requests      [][2]int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{calls: map[string]int{}}
}

func (f *fakeRenderer) count(name string) { f.calls[name]++ }

func (f *fakeRenderer) UpdateBoundingRect(rect common.Rect) {
	f.count("BoundingRect")
	f.rect = rect
}

func (f *fakeRenderer) UpdateTheme(th theme.Theme) {
	f.count("Theme")
	f.theme = th
}

func (f *fakeRenderer) UpdateShadowQuality(q ShadowQuality) {
	f.count("ShadowQuality")
	f.shadowQuality = q
}

func (f *fakeRenderer) UpdateSelectionMode(mode SelectionFlag) {
	f.count("SelectionMode")
	f.selectionMode = mode
}

func (f *fakeRenderer) UpdateAxisType(o axis.Orientation, t axis.Type) {
	f.count("AxisType")
	f.axisTypes[o] = t
}

func (f *fakeRenderer) UpdateAxisTitle(o axis.Orientation, title string) {
	f.count("AxisTitle")
	f.axisTitles[o] = title
}

func (f *fakeRenderer) UpdateAxisLabels(o axis.Orientation, labels []string) {
	f.count("AxisLabels")
	f.axisLabels[o] = labels
}

func (f *fakeRenderer) UpdateAxisRange(o axis.Orientation, min, max float32) {
	f.count("AxisRange")
	f.axisRanges[o] = [2]float32{min, max}
}

func (f *fakeRenderer) UpdateAxisSegmentCount(o axis.Orientation, count int) {
	f.count("AxisSegmentCount")
	f.axisSegments[o] = count
}

func (f *fakeRenderer) UpdateAxisSubSegmentCount(axis.Orientation, int) {
	f.count("AxisSubSegmentCount")
}

func (f *fakeRenderer) UpdateCamera(state CameraState) {
	f.count("Camera")
	f.camera = state
}

func (f *fakeRenderer) UpdateOrthoProjection(bool) { f.count("OrthoProjection") }

func (f *fakeRenderer) UpdateAspectRatio(float32) { f.count("AspectRatio") }

func (f *fakeRenderer) UpdateOptimizationHints(OptimizationHints) { f.count("OptimizationHints") }

func (f *fakeRenderer) UpdateMeasureFps(bool) { f.count("MeasureFps") }

func (f *fakeRenderer) UpdateCustomItems(items []item.CustomItem) {
	f.count("CustomItems")
	f.customItems = items
}

func (f *fakeRenderer) UpdateCustomItem(index int, it item.CustomItem, dirty item.DirtyBits) {
	f.count("CustomItem")
	f.itemUpdates = append(f.itemUpdates, customItemUpdate{index, it, dirty})
}

func (f *fakeRenderer) UpdateSelectedElement(element ElementType, index int) {
	f.count("SelectedElement")
	f.element, f.elementIndex = element, index
}

func (f *fakeRenderer) RequestSelection(x, y int) {
	f.requests = append(f.requests, [2]int{x, y})
}

func (f *fakeRenderer) SetSelectionResults(results chan<- SelectionResult) {
	f.results = results
}

type fakeBarsRenderer struct {
	*fakeRenderer
	rows, columns int
	data          []data.BarRow
	specs         BarSpecs
	style         BarStyle
	selected      Position
	slicing       bool
}

func newFakeBarsRenderer() *fakeBarsRenderer {
	return &fakeBarsRenderer{fakeRenderer: newFakeRenderer()}
}

func (f *fakeBarsRenderer) UpdateSampleSpace(rows, columns int) {
	f.count("SampleSpace")
	f.rows, f.columns = rows, columns
}

func (f *fakeBarsRenderer) UpdateData(rows []data.BarRow) {
	f.count("Data")
	f.data = rows
}

func (f *fakeBarsRenderer) UpdateBarSpecs(specs BarSpecs) {
	f.count("BarSpecs")
	f.specs = specs
}

func (f *fakeBarsRenderer) UpdateBarStyle(style BarStyle) {
	f.count("BarStyle")
	f.style = style
}

func (f *fakeBarsRenderer) UpdateSelectedBar(pos Position) {
	f.count("SelectedBar")
	f.selected = pos
}

func (f *fakeBarsRenderer) UpdateSlicingActive(active bool) {
	f.count("SlicingActive")
	f.slicing = active
}

type fakeScatterRenderer struct {
	*fakeRenderer
	items    []data.ScatterItem
	style    PointStyle
	selected int
}

func newFakeScatterRenderer() *fakeScatterRenderer {
	return &fakeScatterRenderer{fakeRenderer: newFakeRenderer()}
}

func (f *fakeScatterRenderer) UpdateData(items []data.ScatterItem) {
	f.count("Data")
	f.items = items
}

func (f *fakeScatterRenderer) UpdatePointStyle(style PointStyle) {
	f.count("PointStyle")
	f.style = style
}

func (f *fakeScatterRenderer) UpdateSelectedItem(index int) {
	f.count("SelectedItem")
	f.selected = index
}

type fakeSurfaceRenderer struct {
	*fakeRenderer
	rows, columns int
	data          []data.SurfaceRow
	style         SurfaceStyle
	selected      Position
}

func newFakeSurfaceRenderer() *fakeSurfaceRenderer {
	return &fakeSurfaceRenderer{fakeRenderer: newFakeRenderer()}
}

func (f *fakeSurfaceRenderer) UpdateSampleSpace(rows, columns int) {
	f.count("SampleSpace")
	f.rows, f.columns = rows, columns
}

func (f *fakeSurfaceRenderer) UpdateData(rows []data.SurfaceRow) {
	f.count("Data")
	f.data = rows
}

func (f *fakeSurfaceRenderer) UpdateSurfaceStyle(style SurfaceStyle) {
	f.count("SurfaceStyle")
	f.style = style
}

func (f *fakeSurfaceRenderer) UpdateSelectedPoint(pos Position) {
	f.count("SelectedPoint")
	f.selected = pos
}
