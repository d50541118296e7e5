package controller

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

// Renderer is the render-side mirror of the state shared by every chart type. The controller
// calls its Update methods only from SynchDataToRenderer, each with the current value of a
// changed aspect.
type Renderer interface {
	// UpdateBoundingRect sets the viewport in window pixels.
	UpdateBoundingRect(rect common.Rect)

	// UpdateTheme replaces the theme, including its font and label transparency.
	UpdateTheme(th theme.Theme)

	// UpdateShadowQuality sets the requested shadow quality.
	UpdateShadowQuality(quality ShadowQuality)

	// UpdateSelectionMode sets the selection mode used for highlighting.
	UpdateSelectionMode(mode SelectionFlag)

	// UpdateAxisType sets the axis type at orientation o.
	UpdateAxisType(o axis.Orientation, t axis.Type)

	// UpdateAxisTitle sets the axis title at orientation o.
	UpdateAxisTitle(o axis.Orientation, title string)

	// UpdateAxisLabels sets the axis labels at orientation o.
	UpdateAxisLabels(o axis.Orientation, labels []string)

	// UpdateAxisRange sets the axis range at orientation o.
	UpdateAxisRange(o axis.Orientation, min, max float32)

	// UpdateAxisSegmentCount sets the segment count at orientation o.
	UpdateAxisSegmentCount(o axis.Orientation, count int)

	// UpdateAxisSubSegmentCount sets the subsegment count at orientation o.
	UpdateAxisSubSegmentCount(o axis.Orientation, count int)

	// UpdateCamera sets the camera placement.
	UpdateCamera(state CameraState)

	// UpdateOrthoProjection toggles orthographic projection.
	UpdateOrthoProjection(enabled bool)

	// UpdateAspectRatio sets the horizontal-to-vertical graph ratio.
	UpdateAspectRatio(ratio float32)

	// UpdateOptimizationHints sets how often the data is expected to change.
	UpdateOptimizationHints(hints OptimizationHints)

	// UpdateMeasureFps toggles frame rate measurement.
	UpdateMeasureFps(enabled bool)

	// UpdateCustomItems replaces the list of custom items. Items not in the list any more must
	// have their GPU resources released.
	UpdateCustomItems(items []item.CustomItem)

	// UpdateCustomItem applies the changed properties of one custom item.
	//
	// Parameters:
	//   - index: the item's position in the list
	//   - it: the item
	//   - dirty: the properties that changed since the last update of this item
	UpdateCustomItem(index int, it item.CustomItem, dirty item.DirtyBits)

	// UpdateSelectedElement sets the highlighted non-series element.
	//
	// Parameters:
	//   - element: the element kind
	//   - index: the label or custom item index, -1 when element is ElementNone or ElementSeries
	UpdateSelectedElement(element ElementType, index int)

	// RequestSelection asks for a hit test at a window position during the next draw. The
	// result is delivered on the channel passed to SetSelectionResults.
	RequestSelection(x, y int)

	// SetSelectionResults sets the channel hit test results are posted to. Posting never blocks.
	SetSelectionResults(results chan<- SelectionResult)
}

// BarsRenderer is the render side of a bar chart.
type BarsRenderer interface {
	Renderer

	// UpdateSampleSpace sets the visible row and column counts.
	UpdateSampleSpace(rows, columns int)

	// UpdateData replaces the visible rows.
	UpdateData(rows []data.BarRow)

	// UpdateBarSpecs sets the bar sizing.
	UpdateBarSpecs(specs BarSpecs)

	// UpdateBarStyle sets the bar mesh.
	UpdateBarStyle(style BarStyle)

	// UpdateSelectedBar sets the selected bar, or NoSelection.
	UpdateSelectedBar(pos Position)

	// UpdateSlicingActive toggles the 2D slice view.
	UpdateSlicingActive(active bool)
}

// ScatterRenderer is the render side of a scatter chart.
type ScatterRenderer interface {
	Renderer

	// UpdateData replaces the points.
	UpdateData(items []data.ScatterItem)

	// UpdatePointStyle sets the point mesh and size.
	UpdatePointStyle(style PointStyle)

	// UpdateSelectedItem sets the selected point index, or -1.
	UpdateSelectedItem(index int)
}

// SurfaceRenderer is the render side of a surface chart.
type SurfaceRenderer interface {
	Renderer

	// UpdateSampleSpace sets the visible row and column counts.
	UpdateSampleSpace(rows, columns int)

	// UpdateData replaces the visible rows.
	UpdateData(rows []data.SurfaceRow)

	// UpdateSurfaceStyle sets how the surface is drawn.
	UpdateSurfaceStyle(style SurfaceStyle)

	// UpdateSelectedPoint sets the selected vertex, or NoSelection.
	UpdateSelectedPoint(pos Position)
}
