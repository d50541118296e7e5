package controller

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceController is the controller of a surface chart. All three axes are value axes and
// follow the extent of the vertices when automatic adjustment is on.
type SurfaceController interface {
	Controller

	// DataProxy returns the active proxy.
	DataProxy() data.SurfaceDataProxy

	// SetDataProxy replaces the active proxy. A nil proxy is replaced by an empty one.
	SetDataProxy(proxy data.SurfaceDataProxy)

	// RowCount returns the number of visible rows.
	RowCount() int

	// ColumnCount returns the number of visible columns.
	ColumnCount() int

	// SurfaceStyle returns how the surface is drawn.
	SurfaceStyle() SurfaceStyle

	// SetSurfaceStyle sets how the surface is drawn.
	//
	// Returns:
	//   - error: ErrInvalidStyle for an empty or unknown draw mode
	SetSurfaceStyle(style SurfaceStyle) error

	// DataWindow returns the data window.
	DataWindow() DataWindow

	// SetDataWindow limits the visible rows and columns.
	SetDataWindow(window DataWindow) error

	// SelectedPoint returns the selected vertex, or NoSelection.
	SelectedPoint() Position

	// SetSelectedPoint selects a vertex. A position outside the visible grid clears the selection.
	SetSelectedPoint(row, column int)
}

type surfaceController struct {
	*base
	surface SurfaceRenderer
	grid    *grid[mgl32.Vec3]
	style   SurfaceStyle
}

var _ SurfaceController = &surfaceController{}

// NewSurfaceController creates a surface chart controller pushing to r.
//
// Parameters:
//   - r: the surface renderer
//   - proxy: the initial data; nil starts with an empty proxy
//   - options: a variadic list of ControllerBuilderOption functions
//
// Returns:
//   - SurfaceController: the new controller
func NewSurfaceController(r SurfaceRenderer, proxy data.SurfaceDataProxy, options ...ControllerBuilderOption) SurfaceController {
	c := &surfaceController{
		surface: r,
		style:   SurfaceStyle{DrawMode: SurfaceDrawSurfaceAndWireframe},
	}
	c.base = newBase(r,
		[3]axis.Type{axis.TypeValue, axis.TypeValue, axis.TypeValue},
		SelectionItemRowAndColumn,
		options,
	)
	c.base.series = c
	c.grid = newGrid[mgl32.Vec3](c.base, AspectSelectedPoint)
	c.grid.refreshed = c.dataRefreshed
	c.tracker.Set(AspectSampleSpace, AspectSurfaceStyle, AspectSelectedPoint)
	c.SetDataProxy(proxy)
	return c
}

func (c *surfaceController) DataProxy() data.SurfaceDataProxy { return c.grid.proxy }

func (c *surfaceController) SetDataProxy(proxy data.SurfaceDataProxy) {
	if proxy == nil {
		proxy = data.NewSurfaceDataProxy()
	}
	if proxy == c.grid.proxy {
		return
	}
	c.grid.bind(proxy)
}

func (c *surfaceController) RowCount() int { return c.grid.rows }

func (c *surfaceController) ColumnCount() int { return c.grid.columns }

func (c *surfaceController) dataRefreshed() {
	lo := mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi := mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	c.grid.each(func(v mgl32.Vec3) {
		for i := range 3 {
			lo[i] = math32.Min(lo[i], v[i])
			hi[i] = math32.Max(hi[i], v[i])
		}
	})
	for _, o := range axis.Orientations {
		if lo[o] <= hi[o] {
			c.axes[o].AdjustToData(lo[o], hi[o])
		}
	}
}

func (c *surfaceController) SurfaceStyle() SurfaceStyle { return c.style }

func (c *surfaceController) SetSurfaceStyle(style SurfaceStyle) error {
	if style.DrawMode < SurfaceDrawWireframe || style.DrawMode > SurfaceDrawSurfaceAndWireframe {
		return c.reject(AspectSurfaceStyle, fmt.Errorf("%w: draw mode %d", ErrInvalidStyle, int(style.DrawMode)))
	}
	if style == c.style {
		return nil
	}
	c.style = style
	c.changed(AspectSurfaceStyle)
	return nil
}

func (c *surfaceController) DataWindow() DataWindow { return c.grid.window }

func (c *surfaceController) SetDataWindow(window DataWindow) error {
	if window.Rows < 0 || window.Columns < 0 {
		return c.reject(AspectDataWindow, fmt.Errorf("%w: %+v", ErrInvalidDataWindow, window))
	}
	if window == c.grid.window {
		return nil
	}
	c.grid.setWindow(window)
	return nil
}

func (c *surfaceController) SelectedPoint() Position { return c.grid.selected }

func (c *surfaceController) SetSelectedPoint(row, column int) {
	c.grid.selectPosition(row, column)
}

func (c *surfaceController) selectSeries(res SelectionResult) {
	c.grid.selectPosition(res.Row, res.Column)
}

func (c *surfaceController) clearSeries() {
	c.grid.setSelected(NoSelection)
}

func (c *surfaceController) selectionModeChanged(mode SelectionFlag) {
	if mode == SelectionNone {
		c.grid.selectPosition(-1, -1)
	}
}

func (c *surfaceController) syncSeries() {
	r := c.surface
	if c.tracker.Consume(AspectSampleSpace) {
		r.UpdateSampleSpace(c.grid.rows, c.grid.columns)
	}
	windowChanged := c.tracker.Consume(AspectDataWindow)
	if c.tracker.Consume(AspectData) || windowChanged {
		r.UpdateData(c.grid.visibleRows())
	}
	if c.tracker.Consume(AspectSurfaceStyle) {
		r.UpdateSurfaceStyle(c.style)
	}
	if c.tracker.Consume(AspectSelectedPoint) {
		r.UpdateSelectedPoint(c.grid.selected)
	}
}

func (c *surfaceController) close() {
	c.grid.close()
}
