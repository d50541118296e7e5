package controller

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/chewxy/math32"
)

// BarsController is the controller of a bar chart. Rows run along the Z axis and columns along
// the X axis, both category axes; values are on the Y value axis. Category axes without labels
// of their own show the proxy's row and column labels.
type BarsController interface {
	Controller

	// DataProxy returns the active proxy.
	DataProxy() data.BarDataProxy

	// SetDataProxy replaces the active proxy. A nil proxy is replaced by an empty one.
	SetDataProxy(proxy data.BarDataProxy)

	// RowCount returns the number of visible rows.
	RowCount() int

	// ColumnCount returns the number of visible columns.
	ColumnCount() int

	// BarSpecs returns the bar sizing.
	BarSpecs() BarSpecs

	// SetBarSpecs sets the bar sizing.
	//
	// Returns:
	//   - error: ErrInvalidBarSpecs for a non-positive thickness ratio or negative spacing
	SetBarSpecs(specs BarSpecs) error

	// BarStyle returns the bar mesh.
	BarStyle() BarStyle

	// SetBarStyle sets the bar mesh.
	//
	// Returns:
	//   - error: ErrInvalidStyle for MeshPoint or an unknown mesh
	SetBarStyle(style BarStyle) error

	// DataWindow returns the data window.
	DataWindow() DataWindow

	// SetDataWindow limits the visible rows and columns.
	//
	// Returns:
	//   - error: ErrInvalidDataWindow for negative limits
	SetDataWindow(window DataWindow) error

	// SelectedBar returns the selected bar, or NoSelection.
	SelectedBar() Position

	// SetSelectedBar selects a bar. A position outside the visible grid clears the selection.
	SetSelectedBar(row, column int)

	// SlicingActive reports whether the 2D slice view is shown.
	SlicingActive() bool
}

type barsController struct {
	*base
	bars    BarsRenderer
	grid    *grid[float32]
	specs   BarSpecs
	style   BarStyle
	slicing bool
}

var _ BarsController = &barsController{}

// NewBarsController creates a bar chart controller pushing to r.
//
// Parameters:
//   - r: the bar renderer
//   - proxy: the initial data; nil starts with an empty proxy
//   - options: a variadic list of ControllerBuilderOption functions
//
// Returns:
//   - BarsController: the new controller
func NewBarsController(r BarsRenderer, proxy data.BarDataProxy, options ...ControllerBuilderOption) BarsController {
	c := &barsController{
		bars:  r,
		specs: DefaultBarSpecs,
		style: BarStyle{Mesh: MeshBar},
	}
	c.base = newBase(r,
		[3]axis.Type{axis.TypeCategory, axis.TypeValue, axis.TypeCategory},
		SelectionItemRowAndColumn|SelectionSlice,
		options,
	)
	c.base.series = c
	c.grid = newGrid[float32](c.base, AspectSelectedBar)
	c.grid.refreshed = c.dataRefreshed
	c.grid.selectionChanged = c.updateSlicing
	c.tracker.Set(AspectSampleSpace, AspectBarSpecs, AspectBarStyle, AspectSelectedBar, AspectSlicingActive)
	c.SetDataProxy(proxy)
	return c
}

func (c *barsController) DataProxy() data.BarDataProxy { return c.grid.proxy }

func (c *barsController) SetDataProxy(proxy data.BarDataProxy) {
	if proxy == nil {
		proxy = data.NewBarDataProxy()
	}
	if proxy == c.grid.proxy {
		return
	}
	c.grid.bind(proxy)
}

func (c *barsController) RowCount() int { return c.grid.rows }

func (c *barsController) ColumnCount() int { return c.grid.columns }

// dataRefreshed feeds the category labels and the value range from the visible data.
func (c *barsController) dataRefreshed() {
	c.setDataLabels(axis.OrientationZ, head(c.grid.proxy.RowLabels(), c.grid.rows))
	c.setDataLabels(axis.OrientationX, head(c.grid.proxy.ColumnLabels(), c.grid.columns))

	lo, hi := math32.Inf(1), math32.Inf(-1)
	c.grid.each(func(v float32) {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	})
	if lo <= hi {
		c.axes[axis.OrientationY].AdjustToData(lo, hi)
	}
}

func (c *barsController) BarSpecs() BarSpecs { return c.specs }

func (c *barsController) SetBarSpecs(specs BarSpecs) error {
	if !(specs.ThicknessRatio > 0) || math32.IsInf(specs.ThicknessRatio, 0) ||
		!(specs.Spacing.X() >= 0) || !(specs.Spacing.Y() >= 0) {
		return c.reject(AspectBarSpecs, fmt.Errorf("%w: %+v", ErrInvalidBarSpecs, specs))
	}
	if specs == c.specs {
		return nil
	}
	c.specs = specs
	c.changed(AspectBarSpecs)
	return nil
}

func (c *barsController) BarStyle() BarStyle { return c.style }

func (c *barsController) SetBarStyle(style BarStyle) error {
	if style.Mesh < MeshBar || style.Mesh >= MeshPoint {
		return c.reject(AspectBarStyle, fmt.Errorf("%w: %s for bars", ErrInvalidStyle, style.Mesh))
	}
	if style == c.style {
		return nil
	}
	c.style = style
	c.changed(AspectBarStyle)
	return nil
}

func (c *barsController) DataWindow() DataWindow { return c.grid.window }

func (c *barsController) SetDataWindow(window DataWindow) error {
	if window.Rows < 0 || window.Columns < 0 {
		return c.reject(AspectDataWindow, fmt.Errorf("%w: %+v", ErrInvalidDataWindow, window))
	}
	if window == c.grid.window {
		return nil
	}
	c.grid.setWindow(window)
	return nil
}

func (c *barsController) SelectedBar() Position { return c.grid.selected }

func (c *barsController) SetSelectedBar(row, column int) {
	c.grid.selectPosition(row, column)
}

func (c *barsController) SlicingActive() bool { return c.slicing }

func (c *barsController) updateSlicing() {
	active := c.selectionMode.Has(SelectionSlice) && c.grid.selected != NoSelection
	if active == c.slicing {
		return
	}
	c.slicing = active
	c.changed(AspectSlicingActive)
}

func (c *barsController) selectSeries(res SelectionResult) {
	c.grid.selectPosition(res.Row, res.Column)
}

func (c *barsController) clearSeries() {
	c.grid.setSelected(NoSelection)
}

func (c *barsController) selectionModeChanged(mode SelectionFlag) {
	if mode == SelectionNone {
		c.grid.selectPosition(-1, -1)
	}
	c.updateSlicing()
}

func (c *barsController) syncSeries() {
	r := c.bars
	if c.tracker.Consume(AspectSampleSpace) {
		r.UpdateSampleSpace(c.grid.rows, c.grid.columns)
	}
	windowChanged := c.tracker.Consume(AspectDataWindow)
	if c.tracker.Consume(AspectData) || windowChanged {
		r.UpdateData(c.grid.visibleRows())
	}
	if c.tracker.Consume(AspectBarSpecs) {
		r.UpdateBarSpecs(c.specs)
	}
	if c.tracker.Consume(AspectBarStyle) {
		r.UpdateBarStyle(c.style)
	}
	if c.tracker.Consume(AspectSelectedBar) {
		r.UpdateSelectedBar(c.grid.selected)
	}
	if c.tracker.Consume(AspectSlicingActive) {
		r.UpdateSlicingActive(c.slicing)
	}
}

func (c *barsController) close() {
	c.grid.close()
}
