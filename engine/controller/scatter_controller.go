package controller

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ScatterController is the controller of a scatter chart. All three axes are value axes.
type ScatterController interface {
	Controller

	// DataProxy returns the active proxy.
	DataProxy() data.ScatterDataProxy

	// SetDataProxy replaces the active proxy. A nil proxy is replaced by an empty one.
	SetDataProxy(proxy data.ScatterDataProxy)

	// ItemCount returns the number of points.
	ItemCount() int

	// PointStyle returns the point mesh and size.
	PointStyle() PointStyle

	// SetPointStyle sets the point mesh and size.
	//
	// Returns:
	//   - error: ErrInvalidStyle for an unknown mesh or a size outside [0, 1]
	SetPointStyle(style PointStyle) error

	// SelectedItem returns the selected point index, or -1.
	SelectedItem() int

	// SetSelectedItem selects a point. An index outside [0, ItemCount) clears the selection.
	SetSelectedItem(index int)
}

type scatterController struct {
	*base
	scatter  ScatterRenderer
	proxy    data.ScatterDataProxy
	unsub    func()
	count    int
	style    PointStyle
	selected int
}

var _ ScatterController = &scatterController{}

// NewScatterController creates a scatter chart controller pushing to r.
//
// Parameters:
//   - r: the scatter renderer
//   - proxy: the initial data; nil starts with an empty proxy
//   - options: a variadic list of ControllerBuilderOption functions
//
// Returns:
//   - ScatterController: the new controller
func NewScatterController(r ScatterRenderer, proxy data.ScatterDataProxy, options ...ControllerBuilderOption) ScatterController {
	c := &scatterController{
		scatter:  r,
		style:    PointStyle{Mesh: MeshSphere, Smooth: true},
		selected: -1,
	}
	c.base = newBase(r,
		[3]axis.Type{axis.TypeValue, axis.TypeValue, axis.TypeValue},
		SelectionItem,
		options,
	)
	c.base.series = c
	c.tracker.Set(AspectPointStyle, AspectSelectedItem)
	c.SetDataProxy(proxy)
	return c
}

func (c *scatterController) DataProxy() data.ScatterDataProxy { return c.proxy }

func (c *scatterController) SetDataProxy(proxy data.ScatterDataProxy) {
	if proxy == nil {
		proxy = data.NewScatterDataProxy()
	}
	if proxy == c.proxy {
		return
	}
	if c.unsub != nil {
		c.unsub()
	}
	c.proxy = proxy
	c.unsub = proxy.Subscribe(c.onChange)
	c.changed(AspectData)
	c.refresh()
}

func (c *scatterController) onChange(ch data.Change) {
	if c.selected >= 0 && c.selected >= ch.Start {
		switch ch.Kind {
		case data.ChangeRowsInserted:
			c.setSelected(c.selected + ch.Count)
		case data.ChangeRowsRemoved:
			if c.selected < ch.Start+ch.Count {
				c.setSelected(-1)
			} else {
				c.setSelected(c.selected - ch.Count)
			}
		}
	}
	c.changed(AspectData)
	c.refresh()
}

func (c *scatterController) refresh() {
	c.count = c.proxy.ItemCount()
	if c.selected >= c.count {
		c.setSelected(-1)
	}
	c.dataRefreshed()
}

// dataRefreshed fits the value axes to the extent of the points.
func (c *scatterController) dataRefreshed() {
	if c.count == 0 {
		return
	}
	lo := mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi := mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, it := range c.proxy.Items() {
		for i := range 3 {
			lo[i] = math32.Min(lo[i], it.Position[i])
			hi[i] = math32.Max(hi[i], it.Position[i])
		}
	}
	for _, o := range axis.Orientations {
		c.axes[o].AdjustToData(lo[o], hi[o])
	}
}

func (c *scatterController) ItemCount() int { return c.count }

func (c *scatterController) PointStyle() PointStyle { return c.style }

func (c *scatterController) SetPointStyle(style PointStyle) error {
	if style.Mesh < MeshBar || style.Mesh > MeshPoint || !(style.Size >= 0 && style.Size <= 1) {
		return c.reject(AspectPointStyle, fmt.Errorf("%w: %+v", ErrInvalidStyle, style))
	}
	if style == c.style {
		return nil
	}
	c.style = style
	c.changed(AspectPointStyle)
	return nil
}

func (c *scatterController) SelectedItem() int { return c.selected }

func (c *scatterController) SetSelectedItem(index int) {
	if index < 0 || index >= c.count {
		index = -1
	}
	c.setSelected(index)
	switch {
	case index >= 0:
		c.setSelectedElement(ElementSeries, -1)
	case c.selectedElement == ElementSeries:
		c.setSelectedElement(ElementNone, -1)
	}
}

func (c *scatterController) setSelected(index int) {
	if index == c.selected {
		return
	}
	c.selected = index
	c.changed(AspectSelectedItem)
}

func (c *scatterController) selectSeries(res SelectionResult) {
	c.SetSelectedItem(res.Index)
}

func (c *scatterController) clearSeries() {
	c.setSelected(-1)
}

func (c *scatterController) selectionModeChanged(mode SelectionFlag) {
	if mode == SelectionNone {
		c.SetSelectedItem(-1)
	}
}

func (c *scatterController) syncSeries() {
	r := c.scatter
	if c.tracker.Consume(AspectData) {
		r.UpdateData(c.proxy.Items())
	}
	if c.tracker.Consume(AspectPointStyle) {
		r.UpdatePointStyle(c.style)
	}
	if c.tracker.Consume(AspectSelectedItem) {
		r.UpdateSelectedItem(c.selected)
	}
}

func (c *scatterController) close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}
