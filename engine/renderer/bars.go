package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minBarHeight keeps zero bars drawable and pickable.
const minBarHeight float32 = 1e-4

// BarsRenderer renders a bar chart.
type BarsRenderer interface {
	ChartRenderer
	controller.BarsRenderer

	// RowCount returns the number of rows of the last sync.
	RowCount() int

	// ColumnCount returns the number of columns of the last sync.
	ColumnCount() int
}

type barsRenderer struct {
	*baseRenderer

	rows, columns int
	data          []data.BarRow
	specs         controller.BarSpecs
	style         controller.BarStyle
	selected      controller.Position
	slicing       bool

	mesh      model.Model
	meshDirty bool
	elements  []element
	// positions maps element indices to bars.
	positions []controller.Position
}

var _ BarsRenderer = &barsRenderer{}

// NewBarsRenderer creates the renderer of a bar chart on a device. Nothing is allocated on the
// device until the first Synchronize.
//
// Parameters:
//   - device: the device every resource is created on
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - BarsRenderer: the renderer
func NewBarsRenderer(device gpu.Device, options ...RendererBuilderOption) BarsRenderer {
	b := &barsRenderer{
		specs:     controller.DefaultBarSpecs,
		selected:  controller.NoSelection,
		meshDirty: true,
	}
	b.baseRenderer = newBaseRenderer(device, options)
	b.series = b
	return b
}

func (b *barsRenderer) RowCount() int { return b.rows }

func (b *barsRenderer) ColumnCount() int { return b.columns }

func (b *barsRenderer) UpdateSampleSpace(rows, columns int) {
	b.rows, b.columns = rows, columns
}

func (b *barsRenderer) UpdateData(rows []data.BarRow) { b.data = rows }

func (b *barsRenderer) UpdateBarSpecs(specs controller.BarSpecs) { b.specs = specs }

func (b *barsRenderer) UpdateBarStyle(style controller.BarStyle) {
	if style != b.style {
		b.style = style
		b.meshDirty = true
	}
}

func (b *barsRenderer) UpdateSelectedBar(pos controller.Position) { b.selected = pos }

func (b *barsRenderer) UpdateSlicingActive(active bool) { b.slicing = active }

func (b *barsRenderer) syncSeries() error {
	if b.meshDirty || b.mesh == nil {
		m, err := shapeModel(b.device, b.style.Mesh, b.style.Smooth)
		if err != nil {
			return fmt.Errorf("bar mesh: %w", b.check(err))
		}
		if b.mesh != nil {
			b.mesh.Release()
		}
		b.mesh, b.meshDirty = m, false
	}
	b.buildElements()
	return nil
}

// barSize returns the bar width and depth inside a cell.
func barSize(specs controller.BarSpecs, cellW, cellD float32) (float32, float32) {
	var w, d float32
	if specs.Relative {
		w = cellW / (1 + specs.Spacing.X())
		d = cellD / (1 + specs.Spacing.Y())
	} else {
		w = math32.Max(cellW-specs.Spacing.X(), cellW*0.01)
		d = math32.Max(cellD-specs.Spacing.Y(), cellD*0.01)
	}
	if ratio := specs.ThicknessRatio; ratio > 0 {
		if w/d > ratio {
			w = d * ratio
		} else {
			d = w / ratio
		}
	}
	return w, d
}

// inSlice reports whether the bar at r, c is shown while slicing.
func (b *barsRenderer) inSlice(r, c int) bool {
	if !b.slicing || !b.selected.Valid(b.rows, b.columns) {
		return true
	}
	if b.selectionMode.Has(controller.SelectionRow) {
		return r == b.selected.Row
	}
	return c == b.selected.Column
}

func (b *barsRenderer) barColor(r, c int) (common.Color, bool) {
	sel := b.selected
	if sel.Valid(b.rows, b.columns) {
		mode := b.selectionMode
		switch {
		case mode.Has(controller.SelectionItem) && r == sel.Row && c == sel.Column:
			return b.theme.SingleHighlightColor, true
		case mode.Has(controller.SelectionRow) && r == sel.Row,
			mode.Has(controller.SelectionColumn) && c == sel.Column:
			return b.theme.MultiHighlightColor, true
		}
	}
	return b.theme.BaseColor, false
}

func (b *barsRenderer) buildElements() {
	b.elements, b.positions = nil, nil
	rows, cols := min(b.rows, len(b.data)), b.columns
	if rows == 0 || cols == 0 || b.mesh == nil {
		return
	}
	ext := b.extents()
	cellW, cellD := 2*ext.X()/float32(cols), 2*ext.Z()/float32(b.rows)
	bw, bd := barSize(b.specs, cellW, cellD)

	ay := b.axes[axis.OrientationY]
	lo, hi := ay.Range()
	base := ay.Normalize(mgl32.Clamp(0, lo, hi)) * ext.Y()
	for r := range rows {
		values := b.data[r].Values()
		z := -ext.Z() + (float32(r)+0.5)*cellD
		for c := range min(cols, len(values)) {
			v := values[c]
			if math32.IsNaN(v) || !b.inSlice(r, c) {
				continue
			}
			top := mgl32.Clamp(ay.Normalize(v), -1, 1) * ext.Y()
			y, h := base, top-base
			if h < 0 {
				y, h = top, -h
			}
			x := -ext.X() + (float32(c)+0.5)*cellW
			color, highlight := b.barColor(r, c)
			b.elements = append(b.elements, element{
				model:     b.mesh,
				matrix:    mgl32.Translate3D(x, y, z).Mul4(mgl32.Scale3D(bw/2, math32.Max(h, minBarHeight), bd/2)),
				color:     color,
				index:     len(b.positions),
				highlight: highlight,
				shadow:    true,
			})
			b.positions = append(b.positions, controller.Position{Row: r, Column: c})
		}
	}
}

func (b *barsRenderer) seriesElements() []element { return b.elements }

func (b *barsRenderer) lineElements() []element { return nil }

func (b *barsRenderer) resolve(index int, _, _ mgl32.Vec3) controller.SelectionResult {
	if index < 0 || index >= len(b.positions) {
		return noHit
	}
	p := b.positions[index]
	return controller.SelectionResult{Element: controller.ElementSeries, Row: p.Row, Column: p.Column, Index: -1}
}

func (b *barsRenderer) forgetSeries() {
	b.mesh, b.meshDirty = nil, true
	b.elements, b.positions = nil, nil
}

func (b *barsRenderer) releaseSeries() {
	if b.mesh != nil {
		b.mesh.Release()
		b.mesh = nil
	}
	b.meshDirty = true
	b.elements, b.positions = nil, nil
}

// shapeModel uploads the built-in mesh of a bar or point style.
func shapeModel(device gpu.Device, style controller.MeshStyle, smooth bool) (model.Model, error) {
	shape := model.Shape(style)
	return model.NewModel(device, model.Primitive(shape, smooth), model.WithName(shape.String()))
}
