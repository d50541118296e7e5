package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// pointerSize is the radius of the marker drawn on the selected surface vertex.
const pointerSize float32 = 0.03

// SurfaceRenderer renders a surface chart.
type SurfaceRenderer interface {
	ChartRenderer
	controller.SurfaceRenderer

	// RowCount returns the number of rows of the last sync.
	RowCount() int

	// ColumnCount returns the number of columns of the last sync.
	ColumnCount() int
}

// surfaceKey is everything the surface geometry is derived from besides the data.
type surfaceKey struct {
	ranges [3][2]float32
	extent mgl32.Vec3
	flat   bool
}

type surfaceRenderer struct {
	*baseRenderer

	rows, columns int
	data          []data.SurfaceRow
	style         controller.SurfaceStyle
	selected      controller.Position

	dataDirty bool
	key       surfaceKey
	// points is the visible grid in graph space, indexed [row][column].
	points    [][]mgl32.Vec3
	surface   model.Model
	wireframe model.Model
	pointer   model.Model
}

var _ SurfaceRenderer = &surfaceRenderer{}

// NewSurfaceRenderer creates the renderer of a surface chart on a device.
//
// Parameters:
//   - device: the device every resource is created on
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - SurfaceRenderer: the renderer
func NewSurfaceRenderer(device gpu.Device, options ...RendererBuilderOption) SurfaceRenderer {
	s := &surfaceRenderer{
		style:     controller.SurfaceStyle{DrawMode: controller.SurfaceDrawSurfaceAndWireframe},
		selected:  controller.NoSelection,
		dataDirty: true,
	}
	s.baseRenderer = newBaseRenderer(device, options)
	s.series = s
	return s
}

func (s *surfaceRenderer) RowCount() int { return s.rows }

func (s *surfaceRenderer) ColumnCount() int { return s.columns }

func (s *surfaceRenderer) UpdateSampleSpace(rows, columns int) {
	s.rows, s.columns = rows, columns
	s.dataDirty = true
}

func (s *surfaceRenderer) UpdateData(rows []data.SurfaceRow) {
	s.data = rows
	s.dataDirty = true
}

func (s *surfaceRenderer) UpdateSurfaceStyle(style controller.SurfaceStyle) { s.style = style }

func (s *surfaceRenderer) UpdateSelectedPoint(pos controller.Position) { s.selected = pos }

func (s *surfaceRenderer) currentKey() surfaceKey {
	k := surfaceKey{extent: s.extents(), flat: s.style.FlatShading}
	for _, o := range axis.Orientations {
		k.ranges[o][0], k.ranges[o][1] = s.axes[o].Range()
	}
	return k
}

// grid returns the visible rows and columns mapped to graph space. Ragged rows are cut to the
// shortest one.
func (s *surfaceRenderer) grid() [][]mgl32.Vec3 {
	rows := min(s.rows, len(s.data))
	cols := s.columns
	for r := range rows {
		cols = min(cols, s.data[r].Len())
	}
	if rows < 2 || cols < 2 {
		return nil
	}
	points := make([][]mgl32.Vec3, rows)
	for r := range rows {
		values := s.data[r].Values()
		points[r] = make([]mgl32.Vec3, cols)
		for c := range cols {
			points[r][c] = s.dataToGraph(values[c])
		}
	}
	return points
}

func (s *surfaceRenderer) syncSeries() error {
	var errs []error
	if s.pointer == nil {
		m, err := shapeModel(s.device, controller.MeshSphere, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("selection pointer: %w", s.check(err)))
		} else {
			s.pointer = m
		}
	}

	key := s.currentKey()
	if !s.dataDirty && key == s.key && (s.surface != nil || s.points == nil) {
		return errors.Join(errs...)
	}
	points := s.grid()
	s.points = points
	if points == nil {
		s.releaseMeshes()
		s.dataDirty, s.key = false, key
		return errors.Join(errs...)
	}

	mesh, err := model.Surface(points, key.flat)
	if err == nil {
		var m model.Model
		if m, err = model.NewModel(s.device, mesh, model.WithName("surface")); err == nil {
			if s.surface != nil {
				s.surface.Release()
			}
			s.surface = m
		}
	}
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("surface mesh: %w", s.check(err)))...)
	}

	wire, err := model.SurfaceWireframe(points)
	if err == nil {
		var m model.Model
		if m, err = model.NewModel(s.device, wire, model.WithName("wireframe"), model.WithPrimitive(gpu.PrimitiveLines)); err == nil {
			if s.wireframe != nil {
				s.wireframe.Release()
			}
			s.wireframe = m
		}
	}
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("surface wireframe: %w", s.check(err)))...)
	}
	s.dataDirty, s.key = false, key
	return errors.Join(errs...)
}

func (s *surfaceRenderer) seriesElements() []element {
	var out []element
	if s.surface != nil && s.style.DrawMode&controller.SurfaceDrawSurface != 0 {
		out = append(out, element{
			model:  s.surface,
			matrix: mgl32.Ident4(),
			color:  s.theme.BaseColor,
			index:  0,
			shadow: true,
		})
	}
	if s.pointer != nil && s.selected.Valid(len(s.points), s.pointColumns()) {
		p := s.points[s.selected.Row][s.selected.Column]
		out = append(out, element{
			model:     s.pointer,
			matrix:    mgl32.Translate3D(p.X(), p.Y(), p.Z()).Mul4(mgl32.Scale3D(pointerSize, pointerSize, pointerSize)),
			color:     s.theme.SingleHighlightColor,
			index:     -1,
			highlight: true,
		})
	}
	return out
}

func (s *surfaceRenderer) lineElements() []element {
	if s.wireframe == nil || s.style.DrawMode&controller.SurfaceDrawWireframe == 0 {
		return nil
	}
	e := element{model: s.wireframe, matrix: mgl32.Ident4(), color: s.theme.GridLineColor, index: -1}
	// A wireframe alone is the only pickable part of the surface.
	if s.style.DrawMode&controller.SurfaceDrawSurface == 0 {
		e.index = 0
	}
	return []element{e}
}

func (s *surfaceRenderer) pointColumns() int {
	if len(s.points) == 0 {
		return 0
	}
	return len(s.points[0])
}

// resolve picks the grid vertex closest to the ray.
func (s *surfaceRenderer) resolve(index int, origin, dir mgl32.Vec3) controller.SelectionResult {
	if index != 0 || len(s.points) == 0 || dir.Len() == 0 {
		return noHit
	}
	best := float32(-1)
	pos := controller.NoSelection
	for r, row := range s.points {
		for c, p := range row {
			v := p.Sub(origin)
			off := v.Sub(dir.Mul(v.Dot(dir)))
			d := off.Dot(off)
			if best < 0 || d < best {
				best, pos = d, controller.Position{Row: r, Column: c}
			}
		}
	}
	return controller.SelectionResult{Element: controller.ElementSeries, Row: pos.Row, Column: pos.Column, Index: -1}
}

func (s *surfaceRenderer) releaseMeshes() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.wireframe != nil {
		s.wireframe.Release()
		s.wireframe = nil
	}
}

func (s *surfaceRenderer) forgetSeries() {
	s.surface, s.wireframe, s.pointer = nil, nil, nil
	s.dataDirty = true
}

func (s *surfaceRenderer) releaseSeries() {
	s.releaseMeshes()
	if s.pointer != nil {
		s.pointer.Release()
		s.pointer = nil
	}
	s.dataDirty = true
}
