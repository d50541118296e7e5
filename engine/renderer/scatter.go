package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Automatic point sizes stay within these bounds.
const (
	minAutoPointSize float32 = 0.01
	maxAutoPointSize float32 = 0.1
)

// ScatterRenderer renders a scatter chart.
type ScatterRenderer interface {
	ChartRenderer
	controller.ScatterRenderer

	// ItemCount returns the number of points of the last sync.
	ItemCount() int
}

type scatterRenderer struct {
	*baseRenderer

	items    []data.ScatterItem
	style    controller.PointStyle
	selected int

	mesh      model.Model
	meshDirty bool
	// placements are the point transforms without camera-dependent rotation.
	placements []mgl32.Mat4
	elements   []element
}

var _ ScatterRenderer = &scatterRenderer{}

// NewScatterRenderer creates the renderer of a scatter chart on a device.
//
// Parameters:
//   - device: the device every resource is created on
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - ScatterRenderer: the renderer
func NewScatterRenderer(device gpu.Device, options ...RendererBuilderOption) ScatterRenderer {
	s := &scatterRenderer{
		style:     controller.PointStyle{Mesh: controller.MeshSphere},
		selected:  -1,
		meshDirty: true,
	}
	s.baseRenderer = newBaseRenderer(device, options)
	s.series = s
	return s
}

func (s *scatterRenderer) ItemCount() int { return len(s.items) }

func (s *scatterRenderer) UpdateData(items []data.ScatterItem) { s.items = items }

func (s *scatterRenderer) UpdatePointStyle(style controller.PointStyle) {
	if style.Mesh != s.style.Mesh || style.Smooth != s.style.Smooth {
		s.meshDirty = true
	}
	s.style = style
}

func (s *scatterRenderer) UpdateSelectedItem(index int) { s.selected = index }

// pointSize returns the half size of a point in graph units.
func (s *scatterRenderer) pointSize() float32 {
	if s.style.Size > 0 {
		return s.style.Size
	}
	n := float32(max(len(s.items), 1))
	return mgl32.Clamp(0.5/math32.Cbrt(n), minAutoPointSize, maxAutoPointSize)
}

func (s *scatterRenderer) syncSeries() error {
	if s.meshDirty || s.mesh == nil {
		m, err := shapeModel(s.device, s.style.Mesh, s.style.Smooth)
		if err != nil {
			return fmt.Errorf("point mesh: %w", s.check(err))
		}
		if s.mesh != nil {
			s.mesh.Release()
		}
		s.mesh, s.meshDirty = m, false
	}

	size := s.pointSize()
	// Frustum shapes span y in [0, 1]; center them on the point.
	center := mgl32.Ident4()
	switch s.style.Mesh {
	case controller.MeshSphere, controller.MeshPoint:
	default:
		center = mgl32.Scale3D(1, 2, 1).Mul4(mgl32.Translate3D(0, -0.5, 0))
	}

	s.placements = make([]mgl32.Mat4, len(s.items))
	s.elements = make([]element, len(s.items))
	for i, it := range s.items {
		pos := s.dataToGraph(it.Position)
		place := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
		if s.style.Mesh != controller.MeshPoint && it.Rotation != (mgl32.Quat{}) {
			place = place.Mul4(it.Rotation.Normalize().Mat4())
		}
		s.placements[i] = place.Mul4(mgl32.Scale3D(size, size, size)).Mul4(center)
		color, highlight := s.theme.BaseColor, false
		if i == s.selected {
			color, highlight = s.theme.SingleHighlightColor, true
		}
		s.elements[i] = element{
			model:     s.mesh,
			matrix:    s.placements[i],
			color:     color,
			index:     i,
			highlight: highlight,
			shadow:    s.style.Mesh != controller.MeshPoint,
		}
	}
	return nil
}

// seriesElements turns flat point sprites toward the camera. Meshes keep their sync placement.
func (s *scatterRenderer) seriesElements() []element {
	if s.style.Mesh != controller.MeshPoint || len(s.elements) == 0 {
		return s.elements
	}
	rot := s.billboard()
	out := make([]element, len(s.elements))
	for i, e := range s.elements {
		p := s.placements[i]
		t := p.Col(3)
		scale := mgl32.Scale3D(p.At(0, 0), p.At(1, 1), p.At(2, 2))
		e.matrix = mgl32.Translate3D(t.X(), t.Y(), t.Z()).Mul4(rot).Mul4(scale)
		out[i] = e
	}
	return out
}

func (s *scatterRenderer) lineElements() []element { return nil }

func (s *scatterRenderer) resolve(index int, _, _ mgl32.Vec3) controller.SelectionResult {
	if index < 0 || index >= len(s.items) {
		return noHit
	}
	return controller.SelectionResult{Element: controller.ElementSeries, Row: -1, Column: -1, Index: index}
}

func (s *scatterRenderer) forgetSeries() {
	s.mesh, s.meshDirty = nil, true
	s.elements, s.placements = nil, nil
}

func (s *scatterRenderer) releaseSeries() {
	if s.mesh != nil {
		s.mesh.Release()
		s.mesh = nil
	}
	s.meshDirty = true
	s.elements, s.placements = nil, nil
}
