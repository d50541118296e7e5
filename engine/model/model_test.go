package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesFaceOutward(t *testing.T) {
	for shape := ShapeBar; shape <= ShapeSphere; shape++ {
		for _, smooth := range []bool{false, true} {
			m := Primitive(shape, smooth)
			require.NoError(t, m.Validate(), shape)
			assert.Zero(t, len(m.Indices)%3, shape)

			min, max := m.Bounds()
			center := min.Add(max).Mul(0.5)
			for i := 0; i < len(m.Indices); i += 3 {
				a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
				n := b.Sub(a).Cross(c.Sub(a))
				centroid := a.Add(b).Add(c).Mul(1.0 / 3)
				assert.GreaterOrEqual(t, n.Dot(centroid.Sub(center)), float32(-1e-5), "%s smooth=%v triangle %d faces inward", shape, smooth, i/3)
			}
		}
	}
}

func TestBarBounds(t *testing.T) {
	m := Primitive(ShapeBar, false)
	min, max := m.Bounds()
	assert.InDelta(t, -1, min.X(), 1e-5)
	assert.InDelta(t, 0, min.Y(), 1e-5)
	assert.InDelta(t, 1, max.Z(), 1e-5)
	assert.InDelta(t, 1, max.Y(), 1e-5)
	assert.Len(t, m.Indices, 48)
}

func TestSmoothWeldsVertices(t *testing.T) {
	m := Primitive(ShapeCylinder, true)
	assert.Less(t, len(m.Positions), len(m.Indices))
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n.Len(), 1e-4)
	}
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Mesh{}).Validate(), ErrEmptyMesh)

	m := Quad()
	m.Indices = append(m.Indices, 9)
	assert.ErrorIs(t, m.Validate(), ErrMalformedMesh)

	m = Quad()
	m.Normals = m.Normals[:2]
	assert.ErrorIs(t, m.Validate(), ErrMalformedMesh)
}

func TestSurface(t *testing.T) {
	grid := [][]mgl32.Vec3{
		{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		{{0, 0, 1}, {1, 1, 1}, {2, 0, 1}},
	}
	for _, flat := range []bool{false, true} {
		m, err := Surface(grid, flat)
		require.NoError(t, err)
		require.NoError(t, m.Validate())
		assert.Len(t, m.Indices, 12)
		for i := 0; i < len(m.Indices); i += 3 {
			a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
			assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Y(), float32(0), "triangle %d faces down", i/3)
		}
	}

	_, err := Surface(grid[:1], false)
	assert.ErrorIs(t, err, ErrEmptyMesh)
	_, err = Surface([][]mgl32.Vec3{{{}, {}}, {{}}}, false)
	assert.ErrorIs(t, err, ErrMalformedMesh)

	wire, err := SurfaceWireframe(grid)
	require.NoError(t, err)
	// 2 rows x 2 horizontal segments + 3 vertical segments.
	assert.Len(t, wire.Indices, 14)
}

func TestNewModelUploadsAndReleases(t *testing.T) {
	dev := gputest.NewRecorder()
	m, err := NewModel(dev, Primitive(ShapePyramid, false))
	require.NoError(t, err)
	assert.Equal(t, 4, dev.Live(gpu.ObjectBuffer))
	assert.Equal(t, gpu.PrimitiveTriangles, m.Mode())
	assert.Equal(t, 12*len(Primitive(ShapePyramid, false).Positions), m.Buffer(gpu.AttributePosition).Size())
	assert.True(t, m.Buffer(gpu.AttributeUV).Valid())
	assert.InDelta(t, mgl32.Vec3{1, 1, 1}.Len(), m.BoundingRadius(), 1e-5)

	m.Release()
	m.Release()
	assert.Zero(t, dev.Live(gpu.ObjectBuffer))
	assert.Equal(t, 4, dev.Calls["ReleaseBuffer"])
}

func TestNewModelFailureReleasesPartialUpload(t *testing.T) {
	dev := gputest.NewRecorder()
	dev.FailAlloc = true
	_, err := NewModel(dev, Quad())
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)
	assert.Zero(t, dev.Live(gpu.ObjectBuffer))

	dev.FailAlloc = false
	line, err := NewModel(dev, Line(), WithPrimitive(gpu.PrimitiveLines), WithName("grid"))
	require.NoError(t, err)
	assert.Equal(t, "grid", line.Name())
	assert.Equal(t, 2, line.IndexCount())
}
