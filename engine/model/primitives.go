package model

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape is a built-in mesh used for bars and scatter points.
type Shape int

const (
	ShapeBar Shape = iota
	ShapePyramid
	ShapeCone
	ShapeCylinder
	ShapeBevelBar
	ShapeSphere
	// ShapePoint is a flat quad facing +Z.
	ShapePoint
)

var shapeNames = [...]string{"bar", "pyramid", "cone", "cylinder", "bevelbar", "sphere", "point"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// bevel is the size of the chamfer on bevel bars, as a fraction of the bar.
const bevel = 0.1

// meshBuilder accumulates flat-shaded triangles. Every triangle owns its three vertices.
type meshBuilder struct {
	m Mesh
}

// tri adds a triangle with counter-clockwise winding seen from its front. Degenerate triangles
// are dropped.
func (b *meshBuilder) tri(p0, p1, p2 mgl32.Vec3, t0, t1, t2 mgl32.Vec2) {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Len() < 1e-8 {
		return
	}
	n = n.Normalize()
	base := uint32(len(b.m.Positions))
	b.m.Positions = append(b.m.Positions, p0, p1, p2)
	b.m.Normals = append(b.m.Normals, n, n, n)
	b.m.UVs = append(b.m.UVs, t0, t1, t2)
	b.m.Indices = append(b.m.Indices, base, base+1, base+2)
}

func (b *meshBuilder) quad(p0, p1, p2, p3 mgl32.Vec3, t0, t1, t2, t3 mgl32.Vec2) {
	b.tri(p0, p1, p2, t0, t1, t2)
	b.tri(p0, p2, p3, t0, t2, t3)
}

func ring(theta, radius, y float32) mgl32.Vec3 {
	return mgl32.Vec3{radius * math32.Cos(theta), y, -radius * math32.Sin(theta)}
}

// frustum adds the side of a truncated cone around the Y axis between y0 and y1, with optional
// caps. A zero top radius closes the side at an apex.
func (b *meshBuilder) frustum(segments int, r0, r1, y0, y1, rotation float32, bottomCap, topCap bool) {
	step := 2 * math32.Pi / float32(segments)
	for i := range segments {
		t0 := rotation + float32(i)*step
		t1 := t0 + step
		u0, u1 := float32(i)/float32(segments), float32(i+1)/float32(segments)
		a, c := ring(t0, r0, y0), ring(t1, r0, y0)
		if r1 == 0 {
			b.tri(a, c, mgl32.Vec3{0, y1, 0}, mgl32.Vec2{u0, 1}, mgl32.Vec2{u1, 1}, mgl32.Vec2{(u0 + u1) / 2, 0})
		} else {
			b.quad(a, c, ring(t1, r1, y1), ring(t0, r1, y1),
				mgl32.Vec2{u0, 1}, mgl32.Vec2{u1, 1}, mgl32.Vec2{u1, 0}, mgl32.Vec2{u0, 0})
		}
		capUV := func(t float32) mgl32.Vec2 {
			return mgl32.Vec2{0.5 + 0.5*math32.Cos(t), 0.5 - 0.5*math32.Sin(t)}
		}
		center := mgl32.Vec2{0.5, 0.5}
		if bottomCap {
			b.tri(mgl32.Vec3{0, y0, 0}, c, a, center, capUV(t1), capUV(t0))
		}
		if topCap && r1 > 0 {
			b.tri(mgl32.Vec3{0, y1, 0}, ring(t0, r1, y1), ring(t1, r1, y1), center, capUV(t0), capUV(t1))
		}
	}
}

// Primitive builds a built-in shape. Bar-like shapes span [-1, 1] on X and Z and [0, 1] on Y so
// that scaling Y by a value gives a bar of that height; spheres and points are centered on the
// origin with radius 1.
//
// Parameters:
//   - shape: the shape
//   - smooth: weld vertices and interpolate normals instead of flat shading
//
// Returns:
//   - Mesh: the geometry
func Primitive(shape Shape, smooth bool) Mesh {
	segments := 16
	if smooth {
		segments = 32
	}
	corner := math32.Sqrt(2)
	quarter := math32.Pi / 4

	var b meshBuilder
	switch shape {
	case ShapeBar:
		b.frustum(4, corner, corner, 0, 1, quarter, true, true)
	case ShapePyramid:
		b.frustum(4, corner, 0, 0, 1, quarter, true, false)
	case ShapeCone:
		b.frustum(segments, 1, 0, 0, 1, 0, true, false)
	case ShapeCylinder:
		b.frustum(segments, 1, 1, 0, 1, 0, true, true)
	case ShapeBevelBar:
		b.frustum(4, corner, corner, 0, 1-bevel, quarter, true, false)
		b.frustum(4, corner, corner*(1-bevel), 1-bevel, 1, quarter, false, true)
	case ShapeSphere:
		b.sphere(segments/2, segments)
	case ShapePoint:
		return Quad()
	}
	b.m.Name = shape.String()
	if smooth {
		b.m.Name += "-smooth"
		b.m.Smooth()
	}
	return b.m
}

func (b *meshBuilder) sphere(stacks, slices int) {
	point := func(phi, theta float32) mgl32.Vec3 {
		s := math32.Sin(phi)
		return mgl32.Vec3{s * math32.Cos(theta), math32.Cos(phi), -s * math32.Sin(theta)}
	}
	for j := range stacks {
		phi0 := float32(j) * math32.Pi / float32(stacks)
		phi1 := float32(j+1) * math32.Pi / float32(stacks)
		v0, v1 := float32(j)/float32(stacks), float32(j+1)/float32(stacks)
		for i := range slices {
			theta0 := float32(i) * 2 * math32.Pi / float32(slices)
			theta1 := float32(i+1) * 2 * math32.Pi / float32(slices)
			u0, u1 := float32(i)/float32(slices), float32(i+1)/float32(slices)
			b.quad(point(phi1, theta0), point(phi1, theta1), point(phi0, theta1), point(phi0, theta0),
				mgl32.Vec2{u0, v1}, mgl32.Vec2{u1, v1}, mgl32.Vec2{u1, v0}, mgl32.Vec2{u0, v0})
		}
	}
}

// Quad is the unit quad on the XY plane, spanning [-1, 1], facing +Z. The top-left corner maps
// to texture coordinate (0, 0).
func Quad() Mesh {
	return Mesh{
		Name: "quad",
		Positions: []mgl32.Vec3{
			{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		},
		Normals: []mgl32.Vec3{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		UVs: []mgl32.Vec2{
			{0, 1}, {1, 1}, {1, 0}, {0, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Line is a unit segment from (-1, 0, 0) to (1, 0, 0), drawn with gpu.PrimitiveLines.
func Line() Mesh {
	return Mesh{
		Name:      "line",
		Positions: []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1},
	}
}

// Surface triangulates a height field. points is indexed [row][column]; every row must have the
// same length and there must be at least two rows and two columns.
//
// Parameters:
//   - points: the grid vertices
//   - flat: give every triangle its own face normal instead of interpolated normals
//
// Returns:
//   - Mesh: the surface
//   - error: ErrEmptyMesh for a grid smaller than 2x2, ErrMalformedMesh for ragged rows
func Surface(points [][]mgl32.Vec3, flat bool) (Mesh, error) {
	rows, cols, err := gridSize(points)
	if err != nil {
		return Mesh{}, err
	}
	uv := func(r, c int) mgl32.Vec2 {
		return mgl32.Vec2{float32(c) / float32(cols-1), float32(r) / float32(rows-1)}
	}
	// Winding is chosen so that triangles face +Y whichever way rows and columns advance.
	across := points[0][1].Sub(points[0][0])
	down := points[1][0].Sub(points[0][0])
	flip := across.Cross(down).Y() < 0

	if flat {
		var b meshBuilder
		for r := range rows - 1 {
			for c := range cols - 1 {
				p0, p1, p2, p3 := points[r][c], points[r][c+1], points[r+1][c+1], points[r+1][c]
				t0, t1, t2, t3 := uv(r, c), uv(r, c+1), uv(r+1, c+1), uv(r+1, c)
				if flip {
					p1, p3 = p3, p1
					t1, t3 = t3, t1
				}
				b.quad(p0, p1, p2, p3, t0, t1, t2, t3)
			}
		}
		b.m.Name = "surface-flat"
		return b.m, nil
	}

	m := Mesh{Name: "surface"}
	for r := range rows {
		for c := range cols {
			m.Positions = append(m.Positions, points[r][c])
			m.UVs = append(m.UVs, uv(r, c))
		}
	}
	at := func(r, c int) uint32 { return uint32(r*cols + c) }
	for r := range rows - 1 {
		for c := range cols - 1 {
			if flip {
				m.Indices = append(m.Indices,
					at(r, c), at(r+1, c+1), at(r, c+1),
					at(r, c), at(r+1, c), at(r+1, c+1))
			} else {
				m.Indices = append(m.Indices,
					at(r, c), at(r, c+1), at(r+1, c+1),
					at(r, c), at(r+1, c+1), at(r+1, c))
			}
		}
	}
	m.ComputeNormals()
	return m, nil
}

// SurfaceWireframe builds the grid lines of a height field as a line list.
func SurfaceWireframe(points [][]mgl32.Vec3) (Mesh, error) {
	rows, cols, err := gridSize(points)
	if err != nil {
		return Mesh{}, err
	}
	m := Mesh{Name: "surface-wireframe"}
	for r := range rows {
		m.Positions = append(m.Positions, points[r]...)
	}
	m.Normals = make([]mgl32.Vec3, len(m.Positions))
	for i := range m.Normals {
		m.Normals[i] = mgl32.Vec3{0, 1, 0}
	}
	at := func(r, c int) uint32 { return uint32(r*cols + c) }
	for r := range rows {
		for c := range cols {
			if c+1 < cols {
				m.Indices = append(m.Indices, at(r, c), at(r, c+1))
			}
			if r+1 < rows {
				m.Indices = append(m.Indices, at(r, c), at(r+1, c))
			}
		}
	}
	return m, nil
}

func gridSize(points [][]mgl32.Vec3) (int, int, error) {
	rows := len(points)
	if rows < 2 || len(points[0]) < 2 {
		return 0, 0, fmt.Errorf("surface: %w", ErrEmptyMesh)
	}
	cols := len(points[0])
	for r, row := range points {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("surface row %d: %w: %d columns, want %d", r, ErrMalformedMesh, len(row), cols)
		}
	}
	return rows, cols, nil
}
