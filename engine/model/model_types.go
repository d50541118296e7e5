package model

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyMesh is returned for a mesh without vertices or indices.
	ErrEmptyMesh = errors.New("mesh has no geometry")

	// ErrMalformedMesh is returned for a mesh whose streams disagree in length or whose indices
	// point past the vertex list.
	ErrMalformedMesh = errors.New("malformed mesh")
)

// Mesh is CPU-side indexed geometry. Normals and UVs, when present, have one entry per position.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// Validate checks that the streams are consistent.
//
// Returns:
//   - error: ErrEmptyMesh or ErrMalformedMesh
func (m *Mesh) Validate() error {
	if len(m.Positions) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("%s: %w", m.Name, ErrEmptyMesh)
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%s: %w: %d normals for %d positions", m.Name, ErrMalformedMesh, len(m.Normals), len(m.Positions))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("%s: %w: %d uvs for %d positions", m.Name, ErrMalformedMesh, len(m.UVs), len(m.Positions))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%s: %w: index %d past %d vertices", m.Name, ErrMalformedMesh, idx, len(m.Positions))
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := range 3 {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return min, max
}

// ComputeNormals replaces the normals with area-weighted averages of the adjacent face normals.
// Triangles are read from the index list.
func (m *Mesh) ComputeNormals() {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		n := m.Positions[b].Sub(m.Positions[a]).Cross(m.Positions[c].Sub(m.Positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = normals
}

// Smooth welds vertices that share a position and recomputes the normals, turning a faceted
// mesh into a smooth-shaded one. The first UV of each welded position is kept.
func (m *Mesh) Smooth() {
	type key [3]int32
	quantize := func(p mgl32.Vec3) key {
		var k key
		for i := range 3 {
			k[i] = int32(math32.Floor(p[i]*1e4 + 0.5))
		}
		return k
	}
	welded := make(map[key]uint32, len(m.Positions))
	remap := make([]uint32, len(m.Positions))
	var positions []mgl32.Vec3
	var uvs []mgl32.Vec2
	for i, p := range m.Positions {
		k := quantize(p)
		idx, ok := welded[k]
		if !ok {
			idx = uint32(len(positions))
			welded[k] = idx
			positions = append(positions, p)
			if len(m.UVs) > 0 {
				uvs = append(uvs, m.UVs[i])
			}
		}
		remap[i] = idx
	}
	for i, idx := range m.Indices {
		m.Indices[i] = remap[idx]
	}
	m.Positions = positions
	m.UVs = uvs
	m.ComputeNormals()
}
