package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Common errors returned by the parser
var (
	// ErrSyntax is wrapped by every malformed-statement error, together with the line number.
	ErrSyntax = errors.New("obj syntax error")

	errIndexRange  = errors.New("index out of range")
	errShortFace   = errors.New("face needs at least 3 vertices")
	errNoGeometry  = errors.New("no faces")
	errIndexFormat = errors.New("malformed vertex reference")
)

// objVertex is one v/vt/vn reference triple after resolving relative indices. Missing
// components are -1.
type objVertex struct {
	v, vt, vn int
}

// objParser reads the geometry statements of a Wavefront OBJ stream: v, vt, vn and f.
// Polygons are triangulated as fans. Grouping, smoothing and material statements are ignored.
type objParser struct {
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3

	vertices map[objVertex]uint32
	order    []objVertex
	indices  []uint32

	missingNormal bool
	anyUV         bool
	line          int
}

func newOBJParser() *objParser {
	return &objParser{vertices: make(map[objVertex]uint32)}
}

// Parse consumes the whole stream.
func (p *objParser) Parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v mgl32.Vec3
			v, err = p.vec3(fields[1:])
			p.positions = append(p.positions, v)
		case "vn":
			var v mgl32.Vec3
			v, err = p.vec3(fields[1:])
			p.normals = append(p.normals, v)
		case "vt":
			var v mgl32.Vec2
			v, err = p.vec2(fields[1:])
			p.uvs = append(p.uvs, v)
		case "f":
			err = p.face(fields[1:])
		}
		if err != nil {
			return fmt.Errorf("line %d: %w: %w", p.line, ErrSyntax, err)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if len(p.indices) == 0 {
		return fmt.Errorf("%w: %w", ErrSyntax, errNoGeometry)
	}
	return nil
}

func (p *objParser) floats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) vec3(fields []string) (mgl32.Vec3, error) {
	f, err := p.floats(fields, 3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{f[0], f[1], f[2]}, nil
}

// vec2 reads a texture coordinate, flipping v so that (0, 0) is the top-left of the image.
func (p *objParser) vec2(fields []string) (mgl32.Vec2, error) {
	f, err := p.floats(fields, 2)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{f[0], 1 - f[1]}, nil
}

func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return errShortFace
	}
	idx := make([]uint32, len(refs))
	for i, ref := range refs {
		v, err := p.reference(ref)
		if err != nil {
			return fmt.Errorf("%q: %w", ref, err)
		}
		idx[i] = p.vertex(v)
	}
	for i := 1; i+1 < len(idx); i++ {
		p.indices = append(p.indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

// reference parses v, v/vt, v//vn or v/vt/vn.
func (p *objParser) reference(ref string) (objVertex, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objVertex{}, errIndexFormat
	}
	v := objVertex{v: -1, vt: -1, vn: -1}
	var err error
	if v.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return objVertex{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if v.vt, err = resolveIndex(parts[1], len(p.uvs)); err != nil {
			return objVertex{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if v.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return objVertex{}, err
		}
	}
	return v, nil
}

// resolveIndex turns a 1-based or negative (relative to the end) OBJ index into a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errIndexFormat
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	}
	return 0, fmt.Errorf("%w: %d of %d", errIndexRange, n, count)
}

func (p *objParser) vertex(v objVertex) uint32 {
	if idx, ok := p.vertices[v]; ok {
		return idx
	}
	idx := uint32(len(p.order))
	p.vertices[v] = idx
	p.order = append(p.order, v)
	if v.vn < 0 {
		p.missingNormal = true
	}
	if v.vt >= 0 {
		p.anyUV = true
	}
	return idx
}

// Mesh assembles the parsed vertices. Normals are computed when any vertex lacks one; UVs are
// left empty when no vertex references one.
func (p *objParser) Mesh() *model.Mesh {
	m := &model.Mesh{
		Positions: make([]mgl32.Vec3, len(p.order)),
		Indices:   p.indices,
	}
	if p.anyUV {
		m.UVs = make([]mgl32.Vec2, len(p.order))
	}
	if !p.missingNormal {
		m.Normals = make([]mgl32.Vec3, len(p.order))
	}
	for i, v := range p.order {
		m.Positions[i] = p.positions[v.v]
		if p.anyUV && v.vt >= 0 {
			m.UVs[i] = p.uvs[v.vt]
		}
		if !p.missingNormal {
			n := p.normals[v.vn]
			if n.Len() > 0 {
				n = n.Normalize()
			}
			m.Normals[i] = n
		}
	}
	if p.missingNormal {
		m.ComputeNormals()
	}
	return m
}
