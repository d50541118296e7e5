package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name       string
	mode       gpu.Primitive
	buffers    [3]gpu.Buffer
	index      gpu.Buffer
	indexCount int
	min, max   mgl32.Vec3
}

// Model is a mesh uploaded to a gpu.Device: one vertex buffer per attribute plus an index buffer.
// The Model owns its buffers; Release frees them exactly once.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Mode returns the topology the index buffer describes.
	Mode() gpu.Primitive

	// Buffer returns the vertex buffer feeding attribute a. Every attribute has a buffer; meshes
	// without normals or UVs get generated ones.
	//
	// Parameters:
	//   - a: the attribute
	//
	// Returns:
	//   - gpu.Buffer: the buffer
	Buffer(a gpu.Attribute) gpu.Buffer

	// IndexBuffer returns the uint32 index buffer.
	IndexBuffer() gpu.Buffer

	// IndexCount returns the number of indices.
	IndexCount() int

	// Bounds returns the model-space bounding box.
	//
	// Returns:
	//   - mgl32.Vec3: the minimum corner
	//   - mgl32.Vec3: the maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)

	// BoundingRadius returns the largest distance of a bounding box corner from the origin.
	BoundingRadius() float32

	// Release frees the GPU buffers. It is safe to call more than once.
	Release()
}

var _ Model = &model{}

// NewModel uploads a mesh.
//
// Parameters:
//   - device: the device to allocate buffers on
//   - mesh: the geometry; it is validated first
//   - options: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the uploaded model
//   - error: a mesh validation error, or the device's allocation error. Buffers allocated
//     before a failure are released.
func NewModel(device gpu.Device, mesh Mesh, options ...ModelBuilderOption) (Model, error) {
	m := &model{name: mesh.Name}
	for _, opt := range options {
		opt(m)
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if m.mode == gpu.PrimitiveTriangles && len(mesh.Indices)%3 != 0 {
		return nil, fmt.Errorf("%s: %w: %d indices is not a triangle list", mesh.Name, ErrMalformedMesh, len(mesh.Indices))
	}
	if len(mesh.Normals) == 0 {
		mesh.ComputeNormals()
	}
	uvs := mesh.UVs
	if len(uvs) == 0 {
		uvs = make([]mgl32.Vec2, len(mesh.Positions))
	}

	streams := [3][]byte{
		gpu.AttributePosition: marshalVec3(mesh.Positions),
		gpu.AttributeNormal:   marshalVec3(mesh.Normals),
		gpu.AttributeUV:       marshalVec2(uvs),
	}
	for a, data := range streams {
		buf, err := device.CreateBuffer(gpu.BufferVertex, data)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("%s %s buffer: %w", m.name, gpu.Attribute(a).Name(), err)
		}
		m.buffers[a] = buf
	}
	index, err := device.CreateBuffer(gpu.BufferIndex, marshalIndices(mesh.Indices))
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("%s index buffer: %w", m.name, err)
	}
	m.index = index
	m.indexCount = len(mesh.Indices)
	m.min, m.max = mesh.Bounds()
	return m, nil
}

func (m *model) Name() string { return m.name }

func (m *model) Mode() gpu.Primitive { return m.mode }

func (m *model) Buffer(a gpu.Attribute) gpu.Buffer {
	if a < 0 || int(a) >= len(m.buffers) {
		return gpu.Buffer{}
	}
	return m.buffers[a]
}

func (m *model) IndexBuffer() gpu.Buffer { return m.index }

func (m *model) IndexCount() int { return m.indexCount }

func (m *model) Bounds() (mgl32.Vec3, mgl32.Vec3) { return m.min, m.max }

func (m *model) BoundingRadius() float32 {
	var far mgl32.Vec3
	for i := range 3 {
		far[i] = max(math32.Abs(m.min[i]), math32.Abs(m.max[i]))
	}
	return far.Len()
}

func (m *model) Release() {
	for i := range m.buffers {
		m.buffers[i].Release()
	}
	m.index.Release()
	m.indexCount = 0
}
