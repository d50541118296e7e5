package gpu

// Releaser destroys backend objects. Devices implement it so that handles can release themselves.
type Releaser interface {
	// ReleaseObject destroys the backend object of the given kind and id.
	ReleaseObject(kind ObjectKind, id uint32)
}

// ObjectKind is the kind of backend object a handle refers to.
type ObjectKind int

const (
	ObjectBuffer ObjectKind = iota
	ObjectTexture
	ObjectProgram
	ObjectTarget
)

// handle is the shared part of every GPU handle. The zero value is an empty handle.
type handle struct {
	id    uint32
	owner Releaser
}

func (h *handle) release(kind ObjectKind) {
	if h.id == 0 || h.owner == nil {
		h.id = 0
		return
	}
	h.owner.ReleaseObject(kind, h.id)
	h.id = 0
	h.owner = nil
}

// Buffer is a vertex or index buffer.
type Buffer struct {
	handle
	kind BufferKind
	size int
}

// NewBuffer wraps a backend buffer id.
func NewBuffer(owner Releaser, id uint32, kind BufferKind, size int) Buffer {
	return Buffer{handle: handle{id: id, owner: owner}, kind: kind, size: size}
}

// ID returns the backend id, zero once released.
func (b Buffer) ID() uint32 { return b.id }

// Valid reports whether the buffer has not been released.
func (b Buffer) Valid() bool { return b.id != 0 }

// Kind returns how the buffer is bound.
func (b Buffer) Kind() BufferKind { return b.kind }

// Size returns the buffer size in bytes.
func (b Buffer) Size() int { return b.size }

// Release destroys the buffer and zeroes the handle. Releasing twice is a no-op.
func (b *Buffer) Release() { b.release(ObjectBuffer) }

// Texture is an RGBA8 2D texture.
type Texture struct {
	handle
	width, height int
}

// NewTexture wraps a backend texture id.
func NewTexture(owner Releaser, id uint32, width, height int) Texture {
	return Texture{handle: handle{id: id, owner: owner}, width: width, height: height}
}

// ID returns the backend id, zero once released.
func (t Texture) ID() uint32 { return t.id }

// Valid reports whether the texture has not been released.
func (t Texture) Valid() bool { return t.id != 0 }

// Size returns the texture dimensions in pixels.
func (t Texture) Size() (int, int) { return t.width, t.height }

// Release destroys the texture and zeroes the handle. Releasing twice is a no-op.
func (t *Texture) Release() { t.release(ObjectTexture) }

// Program is a linked vertex/fragment program.
type Program struct {
	handle
	label string
}

// NewProgram wraps a backend program id.
func NewProgram(owner Releaser, id uint32, label string) Program {
	return Program{handle: handle{id: id, owner: owner}, label: label}
}

// ID returns the backend id, zero once released.
func (p Program) ID() uint32 { return p.id }

// Valid reports whether the program has not been released.
func (p Program) Valid() bool { return p.id != 0 }

// Label returns the program label.
func (p Program) Label() string { return p.label }

// Release destroys the program and zeroes the handle. Releasing twice is a no-op.
func (p *Program) Release() { p.release(ObjectProgram) }

// Target is an off-screen render target.
type Target struct {
	handle
	kind          TargetKind
	width, height int
	// Depth is the depth texture of a TargetDepth, bindable for sampling.
	Depth Texture
}

// NewTarget wraps a backend target id.
func NewTarget(owner Releaser, id uint32, kind TargetKind, width, height int) Target {
	return Target{handle: handle{id: id, owner: owner}, kind: kind, width: width, height: height}
}

// ID returns the backend id, zero once released.
func (t Target) ID() uint32 { return t.id }

// Valid reports whether the target has not been released.
func (t Target) Valid() bool { return t.id != 0 }

// Kind returns the target kind.
func (t Target) Kind() TargetKind { return t.kind }

// Size returns the target dimensions in pixels.
func (t Target) Size() (int, int) { return t.width, t.height }

// Release destroys the target and zeroes the handle. Releasing twice is a no-op.
func (t *Target) Release() {
	t.release(ObjectTarget)
	t.Depth.id = 0
	t.Depth.owner = nil
}
