// Package gpu is the narrow device layer the renderer and drawer issue commands through. A Device
// owns no scene state: it creates programs, buffers, textures and off-screen targets, and it
// draws indexed geometry with whatever attributes, texture and index buffer are bound at the time.
//
// Every call must come from the render goroutine that created the device.
package gpu

import (
	"errors"
	"image/color"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrContextLost is returned by any device call once the underlying context is gone. Every
	// handle created before the loss is invalid and must be recreated.
	ErrContextLost = errors.New("gpu context lost")

	// ErrOutOfMemory is returned when an allocation fails.
	ErrOutOfMemory = errors.New("gpu out of memory")

	// ErrCompile is wrapped by program creation failures together with the compiler log.
	ErrCompile = errors.New("shader compilation failed")

	// ErrInvalidHandle is returned when a released or foreign handle is passed to a device.
	ErrInvalidHandle = errors.New("invalid gpu handle")
)

// Attribute is a vertex attribute slot. Each attribute is fed from its own buffer.
type Attribute int

const (
	AttributePosition Attribute = iota
	AttributeNormal
	AttributeUV
)

// Components returns the number of float32 components of the attribute.
func (a Attribute) Components() int {
	if a == AttributeUV {
		return 2
	}
	return 3
}

// Name returns the shader input name bound to the attribute.
func (a Attribute) Name() string {
	switch a {
	case AttributePosition:
		return "a_position"
	case AttributeNormal:
		return "a_normal"
	default:
		return "a_uv"
	}
}

// BufferKind tells the device how a buffer is bound.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
)

// Primitive is the topology of an indexed draw.
type Primitive int

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
)

// TargetKind is the kind of off-screen render target.
type TargetKind int

const (
	// TargetSelection is an RGBA8 color target with its own depth attachment, used for ID picking.
	TargetSelection TargetKind = iota
	// TargetDepth is a depth-only target, used for shadow maps and the depth pre-pass.
	TargetDepth
)

// UniformType is the type of a program uniform.
type UniformType int

const (
	UniformFloat UniformType = iota
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
)

// Uniform declares one named uniform of a program. Uniform lists are ordered; backends that pack
// uniforms into a block do so in declaration order.
type Uniform struct {
	Name string
	Type UniformType
}

// ProgramSource is the backend-specific source of a vertex/fragment program pair.
type ProgramSource struct {
	Label    string
	Vertex   string
	Fragment string
	// Attributes lists the vertex attributes the vertex stage reads.
	Attributes []Attribute
	Uniforms   []Uniform
	// Textured programs sample texture unit 0.
	Textured bool
	// DepthTexture programs sample a shadow map on texture unit 1.
	DepthTexture bool
}

// Capabilities describes what a device supports.
type Capabilities struct {
	// DepthTargets reports whether depth-only targets can be created.
	DepthTargets bool
	// MaxTextureSize is the largest texture edge in pixels.
	MaxTextureSize int
}

// Device is the command surface of a GPU backend.
type Device interface {
	// Capabilities reports what the device supports.
	//
	// Returns:
	//   - Capabilities: the device capabilities
	Capabilities() Capabilities

	// CreateProgram compiles and links a program.
	//
	// Parameters:
	//   - src: the program source for this backend
	//
	// Returns:
	//   - Program: the linked program
	//   - error: wraps ErrCompile with the compiler log, or ErrContextLost
	CreateProgram(src ProgramSource) (Program, error)

	// UseProgram makes p the program for following draws.
	UseProgram(p Program)

	// SetUniform sets a uniform of the current program. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the uniform name as declared in ProgramSource.Uniforms
	//   - value: float32, int32, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4 or mgl32.Mat4
	SetUniform(name string, value any)

	// CreateBuffer allocates a buffer initialized with data.
	//
	// Parameters:
	//   - kind: whether the buffer feeds vertices or indices
	//   - data: the initial contents
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: ErrOutOfMemory or ErrContextLost
	CreateBuffer(kind BufferKind, data []byte) (Buffer, error)

	// CreateTexture uploads an RGBA8 2D texture.
	//
	// Parameters:
	//   - data: the pixels and dimensions
	//   - smooth: linear filtering when true, nearest otherwise
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: ErrOutOfMemory or ErrContextLost
	CreateTexture(data common.TextureStagingData, smooth bool) (Texture, error)

	// CreateTarget allocates an off-screen target of the given size.
	//
	// Returns:
	//   - Target: the new target
	//   - error: ErrOutOfMemory, ErrContextLost, or an error when the kind is unsupported
	CreateTarget(kind TargetKind, width, height int) (Target, error)

	// EnableAttribute feeds attribute a from buffer b for following draws.
	EnableAttribute(a Attribute, b Buffer)

	// DisableAttribute stops feeding attribute a.
	DisableAttribute(a Attribute)

	// BindTexture binds t to texture unit unit.
	BindTexture(unit int, t Texture)

	// UnbindTexture clears texture unit unit.
	UnbindTexture(unit int)

	// BindIndexBuffer binds b as the index buffer for following draws.
	BindIndexBuffer(b Buffer)

	// UnbindIndexBuffer clears the index buffer binding.
	UnbindIndexBuffer()

	// DrawIndexed draws count uint32 indices from the bound index buffer.
	//
	// Returns:
	//   - error: ErrContextLost, or an error when no program or index buffer is bound
	DrawIndexed(mode Primitive, count int) error

	// BindTarget redirects following draws to t. A zero Target selects the window surface.
	BindTarget(t Target)

	// Viewport sets the drawing rectangle of the bound target.
	Viewport(r common.Rect)

	// Clear clears the bound target's color to c and its depth to the far plane.
	Clear(c common.Color)

	// BeginFrame starts a frame on the window surface.
	//
	// Returns:
	//   - error: ErrContextLost when the surface is gone
	BeginFrame() error

	// EndFrame submits the frame and presents it.
	//
	// Returns:
	//   - error: ErrContextLost when submission fails because the device is gone
	EndFrame() error

	// Release destroys the device. Handles must be released first.
	Release()
}

// PixelReader is implemented by devices that can read back a pixel of an off-screen target.
type PixelReader interface {
	// ReadPixel returns the color at (x, y) of target t, with y measured from the top.
	//
	// Returns:
	//   - color.RGBA: the pixel
	//   - error: ErrContextLost, or an error if the position is outside the target
	ReadPixel(t Target, x, y int) (color.RGBA, error)
}

// Restorer is implemented by devices whose context can be lost and recreated in place.
type Restorer interface {
	// Lose marks the context as gone. Every call returns ErrContextLost until Restore succeeds.
	Lose()

	// Restore reinitializes the device on a fresh context.
	Restore() error
}

// SurfaceResizer is implemented by devices whose window surface must be reconfigured on resize.
type SurfaceResizer interface {
	ResizeSurface(width, height int) error
}

// EncodeID packs a selection id into an RGBA color. Zero is reserved for "nothing".
func EncodeID(id uint32) common.Color {
	return common.Color{
		float32(id&0xff) / 255,
		float32(id>>8&0xff) / 255,
		float32(id>>16&0xff) / 255,
		1,
	}
}

// DecodeID is the inverse of EncodeID.
func DecodeID(c color.RGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}

func uniformMatches(t UniformType, value any) bool {
	switch value.(type) {
	case float32:
		return t == UniformFloat
	case int32:
		return t == UniformInt
	case mgl32.Vec2:
		return t == UniformVec2
	case mgl32.Vec3:
		return t == UniformVec3
	case mgl32.Vec4:
		return t == UniformVec4
	case mgl32.Mat4:
		return t == UniformMat4
	}
	return false
}
