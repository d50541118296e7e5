// Package gputest provides a recording gpu.Device for tests that exercise the renderer and drawer
// without a GPU.
package gputest

import (
	"fmt"
	"image/color"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
)

// Draw is one recorded DrawIndexed call with the state bound at the time.
type Draw struct {
	Program    uint32
	Mode       gpu.Primitive
	Count      int
	Attributes []gpu.Attribute
	Textures   map[int]uint32
	Index      uint32
	Target     uint32
	Uniforms   map[string]any
}

// Recorder is an in-memory gpu.Device. It keeps every live object so tests can check for leaks,
// records calls by name, and can be told to fail.
type Recorder struct {
	// Calls counts device calls by method name.
	Calls map[string]int
	// Draws lists every draw in order.
	Draws []Draw
	// Programs lists the labels of every program created, in order.
	Programs []string
	// Pixel is returned by ReadPixel.
	Pixel color.RGBA

	// FailCompile makes CreateProgram fail while set.
	FailCompile bool
	// FailAlloc makes buffer, texture and target creation fail with gpu.ErrOutOfMemory while set.
	FailAlloc bool
	// NoDepthTargets makes the device report the constrained capability set.
	NoDepthTargets bool

	nextID     uint32
	live       map[uint32]gpu.ObjectKind
	sizes      map[uint32][2]int
	attributes map[gpu.Attribute]uint32
	textures   map[int]uint32
	index      uint32
	program    uint32
	target     uint32
	uniforms   map[string]any
	lost       bool
	released   bool
}

var (
	_ gpu.Device      = &Recorder{}
	_ gpu.PixelReader = &Recorder{}
	_ gpu.Releaser    = &Recorder{}
	_ gpu.Restorer    = &Recorder{}
)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Calls:      make(map[string]int),
		live:       make(map[uint32]gpu.ObjectKind),
		sizes:      make(map[uint32][2]int),
		attributes: make(map[gpu.Attribute]uint32),
		textures:   make(map[int]uint32),
		uniforms:   make(map[string]any),
	}
}

func (r *Recorder) alloc(kind gpu.ObjectKind) uint32 {
	r.nextID++
	r.live[r.nextID] = kind
	return r.nextID
}

// Live returns the number of live objects of the given kind.
func (r *Recorder) Live(kind gpu.ObjectKind) int {
	n := 0
	for _, k := range r.live {
		if k == kind {
			n++
		}
	}
	return n
}

// IsLive reports whether the object with the given id has not been released.
func (r *Recorder) IsLive(id uint32) bool {
	_, ok := r.live[id]
	return ok
}

// EnabledAttributes returns the attributes currently enabled, in slot order.
func (r *Recorder) EnabledAttributes() []gpu.Attribute {
	return slices.Sorted(maps.Keys(r.attributes))
}

// BoundTextures returns the number of texture units with a texture bound.
func (r *Recorder) BoundTextures() int { return len(r.textures) }

// BoundIndexBuffer returns the id of the bound index buffer, zero if none.
func (r *Recorder) BoundIndexBuffer() uint32 { return r.index }

// Lost reports whether the device is in the lost state.
func (r *Recorder) Lost() bool { return r.lost }

func (r *Recorder) Capabilities() gpu.Capabilities {
	return gpu.Capabilities{DepthTargets: !r.NoDepthTargets, MaxTextureSize: 8192}
}

func (r *Recorder) CreateProgram(src gpu.ProgramSource) (gpu.Program, error) {
	r.Calls["CreateProgram"]++
	if r.lost {
		return gpu.Program{}, gpu.ErrContextLost
	}
	if r.FailCompile {
		return gpu.Program{}, fmt.Errorf("%s: %w", src.Label, gpu.ErrCompile)
	}
	r.Programs = append(r.Programs, src.Label)
	return gpu.NewProgram(r, r.alloc(gpu.ObjectProgram), src.Label), nil
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.Calls["UseProgram"]++
	r.program = p.ID()
	clear(r.uniforms)
}

func (r *Recorder) SetUniform(name string, value any) {
	r.Calls["SetUniform"]++
	r.uniforms[name] = value
}

func (r *Recorder) CreateBuffer(kind gpu.BufferKind, data []byte) (gpu.Buffer, error) {
	r.Calls["CreateBuffer"]++
	if r.lost {
		return gpu.Buffer{}, gpu.ErrContextLost
	}
	if r.FailAlloc {
		return gpu.Buffer{}, gpu.ErrOutOfMemory
	}
	return gpu.NewBuffer(r, r.alloc(gpu.ObjectBuffer), kind, len(data)), nil
}

func (r *Recorder) CreateTexture(data common.TextureStagingData, smooth bool) (gpu.Texture, error) {
	r.Calls["CreateTexture"]++
	if r.lost {
		return gpu.Texture{}, gpu.ErrContextLost
	}
	if r.FailAlloc {
		return gpu.Texture{}, gpu.ErrOutOfMemory
	}
	id := r.alloc(gpu.ObjectTexture)
	r.sizes[id] = [2]int{int(data.Width), int(data.Height)}
	return gpu.NewTexture(r, id, int(data.Width), int(data.Height)), nil
}

func (r *Recorder) CreateTarget(kind gpu.TargetKind, width, height int) (gpu.Target, error) {
	r.Calls["CreateTarget"]++
	if r.lost {
		return gpu.Target{}, gpu.ErrContextLost
	}
	if r.FailAlloc {
		return gpu.Target{}, gpu.ErrOutOfMemory
	}
	if kind == gpu.TargetDepth && r.NoDepthTargets {
		return gpu.Target{}, fmt.Errorf("depth targets unsupported")
	}
	id := r.alloc(gpu.ObjectTarget)
	r.sizes[id] = [2]int{width, height}
	return gpu.NewTarget(r, id, kind, width, height), nil
}

// TargetSize returns the size recorded for a live target or texture.
func (r *Recorder) TargetSize(id uint32) (int, int) {
	s := r.sizes[id]
	return s[0], s[1]
}

func (r *Recorder) EnableAttribute(a gpu.Attribute, b gpu.Buffer) {
	r.Calls["EnableAttribute"]++
	r.attributes[a] = b.ID()
}

func (r *Recorder) DisableAttribute(a gpu.Attribute) {
	r.Calls["DisableAttribute"]++
	delete(r.attributes, a)
}

func (r *Recorder) BindTexture(unit int, t gpu.Texture) {
	r.Calls["BindTexture"]++
	r.textures[unit] = t.ID()
}

func (r *Recorder) UnbindTexture(unit int) {
	r.Calls["UnbindTexture"]++
	delete(r.textures, unit)
}

func (r *Recorder) BindIndexBuffer(b gpu.Buffer) {
	r.Calls["BindIndexBuffer"]++
	r.index = b.ID()
}

func (r *Recorder) UnbindIndexBuffer() {
	r.Calls["UnbindIndexBuffer"]++
	r.index = 0
}

func (r *Recorder) DrawIndexed(mode gpu.Primitive, count int) error {
	r.Calls["DrawIndexed"]++
	if r.lost {
		return gpu.ErrContextLost
	}
	if r.program == 0 || r.index == 0 {
		return fmt.Errorf("draw without program or index buffer")
	}
	r.Draws = append(r.Draws, Draw{
		Program:    r.program,
		Mode:       mode,
		Count:      count,
		Attributes: r.EnabledAttributes(),
		Textures:   maps.Clone(r.textures),
		Index:      r.index,
		Target:     r.target,
		Uniforms:   maps.Clone(r.uniforms),
	})
	return nil
}

func (r *Recorder) BindTarget(t gpu.Target) {
	r.Calls["BindTarget"]++
	r.target = t.ID()
}

func (r *Recorder) Viewport(common.Rect) { r.Calls["Viewport"]++ }

func (r *Recorder) Clear(common.Color) { r.Calls["Clear"]++ }

func (r *Recorder) BeginFrame() error {
	r.Calls["BeginFrame"]++
	if r.lost {
		return gpu.ErrContextLost
	}
	r.target = 0
	return nil
}

func (r *Recorder) EndFrame() error {
	r.Calls["EndFrame"]++
	if r.lost {
		return gpu.ErrContextLost
	}
	return nil
}

func (r *Recorder) ReadPixel(t gpu.Target, x, y int) (color.RGBA, error) {
	r.Calls["ReadPixel"]++
	if r.lost {
		return color.RGBA{}, gpu.ErrContextLost
	}
	if !r.IsLive(t.ID()) {
		return color.RGBA{}, gpu.ErrInvalidHandle
	}
	w, h := r.TargetSize(t.ID())
	if x < 0 || y < 0 || x >= w || y >= h {
		return color.RGBA{}, fmt.Errorf("read pixel (%d, %d) outside %dx%d", x, y, w, h)
	}
	return r.Pixel, nil
}

func (r *Recorder) ReleaseObject(kind gpu.ObjectKind, id uint32) {
	r.Calls["Release"+kindName(kind)]++
	delete(r.live, id)
	delete(r.sizes, id)
}

func kindName(kind gpu.ObjectKind) string {
	switch kind {
	case gpu.ObjectBuffer:
		return "Buffer"
	case gpu.ObjectTexture:
		return "Texture"
	case gpu.ObjectProgram:
		return "Program"
	default:
		return "Target"
	}
}

// Lose simulates a context loss: every live object is dropped.
func (r *Recorder) Lose() {
	r.lost = true
	clear(r.live)
	clear(r.sizes)
	clear(r.attributes)
	clear(r.textures)
	r.index = 0
	r.program = 0
}

func (r *Recorder) Restore() error {
	r.Calls["Restore"]++
	r.lost = false
	return nil
}

func (r *Recorder) Release() {
	r.Calls["ReleaseDevice"]++
	r.released = true
}
