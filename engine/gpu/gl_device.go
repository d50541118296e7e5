package gpu

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type glProgram struct {
	id       uint32
	label    string
	uniforms map[string]int32
	types    map[string]UniformType
}

type glTarget struct {
	fbo   uint32
	color uint32
	depth uint32
	// rbo is the depth renderbuffer of a selection target.
	rbo    uint32
	kind   TargetKind
	width  int
	height int
}

type glDevice struct {
	cfg    deviceConfig
	logger *slog.Logger

	vao      uint32
	programs map[uint32]*glProgram
	targets  map[uint32]*glTarget
	current  *glProgram
	bound    *glTarget
	maxTex   int
	lost     bool
	released bool
}

var (
	_ Device      = &glDevice{}
	_ PixelReader = &glDevice{}
	_ Restorer    = &glDevice{}
	_ Releaser    = &glDevice{}
)

// NewGLDevice creates an OpenGL 3.3 core device on the context current on the calling thread.
// The caller must have locked the goroutine to its OS thread.
//
// Parameters:
//   - options: device options; WithSwapFunc is required to present frames
//
// Returns:
//   - Device: the device
//   - error: if the GL function pointers cannot be loaded
func NewGLDevice(options ...DeviceBuilderOption) (Device, error) {
	d := &glDevice{
		cfg:      newDeviceConfig(options),
		programs: make(map[uint32]*glProgram),
		targets:  make(map[uint32]*glTarget),
	}
	d.logger = d.cfg.logger
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *glDevice) init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d.logger.Info("opengl initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	var maxTex int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTex)
	d.maxTex = int(maxTex)
	d.lost = false
	return nil
}

func (d *glDevice) Capabilities() Capabilities {
	return Capabilities{DepthTargets: !d.cfg.constrained, MaxTextureSize: d.maxTex}
}

// Lose marks the context as gone, for example when the window recreated its context. Every call
// returns ErrContextLost until Restore succeeds.
func (d *glDevice) Lose() {
	d.lost = true
	d.programs = make(map[uint32]*glProgram)
	d.targets = make(map[uint32]*glTarget)
	d.current = nil
	d.bound = nil
}

// Restore reinitializes the device on the context current on the calling thread.
func (d *glDevice) Restore() error {
	return d.init()
}

// checkError maps the pending GL error to a device error.
func (d *glDevice) checkError(op string) error {
	code := gl.GetError()
	switch code {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		d.logger.Warn("gpu allocation failed", "op", op)
		return fmt.Errorf("%s: %w", op, ErrOutOfMemory)
	default:
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
}

func (d *glDevice) CreateProgram(src ProgramSource) (Program, error) {
	if d.lost {
		return Program{}, ErrContextLost
	}
	vs, err := compileShader(src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return Program{}, fmt.Errorf("%s vertex: %w", src.Label, err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return Program{}, fmt.Errorf("%s fragment: %w", src.Label, err)
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	for _, a := range src.Attributes {
		gl.BindAttribLocation(id, uint32(a), gl.Str(a.Name()+"\x00"))
	}
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return Program{}, fmt.Errorf("%s link: %w: %s", src.Label, ErrCompile, strings.TrimRight(log, "\x00"))
	}

	p := &glProgram{
		id:       id,
		label:    src.Label,
		uniforms: make(map[string]int32, len(src.Uniforms)),
		types:    make(map[string]UniformType, len(src.Uniforms)),
	}
	for _, u := range src.Uniforms {
		p.uniforms[u.Name] = gl.GetUniformLocation(id, gl.Str(u.Name+"\x00"))
		p.types[u.Name] = u.Type
	}

	gl.UseProgram(id)
	if src.Textured {
		gl.Uniform1i(gl.GetUniformLocation(id, gl.Str("u_texture\x00")), 0)
	}
	if src.DepthTexture {
		gl.Uniform1i(gl.GetUniformLocation(id, gl.Str("u_shadowMap\x00")), 1)
	}
	if d.current != nil {
		gl.UseProgram(d.current.id)
	}

	d.programs[id] = p
	return NewProgram(d, id, src.Label), nil
}

func compileShader(source string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", ErrCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (d *glDevice) UseProgram(p Program) {
	if d.lost {
		return
	}
	prog, ok := d.programs[p.ID()]
	if !ok {
		d.current = nil
		gl.UseProgram(0)
		return
	}
	d.current = prog
	gl.UseProgram(prog.id)
}

func (d *glDevice) SetUniform(name string, value any) {
	if d.lost || d.current == nil {
		return
	}
	loc, ok := d.current.uniforms[name]
	if !ok || loc < 0 {
		return
	}
	if !uniformMatches(d.current.types[name], value) {
		d.logger.Debug("uniform type mismatch", "program", d.current.label, "uniform", name)
		return
	}
	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case int32:
		gl.Uniform1i(loc, v)
	case mgl32.Vec2:
		gl.Uniform2fv(loc, 1, &v[0])
	case mgl32.Vec3:
		gl.Uniform3fv(loc, 1, &v[0])
	case mgl32.Vec4:
		gl.Uniform4fv(loc, 1, &v[0])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	}
}

func (d *glDevice) CreateBuffer(kind BufferKind, data []byte) (Buffer, error) {
	if d.lost {
		return Buffer{}, ErrContextLost
	}
	target := uint32(gl.ARRAY_BUFFER)
	if kind == BufferIndex {
		target = gl.ELEMENT_ARRAY_BUFFER
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(target, id)
	if len(data) > 0 {
		gl.BufferData(target, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	} else {
		gl.BufferData(target, 0, nil, gl.STATIC_DRAW)
	}
	gl.BindBuffer(target, 0)
	if err := d.checkError("create buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return Buffer{}, err
	}
	return NewBuffer(d, id, kind, len(data)), nil
}

func (d *glDevice) CreateTexture(data common.TextureStagingData, smooth bool) (Texture, error) {
	if d.lost {
		return Texture{}, ErrContextLost
	}
	if data.Width == 0 || data.Height == 0 || len(data.Pixels) < int(data.Width*data.Height*4) {
		return Texture{}, fmt.Errorf("create texture: invalid staging data %dx%d", data.Width, data.Height)
	}
	if d.maxTex > 0 && (int(data.Width) > d.maxTex || int(data.Height) > d.maxTex) {
		return Texture{}, fmt.Errorf("create texture %dx%d: %w", data.Width, data.Height, ErrOutOfMemory)
	}
	filter := int32(gl.NEAREST)
	if smooth {
		filter = gl.LINEAR
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(data.Width), int32(data.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data.Pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := d.checkError("create texture"); err != nil {
		gl.DeleteTextures(1, &id)
		return Texture{}, err
	}
	return NewTexture(d, id, int(data.Width), int(data.Height)), nil
}

func (d *glDevice) CreateTarget(kind TargetKind, width, height int) (Target, error) {
	if d.lost {
		return Target{}, ErrContextLost
	}
	if kind == TargetDepth && d.cfg.constrained {
		return Target{}, errors.New("depth targets are not supported on the constrained profile")
	}
	if width <= 0 || height <= 0 {
		return Target{}, fmt.Errorf("create target: invalid size %dx%d", width, height)
	}
	t := &glTarget{kind: kind, width: width, height: height}
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	switch kind {
	case TargetSelection:
		gl.GenTextures(1, &t.color)
		gl.BindTexture(gl.TEXTURE_2D, t.color)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color, 0)

		gl.GenRenderbuffers(1, &t.rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	case TargetDepth:
		gl.GenTextures(1, &t.depth)
		gl.BindTexture(gl.TEXTURE_2D, t.depth)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.depth, 0)
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	d.rebindTarget()
	if err := d.checkError("create target"); err != nil {
		d.deleteTarget(t)
		return Target{}, err
	}
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.deleteTarget(t)
		return Target{}, fmt.Errorf("create target: framebuffer incomplete 0x%x", status)
	}

	d.targets[t.fbo] = t
	target := NewTarget(d, t.fbo, kind, width, height)
	if kind == TargetDepth {
		target.Depth = NewTexture(nil, t.depth, width, height)
	}
	return target, nil
}

func (d *glDevice) rebindTarget() {
	if d.bound != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.bound.fbo)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *glDevice) deleteTarget(t *glTarget) {
	if t.color != 0 {
		gl.DeleteTextures(1, &t.color)
	}
	if t.depth != 0 {
		gl.DeleteTextures(1, &t.depth)
	}
	if t.rbo != 0 {
		gl.DeleteRenderbuffers(1, &t.rbo)
	}
	gl.DeleteFramebuffers(1, &t.fbo)
}

func (d *glDevice) EnableAttribute(a Attribute, b Buffer) {
	if d.lost {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.ID())
	gl.EnableVertexAttribArray(uint32(a))
	gl.VertexAttribPointer(uint32(a), int32(a.Components()), gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (d *glDevice) DisableAttribute(a Attribute) {
	if d.lost {
		return
	}
	gl.DisableVertexAttribArray(uint32(a))
}

func (d *glDevice) BindTexture(unit int, t Texture) {
	if d.lost {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.ID())
	gl.ActiveTexture(gl.TEXTURE0)
}

func (d *glDevice) UnbindTexture(unit int) {
	if d.lost {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (d *glDevice) BindIndexBuffer(b Buffer) {
	if d.lost {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ID())
}

func (d *glDevice) UnbindIndexBuffer() {
	if d.lost {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
}

func (d *glDevice) DrawIndexed(mode Primitive, count int) error {
	if d.lost {
		return ErrContextLost
	}
	if d.current == nil {
		return errors.New("draw: no program in use")
	}
	glMode := uint32(gl.TRIANGLES)
	if mode == PrimitiveLines {
		glMode = gl.LINES
	}
	gl.DrawElements(glMode, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(0))
	return d.checkError("draw")
}

func (d *glDevice) BindTarget(t Target) {
	if d.lost {
		return
	}
	d.bound = d.targets[t.ID()]
	d.rebindTarget()
	if d.bound != nil {
		gl.Viewport(0, 0, int32(d.bound.width), int32(d.bound.height))
	}
}

func (d *glDevice) Viewport(r common.Rect) {
	if d.lost {
		return
	}
	gl.Viewport(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
}

func (d *glDevice) Clear(c common.Color) {
	if d.lost {
		return
	}
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *glDevice) BeginFrame() error {
	if d.lost {
		return ErrContextLost
	}
	d.bound = nil
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (d *glDevice) EndFrame() error {
	if d.lost {
		return ErrContextLost
	}
	if d.cfg.swap != nil {
		d.cfg.swap()
	}
	return nil
}

func (d *glDevice) ReadPixel(t Target, x, y int) (color.RGBA, error) {
	if d.lost {
		return color.RGBA{}, ErrContextLost
	}
	target, ok := d.targets[t.ID()]
	if !ok || target.kind != TargetSelection {
		return color.RGBA{}, ErrInvalidHandle
	}
	if x < 0 || y < 0 || x >= target.width || y >= target.height {
		return color.RGBA{}, fmt.Errorf("read pixel (%d, %d) outside %dx%d target", x, y, target.width, target.height)
	}
	var px [4]uint8
	gl.BindFramebuffer(gl.FRAMEBUFFER, target.fbo)
	gl.ReadPixels(int32(x), int32(target.height-1-y), 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&px[0]))
	d.rebindTarget()
	if err := d.checkError("read pixel"); err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}, nil
}

func (d *glDevice) ReleaseObject(kind ObjectKind, id uint32) {
	if d.lost || d.released {
		return
	}
	switch kind {
	case ObjectBuffer:
		gl.DeleteBuffers(1, &id)
	case ObjectTexture:
		gl.DeleteTextures(1, &id)
	case ObjectProgram:
		if d.current != nil && d.current.id == id {
			d.current = nil
			gl.UseProgram(0)
		}
		delete(d.programs, id)
		gl.DeleteProgram(id)
	case ObjectTarget:
		t, ok := d.targets[id]
		if !ok {
			return
		}
		if d.bound == t {
			d.bound = nil
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		}
		delete(d.targets, id)
		d.deleteTarget(t)
	}
}

func (d *glDevice) Release() {
	if d.released {
		return
	}
	if !d.lost {
		for id := range d.programs {
			gl.DeleteProgram(id)
		}
		for _, t := range d.targets {
			d.deleteTarget(t)
		}
		gl.DeleteVertexArrays(1, &d.vao)
	}
	d.programs = nil
	d.targets = nil
	d.released = true
}
