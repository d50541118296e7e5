package gpu

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"runtime"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// uniformRingSize is the per-frame uniform arena. Each draw takes one aligned slice of it.
	uniformRingSize  = 1 << 20
	uniformAlignment = 256
	// surfaceTarget is the target id of the window surface.
	surfaceTarget = 0
)

type uniformSlot struct {
	offset int
	kind   UniformType
}

type wgpuProgram struct {
	label     string
	src       ProgramSource
	vs, fs    *wgpu.ShaderModule
	layout    *wgpu.BindGroupLayout
	plLayout  *wgpu.PipelineLayout
	pipelines map[pipelineKey]*wgpu.RenderPipeline
	slots     map[string]uniformSlot
	block     []byte
}

type pipelineKey struct {
	target TargetKind
	// surface is set for pipelines drawing to the window surface.
	surface bool
	mode    Primitive
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	depth   bool
	smooth  bool
	// owned is false for the depth texture of a target, which the target releases.
	owned bool
}

type wgpuTarget struct {
	kind       TargetKind
	width      int
	height     int
	color      *wgpu.Texture
	colorView  *wgpu.TextureView
	depth      *wgpu.Texture
	depthView  *wgpu.TextureView
	depthTexID uint32
}

type bindGroupKey struct {
	program, texture, depth uint32
}

type wgpuDevice struct {
	cfg    deviceConfig
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	surfaceWidth     int
	surfaceHeight    int
	presentMode      wgpu.PresentMode
	sampleCount      uint32
	msaaView         *wgpu.TextureView
	msaaTexture      *wgpu.Texture
	surfaceDepth     *wgpu.Texture
	surfaceDepthView *wgpu.TextureView

	sampler     *wgpu.Sampler
	nearest     *wgpu.Sampler
	cmpSampler  *wgpu.Sampler
	white       *wgpuTexture
	blankDepth  *wgpuTexture
	uniformRing *wgpu.Buffer
	ringOffset  uint64
	readback    *wgpu.Buffer

	nextID     uint32
	programs   map[uint32]*wgpuProgram
	buffers    map[uint32]*wgpu.Buffer
	textures   map[uint32]*wgpuTexture
	targets    map[uint32]*wgpuTarget
	bindGroups map[bindGroupKey]*wgpu.BindGroup

	// Per-frame state.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	encoder      *wgpu.CommandEncoder
	pass         *wgpu.RenderPassEncoder
	passTarget   uint32
	target       uint32
	viewport     common.Rect
	hasViewport  bool

	current    uint32
	attributes map[Attribute]uint32
	units      map[int]uint32
	index      uint32

	lost     bool
	released bool
}

var (
	_ Device      = &wgpuDevice{}
	_ PixelReader = &wgpuDevice{}
	_ Restorer    = &wgpuDevice{}
	_ Releaser    = &wgpuDevice{}

	_ SurfaceResizer = &wgpuDevice{}
)

// NewWGPUDevice creates a WebGPU device presenting to the surface given with
// WithSurfaceDescriptor. The calling goroutine is locked to its OS thread.
//
// Parameters:
//   - options: device options; WithSurfaceDescriptor is required
//
// Returns:
//   - Device: the device
//   - error: if no adapter or device could be acquired
func NewWGPUDevice(options ...DeviceBuilderOption) (Device, error) {
	runtime.LockOSThread()
	cfg := newDeviceConfig(options)
	if cfg.surface == nil {
		return nil, errors.New("wgpu device requires a surface descriptor")
	}
	d := &wgpuDevice{
		cfg:         cfg,
		logger:      cfg.logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: 4,
		programs:    make(map[uint32]*wgpuProgram),
		buffers:     make(map[uint32]*wgpu.Buffer),
		textures:    make(map[uint32]*wgpuTexture),
		targets:     make(map[uint32]*wgpuTarget),
		bindGroups:  make(map[bindGroupKey]*wgpu.BindGroup),
		attributes:  make(map[Attribute]uint32),
		units:       make(map[int]uint32),
	}
	if cfg.presentMode == PresentModeVSync {
		d.presentMode = wgpu.PresentModeFifo
	}
	d.surface = d.instance.CreateSurface(cfg.surface)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = adapter

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init acquires the device and every per-device resource. It runs again on Restore.
func (d *wgpuDevice) init() error {
	device, err := d.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-vis device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to request device: %w", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	if err := d.configureSurface(d.cfg.width, d.cfg.height); err != nil {
		return err
	}

	d.sampler, err = d.createSampler("linear", wgpu.FilterModeLinear, wgpu.CompareFunctionUndefined)
	if err != nil {
		return err
	}
	d.nearest, err = d.createSampler("nearest", wgpu.FilterModeNearest, wgpu.CompareFunctionUndefined)
	if err != nil {
		return err
	}
	d.cmpSampler, err = d.createSampler("shadow", wgpu.FilterModeLinear, wgpu.CompareFunctionLessEqual)
	if err != nil {
		return err
	}

	d.uniformRing, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "uniform ring",
		Size:  uniformRingSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform ring: %w", err)
	}
	d.readback, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "pixel readback",
		Size:  uniformAlignment,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create readback buffer: %w", err)
	}

	white, err := d.newTexture(common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1})
	if err != nil {
		return err
	}
	d.white = white
	blank, err := d.newDepthTexture("blank shadow map", 1, 1)
	if err != nil {
		return err
	}
	d.blankDepth = blank
	d.lost = false
	return nil
}

func (d *wgpuDevice) createSampler(label string, filter wgpu.FilterMode, compare wgpu.CompareFunction) (*wgpu.Sampler, error) {
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       compare,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s sampler: %w", label, err)
	}
	return s, nil
}

// ResizeSurface reconfigures the window surface and its depth and MSAA attachments.
func (d *wgpuDevice) ResizeSurface(width, height int) error {
	if d.lost {
		return ErrContextLost
	}
	if width <= 0 || height <= 0 || (width == d.surfaceWidth && height == d.surfaceHeight) {
		return nil
	}
	return d.configureSurface(width, height)
}

func (d *wgpuDevice) configureSurface(width, height int) error {
	capabilities := d.surface.GetCapabilities(d.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no formats")
	}
	d.surfaceFormat = capabilities.Formats[0]
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.surfaceWidth, d.surfaceHeight = width, height

	if d.msaaTexture != nil {
		d.msaaView.Release()
		d.msaaTexture.Release()
		d.msaaView, d.msaaTexture = nil, nil
	}
	if d.surfaceDepth != nil {
		d.surfaceDepthView.Release()
		d.surfaceDepth.Release()
	}

	var err error
	if d.sampleCount > 1 {
		d.msaaTexture, d.msaaView, err = d.attachment("msaa", width, height, d.sampleCount, d.surfaceFormat)
		if err != nil {
			return err
		}
	}
	d.surfaceDepth, d.surfaceDepthView, err = d.attachment("surface depth", width, height, d.sampleCount, wgpu.TextureFormatDepth24Plus)
	return err
}

func (d *wgpuDevice) attachment(label string, width, height int, samples uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s texture: %w", label, ErrOutOfMemory)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (d *wgpuDevice) Capabilities() Capabilities {
	limits := d.device.GetLimits()
	return Capabilities{
		DepthTargets:   !d.cfg.constrained,
		MaxTextureSize: int(limits.Limits.MaxTextureDimension2D),
	}
}

func (d *wgpuDevice) alloc() uint32 {
	d.nextID++
	return d.nextID
}

func (d *wgpuDevice) CreateProgram(src ProgramSource) (Program, error) {
	if d.lost {
		return Program{}, ErrContextLost
	}
	vs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          src.Label + " vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src.Vertex},
	})
	if err != nil {
		return Program{}, fmt.Errorf("%s vertex: %w: %v", src.Label, ErrCompile, err)
	}
	fs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          src.Label + " fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src.Fragment},
	})
	if err != nil {
		vs.Release()
		return Program{}, fmt.Errorf("%s fragment: %w: %v", src.Label, ErrCompile, err)
	}

	slots, size := packUniforms(src.Uniforms)
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   src.Label + " layout",
		Entries: programLayoutEntries(src, uint64(size)),
	})
	if err != nil {
		vs.Release()
		fs.Release()
		return Program{}, fmt.Errorf("%s layout: %w", src.Label, err)
	}
	plLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            src.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		vs.Release()
		fs.Release()
		layout.Release()
		return Program{}, fmt.Errorf("%s pipeline layout: %w", src.Label, err)
	}

	id := d.alloc()
	d.programs[id] = &wgpuProgram{
		label:     src.Label,
		src:       src,
		vs:        vs,
		fs:        fs,
		layout:    layout,
		plLayout:  plLayout,
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
		slots:     slots,
		block:     make([]byte, size),
	}
	return NewProgram(d, id, src.Label), nil
}

// packUniforms lays uniforms out with WGSL uniform address space alignment, in declaration order.
func packUniforms(uniforms []Uniform) (map[string]uniformSlot, int) {
	slots := make(map[string]uniformSlot, len(uniforms))
	offset := 0
	for _, u := range uniforms {
		size, align := 4, 4
		switch u.Type {
		case UniformVec2:
			size, align = 8, 8
		case UniformVec3:
			size, align = 12, 16
		case UniformVec4:
			size, align = 16, 16
		case UniformMat4:
			size, align = 64, 16
		}
		offset = (offset + align - 1) / align * align
		slots[u.Name] = uniformSlot{offset: offset, kind: u.Type}
		offset += size
	}
	size := (offset + 15) / 16 * 16
	return slots, max(size, 16)
}

func programLayoutEntries(src ProgramSource, blockSize uint64) []wgpu.BindGroupLayoutEntry {
	entries := []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   blockSize,
		},
	}}
	if src.Textured {
		entries = append(entries,
			wgpu.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			wgpu.BindGroupLayoutEntry{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		)
	}
	if src.DepthTexture {
		entries = append(entries,
			wgpu.BindGroupLayoutEntry{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			wgpu.BindGroupLayoutEntry{
				Binding:    4,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
			},
		)
	}
	return entries
}

func (d *wgpuDevice) UseProgram(p Program) {
	if _, ok := d.programs[p.ID()]; !ok {
		d.current = 0
		return
	}
	d.current = p.ID()
}

func (d *wgpuDevice) SetUniform(name string, value any) {
	prog := d.programs[d.current]
	if prog == nil {
		return
	}
	slot, ok := prog.slots[name]
	if !ok || !uniformMatches(slot.kind, value) {
		return
	}
	var raw []byte
	switch v := value.(type) {
	case float32:
		raw = common.SliceToBytes([]float32{v})
	case int32:
		raw = common.SliceToBytes([]int32{v})
	case mgl32.Vec2:
		raw = common.SliceToBytes(v[:])
	case mgl32.Vec3:
		raw = common.SliceToBytes(v[:])
	case mgl32.Vec4:
		raw = common.SliceToBytes(v[:])
	case mgl32.Mat4:
		raw = common.SliceToBytes(v[:])
	}
	copy(prog.block[slot.offset:], raw)
}

func (d *wgpuDevice) CreateBuffer(kind BufferKind, data []byte) (Buffer, error) {
	if d.lost {
		return Buffer{}, ErrContextLost
	}
	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	label := "vertex buffer"
	if kind == BufferIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
		label = "index buffer"
	}
	// Buffer sizes must be a multiple of four bytes.
	size := (uint64(len(data)) + 3) &^ 3
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  max(size, 4),
		Usage: usage,
	})
	if err != nil {
		d.logger.Warn("gpu allocation failed", "op", "create buffer", "bytes", len(data), "err", err)
		return Buffer{}, fmt.Errorf("create buffer: %w", ErrOutOfMemory)
	}
	if len(data) > 0 {
		padded := data
		if uint64(len(data)) != size {
			padded = make([]byte, size)
			copy(padded, data)
		}
		d.queue.WriteBuffer(buf, 0, padded)
	}
	id := d.alloc()
	d.buffers[id] = buf
	return NewBuffer(d, id, kind, len(data)), nil
}

func (d *wgpuDevice) newTexture(data common.TextureStagingData) (*wgpuTexture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", ErrOutOfMemory)
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &wgpuTexture{texture: tex, view: view, owned: true}, nil
}

func (d *wgpuDevice) newDepthTexture(label string, width, height int) (*wgpuTexture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, ErrOutOfMemory)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return &wgpuTexture{texture: tex, view: view, depth: true, owned: true}, nil
}

func (d *wgpuDevice) CreateTexture(data common.TextureStagingData, smooth bool) (Texture, error) {
	if d.lost {
		return Texture{}, ErrContextLost
	}
	if data.Width == 0 || data.Height == 0 || len(data.Pixels) < int(data.Width*data.Height*4) {
		return Texture{}, fmt.Errorf("create texture: invalid staging data %dx%d", data.Width, data.Height)
	}
	t, err := d.newTexture(data)
	if err != nil {
		d.logger.Warn("gpu allocation failed", "op", "create texture", "width", data.Width, "height", data.Height)
		return Texture{}, err
	}
	t.smooth = smooth
	id := d.alloc()
	d.textures[id] = t
	return NewTexture(d, id, int(data.Width), int(data.Height)), nil
}

func (d *wgpuDevice) CreateTarget(kind TargetKind, width, height int) (Target, error) {
	if d.lost {
		return Target{}, ErrContextLost
	}
	if kind == TargetDepth && d.cfg.constrained {
		return Target{}, errors.New("depth targets are not supported on the constrained profile")
	}
	if width <= 0 || height <= 0 {
		return Target{}, fmt.Errorf("create target: invalid size %dx%d", width, height)
	}
	t := &wgpuTarget{kind: kind, width: width, height: height}
	id := d.alloc()
	switch kind {
	case TargetSelection:
		tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "selection target",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		})
		if err != nil {
			d.logger.Warn("gpu allocation failed", "op", "create selection target", "width", width, "height", height)
			return Target{}, fmt.Errorf("create selection target: %w", ErrOutOfMemory)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return Target{}, err
		}
		t.color, t.colorView = tex, view
		t.depth, t.depthView, err = d.attachment("selection depth", width, height, 1, wgpu.TextureFormatDepth24Plus)
		if err != nil {
			view.Release()
			tex.Release()
			return Target{}, err
		}
	case TargetDepth:
		depth, err := d.newDepthTexture("shadow map", width, height)
		if err != nil {
			d.logger.Warn("gpu allocation failed", "op", "create depth target", "width", width, "height", height)
			return Target{}, err
		}
		depth.owned = false
		t.depth, t.depthView = depth.texture, depth.view
		t.depthTexID = d.alloc()
		d.textures[t.depthTexID] = depth
	}
	d.targets[id] = t
	target := NewTarget(d, id, kind, width, height)
	if kind == TargetDepth {
		target.Depth = NewTexture(nil, t.depthTexID, width, height)
	}
	return target, nil
}

func (d *wgpuDevice) EnableAttribute(a Attribute, b Buffer) { d.attributes[a] = b.ID() }

func (d *wgpuDevice) DisableAttribute(a Attribute) { delete(d.attributes, a) }

func (d *wgpuDevice) BindTexture(unit int, t Texture) { d.units[unit] = t.ID() }

func (d *wgpuDevice) UnbindTexture(unit int) { delete(d.units, unit) }

func (d *wgpuDevice) BindIndexBuffer(b Buffer) { d.index = b.ID() }

func (d *wgpuDevice) UnbindIndexBuffer() { d.index = 0 }

func (d *wgpuDevice) BindTarget(t Target) {
	id := t.ID()
	if _, ok := d.targets[id]; !ok {
		id = surfaceTarget
	}
	if id != d.target {
		d.endPass()
		d.target = id
		d.hasViewport = false
	}
}

func (d *wgpuDevice) Viewport(r common.Rect) {
	d.viewport = r
	d.hasViewport = true
	if d.pass != nil {
		d.applyViewport()
	}
}

func (d *wgpuDevice) applyViewport() {
	if !d.hasViewport || d.viewport.Empty() {
		return
	}
	v := d.viewport
	d.pass.SetViewport(float32(v.X), float32(v.Y), float32(v.Width), float32(v.Height), 0, 1)
}

func (d *wgpuDevice) Clear(c common.Color) {
	if d.lost {
		return
	}
	d.endPass()
	if err := d.beginPass(wgpu.LoadOpClear, c); err != nil {
		d.logger.Debug("clear skipped", "err", err)
	}
}

func (d *wgpuDevice) ensureEncoder() error {
	if d.encoder != nil {
		return nil
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	d.encoder = encoder
	return nil
}

func (d *wgpuDevice) beginPass(load wgpu.LoadOp, c common.Color) error {
	if err := d.ensureEncoder(); err != nil {
		return err
	}
	desc := &wgpu.RenderPassDescriptor{}
	clearValue := wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
	depthLoad := load

	if d.target == surfaceTarget {
		if d.frameView == nil {
			return errors.New("no frame in progress")
		}
		attachment := wgpu.RenderPassColorAttachment{
			View:       d.frameView,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		}
		if d.sampleCount > 1 {
			attachment.View = d.msaaView
			attachment.ResolveTarget = d.frameView
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{attachment}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            d.surfaceDepthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	} else {
		t := d.targets[d.target]
		if t.colorView != nil {
			desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
				View:       t.colorView,
				LoadOp:     load,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearValue,
			}}
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}
	d.pass = d.encoder.BeginRenderPass(desc)
	d.passTarget = d.target
	d.applyViewport()
	return nil
}

func (d *wgpuDevice) endPass() {
	if d.pass == nil {
		return
	}
	d.pass.End()
	d.pass.Release()
	d.pass = nil
}

func (d *wgpuDevice) pipeline(prog *wgpuProgram, mode Primitive) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{mode: mode, surface: d.target == surfaceTarget}
	samples := uint32(1)
	depthFormat := wgpu.TextureFormatDepth24Plus
	var colorFormat *wgpu.TextureFormat
	if key.surface {
		samples = d.sampleCount
		colorFormat = &d.surfaceFormat
	} else {
		t := d.targets[d.target]
		key.target = t.kind
		if t.kind == TargetDepth {
			depthFormat = wgpu.TextureFormatDepth32Float
		} else {
			f := wgpu.TextureFormatRGBA8Unorm
			colorFormat = &f
		}
	}
	if p, ok := prog.pipelines[key]; ok {
		return p, nil
	}

	buffers := make([]wgpu.VertexBufferLayout, len(prog.src.Attributes))
	for i, a := range prog.src.Attributes {
		format := wgpu.VertexFormatFloat32x3
		if a.Components() == 2 {
			format = wgpu.VertexFormatFloat32x2
		}
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(a.Components() * 4),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         format,
				Offset:         0,
				ShaderLocation: uint32(a),
			}},
		}
	}

	topology := wgpu.PrimitiveTopologyTriangleList
	cull := wgpu.CullModeBack
	if mode == PrimitiveLines {
		topology = wgpu.PrimitiveTopologyLineList
		cull = wgpu.CullModeNone
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  prog.label,
		Layout: prog.plLayout,
		Vertex: wgpu.VertexState{
			Module:     prog.vs,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	}
	if colorFormat != nil {
		desc.Fragment = &wgpu.FragmentState{
			Module:     prog.fs,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    *colorFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				},
			}},
		}
	}
	p, err := d.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", prog.label, err)
	}
	prog.pipelines[key] = p
	return p, nil
}

func (d *wgpuDevice) bindGroup(programID uint32, prog *wgpuProgram) (*wgpu.BindGroup, error) {
	key := bindGroupKey{program: programID}
	if prog.src.Textured {
		key.texture = d.units[0]
	}
	if prog.src.DepthTexture {
		key.depth = d.units[1]
	}
	if bg, ok := d.bindGroups[key]; ok {
		return bg, nil
	}

	entries := []wgpu.BindGroupEntry{{
		Binding: 0,
		Buffer:  d.uniformRing,
		Offset:  0,
		Size:    uint64(len(prog.block)),
	}}
	if prog.src.Textured {
		tex := d.textures[key.texture]
		if tex == nil || tex.depth {
			tex = d.white
		}
		sampler := d.nearest
		if tex.smooth {
			sampler = d.sampler
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: 1, TextureView: tex.view},
			wgpu.BindGroupEntry{Binding: 2, Sampler: sampler},
		)
	}
	if prog.src.DepthTexture {
		tex := d.textures[key.depth]
		if tex == nil || !tex.depth {
			tex = d.blankDepth
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: 3, TextureView: tex.view},
			wgpu.BindGroupEntry{Binding: 4, Sampler: d.cmpSampler},
		)
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.label + " bind group",
		Layout:  prog.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	d.bindGroups[key] = bg
	return bg, nil
}

func (d *wgpuDevice) DrawIndexed(mode Primitive, count int) error {
	if d.lost {
		return ErrContextLost
	}
	prog := d.programs[d.current]
	if prog == nil {
		return errors.New("draw: no program in use")
	}
	index := d.buffers[d.index]
	if index == nil {
		return errors.New("draw: no index buffer bound")
	}
	if d.pass == nil {
		if err := d.beginPass(wgpu.LoadOpLoad, common.Color{}); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
	}
	pipeline, err := d.pipeline(prog, mode)
	if err != nil {
		return err
	}
	bg, err := d.bindGroup(d.current, prog)
	if err != nil {
		return err
	}

	offset := (d.ringOffset + uniformAlignment - 1) / uniformAlignment * uniformAlignment
	if offset+uint64(len(prog.block)) > uniformRingSize {
		return fmt.Errorf("draw: uniform ring exhausted: %w", ErrOutOfMemory)
	}
	d.queue.WriteBuffer(d.uniformRing, offset, prog.block)
	d.ringOffset = offset + uint64(len(prog.block))

	d.pass.SetPipeline(pipeline)
	d.pass.SetBindGroup(0, bg, []uint32{uint32(offset)})
	for slot, a := range prog.src.Attributes {
		buf := d.buffers[d.attributes[a]]
		if buf == nil {
			return fmt.Errorf("draw: attribute %s not enabled", a.Name())
		}
		d.pass.SetVertexBuffer(uint32(slot), buf, 0, wgpu.WholeSize)
	}
	d.pass.SetIndexBuffer(index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	d.pass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	return nil
}

func (d *wgpuDevice) BeginFrame() error {
	if d.lost {
		return ErrContextLost
	}
	if d.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		// An outdated surface is reconfigured once; a second failure means the device is gone.
		if cfgErr := d.configureSurface(d.surfaceWidth, d.surfaceHeight); cfgErr != nil {
			return fmt.Errorf("%w: %v", ErrContextLost, cfgErr)
		}
		surfaceTexture, err = d.surface.GetCurrentTexture()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrContextLost, err)
		}
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	d.frameSurface = surfaceTexture
	d.frameView = view
	d.target = surfaceTarget
	d.ringOffset = 0
	return nil
}

// submit ends the open pass and submits the recorded commands.
func (d *wgpuDevice) submit() error {
	d.endPass()
	if d.encoder == nil {
		return nil
	}
	commandBuffer, err := d.encoder.Finish(nil)
	d.encoder.Release()
	d.encoder = nil
	if err != nil {
		return err
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (d *wgpuDevice) EndFrame() error {
	if d.lost {
		return ErrContextLost
	}
	err := d.submit()
	if d.frameSurface != nil {
		if err == nil {
			d.surface.Present()
		}
		d.frameView.Release()
		d.frameSurface.Release()
		d.frameView = nil
		d.frameSurface = nil
	}
	return err
}

func (d *wgpuDevice) ReadPixel(t Target, x, y int) (color.RGBA, error) {
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
	d.endPass()
	if err := d.ensureEncoder(); err != nil {
		return color.RGBA{}, err
	}
	err := d.encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  target.color,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(x), Y: uint32(y)},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: d.readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uniformAlignment,
				RowsPerImage: 1,
			},
		},
		&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return color.RGBA{}, err
	}
	if err := d.submit(); err != nil {
		return color.RGBA{}, err
	}

	var status wgpu.BufferMapAsyncStatus
	if err := d.readback.MapAsync(wgpu.MapModeRead, 0, uniformAlignment, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	}); err != nil {
		return color.RGBA{}, err
	}
	d.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return color.RGBA{}, fmt.Errorf("read pixel: map failed with status %v", status)
	}
	px := d.readback.GetMappedRange(0, 4)
	c := color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	d.readback.Unmap()
	return c, nil
}

func (d *wgpuDevice) dropBindGroups(match func(bindGroupKey) bool) {
	for k, bg := range d.bindGroups {
		if match(k) {
			bg.Release()
			delete(d.bindGroups, k)
		}
	}
}

func (d *wgpuDevice) ReleaseObject(kind ObjectKind, id uint32) {
	if d.released {
		return
	}
	switch kind {
	case ObjectBuffer:
		if buf, ok := d.buffers[id]; ok {
			buf.Release()
			delete(d.buffers, id)
		}
	case ObjectTexture:
		if tex, ok := d.textures[id]; ok && tex.owned {
			d.dropBindGroups(func(k bindGroupKey) bool { return k.texture == id })
			tex.view.Release()
			tex.texture.Release()
			delete(d.textures, id)
		}
	case ObjectProgram:
		prog, ok := d.programs[id]
		if !ok {
			return
		}
		d.dropBindGroups(func(k bindGroupKey) bool { return k.program == id })
		for _, p := range prog.pipelines {
			p.Release()
		}
		prog.plLayout.Release()
		prog.layout.Release()
		prog.vs.Release()
		prog.fs.Release()
		delete(d.programs, id)
		if d.current == id {
			d.current = 0
		}
	case ObjectTarget:
		t, ok := d.targets[id]
		if !ok {
			return
		}
		if d.target == id {
			d.endPass()
			d.target = surfaceTarget
		}
		if t.depthTexID != 0 {
			d.dropBindGroups(func(k bindGroupKey) bool { return k.depth == t.depthTexID })
			delete(d.textures, t.depthTexID)
		}
		if t.colorView != nil {
			t.colorView.Release()
			t.color.Release()
		}
		t.depthView.Release()
		t.depth.Release()
		delete(d.targets, id)
	}
}

// Lose marks the device as gone. Objects are dropped without release calls.
func (d *wgpuDevice) Lose() {
	d.lost = true
	d.pass = nil
	d.encoder = nil
	d.frameSurface = nil
	d.frameView = nil
	d.programs = make(map[uint32]*wgpuProgram)
	d.buffers = make(map[uint32]*wgpu.Buffer)
	d.textures = make(map[uint32]*wgpuTexture)
	d.targets = make(map[uint32]*wgpuTarget)
	d.bindGroups = make(map[bindGroupKey]*wgpu.BindGroup)
	d.msaaTexture, d.msaaView = nil, nil
	d.surfaceDepth, d.surfaceDepthView = nil, nil
	d.current, d.index, d.target = 0, 0, surfaceTarget
}

// Restore requests a new device from the adapter and recreates the per-device resources.
func (d *wgpuDevice) Restore() error {
	return d.init()
}

func (d *wgpuDevice) Release() {
	if d.released {
		return
	}
	d.endPass()
	if d.encoder != nil {
		d.encoder.Release()
		d.encoder = nil
	}
	for id := range d.programs {
		d.ReleaseObject(ObjectProgram, id)
	}
	for id := range d.targets {
		d.ReleaseObject(ObjectTarget, id)
	}
	for id := range d.textures {
		d.ReleaseObject(ObjectTexture, id)
	}
	for id := range d.buffers {
		d.ReleaseObject(ObjectBuffer, id)
	}
	d.released = true
	if d.lost {
		return
	}
	d.white.view.Release()
	d.white.texture.Release()
	d.blankDepth.view.Release()
	d.blankDepth.texture.Release()
	d.uniformRing.Release()
	d.readback.Release()
	d.sampler.Release()
	d.nearest.Release()
	d.cmpSampler.Release()
	if d.msaaTexture != nil {
		d.msaaView.Release()
		d.msaaTexture.Release()
	}
	d.surfaceDepthView.Release()
	d.surfaceDepth.Release()
	d.queue.Release()
	d.device.Release()
	d.surface.Release()
	d.adapter.Release()
	d.instance.Release()
}
