// Package renderer owns every GPU resource of a chart and turns the state pushed by a controller
// into draw calls. The controller writes only through the Update methods during
// SynchDataToRenderer; resource work that depends on several updates, like shader recompilation,
// happens once at the end of Synchronize.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/drawer"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/loader"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNotInitialized is returned by Draw before the first successful Synchronize.
var ErrNotInitialized = errors.New("renderer not initialized")

// defaultRatio is the viewport width to height ratio at which the graph fills the view.
const defaultRatio float32 = 1 / 1.6

// gradientSamples is the width of the gradient lookup texture.
const gradientSamples = 256

// labelUnit is the half height of a label rasterized at 12 points.
const labelUnit float32 = 0.05

// shadowUnit is the texture unit the shadow map is bound to.
const shadowUnit = 1

// Source is what a renderer is synchronized from. Every controller implements it.
type Source interface {
	SynchDataToRenderer()
}

// ChartRenderer is the render side of a chart, driven by the frame loop.
type ChartRenderer interface {
	controller.Renderer

	// Initialize compiles the programs and allocates the resources every chart needs. Synchronize
	// calls it when needed; calling it again is a no-op.
	//
	// Returns:
	//   - error: a compile or allocation error
	Initialize() error

	// Synchronize pulls the changed state from src and applies it: resizes targets, recompiles
	// programs and regenerates labels and geometry. After a context loss it first re-runs
	// initialization. src must not be mutated concurrently.
	//
	// Parameters:
	//   - src: the controller of the chart
	//
	// Returns:
	//   - error: gpu.ErrContextLost if the context was lost during the sync, or an
	//     initialization error
	Synchronize(src Source) error

	// Draw renders one frame and answers a pending hit test.
	//
	// Returns:
	//   - error: ErrNotInitialized, or gpu.ErrContextLost
	Draw() error

	// HandleResize sets the viewport immediately. Zero sizes are ignored.
	//
	// Parameters:
	//   - rect: the viewport in window pixels
	HandleResize(rect common.Rect)

	// HandleSelection hit-tests a window position against the last drawn frame.
	//
	// Parameters:
	//   - x, y: the window position in pixels
	//
	// Returns:
	//   - controller.SelectionResult: what lies under the position
	//   - error: gpu.ErrContextLost
	HandleSelection(x, y int) (controller.SelectionResult, error)

	// Camera returns the camera the renderer draws with.
	Camera() camera.Camera

	// Fps returns the last measured frame rate and whether a new one was measured in the last Draw.
	Fps() (float64, bool)

	// Release frees every GPU resource owned by the renderer.
	Release()
}

// element is one draw of the chart.
type element struct {
	model   model.Model
	matrix  mgl32.Mat4
	color   common.Color
	texture gpu.Texture
	// index identifies the element for hit testing.
	index int
	// highlight draws the element in its own color even when objects use the gradient.
	highlight bool
	// flat elements are drawn unlit with the label program.
	flat bool
	// shadow elements are drawn into the shadow map.
	shadow bool
}

// series is implemented by each chart type for the part of rendering it owns.
type series interface {
	// syncSeries rebuilds meshes and the element list after a sync that changed them.
	syncSeries() error
	// seriesElements returns the lit draws of the data.
	seriesElements() []element
	// lineElements returns draws made with the plain program, such as a wireframe.
	lineElements() []element
	// resolve turns a hit on a series element into a selection result.
	resolve(index int, origin, dir mgl32.Vec3) controller.SelectionResult
	// forgetSeries drops the handles of a lost context.
	forgetSeries()
	releaseSeries()
}

type baseRenderer struct {
	device     gpu.Device
	logger     *slog.Logger
	library    shader.Library
	drawer     drawer.Drawer
	ownsDrawer bool
	loader     loader.Loader
	ownsLoader bool
	profile    controller.Profile
	workers    int

	cameraCtl camera.CameraController
	camera    camera.Camera
	light     light.Light
	profiler  *profiler.Profiler
	series    series

	rect          common.Rect
	pendingRect   *common.Rect
	zoom          float32
	theme         theme.Theme
	shadowQuality controller.ShadowQuality
	selectionMode controller.SelectionFlag
	axes          [3]*AxisRenderCache
	ortho         bool
	aspectRatio   float32
	hints         controller.OptimizationHints
	measureFps    bool
	fps           float64
	fpsMeasured   bool

	selectedElement controller.ElementType
	selectedIndex   int

	shaders         *shaderSelector
	labelProgram    gpu.Program
	plainProgram    gpu.Program
	depthProgram    gpu.Program
	gradient        gpu.Texture
	gradientDirty   bool
	selectionTarget gpu.Target
	depthTarget     gpu.Target
	quad            model.Model
	line            model.Model

	items []*itemCache

	// labelMatrices caches label placements under OptimizationStatic.
	labelMatrices map[*drawer.LabelItem]mgl32.Mat4

	// last is the frame hit tests run against.
	last    *frame
	pick    *image.Point
	results chan<- controller.SelectionResult

	initialized bool
	lost        bool
}

func newBaseRenderer(device gpu.Device, options []RendererBuilderOption) *baseRenderer {
	r := &baseRenderer{
		device:        device,
		logger:        slog.Default().With("component", "renderer"),
		workers:       4,
		zoom:          1,
		theme:         theme.New(theme.PresetQt),
		shadowQuality: controller.ShadowQualityMedium,
		selectionMode: controller.SelectionItem,
		aspectRatio:   controller.DefaultAspectRatio,
		fps:           -1,
		selectedIndex: -1,
		gradientDirty: true,
	}
	if !device.Capabilities().DepthTargets {
		r.profile = controller.ProfileConstrained
	}
	for _, opt := range options {
		opt(r)
	}
	if r.profile == controller.ProfileConstrained {
		r.shadowQuality = controller.ShadowQualityNone
	}
	if r.library == nil {
		r.library = shader.NewLibrary(shader.LanguageGLSL)
	}
	if r.drawer == nil {
		r.drawer = drawer.NewDrawer(device, drawer.WithTheme(r.theme), drawer.WithWorkers(r.workers), drawer.WithLogger(r.logger))
		r.ownsDrawer = true
	}
	if r.loader == nil {
		r.loader = loader.NewLoader(loader.BackendTypeOBJ, loader.WithDevice(device), loader.WithLogger(r.logger))
		r.ownsLoader = true
	}
	if r.cameraCtl == nil {
		r.cameraCtl = camera.NewCameraController()
	}
	r.camera = camera.NewCamera(
		camera.WithController(r.cameraCtl),
		camera.WithClipCorrection(r.library.ClipCorrection()),
	)
	if r.light == nil {
		r.light = light.NewLight()
	}
	if r.profiler == nil {
		r.profiler = profiler.NewProfiler(profiler.WithLogger(r.logger))
	}

	r.shaders = newShaderSelector(device, r.library, r.logger, r.profile == controller.ProfileConstrained)
	r.shaders.setShadowQuality(r.shadowQuality)
	r.shaders.setGradient(!r.theme.UniformColoring)
	r.applyLightTheme()
	r.light.SetShadowMap(r.shadowMapSize(), r.shadowQuality.Soft())

	for _, o := range axis.Orientations {
		r.axes[o] = NewAxisRenderCache(o)
		r.axes[o].SetDrawer(r.drawer)
	}
	return r
}

func (r *baseRenderer) Camera() camera.Camera { return r.camera }

func (r *baseRenderer) Fps() (float64, bool) { return r.fps, r.fpsMeasured }

// Axis returns the render cache of orientation o.
func (r *baseRenderer) Axis(o axis.Orientation) *AxisRenderCache { return r.axes[o] }

// Profile returns the rendering profile.
func (r *baseRenderer) Profile() controller.Profile { return r.profile }

// ShaderVariant returns the variant of the programs in use.
func (r *baseRenderer) ShaderVariant() shader.Variant { return r.shaders.variant() }

// Zoom returns the graph scale derived from the viewport shape.
func (r *baseRenderer) Zoom() float32 { return r.zoom }

// BoundingRect returns the viewport.
func (r *baseRenderer) BoundingRect() common.Rect { return r.rect }

// check records a context loss and passes err through.
func (r *baseRenderer) check(err error) error {
	if errors.Is(err, gpu.ErrContextLost) {
		r.lost = true
	}
	return err
}

func (r *baseRenderer) compile(source func() (gpu.ProgramSource, error)) (gpu.Program, error) {
	src, err := source()
	if err != nil {
		return gpu.Program{}, err
	}
	p, err := r.device.CreateProgram(src)
	if err != nil {
		return gpu.Program{}, r.check(fmt.Errorf("compile %s: %w", src.Label, err))
	}
	return p, nil
}

func (r *baseRenderer) Initialize() error {
	if r.initialized {
		return nil
	}
	err := r.initialize()
	if err != nil {
		r.releaseResources()
		return fmt.Errorf("initialize renderer: %w", err)
	}
	r.initialized = true
	return nil
}

func (r *baseRenderer) initialize() error {
	var err error
	if r.labelProgram, err = r.compile(r.library.Label); err != nil {
		return err
	}
	if r.plainProgram, err = r.compile(r.library.Plain); err != nil {
		return err
	}
	if r.profile == controller.ProfileDesktop {
		if r.depthProgram, err = r.compile(r.library.Depth); err != nil {
			return err
		}
	}
	r.shaders.markDirty()
	if err = r.check(r.shaders.commit()); err != nil {
		return err
	}
	if r.quad, err = model.NewModel(r.device, model.Quad()); err != nil {
		return r.check(err)
	}
	if r.line, err = model.NewModel(r.device, model.Line(), model.WithPrimitive(gpu.PrimitiveLines), model.WithName("grid")); err != nil {
		return r.check(err)
	}
	r.gradientDirty = true
	if !r.rect.Empty() {
		r.HandleResize(r.rect)
	}
	return nil
}

func (r *baseRenderer) Synchronize(src Source) error {
	if r.lost {
		if err := r.reinitialize(); err != nil {
			return err
		}
	}
	if err := r.Initialize(); err != nil {
		return err
	}
	src.SynchDataToRenderer()
	r.finishSync()
	if r.lost {
		return gpu.ErrContextLost
	}
	return nil
}

// finishSync applies the work that depends on several updates of one sync.
func (r *baseRenderer) finishSync() {
	if r.pendingRect != nil {
		rect := *r.pendingRect
		r.pendingRect = nil
		r.HandleResize(rect)
	}
	if err := r.check(r.shaders.commit()); err != nil {
		r.logger.Error("shader commit failed", "error", err)
	}
	r.updateDepthTarget()
	if r.gradientDirty {
		r.updateGradient()
	}
	for _, c := range r.axes {
		if c.Dirty() {
			r.invalidateLabels()
		}
		if err := r.check(c.Refresh()); err != nil {
			r.logger.Warn("axis labels not regenerated", "orientation", c.Orientation(), "error", err)
		}
	}
	if err := r.check(r.applyItems()); err != nil {
		r.logger.Warn("custom items not updated", "error", err)
	}
	if err := r.check(r.series.syncSeries()); err != nil {
		r.logger.Warn("series not updated", "error", err)
	}
}

// invalidateLabels drops the cached label placements; the next Draw recomputes them.
func (r *baseRenderer) invalidateLabels() {
	r.labelMatrices = nil
}

// reinitialize recovers from a lost context: every handle is dropped unreleased and the
// initialization sequence runs again on the restored device.
func (r *baseRenderer) reinitialize() error {
	if restorer, ok := r.device.(gpu.Restorer); ok {
		if err := restorer.Restore(); err != nil {
			return fmt.Errorf("restore device: %w", err)
		}
	}
	r.logger.Info("reinitializing after context loss")
	r.forgetResources()
	r.lost = false
	r.initialized = false
	return r.Initialize()
}

func (r *baseRenderer) forgetResources() {
	r.invalidateLabels()
	r.shaders.forget()
	r.labelProgram, r.plainProgram, r.depthProgram = gpu.Program{}, gpu.Program{}, gpu.Program{}
	r.gradient = gpu.Texture{}
	r.gradientDirty = true
	r.selectionTarget, r.depthTarget = gpu.Target{}, gpu.Target{}
	r.quad, r.line = nil, nil
	r.loader.Invalidate()
	for _, c := range r.axes {
		c.Invalidate()
	}
	for _, c := range r.items {
		c.forget()
	}
	r.series.forgetSeries()
}

func (r *baseRenderer) releaseResources() {
	r.shaders.release()
	r.labelProgram.Release()
	r.plainProgram.Release()
	r.depthProgram.Release()
	r.gradient.Release()
	r.gradientDirty = true
	r.selectionTarget.Release()
	r.depthTarget.Release()
	if r.quad != nil {
		r.quad.Release()
		r.quad = nil
	}
	if r.line != nil {
		r.line.Release()
		r.line = nil
	}
}

func (r *baseRenderer) Release() {
	r.series.releaseSeries()
	for _, c := range r.items {
		c.release()
		c.pending = 0
	}
	r.items = nil
	for _, c := range r.axes {
		c.Release()
	}
	r.releaseResources()
	if r.ownsLoader {
		r.loader.Release()
	}
	if r.ownsDrawer {
		r.drawer.Close()
	}
	r.initialized = false
}

func (r *baseRenderer) HandleResize(rect common.Rect) {
	if rect.Width <= 0 || rect.Height <= 0 {
		r.logger.Debug("ignoring empty viewport", "width", rect.Width, "height", rect.Height)
		return
	}
	w, h := float32(rect.Width), float32(rect.Height)
	minDim := min(w, h)
	r.zoom = min(defaultRatio*(w/minDim)/(h/minDim), 1)
	r.rect = rect
	r.camera.SetAspect(w / h)
	r.invalidateLabels()

	if resizer, ok := r.device.(gpu.SurfaceResizer); ok {
		if err := r.check(resizer.ResizeSurface(rect.Width, rect.Height)); err != nil {
			r.logger.Warn("surface resize failed", "error", err)
		}
	}
	if !r.plainProgram.Valid() {
		return
	}
	r.allocateSelectionTarget()
	r.updateDepthTarget()
}

func (r *baseRenderer) allocateSelectionTarget() {
	if w, h := r.selectionTarget.Size(); r.selectionTarget.Valid() && w == r.rect.Width && h == r.rect.Height {
		return
	}
	t, err := r.device.CreateTarget(gpu.TargetSelection, r.rect.Width, r.rect.Height)
	if err != nil {
		r.logger.Warn("selection target not reallocated", "width", r.rect.Width, "height", r.rect.Height, "error", r.check(err))
		return
	}
	r.selectionTarget.Release()
	r.selectionTarget = t
}

// shadowMapSize returns the depth map edge for the current quality, limited by the device.
func (r *baseRenderer) shadowMapSize() int {
	if r.profile != controller.ProfileDesktop {
		return 0
	}
	return min(r.shadowQuality.MapSize(), r.device.Capabilities().MaxTextureSize)
}

// updateDepthTarget allocates, resizes or frees the shadow map to match the shadow quality.
func (r *baseRenderer) updateDepthTarget() {
	size := r.shadowMapSize()
	if size == 0 {
		r.depthTarget.Release()
		return
	}
	if !r.plainProgram.Valid() {
		return
	}
	if w, _ := r.depthTarget.Size(); r.depthTarget.Valid() && w == size {
		return
	}
	t, err := r.device.CreateTarget(gpu.TargetDepth, size, size)
	if err != nil {
		r.logger.Warn("depth target not reallocated", "size", size, "error", r.check(err))
		return
	}
	r.depthTarget.Release()
	r.depthTarget = t
}

func (r *baseRenderer) updateGradient() {
	tex, err := r.device.CreateTexture(r.theme.GradientTexture(gradientSamples), true)
	if err != nil {
		r.logger.Warn("gradient texture not updated", "error", r.check(err))
		return
	}
	r.gradient.Release()
	r.gradient = tex
	r.gradientDirty = false
}

func (r *baseRenderer) applyLightTheme() {
	r.light.SetStrength(r.theme.LightStrength)
	r.light.SetAmbientStrength(r.theme.AmbientLightStrength)
}

// extents returns the half size of the graph box. The horizontal axes span [-1, 1]; the
// vertical axis is shorter by the aspect ratio.
func (r *baseRenderer) extents() mgl32.Vec3 {
	return mgl32.Vec3{1, 1 / r.aspectRatio, 1}
}

// graphMatrix scales the graph to fit the viewport shape.
func (r *baseRenderer) graphMatrix() mgl32.Mat4 {
	return mgl32.Scale3D(r.zoom, r.zoom, r.zoom)
}

// billboard returns the rotation that turns a quad facing +Z toward the camera.
func (r *baseRenderer) billboard() mgl32.Mat4 {
	return r.camera.ViewMatrix().Mat3().Transpose().Mat4()
}

func (r *baseRenderer) UpdateBoundingRect(rect common.Rect) {
	r.pendingRect = &rect
}

func (r *baseRenderer) UpdateTheme(th theme.Theme) {
	r.theme = th
	r.drawer.SetTheme(th)
	r.shaders.setGradient(!th.UniformColoring)
	r.shaders.markDirty()
	r.gradientDirty = true
	r.applyLightTheme()
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateShadowQuality(quality controller.ShadowQuality) {
	if r.profile == controller.ProfileConstrained {
		quality = controller.ShadowQualityNone
	}
	r.shadowQuality = quality
	r.shaders.setShadowQuality(quality)
	r.light.SetShadowMap(r.shadowMapSize(), quality.Soft())
}

func (r *baseRenderer) UpdateSelectionMode(mode controller.SelectionFlag) {
	r.selectionMode = mode
}

func (r *baseRenderer) UpdateAxisType(o axis.Orientation, t axis.Type) {
	r.axes[o].SetType(t)
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateAxisTitle(o axis.Orientation, title string) { r.axes[o].SetTitle(title) }

func (r *baseRenderer) UpdateAxisLabels(o axis.Orientation, labels []string) {
	r.axes[o].SetLabels(labels)
}

func (r *baseRenderer) UpdateAxisRange(o axis.Orientation, min, max float32) {
	r.axes[o].SetRange(min, max)
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateAxisSegmentCount(o axis.Orientation, count int) {
	r.axes[o].SetSegmentCount(count)
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateAxisSubSegmentCount(o axis.Orientation, count int) {
	r.axes[o].SetSubSegmentCount(count)
}

func (r *baseRenderer) UpdateCamera(state controller.CameraState) {
	r.cameraCtl.Apply(state.XRotation, state.YRotation, state.ZoomLevel)
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateOrthoProjection(enabled bool) {
	r.ortho = enabled
	r.camera.SetOrtho(enabled)
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateAspectRatio(ratio float32) {
	if ratio > 0 {
		r.aspectRatio = ratio
		r.invalidateLabels()
	}
}

func (r *baseRenderer) UpdateOptimizationHints(hints controller.OptimizationHints) {
	r.hints = hints
	r.invalidateLabels()
}

func (r *baseRenderer) UpdateMeasureFps(enabled bool) {
	r.measureFps = enabled
	r.profiler.Reset()
	r.fps, r.fpsMeasured = -1, false
}

func (r *baseRenderer) UpdateSelectedElement(element controller.ElementType, index int) {
	r.selectedElement, r.selectedIndex = element, index
}

func (r *baseRenderer) RequestSelection(x, y int) {
	r.pick = &image.Point{X: x, Y: y}
}

func (r *baseRenderer) SetSelectionResults(results chan<- controller.SelectionResult) {
	r.results = results
}

// labelHalfHeight is the half height in graph units of axis labels at the theme font size.
func (r *baseRenderer) labelHalfHeight() float32 {
	return labelUnit * math32.Max(float32(r.theme.Font.Size), 1) / 12
}
