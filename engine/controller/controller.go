// Package controller owns the state of a chart and is its only writer. Setters validate, store
// the value, mark an Aspect in the ChangeTracker and notify subscribers; once per frame
// SynchDataToRenderer pushes the current value of every marked aspect to the renderer.
//
// Controllers do no locking of their own. The owner serializes mutations with the frame
// boundary, as engine.Graph does with Mutate.
package controller

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultAspectRatio is the default ratio of graph width to graph height.
const DefaultAspectRatio float32 = 2

// Controller is the chart state shared by bars, scatter and surface charts.
type Controller interface {
	// Profile returns the rendering profile the controller was created for.
	Profile() Profile

	// BoundingRect returns the viewport in window pixels.
	BoundingRect() common.Rect

	// HandleResize sets the viewport. Negative sizes are rejected; zero sizes are stored and
	// left to the renderer to ignore.
	//
	// Parameters:
	//   - rect: the new viewport
	//
	// Returns:
	//   - error: ErrInvalidRect
	HandleResize(rect common.Rect) error

	// Theme returns the active theme.
	Theme() theme.Theme

	// SetTheme replaces the active theme.
	SetTheme(th theme.Theme)

	// SetFont replaces the label font of the active theme.
	//
	// Returns:
	//   - error: ErrInvalidFont if the size is not positive or the face is unknown
	SetFont(font theme.Font) error

	// SetLabelTransparency replaces the label transparency mode of the active theme.
	SetLabelTransparency(mode theme.LabelTransparency) error

	// ShadowQuality returns the requested shadow quality.
	ShadowQuality() ShadowQuality

	// SetShadowQuality sets the shadow quality.
	//
	// Returns:
	//   - error: ErrInvalidShadowQuality, or ErrShadowsUnsupported for any quality other than
	//     none on the constrained profile
	SetShadowQuality(quality ShadowQuality) error

	// ShadowsSupported reports whether the profile can render shadows.
	ShadowsSupported() bool

	// SelectionMode returns the selection mode.
	SelectionMode() SelectionFlag

	// SetSelectionMode sets what a click selects.
	//
	// Returns:
	//   - error: ErrInvalidSelectionMode for flags this chart type does not support
	SetSelectionMode(mode SelectionFlag) error

	// Axis returns the axis at orientation o.
	Axis(o axis.Orientation) axis.Axis

	// SetAxis binds an axis to orientation o. The previous axis is released and stops
	// notifying the controller.
	//
	// Returns:
	//   - error: ErrNilAxis, or ErrAxisType if the chart type needs the other kind of axis there
	SetAxis(o axis.Orientation, a axis.Axis) error

	// Camera returns the camera placement.
	Camera() CameraState

	// SetCameraPreset moves the camera to a preset placement.
	SetCameraPreset(preset camera.Preset) error

	// SetCameraRotation orbits the camera. Horizontal rotation wraps to [-180, 180); vertical
	// rotation is clamped to [-90, 90]. The preset becomes PresetNone.
	SetCameraRotation(horizontal, vertical float32)

	// SetZoomLevel sets the zoom level in percent.
	//
	// Returns:
	//   - error: ErrInvalidZoom outside [MinZoomLevel, MaxZoomLevel]
	SetZoomLevel(level float32) error

	// OrthoProjection reports whether the camera uses an orthographic projection.
	OrthoProjection() bool

	// SetOrthoProjection toggles orthographic projection.
	SetOrthoProjection(enabled bool)

	// AspectRatio returns the ratio of graph width to graph height.
	AspectRatio() float32

	// SetAspectRatio sets the ratio of graph width to graph height.
	SetAspectRatio(ratio float32) error

	// OptimizationHints returns the optimization hints.
	OptimizationHints() OptimizationHints

	// SetOptimizationHints sets the optimization hints.
	SetOptimizationHints(hints OptimizationHints) error

	// MeasureFps reports whether frame rate measurement is on.
	MeasureFps() bool

	// SetMeasureFps toggles frame rate measurement.
	SetMeasureFps(enabled bool)

	// CurrentFps returns the last reported frame rate, or -1 when measurement is off.
	CurrentFps() float64

	// ReportFps records a measured frame rate. It is ignored while measurement is off.
	ReportFps(fps float64)

	// CustomItems returns the custom item registry.
	CustomItems() *item.Registry

	// HandleSelection requests a hit test at a window position. The result is applied during a
	// later SynchDataToRenderer, once the renderer has drawn the selection pass.
	HandleSelection(x, y int)

	// SelectedElement returns the kind of the selected element.
	SelectedElement() ElementType

	// SelectedLabelIndex returns the index of the selected axis label, or -1.
	SelectedLabelIndex() int

	// SelectedCustomItemIndex returns the index of the selected custom item, or -1.
	SelectedCustomItemIndex() int

	// SelectedCustomItem returns the selected custom item, or nil.
	SelectedCustomItem() item.CustomItem

	// ClearSelection clears the series, label and custom item selection.
	ClearSelection()

	// Pending returns the aspects that the next SynchDataToRenderer will push.
	Pending() []Aspect

	// SynchDataToRenderer pushes every changed aspect to the renderer and clears it. Call it
	// once per frame, before drawing, while no mutation is in progress.
	SynchDataToRenderer()

	// Subscribe registers a listener for Changed and Rejected events.
	Subscribe(listener func(Event)) (unsubscribe func())

	// Close releases the subscriptions the controller holds on its axes, proxy and registry.
	Close()
}

// series is implemented by each chart type for the parts of selection and sync it owns.
type series interface {
	selectSeries(res SelectionResult)
	clearSeries()
	selectionModeChanged(mode SelectionFlag)
	dataRefreshed()
	syncSeries()
	close()
}

type base struct {
	logger    *slog.Logger
	profile   Profile
	tracker   ChangeTracker
	listeners common.Subscribers[func(Event)]
	renderer  Renderer
	results   chan SelectionResult
	series    series

	allowedSelection SelectionFlag
	axisTypes        [3]axis.Type

	rect          common.Rect
	theme         theme.Theme
	shadowQuality ShadowQuality
	selectionMode SelectionFlag
	axes          [3]axis.Axis
	axisUnsub     [3]func()
	dataLabels    [3][]string
	camera        CameraState
	ortho         bool
	aspectRatio   float32
	hints         OptimizationHints
	measureFps    bool
	fps           float64
	items         *item.Registry
	itemsUnsub    func()
	pick          *image.Point

	selectedElement ElementType
	selectedIndex   int
}

var _ Controller = &base{}

func newBase(r Renderer, axisTypes [3]axis.Type, allowed SelectionFlag, options []ControllerBuilderOption) *base {
	b := &base{
		logger:           slog.Default().With("component", "controller"),
		renderer:         r,
		results:          make(chan SelectionResult, 1),
		allowedSelection: allowed,
		axisTypes:        axisTypes,
		theme:            theme.New(theme.PresetQt),
		shadowQuality:    ShadowQualityMedium,
		selectionMode:    SelectionItem,
		aspectRatio:      DefaultAspectRatio,
		fps:              -1,
		selectedIndex:    -1,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.profile == ProfileConstrained {
		b.shadowQuality = ShadowQualityNone
	}
	if err := validateSelectionMode(b.selectionMode, allowed); err != nil {
		b.logger.Warn("ignoring selection mode option", "error", err)
		b.selectionMode = SelectionItem
	}
	if b.camera.ZoomLevel == 0 {
		b.camera = presetCamera(camera.PresetFront, DefaultZoomLevel)
	}
	if b.items == nil {
		b.items = item.NewRegistry()
	}
	b.itemsUnsub = b.items.Subscribe(b.onRegistryEvent)

	for _, o := range axis.Orientations {
		a := b.axes[o]
		if a != nil && a.Type() != axisTypes[o] {
			b.logger.Warn("ignoring axis option of the wrong type", "orientation", o)
			a = nil
		}
		if a == nil {
			a = newDefaultAxis(axisTypes[o])
		}
		b.axes[o] = nil
		b.bindAxis(o, a)
	}

	r.SetSelectionResults(b.results)
	for a := Aspect(0); a < AspectData; a++ {
		b.tracker.Set(a)
	}
	return b
}

func newDefaultAxis(t axis.Type) axis.Axis {
	if t == axis.TypeCategory {
		return axis.NewCategoryAxis()
	}
	return axis.NewValueAxis()
}

func presetCamera(p camera.Preset, zoom float32) CameraState {
	h, v, _ := p.Angles()
	return CameraState{Preset: p, XRotation: h, YRotation: v, ZoomLevel: zoom}
}

func (b *base) emit(e Event) {
	b.listeners.Each(func(fn func(Event)) { fn(e) })
}

func (b *base) changed(aspects ...Aspect) {
	b.tracker.Set(aspects...)
	for _, a := range aspects {
		b.emit(Event{Kind: EventChanged, Aspect: a})
	}
}

func (b *base) reject(a Aspect, err error) error {
	b.logger.Debug("rejected change", "aspect", a, "error", err)
	b.emit(Event{Kind: EventRejected, Aspect: a, Err: err})
	return err
}

func (b *base) Subscribe(listener func(Event)) func() {
	return b.listeners.Add(listener)
}

func (b *base) Profile() Profile { return b.profile }

func (b *base) BoundingRect() common.Rect { return b.rect }

func (b *base) HandleResize(rect common.Rect) error {
	if rect.Width < 0 || rect.Height < 0 {
		return b.reject(AspectBoundingRect, fmt.Errorf("%w: %dx%d", ErrInvalidRect, rect.Width, rect.Height))
	}
	if rect == b.rect {
		return nil
	}
	b.rect = rect
	b.changed(AspectBoundingRect)
	return nil
}

func (b *base) Theme() theme.Theme { return b.theme }

func (b *base) SetTheme(th theme.Theme) {
	if th == b.theme {
		return
	}
	b.theme = th
	b.changed(AspectTheme)
}

func (b *base) SetFont(font theme.Font) error {
	switch {
	case font.Size <= 0:
		return b.reject(AspectFont, fmt.Errorf("%w: size %v", ErrInvalidFont, font.Size))
	case font.Face != theme.FaceRegular && font.Face != theme.FaceBold && font.Face != theme.FaceMono:
		return b.reject(AspectFont, fmt.Errorf("%w: face %q", ErrInvalidFont, font.Face))
	}
	if font == b.theme.Font {
		return nil
	}
	b.theme.Font = font
	b.changed(AspectFont)
	return nil
}

func (b *base) SetLabelTransparency(mode theme.LabelTransparency) error {
	if mode < theme.TransparencyNone || mode > theme.TransparencyNoBackground {
		return b.reject(AspectLabelTransparency, fmt.Errorf("%w: %d", ErrInvalidTransparency, int(mode)))
	}
	if mode == b.theme.LabelTransparency {
		return nil
	}
	b.theme.LabelTransparency = mode
	b.changed(AspectLabelTransparency)
	return nil
}

func (b *base) ShadowQuality() ShadowQuality { return b.shadowQuality }

func (b *base) SetShadowQuality(quality ShadowQuality) error {
	if !quality.Valid() {
		return b.reject(AspectShadowQuality, fmt.Errorf("%w: %d", ErrInvalidShadowQuality, int(quality)))
	}
	if b.profile == ProfileConstrained && quality != ShadowQualityNone {
		return b.reject(AspectShadowQuality, ErrShadowsUnsupported)
	}
	if quality == b.shadowQuality {
		return nil
	}
	b.shadowQuality = quality
	b.changed(AspectShadowQuality)
	return nil
}

func (b *base) ShadowsSupported() bool { return b.profile == ProfileDesktop }

func (b *base) SelectionMode() SelectionFlag { return b.selectionMode }

func (b *base) SetSelectionMode(mode SelectionFlag) error {
	if err := validateSelectionMode(mode, b.allowedSelection); err != nil {
		return b.reject(AspectSelectionMode, err)
	}
	if mode == b.selectionMode {
		return nil
	}
	b.selectionMode = mode
	b.changed(AspectSelectionMode)
	b.series.selectionModeChanged(mode)
	return nil
}

func (b *base) Axis(o axis.Orientation) axis.Axis { return b.axes[o] }

func (b *base) SetAxis(o axis.Orientation, a axis.Axis) error {
	aspect := AxisAspect(o, axis.AspectType)
	if a == nil {
		return b.reject(aspect, ErrNilAxis)
	}
	if a.Type() != b.axisTypes[o] {
		return b.reject(aspect, fmt.Errorf("%w: %s", ErrAxisType, o))
	}
	if a == b.axes[o] {
		return nil
	}
	b.bindAxis(o, a)
	b.series.dataRefreshed()
	return nil
}

// bindAxis subscribes to a and marks every property of orientation o.
func (b *base) bindAxis(o axis.Orientation, a axis.Axis) {
	if b.axisUnsub[o] != nil {
		b.axisUnsub[o]()
	}
	b.axes[o] = a
	b.axisUnsub[o] = a.Subscribe(func(prop axis.Aspect) {
		b.changed(AxisAspect(o, prop))
	})
	for prop := axis.AspectType; prop <= axis.AspectSubSegmentCount; prop++ {
		b.changed(AxisAspect(o, prop))
	}
}

// setDataLabels sets the labels a category axis at o shows when it has none of its own.
func (b *base) setDataLabels(o axis.Orientation, labels []string) {
	if equalStrings(labels, b.dataLabels[o]) {
		return
	}
	b.dataLabels[o] = labels
	if b.axes[o].Type() == axis.TypeCategory && len(b.axes[o].Labels()) == 0 {
		b.changed(AxisAspect(o, axis.AspectLabels))
	}
}

func (b *base) axisLabels(o axis.Orientation) []string {
	a := b.axes[o]
	if labels := a.Labels(); len(labels) > 0 || a.Type() != axis.TypeCategory {
		return labels
	}
	return append([]string(nil), b.dataLabels[o]...)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (b *base) Camera() CameraState { return b.camera }

func (b *base) SetCameraPreset(preset camera.Preset) error {
	if _, _, ok := preset.Angles(); !ok {
		return b.reject(AspectCamera, fmt.Errorf("%w: %s", ErrInvalidCameraPreset, preset))
	}
	next := presetCamera(preset, b.camera.ZoomLevel)
	if next == b.camera {
		return nil
	}
	b.camera = next
	b.changed(AspectCamera)
	return nil
}

func (b *base) SetCameraRotation(horizontal, vertical float32) {
	next := b.camera
	next.Preset = camera.PresetNone
	next.XRotation = wrapDegrees(horizontal)
	next.YRotation = mgl32.Clamp(vertical, -90, 90)
	if next == b.camera {
		return
	}
	b.camera = next
	b.changed(AspectCamera)
}

// wrapDegrees maps an angle into [-180, 180).
func wrapDegrees(deg float32) float32 {
	d := math32.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func (b *base) SetZoomLevel(level float32) error {
	if level < MinZoomLevel || level > MaxZoomLevel || math32.IsNaN(level) {
		return b.reject(AspectCamera, fmt.Errorf("%w: %v", ErrInvalidZoom, level))
	}
	if level == b.camera.ZoomLevel {
		return nil
	}
	b.camera.ZoomLevel = level
	b.changed(AspectCamera)
	return nil
}

func (b *base) OrthoProjection() bool { return b.ortho }

func (b *base) SetOrthoProjection(enabled bool) {
	if enabled == b.ortho {
		return
	}
	b.ortho = enabled
	b.changed(AspectOrthoProjection)
}

func (b *base) AspectRatio() float32 { return b.aspectRatio }

func (b *base) SetAspectRatio(ratio float32) error {
	if !(ratio > 0) || math32.IsInf(ratio, 0) {
		return b.reject(AspectAspectRatio, fmt.Errorf("%w: %v", ErrInvalidAspectRatio, ratio))
	}
	if ratio == b.aspectRatio {
		return nil
	}
	b.aspectRatio = ratio
	b.changed(AspectAspectRatio)
	return nil
}

func (b *base) OptimizationHints() OptimizationHints { return b.hints }

func (b *base) SetOptimizationHints(hints OptimizationHints) error {
	if hints != OptimizationDefault && hints != OptimizationStatic {
		return b.reject(AspectOptimizationHints, fmt.Errorf("%w: %d", ErrInvalidOptimization, int(hints)))
	}
	if hints == b.hints {
		return nil
	}
	b.hints = hints
	b.changed(AspectOptimizationHints)
	return nil
}

func (b *base) MeasureFps() bool { return b.measureFps }

func (b *base) SetMeasureFps(enabled bool) {
	if enabled == b.measureFps {
		return
	}
	b.measureFps = enabled
	b.fps = -1
	b.changed(AspectMeasureFps)
}

func (b *base) CurrentFps() float64 { return b.fps }

func (b *base) ReportFps(fps float64) {
	if b.measureFps {
		b.fps = fps
	}
}

func (b *base) CustomItems() *item.Registry { return b.items }

func (b *base) onRegistryEvent(e item.Event) {
	switch e.Kind {
	case item.EventUpdated:
		b.changed(AspectCustomItemData)
		return
	case item.EventRemoved:
		if b.selectedElement == ElementCustomItem {
			switch {
			case e.Index == b.selectedIndex:
				b.setSelectedElement(ElementNone, -1)
			case e.Index < b.selectedIndex:
				b.setSelectedElement(ElementCustomItem, b.selectedIndex-1)
			}
		}
	case item.EventCleared:
		if b.selectedElement == ElementCustomItem {
			b.setSelectedElement(ElementNone, -1)
		}
	}
	b.changed(AspectCustomItems)
}

func (b *base) HandleSelection(x, y int) {
	b.pick = &image.Point{X: x, Y: y}
}

func (b *base) SelectedElement() ElementType { return b.selectedElement }

func (b *base) SelectedLabelIndex() int {
	switch b.selectedElement {
	case ElementAxisXLabel, ElementAxisYLabel, ElementAxisZLabel:
		return b.selectedIndex
	}
	return -1
}

func (b *base) SelectedCustomItemIndex() int {
	if b.selectedElement == ElementCustomItem {
		return b.selectedIndex
	}
	return -1
}

func (b *base) SelectedCustomItem() item.CustomItem {
	return b.items.At(b.SelectedCustomItemIndex())
}

func (b *base) ClearSelection() {
	b.series.clearSeries()
	b.setSelectedElement(ElementNone, -1)
}

func (b *base) setSelectedElement(e ElementType, index int) {
	if e == b.selectedElement && index == b.selectedIndex {
		return
	}
	b.selectedElement = e
	b.selectedIndex = index
	b.changed(AspectSelectedElement)
}

// applySelection applies one hit test result to the selection state.
func (b *base) applySelection(res SelectionResult) {
	switch res.Element {
	case ElementNone:
		b.ClearSelection()
	case ElementSeries:
		if b.selectionMode == SelectionNone {
			return
		}
		b.setSelectedElement(ElementSeries, -1)
		b.series.selectSeries(res)
	case ElementAxisXLabel, ElementAxisYLabel, ElementAxisZLabel:
		b.series.clearSeries()
		b.setSelectedElement(res.Element, res.Index)
	case ElementCustomItem:
		if b.items.At(res.Index) == nil {
			b.logger.Debug("dropping stale custom item hit", "index", res.Index)
			return
		}
		b.series.clearSeries()
		b.setSelectedElement(ElementCustomItem, res.Index)
	default:
		b.logger.Debug("dropping selection result", "error", ErrInvalidSelectionResult, "element", res.Element)
	}
}

func (b *base) Pending() []Aspect { return b.tracker.Pending() }

func (b *base) SynchDataToRenderer() {
	b.syncCommon()
	b.series.syncSeries()
}

// syncCommon applies pending hit results and pushes the aspects shared by every chart type.
func (b *base) syncCommon() {
	for drained := false; !drained; {
		select {
		case res := <-b.results:
			b.applySelection(res)
		default:
			drained = true
		}
	}
	if b.tracker.Any() {
		b.logger.Debug("synchronizing", "pending", b.tracker.Pending())
	}

	r := b.renderer
	if b.tracker.Consume(AspectBoundingRect) {
		r.UpdateBoundingRect(b.rect)
	}
	themeChanged := b.tracker.Consume(AspectTheme)
	fontChanged := b.tracker.Consume(AspectFont)
	transparencyChanged := b.tracker.Consume(AspectLabelTransparency)
	if themeChanged || fontChanged || transparencyChanged {
		r.UpdateTheme(b.theme)
	}
	if b.tracker.Consume(AspectShadowQuality) {
		r.UpdateShadowQuality(b.shadowQuality)
	}
	if b.tracker.Consume(AspectSelectionMode) {
		r.UpdateSelectionMode(b.selectionMode)
	}
	for _, o := range axis.Orientations {
		b.syncAxis(o)
	}
	if b.tracker.Consume(AspectCamera) {
		r.UpdateCamera(b.camera)
	}
	if b.tracker.Consume(AspectOrthoProjection) {
		r.UpdateOrthoProjection(b.ortho)
	}
	if b.tracker.Consume(AspectAspectRatio) {
		r.UpdateAspectRatio(b.aspectRatio)
	}
	if b.tracker.Consume(AspectOptimizationHints) {
		r.UpdateOptimizationHints(b.hints)
	}
	if b.tracker.Consume(AspectMeasureFps) {
		r.UpdateMeasureFps(b.measureFps)
	}
	if b.tracker.Consume(AspectCustomItems) {
		r.UpdateCustomItems(b.items.Items())
	}
	b.tracker.Consume(AspectCustomItemData)
	for i, it := range b.items.Items() {
		if dirty := it.ConsumeDirty(); dirty != 0 {
			r.UpdateCustomItem(i, it, dirty)
		}
	}
	if b.tracker.Consume(AspectSelectedElement) {
		r.UpdateSelectedElement(b.selectedElement, b.selectedIndex)
	}
	if b.pick != nil {
		r.RequestSelection(b.pick.X, b.pick.Y)
		b.pick = nil
	}
}

func (b *base) syncAxis(o axis.Orientation) {
	a, r := b.axes[o], b.renderer
	if b.tracker.Consume(AxisAspect(o, axis.AspectType)) {
		r.UpdateAxisType(o, a.Type())
	}
	if b.tracker.Consume(AxisAspect(o, axis.AspectTitle)) {
		r.UpdateAxisTitle(o, a.Title())
	}
	if b.tracker.Consume(AxisAspect(o, axis.AspectLabels)) {
		r.UpdateAxisLabels(o, b.axisLabels(o))
	}
	if b.tracker.Consume(AxisAspect(o, axis.AspectRange)) {
		min, max := a.Range()
		r.UpdateAxisRange(o, min, max)
	}
	if b.tracker.Consume(AxisAspect(o, axis.AspectSegmentCount)) {
		r.UpdateAxisSegmentCount(o, a.SegmentCount())
	}
	if b.tracker.Consume(AxisAspect(o, axis.AspectSubSegmentCount)) {
		r.UpdateAxisSubSegmentCount(o, a.SubSegmentCount())
	}
}

func (b *base) Close() {
	for o, unsub := range b.axisUnsub {
		if unsub != nil {
			unsub()
			b.axisUnsub[o] = nil
		}
	}
	if b.itemsUnsub != nil {
		b.itemsUnsub()
		b.itemsUnsub = nil
	}
	b.series.close()
}
