package renderer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/drawer"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// labelOffset is the gap between the graph box and its axis labels.
const labelOffset float32 = 0.12

// frame is everything one Draw submits, kept for hit testing until the next Draw.
type frame struct {
	view     mgl32.Mat4
	viewProj mgl32.Mat4
	graph    mgl32.Mat4
	eye      mgl32.Vec3
	depthVP  mgl32.Mat4
	shadows  bool

	walls  []element
	grid   []element
	series []element
	lines  []element
	items  []element
	labels [3][]element
}

// labelDraw pairs a label texture with its placement.
type labelDraw struct {
	label  *drawer.LabelItem
	center mgl32.Vec3
	index  int
}

func (r *baseRenderer) Draw() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if r.lost {
		return gpu.ErrContextLost
	}
	if err := r.device.BeginFrame(); err != nil {
		return r.check(err)
	}
	r.camera.Update()
	r.light.FollowCamera(r.cameraCtl.Position(), r.cameraCtl.Target(), r.cameraCtl.Up())

	f := r.buildFrame()
	err := r.drawFrame(f)
	if err == nil {
		r.last = f
	}
	var picked *controller.SelectionResult
	if err == nil && r.pick != nil {
		p := *r.pick
		r.pick = nil
		var res controller.SelectionResult
		if res, err = r.HandleSelection(p.X, p.Y); err == nil {
			picked = &res
		}
	}
	if endErr := r.device.EndFrame(); err == nil {
		err = endErr
	}
	if err != nil {
		return r.check(err)
	}
	if picked != nil {
		r.post(*picked)
	}

	r.fpsMeasured = false
	if r.measureFps {
		if fps, ok := r.profiler.Tick(); ok {
			r.fps, r.fpsMeasured = fps, true
		}
	}
	return nil
}

// post delivers a selection result without blocking. A full or missing channel drops it.
func (r *baseRenderer) post(res controller.SelectionResult) {
	if r.results == nil {
		return
	}
	select {
	case r.results <- res:
	default:
		r.logger.Debug("selection result dropped", "element", res.Element)
	}
}

func (r *baseRenderer) buildFrame() *frame {
	f := &frame{
		view:     r.camera.ViewMatrix(),
		viewProj: r.camera.ViewProjectionMatrix(),
		graph:    r.graphMatrix(),
		eye:      r.camera.Position(),
	}
	if r.depthTarget.Valid() && r.shaders.variant().Shadow != shader.ShadowNone {
		radius := r.extents().Len() * r.zoom
		f.depthVP = r.library.ClipCorrection().Mul4(r.light.DepthViewProjection(mgl32.Vec3{}, radius))
		f.shadows = true
	}
	if r.theme.BackgroundEnabled {
		f.walls = r.wallElements(f.eye)
	}
	if r.theme.GridEnabled {
		f.grid = r.gridElements(f.eye)
	}
	f.series = r.series.seriesElements()
	f.lines = r.series.lineElements()
	f.items = r.itemElements()
	for _, o := range axis.Orientations {
		f.labels[o] = r.labelElements(o, f.eye)
	}
	return f
}

func (r *baseRenderer) drawFrame(f *frame) error {
	if f.shadows {
		if err := r.drawShadowPass(f); err != nil {
			return err
		}
	}
	r.device.BindTarget(gpu.Target{})
	r.device.Viewport(r.rect)
	r.device.Clear(r.theme.WindowColor)

	if f.shadows {
		r.device.BindTexture(shadowUnit, r.depthTarget.Depth)
		defer r.device.UnbindTexture(shadowUnit)
	}

	v := r.shaders.variant()
	bg := r.shaders.background
	if len(f.walls) > 0 {
		r.device.UseProgram(bg)
		for _, e := range f.walls {
			r.setLitUniforms(f, e.matrix, e.color)
			if err := r.drawer.DrawObject(bg, e.model, gpu.Texture{}); err != nil {
				return err
			}
		}
	}
	if err := r.drawPlain(f, f.grid); err != nil {
		return err
	}

	obj := r.shaders.object
	r.device.UseProgram(obj)
	var highlighted []element
	for _, e := range f.series {
		if e.highlight && v.Gradient {
			highlighted = append(highlighted, e)
			continue
		}
		tex := gpu.Texture{}
		if v.Gradient {
			tex = r.gradient
		}
		r.setLitUniforms(f, e.matrix, e.color)
		if v.Gradient {
			r.setGradientUniforms()
		}
		if err := r.drawer.DrawObject(obj, e.model, tex); err != nil {
			return err
		}
	}
	if len(highlighted) > 0 {
		r.device.UseProgram(bg)
		for _, e := range highlighted {
			r.setLitUniforms(f, e.matrix, e.color)
			if err := r.drawer.DrawObject(bg, e.model, gpu.Texture{}); err != nil {
				return err
			}
		}
	}
	if err := r.drawPlain(f, f.lines); err != nil {
		return err
	}

	var flat []element
	it := r.shaders.item
	r.device.UseProgram(it)
	for _, e := range f.items {
		if e.flat {
			flat = append(flat, e)
			continue
		}
		r.setLitUniforms(f, e.matrix, common.Color{1, 1, 1, 1})
		if err := r.drawer.DrawObject(it, e.model, e.texture); err != nil {
			return err
		}
	}
	for _, labels := range f.labels {
		flat = append(flat, labels...)
	}
	return r.drawFlat(f, flat)
}

func (r *baseRenderer) drawShadowPass(f *frame) error {
	r.device.BindTarget(r.depthTarget)
	size, _ := r.depthTarget.Size()
	r.device.Viewport(common.Rect{Width: size, Height: size})
	r.device.Clear(common.Color{1, 1, 1, 1})
	r.device.UseProgram(r.depthProgram)
	draw := func(elements []element) error {
		for _, e := range elements {
			if !e.shadow {
				continue
			}
			r.device.SetUniform("u_mvp", f.depthVP.Mul4(f.graph).Mul4(e.matrix))
			if err := r.drawer.DrawObject(r.depthProgram, e.model, gpu.Texture{}); err != nil {
				return err
			}
		}
		return nil
	}
	if err := draw(f.series); err != nil {
		return err
	}
	return draw(f.items)
}

func (r *baseRenderer) drawPlain(f *frame, elements []element) error {
	if len(elements) == 0 {
		return nil
	}
	r.device.UseProgram(r.plainProgram)
	for _, e := range elements {
		r.device.SetUniform("u_mvp", f.viewProj.Mul4(f.graph).Mul4(e.matrix))
		r.device.SetUniform("u_color", e.color.Vec4())
		if err := r.drawer.DrawObject(r.plainProgram, e.model, gpu.Texture{}); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRenderer) drawFlat(f *frame, elements []element) error {
	if len(elements) == 0 {
		return nil
	}
	r.device.UseProgram(r.labelProgram)
	for _, e := range elements {
		r.device.SetUniform("u_mvp", f.viewProj.Mul4(f.graph).Mul4(e.matrix))
		if err := r.drawer.DrawObject(r.labelProgram, e.model, e.texture); err != nil {
			return err
		}
	}
	return nil
}

// setLitUniforms sets the uniforms shared by the object, background and item programs.
func (r *baseRenderer) setLitUniforms(f *frame, m mgl32.Mat4, c common.Color) {
	d := r.device
	world := f.graph.Mul4(m)
	d.SetUniform("u_mvp", f.viewProj.Mul4(world))
	d.SetUniform("u_model", world)
	d.SetUniform("u_normalMatrix", common.NormalMatrix(world))
	d.SetUniform("u_lightPosition", r.light.Position())
	d.SetUniform("u_lightStrength", r.light.Strength())
	d.SetUniform("u_eyePosition", f.eye)
	d.SetUniform("u_ambientStrength", r.light.AmbientStrength())
	d.SetUniform("u_color", c.Vec4())
	if f.shadows {
		d.SetUniform("u_depthMVP", f.depthVP.Mul4(world))
		d.SetUniform("u_shadowBias", r.light.ShadowBias())
		d.SetUniform("u_shadowTexel", r.light.ShadowTexel())
	}
}

// setGradientUniforms maps the graph's vertical extent onto the gradient texture.
func (r *baseRenderer) setGradientUniforms() {
	h := r.extents().Y() * r.zoom
	r.device.SetUniform("u_gradientMin", -h)
	r.device.SetUniform("u_gradientHeight", 2*h)
}

// wallSides returns the side of the graph box facing away from the eye along X and Z.
func wallSides(eye mgl32.Vec3) (float32, float32) {
	sx, sz := float32(-1), float32(-1)
	if eye.X() < 0 {
		sx = 1
	}
	if eye.Z() < 0 {
		sz = 1
	}
	return sx, sz
}

// wallElements returns the floor and the two walls behind the data as seen from eye.
func (r *baseRenderer) wallElements(eye mgl32.Vec3) []element {
	ext := r.extents()
	sx, sz := wallSides(eye)
	color := r.theme.BackgroundColor
	floor := mgl32.Translate3D(0, -ext.Y(), 0).
		Mul4(mgl32.HomogRotate3DX(-math32.Pi / 2)).
		Mul4(mgl32.Scale3D(ext.X(), ext.Z(), 1))
	back := mgl32.Translate3D(0, 0, sz*ext.Z()).
		Mul4(mgl32.HomogRotate3DY(rotationToward(-sz, 0))).
		Mul4(mgl32.Scale3D(ext.X(), ext.Y(), 1))
	side := mgl32.Translate3D(sx*ext.X(), 0, 0).
		Mul4(mgl32.HomogRotate3DY(rotationToward(0, -sx))).
		Mul4(mgl32.Scale3D(ext.Z(), ext.Y(), 1))
	return []element{
		{model: r.quad, matrix: floor, color: color, index: -1},
		{model: r.quad, matrix: back, color: color, index: -1},
		{model: r.quad, matrix: side, color: color, index: -1},
	}
}

// rotationToward returns the Y rotation that turns a +Z facing quad to face +Z*z or +X*x.
func rotationToward(z, x float32) float32 {
	switch {
	case x > 0:
		return math32.Pi / 2
	case x < 0:
		return -math32.Pi / 2
	case z < 0:
		return math32.Pi
	default:
		return 0
	}
}

// lineMatrix places the unit line between a and b.
func lineMatrix(a, b mgl32.Vec3) mgl32.Mat4 {
	d := b.Sub(a)
	half := d.Len() / 2
	if half == 0 {
		return mgl32.Translate3D(a.X(), a.Y(), a.Z()).Mul4(mgl32.Scale3D(0, 0, 0))
	}
	mid := a.Add(d.Mul(0.5))
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{1, 0, 0}, d.Normalize())
	return mgl32.Translate3D(mid.X(), mid.Y(), mid.Z()).Mul4(rot.Mat4()).Mul4(mgl32.Scale3D(half, 1, 1))
}

// gridElements returns the grid lines on the floor and the walls behind the data.
func (r *baseRenderer) gridElements(eye mgl32.Vec3) []element {
	ext := r.extents()
	sx, sz := wallSides(eye)
	ax, ay, az := r.axes[axis.OrientationX], r.axes[axis.OrientationY], r.axes[axis.OrientationZ]
	color := r.theme.GridLineColor
	floorY := -ext.Y()
	var out []element
	add := func(a, b mgl32.Vec3) {
		out = append(out, element{model: r.line, matrix: lineMatrix(a, b), color: color, index: -1})
	}
	for _, x := range ax.GridPositions() {
		x *= ext.X()
		add(mgl32.Vec3{x, floorY, -ext.Z()}, mgl32.Vec3{x, floorY, ext.Z()})
		add(mgl32.Vec3{x, -ext.Y(), sz * ext.Z()}, mgl32.Vec3{x, ext.Y(), sz * ext.Z()})
	}
	for _, z := range az.GridPositions() {
		z *= ext.Z()
		add(mgl32.Vec3{-ext.X(), floorY, z}, mgl32.Vec3{ext.X(), floorY, z})
		add(mgl32.Vec3{sx * ext.X(), -ext.Y(), z}, mgl32.Vec3{sx * ext.X(), ext.Y(), z})
	}
	ys := slices.Concat(ay.GridPositions(), ay.SubGridPositions())
	for _, y := range ys {
		y *= ext.Y()
		add(mgl32.Vec3{-ext.X(), y, sz * ext.Z()}, mgl32.Vec3{ext.X(), y, sz * ext.Z()})
		add(mgl32.Vec3{sx * ext.X(), y, -ext.Z()}, mgl32.Vec3{sx * ext.X(), y, ext.Z()})
	}
	return out
}

// labelPlacements returns where each label and the title of axis o go, in graph space.
func (r *baseRenderer) labelPlacements(o axis.Orientation, eye mgl32.Vec3) []labelDraw {
	c := r.axes[o]
	ext := r.extents()
	sx, sz := wallSides(eye)
	// Labels sit on the edges closest to the eye.
	nx, nz := -sx*(ext.X()+labelOffset), -sz*(ext.Z()+labelOffset)
	floorY := -ext.Y()

	at := func(t float32) mgl32.Vec3 {
		switch o {
		case axis.OrientationX:
			return mgl32.Vec3{t * ext.X(), floorY, nz}
		case axis.OrientationZ:
			return mgl32.Vec3{nx, floorY, t * ext.Z()}
		default:
			return mgl32.Vec3{nx, t * ext.Y(), sz * ext.Z()}
		}
	}
	items := c.LabelItems()
	positions := c.LabelPositions()
	out := make([]labelDraw, 0, len(items)+1)
	for i, l := range items {
		if i >= len(positions) || l.Empty() {
			continue
		}
		out = append(out, labelDraw{label: l, center: at(positions[i]), index: i})
	}
	if title := c.TitleItem(); !title.Empty() {
		p := at(0)
		switch o {
		case axis.OrientationX:
			p = p.Add(mgl32.Vec3{0, 0, -sz * 2 * labelOffset})
		case axis.OrientationZ:
			p = p.Add(mgl32.Vec3{-sx * 2 * labelOffset, 0, 0})
		default:
			p = p.Add(mgl32.Vec3{-sx * 3 * labelOffset, 0, 0})
		}
		out = append(out, labelDraw{label: title, center: p, index: -1})
	}
	return out
}

// labelElements returns the camera-facing label quads of axis o. Under OptimizationStatic the
// placements are kept until the camera, the viewport or the labels change.
func (r *baseRenderer) labelElements(o axis.Orientation, eye mgl32.Vec3) []element {
	placements := r.labelPlacements(o, eye)
	if len(placements) == 0 {
		return nil
	}
	static := r.hints == controller.OptimizationStatic
	if static && r.labelMatrices == nil {
		r.labelMatrices = make(map[*drawer.LabelItem]mgl32.Mat4)
	}
	rot := r.billboard()
	h := r.labelHalfHeight()
	out := make([]element, 0, len(placements))
	for _, p := range placements {
		m, ok := mgl32.Mat4{}, false
		if static {
			m, ok = r.labelMatrices[p.label]
		}
		if !ok {
			w, ph := p.label.Size()
			aspect := float32(w) / float32(max(ph, 1))
			m = mgl32.Translate3D(p.center.X(), p.center.Y(), p.center.Z()).
				Mul4(rot).
				Mul4(mgl32.Scale3D(h*aspect, h, 1))
			if static {
				r.labelMatrices[p.label] = m
			}
		}
		out = append(out, element{
			model:     r.quad,
			matrix:    m,
			texture:   p.label.Texture(),
			index:     p.index,
			flat:      true,
			highlight: r.selectedElement == labelElement(o) && r.selectedIndex == p.index,
		})
	}
	return out
}

// labelElement returns the element type of labels on axis o.
func labelElement(o axis.Orientation) controller.ElementType {
	switch o {
	case axis.OrientationX:
		return controller.ElementAxisXLabel
	case axis.OrientationY:
		return controller.ElementAxisYLabel
	default:
		return controller.ElementAxisZLabel
	}
}
