package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Selection ids pack the element kind above the element index. Zero is the cleared background.
const (
	idKindShift = 21
	idIndexMask = 1<<idKindShift - 1
)

const (
	idSeries uint32 = iota + 1
	idAxisX
	idAxisY
	idAxisZ
	idCustomItem
)

// noHit is the result of a hit test that found nothing.
var noHit = controller.SelectionResult{Element: controller.ElementNone, Row: -1, Column: -1, Index: -1}

func encodeSelection(kind uint32, index int) uint32 {
	return kind<<idKindShift | uint32(index)&idIndexMask
}

func decodeSelection(id uint32) (uint32, int) {
	return id >> idKindShift, int(id & idIndexMask)
}

func (r *baseRenderer) HandleSelection(x, y int) (controller.SelectionResult, error) {
	f := r.last
	if f == nil || !r.initialized {
		return noHit, nil
	}
	lx, ly := x-r.rect.X, y-r.rect.Y
	if lx < 0 || ly < 0 || lx >= r.rect.Width || ly >= r.rect.Height {
		return noHit, nil
	}
	origin, dir, ok := r.pickRay(f, lx, ly)

	if reader, hasReader := r.device.(gpu.PixelReader); hasReader && r.selectionTarget.Valid() {
		id, err := r.readSelection(f, reader, lx, ly)
		if err == nil {
			return r.resolveID(id, origin, dir), nil
		}
		if errors.Is(r.check(err), gpu.ErrContextLost) {
			return noHit, err
		}
		r.logger.Warn("selection pass failed, picking on the CPU", "error", err)
	}
	if !ok {
		return noHit, nil
	}
	return r.pickCPU(f, origin, dir), nil
}

// pickRay returns the ray under a viewport position in the space the elements are placed in,
// before the graph zoom.
func (r *baseRenderer) pickRay(f *frame, x, y int) (mgl32.Vec3, mgl32.Vec3, bool) {
	proj := r.library.ClipCorrection().Inv().Mul4(r.camera.ProjectionMatrix())
	return common.ScreenRay(float32(x)+0.5, float32(y)+0.5, r.rect.Width, r.rect.Height, f.view.Mul4(f.graph), proj)
}

// readSelection draws every pickable element in its id color and reads back the pixel at x, y.
func (r *baseRenderer) readSelection(f *frame, reader gpu.PixelReader, x, y int) (uint32, error) {
	d := r.device
	d.BindTarget(r.selectionTarget)
	d.Viewport(common.Rect{Width: r.rect.Width, Height: r.rect.Height})
	d.Clear(common.Color{})
	d.UseProgram(r.plainProgram)

	draw := func(kind uint32, elements []element) error {
		for _, e := range elements {
			if e.index < 0 {
				continue
			}
			d.SetUniform("u_mvp", f.viewProj.Mul4(f.graph).Mul4(e.matrix))
			d.SetUniform("u_color", gpu.EncodeID(encodeSelection(kind, e.index)).Vec4())
			if err := r.drawer.DrawObject(r.plainProgram, e.model, gpu.Texture{}); err != nil {
				return err
			}
		}
		return nil
	}
	err := draw(idSeries, f.series)
	if err == nil {
		err = draw(idSeries, f.lines)
	}
	if err == nil {
		err = draw(idCustomItem, f.items)
	}
	for _, o := range axis.Orientations {
		if err == nil {
			err = draw(idAxisX+uint32(o), f.labels[o])
		}
	}
	d.BindTarget(gpu.Target{})
	if err != nil {
		return 0, err
	}
	c, err := reader.ReadPixel(r.selectionTarget, x, y)
	if err != nil {
		return 0, err
	}
	return gpu.DecodeID(c), nil
}

func (r *baseRenderer) resolveID(id uint32, origin, dir mgl32.Vec3) controller.SelectionResult {
	if id == 0 {
		return noHit
	}
	kind, index := decodeSelection(id)
	switch kind {
	case idSeries:
		return r.series.resolve(index, origin, dir)
	case idCustomItem:
		return controller.SelectionResult{Element: controller.ElementCustomItem, Row: -1, Column: -1, Index: index}
	case idAxisX, idAxisY, idAxisZ:
		o := axis.Orientation(kind - idAxisX)
		return controller.SelectionResult{Element: labelElement(o), Row: -1, Column: -1, Index: index}
	}
	return noHit
}

// pickCPU intersects the ray with the bounds of every pickable element and resolves the nearest.
func (r *baseRenderer) pickCPU(f *frame, origin, dir mgl32.Vec3) controller.SelectionResult {
	best := float32(-1)
	var bestID uint32
	test := func(kind uint32, elements []element) {
		for _, e := range elements {
			if e.index < 0 || e.model == nil {
				continue
			}
			dist, ok := hitDistance(e, origin, dir)
			if ok && (best < 0 || dist < best) {
				best, bestID = dist, encodeSelection(kind, e.index)
			}
		}
	}
	test(idSeries, f.series)
	test(idSeries, f.lines)
	test(idCustomItem, f.items)
	for _, o := range axis.Orientations {
		test(idAxisX+uint32(o), f.labels[o])
	}
	return r.resolveID(bestID, origin, dir)
}

// hitDistance intersects a ray with the model bounds of e and returns the distance to the entry
// point in the ray's space.
func hitDistance(e element, origin, dir mgl32.Vec3) (float32, bool) {
	inv := e.matrix.Inv()
	if inv == (mgl32.Mat4{}) {
		return 0, false
	}
	lo := inv.Mul4x1(origin.Vec4(1)).Vec3()
	ld := inv.Mul4x1(dir.Vec4(0)).Vec3()
	minB, maxB := e.model.Bounds()
	// Flat quads have no depth; give them a sliver so the slab test can hit them.
	for i := range 3 {
		if maxB[i]-minB[i] < 1e-4 {
			minB[i] -= 1e-3
			maxB[i] += 1e-3
		}
	}
	t, ok := common.RayBoxIntersect(lo, ld, minB, maxB)
	if !ok {
		return 0, false
	}
	hit := e.matrix.Mul4x1(lo.Add(ld.Mul(t)).Vec4(1)).Vec3()
	return hit.Sub(origin).Len(), true
}
