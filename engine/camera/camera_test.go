package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v, got %v", want, got)
}

func TestPresetPlacement(t *testing.T) {
	cc := NewCameraController(WithBaseRadius(10))

	cc.ApplyPreset(PresetFrontLow)
	assertVec(t, mgl32.Vec3{0, 0, 10}, cc.Position())

	cc.ApplyPreset(PresetLeftLow)
	assertVec(t, mgl32.Vec3{-10, 0, 0}, cc.Position())

	cc.ApplyPreset(PresetBehindLow)
	assertVec(t, mgl32.Vec3{0, 0, -10}, cc.Position())

	before := cc.Position()
	cc.ApplyPreset(PresetNone)
	assertVec(t, before, cc.Position())
}

func TestDirectlyAboveKeepsUsableUp(t *testing.T) {
	cc := NewCameraController(WithBaseRadius(10))
	cc.ApplyPreset(PresetDirectlyAbove)
	assertVec(t, mgl32.Vec3{0, 10, 0}, cc.Position())

	up := cc.Up()
	assert.InDelta(t, 1, up.Len(), 1e-5)
	assert.InDelta(t, 0, up.Dot(cc.Position().Normalize()), 1e-5)

	c := NewCamera(WithController(cc))
	for _, v := range c.ViewMatrix() {
		assert.False(t, math32.IsNaN(v), "view matrix contains NaN")
	}
}

func TestZoomLevelRoundTrip(t *testing.T) {
	cc := NewCameraController(WithBaseRadius(6))
	assert.InDelta(t, 100, cc.ZoomLevel(), 1e-4)

	cc.Apply(30, 10, 200)
	assert.InDelta(t, 3, cc.Radius(), 1e-5)
	assert.InDelta(t, 200, cc.ZoomLevel(), 1e-3)

	cc.Apply(0, 0, 10000)
	assert.InDelta(t, 500, cc.ZoomLevel(), 1e-3)

	cc.Zoom(-1000)
	assert.InDelta(t, 10, cc.ZoomLevel(), 1e-3)

	cc.Apply(0, 120, 0)
	assert.InDelta(t, mgl32.DegToRad(90), cc.Elevation(), 1e-5)
	assert.InDelta(t, 10, cc.ZoomLevel(), 1e-3)
}

func TestCameraFollowsController(t *testing.T) {
	cc := NewCameraController(WithBaseRadius(10))
	cc.ApplyPreset(PresetFrontLow)
	c := NewCamera(WithController(cc), WithAspect(2))

	eye := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 10, 1})
	assert.InDelta(t, 0, eye.Z(), 1e-4)

	cc.SetTarget(mgl32.Vec3{1, 0, 0})
	c.Update()
	assertVec(t, mgl32.Vec3{1, 0, 10}, c.Position())

	want := c.ProjectionMatrix().Mul4(c.ViewMatrix())
	assert.True(t, want.ApproxEqualThreshold(c.ViewProjectionMatrix(), 1e-5))
}

func TestOrthoMatchesFrustumAtTarget(t *testing.T) {
	cc := NewCameraController(WithBaseRadius(10))
	cc.ApplyPreset(PresetFrontLow)
	c := NewCamera(WithController(cc))

	// A point on the top edge of the perspective frustum at the target stays there in ortho.
	top := float32(10 * 0.41421356)
	persp := mgl32.TransformCoordinate(mgl32.Vec3{0, top, 0}, c.ViewProjectionMatrix())
	c.SetOrtho(true)
	require.True(t, c.Ortho())
	ortho := mgl32.TransformCoordinate(mgl32.Vec3{0, top, 0}, c.ViewProjectionMatrix())
	assert.InDelta(t, 1, persp.Y(), 1e-3)
	assert.InDelta(t, 1, ortho.Y(), 1e-3)
}

func TestClipCorrectionAndAspect(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))
	plain := c.ProjectionMatrix()

	half := mgl32.Translate3D(0, 0, 0.5).Mul4(mgl32.Scale3D(1, 1, 0.5))
	c.SetClipCorrection(half)
	assert.True(t, half.Mul4(plain).ApproxEqualThreshold(c.ProjectionMatrix(), 1e-6))

	c.SetAspect(0)
	assert.Equal(t, float32(1), c.Aspect())
	c.SetAspect(1.5)
	assert.Equal(t, float32(1.5), c.Aspect())
}
