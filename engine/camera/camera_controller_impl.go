package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32
	elevation float32

	// baseRadius is the radius at zoom level 100.
	baseRadius float32
	minRadius  float32
	maxRadius  float32

	zoomSpeed float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit controller looking at the origin from the Front preset.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:         &sync.Mutex{},
		baseRadius: 6,
		elevation:  mgl32.DegToRad(22.5),
		zoomSpeed:  0.5,
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = cc.baseRadius
	// Zoom levels between 10% and 500%.
	cc.minRadius = cc.baseRadius / 5
	cc.maxRadius = cc.baseRadius * 10
	cc.updatePosition()
	return cc
}

func clampElevation(e float32) float32 {
	return mgl32.Clamp(e, -math32.Pi/2, math32.Pi/2)
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinA, cosA := math32.Sincos(cc.azimuth)
	sinE, cosE := math32.Sincos(cc.elevation)
	cc.position = cc.target.Add(mgl32.Vec3{cosE * sinA, sinE, cosE * cosA}.Mul(cc.radius))
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Up() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	// Derivative of the position with respect to elevation.
	sinA, cosA := math32.Sincos(cc.azimuth)
	sinE, cosE := math32.Sincos(cc.elevation)
	return mgl32.Vec3{-sinE * sinA, cosE, -sinE * cosA}
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = mgl32.Clamp(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) ZoomLevel() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return 100 * cc.baseRadius / cc.radius
}

func (cc *cameraControllerImpl) Apply(horizontal, vertical, zoomLevel float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = -mgl32.DegToRad(horizontal)
	cc.elevation = clampElevation(mgl32.DegToRad(vertical))
	if zoomLevel > 0 {
		cc.radius = mgl32.Clamp(cc.baseRadius*100/zoomLevel, cc.minRadius, cc.maxRadius)
	}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) ApplyPreset(p Preset) {
	h, v, ok := p.Angles()
	if !ok {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = -mgl32.DegToRad(h)
	cc.elevation = mgl32.DegToRad(v)
	cc.updatePosition()
}
