package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithBaseRadius sets the orbit radius that corresponds to zoom level 100. The radius limits
// follow from it.
//
// Parameters:
//   - radius: the base distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the base radius
func WithBaseRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.baseRadius = radius
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - target: the world-space target position
//
// Returns:
//   - CameraControllerOption: functional option to set the target position
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithZoomSpeed sets the radius change per unit of wheel movement.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
