package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController places an orbit camera around a target point from the chart's rotations and
// zoom level. Camera reads from the controller and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Up returns an up vector perpendicular to the viewing direction. It stays well defined when
	// the camera looks straight down.
	Up() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Radius returns the current orbit radius (distance from target).
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// Zoom adjusts the camera's distance by modifying orbit radius.
	// Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// ZoomLevel returns the zoom in percent of the base radius: 100 at the base radius, 200 at
	// half of it.
	ZoomLevel() float32

	// Apply places the camera from chart rotations and zoom level.
	//
	// Parameters:
	//   - horizontal: rotation around the chart in degrees; positive moves the camera left
	//   - vertical: elevation in degrees
	//   - zoomLevel: zoom in percent
	Apply(horizontal, vertical, zoomLevel float32)

	// ApplyPreset places the camera at a preset, keeping the zoom level. PresetNone is ignored.
	ApplyPreset(p Preset)
}
