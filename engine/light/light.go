// Package light holds the single light of a chart and the shadow map parameters derived from
// the shadow quality.
package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	position mgl32.Vec3
	color    mgl32.Vec3

	strength        float32
	ambientStrength float32

	// lift raises the light above the eye along the camera up vector, in radii.
	lift float32

	shadowMapSize int
	softShadows   bool
	shadowBias    float32
	shadowNear    float32
	shadowFar     float32
}

// Light defines the interface for the light illuminating a chart.
//
// A chart has exactly one light. It follows the camera so the lit side of the chart always
// faces the viewer, and optionally casts shadows through a depth map rendered from its position.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition places the light explicitly.
	//
	// Parameters:
	//   - p: the world-space position
	SetPosition(p mgl32.Vec3)

	// FollowCamera places the light relative to the camera: at the eye distance from the
	// target, raised along the camera up vector.
	//
	// Parameters:
	//   - eye: the camera position
	//   - target: the point the camera looks at
	//   - up: the camera up vector
	FollowCamera(eye, target, up mgl32.Vec3)

	// Color returns the RGB color of the light.
	Color() mgl32.Vec3

	// SetColor sets the RGB color of the light.
	SetColor(c mgl32.Vec3)

	// Strength returns the diffuse and specular strength.
	//
	// Returns:
	//   - float32: the strength multiplier
	Strength() float32

	// SetStrength sets the diffuse and specular strength.
	//
	// Parameters:
	//   - s: the strength multiplier
	SetStrength(s float32)

	// AmbientStrength returns the ambient term applied regardless of direction.
	AmbientStrength() float32

	// SetAmbientStrength sets the ambient term.
	SetAmbientStrength(s float32)

	// SetShadowMap configures shadow casting. A size of zero disables shadows.
	//
	// Parameters:
	//   - size: the edge length of the depth map in texels
	//   - soft: whether the map is sampled with percentage-closer filtering
	SetShadowMap(size int, soft bool)

	// ShadowMapSize returns the edge length of the depth map, zero when shadows are off.
	ShadowMapSize() int

	// SoftShadows reports whether the depth map is sampled with percentage-closer filtering.
	SoftShadows() bool

	// CastsShadows reports whether a depth map should be rendered.
	CastsShadows() bool

	// ShadowBias returns the constant depth bias applied to shadow comparisons.
	ShadowBias() float32

	// ShadowTexel returns the size of one depth map texel in texture coordinates, zero when
	// shadows are off.
	ShadowTexel() float32

	// DepthViewProjection returns the matrix taking world space to the light's clip space. The
	// orthographic volume is fit around a sphere of the given radius at the target.
	//
	// Parameters:
	//   - target: the center of the chart
	//   - radius: the bounding radius of the chart
	//
	// Returns:
	//   - mgl32.Mat4: the light view-projection matrix
	DepthViewProjection(target mgl32.Vec3, radius float32) mgl32.Mat4
}

var _ Light = &lightImpl{}

// NewLight creates a Light with default strength and shadows disabled.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		position:        mgl32.Vec3{0, 10, 10},
		color:           mgl32.Vec3{1, 1, 1},
		strength:        5,
		ambientStrength: 0.25,
		lift:            0.5,
		shadowBias:      DefaultShadowBias,
		shadowNear:      DefaultShadowNear,
		shadowFar:       DefaultShadowFar,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() mgl32.Vec3 { return l.position }

func (l *lightImpl) SetPosition(p mgl32.Vec3) { l.position = p }

func (l *lightImpl) FollowCamera(eye, target, up mgl32.Vec3) {
	offset := eye.Sub(target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	l.position = target.Add(offset).Add(up.Normalize().Mul(dist * l.lift))
}

func (l *lightImpl) Color() mgl32.Vec3 { return l.color }

func (l *lightImpl) SetColor(c mgl32.Vec3) { l.color = c }

func (l *lightImpl) Strength() float32 { return l.strength }

func (l *lightImpl) SetStrength(s float32) { l.strength = max(s, 0) }

func (l *lightImpl) AmbientStrength() float32 { return l.ambientStrength }

func (l *lightImpl) SetAmbientStrength(s float32) { l.ambientStrength = mgl32.Clamp(s, 0, 1) }

func (l *lightImpl) SetShadowMap(size int, soft bool) {
	l.shadowMapSize = max(size, 0)
	l.softShadows = soft && size > 0
}

func (l *lightImpl) ShadowMapSize() int { return l.shadowMapSize }

func (l *lightImpl) SoftShadows() bool { return l.softShadows }

func (l *lightImpl) CastsShadows() bool { return l.shadowMapSize > 0 }

func (l *lightImpl) ShadowBias() float32 { return l.shadowBias }

func (l *lightImpl) ShadowTexel() float32 {
	if l.shadowMapSize == 0 {
		return 0
	}
	return 1 / float32(l.shadowMapSize)
}

func (l *lightImpl) DepthViewProjection(target mgl32.Vec3, radius float32) mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	dir := l.position.Sub(target)
	if dist := dir.Len(); dist == 0 || math32.Abs(dir.Normalize().Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, -1}
	}
	view := mgl32.LookAtV(l.position, target, up)
	dist := dir.Len()
	near := max(dist-radius, l.shadowNear)
	far := min(dist+radius, l.shadowFar)
	if far <= near {
		far = near + 2*radius
	}
	proj := mgl32.Ortho(-radius, radius, -radius, radius, near, far)
	return proj.Mul4(view)
}
