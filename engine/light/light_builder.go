package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(p mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithStrength is an option builder that sets the diffuse and specular strength.
func WithStrength(s float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.strength = s
	}
}

// WithAmbientStrength is an option builder that sets the ambient term.
func WithAmbientStrength(s float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambientStrength = s
	}
}

// WithLift sets how far above the eye FollowCamera places the light, as a fraction of the
// eye distance.
func WithLift(lift float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lift = lift
	}
}

// WithShadowBias is an option builder that sets the constant depth bias.
//
// Parameters:
//   - bias: the bias in depth units
//
// Returns:
//   - LightBuilderOption: a function that applies the bias option to a lightImpl
func WithShadowBias(bias float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowBias = bias
	}
}
