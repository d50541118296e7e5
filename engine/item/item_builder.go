package item

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// CustomItemBuilderOption is a functional option for configuring a CustomItem during construction.
type CustomItemBuilderOption func(*customItem)

// WithMeshFile sets the OBJ mesh path.
//
// Parameters:
//   - path: the mesh file path
//
// Returns:
//   - CustomItemBuilderOption: a function that sets the mesh file
func WithMeshFile(path string) CustomItemBuilderOption {
	return func(c *customItem) {
		c.meshFile = path
	}
}

// WithPosition sets the initial position.
//
// Parameters:
//   - position: data-space position, or graph-space if WithPositionAbsolute is also given
//
// Returns:
//   - CustomItemBuilderOption: a function that sets the position
func WithPosition(position mgl32.Vec3) CustomItemBuilderOption {
	return func(c *customItem) {
		c.position = position
	}
}

// WithPositionAbsolute places the item in normalized graph space.
func WithPositionAbsolute() CustomItemBuilderOption {
	return func(c *customItem) {
		c.positionAbsolute = true
	}
}

// WithScaling sets the initial scale.
func WithScaling(scaling mgl32.Vec3) CustomItemBuilderOption {
	return func(c *customItem) {
		c.scaling = scaling
	}
}

// WithRotation sets the initial rotation.
func WithRotation(rotation mgl32.Quat) CustomItemBuilderOption {
	return func(c *customItem) {
		c.rotation = rotation
	}
}

// WithVisible sets the initial visibility.
func WithVisible(visible bool) CustomItemBuilderOption {
	return func(c *customItem) {
		c.visible = visible
	}
}

// WithShadowCasting sets whether the item casts shadows.
func WithShadowCasting(enabled bool) CustomItemBuilderOption {
	return func(c *customItem) {
		c.shadowCasting = enabled
	}
}

// WithTexture sets the initial texture. A nil image keeps the gray default.
func WithTexture(img image.Image) CustomItemBuilderOption {
	return func(c *customItem) {
		if img != nil {
			c.texture = img
			c.defaultTexture = false
		}
	}
}
