// Package item holds user-placed custom items: meshes with a transform and texture, and text
// labels, plus the Registry that orders them for a chart. Every setter marks only its own dirty
// bit, so the renderer reloads exactly the resources that changed.
package item

import (
	"errors"
	"image"
	"image/color"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrZeroAxis is returned when a rotation axis has zero length.
var ErrZeroAxis = errors.New("rotation axis has zero length")

// DirtyBits records which properties of an item changed since the renderer last consumed them.
type DirtyBits uint16

const (
	DirtyTexture DirtyBits = 1 << iota
	DirtyMesh
	DirtyPosition
	DirtyPositionAbsolute
	DirtyScaling
	DirtyRotation
	DirtyVisible
	DirtyShadowCasting
	// DirtyLabel marks a change in the text or appearance of a label item.
	DirtyLabel

	DirtyAll = DirtyTexture | DirtyMesh | DirtyPosition | DirtyPositionAbsolute | DirtyScaling |
		DirtyRotation | DirtyVisible | DirtyShadowCasting | DirtyLabel
)

// Has reports whether every bit in b is set.
func (d DirtyBits) Has(b DirtyBits) bool { return d&b == b }

// DefaultScaling is the scaling of a new item.
var DefaultScaling = mgl32.Vec3{0.1, 0.1, 0.1}

// grayTexture is the texture of an item with no texture of its own.
func grayTexture() image.Image {
	return common.SolidImage(2, 2, color.Gray{Y: 128})
}

type customItem struct {
	meshFile         string
	position         mgl32.Vec3
	positionAbsolute bool
	scaling          mgl32.Vec3
	rotation         mgl32.Quat
	visible          bool
	shadowCasting    bool
	texture          image.Image
	textureFile      string
	defaultTexture   bool
	dirty            DirtyBits
	listeners        common.Subscribers[func(DirtyBits)]
}

// CustomItem is a mesh placed in a chart. Positions are in data space unless PositionAbsolute
// is set, in which case they are in normalized graph space.
type CustomItem interface {
	// MeshFile returns the path of the OBJ mesh.
	MeshFile() string

	// SetMeshFile sets the path of the OBJ mesh. The mesh is loaded by the renderer on next sync.
	SetMeshFile(path string)

	// Position returns the item position.
	Position() mgl32.Vec3

	// SetPosition moves the item.
	SetPosition(position mgl32.Vec3)

	// PositionAbsolute reports whether Position is in graph space instead of data space.
	PositionAbsolute() bool

	// SetPositionAbsolute switches between graph-space and data-space positioning.
	SetPositionAbsolute(absolute bool)

	// Scaling returns the item scale.
	Scaling() mgl32.Vec3

	// SetScaling sets the item scale.
	SetScaling(scaling mgl32.Vec3)

	// Rotation returns the item rotation.
	Rotation() mgl32.Quat

	// SetRotation sets the item rotation.
	SetRotation(rotation mgl32.Quat)

	// SetRotationAxisAndAngle sets the rotation from an axis and an angle.
	//
	// Parameters:
	//   - axis: the rotation axis, need not be normalized
	//   - degrees: the rotation angle in degrees
	//
	// Returns:
	//   - error: ErrZeroAxis if axis has zero length
	SetRotationAxisAndAngle(axis mgl32.Vec3, degrees float32) error

	// Visible reports whether the item is drawn.
	Visible() bool

	// SetVisible shows or hides the item.
	SetVisible(visible bool)

	// ShadowCasting reports whether the item casts shadows.
	ShadowCasting() bool

	// SetShadowCasting toggles shadow casting.
	SetShadowCasting(enabled bool)

	// Texture returns the item texture. It is never nil; items without a texture get a 2x2 gray
	// image.
	Texture() image.Image

	// SetTexture sets the item texture and clears TextureFile. A nil image resets to gray.
	SetTexture(img image.Image)

	// TextureFile returns the path the texture was loaded from, or empty.
	TextureFile() string

	// SetTextureFile loads the texture from an image file. An empty path resets to gray.
	//
	// Parameters:
	//   - path: the image file path
	//
	// Returns:
	//   - error: if the file cannot be decoded; the item is unchanged in that case
	SetTextureFile(path string) error

	// ModelMatrix returns translate * rotate * scale for the item's own transform.
	ModelMatrix() mgl32.Mat4

	// Dirty returns the properties changed since the last ConsumeDirty.
	Dirty() DirtyBits

	// ConsumeDirty returns and clears the dirty bits.
	ConsumeDirty() DirtyBits

	// Subscribe registers a listener called with the bit of every effective change.
	Subscribe(listener func(DirtyBits)) (unsubscribe func())
}

var _ CustomItem = &customItem{}

// NewCustomItem creates an item at the origin with scaling 0.1, no rotation, visible, casting
// shadows and a gray texture. All dirty bits start set so a newly added item is fully uploaded.
//
// Parameters:
//   - options: a variadic list of CustomItemBuilderOption functions
//
// Returns:
//   - CustomItem: the new item
func NewCustomItem(options ...CustomItemBuilderOption) CustomItem {
	c := newCustomItem()
	for _, opt := range options {
		opt(c)
	}
	return c
}

func newCustomItem() *customItem {
	return &customItem{
		scaling:        DefaultScaling,
		rotation:       mgl32.QuatIdent(),
		visible:        true,
		shadowCasting:  true,
		texture:        grayTexture(),
		defaultTexture: true,
		dirty:          DirtyAll,
	}
}

func (c *customItem) mark(bit DirtyBits) {
	c.dirty |= bit
	c.listeners.Each(func(fn func(DirtyBits)) { fn(bit) })
}

func (c *customItem) MeshFile() string { return c.meshFile }

func (c *customItem) SetMeshFile(path string) {
	if path == c.meshFile {
		return
	}
	c.meshFile = path
	c.mark(DirtyMesh)
}

func (c *customItem) Position() mgl32.Vec3 { return c.position }

func (c *customItem) SetPosition(position mgl32.Vec3) {
	if position == c.position {
		return
	}
	c.position = position
	c.mark(DirtyPosition)
}

func (c *customItem) PositionAbsolute() bool { return c.positionAbsolute }

func (c *customItem) SetPositionAbsolute(absolute bool) {
	if absolute == c.positionAbsolute {
		return
	}
	c.positionAbsolute = absolute
	c.mark(DirtyPositionAbsolute)
}

func (c *customItem) Scaling() mgl32.Vec3 { return c.scaling }

func (c *customItem) SetScaling(scaling mgl32.Vec3) {
	if scaling == c.scaling {
		return
	}
	c.scaling = scaling
	c.mark(DirtyScaling)
}

func (c *customItem) Rotation() mgl32.Quat { return c.rotation }

func (c *customItem) SetRotation(rotation mgl32.Quat) {
	if rotation == c.rotation {
		return
	}
	c.rotation = rotation
	c.mark(DirtyRotation)
}

func (c *customItem) SetRotationAxisAndAngle(axis mgl32.Vec3, degrees float32) error {
	if axis.Len() == 0 {
		return ErrZeroAxis
	}
	c.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(degrees), axis.Normalize()))
	return nil
}

func (c *customItem) Visible() bool { return c.visible }

func (c *customItem) SetVisible(visible bool) {
	if visible == c.visible {
		return
	}
	c.visible = visible
	c.mark(DirtyVisible)
}

func (c *customItem) ShadowCasting() bool { return c.shadowCasting }

func (c *customItem) SetShadowCasting(enabled bool) {
	if enabled == c.shadowCasting {
		return
	}
	c.shadowCasting = enabled
	c.mark(DirtyShadowCasting)
}

func (c *customItem) Texture() image.Image { return c.texture }

func (c *customItem) SetTexture(img image.Image) {
	if img == nil {
		if c.defaultTexture && c.textureFile == "" {
			return
		}
		c.texture = grayTexture()
		c.defaultTexture = true
	} else {
		c.texture = img
		c.defaultTexture = false
	}
	c.textureFile = ""
	c.mark(DirtyTexture)
}

func (c *customItem) TextureFile() string { return c.textureFile }

func (c *customItem) SetTextureFile(path string) error {
	if path == c.textureFile {
		return nil
	}
	if path == "" {
		c.texture = grayTexture()
		c.defaultTexture = true
		c.textureFile = ""
		c.mark(DirtyTexture)
		return nil
	}
	img, err := loader.LoadImage(path)
	if err != nil {
		return err
	}
	c.texture = img
	c.defaultTexture = false
	c.textureFile = path
	c.mark(DirtyTexture)
	return nil
}

func (c *customItem) ModelMatrix() mgl32.Mat4 {
	return common.ModelMatrix(c.position, c.rotation, c.scaling)
}

func (c *customItem) Dirty() DirtyBits { return c.dirty }

func (c *customItem) ConsumeDirty() DirtyBits {
	d := c.dirty
	c.dirty = 0
	return d
}

func (c *customItem) Subscribe(listener func(DirtyBits)) func() {
	return c.listeners.Add(listener)
}
