package item

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomItemDefaults(t *testing.T) {
	c := NewCustomItem()
	assert.Equal(t, mgl32.Vec3{}, c.Position())
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, c.Scaling())
	assert.Equal(t, mgl32.QuatIdent(), c.Rotation())
	assert.True(t, c.Visible())
	assert.True(t, c.ShadowCasting())
	assert.False(t, c.PositionAbsolute())
	assert.Equal(t, image.Rect(0, 0, 2, 2), c.Texture().Bounds())
	assert.Equal(t, DirtyAll, c.Dirty())
}

func TestSettersMarkOnlyTheirOwnBit(t *testing.T) {
	c := NewCustomItem()
	c.ConsumeDirty()
	var marked []DirtyBits
	c.Subscribe(func(b DirtyBits) { marked = append(marked, b) })

	c.SetPosition(mgl32.Vec3{1, 2, 3})
	assert.Equal(t, DirtyPosition, c.ConsumeDirty())
	c.SetScaling(mgl32.Vec3{1, 1, 1})
	assert.Equal(t, DirtyScaling, c.ConsumeDirty())
	c.SetVisible(false)
	c.SetShadowCasting(false)
	assert.Equal(t, DirtyVisible|DirtyShadowCasting, c.ConsumeDirty())
	c.SetPositionAbsolute(true)
	c.SetMeshFile("bar.obj")
	assert.Equal(t, DirtyPositionAbsolute|DirtyMesh, c.ConsumeDirty())

	c.SetPosition(mgl32.Vec3{1, 2, 3})
	c.SetVisible(false)
	c.SetTexture(nil)
	assert.Equal(t, DirtyBits(0), c.Dirty())
	assert.Len(t, marked, 6)
}

func TestSetRotationAxisAndAngle(t *testing.T) {
	c := NewCustomItem()
	require.NoError(t, c.SetRotationAxisAndAngle(mgl32.Vec3{0, 2, 0}, 90))
	got := c.Rotation().Rotate(mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 0, got.X(), 1e-5)
	assert.InDelta(t, -1, got.Z(), 1e-5)

	before := c.Rotation()
	assert.ErrorIs(t, c.SetRotationAxisAndAngle(mgl32.Vec3{}, 45), ErrZeroAxis)
	assert.Equal(t, before, c.Rotation())
}

func TestSetTextureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, common.SolidImage(4, 4, color.RGBA{R: 255, A: 255})))
	require.NoError(t, f.Close())

	c := NewCustomItem()
	c.ConsumeDirty()
	require.NoError(t, c.SetTextureFile(path))
	assert.Equal(t, path, c.TextureFile())
	assert.Equal(t, 4, c.Texture().Bounds().Dx())
	assert.Equal(t, DirtyTexture, c.ConsumeDirty())

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	assert.Error(t, c.SetTextureFile(bad))
	assert.Equal(t, path, c.TextureFile())
	assert.Equal(t, DirtyBits(0), c.Dirty())

	require.NoError(t, c.SetTextureFile(""))
	assert.Equal(t, 2, c.Texture().Bounds().Dx())
	assert.Equal(t, DirtyTexture, c.ConsumeDirty())

	c.SetTexture(common.SolidImage(8, 8, color.White))
	assert.Equal(t, "", c.TextureFile())
	assert.Equal(t, 8, c.Texture().Bounds().Dx())
}

func TestLabelItem(t *testing.T) {
	l := NewLabelItem(WithText("peak"), WithItemOptions(WithPosition(mgl32.Vec3{1, 0, 0})))
	assert.Equal(t, "peak", l.Text())
	assert.False(t, l.ShadowCasting())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, l.Position())
	l.ConsumeDirty()

	l.SetText("peak")
	assert.Equal(t, DirtyBits(0), l.Dirty())
	l.SetText("valley")
	assert.Equal(t, DirtyLabel, l.ConsumeDirty())

	require.NoError(t, l.SetRotationAxisAndAngle(mgl32.Vec3{0, 1, 0}, 90))
	l.SetFacingCamera(true)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0).Mul4(mgl32.Scale3D(0.1, 0.1, 0.1)), l.ModelMatrix())
}

func TestRegistryAddRemoveRoundTrip(t *testing.T) {
	r := NewRegistry()
	a := NewCustomItem(WithPosition(mgl32.Vec3{0, 0, 0}))
	b := NewCustomItem(WithPosition(mgl32.Vec3{1, 0, 0}))
	c := NewCustomItem(WithPosition(mgl32.Vec3{2, 0, 0}))
	var events []Event
	r.Subscribe(func(e Event) { events = append(events, e) })

	assert.Equal(t, 0, r.Add(a))
	assert.Equal(t, 1, r.Add(b))
	assert.Equal(t, 2, r.Add(c))
	assert.Equal(t, 1, r.Add(b))
	assert.Equal(t, -1, r.Add(nil))

	tex := common.SolidImage(4, 4, color.White)
	b.SetTexture(tex)
	assert.True(t, r.Remove(b))
	assert.False(t, r.Remove(b))

	assert.Equal(t, []CustomItem{a, c}, r.Items())
	assert.Equal(t, 1, r.IndexOf(c))
	assert.Equal(t, 2, b.Texture().Bounds().Dx())

	assert.Equal(t, EventUpdated, events[3].Kind)
	assert.Equal(t, 1, events[3].Index)
	assert.Equal(t, Event{Kind: EventRemoved, Index: 1, Item: b}, events[4])

	b.SetVisible(false)
	assert.Len(t, events, 5)
}

func TestRegistryRemoveAtAndRelease(t *testing.T) {
	r := NewRegistry(WithTolerance(0.5))
	a := NewCustomItem(WithPosition(mgl32.Vec3{0, 0, 0}))
	b := NewCustomItem(WithPosition(mgl32.Vec3{1, 0, 0}))
	r.Add(a)
	r.Add(b)

	assert.False(t, r.RemoveAt(mgl32.Vec3{5, 5, 5}))
	assert.True(t, r.RemoveAt(mgl32.Vec3{0.8, 0, 0}))
	assert.Equal(t, []CustomItem{a}, r.Items())

	tex := common.SolidImage(4, 4, color.White)
	a.SetTexture(tex)
	assert.True(t, r.Release(a))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 4, a.Texture().Bounds().Dx())
	assert.Equal(t, 0, r.Add(a))

	r.Add(b)
	r.RemoveAll()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.At(0))
}
