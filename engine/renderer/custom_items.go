package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/drawer"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// itemCache is the render state of one custom item. The mesh belongs to the loader; the texture
// and label belong to the cache.
type itemCache struct {
	item    item.CustomItem
	mesh    model.Model
	texture gpu.Texture
	label   drawer.LabelItem
	// pending holds the properties still to be applied, including ones that failed before.
	pending item.DirtyBits

	// Placement copied from the item at sync; Draw never reads the item itself.
	position mgl32.Vec3
	absolute bool
	rotation mgl32.Quat
	scaling  mgl32.Vec3
	visible  bool
	shadow   bool
	facing   bool
}

// placementBits are the properties captured by itemCache.capture.
const placementBits = item.DirtyPosition | item.DirtyPositionAbsolute | item.DirtyScaling |
	item.DirtyRotation | item.DirtyVisible | item.DirtyShadowCasting

func (c *itemCache) capture() {
	it := c.item
	c.position = it.Position()
	c.absolute = it.PositionAbsolute()
	c.rotation = it.Rotation()
	c.scaling = it.Scaling()
	c.visible = it.Visible()
	c.shadow = it.ShadowCasting()
	if l, ok := c.isLabel(); ok {
		c.facing = l.FacingCamera()
	}
}

func (c *itemCache) release() {
	c.texture.Release()
	c.label.Clear()
	c.mesh = nil
}

// forget drops the handles of a lost context without releasing them.
func (c *itemCache) forget() {
	c.texture = gpu.Texture{}
	c.label = drawer.LabelItem{}
	c.mesh = nil
	c.pending = item.DirtyAll
}

func (c *itemCache) isLabel() (item.LabelItem, bool) {
	l, ok := c.item.(item.LabelItem)
	return l, ok
}

func (r *baseRenderer) UpdateCustomItems(items []item.CustomItem) {
	byItem := make(map[item.CustomItem]*itemCache, len(r.items))
	for _, c := range r.items {
		byItem[c.item] = c
	}
	next := make([]*itemCache, 0, len(items))
	for _, it := range items {
		c, ok := byItem[it]
		if ok {
			delete(byItem, it)
		} else {
			c = &itemCache{item: it, pending: item.DirtyAll}
		}
		next = append(next, c)
	}
	for _, c := range byItem {
		c.release()
	}
	r.items = next
}

func (r *baseRenderer) UpdateCustomItem(index int, it item.CustomItem, dirty item.DirtyBits) {
	if index < 0 || index >= len(r.items) || r.items[index].item != it {
		r.logger.Debug("custom item update for unknown item", "index", index)
		return
	}
	r.items[index].pending |= dirty
}

// applyItems loads the changed resources of every custom item. Each item only reloads what its
// own dirty bits name; failures stay pending.
func (r *baseRenderer) applyItems() error {
	var errs []error
	for i, c := range r.items {
		if c.pending == 0 {
			continue
		}
		if err := r.applyItem(c); err != nil {
			errs = append(errs, fmt.Errorf("custom item %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (r *baseRenderer) applyItem(c *itemCache) error {
	if c.pending&placementBits != 0 {
		c.capture()
		c.pending &^= placementBits
	}
	var errs []error
	if c.pending&item.DirtyMesh != 0 {
		if err := r.loadItemMesh(c); err != nil {
			errs = append(errs, err)
		} else {
			c.pending &^= item.DirtyMesh
		}
	}
	if _, ok := c.isLabel(); ok {
		if c.pending&(item.DirtyLabel|item.DirtyTexture) != 0 {
			if err := r.loadItemLabel(c); err != nil {
				errs = append(errs, err)
			} else {
				c.pending &^= item.DirtyLabel | item.DirtyTexture
			}
		}
	} else if c.pending&item.DirtyTexture != 0 {
		if err := r.loadItemTexture(c); err != nil {
			errs = append(errs, err)
		} else {
			c.pending &^= item.DirtyTexture
		}
	}
	return errors.Join(errs...)
}

func (r *baseRenderer) loadItemMesh(c *itemCache) error {
	path := c.item.MeshFile()
	if path == "" {
		c.mesh = nil
		return nil
	}
	m, err := r.loader.Load(path)
	if err != nil {
		return err
	}
	c.mesh = m
	return nil
}

func (r *baseRenderer) loadItemTexture(c *itemCache) error {
	tex, err := r.device.CreateTexture(common.StagingFromImage(c.item.Texture()), true)
	if err != nil {
		return fmt.Errorf("upload texture: %w", err)
	}
	c.texture.Release()
	c.texture = tex
	return nil
}

func (r *baseRenderer) loadItemLabel(c *itemCache) error {
	l, _ := c.isLabel()
	return r.drawer.GenerateItemLabelTexture(&c.label, l)
}

// itemMatrix places an item in graph space. Data-space positions are mapped through the axes.
func (r *baseRenderer) itemMatrix(c *itemCache) mgl32.Mat4 {
	pos := c.position
	if !c.absolute {
		pos = r.dataToGraph(pos)
	}
	scale := c.scaling
	if _, ok := c.isLabel(); ok {
		w, h := c.label.Size()
		if h > 0 {
			scale = mgl32.Vec3{scale.X() * float32(w) / float32(h), scale.Y(), scale.Z()}
		}
		if c.facing {
			return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(r.billboard()).Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
		}
	}
	return common.ModelMatrix(pos, c.rotation, scale)
}

// dataToGraph maps a data-space position through the X, Y and Z axis ranges into graph space.
func (r *baseRenderer) dataToGraph(p mgl32.Vec3) mgl32.Vec3 {
	ext := r.extents()
	return mgl32.Vec3{
		r.axes[axis.OrientationX].Normalize(p.X()) * ext.X(),
		r.axes[axis.OrientationY].Normalize(p.Y()) * ext.Y(),
		r.axes[axis.OrientationZ].Normalize(p.Z()) * ext.Z(),
	}
}

// itemElements returns the draw list of visible custom items.
func (r *baseRenderer) itemElements() []element {
	out := make([]element, 0, len(r.items))
	for i, c := range r.items {
		if !c.visible {
			continue
		}
		e := element{index: i, matrix: r.itemMatrix(c), shadow: c.shadow}
		if _, ok := c.isLabel(); ok {
			if c.label.Empty() {
				continue
			}
			e.model, e.texture, e.flat, e.shadow = r.quad, c.label.Texture(), true, false
		} else {
			if c.mesh == nil || !c.texture.Valid() {
				continue
			}
			e.model, e.texture = c.mesh, c.texture
		}
		out = append(out, e)
	}
	return out
}
