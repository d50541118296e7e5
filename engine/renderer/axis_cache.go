package renderer

import (
	"errors"
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/drawer"
)

// AxisRenderCache is the render-side copy of one axis together with its label textures. Each
// orientation has its own cache and none of them reads another.
type AxisRenderCache struct {
	orientation axis.Orientation
	kind        axis.Type
	title       string
	labels      []string
	min, max    float32
	segments    int
	subSegments int

	drawer      drawer.Drawer
	unsubscribe func()
	labelItems  []*drawer.LabelItem
	titleItem   drawer.LabelItem
	labelsDirty bool
	titleDirty  bool
}

// NewAxisRenderCache creates an empty cache for orientation o. It draws nothing until labels or
// a title arrive.
func NewAxisRenderCache(o axis.Orientation) *AxisRenderCache {
	return &AxisRenderCache{orientation: o, max: 10, segments: 5, subSegments: 1}
}

// Orientation returns the orientation the cache belongs to.
func (c *AxisRenderCache) Orientation() axis.Orientation { return c.orientation }

// SetDrawer attaches the drawer label textures are generated with. Every label-affecting drawer
// change marks the textures for regeneration.
func (c *AxisRenderCache) SetDrawer(d drawer.Drawer) {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.drawer = d
	c.unsubscribe = d.Subscribe(func() {
		c.labelsDirty = true
		c.titleDirty = true
	})
	c.labelsDirty, c.titleDirty = true, true
}

func (c *AxisRenderCache) Type() axis.Type { return c.kind }

func (c *AxisRenderCache) SetType(t axis.Type) { c.kind = t }

func (c *AxisRenderCache) Title() string { return c.title }

func (c *AxisRenderCache) SetTitle(title string) {
	if title == c.title {
		return
	}
	c.title = title
	c.titleDirty = true
}

func (c *AxisRenderCache) Labels() []string { return c.labels }

func (c *AxisRenderCache) SetLabels(labels []string) {
	if slices.Equal(labels, c.labels) {
		return
	}
	c.labels = slices.Clone(labels)
	c.labelsDirty = true
}

func (c *AxisRenderCache) Range() (float32, float32) { return c.min, c.max }

func (c *AxisRenderCache) SetRange(min, max float32) { c.min, c.max = min, max }

func (c *AxisRenderCache) SegmentCount() int { return c.segments }

func (c *AxisRenderCache) SetSegmentCount(n int) { c.segments = max(n, 1) }

func (c *AxisRenderCache) SubSegmentCount() int { return c.subSegments }

func (c *AxisRenderCache) SetSubSegmentCount(n int) { c.subSegments = max(n, 1) }

// Dirty reports whether label textures are waiting to be regenerated.
func (c *AxisRenderCache) Dirty() bool { return c.labelsDirty || c.titleDirty }

// LabelItems returns the label textures in label order.
func (c *AxisRenderCache) LabelItems() []*drawer.LabelItem { return c.labelItems }

// TitleItem returns the title texture.
func (c *AxisRenderCache) TitleItem() *drawer.LabelItem { return &c.titleItem }

// Refresh regenerates the label and title textures marked dirty. Textures that fail to upload
// stay marked and are retried on the next call.
//
// Returns:
//   - error: the joined generation errors
func (c *AxisRenderCache) Refresh() error {
	if c.drawer == nil {
		return nil
	}
	var errs []error
	if c.labelsDirty {
		for len(c.labelItems) > len(c.labels) {
			last := len(c.labelItems) - 1
			c.labelItems[last].Clear()
			c.labelItems = c.labelItems[:last]
		}
		for len(c.labelItems) < len(c.labels) {
			c.labelItems = append(c.labelItems, &drawer.LabelItem{})
		}
		err := c.drawer.GenerateLabelTextures(c.labelItems, c.labels)
		c.labelsDirty = err != nil
		errs = append(errs, err)
	}
	if c.titleDirty {
		err := c.drawer.GenerateLabelTexture(&c.titleItem, c.title)
		c.titleDirty = err != nil
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Normalize maps a value of a value axis to [-1, 1]. Values outside the range map outside it.
func (c *AxisRenderCache) Normalize(v float32) float32 {
	span := c.max - c.min
	if span <= 0 {
		return 0
	}
	return -1 + 2*(v-c.min)/span
}

// GridPositions returns the normalized positions of the segment lines, including both ends.
// Category axes split [-1, 1] into one segment per label.
func (c *AxisRenderCache) GridPositions() []float32 {
	n := c.segments
	if c.kind == axis.TypeCategory {
		n = max(len(c.labels), 1)
	}
	return spread(n)
}

// SubGridPositions returns the normalized positions of the subsegment lines that do not
// coincide with a segment line. Category axes have none.
func (c *AxisRenderCache) SubGridPositions() []float32 {
	if c.kind == axis.TypeCategory || c.subSegments <= 1 {
		return nil
	}
	all := spread(c.segments * c.subSegments)
	out := make([]float32, 0, len(all))
	for i, p := range all {
		if i%c.subSegments != 0 {
			out = append(out, p)
		}
	}
	return out
}

// LabelPositions returns the normalized position of each label: segment boundaries on value
// axes, cell centers on category axes.
func (c *AxisRenderCache) LabelPositions() []float32 {
	n := len(c.labels)
	out := make([]float32, n)
	if n == 0 {
		return out
	}
	if c.kind == axis.TypeCategory {
		for i := range out {
			out[i] = -1 + (2*float32(i)+1)/float32(n)
		}
		return out
	}
	if n == 1 {
		return out
	}
	for i := range out {
		out[i] = -1 + 2*float32(i)/float32(n-1)
	}
	return out
}

// Release frees every texture and detaches from the drawer.
func (c *AxisRenderCache) Release() {
	for _, l := range c.labelItems {
		l.Clear()
	}
	c.labelItems = nil
	c.titleItem.Clear()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Invalidate forgets the textures of a lost context without releasing them and marks everything
// for regeneration.
func (c *AxisRenderCache) Invalidate() {
	for i := range c.labelItems {
		c.labelItems[i] = &drawer.LabelItem{}
	}
	c.titleItem = drawer.LabelItem{}
	c.labelsDirty, c.titleDirty = true, true
}

// spread returns n+1 evenly spaced positions from -1 to 1.
func spread(n int) []float32 {
	out := make([]float32, n+1)
	for i := range out {
		out[i] = -1 + 2*float32(i)/float32(n)
	}
	return out
}
