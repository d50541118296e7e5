package controller

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
)

// Aspect names one piece of controller state that the renderer mirrors.
type Aspect int

const (
	AspectBoundingRect Aspect = iota
	AspectTheme
	AspectFont
	AspectLabelTransparency
	AspectShadowQuality
	AspectSelectionMode
	AspectCamera
	AspectOrthoProjection
	AspectAspectRatio
	AspectOptimizationHints
	AspectMeasureFps
	AspectCustomItems
	AspectCustomItemData
	AspectSelectedElement

	// AspectData marks the data snapshot; AspectSampleSpace marks the row/column shape.
	AspectData
	AspectSampleSpace

	AspectBarSpecs
	AspectBarStyle
	AspectDataWindow
	AspectSelectedBar
	AspectSlicingActive

	AspectPointStyle
	AspectSelectedItem

	AspectSurfaceStyle
	AspectSelectedPoint

	// aspectAxisBase is followed by one block of axis aspects per orientation; see AxisAspect.
	aspectAxisBase
)

const axisAspectCount = int(axis.AspectSubSegmentCount) + 1

// aspectCount is the number of aspects, including the per-orientation axis blocks.
const aspectCount = int(aspectAxisBase) + len(axis.Orientations)*axisAspectCount

var aspectNames = [...]string{
	"BoundingRect", "Theme", "Font", "LabelTransparency", "ShadowQuality", "SelectionMode",
	"Camera", "OrthoProjection", "AspectRatio", "OptimizationHints", "MeasureFps", "CustomItems",
	"CustomItemData", "SelectedElement", "Data", "SampleSpace", "BarSpecs", "BarStyle",
	"DataWindow", "SelectedBar", "SlicingActive", "PointStyle", "SelectedItem", "SurfaceStyle",
	"SelectedPoint",
}

var axisAspectNames = [...]string{"Type", "Title", "Labels", "Range", "SegmentCount", "SubSegmentCount"}

// AxisAspect returns the controller aspect for one property of the axis at orientation o.
func AxisAspect(o axis.Orientation, a axis.Aspect) Aspect {
	return aspectAxisBase + Aspect(int(o)*axisAspectCount+int(a))
}

// AxisProperty splits an axis aspect back into its orientation and axis property.
// ok is false for aspects that do not belong to an axis.
func (a Aspect) AxisProperty() (o axis.Orientation, prop axis.Aspect, ok bool) {
	if a < aspectAxisBase || int(a) >= aspectCount {
		return 0, 0, false
	}
	n := int(a - aspectAxisBase)
	return axis.Orientation(n / axisAspectCount), axis.Aspect(n % axisAspectCount), true
}

func (a Aspect) String() string {
	if o, prop, ok := a.AxisProperty(); ok {
		return "Axis" + strings.ToUpper(o.String()) + axisAspectNames[prop]
	}
	if a >= 0 && int(a) < len(aspectNames) {
		return aspectNames[a]
	}
	return fmt.Sprintf("Aspect(%d)", int(a))
}

// ChangeTracker is a set of pending aspects. Bits are sticky: they stay set until consumed,
// so an update that fails on the render side is retried on the next sync.
type ChangeTracker struct {
	bits uint64
}

// Set marks aspects pending.
func (t *ChangeTracker) Set(aspects ...Aspect) {
	for _, a := range aspects {
		t.bits |= 1 << uint(a)
	}
}

// Has reports whether a is pending.
func (t *ChangeTracker) Has(a Aspect) bool {
	return t.bits&(1<<uint(a)) != 0
}

// Consume reports whether a was pending and clears it.
func (t *ChangeTracker) Consume(a Aspect) bool {
	mask := uint64(1) << uint(a)
	was := t.bits&mask != 0
	t.bits &^= mask
	return was
}

// Any reports whether any aspect is pending.
func (t *ChangeTracker) Any() bool { return t.bits != 0 }

// Pending returns the pending aspects in ascending order.
func (t *ChangeTracker) Pending() []Aspect {
	out := make([]Aspect, 0, bits.OnesCount64(t.bits))
	for b := t.bits; b != 0; b &= b - 1 {
		out = append(out, Aspect(bits.TrailingZeros64(b)))
	}
	return out
}

// Clear drops every pending aspect.
func (t *ChangeTracker) Clear() { t.bits = 0 }
