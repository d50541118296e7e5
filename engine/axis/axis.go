// Package axis describes chart axes. Category axes carry explicit labels; value axes carry a
// numeric range split into segments and generate their own labels. Every setter is idempotent
// and reports the aspect it changed to subscribers, which the controller turns into dirty bits.
package axis

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/chewxy/math32"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrNotValueAxis is returned when a value-axis property is set on a category axis.
	ErrNotValueAxis = errors.New("not a value axis")

	// ErrInvalidRange is returned when min is greater than max or either bound is not finite.
	ErrInvalidRange = errors.New("invalid axis range")

	// ErrCategoryOnly is returned when explicit labels are set on a value axis.
	ErrCategoryOnly = errors.New("labels can only be set on a category axis")

	// ErrInvalidSegmentCount is returned for a segment or subsegment count below one.
	ErrInvalidSegmentCount = errors.New("invalid segment count")
)

// Orientation identifies the X, Y or Z axis of a chart.
type Orientation int

const (
	OrientationX Orientation = iota
	OrientationY
	OrientationZ
)

// Orientations lists every orientation in order.
var Orientations = [...]Orientation{OrientationX, OrientationY, OrientationZ}

func (o Orientation) String() string {
	switch o {
	case OrientationX:
		return "x"
	case OrientationY:
		return "y"
	case OrientationZ:
		return "z"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Type is the kind of axis.
type Type int

const (
	TypeCategory Type = iota
	TypeValue
)

// Aspect names one property of an axis for change notifications.
type Aspect int

const (
	AspectType Aspect = iota
	AspectTitle
	AspectLabels
	AspectRange
	AspectSegmentCount
	AspectSubSegmentCount
)

// Listener receives the aspect that changed on an axis.
type Listener func(Aspect)

// Axis is an X, Y or Z axis of a chart.
type Axis interface {
	// Type returns whether the axis is a category or a value axis.
	Type() Type

	// Title returns the axis title.
	Title() string

	// SetTitle sets the axis title.
	SetTitle(title string)

	// Labels returns the axis labels. Value axes generate one label per segment boundary.
	Labels() []string

	// SetLabels replaces the labels of a category axis.
	//
	// Parameters:
	//   - labels: the new labels; an empty slice means labels follow the data
	//
	// Returns:
	//   - error: ErrCategoryOnly on a value axis
	SetLabels(labels []string) error

	// Range returns the axis range.
	Range() (min, max float32)

	// SetRange sets the range of a value axis and disables automatic adjustment.
	//
	// Parameters:
	//   - min: the lower bound
	//   - max: the upper bound, not less than min
	//
	// Returns:
	//   - error: ErrNotValueAxis or ErrInvalidRange
	SetRange(min, max float32) error

	// SegmentCount returns the number of segments a value axis range is split into.
	SegmentCount() int

	// SetSegmentCount sets the number of segments of a value axis.
	SetSegmentCount(count int) error

	// SubSegmentCount returns the number of subsegments per segment.
	SubSegmentCount() int

	// SetSubSegmentCount sets the number of subsegments per segment of a value axis.
	SetSubSegmentCount(count int) error

	// LabelFormat returns the fmt verb used for generated value labels.
	LabelFormat() string

	// SetLabelFormat sets the fmt verb used for generated value labels.
	SetLabelFormat(format string) error

	// AutoAdjustRange reports whether AdjustToData may change the range.
	AutoAdjustRange() bool

	// SetAutoAdjustRange toggles automatic range adjustment.
	SetAutoAdjustRange(enabled bool)

	// AdjustToData widens a value axis with automatic adjustment to a rounded range covering the
	// data. It does nothing on category axes or when automatic adjustment is off.
	//
	// Parameters:
	//   - dataMin: the smallest data value
	//   - dataMax: the largest data value
	AdjustToData(dataMin, dataMax float32)

	// Subscribe registers a change listener and returns its removal function.
	Subscribe(listener Listener) (unsubscribe func())
}

type axis struct {
	kind            Type
	title           string
	labels          []string
	min             float32
	max             float32
	segmentCount    int
	subSegmentCount int
	labelFormat     string
	autoAdjust      bool
	printer         *message.Printer
	listeners       common.Subscribers[Listener]
}

var _ Axis = &axis{}

// NewCategoryAxis creates a category axis.
func NewCategoryAxis(options ...AxisBuilderOption) Axis {
	a := newAxis(TypeCategory)
	for _, opt := range options {
		opt(a)
	}
	return a
}

// NewValueAxis creates a value axis spanning [0, 10] in five segments with automatic range
// adjustment enabled.
func NewValueAxis(options ...AxisBuilderOption) Axis {
	a := newAxis(TypeValue)
	for _, opt := range options {
		opt(a)
	}
	return a
}

func newAxis(kind Type) *axis {
	return &axis{
		kind:            kind,
		max:             10,
		segmentCount:    5,
		subSegmentCount: 1,
		labelFormat:     "%.2f",
		autoAdjust:      kind == TypeValue,
		printer:         message.NewPrinter(language.English),
	}
}

func (a *axis) emit(aspect Aspect) {
	a.listeners.Each(func(l Listener) { l(aspect) })
}

func (a *axis) Type() Type { return a.kind }

func (a *axis) Title() string { return a.title }

func (a *axis) SetTitle(title string) {
	if title == a.title {
		return
	}
	a.title = title
	a.emit(AspectTitle)
}

func (a *axis) Labels() []string {
	if a.kind == TypeCategory {
		return append([]string(nil), a.labels...)
	}
	labels := make([]string, a.segmentCount+1)
	step := (a.max - a.min) / float32(a.segmentCount)
	for i := range labels {
		labels[i] = a.printer.Sprintf(a.labelFormat, a.min+step*float32(i))
	}
	return labels
}

func (a *axis) SetLabels(labels []string) error {
	if a.kind != TypeCategory {
		return ErrCategoryOnly
	}
	if slices.Equal(labels, a.labels) {
		return nil
	}
	a.labels = append([]string(nil), labels...)
	a.emit(AspectLabels)
	return nil
}

func (a *axis) Range() (float32, float32) { return a.min, a.max }

func (a *axis) SetRange(min, max float32) error {
	if a.kind != TypeValue {
		return ErrNotValueAxis
	}
	if err := validateRange(min, max); err != nil {
		return err
	}
	a.autoAdjust = false
	a.setRange(min, max)
	return nil
}

func validateRange(min, max float32) error {
	if math32.IsNaN(min) || math32.IsNaN(max) || math32.IsInf(min, 0) || math32.IsInf(max, 0) || min > max {
		return fmt.Errorf("[%v, %v]: %w", min, max, ErrInvalidRange)
	}
	return nil
}

func (a *axis) setRange(min, max float32) {
	if min == a.min && max == a.max {
		return
	}
	a.min, a.max = min, max
	a.emit(AspectRange)
	a.emit(AspectLabels)
}

func (a *axis) SegmentCount() int { return a.segmentCount }

func (a *axis) SetSegmentCount(count int) error {
	if a.kind != TypeValue {
		return ErrNotValueAxis
	}
	if count < 1 {
		return fmt.Errorf("segments %d: %w", count, ErrInvalidSegmentCount)
	}
	if count == a.segmentCount {
		return nil
	}
	a.segmentCount = count
	a.emit(AspectSegmentCount)
	a.emit(AspectLabels)
	return nil
}

func (a *axis) SubSegmentCount() int { return a.subSegmentCount }

func (a *axis) SetSubSegmentCount(count int) error {
	if a.kind != TypeValue {
		return ErrNotValueAxis
	}
	if count < 1 {
		return fmt.Errorf("subsegments %d: %w", count, ErrInvalidSegmentCount)
	}
	if count == a.subSegmentCount {
		return nil
	}
	a.subSegmentCount = count
	a.emit(AspectSubSegmentCount)
	return nil
}

func (a *axis) LabelFormat() string { return a.labelFormat }

func (a *axis) SetLabelFormat(format string) error {
	if a.kind != TypeValue {
		return ErrNotValueAxis
	}
	if format == a.labelFormat {
		return nil
	}
	a.labelFormat = format
	a.emit(AspectLabels)
	return nil
}

func (a *axis) AutoAdjustRange() bool { return a.autoAdjust }

func (a *axis) SetAutoAdjustRange(enabled bool) {
	a.autoAdjust = enabled
}

func (a *axis) AdjustToData(dataMin, dataMax float32) {
	if a.kind != TypeValue || !a.autoAdjust {
		return
	}
	if validateRange(dataMin, dataMax) != nil {
		return
	}
	min, max := NiceRange(dataMin, dataMax, a.segmentCount)
	a.setRange(min, max)
}

func (a *axis) Subscribe(listener Listener) func() {
	return a.listeners.Add(listener)
}

// NiceRange widens [lo, hi] to bounds that are multiples of a round step, so that segments
// boundaries fall on readable values. A range that includes zero keeps zero as a bound.
//
// Parameters:
//   - lo: the smallest value to cover
//   - hi: the largest value to cover
//   - segments: the number of segments the range is split into
//
// Returns:
//   - float32: the rounded lower bound
//   - float32: the rounded upper bound
func NiceRange(lo, hi float32, segments int) (float32, float32) {
	if lo > 0 {
		lo = 0
	}
	if hi < 0 {
		hi = 0
	}
	if lo == hi {
		return lo, lo + 1
	}
	segments = max(segments, 1)
	step := niceStep((hi - lo) / float32(segments))
	return math32.Floor(lo/step) * step, math32.Ceil(hi/step) * step
}

// niceStep rounds x to 1, 2 or 5 times a power of ten.
func niceStep(x float32) float32 {
	exp := math32.Floor(math32.Log10(x))
	f := x / math32.Pow(10, exp)
	var nice float32
	switch {
	case f < 1.5:
		nice = 1
	case f < 3:
		nice = 2
	case f < 7:
		nice = 5
	default:
		nice = 10
	}
	return nice * math32.Pow(10, exp)
}
