package axis

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type AxisBuilderOption func(*axis)

// WithTitle sets the axis title.
//
// Parameters:
//   - title: the axis title
//
// Returns:
//   - AxisBuilderOption: a function that sets the axis title
func WithTitle(title string) AxisBuilderOption {
	return func(a *axis) {
		a.title = title
	}
}

// WithLabels sets the labels of a category axis. It has no effect on value axes.
//
// Parameters:
//   - labels: the category labels
//
// Returns:
//   - AxisBuilderOption: a function that sets the labels
func WithLabels(labels ...string) AxisBuilderOption {
	return func(a *axis) {
		if a.kind == TypeCategory {
			a.labels = append([]string(nil), labels...)
		}
	}
}

// WithRange sets a fixed range on a value axis and disables automatic adjustment.
// Invalid ranges are ignored.
//
// Parameters:
//   - min, max: the range bounds
//
// Returns:
//   - AxisBuilderOption: a function that sets the range
func WithRange(min, max float32) AxisBuilderOption {
	return func(a *axis) {
		if a.kind != TypeValue || validateRange(min, max) != nil {
			return
		}
		a.min, a.max = min, max
		a.autoAdjust = false
	}
}

// WithSegmentCount sets the number of segments of a value axis. Counts below one are ignored.
//
// Parameters:
//   - count: the segment count
//
// Returns:
//   - AxisBuilderOption: a function that sets the segment count
func WithSegmentCount(count int) AxisBuilderOption {
	return func(a *axis) {
		if count >= 1 {
			a.segmentCount = count
		}
	}
}

// WithSubSegmentCount sets the number of subsegments per segment. Counts below one are ignored.
//
// Parameters:
//   - count: the subsegment count
//
// Returns:
//   - AxisBuilderOption: a function that sets the subsegment count
func WithSubSegmentCount(count int) AxisBuilderOption {
	return func(a *axis) {
		if count >= 1 {
			a.subSegmentCount = count
		}
	}
}

// WithLabelFormat sets the fmt verb used to format value labels, for example "%.1f °C".
//
// Parameters:
//   - format: the label format
//
// Returns:
//   - AxisBuilderOption: a function that sets the label format
func WithLabelFormat(format string) AxisBuilderOption {
	return func(a *axis) {
		a.labelFormat = format
	}
}

// WithLocale sets the locale used to format value labels, which controls digit grouping and
// decimal separators.
//
// Parameters:
//   - tag: the locale
//
// Returns:
//   - AxisBuilderOption: a function that sets the label locale
func WithLocale(tag language.Tag) AxisBuilderOption {
	return func(a *axis) {
		a.printer = message.NewPrinter(tag)
	}
}
