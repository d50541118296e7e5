package controller

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/engine/axis"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/item"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

// ControllerBuilderOption is a functional option for configuring a controller during construction.
type ControllerBuilderOption func(*base)

// WithLogger sets the logger. The controller tags it with component=controller.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ControllerBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) ControllerBuilderOption {
	return func(b *base) {
		if logger != nil {
			b.logger = logger.With("component", "controller")
		}
	}
}

// WithProfile sets the rendering profile. The constrained profile forces shadow quality to none.
//
// Parameters:
//   - profile: the rendering profile
//
// Returns:
//   - ControllerBuilderOption: a function that sets the profile
func WithProfile(profile Profile) ControllerBuilderOption {
	return func(b *base) {
		b.profile = profile
	}
}

// WithTheme sets the initial theme.
func WithTheme(th theme.Theme) ControllerBuilderOption {
	return func(b *base) {
		b.theme = th
	}
}

// WithShadowQuality sets the initial shadow quality. Invalid qualities are ignored.
func WithShadowQuality(quality ShadowQuality) ControllerBuilderOption {
	return func(b *base) {
		if quality.Valid() {
			b.shadowQuality = quality
		}
	}
}

// WithSelectionMode sets the initial selection mode. Modes the chart type does not support
// are replaced by SelectionItem.
func WithSelectionMode(mode SelectionFlag) ControllerBuilderOption {
	return func(b *base) {
		b.selectionMode = mode
	}
}

// WithAxis binds an axis at orientation o. An axis of the wrong type for the chart is replaced
// by a default axis.
//
// Parameters:
//   - o: the orientation
//   - a: the axis
//
// Returns:
//   - ControllerBuilderOption: a function that sets the axis
func WithAxis(o axis.Orientation, a axis.Axis) ControllerBuilderOption {
	return func(b *base) {
		b.axes[o] = a
	}
}

// WithCameraPreset sets the initial camera placement.
func WithCameraPreset(preset camera.Preset) ControllerBuilderOption {
	return func(b *base) {
		if _, _, ok := preset.Angles(); ok {
			b.camera = presetCamera(preset, DefaultZoomLevel)
		}
	}
}

// WithRegistry uses an existing custom item registry.
func WithRegistry(registry *item.Registry) ControllerBuilderOption {
	return func(b *base) {
		b.items = registry
	}
}

// WithOptimizationHints sets the initial optimization hints.
func WithOptimizationHints(hints OptimizationHints) ControllerBuilderOption {
	return func(b *base) {
		b.hints = hints
	}
}
