package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithDevice is an option builder that sets the device models are uploaded to.
//
// Parameters:
//   - device: the gpu device
//
// Returns:
//   - LoaderBuilderOption: a function that applies the device option to a loader
func WithDevice(device gpu.Device) LoaderBuilderOption {
	return func(l *loader) {
		l.device = device
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
// The loader takes ownership of the model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}
