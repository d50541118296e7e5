package gpu

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how frames are delivered to the window surface.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank.
	PresentModeVSync PresentMode = iota
	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)

// deviceConfig collects the options shared by every backend.
type deviceConfig struct {
	logger      *slog.Logger
	constrained bool
	presentMode PresentMode
	width       int
	height      int

	// swap presents the GL back buffer.
	swap func()

	surface       *wgpu.SurfaceDescriptor
	forceFallback bool
}

// DeviceBuilderOption is a functional option applied to a device during construction.
type DeviceBuilderOption func(*deviceConfig)

func newDeviceConfig(options []DeviceBuilderOption) deviceConfig {
	cfg := deviceConfig{
		logger: slog.Default().With("component", "gpu"),
		width:  1,
		height: 1,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger the device reports allocation and compile failures to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - DeviceBuilderOption: a function that applies the logger option
func WithLogger(logger *slog.Logger) DeviceBuilderOption {
	return func(c *deviceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConstrained restricts the device to the constrained profile: no depth-only targets.
func WithConstrained() DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.constrained = true
	}
}

// WithPresentMode sets how frames are presented.
func WithPresentMode(mode PresentMode) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.presentMode = mode
	}
}

// WithSurfaceSize sets the initial size of the window surface in pixels.
func WithSurfaceSize(width, height int) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.width = max(width, 1)
		c.height = max(height, 1)
	}
}

// WithSwapFunc sets the function the GL device calls to present a finished frame, usually the
// window's SwapBuffers.
func WithSwapFunc(swap func()) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.swap = swap
	}
}

// WithSurfaceDescriptor sets the native surface the WebGPU device presents to.
func WithSurfaceDescriptor(desc *wgpu.SurfaceDescriptor) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.surface = desc
	}
}

// WithForceSoftwareAdapter makes the WebGPU device request the CPU fallback adapter. This requires
// a software Vulkan ICD such as lavapipe.
func WithForceSoftwareAdapter(force bool) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.forceFallback = force
	}
}
