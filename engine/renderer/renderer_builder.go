package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/drawer"
	"github.com/Carmen-Shannon/oxy-vis/engine/light"
	"github.com/Carmen-Shannon/oxy-vis/engine/loader"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

// RendererBuilderOption is a functional option applied to a renderer during construction.
type RendererBuilderOption func(*baseRenderer)

// WithLogger sets the logger the renderer and the components it creates log to.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.logger = logger
	}
}

// WithProfile forces a rendering profile. Without it the profile follows the device
// capabilities. Forcing ProfileDesktop on a device without depth targets leaves shadows
// failing to allocate.
//
// Parameters:
//   - p: the profile
//
// Returns:
//   - RendererBuilderOption: a function that applies the profile option to a renderer
func WithProfile(p controller.Profile) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.profile = p
	}
}

// WithLibrary sets the shader library. The default generates GLSL.
//
// Parameters:
//   - library: the library matching the device's shading language
//
// Returns:
//   - RendererBuilderOption: a function that applies the library option to a renderer
func WithLibrary(library shader.Library) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.library = library
	}
}

// WithDrawer shares a drawer instead of creating one on the renderer's device.
func WithDrawer(d drawer.Drawer) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.drawer = d
	}
}

// WithLoader shares a mesh loader. A shared loader is not released with the renderer.
func WithLoader(l loader.Loader) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.loader = l
	}
}

// WithTheme sets the theme used until the first sync.
func WithTheme(th theme.Theme) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.theme = th
	}
}

// WithCameraController sets the orbit controller the camera reads from, so input handlers can
// share it.
func WithCameraController(ctrl camera.CameraController) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.cameraCtl = ctrl
	}
}

// WithLight replaces the default light.
func WithLight(l light.Light) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.light = l
	}
}

// WithWorkers sets how many goroutines rasterize labels.
//
// Parameters:
//   - n: the worker count; one or less rasterizes on the render goroutine
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker option to a renderer
func WithWorkers(n int) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.workers = n
	}
}

// WithProfiler replaces the profiler that measures the frame rate while measurement is on.
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *baseRenderer) {
		r.profiler = p
	}
}
