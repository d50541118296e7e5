package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
)

// GraphBuilderOption is a functional option for configuring a Graph.
// Use the With* functions to create options that are applied directly to the graph instance.
type GraphBuilderOption func(*graph)

// WithLogger sets the logger of the graph and of the default input handler and profiler.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) GraphBuilderOption {
	return func(g *graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithProfiling enables or disables frame rate logging for the render loop.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithProfiling(enabled bool) GraphBuilderOption {
	return func(g *graph) {
		g.profilingEnabled = enabled
	}
}

// WithProfiler replaces the profiler used for frame rate logging.
func WithProfiler(p *profiler.Profiler) GraphBuilderOption {
	return func(g *graph) {
		g.profiler = p
	}
}

// WithTickRate sets the tick callback rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithTickRate(fps float64) GraphBuilderOption {
	return func(g *graph) {
		if fps <= 0 {
			fps = 60.0
		}
		g.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the graph renders to and takes input from.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithWindow(w window.Window) GraphBuilderOption {
	return func(g *graph) {
		g.window = w
	}
}

// WithInputHandler replaces the default input handler.
//
// Parameters:
//   - h: the handler window events are applied with
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithInputHandler(h *input.Handler) GraphBuilderOption {
	return func(g *graph) {
		g.handler = h
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) GraphBuilderOption {
	return func(g *graph) {
		if fps <= 0 {
			g.renderFrameLimit = 0
			return
		}
		g.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
