package input

import "log/slog"

// HandlerBuilderOption is a functional option for configuring a Handler.
type HandlerBuilderOption func(*Handler)

// WithLogger sets the logger stale events are traced to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - HandlerBuilderOption: a function that applies the logger option
func WithLogger(logger *slog.Logger) HandlerBuilderOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRotationSpeed sets the camera rotation in degrees for a drag across the whole viewport.
// Non-positive values are ignored.
func WithRotationSpeed(degrees float32) HandlerBuilderOption {
	return func(h *Handler) {
		if degrees > 0 {
			h.rotationSpeed = degrees
		}
	}
}

// WithZoomStep sets the relative zoom change per wheel notch. Values outside (0, 1) are ignored.
func WithZoomStep(step float32) HandlerBuilderOption {
	return func(h *Handler) {
		if step > 0 && step < 1 {
			h.zoomStep = step
		}
	}
}

// WithKeyCallback sets the function that receives the key events the handler does not consume.
func WithKeyCallback(callback func(Event)) HandlerBuilderOption {
	return func(h *Handler) {
		h.onKey = callback
	}
}
