package input

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/go-gl/mathgl/mgl32"
)

// Default handler tuning.
const (
	// DefaultRotationSpeed is the camera rotation in degrees for a drag across the whole viewport.
	DefaultRotationSpeed float32 = 100
	// DefaultZoomStep is the relative zoom change per wheel notch.
	DefaultZoomStep float32 = 0.1
	// keyRotation is the camera rotation in degrees per arrow key press.
	keyRotation float32 = 5
)

// Target is the part of a chart controller the Handler drives.
type Target interface {
	BoundingRect() common.Rect
	HandleResize(rect common.Rect) error
	HandleSelection(x, y int)
	Camera() controller.CameraState
	SetCameraRotation(horizontal, vertical float32)
	SetZoomLevel(level float32) error
}

var _ Target = controller.Controller(nil)

// Handler maps input events to chart operations: a left press selects, a right drag orbits the
// camera, the wheel zooms and a resize sets the viewport. Arrow keys orbit and +/- zoom; every
// other key goes to the key callback.
//
// A Handler is not safe for concurrent use. Call Handle from the goroutine that owns the
// controller, or inside engine.Graph.Mutate.
type Handler struct {
	logger        *slog.Logger
	rotationSpeed float32
	zoomStep      float32
	onKey         func(Event)

	rotating     bool
	lastX, lastY int
	last         time.Time
}

// NewHandler creates a Handler with the default rotation speed and zoom step.
//
// Parameters:
//   - options: a variadic list of HandlerBuilderOption functions
//
// Returns:
//   - *Handler: the handler
func NewHandler(options ...HandlerBuilderOption) *Handler {
	h := &Handler{
		logger:        slog.Default().With("component", "input"),
		rotationSpeed: DefaultRotationSpeed,
		zoomStep:      DefaultZoomStep,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Rotating reports whether a camera drag is in progress.
func (h *Handler) Rotating() bool { return h.rotating }

// Handle applies one event to t. Pointer moves older than the last handled event are dropped.
//
// Parameters:
//   - t: the controller the event applies to
//   - e: the event
//
// Returns:
//   - error: the error of the controller operation the event triggered, if any
func (h *Handler) Handle(t Target, e Event) error {
	if e.Kind == KindMove && !e.Time.IsZero() && e.Time.Before(h.last) {
		h.logger.Debug("dropping stale move", "at", e.Time, "last", h.last)
		return nil
	}
	if e.Time.After(h.last) {
		h.last = e.Time
	}

	switch e.Kind {
	case KindPress:
		switch e.Button {
		case ButtonLeft:
			t.HandleSelection(e.X, e.Y)
		case ButtonRight:
			h.rotating = true
			h.lastX, h.lastY = e.X, e.Y
		}
	case KindRelease:
		if e.Button == ButtonRight {
			h.rotating = false
		}
	case KindMove:
		if !h.rotating {
			return nil
		}
		dx, dy := e.X-h.lastX, e.Y-h.lastY
		h.lastX, h.lastY = e.X, e.Y
		rect := t.BoundingRect()
		if rect.Width <= 0 || rect.Height <= 0 {
			return nil
		}
		h.rotate(t,
			float32(dx)*h.rotationSpeed/float32(rect.Width),
			float32(dy)*h.rotationSpeed/float32(rect.Height))
	case KindWheel:
		return h.zoom(t, e.Delta)
	case KindResize:
		return t.HandleResize(common.Rect{Width: e.Width, Height: e.Height})
	case KindKeyDown:
		switch e.Key {
		case KeyArrowLeft:
			h.rotate(t, -keyRotation, 0)
		case KeyArrowRight:
			h.rotate(t, keyRotation, 0)
		case KeyArrowUp:
			h.rotate(t, 0, keyRotation)
		case KeyArrowDown:
			h.rotate(t, 0, -keyRotation)
		case KeyEqual:
			return h.zoom(t, 1)
		case KeyMinus:
			return h.zoom(t, -1)
		default:
			if h.onKey != nil {
				h.onKey(e)
			}
		}
	case KindKeyUp:
		if h.onKey != nil {
			h.onKey(e)
		}
	}
	return nil
}

func (h *Handler) rotate(t Target, horizontal, vertical float32) {
	cam := t.Camera()
	t.SetCameraRotation(cam.XRotation+horizontal, cam.YRotation+vertical)
}

func (h *Handler) zoom(t Target, notches float32) error {
	if notches == 0 {
		return nil
	}
	level := t.Camera().ZoomLevel * (1 + h.zoomStep*notches)
	return t.SetZoomLevel(mgl32.Clamp(level, controller.MinZoomLevel, controller.MaxZoomLevel))
}
