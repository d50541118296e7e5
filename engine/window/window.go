package window

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
)

// ClientAPI selects the graphics API the window creates a context for.
type ClientAPI int

const (
	// ClientAPINone creates no context; the WebGPU device presents through SurfaceDescriptor.
	ClientAPINone ClientAPI = iota
	// ClientAPIOpenGL creates an OpenGL 3.3 core context for the GL device.
	ClientAPIOpenGL
)

// Window provides platform windowing and delivers input as input.Event values.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetEventCallback sets the function that receives every pointer, wheel, key and resize
	// event. It is called on the goroutine running ProcessMessages.
	//
	// Parameters:
	//   - callback: function receiving the event (or nil to drop events)
	SetEventCallback(callback func(input.Event))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// MakeContextCurrent binds the window's OpenGL context to the calling OS thread. It does
	// nothing for ClientAPINone.
	MakeContextCurrent()

	// DetachContext unbinds the OpenGL context from the calling OS thread so another thread can
	// make it current.
	DetachContext()

	// SwapBuffers presents the OpenGL back buffer.
	SwapBuffers()

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop. Unlike Close it may be called from any
	// goroutine and leaves the window and its context alive.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the event callback.
type engineWindow struct {
	logger *slog.Logger
	now    func() time.Time

	title     string
	api       ClientAPI
	escCloses bool

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the framebuffer size in pixels.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
	onEvent  func(input.Event)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order. The calling goroutine is locked to
// its OS thread and must keep running ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		logger:    slog.Default().With("component", "window"),
		now:       time.Now,
		title:     "oxyvis",
		escCloses: true,
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetEventCallback(callback func(input.Event)) {
	w.onEvent = callback
}

func (w *engineWindow) emit(e input.Event) {
	if w.onEvent != nil {
		w.onEvent(e)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) MakeContextCurrent() {
	if w.api == ClientAPIOpenGL {
		platformMakeContextCurrent(w)
	}
}

func (w *engineWindow) DetachContext() {
	if w.api == ClientAPIOpenGL {
		platformDetachContext()
	}
}

func (w *engineWindow) SwapBuffers() {
	if w.api == ClientAPIOpenGL {
		platformSwapBuffers(w)
	}
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
