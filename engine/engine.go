// Package engine runs a chart: a Graph pairs a controller with its renderer, serializes
// mutations against the per-frame sync, and drives the render loop for a window.
package engine

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/Carmen-Shannon/oxy-vis/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
)

// ErrNoWindow is returned by Run when the graph was built without a window.
var ErrNoWindow = errors.New("graph has no window")

// Graph is a running chart. Every goroutine other than the render loop changes the controller,
// its data proxy, axes or custom items through Mutate, which holds the frame mutex the render
// loop holds while syncing.
type Graph interface {
	// Controller returns the chart controller. Mutations must go through Mutate.
	//
	// Returns:
	//   - controller.Controller: the controller
	Controller() controller.Controller

	// Renderer returns the chart renderer.
	//
	// Returns:
	//   - renderer.ChartRenderer: the renderer
	Renderer() renderer.ChartRenderer

	// Window returns the window the graph renders to, or nil for a headless graph.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Mutate runs fn with the frame mutex held. fn must not call Mutate or Frame.
	//
	// Parameters:
	//   - fn: the mutation, receiving the controller
	Mutate(fn func(c controller.Controller))

	// HandleEvent applies an input event through the input handler under the frame mutex.
	//
	// Parameters:
	//   - e: the event
	HandleEvent(e input.Event)

	// Frame syncs the controller into the renderer and draws one frame. Run calls it in a loop;
	// headless users call it directly from the goroutine that owns the device.
	//
	// Returns:
	//   - error: gpu.ErrContextLost when the frame was lost and the next Frame reinitializes,
	//     or the initialization error of the renderer
	Frame() error

	// EnableProfiler enables frame rate logging for the render loop.
	EnableProfiler()

	// DisableProfiler disables frame rate logging.
	DisableProfiler()

	// SetTickRate sets the tick callback rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each tick with the frame mutex held.
	// Use it for animation such as an automatic camera orbit.
	//
	// Parameters:
	//   - callback: function receiving the controller and the delta time in seconds
	SetTickCallback(callback func(c controller.Controller, deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render loops and processes window messages until the window
	// closes or Quit is called. It must be called from the goroutine that created the window.
	//
	// Returns:
	//   - error: ErrNoWindow for a headless graph
	Run() error

	// Quit signals the loops to stop. Safe to call multiple times.
	Quit()

	// Close releases the renderer if the render loop has not, closes the controller and the
	// window. Call it after Run returns.
	Close()
}

// graph implements the Graph interface.
// Coordinates the tick, render and window threads.
type graph struct {
	logger *slog.Logger

	controller controller.Controller
	renderer   renderer.ChartRenderer
	window     window.Window
	handler    *input.Handler

	// mu is the frame mutex: held by Mutate and around Synchronize.
	mu sync.Mutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate     time.Duration
	tickCallback func(c controller.Controller, deltaTime float32)

	renderFrameLimit time.Duration
	released         bool
}

var _ Graph = &graph{}

// NewGraph creates a Graph for a controller and the renderer it was built with. With a window
// the controller viewport follows the window size and window events drive the input handler.
//
// Parameters:
//   - c: the chart controller
//   - r: the renderer c drives
//   - options: functional options for graph configuration
//
// Returns:
//   - Graph: the graph
func NewGraph(c controller.Controller, r renderer.ChartRenderer, options ...GraphBuilderOption) Graph {
	g := &graph{
		logger:          slog.Default().With("component", "graph"),
		controller:      c,
		renderer:        r,
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		tickRate:        time.Second / 60,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.handler == nil {
		g.handler = input.NewHandler(input.WithLogger(g.logger))
	}
	if g.profiler == nil {
		g.profiler = profiler.NewProfiler(profiler.WithLogger(g.logger))
	}

	if g.window != nil {
		g.window.SetEventCallback(g.HandleEvent)
		g.HandleEvent(input.Resize(g.window.Width(), g.window.Height(), time.Now()))
	}
	return g
}

func (g *graph) Controller() controller.Controller { return g.controller }

func (g *graph) Renderer() renderer.ChartRenderer { return g.renderer }

func (g *graph) Window() window.Window { return g.window }

func (g *graph) Mutate(fn func(c controller.Controller)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.controller)
}

func (g *graph) HandleEvent(e input.Event) {
	g.Mutate(func(c controller.Controller) {
		if err := g.handler.Handle(c, e); err != nil {
			g.logger.Debug("input rejected", "event", e.Kind, "error", err)
		}
	})
}

func (g *graph) Frame() error {
	g.mu.Lock()
	err := g.renderer.Synchronize(g.controller)
	g.mu.Unlock()
	if err != nil {
		return err
	}

	// The renderer is only changed by Synchronize, so drawing needs no lock.
	if err := g.renderer.Draw(); err != nil {
		return err
	}
	if fps, ok := g.renderer.Fps(); ok {
		g.Mutate(func(c controller.Controller) { c.ReportFps(fps) })
	}
	return nil
}

func (g *graph) Run() error {
	if g.window == nil {
		return ErrNoWindow
	}
	// The render goroutine takes over the GL context.
	g.window.DetachContext()
	g.running = true
	g.handle()
	g.window.ProcessMessages()
	g.signalQuit()
	g.wg.Wait()
	return nil
}

func (g *graph) Quit() {
	g.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (g *graph) signalQuit() {
	g.quitOnce.Do(func() {
		g.running = false
		close(g.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
// Each goroutine is tracked by the graph's WaitGroup.
func (g *graph) handle() {
	g.wg.Add(3)
	go g.handleTick()
	go g.handleRender()
	go g.handleQuit()
}

// handleTick runs the fixed-rate tick loop in its own goroutine and listens for rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (g *graph) handleTick() {
	defer g.wg.Done()

	ticker := time.NewTicker(g.tickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-g.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if cb := g.tickCallback; cb != nil {
				g.Mutate(func(c controller.Controller) { cb(c, dt) })
			}
		case newRate := <-g.tickRateChannel:
			ticker.Reset(newRate)
			g.tickRate = newRate
		}
	}
}

// handleRender runs the render loop on a locked OS thread holding the window context. A lost
// context is logged and recovered by the next frame; any other frame error stops the graph.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (g *graph) handleRender() {
	defer g.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	g.window.MakeContextCurrent()
	defer g.window.DetachContext()
	defer g.releaseRenderer()
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("render goroutine recovered from panic", "panic", r)
			g.signalQuit()
		}
	}()

	for {
		select {
		case <-g.quitChannel:
			return
		default:
			start := time.Now()

			if err := g.Frame(); err != nil {
				if !errors.Is(err, gpu.ErrContextLost) {
					g.logger.Error("frame failed, stopping", "error", err)
					g.signalQuit()
					return
				}
				g.logger.Warn("context lost, reinitializing on the next frame")
			}

			if g.profilingEnabled {
				g.profiler.Tick()
			}

			if g.renderFrameLimit > 0 {
				if remaining := g.renderFrameLimit - time.Since(start); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then ends the window message loop.
func (g *graph) handleQuit() {
	defer g.wg.Done()
	<-g.quitChannel
	g.window.RequestClose()
}

func (g *graph) releaseRenderer() {
	if g.released {
		return
	}
	g.released = true
	g.renderer.Release()
}

func (g *graph) EnableProfiler() {
	g.profilingEnabled = true
}

func (g *graph) DisableProfiler() {
	g.profilingEnabled = false
}

// SetTickRate sets the tick rate in ticks per second.
// If the graph is running, the change takes effect immediately.
func (g *graph) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !g.running {
		g.tickRate = newRate
		return
	}
	// Replace a pending update instead of blocking.
	select {
	case g.tickRateChannel <- newRate:
	default:
		select {
		case <-g.tickRateChannel:
		default:
		}
		g.tickRateChannel <- newRate
	}
}

func (g *graph) SetTickCallback(callback func(c controller.Controller, deltaTime float32)) {
	g.tickCallback = callback
}

func (g *graph) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		g.renderFrameLimit = 0
		return
	}
	g.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (g *graph) Close() {
	g.signalQuit()
	g.releaseRenderer()
	g.controller.Close()
	if g.window != nil {
		if err := g.window.Close(); err != nil {
			g.logger.Debug("window close", "error", err)
		}
	}
}
