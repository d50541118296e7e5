// Package profiler measures the frame rate of the render loop.
package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Profiler counts frames and reports the frame rate once per update interval.
type Profiler struct {
	logger         *slog.Logger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	fps            float64
	memStats       runtime.MemStats
	lastGCCount    uint32
	logMemory      bool
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default().With("component", "profiler"),
		now:            time.Now,
		updateInterval: time.Second,
		fps:            -1,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Reset discards the frames counted so far and the last measured rate.
func (p *Profiler) Reset() {
	p.frameCount = 0
	p.fps = -1
	p.lastTime = p.now()
}

// FPS returns the last measured frame rate, or -1 before the first interval has elapsed.
func (p *Profiler) FPS() float64 { return p.fps }

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed it computes the frame rate and logs it.
//
// Returns:
//   - float64: the frame rate over the interval that just ended
//   - bool: true if a new rate was measured this tick
func (p *Profiler) Tick() (float64, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return p.fps, false
	}

	p.fps = float64(p.frameCount) / elapsed.Seconds()
	attrs := []any{"fps", p.fps}
	if p.logMemory {
		runtime.ReadMemStats(&p.memStats)
		attrs = append(attrs,
			"heap_mb", float64(p.memStats.Alloc)/1024/1024,
			"gc", p.memStats.NumGC-p.lastGCCount,
			"sys_mb", float64(p.memStats.Sys)/1024/1024,
		)
		p.lastGCCount = p.memStats.NumGC
	}
	p.logger.Info("frame rate", attrs...)

	p.frameCount = 0
	p.lastTime = currentTime
	return p.fps, true
}
