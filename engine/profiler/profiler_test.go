package profiler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	assert.Equal(t, float64(-1), p.FPS())

	for range 29 {
		now = now.Add(time.Second / 60)
		_, ok := p.Tick()
		assert.False(t, ok)
	}
	now = now.Add(time.Second - 29*(time.Second/60))
	fps, ok := p.Tick()
	assert.True(t, ok)
	assert.InDelta(t, 30, fps, 1)
	assert.Equal(t, fps, p.FPS())

	p.Reset()
	assert.Equal(t, float64(-1), p.FPS())
}
