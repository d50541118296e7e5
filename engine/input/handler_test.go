package input

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	rect      common.Rect
	camera    controller.CameraState
	picks     [][2]int
	zoomErr   error
	resizeErr error
}

func (f *fakeTarget) BoundingRect() common.Rect { return f.rect }

func (f *fakeTarget) HandleResize(rect common.Rect) error {
	if f.resizeErr != nil {
		return f.resizeErr
	}
	f.rect = rect
	return nil
}

func (f *fakeTarget) HandleSelection(x, y int) { f.picks = append(f.picks, [2]int{x, y}) }

func (f *fakeTarget) Camera() controller.CameraState { return f.camera }

func (f *fakeTarget) SetCameraRotation(horizontal, vertical float32) {
	f.camera.XRotation, f.camera.YRotation = horizontal, vertical
}

func (f *fakeTarget) SetZoomLevel(level float32) error {
	if f.zoomErr != nil {
		return f.zoomErr
	}
	f.camera.ZoomLevel = level
	return nil
}

func newTarget() *fakeTarget {
	return &fakeTarget{rect: common.Rect{Width: 800, Height: 400}, camera: controller.CameraState{ZoomLevel: 100}}
}

func newHandler(options ...HandlerBuilderOption) *Handler {
	return NewHandler(append([]HandlerBuilderOption{WithLogger(slog.New(slog.DiscardHandler))}, options...)...)
}

func TestLeftPressSelects(t *testing.T) {
	h, target := newHandler(), newTarget()
	now := time.Now()
	require.NoError(t, h.Handle(target, Press(ButtonLeft, 10, 20, now)))
	require.NoError(t, h.Handle(target, Release(ButtonLeft, 10, 20, now)))
	assert.Equal(t, [][2]int{{10, 20}}, target.picks)
	assert.False(t, h.Rotating())
}

func TestRightDragRotates(t *testing.T) {
	h, target := newHandler(), newTarget()
	now := time.Now()
	require.NoError(t, h.Handle(target, Move(100, 100, now)))
	assert.Zero(t, target.camera.XRotation)

	require.NoError(t, h.Handle(target, Press(ButtonRight, 100, 100, now)))
	assert.True(t, h.Rotating())
	require.NoError(t, h.Handle(target, Move(180, 120, now.Add(time.Millisecond))))
	// 80 px of 800 is a tenth of the rotation speed; 20 px of 400 is a twentieth.
	assert.InDelta(t, 10, target.camera.XRotation, 1e-4)
	assert.InDelta(t, 5, target.camera.YRotation, 1e-4)

	require.NoError(t, h.Handle(target, Release(ButtonRight, 180, 120, now.Add(2*time.Millisecond))))
	require.NoError(t, h.Handle(target, Move(400, 300, now.Add(3*time.Millisecond))))
	assert.InDelta(t, 10, target.camera.XRotation, 1e-4)
	assert.Empty(t, target.picks)
}

func TestStaleMovesAreDropped(t *testing.T) {
	h, target := newHandler(WithRotationSpeed(800)), newTarget()
	now := time.Now()
	require.NoError(t, h.Handle(target, Press(ButtonRight, 0, 0, now)))
	require.NoError(t, h.Handle(target, Move(10, 0, now.Add(10*time.Millisecond))))
	require.NoError(t, h.Handle(target, Move(5, 0, now.Add(5*time.Millisecond))))
	assert.InDelta(t, 10, target.camera.XRotation, 1e-4)
}

func TestWheelZoomsWithinLimits(t *testing.T) {
	h, target := newHandler(), newTarget()
	now := time.Now()
	require.NoError(t, h.Handle(target, Wheel(1, 0, 0, now)))
	assert.InDelta(t, 110, target.camera.ZoomLevel, 1e-3)
	require.NoError(t, h.Handle(target, Wheel(-2, 0, 0, now)))
	assert.InDelta(t, 88, target.camera.ZoomLevel, 1e-3)

	target.camera.ZoomLevel = controller.MaxZoomLevel
	require.NoError(t, h.Handle(target, Wheel(3, 0, 0, now)))
	assert.Equal(t, controller.MaxZoomLevel, target.camera.ZoomLevel)

	target.camera.ZoomLevel = controller.MinZoomLevel
	require.NoError(t, h.Handle(target, KeyDown(KeyMinus, now)))
	assert.Equal(t, controller.MinZoomLevel, target.camera.ZoomLevel)

	target.zoomErr = controller.ErrInvalidZoom
	assert.ErrorIs(t, h.Handle(target, Wheel(1, 0, 0, now)), controller.ErrInvalidZoom)
}

func TestResizeSetsViewport(t *testing.T) {
	h, target := newHandler(), newTarget()
	require.NoError(t, h.Handle(target, Resize(1024, 768, time.Now())))
	assert.Equal(t, common.Rect{Width: 1024, Height: 768}, target.rect)

	target.resizeErr = errors.New("rejected")
	assert.Error(t, h.Handle(target, Resize(-1, 768, time.Now())))
}

func TestKeys(t *testing.T) {
	var keys []Event
	h, target := newHandler(WithKeyCallback(func(e Event) { keys = append(keys, e) })), newTarget()
	now := time.Now()
	require.NoError(t, h.Handle(target, KeyDown(KeyArrowRight, now)))
	require.NoError(t, h.Handle(target, KeyDown(KeyArrowUp, now)))
	assert.InDelta(t, keyRotation, target.camera.XRotation, 1e-4)
	assert.InDelta(t, keyRotation, target.camera.YRotation, 1e-4)

	require.NoError(t, h.Handle(target, KeyDown(KeyArrowLeft, now)))
	require.NoError(t, h.Handle(target, KeyDown(KeyArrowDown, now)))
	assert.InDelta(t, 0, target.camera.XRotation, 1e-4)
	assert.InDelta(t, 0, target.camera.YRotation, 1e-4)

	require.NoError(t, h.Handle(target, KeyDown(KeyS, now)))
	require.NoError(t, h.Handle(target, KeyUp(KeyS, now)))
	require.Len(t, keys, 2)
	assert.Equal(t, KindKeyDown, keys[0].Kind)
	assert.Equal(t, KindKeyUp, keys[1].Kind)
	assert.Equal(t, KeyS, keys[1].Key)
}
