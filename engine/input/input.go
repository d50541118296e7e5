// Package input defines the pointer, wheel, key and resize events a window delivers, and the
// Handler that turns them into chart operations.
package input

import (
	"fmt"
	"time"
)

// Kind is the kind of an input event.
type Kind int

const (
	KindPress Kind = iota
	KindRelease
	KindMove
	KindWheel
	KindResize
	KindKeyDown
	KindKeyUp
)

func (k Kind) String() string {
	switch k {
	case KindPress:
		return "press"
	case KindRelease:
		return "release"
	case KindMove:
		return "move"
	case KindWheel:
		return "wheel"
	case KindResize:
		return "resize"
	case KindKeyDown:
		return "key-down"
	case KindKeyUp:
		return "key-up"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is one input event in window pixels. Fields that do not apply to Kind are zero.
type Event struct {
	Kind   Kind
	Button Button
	Key    Key
	// X and Y are the pointer position; for KindResize they are zero.
	X, Y int
	// Delta is the wheel movement in notches, positive away from the user.
	Delta float32
	// Width and Height are the new framebuffer size of a KindResize event.
	Width, Height int
	// Time is when the window received the event.
	Time time.Time
}

// Press returns a button press event.
func Press(b Button, x, y int, t time.Time) Event {
	return Event{Kind: KindPress, Button: b, X: x, Y: y, Time: t}
}

// Release returns a button release event.
func Release(b Button, x, y int, t time.Time) Event {
	return Event{Kind: KindRelease, Button: b, X: x, Y: y, Time: t}
}

// Move returns a pointer move event.
func Move(x, y int, t time.Time) Event {
	return Event{Kind: KindMove, X: x, Y: y, Time: t}
}

// Wheel returns a wheel event at a pointer position.
func Wheel(delta float32, x, y int, t time.Time) Event {
	return Event{Kind: KindWheel, Delta: delta, X: x, Y: y, Time: t}
}

// Resize returns a framebuffer resize event.
func Resize(width, height int, t time.Time) Event {
	return Event{Kind: KindResize, Width: width, Height: height, Time: t}
}

// KeyDown returns a key press event.
func KeyDown(k Key, t time.Time) Event {
	return Event{Kind: KindKeyDown, Key: k, Time: t}
}

// KeyUp returns a key release event.
func KeyUp(k Key, t time.Time) Event {
	return Event{Kind: KindKeyUp, Key: k, Time: t}
}
