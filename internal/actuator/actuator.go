// Package actuator applies state machine actions to the operating system.
package actuator

import (
	"errors"
	"image"
)

// ErrUnavailable is returned by actuators that cannot reach the desktop.
var ErrUnavailable = errors.New("actuator unavailable")

// Button names accepted by Pointer.Click.
const (
	ButtonLeft  = "left"
	ButtonRight = "right"
)

// Pointer moves and clicks the OS pointer and scrolls the focused window.
type Pointer interface {
	Move(x, y int) error
	Click(button string) error
	Scroll(delta int) error
	ScreenSize() (image.Point, error)
}

// Volume sets the master output volume.
type Volume interface {
	SetVolume(level float64) error
}

// ScreenCapturer grabs the whole desktop.
type ScreenCapturer interface {
	CaptureScreen() (image.Image, error)
}
