package actuator

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// Desktop drives the local pointer and screen through robotgo.
type Desktop struct{}

// NewDesktop returns a robotgo-backed Pointer.
func NewDesktop() *Desktop {
	return &Desktop{}
}

func (d *Desktop) Move(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (d *Desktop) Click(button string) error {
	switch button {
	case ButtonLeft, ButtonRight:
		robotgo.Click(button)
		return nil
	}
	return fmt.Errorf("unknown button %q", button)
}

// Scroll scrolls vertically; positive deltas scroll up.
func (d *Desktop) Scroll(delta int) error {
	robotgo.Scroll(0, delta)
	return nil
}

func (d *Desktop) ScreenSize() (image.Point, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return image.Point{}, fmt.Errorf("%w: screen size %dx%d", ErrUnavailable, w, h)
	}
	return image.Pt(w, h), nil
}

func (d *Desktop) CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}
