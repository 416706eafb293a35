// Package gesture turns hand landmarks into finger signatures and
// measurements used by the interaction state machine.
package gesture

import (
	"image"

	"github.com/Lokesh983/Gesture-Control/internal/detector"
)

// Landmark is one hand keypoint in frame-pixel coordinates.
type Landmark struct {
	ID int
	X  int
	Y  int
}

// Point returns the landmark position.
func (l Landmark) Point() image.Point {
	return image.Point{X: l.X, Y: l.Y}
}

// Observation is the ordered landmark list for one hand in one frame.
// The slice index equals the landmark ID. An empty observation means no
// hand was detected.
type Observation []Landmark

// Present reports whether a hand was observed at all.
func (o Observation) Present() bool {
	return len(o) > 0
}

// Has reports whether the landmark with the given ID is available.
func (o Observation) Has(id int) bool {
	return id >= 0 && id < len(o)
}

// Point returns the position of landmark id and whether it is available.
func (o Observation) Point(id int) (image.Point, bool) {
	if !o.Has(id) {
		return image.Point{}, false
	}
	return o[id].Point(), true
}

// Observe converts normalized provider output into pixel landmarks for a
// frame of the given size. Coordinates are truncated toward zero.
func Observe(h *detector.HandLandmarks, width, height int) Observation {
	if h == nil || h.Count <= 0 {
		return nil
	}

	n := h.Count
	if n > detector.NumLandmarks {
		n = detector.NumLandmarks
	}

	obs := make(Observation, n)
	for i := 0; i < n; i++ {
		obs[i] = Landmark{
			ID: i,
			X:  int(h.Points[i].X * float64(width)),
			Y:  int(h.Points[i].Y * float64(height)),
		}
	}
	return obs
}
