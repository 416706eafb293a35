package gesture

import (
	"image"
	"math"
)

// Distance returns the pixel distance between landmarks p1 and p2 and the
// integer midpoint between them. A zero length means at least one landmark
// is missing from the observation; it is never a real contact measurement.
func Distance(obs Observation, p1, p2 int) (float64, image.Point) {
	a, ok := obs.Point(p1)
	if !ok {
		return 0, image.Point{}
	}
	b, ok := obs.Point(p2)
	if !ok {
		return 0, image.Point{}
	}

	mid := image.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y)), mid
}
