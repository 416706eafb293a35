// Package detector provides hand detection interfaces and landmark types.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// TipIDs lists the fingertip landmarks from thumb to pinky.
var TipIDs = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D represents a landmark position. X and Y are normalized to the
// frame (0.0-1.0), Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents one detected hand.
// Count is the number of leading Points the provider actually filled; a
// partially occluded hand may report fewer than NumLandmarks.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Count      int                   `json:"count"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Complete reports whether all 21 landmarks are present.
func (h *HandLandmarks) Complete() bool {
	return h != nil && h.Count >= NumLandmarks
}

// Translated returns a copy of the hand with every point shifted by (dx, dy).
func (h HandLandmarks) Translated(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
