package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger x positions (normalized) for a right hand seen in a mirrored frame.
var fingerX = [5]float64{0, 0.56, 0.50, 0.44, 0.38}

// PoseLandmarks builds an upright right hand facing the camera with the given
// fingers extended, ordered thumb to pinky. The index tip sits near
// (0.56, 0.35) when extended.
func PoseLandmarks(up [5]bool) HandLandmarks {
	lm := HandLandmarks{
		Count:      NumLandmarks,
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb: extended sideways past the IP joint, or folded across the palm.
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.71, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.64, Y: 0.67, Z: 0.03}
	if up[0] {
		lm.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.63, Z: 0.03}
	} else {
		lm.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.66, Z: -0.02}
	}

	for f := 1; f < 5; f++ {
		mcp := TipIDs[f] - 3
		x := fingerX[f]
		lm.Points[mcp] = Point3D{X: x, Y: 0.66}
		if up[f] {
			lm.Points[mcp+1] = Point3D{X: x, Y: 0.55}
			lm.Points[mcp+2] = Point3D{X: x, Y: 0.45}
			lm.Points[mcp+3] = Point3D{X: x, Y: 0.35}
		} else {
			lm.Points[mcp+1] = Point3D{X: x, Y: 0.60, Z: -0.05}
			lm.Points[mcp+2] = Point3D{X: x - 0.01, Y: 0.65, Z: -0.04}
			lm.Points[mcp+3] = Point3D{X: x - 0.02, Y: 0.69, Z: -0.02}
		}
	}

	return lm
}

// FistLandmarks returns a closed fist.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{})
}

// OpenPalmLandmarks returns a hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{true, true, true, true, true})
}

// PointingLandmarks returns a hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{false, true, false, false, false})
}

// TwoFingerLandmarks returns a hand with index and middle extended.
func TwoFingerLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{false, true, true, false, false})
}
