package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// MotionDetector reports whether consecutive frames differ enough to count
// as motion. The frame loop uses it to decide when to drop to the idle
// frame rate.
type MotionDetector struct {
	threshold float64
	mu        sync.Mutex

	// Scratch buffers reused across frames.
	gray    gocv.Mat
	blurred gocv.Mat
	diff    gocv.Mat
	prev    gocv.Mat
	primed  bool
	closed  bool
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage
// of pixels that must change, so 1.0 means 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		gray:      gocv.NewMat(),
		blurred:   gocv.NewMat(),
		diff:      gocv.NewMat(),
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame against the previous one and returns whether motion
// was detected along with the changed-pixel percentage. The first frame only
// primes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || frame == nil || frame.Empty() {
		return false, 0
	}

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &m.gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&m.gray)
	}
	gocv.GaussianBlur(m.gray, &m.blurred, image.Pt(GaussianBlurSize, GaussianBlurSize), 0, 0, gocv.BorderDefault)

	if !m.primed || m.prev.Rows() != m.blurred.Rows() || m.prev.Cols() != m.blurred.Cols() {
		m.blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	gocv.AbsDiff(m.blurred, m.prev, &m.diff)
	gocv.Threshold(m.diff, &m.diff, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(m.diff)) / float64(m.diff.Rows()*m.diff.Cols()) * 100.0
	m.blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame primes it again.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
}

// Close releases the scratch buffers. Detect reports no motion afterwards.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.gray.Close()
	m.blurred.Close()
	m.diff.Close()
	m.prev.Close()
	m.closed = true
	m.primed = false
}

// SetThreshold sets the motion detection threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// Threshold returns the configured change percentage.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
