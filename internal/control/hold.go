package control

import "time"

// HoldTimer fires once after its trigger condition has held continuously for
// longer than Threshold. A frame where the condition is false resets it; after
// firing it stays quiet until the condition has been released.
type HoldTimer struct {
	Threshold time.Duration

	start time.Time
	fired bool
}

// NewHoldTimer creates a HoldTimer with the given threshold.
func NewHoldTimer(threshold time.Duration) *HoldTimer {
	return &HoldTimer{Threshold: threshold}
}

// Update advances the timer for one frame and reports whether it fired.
func (t *HoldTimer) Update(active bool, now time.Time) bool {
	if !active {
		t.Reset()
		return false
	}
	if t.fired {
		return false
	}
	if t.start.IsZero() {
		t.start = now
		return false
	}
	if now.Sub(t.start) > t.Threshold {
		t.fired = true
		t.start = time.Time{}
		return true
	}
	return false
}

// Reset clears the start time and re-arms the timer.
func (t *HoldTimer) Reset() {
	t.start = time.Time{}
	t.fired = false
}

// Running reports whether the condition is currently being timed.
func (t *HoldTimer) Running() bool {
	return !t.start.IsZero()
}

// Elapsed returns how long the condition has been held, or zero.
func (t *HoldTimer) Elapsed(now time.Time) time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return now.Sub(t.start)
}
