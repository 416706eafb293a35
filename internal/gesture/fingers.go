package gesture

import "github.com/Lokesh983/Gesture-Control/internal/detector"

// Finger indexes a Signature.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

var fingerNames = [5]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < Thumb || f > Pinky {
		return "unknown"
	}
	return fingerNames[f]
}

// Signature is the up/down state of each finger, thumb first.
type Signature [5]bool

// Up reports whether finger f is extended.
func (s Signature) Up(f Finger) bool {
	return s[f]
}

// Count returns the number of extended fingers.
func (s Signature) Count() int {
	n := 0
	for _, up := range s {
		if up {
			n++
		}
	}
	return n
}

// Fist reports whether every finger is down. This is also the signature of
// "no hand", so callers check Observation.Present separately.
func (s Signature) Fist() bool {
	return s.Count() == 0
}

// Open reports whether all five fingers are up.
func (s Signature) Open() bool {
	return s.Count() == 5
}

// Pointing reports whether the index is up while middle, ring and pinky are
// down. The thumb is ignored.
func (s Signature) Pointing() bool {
	return s[Index] && !s[Middle] && !s[Ring] && !s[Pinky]
}

func (s Signature) String() string {
	b := make([]byte, 5)
	for i, up := range s {
		if up {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Classify derives the finger signature from a hand observation. Partial
// observations (fewer than 21 landmarks) classify as all-down.
//
// The thumb counts as up when its tip lies right of the IP joint, which holds
// for a right hand in a mirrored front-facing camera. Other fingers are up
// when the tip is higher in the frame than the PIP joint two landmarks below.
func Classify(obs Observation) Signature {
	var sig Signature
	if len(obs) < detector.NumLandmarks {
		return sig
	}

	if obs[detector.ThumbTip].X > obs[detector.ThumbTip-1].X {
		sig[Thumb] = true
	}

	for f := Index; f <= Pinky; f++ {
		tip := detector.TipIDs[f]
		if obs[tip].Y < obs[tip-2].Y {
			sig[f] = true
		}
	}

	return sig
}
