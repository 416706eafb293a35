package gesture

import (
	"image"

	"github.com/Lokesh983/Gesture-Control/internal/detector"
)

// Pixel offsets of an upright right hand, relative to the index tip of an
// extended index finger.
var (
	poseWrist = image.Pt(-30, 220)
	poseThumb = [4]image.Point{{20, 190}, {40, 170}, {60, 150}, {85, 135}}
	// Folded thumb tip, left of the IP joint.
	poseThumbDown = image.Pt(45, 150)
	poseFingerX   = [5]int{0, 0, -30, -60, -90}
	poseUpY       = [4]int{150, 100, 50, 0}
	poseDownY     = [4]int{150, 110, 130, 140}
)

// Pose builds a complete synthetic observation with the fingers of sig
// extended and landmark 8 (index tip) placed exactly at indexTip.
func Pose(sig Signature, indexTip image.Point) Observation {
	obs := make(Observation, detector.NumLandmarks)
	set := func(id int, p image.Point) {
		obs[id] = Landmark{ID: id, X: p.X, Y: p.Y}
	}

	set(detector.Wrist, poseWrist)
	for i, p := range poseThumb {
		set(detector.ThumbCMC+i, p)
	}
	if !sig[Thumb] {
		set(detector.ThumbTip, poseThumbDown)
	}

	for f := Index; f <= Pinky; f++ {
		ys := poseDownY
		if sig[f] {
			ys = poseUpY
		}
		mcp := detector.TipIDs[f] - 3
		for j, y := range ys {
			set(mcp+j, image.Pt(poseFingerX[f], y))
		}
	}

	shift := indexTip.Sub(obs[detector.IndexTip].Point())
	for i := range obs {
		obs[i].X += shift.X
		obs[i].Y += shift.Y
	}
	return obs
}
