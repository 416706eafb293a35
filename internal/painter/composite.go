package painter

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// InkThreshold is the gray level above which canvas pixels count as
// background.
const InkThreshold = 250

// ErrSizeMismatch is returned when frame and canvas differ in shape.
var ErrSizeMismatch = errors.New("frame and canvas size mismatch")

// Composite writes frame with the canvas ink laid over it into dst. Canvas
// pixels brighter than InkThreshold are transparent.
func Composite(frame, canvas gocv.Mat, dst *gocv.Mat) error {
	if frame.Rows() != canvas.Rows() || frame.Cols() != canvas.Cols() || frame.Type() != canvas.Type() {
		return fmt.Errorf("%w: frame %dx%d, canvas %dx%d", ErrSizeMismatch,
			frame.Cols(), frame.Rows(), canvas.Cols(), canvas.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(canvas, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, InkThreshold, 255, gocv.ThresholdBinaryInv)

	ink := gocv.NewMat()
	defer ink.Close()
	gocv.CvtColor(mask, &ink, gocv.ColorGrayToBGR)

	background := gocv.NewMat()
	defer background.Close()
	gocv.BitwiseNot(ink, &background)

	framePart := gocv.NewMat()
	defer framePart.Close()
	gocv.BitwiseAnd(frame, background, &framePart)

	inkPart := gocv.NewMat()
	defer inkPart.Close()
	gocv.BitwiseAnd(canvas, ink, &inkPart)

	gocv.Add(framePart, inkPart, dst)
	return nil
}
