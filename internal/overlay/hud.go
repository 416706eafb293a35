package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/interp"

	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/gesture"
	"github.com/Lokesh983/Gesture-Control/internal/painter"
)

// Volume bar geometry in frame pixels.
var (
	VolumeBar = image.Rect(50, 150, 85, 400)
)

var (
	green  = color.RGBA{G: 255, A: 255}
	yellow = color.RGBA{R: 255, G: 255, A: 255}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Config locates the icon bitmaps.
type Config struct {
	ModeIconDir string
	ToolIconDir string
	IconSize    int
}

// HUD draws the on-frame interface. It is used only from the decision loop.
type HUD struct {
	modeIcons *IconSet
	toolIcons *IconSet

	barTop  interp.PiecewiseLinear
	percent interp.PiecewiseLinear
}

// New loads the icons and prepares the volume bar scales.
func New(cfg Config) (*HUD, error) {
	size := cfg.IconSize
	if size <= 0 {
		size = control.DefaultIconSize
	}

	modeNames := make([]string, len(control.Modes))
	for i, m := range control.Modes {
		modeNames[i] = m.String()
	}

	h := &HUD{}
	xs := []float64{control.DefaultVolumeNear, control.DefaultVolumeFar}
	if err := h.barTop.Fit(xs, []float64{float64(VolumeBar.Max.Y), float64(VolumeBar.Min.Y)}); err != nil {
		return nil, fmt.Errorf("volume bar scale: %w", err)
	}
	if err := h.percent.Fit(xs, []float64{0, 100}); err != nil {
		return nil, fmt.Errorf("volume percent scale: %w", err)
	}

	h.modeIcons = LoadIcons(cfg.ModeIconDir, modeNames, size)
	h.toolIcons = LoadIcons(cfg.ToolIconDir, painter.ToolNames, size)
	return h, nil
}

// Close releases the icons.
func (h *HUD) Close() {
	h.modeIcons.Close()
	h.toolIcons.Close()
}

// DrawModeSelect draws the mode icons and outlines the hovered one.
func (h *HUD) DrawModeSelect(frame *gocv.Mat, regions []control.Region, hovered int) {
	for i, r := range regions {
		icon, ok := h.modeIcons.Get(r.Mode.String())
		if !ok || !DrawIcon(frame, icon, r.Rect.Min) {
			continue
		}
		if i == hovered {
			gocv.Rectangle(frame, r.Rect, green, 3)
		}
	}
}

// DrawToolbar draws the painter tool icons and outlines the active tool.
func (h *HUD) DrawToolbar(frame *gocv.Mat, regions []painter.ToolRegion, active string) {
	for _, r := range regions {
		icon, ok := h.toolIcons.Get(r.Name)
		if !ok || !DrawIcon(frame, icon, r.Rect.Min) {
			continue
		}
		if r.Name == active {
			gocv.Rectangle(frame, r.Rect, white, 2)
		}
	}
}

// BarTop returns the y coordinate of the filled volume bar's top edge for a
// thumb-index distance.
func (h *HUD) BarTop(distance float64) int {
	return int(h.barTop.Predict(distance))
}

// DrawVolume draws the volume bar for a thumb-index distance. A zero
// distance draws nothing.
func (h *HUD) DrawVolume(frame *gocv.Mat, distance float64) {
	if distance == 0 {
		return
	}

	gocv.Rectangle(frame, VolumeBar, green, 2)
	fill := image.Rect(VolumeBar.Min.X, h.BarTop(distance), VolumeBar.Max.X, VolumeBar.Max.Y)
	gocv.Rectangle(frame, fill, green, -1)

	label := fmt.Sprintf("%d%%", int(h.percent.Predict(distance)))
	gocv.PutText(frame, label, image.Pt(VolumeBar.Min.X-10, VolumeBar.Max.Y+30), gocv.FontHersheySimplex, 0.6, green, 2)
}

// DrawStatus prints the mode, finger signature and frame rate.
func (h *HUD) DrawStatus(frame *gocv.Mat, mode control.Mode, sig gesture.Signature, fps float64) {
	gocv.PutText(frame, "Mode: "+mode.String(), image.Pt(10, 30), gocv.FontHersheySimplex, 0.6, yellow, 2)
	gocv.PutText(frame, fmt.Sprintf("FPS: %d", int(fps)), image.Pt(10, 50), gocv.FontHersheySimplex, 0.6, green, 2)
	gocv.PutText(frame, "Fingers: "+sig.String(), image.Pt(10, frame.Rows()-10), gocv.FontHersheySimplex, 0.5, green, 1)
}
