// Package painter holds the freehand drawing canvas and the compositor that
// blends it over camera frames.
package painter

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Brush defaults.
const (
	DefaultThickness = 10
	ThickThickness   = 20
	ThinThickness    = 5
	IconSize         = 100
)

// Tool names, in toolbar order.
const (
	ToolRed    = "red"
	ToolGreen  = "green"
	ToolBlue   = "blue"
	ToolThick  = "thick"
	ToolThin   = "thin"
	ToolEraser = "eraser"
)

// ToolNames lists the toolbar entries left to right.
var ToolNames = []string{ToolRed, ToolGreen, ToolBlue, ToolThick, ToolThin, ToolEraser}

var (
	Red   = color.RGBA{R: 255, A: 255}
	Green = color.RGBA{G: 255, A: 255}
	Blue  = color.RGBA{B: 255, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var toolColors = map[string]color.RGBA{
	ToolRed:   Red,
	ToolGreen: Green,
	ToolBlue:  Blue,
}

var toolOrigins = []image.Point{{10, 20}, {115, 20}, {220, 20}, {325, 20}, {430, 20}, {535, 20}}

// ErrUnknownTool is returned when selecting a tool name that does not exist.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is the active brush.
type Tool struct {
	Name      string     `json:"name"`
	Color     color.RGBA `json:"-"`
	Thickness int        `json:"thickness"`
	Eraser    bool       `json:"eraser"`
}

// ToolRegion is a toolbar icon hit area.
type ToolRegion struct {
	Name string
	Rect image.Rectangle
}

// Contains reports whether p lies strictly inside the icon.
func (r ToolRegion) Contains(p image.Point) bool {
	return p.X > r.Rect.Min.X && p.X < r.Rect.Max.X &&
		p.Y > r.Rect.Min.Y && p.Y < r.Rect.Max.Y
}

// DefaultToolRegions returns the toolbar layout for icons of the given size.
func DefaultToolRegions(size int) []ToolRegion {
	regions := make([]ToolRegion, len(ToolNames))
	for i, name := range ToolNames {
		regions[i] = ToolRegion{
			Name: name,
			Rect: image.Rectangle{Min: toolOrigins[i], Max: toolOrigins[i].Add(image.Pt(size, size))},
		}
	}
	return regions
}

// Surface is the drawing canvas plus brush and pen state. It is owned by
// the decision loop and is not safe for concurrent use.
type Surface struct {
	canvas  gocv.Mat
	size    image.Point
	regions []ToolRegion

	tool      Tool
	lastColor color.RGBA

	pen    image.Point
	lifted bool
}

// NewSurface creates a white canvas of the given frame size.
func NewSurface(size image.Point, regions []ToolRegion) (*Surface, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("invalid canvas size %v", size)
	}

	return &Surface{
		canvas:    gocv.NewMatWithSizeFromScalar(whiteScalar(), size.Y, size.X, gocv.MatTypeCV8UC3),
		size:      size,
		regions:   regions,
		tool:      Tool{Name: ToolRed, Color: Red, Thickness: DefaultThickness},
		lastColor: Red,
		lifted:    true,
	}, nil
}

func whiteScalar() gocv.Scalar {
	return gocv.NewScalar(255, 255, 255, 0)
}

// SelectToolAt selects the tool whose icon contains p.
func (s *Surface) SelectToolAt(p image.Point) (string, bool) {
	for _, r := range s.regions {
		if r.Contains(p) {
			s.SelectTool(r.Name)
			return r.Name, true
		}
	}
	return "", false
}

// SelectTool switches the brush by name. Thickness changes and colours
// picked after the eraser restore the last colour used.
func (s *Surface) SelectTool(name string) error {
	switch name {
	case ToolThick:
		s.tool = Tool{Name: name, Color: s.lastColor, Thickness: ThickThickness}
	case ToolThin:
		s.tool = Tool{Name: name, Color: s.lastColor, Thickness: ThinThickness}
	case ToolEraser:
		s.tool = Tool{Name: name, Color: White, Thickness: s.tool.Thickness, Eraser: true}
	default:
		c, ok := toolColors[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTool, name)
		}
		s.lastColor = c
		s.tool = Tool{Name: name, Color: c, Thickness: s.tool.Thickness}
	}
	return nil
}

// StrokeTo continues the stroke to p when draw is set and lifts the pen
// otherwise. The first point after a lift only places the pen. Points
// outside the canvas lift the pen.
func (s *Surface) StrokeTo(p image.Point, draw bool) bool {
	if !draw || !p.In(image.Rectangle{Max: s.size}) {
		s.lifted = true
		return false
	}

	if s.lifted {
		s.pen = p
		s.lifted = false
		return false
	}

	gocv.Line(&s.canvas, s.pen, p, s.tool.Color, s.tool.Thickness)
	s.pen = p
	return true
}

// Lifted reports whether the pen is up.
func (s *Surface) Lifted() bool {
	return s.lifted
}

// Clear resets the canvas to white and lifts the pen.
func (s *Surface) Clear() {
	s.canvas.SetTo(whiteScalar())
	s.lifted = true
}

// Tool returns the active brush.
func (s *Surface) Tool() Tool {
	return s.tool
}

// Regions returns the toolbar icon layout.
func (s *Surface) Regions() []ToolRegion {
	return s.regions
}

// Size returns the canvas dimensions.
func (s *Surface) Size() image.Point {
	return s.size
}

// Canvas returns a copy of the canvas. The caller must close it.
func (s *Surface) Canvas() gocv.Mat {
	return s.canvas.Clone()
}

// View returns the live canvas without copying. It must not be retained
// past the current frame.
func (s *Surface) View() gocv.Mat {
	return s.canvas
}

// Close releases the canvas.
func (s *Surface) Close() error {
	return s.canvas.Close()
}
