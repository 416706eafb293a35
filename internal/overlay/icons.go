// Package overlay draws the heads-up display over camera frames: mode and
// tool icons, the volume bar and status text.
package overlay

import (
	"image"
	"log"
	"path/filepath"

	"gocv.io/x/gocv"
)

// PlaceholderGray is the fill level of icons whose bitmap is missing.
const PlaceholderGray = 128

// IconSet is a list of square BGR icons of equal size.
type IconSet struct {
	size  int
	icons map[string]gocv.Mat
}

// LoadIcons reads name+".png" for each name from dir and scales it to
// size x size. Missing or unreadable files get a gray placeholder.
func LoadIcons(dir string, names []string, size int) *IconSet {
	s := &IconSet{size: size, icons: make(map[string]gocv.Mat, len(names))}
	for _, name := range names {
		s.icons[name] = loadIcon(filepath.Join(dir, name+".png"), size)
	}
	return s
}

func loadIcon(path string, size int) gocv.Mat {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		log.Printf("icon %s not found, using placeholder", path)
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(PlaceholderGray, PlaceholderGray, PlaceholderGray, 0), size, size, gocv.MatTypeCV8UC3)
	}
	defer img.Close()

	scaled := gocv.NewMat()
	gocv.Resize(img, &scaled, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)
	return scaled
}

// Get returns the icon for name.
func (s *IconSet) Get(name string) (gocv.Mat, bool) {
	m, ok := s.icons[name]
	return m, ok
}

// Size returns the icon edge length.
func (s *IconSet) Size() int {
	return s.size
}

// Close releases all icons.
func (s *IconSet) Close() {
	for name, m := range s.icons {
		m.Close()
		delete(s.icons, name)
	}
}

// DrawIcon copies icon into dst with its top-left corner at at. Icons that
// would not fit entirely inside dst are skipped and false is returned.
func DrawIcon(dst *gocv.Mat, icon gocv.Mat, at image.Point) bool {
	r := image.Rectangle{Min: at, Max: at.Add(image.Pt(icon.Cols(), icon.Rows()))}
	if !r.In(image.Rect(0, 0, dst.Cols(), dst.Rows())) || icon.Type() != dst.Type() {
		return false
	}

	roi := dst.Region(r)
	defer roi.Close()
	icon.CopyTo(&roi)
	return true
}
