package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// timestampLayout formats capture file names, e.g. paint_20240501_120000.png.
const timestampLayout = "20060102_150405"

// Capture file name prefixes.
const (
	ScreenshotPrefix = "screenshot"
	DrawingPrefix    = "paint"
)

// CaptureName returns the file name for a capture taken at t.
func CaptureName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.png", prefix, t.Format(timestampLayout))
}

// screenshot saves the last display frame, or the desktop when configured
// and available. Loop context only.
func (a *App) screenshot(now time.Time) (*store.Capture, error) {
	if a.settings.ScreenshotSource == config.SourceDesktop && a.config.Screen != nil {
		img, err := a.config.Screen.CaptureScreen()
		if err != nil {
			return nil, err
		}
		mat, err := gocv.ImageToMatRGB(img)
		if err != nil {
			return nil, fmt.Errorf("convert desktop image: %w", err)
		}
		defer mat.Close()
		return a.writeCapture(store.CaptureScreenshot, ScreenshotPrefix, mat, now)
	}

	if !a.hasDisplay {
		return nil, ErrNoFrame
	}
	return a.writeCapture(store.CaptureScreenshot, ScreenshotPrefix, a.display, now)
}

// saveDrawing saves the canvas. Loop context only.
func (a *App) saveDrawing(now time.Time) (*store.Capture, error) {
	canvas := a.surface.Canvas()
	defer canvas.Close()
	return a.writeCapture(store.CaptureDrawing, DrawingPrefix, canvas, now)
}

func (a *App) writeCapture(kind store.CaptureKind, prefix string, img gocv.Mat, now time.Time) (*store.Capture, error) {
	dir := a.settings.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, CaptureName(prefix, now))
	if !gocv.IMWrite(path, img) {
		return nil, fmt.Errorf("failed to write %s", path)
	}

	c := &store.Capture{
		ID:        uuid.New().String(),
		Kind:      kind,
		Path:      path,
		Width:     img.Cols(),
		Height:    img.Rows(),
		CreatedAt: now,
	}
	if a.config.Store != nil {
		if err := a.config.Store.Captures().Create(c); err != nil {
			log.Printf("failed to record capture %s: %v", path, err)
		}
	}

	log.Printf("saved %s to %s", kind, path)
	return c, nil
}
