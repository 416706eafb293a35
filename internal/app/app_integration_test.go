package app

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/capture"
	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/detector"
	"github.com/Lokesh983/Gesture-Control/internal/painter"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

type recordingPointer struct {
	mu     sync.Mutex
	moves  []image.Point
	clicks []string
}

func (p *recordingPointer) Move(x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, image.Pt(x, y))
	return nil
}

func (p *recordingPointer) Click(button string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, button)
	return nil
}

func (p *recordingPointer) Scroll(delta int) error { return nil }

func (p *recordingPointer) ScreenSize() (image.Point, error) {
	return image.Pt(1920, 1080), nil
}

func (p *recordingPointer) lastMove() (image.Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.moves) == 0 {
		return image.Point{}, false
	}
	return p.moves[len(p.moves)-1], true
}

func testSettings(t *testing.T) config.Config {
	t.Helper()
	s := config.Default()
	s.DataDir = t.TempDir()
	s.OutputDir = filepath.Join(t.TempDir(), "Screenshots")
	s.IconDir = t.TempDir()
	s.ToolIconDir = t.TempDir()
	s.ScreenshotHold = 50 * time.Millisecond
	s.IdleTimeout = time.Minute
	return s
}

type testApp struct {
	*App
	detector *detector.MockDetector
	pointer  *recordingPointer
	store    *store.Store
}

func newTestApp(t *testing.T, settings config.Config) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test that requires GoCV")
	}

	st, err := store.New(filepath.Join(settings.DataDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	det := detector.NewMockDetector()
	ptr := &recordingPointer{}

	a, err := New(Config{
		Settings: settings,
		Store:    st,
		Camera:   capture.NewBlankCamera(settings.FrameWidth, settings.FrameHeight),
		Detector: det,
		Pointer:  ptr,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return &testApp{App: a, detector: det, pointer: ptr, store: st}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	s := config.Default()
	s.FrameWidth = 0

	if _, err := New(Config{Settings: s}); err == nil {
		t.Error("New() with zero frame width should fail")
	}
}

func TestCaptureName(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 8, 7, 0, time.Local)

	if got := CaptureName(ScreenshotPrefix, at); got != "screenshot_20240501_090807.png" {
		t.Errorf("CaptureName(screenshot) = %q", got)
	}
	if got := CaptureName(DrawingPrefix, at); got != "paint_20240501_090807.png" {
		t.Errorf("CaptureName(paint) = %q", got)
	}
}

func TestApp_PointerFollowsIndexFinger(t *testing.T) {
	a := newTestApp(t, testSettings(t))
	a.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks()})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitFor(t, "pointer move", func() bool {
		_, ok := a.pointer.lastMove()
		return ok
	})

	// Index tip at (0.56, 0.35) of 640x480 maps onto 1920x1080.
	got, _ := a.pointer.lastMove()
	want := image.Pt(1074, 378)
	if abs(got.X-want.X) > 3 || abs(got.Y-want.Y) > 3 {
		t.Errorf("pointer at %v, want near %v", got, want)
	}

	state := a.State()
	if !state.Running || !state.HandPresent || state.Mode != control.ModeMouse {
		t.Errorf("State() = %+v", state)
	}
}

func TestApp_FistHoldTakesOneScreenshot(t *testing.T) {
	a := newTestApp(t, testSettings(t))
	a.detector.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})

	events, unsubscribe := a.Subscribe()
	defer unsubscribe()

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var shot Event
	timeout := time.After(3 * time.Second)
	for shot.Action.Kind != control.Screenshot {
		select {
		case shot = <-events:
		case <-timeout:
			t.Fatal("timed out waiting for screenshot event")
		}
	}

	// Keep holding well past the threshold; the hold must not repeat.
	time.Sleep(200 * time.Millisecond)
	a.Stop()

	captures, err := a.store.Captures().List(store.CaptureScreenshot, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(captures) != 1 {
		t.Fatalf("got %d screenshots, want 1", len(captures))
	}

	c := captures[0]
	if !strings.HasPrefix(filepath.Base(c.Path), ScreenshotPrefix+"_") {
		t.Errorf("screenshot path = %q", c.Path)
	}
	if _, err := os.Stat(c.Path); err != nil {
		t.Errorf("screenshot file missing: %v", err)
	}
	if c.Width != 640 || c.Height != 480 {
		t.Errorf("screenshot size = %dx%d, want 640x480", c.Width, c.Height)
	}
}

func TestApp_CommandsWhileStopped(t *testing.T) {
	a := newTestApp(t, testSettings(t))

	events, unsubscribe := a.Subscribe()
	defer unsubscribe()

	if err := a.SetMode(control.ModePainter); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if got := a.State().Mode; got != control.ModePainter {
		t.Errorf("State().Mode = %v, want painter", got)
	}

	select {
	case ev := <-events:
		if ev.Action.Kind != control.ModeChange || ev.Action.Mode != control.ModePainter {
			t.Errorf("event = %+v, want mode change to painter", ev.Action)
		}
	default:
		t.Error("SetMode() emitted no event")
	}

	if err := a.SelectTool(painter.ToolBlue); err != nil {
		t.Fatalf("SelectTool() error = %v", err)
	}
	if got := a.State().Tool; got != painter.ToolBlue {
		t.Errorf("State().Tool = %q, want %q", got, painter.ToolBlue)
	}
	if err := a.SelectTool("purple"); !errors.Is(err, painter.ErrUnknownTool) {
		t.Errorf("SelectTool(purple) error = %v, want ErrUnknownTool", err)
	}

	if err := a.ClearCanvas(); err != nil {
		t.Errorf("ClearCanvas() error = %v", err)
	}

	c, err := a.SaveDrawing()
	if err != nil {
		t.Fatalf("SaveDrawing() error = %v", err)
	}
	if c.Kind != store.CaptureDrawing || !strings.HasPrefix(filepath.Base(c.Path), DrawingPrefix+"_") {
		t.Errorf("SaveDrawing() = %+v", c)
	}
	if _, err := a.store.Captures().GetByID(c.ID); err != nil {
		t.Errorf("drawing not recorded: %v", err)
	}

	if _, err := a.Screenshot(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Screenshot() before any frame error = %v, want ErrNoFrame", err)
	}
}

func TestApp_CommandsWhileRunning(t *testing.T) {
	a := newTestApp(t, testSettings(t))

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitFor(t, "first frame", func() bool { return a.LatestJPEG() != nil })

	jpeg := a.LatestJPEG()
	if len(jpeg) < 2 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		t.Error("LatestJPEG() is not a JPEG")
	}

	if err := a.SetMode(control.ModeScroll); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if got := a.State().Mode; got != control.ModeScroll {
		t.Errorf("State().Mode = %v, want scroll", got)
	}

	c, err := a.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot() error = %v", err)
	}
	if c.Kind != store.CaptureScreenshot {
		t.Errorf("Screenshot() kind = %q", c.Kind)
	}
}

func TestApp_Disabled(t *testing.T) {
	a := newTestApp(t, testSettings(t))
	a.SetEnabled(false)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	a.Stop()

	if a.detector.Calls() != 0 {
		t.Errorf("detector called %d times while disabled", a.detector.Calls())
	}
	if a.IsEnabled() || a.State().Enabled {
		t.Error("app should report disabled")
	}
}

func TestApp_Unsubscribe(t *testing.T) {
	a := newTestApp(t, testSettings(t))

	events, unsubscribe := a.Subscribe()
	unsubscribe()
	unsubscribe()

	if _, ok := <-events; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
