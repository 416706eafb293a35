// Package app runs the camera-to-actuator loop: it reads frames, detects the
// hand, steps the interaction state machine, drives the actuators and draws
// the on-frame interface.
package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/Lokesh983/Gesture-Control/internal/actuator"
	"github.com/Lokesh983/Gesture-Control/internal/capture"
	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/detector"
	"github.com/Lokesh983/Gesture-Control/internal/overlay"
	"github.com/Lokesh983/Gesture-Control/internal/painter"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// ErrNoFrame is returned by Screenshot before the first frame was processed.
var ErrNoFrame = errors.New("no frame captured yet")

// eventBuffer is the per-subscriber event queue length. Slow subscribers
// lose events rather than stall the loop.
const eventBuffer = 64

// Config wires the application. Settings is required; every other field is
// optional and falls back to a real device or a no-op.
type Config struct {
	Settings config.Config
	Store    *store.Store

	// Camera defaults to the device named in Settings.
	Camera capture.Camera
	// Detector defaults to the MediaPipe landmark service, or a detector
	// that never sees a hand when the service is missing.
	Detector detector.Detector

	Pointer actuator.Pointer
	Volume  actuator.Volume
	Screen  actuator.ScreenCapturer

	// ScreenSize is the pointer target area. Zero asks Pointer, then falls
	// back to 1920x1080.
	ScreenSize image.Point

	// OnQuit is called when the window's quit key is pressed.
	OnQuit func()
}

// State is the externally visible application state.
type State struct {
	control.Snapshot
	Enabled bool    `json:"enabled"`
	Running bool    `json:"running"`
	Active  bool    `json:"active"`
	FPS     float64 `json:"fps"`
	Tool    string  `json:"tool"`
}

// Event is one action emitted by the loop, stamped with its frame time.
type Event struct {
	Time   time.Time      `json:"time"`
	Action control.Action `json:"action"`
}

// App owns the decision loop. Machine, Surface and HUD belong to the loop
// goroutine; other goroutines reach them only through commands.
type App struct {
	config     Config
	settings   config.Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	machine    *control.Machine
	surface    *painter.Surface
	hud        *overlay.HUD
	dispatcher *actuator.Dispatcher

	// cmds is unbuffered: a send succeeds only when the loop takes it.
	cmds chan func()
	// loopMu is held by the loop goroutine for its whole life, and by
	// commands that run inline while the loop is stopped.
	loopMu sync.Mutex

	// Loop-owned frame state.
	display    gocv.Mat
	hasDisplay bool
	lastFrame  time.Time
	fps        float64

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	state   State
	jpeg    []byte
	subs    map[chan Event]struct{}
}

// New builds the application. Nothing touches the camera until Start.
func New(cfg Config) (*App, error) {
	s := cfg.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	mode, _ := control.ParseMode(s.InitialMode)
	frameSize := image.Pt(s.FrameWidth, s.FrameHeight)

	a := &App{
		config:   cfg,
		settings: s,
		camera:   cfg.Camera,
		detector: cfg.Detector,
		motion:   capture.NewMotionDetector(s.MotionThreshold),
		cmds:     make(chan func()),
		display:  gocv.NewMat(),
		enabled:  true,
		subs:     make(map[chan Event]struct{}),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.Config{
			DeviceID: s.CameraID,
			Width:    s.FrameWidth,
			Height:   s.FrameHeight,
			FPS:      s.ActiveFPS,
			Mirror:   s.Mirror,
		})
	}

	if a.detector == nil {
		dcfg := detector.DefaultConfig()
		dcfg.MinConfidence = s.MinDetection
		dcfg.MinTrackingConf = s.MinTracking
		if svc, err := detector.NewLandmarkService(dcfg); err == nil {
			a.detector = svc
			log.Println("using mediapipe landmark service")
		} else {
			log.Printf("landmark service not available (%v), no hand will be detected", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.dispatcher = actuator.NewDispatcher(cfg.Pointer, cfg.Volume)

	surface, err := painter.NewSurface(frameSize, painter.DefaultToolRegions(painter.IconSize))
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}
	a.surface = surface

	hud, err := overlay.New(overlay.Config{
		ModeIconDir: s.IconDir,
		ToolIconDir: s.ToolIconDir,
		IconSize:    control.DefaultIconSize,
	})
	if err != nil {
		surface.Close()
		return nil, err
	}
	a.hud = hud

	ccfg := control.DefaultConfig()
	ccfg.FrameSize = frameSize
	ccfg.ScreenSize = a.screenSize()
	ccfg.ScreenshotHold = s.ScreenshotHold
	ccfg.ModeSelectHold = s.ModeSelectHold
	ccfg.HoverHold = s.HoverHold
	ccfg.ScrollAmount = s.ScrollAmount
	ccfg.VolumeEnabled = a.dispatcher.HasVolume()
	ccfg.VolumeMin = s.VolumeMin
	ccfg.VolumeMax = s.VolumeMax
	ccfg.InitialMode = mode

	machine, err := control.New(ccfg, surface)
	if err != nil {
		hud.Close()
		surface.Close()
		return nil, err
	}
	a.machine = machine
	machine.NoteTool(surface.Tool().Name)

	a.publish()
	return a, nil
}

func (a *App) screenSize() image.Point {
	if a.config.ScreenSize.X > 0 && a.config.ScreenSize.Y > 0 {
		return a.config.ScreenSize
	}
	if a.config.Pointer != nil {
		size, err := a.config.Pointer.ScreenSize()
		if err == nil {
			return size
		}
		log.Printf("screen size unavailable: %v", err)
	}
	return image.Pt(1920, 1080)
}

// Start opens the camera and starts the decision loop. Starting a running
// app is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.settings.ActiveFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	a.state.Running = true
	go a.run(a.stopCh, a.doneCh)

	log.Println("frame loop started")
	return nil
}

// Stop halts the loop and closes the camera. The canvas is kept.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.state.Running = false
	a.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("error closing camera: %v", err)
	}
	log.Println("frame loop stopped")
}

// Close stops the loop and releases every resource.
func (a *App) Close() error {
	a.Stop()

	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	a.motion.Close()
	a.hud.Close()
	a.display.Close()
	var errs []error
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	if err := a.surface.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close canvas: %w", err))
	}

	a.mu.Lock()
	for ch := range a.subs {
		close(ch)
		delete(a.subs, ch)
	}
	a.mu.Unlock()

	return errors.Join(errs...)
}

// SetEnabled pauses or resumes frame processing without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.state.Enabled = enabled
}

// IsEnabled returns whether frame processing is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// State returns the latest published state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// LatestJPEG returns the last rendered frame as JPEG, or nil.
func (a *App) LatestJPEG() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jpeg
}

// Subscribe registers for emitted actions. The returned function
// unsubscribes and closes the channel.
func (a *App) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)

	a.mu.Lock()
	a.subs[ch] = struct{}{}
	a.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if _, ok := a.subs[ch]; ok {
				delete(a.subs, ch)
				close(ch)
			}
		})
	}
}

func (a *App) emit(now time.Time, actions []control.Action) {
	if len(actions) == 0 {
		return
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for ch := range a.subs {
		for _, act := range actions {
			select {
			case ch <- Event{Time: now, Action: act}:
			default:
			}
		}
	}
}

// publish copies loop-owned state into the shared snapshot. Loop context only.
func (a *App) publish() {
	snap := a.machine.Snapshot()
	tool := a.surface.Tool().Name

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Snapshot = snap
	a.state.Tool = tool
	a.state.FPS = a.fps
	a.state.Enabled = a.enabled
}

// Do runs fn in loop context: between frames while the loop runs, inline
// otherwise. It returns fn's error.
func (a *App) Do(fn func() error) error {
	a.mu.RLock()
	done := a.doneCh
	a.mu.RUnlock()

	if done != nil {
		res := make(chan error, 1)
		select {
		case a.cmds <- func() { res <- fn() }:
			return <-res
		case <-done:
		}
	}

	a.loopMu.Lock()
	defer a.loopMu.Unlock()
	return fn()
}

// SetMode switches mode as the mode buttons do.
func (a *App) SetMode(mode control.Mode) error {
	return a.Do(func() error {
		a.machine.SetMode(mode)
		a.publish()
		a.emit(time.Now(), []control.Action{{Kind: control.ModeChange, Mode: mode}})
		log.Printf("mode set to %s", mode)
		return nil
	})
}

// SelectTool switches the painter tool as the toolbar buttons do.
func (a *App) SelectTool(name string) error {
	return a.Do(func() error {
		if err := a.surface.SelectTool(name); err != nil {
			return err
		}
		a.machine.NoteTool(name)
		a.publish()
		a.emit(time.Now(), []control.Action{{Kind: control.ToolChange, Mode: a.machine.Mode(), Tool: name}})
		return nil
	})
}

// ClearCanvas wipes the drawing.
func (a *App) ClearCanvas() error {
	return a.Do(func() error {
		a.surface.Clear()
		log.Println("canvas cleared")
		return nil
	})
}

// SaveDrawing writes the canvas to the output directory.
func (a *App) SaveDrawing() (*store.Capture, error) {
	var c *store.Capture
	err := a.Do(func() error {
		var err error
		c, err = a.saveDrawing(time.Now())
		return err
	})
	return c, err
}

// Screenshot saves the configured screenshot source.
func (a *App) Screenshot() (*store.Capture, error) {
	var c *store.Capture
	err := a.Do(func() error {
		var err error
		c, err = a.screenshot(time.Now())
		return err
	})
	return c, err
}
