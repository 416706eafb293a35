package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/detector"
	"github.com/Lokesh983/Gesture-Control/internal/gesture"
	"github.com/Lokesh983/Gesture-Control/internal/painter"
)

// WindowName is the title of the optional preview window.
const WindowName = "Gesture Control"

// run is the decision loop. It owns the machine, the canvas and the HUD
// until stop is closed, and drains commands between frames.
//
// The loop starts at the active frame rate. When neither motion nor a hand
// has been seen for IdleTimeout it drops to the idle rate and only runs the
// hand detector on frames with motion, switching back on the first motion
// or hand.
func (a *App) run(stop <-chan struct{}, done chan<- struct{}) {
	a.loopMu.Lock()
	var window *gocv.Window
	defer func() {
		if window != nil {
			window.Close()
		}
		a.loopMu.Unlock()
		close(done)
	}()

	activeInterval := time.Second / time.Duration(a.settings.ActiveFPS)
	idleInterval := time.Second / time.Duration(a.settings.IdleFPS)

	active := true
	lastActivity := time.Now()
	a.setActive(true)

	ticker := time.NewTicker(activeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case fn := <-a.cmds:
			fn()
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			if a.processFrame(now, active) {
				lastActivity = now
				if !active {
					active = true
					a.camera.SetFPS(a.settings.ActiveFPS)
					ticker.Reset(activeInterval)
					a.setActive(true)
					log.Println("switched to active mode")
				}
			} else if active && now.Sub(lastActivity) > a.settings.IdleTimeout {
				active = false
				a.camera.SetFPS(a.settings.IdleFPS)
				ticker.Reset(idleInterval)
				a.setActive(false)
				log.Println("switched to idle mode")
			}

			if a.settings.Window && a.hasDisplay {
				if window == nil {
					window = gocv.NewWindow(WindowName)
				}
				window.IMShow(a.display)
				a.handleKey(window.WaitKey(1))
			}
		}
	}
}

func (a *App) setActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Active = active
}

// processFrame runs one frame through detection, the state machine, the
// actuators and the HUD. It reports whether the frame showed activity.
func (a *App) processFrame(now time.Time, active bool) bool {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("error reading frame: %v", err)
		return false
	}
	defer frame.Close()

	moved, _ := a.motion.Detect(frame)

	var hands []detector.HandLandmarks
	if active || moved {
		hands, err = a.detector.Detect(frame)
		if err != nil {
			log.Printf("error detecting hands: %v", err)
			hands = nil
		}
	}

	obs := gesture.Observe(detector.First(hands), frame.Cols(), frame.Rows())
	actions := a.machine.Step(obs, now)

	shot := false
	for _, act := range actions {
		switch {
		case act.Drives():
			a.dispatcher.Apply(act)
		case act.Kind == control.Screenshot:
			shot = true
		case act.Kind == control.ModeSelect:
			log.Println("mode selection opened")
		case act.Kind == control.ModeChange:
			log.Printf("mode changed to %s", act.Mode)
		case act.Kind == control.ToolChange:
			log.Printf("tool changed to %s", act.Tool)
		}
	}

	a.tickFPS(now)
	a.render(*frame)

	if shot {
		if _, err := a.screenshot(now); err != nil {
			log.Printf("screenshot failed: %v", err)
		}
	}

	a.publish()
	a.emit(now, actions)
	a.encode()

	return moved || obs.Present()
}

func (a *App) tickFPS(now time.Time) {
	if !a.lastFrame.IsZero() {
		if dt := now.Sub(a.lastFrame).Seconds(); dt > 0 {
			a.fps = 1 / dt
		}
	}
	a.lastFrame = now
}

// render builds the display frame: the canvas blended in painter mode, then
// the toolbar, mode icons, volume bar and status text.
func (a *App) render(frame gocv.Mat) {
	snap := a.machine.Snapshot()

	if snap.Mode == control.ModePainter {
		if err := painter.Composite(frame, a.surface.View(), &a.display); err != nil {
			log.Printf("composite failed: %v", err)
			frame.CopyTo(&a.display)
		}
	} else {
		frame.CopyTo(&a.display)
	}

	switch {
	case snap.Selecting:
		a.hud.DrawModeSelect(&a.display, a.machine.Regions(), snap.Hovered)
	case snap.Mode == control.ModePainter:
		a.hud.DrawToolbar(&a.display, a.surface.Regions(), a.surface.Tool().Name)
	case snap.Mode == control.ModeVolume:
		a.hud.DrawVolume(&a.display, snap.VolumeDistance)
	}

	a.hud.DrawStatus(&a.display, snap.Mode, snap.Signature, a.fps)
	a.hasDisplay = true
}

func (a *App) encode() {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, a.display)
	if err != nil {
		log.Printf("encode frame: %v", err)
		return
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.mu.Lock()
	a.jpeg = jpeg
	a.mu.Unlock()
}

// handleKey maps preview window keys: q quits, s saves the drawing and c
// clears the canvas.
func (a *App) handleKey(key int) {
	switch key {
	case 'q':
		if a.config.OnQuit != nil {
			// Quitting stops this loop, so it must not run on it.
			go a.config.OnQuit()
		}
	case 's':
		if _, err := a.saveDrawing(time.Now()); err != nil {
			log.Printf("save drawing failed: %v", err)
		}
	case 'c':
		a.surface.Clear()
		log.Println("canvas cleared")
	}
}
