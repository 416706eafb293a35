// Package tray provides a system tray menu for Gesture Control.
package tray

import (
	"log"
	"strings"
	"sync"

	"github.com/Lokesh983/Gesture-Control/internal/control"
	"github.com/Lokesh983/Gesture-Control/internal/store"
	"github.com/getlantern/systray"
)

// Controller is the part of the application the menu drives.
type Controller interface {
	SetEnabled(enabled bool)
	SetMode(mode control.Mode) error
	ClearCanvas() error
	SaveDrawing() (*store.Capture, error)
	Screenshot() (*store.Capture, error)
}

// Tray represents the system tray application.
type Tray struct {
	ctl        Controller
	onSettings func()
	onQuit     func()
	enabled    bool
	mode       control.Mode
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuMode   *systray.MenuItem
	menuModes  map[control.Mode]*systray.MenuItem
}

// New creates a new Tray driving ctl, enabled by default.
func New(ctl Controller, mode control.Mode) *Tray {
	return &Tray{
		ctl:       ctl,
		enabled:   true,
		mode:      mode,
		menuModes: make(map[control.Mode]*systray.MenuItem),
	}
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Gesture Control")
	systray.SetTooltip("Gesture Control: hand gestures to pointer, volume and painter")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture control")
	systray.AddSeparator()

	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Current mode")
	t.menuMode.Disable()
	for _, m := range control.Modes {
		t.menuModes[m] = systray.AddMenuItem(titleCase(m.String()), "Switch to "+m.String()+" mode")
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuScreenshot := systray.AddMenuItem("Take Screenshot", "Save the current frame")
	menuSave := systray.AddMenuItem("Save Drawing", "Save the painter canvas")
	menuClear := systray.AddMenuItem("Clear Canvas", "Erase the painter canvas")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Gesture Control")

	for _, m := range control.Modes {
		go t.watchMode(m, t.menuModes[m].ClickedCh)
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuScreenshot.ClickedCh:
				t.handleScreenshot()
			case <-menuSave.ClickedCh:
				t.handleSave()
			case <-menuClear.ClickedCh:
				t.handleClear()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) watchMode(m control.Mode, clicked <-chan struct{}) {
	for range clicked {
		t.handleMode(m)
	}
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.Unlock()

	// Call the controller outside the lock to prevent deadlocks
	t.ctl.SetEnabled(enabled)
}

func (t *Tray) handleMode(m control.Mode) {
	if err := t.ctl.SetMode(m); err != nil {
		log.Printf("tray: set mode %s: %v", m, err)
		return
	}
	t.SetMode(m)
}

func (t *Tray) handleScreenshot() {
	if c, err := t.ctl.Screenshot(); err != nil {
		log.Printf("tray: screenshot: %v", err)
	} else {
		log.Printf("tray: screenshot saved to %s", c.Path)
	}
}

func (t *Tray) handleSave() {
	if c, err := t.ctl.SaveDrawing(); err != nil {
		log.Printf("tray: save drawing: %v", err)
	} else {
		log.Printf("tray: drawing saved to %s", c.Path)
	}
}

func (t *Tray) handleClear() {
	if err := t.ctl.ClearCanvas(); err != nil {
		log.Printf("tray: clear canvas: %v", err)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetMode updates the current mode label. Modes changed by gesture are
// reported here too.
func (t *Tray) SetMode(m control.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = m
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(m))
	}
}

// Mode returns the mode last shown in the menu.
func (t *Tray) Mode() control.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func modeTitle(m control.Mode) string {
	return "Mode: " + titleCase(m.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
