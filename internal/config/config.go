// Package config holds the runtime configuration of gesturectl. Values come
// from defaults, then settings persisted in the store, then command-line
// flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/control"
)

// Screenshot sources.
const (
	SourceFrame   = "frame"
	SourceDesktop = "desktop"
)

// ErrUnknownSetting is returned when a setting key is not recognised or may
// not be persisted.
var ErrUnknownSetting = errors.New("unknown setting")

// Config is the full runtime configuration.
type Config struct {
	DataDir     string
	OutputDir   string
	PluginDir   string
	IconDir     string
	ToolIconDir string
	StaticDir   string
	Addr        string

	CameraID    int
	FrameWidth  int
	FrameHeight int
	Mirror      bool

	ActiveFPS       int
	IdleFPS         int
	IdleTimeout     time.Duration
	MotionThreshold float64

	MinDetection float64
	MinTracking  float64

	ScreenshotHold time.Duration
	ModeSelectHold time.Duration
	HoverHold      time.Duration
	ScrollAmount   int
	VolumeMin      float64
	VolumeMax      float64
	InitialMode    string

	ScreenshotSource string
	PluginTimeout    time.Duration

	Window  bool
	Tray    bool
	NoInput bool
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ".gesturectl"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".gesturectl")
	}

	return Config{
		DataDir:     dataDir,
		OutputDir:   "Screenshots",
		PluginDir:   "plugins",
		IconDir:     "Icons",
		ToolIconDir: "PainterIcons",
		Addr:        ":8080",

		CameraID:    0,
		FrameWidth:  640,
		FrameHeight: 480,
		Mirror:      true,

		ActiveFPS:       30,
		IdleFPS:         5,
		IdleTimeout:     2 * time.Second,
		MotionThreshold: 1.0,

		MinDetection: 0.8,
		MinTracking:  0.75,

		ScreenshotHold: 2 * time.Second,
		ModeSelectHold: 2 * time.Second,
		HoverHold:      1 * time.Second,
		ScrollAmount:   40,
		VolumeMin:      0,
		VolumeMax:      100,
		InitialMode:    "mouse",

		ScreenshotSource: SourceFrame,
		PluginTimeout:    5 * time.Second,

		Window: false,
		Tray:   true,
	}
}

// RegisterFlags binds every field to a flag on fs.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "Directory for the settings database")
	fs.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "Directory for screenshots and saved drawings")
	fs.StringVar(&c.PluginDir, "plugin-dir", c.PluginDir, "Directory containing actuator plugins")
	fs.StringVar(&c.IconDir, "icon-dir", c.IconDir, "Directory with mode icon bitmaps")
	fs.StringVar(&c.ToolIconDir, "tool-icon-dir", c.ToolIconDir, "Directory with painter tool icon bitmaps")
	fs.StringVar(&c.StaticDir, "static-dir", c.StaticDir, "Directory of static web files to serve")
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address (empty disables the server)")

	fs.IntVar(&c.CameraID, "camera", c.CameraID, "Camera device ID")
	fs.IntVar(&c.FrameWidth, "width", c.FrameWidth, "Frame width in pixels")
	fs.IntVar(&c.FrameHeight, "height", c.FrameHeight, "Frame height in pixels")
	fs.BoolVar(&c.Mirror, "mirror", c.Mirror, "Mirror frames horizontally")

	fs.IntVar(&c.ActiveFPS, "active-fps", c.ActiveFPS, "Frame rate while a hand or motion is present")
	fs.IntVar(&c.IdleFPS, "idle-fps", c.IdleFPS, "Frame rate while idle")
	fs.DurationVar(&c.IdleTimeout, "idle-timeout", c.IdleTimeout, "Time without hand or motion before idling")
	fs.Float64Var(&c.MotionThreshold, "motion-threshold", c.MotionThreshold, "Percentage of changed pixels that counts as motion")

	fs.Float64Var(&c.MinDetection, "min-detection", c.MinDetection, "Minimum hand detection confidence")
	fs.Float64Var(&c.MinTracking, "min-tracking", c.MinTracking, "Minimum hand tracking confidence")

	fs.DurationVar(&c.ScreenshotHold, "screenshot-hold", c.ScreenshotHold, "Fist hold time that takes a screenshot")
	fs.DurationVar(&c.ModeSelectHold, "mode-select-hold", c.ModeSelectHold, "Open palm hold time that opens mode selection")
	fs.DurationVar(&c.HoverHold, "hover-hold", c.HoverHold, "Dwell time on a mode icon that selects it")
	fs.IntVar(&c.ScrollAmount, "scroll-amount", c.ScrollAmount, "Scroll ticks per frame in scroll mode")
	fs.Float64Var(&c.VolumeMin, "volume-min", c.VolumeMin, "Volume level at the closest pinch")
	fs.Float64Var(&c.VolumeMax, "volume-max", c.VolumeMax, "Volume level at the widest pinch")
	fs.StringVar(&c.InitialMode, "mode", c.InitialMode, "Initial mode: mouse, volume, painter or scroll")

	fs.StringVar(&c.ScreenshotSource, "screenshot-source", c.ScreenshotSource, "Screenshot source: frame or desktop")
	fs.DurationVar(&c.PluginTimeout, "plugin-timeout", c.PluginTimeout, "Timeout for one plugin call")

	fs.BoolVar(&c.Window, "window", c.Window, "Show the camera window (keys: q quit, s save drawing, c clear)")
	fs.BoolVar(&c.Tray, "tray", c.Tray, "Show the system tray icon")
	fs.BoolVar(&c.NoInput, "no-input", c.NoInput, "Do not drive the OS pointer or volume")
}

// settingKeys are the flags that may be persisted in the settings table.
var settingKeys = map[string]bool{
	"mirror":            true,
	"active-fps":        true,
	"idle-fps":          true,
	"idle-timeout":      true,
	"motion-threshold":  true,
	"min-detection":     true,
	"min-tracking":      true,
	"screenshot-hold":   true,
	"mode-select-hold":  true,
	"hover-hold":        true,
	"scroll-amount":     true,
	"volume-min":        true,
	"volume-max":        true,
	"mode":              true,
	"screenshot-source": true,
}

// SettingKeys returns the persistable setting names, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply returns a copy of c with settings applied and validated. Keys
// listed in skip are ignored, which lets explicit flags win over stored
// values.
func (c Config) Apply(settings map[string]string, skip map[string]bool) (Config, error) {
	out := c
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	out.RegisterFlags(fs)

	for key, value := range settings {
		if skip[key] {
			continue
		}
		if !settingKeys[key] {
			return c, fmt.Errorf("%w: %q", ErrUnknownSetting, key)
		}
		if err := fs.Set(key, value); err != nil {
			return c, fmt.Errorf("setting %s=%q: %w", key, value, err)
		}
	}

	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

// Settings returns the persistable values of c keyed by flag name.
func (c Config) Settings() map[string]string {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	c.RegisterFlags(fs)

	out := make(map[string]string, len(settingKeys))
	fs.VisitAll(func(f *flag.Flag) {
		if settingKeys[f.Name] {
			out[f.Name] = f.Value.String()
		}
	})
	return out
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.FrameWidth > 0 && c.FrameHeight > 0, "frame size %dx%d must be positive", c.FrameWidth, c.FrameHeight)
	check(c.ActiveFPS > 0, "active-fps must be positive")
	check(c.IdleFPS > 0, "idle-fps must be positive")
	check(c.IdleFPS <= c.ActiveFPS, "idle-fps %d exceeds active-fps %d", c.IdleFPS, c.ActiveFPS)
	check(c.IdleTimeout >= 0, "idle-timeout must not be negative")
	check(c.MotionThreshold > 0 && c.MotionThreshold <= 100, "motion-threshold %g outside (0,100]", c.MotionThreshold)
	check(c.MinDetection >= 0 && c.MinDetection <= 1, "min-detection %g outside [0,1]", c.MinDetection)
	check(c.MinTracking >= 0 && c.MinTracking <= 1, "min-tracking %g outside [0,1]", c.MinTracking)
	check(c.ScreenshotHold > 0, "screenshot-hold must be positive")
	check(c.ModeSelectHold > 0, "mode-select-hold must be positive")
	check(c.HoverHold > 0, "hover-hold must be positive")
	check(c.ScrollAmount > 0, "scroll-amount must be positive")
	check(c.VolumeMin >= 0 && c.VolumeMax <= 100 && c.VolumeMin < c.VolumeMax,
		"volume range [%g,%g] must be increasing within [0,100]", c.VolumeMin, c.VolumeMax)
	check(c.PluginTimeout > 0, "plugin-timeout must be positive")

	if _, err := control.ParseMode(c.InitialMode); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.ScreenshotSource {
	case SourceFrame, SourceDesktop:
	default:
		problems = append(problems, fmt.Sprintf("unknown screenshot-source %q", c.ScreenshotSource))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DBPath returns the settings database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "gesturectl.db")
}
