package control

import (
	"errors"
	"image"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/detector"
	"github.com/Lokesh983/Gesture-Control/internal/gesture"
)

// Default timing and geometry.
const (
	DefaultScreenshotHold = 2 * time.Second
	DefaultModeSelectHold = 2 * time.Second
	DefaultHoverHold      = 1 * time.Second
	DefaultScrollAmount   = 40
	DefaultIconSize       = 100
	// Thumb-index distances (pixels) mapped onto the volume range.
	DefaultVolumeNear = 20
	DefaultVolumeFar  = 200
)

// ErrInvalidConfig is returned by New for unusable geometry.
var ErrInvalidConfig = errors.New("invalid control config")

// Painter is the drawing surface driven in painter mode.
type Painter interface {
	// SelectToolAt picks the tool whose icon contains p. It returns the
	// tool name and false when p is not over any tool icon.
	SelectToolAt(p image.Point) (string, bool)
	// StrokeTo extends the current stroke to p when draw is true, or lifts
	// the pen when draw is false. It reports whether ink was laid down.
	StrokeTo(p image.Point, draw bool) bool
}

// Region is a mode icon hit area in frame coordinates.
type Region struct {
	Mode Mode
	Rect image.Rectangle
}

// Contains reports whether p lies strictly inside the region.
func (r Region) Contains(p image.Point) bool {
	return p.X > r.Rect.Min.X && p.X < r.Rect.Max.X &&
		p.Y > r.Rect.Min.Y && p.Y < r.Rect.Max.Y
}

// DefaultRegions lays the four mode icons out in a row along the top edge.
func DefaultRegions(size int) []Region {
	origins := []image.Point{{40, 20}, {180, 20}, {320, 20}, {460, 20}}
	regions := make([]Region, len(Modes))
	for i, m := range Modes {
		regions[i] = Region{Mode: m, Rect: image.Rectangle{Min: origins[i], Max: origins[i].Add(image.Pt(size, size))}}
	}
	return regions
}

// Config holds the state machine's thresholds and geometry.
type Config struct {
	FrameSize  image.Point
	ScreenSize image.Point

	ScreenshotHold time.Duration
	ModeSelectHold time.Duration
	HoverHold      time.Duration

	ScrollAmount int

	// VolumeEnabled is false when no volume actuator is available.
	VolumeEnabled bool
	VolumeMin     float64
	VolumeMax     float64
	VolumeNear    float64
	VolumeFar     float64

	ModeRegions []Region
	InitialMode Mode
}

// DefaultConfig returns the controller defaults for a 640x480 camera.
func DefaultConfig() Config {
	return Config{
		FrameSize:      image.Pt(640, 480),
		ScreenSize:     image.Pt(1920, 1080),
		ScreenshotHold: DefaultScreenshotHold,
		ModeSelectHold: DefaultModeSelectHold,
		HoverHold:      DefaultHoverHold,
		ScrollAmount:   DefaultScrollAmount,
		VolumeEnabled:  true,
		VolumeMin:      0,
		VolumeMax:      100,
		VolumeNear:     DefaultVolumeNear,
		VolumeFar:      DefaultVolumeFar,
		ModeRegions:    DefaultRegions(DefaultIconSize),
		InitialMode:    ModeMouse,
	}
}

// Snapshot is a read-only view of the machine state for drivers and HUDs.
type Snapshot struct {
	Mode           Mode              `json:"mode"`
	Selecting      bool              `json:"selecting"`
	Hovered        int               `json:"hovered"`
	Armed          bool              `json:"armed"`
	Signature      gesture.Signature `json:"signature"`
	HandPresent    bool              `json:"hand_present"`
	VolumeLevel    float64           `json:"volume_level"`
	VolumeDistance float64           `json:"volume_distance"`
}

// Machine is the per-frame interaction state machine. It is not safe for
// concurrent use; one decision loop owns it.
type Machine struct {
	cfg     Config
	painter Painter

	mode      Mode
	selecting bool
	armed     bool
	hovered   int
	tool      string

	screenshot *HoldTimer
	modeSelect *HoldTimer
	hover      *HoldTimer

	pointerX *linearMap
	pointerY *linearMap
	volume   *linearMap

	last           gesture.Signature
	handPresent    bool
	volumeLevel    float64
	volumeDistance float64
}

// New creates a Machine. painter may be nil, in which case painter mode
// only tracks gestures.
func New(cfg Config, painter Painter) (*Machine, error) {
	if cfg.FrameSize.X <= 0 || cfg.FrameSize.Y <= 0 {
		return nil, ErrInvalidConfig
	}

	pointerX, err := newLinearMap(0, float64(cfg.FrameSize.X), 0, float64(cfg.ScreenSize.X))
	if err != nil {
		return nil, err
	}
	pointerY, err := newLinearMap(0, float64(cfg.FrameSize.Y), 0, float64(cfg.ScreenSize.Y))
	if err != nil {
		return nil, err
	}
	volume, err := newLinearMap(cfg.VolumeNear, cfg.VolumeFar, cfg.VolumeMin, cfg.VolumeMax)
	if err != nil {
		return nil, err
	}

	return &Machine{
		cfg:        cfg,
		painter:    painter,
		mode:       cfg.InitialMode,
		hovered:    -1,
		screenshot: NewHoldTimer(cfg.ScreenshotHold),
		modeSelect: NewHoldTimer(cfg.ModeSelectHold),
		hover:      NewHoldTimer(cfg.HoverHold),
		pointerX:   pointerX,
		pointerY:   pointerY,
		volume:     volume,
	}, nil
}

// Step evaluates one frame and returns the actions it emits, in order.
//
// Evaluation order is fixed: screenshot hold, mode-select hold, then either
// the mode-select hover or the dispatch for the current mode.
func (m *Machine) Step(obs gesture.Observation, now time.Time) []Action {
	m.handPresent = obs.Present()
	if !m.handPresent {
		m.last = gesture.Signature{}
		m.release()
		return nil
	}

	sig := gesture.Classify(obs)
	complete := len(obs) >= detector.NumLandmarks
	m.last = sig

	var actions []Action

	if m.screenshot.Update(complete && sig.Fist(), now) {
		actions = append(actions, Action{Kind: Screenshot, Mode: m.mode})
	}

	if m.modeSelect.Update(sig.Open(), now) && !m.selecting {
		m.selecting = true
		m.hovered = -1
		m.hover.Reset()
		m.lift()
		actions = append(actions, Action{Kind: ModeSelect, Mode: m.mode})
	}

	if m.selecting {
		return append(actions, m.stepHover(obs, now)...)
	}

	if m.mode != ModePainter {
		m.lift()
	}

	switch m.mode {
	case ModeMouse:
		actions = append(actions, m.stepMouse(obs, sig, complete)...)
	case ModeVolume:
		actions = append(actions, m.stepVolume(obs)...)
	case ModePainter:
		actions = append(actions, m.stepPainter(obs, sig)...)
	case ModeScroll:
		actions = append(actions, m.stepScroll(sig)...)
	}

	return actions
}

func (m *Machine) stepHover(obs gesture.Observation, now time.Time) []Action {
	tip, ok := obs.Point(detector.IndexTip)
	if !ok {
		return nil
	}

	idx := m.regionAt(tip)
	if idx < 0 {
		m.hovered = -1
		m.hover.Reset()
		return nil
	}

	if idx != m.hovered {
		m.hovered = idx
		m.hover.Reset()
	}

	if !m.hover.Update(true, now) {
		return nil
	}

	m.mode = m.cfg.ModeRegions[idx].Mode
	m.selecting = false
	m.hovered = -1
	m.hover.Reset()
	m.armed = false
	return []Action{{Kind: ModeChange, Mode: m.mode}}
}

func (m *Machine) stepMouse(obs gesture.Observation, sig gesture.Signature, complete bool) []Action {
	if !complete {
		return nil
	}

	var actions []Action
	if sig.Pointing() {
		tip := obs[detector.IndexTip]
		actions = append(actions, Action{
			Kind: PointerMove,
			X:    int(m.pointerX.At(float64(tip.X))),
			Y:    int(m.pointerY.At(float64(tip.Y))),
			Mode: ModeMouse,
		})
	}

	index, middle := sig.Up(gesture.Index), sig.Up(gesture.Middle)
	switch {
	case index && middle:
		m.armed = true
	case m.armed && !index && middle:
		m.armed = false
		actions = append(actions, Action{Kind: LeftClick, Mode: ModeMouse})
	case m.armed && !index && !middle:
		m.armed = false
		actions = append(actions, Action{Kind: RightClick, Mode: ModeMouse})
	}

	return actions
}

func (m *Machine) stepVolume(obs gesture.Observation) []Action {
	if !m.cfg.VolumeEnabled {
		return nil
	}

	length, _ := gesture.Distance(obs, detector.ThumbTip, detector.IndexTip)
	if length == 0 {
		return nil
	}

	m.volumeDistance = length
	m.volumeLevel = m.volume.At(length)
	return []Action{{Kind: SetVolume, Level: m.volumeLevel, Mode: ModeVolume}}
}

func (m *Machine) stepPainter(obs gesture.Observation, sig gesture.Signature) []Action {
	tip, ok := obs.Point(detector.IndexTip)
	if !ok || m.painter == nil {
		m.lift()
		return nil
	}

	var actions []Action
	if sig.Pointing() {
		if name, hit := m.painter.SelectToolAt(tip); hit && name != m.tool {
			m.tool = name
			actions = append(actions, Action{Kind: ToolChange, Tool: name, Mode: ModePainter})
		}
	}

	m.painter.StrokeTo(tip, sig.Up(gesture.Index) && sig.Up(gesture.Middle))
	return actions
}

func (m *Machine) stepScroll(sig gesture.Signature) []Action {
	if !sig.Up(gesture.Index) || !sig.Up(gesture.Middle) {
		return nil
	}

	delta := m.cfg.ScrollAmount
	if sig.Up(gesture.Ring) {
		delta = -delta
	}
	return []Action{{Kind: Scroll, Delta: delta, Mode: ModeScroll}}
}

// release resets everything that depends on a visible hand.
func (m *Machine) release() {
	m.screenshot.Reset()
	m.modeSelect.Reset()
	m.hover.Reset()
	m.hovered = -1
	m.lift()
}

func (m *Machine) lift() {
	if m.painter != nil {
		m.painter.StrokeTo(image.Point{}, false)
	}
}

func (m *Machine) regionAt(p image.Point) int {
	for i, r := range m.cfg.ModeRegions {
		if r.Contains(p) {
			return i
		}
	}
	return -1
}

// SetMode switches mode directly, as the GUI and tray buttons do. Any open
// mode selection and click arm are cancelled.
func (m *Machine) SetMode(mode Mode) {
	m.mode = mode
	m.selecting = false
	m.hovered = -1
	m.hover.Reset()
	m.armed = false
	m.lift()
}

// NoteTool records a tool change made outside the gesture loop so the next
// gesture selection of the same tool is not reported again.
func (m *Machine) NoteTool(name string) {
	m.tool = name
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.mode }

// Selecting reports whether the mode-select overlay is active.
func (m *Machine) Selecting() bool { return m.selecting }

// Hovered returns the hovered mode icon index, or -1.
func (m *Machine) Hovered() int { return m.hovered }

// Armed reports whether a click gesture is armed.
func (m *Machine) Armed() bool { return m.armed }

// Regions returns the mode icon hit areas.
func (m *Machine) Regions() []Region { return m.cfg.ModeRegions }

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Mode:           m.mode,
		Selecting:      m.selecting,
		Hovered:        m.hovered,
		Armed:          m.armed,
		Signature:      m.last,
		HandPresent:    m.handPresent,
		VolumeLevel:    m.volumeLevel,
		VolumeDistance: m.volumeDistance,
	}
}
