package control

// Kind identifies what an Action asks the outside world to do.
type Kind int

const (
	PointerMove Kind = iota + 1
	LeftClick
	RightClick
	SetVolume
	Scroll
	Screenshot
	SaveDrawing
	ModeSelect
	ModeChange
	ToolChange
)

var kindNames = map[Kind]string{
	PointerMove: "pointer_move",
	LeftClick:   "left_click",
	RightClick:  "right_click",
	SetVolume:   "set_volume",
	Scroll:      "scroll",
	Screenshot:  "screenshot",
	SaveDrawing: "save_drawing",
	ModeSelect:  "mode_select",
	ModeChange:  "mode_change",
	ToolChange:  "tool_change",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is one command emitted by the state machine.
type Action struct {
	Kind  Kind    `json:"kind"`
	X     int     `json:"x,omitempty"`
	Y     int     `json:"y,omitempty"`
	Level float64 `json:"level,omitempty"`
	Delta int     `json:"delta,omitempty"`
	Mode  Mode    `json:"mode"`
	Tool  string  `json:"tool,omitempty"`
}

// Drives reports whether the action targets the OS input actuator.
func (a Action) Drives() bool {
	switch a.Kind {
	case PointerMove, LeftClick, RightClick, SetVolume, Scroll:
		return true
	}
	return false
}
