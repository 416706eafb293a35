// Package control implements the per-frame interaction state machine that
// maps finger signatures and hold times to modes and OS actions.
package control

import (
	"fmt"
	"strings"
)

// Mode is the active control scheme.
type Mode int

const (
	ModeMouse Mode = iota
	ModeVolume
	ModePainter
	ModeScroll
)

// Modes lists every mode in icon order.
var Modes = []Mode{ModeMouse, ModeVolume, ModePainter, ModeScroll}

func (m Mode) String() string {
	switch m {
	case ModeMouse:
		return "mouse"
	case ModeVolume:
		return "volume"
	case ModePainter:
		return "painter"
	case ModeScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as produced by String.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
