package actuator

import (
	"fmt"
	"log"

	"github.com/Lokesh983/Gesture-Control/internal/control"
)

// Dispatcher applies driving actions to the pointer and volume actuators.
// Either actuator may be nil, in which case its actions are dropped.
type Dispatcher struct {
	pointer Pointer
	volume  Volume
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(pointer Pointer, volume Volume) *Dispatcher {
	return &Dispatcher{pointer: pointer, volume: volume}
}

// HasVolume reports whether volume actions have somewhere to go.
func (d *Dispatcher) HasVolume() bool {
	return d.volume != nil
}

// Apply performs a. Failures and panics from the underlying libraries are
// logged and swallowed; actions are never retried.
func (d *Dispatcher) Apply(a control.Action) {
	if !a.Drives() {
		return
	}
	if err := d.apply(a); err != nil {
		log.Printf("%s: %v", a.Kind, err)
	}
}

func (d *Dispatcher) apply(a control.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if a.Kind == control.SetVolume {
		if d.volume == nil {
			return nil
		}
		return d.volume.SetVolume(a.Level)
	}

	if d.pointer == nil {
		return nil
	}
	switch a.Kind {
	case control.PointerMove:
		return d.pointer.Move(a.X, a.Y)
	case control.LeftClick:
		return d.pointer.Click(ButtonLeft)
	case control.RightClick:
		return d.pointer.Click(ButtonRight)
	case control.Scroll:
		return d.pointer.Scroll(a.Delta)
	}
	return nil
}
