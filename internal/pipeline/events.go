package pipeline

import "fmt"

// EventKind enumerates the input events a display sink reports.
type EventKind int

const (
	EventResize EventKind = iota
	EventQuit
	EventAdjustGain
	EventAdjustFrequency
	EventAdjustReference
)

func (k EventKind) String() string {
	switch k {
	case EventResize:
		return "resize"
	case EventQuit:
		return "quit"
	case EventAdjustGain:
		return "adjust-gain"
	case EventAdjustFrequency:
		return "adjust-frequency"
	case EventAdjustReference:
		return "adjust-reference"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// InputEvent is one request from the display sink.
type InputEvent struct {
	Kind   EventKind
	Width  int     // resize
	Height int     // resize
	Delta  float64 // gain dB, frequency Hz or reference level dB
}

func Resize(width, height int) InputEvent {
	return InputEvent{Kind: EventResize, Width: width, Height: height}
}

func Quit() InputEvent { return InputEvent{Kind: EventQuit} }

func AdjustGain(delta float64) InputEvent {
	return InputEvent{Kind: EventAdjustGain, Delta: delta}
}

func AdjustFrequency(delta float64) InputEvent {
	return InputEvent{Kind: EventAdjustFrequency, Delta: delta}
}

func AdjustReference(delta float64) InputEvent {
	return InputEvent{Kind: EventAdjustReference, Delta: delta}
}
