// Package pipeline runs the three concurrent stages of a display session:
// sample acquisition, the framer → transform → magnitude processor, and
// the fixed-cadence compositor that hands cell grids to the display.
package pipeline

import (
	"errors"
	"fmt"
)

// ConfigurationError is fatal: the session stops and reports it.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransformFailure describes one frame the spectral transform rejected.
// The frame is dropped and processing continues.
type TransformFailure struct {
	Seq uint64
	Err error
}

func (e *TransformFailure) Error() string {
	return fmt.Sprintf("transform failed on frame %d: %v", e.Seq, e.Err)
}

func (e *TransformFailure) Unwrap() error { return e.Err }

var (
	// ErrRenderOverrun marks a redraw cycle that outlasted its period.
	ErrRenderOverrun = errors.New("render overrun")
	// ErrSinkDisconnected means the display went away; the session shuts
	// down cleanly.
	ErrSinkDisconnected = errors.New("display sink disconnected")

	errQuit = errors.New("quit requested")
)

func configError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigurationError{Op: op, Err: err}
}
