package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/termspec/internal/pipeline"
	"github.com/olivier-w/termspec/internal/render"
)

// ErrClosed is returned by Submit once the display has exited.
var ErrClosed = errors.New("display closed")

const eventBuffer = 64

// Display is the terminal sink. It runs a Bubbletea program that draws the
// grids submitted by the scheduler and reports input on Events.
type Display struct {
	program *tea.Program
	events  chan pipeline.InputEvent
	done    chan struct{}
}

// NewDisplay creates the program. Call Run to take over the terminal.
func NewDisplay(opts Options, programOpts ...tea.ProgramOption) *Display {
	events := make(chan pipeline.InputEvent, eventBuffer)
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, programOpts...)
	return &Display{
		program: tea.NewProgram(NewModel(opts, events), programOpts...),
		events:  events,
		done:    make(chan struct{}),
	}
}

// Run blocks until the user quits or Close is called. Events is closed on
// return so the scheduler sees the disconnect.
func (d *Display) Run() error {
	_, err := d.program.Run()
	close(d.done)
	close(d.events)
	return err
}

// Submit hands a composed grid to the UI loop.
func (d *Display) Submit(grid render.CellGrid) error {
	select {
	case <-d.done:
		return ErrClosed
	default:
	}
	d.program.Send(gridMsg(grid))
	return nil
}

// Events reports resizes, tuning requests and quit.
func (d *Display) Events() <-chan pipeline.InputEvent { return d.events }

// Close asks the program to exit.
func (d *Display) Close() { d.program.Quit() }
