package pipeline

import (
	"sync/atomic"

	"github.com/olivier-w/termspec/internal/dsp"
)

// Slot is the single-item handoff between the processor and the
// compositor. A store replaces whatever row is waiting; a take empties
// the slot. Neither ever blocks.
type Slot struct {
	row         atomic.Pointer[dsp.SpectrumRow]
	stored      atomic.Uint64
	overwritten atomic.Uint64
}

// Store publishes row as the latest, discarding an untaken predecessor.
func (s *Slot) Store(row dsp.SpectrumRow) {
	s.stored.Add(1)
	if prev := s.row.Swap(&row); prev != nil {
		s.overwritten.Add(1)
	}
}

// Take removes and returns the waiting row, if any.
func (s *Slot) Take() (dsp.SpectrumRow, bool) {
	p := s.row.Swap(nil)
	if p == nil {
		return dsp.SpectrumRow{}, false
	}
	return *p, true
}

// Stored returns the number of rows ever published.
func (s *Slot) Stored() uint64 { return s.stored.Load() }

// Overwritten returns how many rows were replaced before being taken.
func (s *Slot) Overwritten() uint64 { return s.overwritten.Load() }
