package pipeline

import (
	"math"
	"math/cmplx"
	"sync"
	"time"

	"github.com/olivier-w/termspec/internal/dsp"
	"github.com/olivier-w/termspec/internal/render"
)

// toneBlock returns n samples of a full-scale complex tone centred on bin
// of an fftSize transform, continuing from sample offset start.
func toneBlock(start, n, bin, fftSize int, rate float64) dsp.SampleBlock {
	s := make([]complex128, n)
	for i := range s {
		s[i] = cmplx.Rect(1, 2*math.Pi*float64(bin)*float64(start+i)/float64(fftSize))
	}
	return dsp.SampleBlock{
		Samples:    s,
		SampleRate: rate,
		CenterFreq: 100e6,
		Time:       time.Unix(0, 0).Add(time.Duration(float64(start) / rate * float64(time.Second))),
	}
}

type stubProcessing struct {
	mu         sync.Mutex
	geometries []Geometry
	levels     []Levels
	stats      ProcessorStats
}

func (s *stubProcessing) Reconfigure(g Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometries = append(s.geometries, g)
}

func (s *stubProcessing) SetLevels(l Levels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, l)
}

func (s *stubProcessing) Stats() ProcessorStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

type stubTuner struct {
	gain, freq float64
	err        error
}

func (t *stubTuner) AdjustGain(d float64) (float64, error) {
	if t.err != nil {
		return 0, t.err
	}
	t.gain += d
	return t.gain, nil
}

func (t *stubTuner) AdjustFrequency(d float64) (float64, error) {
	if t.err != nil {
		return 0, t.err
	}
	t.freq += d
	return t.freq, nil
}

type fakeSink struct {
	events chan InputEvent
	grids  chan render.CellGrid
	err    error
}

func newFakeSink() *fakeSink {
	return &fakeSink{events: make(chan InputEvent, 8), grids: make(chan render.CellGrid, 64)}
}

func (f *fakeSink) Submit(g render.CellGrid) error {
	if f.err != nil {
		return f.err
	}
	select {
	case f.grids <- g:
	default:
	}
	return nil
}

func (f *fakeSink) Events() <-chan InputEvent { return f.events }
