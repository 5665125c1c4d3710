package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olivier-w/termspec/internal/dsp"
	"github.com/olivier-w/termspec/internal/render"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const (
	// Consecutive overrunning cycles before the frame rate is cut.
	overrunLimit = 3
	// On-time cycles before the frame rate creeps back up.
	recoverAfter = 120
)

// Sink is the display: it draws grids and reports input.
type Sink interface {
	Submit(grid render.CellGrid) error
	Events() <-chan InputEvent
}

// Tuner is the part of a sample source that accepts retuning requests.
type Tuner interface {
	AdjustGain(delta float64) (float64, error)
	AdjustFrequency(delta float64) (float64, error)
}

// Processing is the scheduler's view of stage b.
type Processing interface {
	Reconfigure(Geometry)
	SetLevels(Levels)
	Stats() ProcessorStats
}

// SchedulerConfig configures stage c.
type SchedulerConfig struct {
	FrameRate           int
	Levels              Levels
	Spectrum            render.SpectrumRenderer
	Palette             *render.Palette
	WaterfallDownsample render.Downsample
	StatusBar           bool
	// AutoGeometry re-derives the frame geometry from the width on resize.
	AutoGeometry bool
	Geometry     Geometry
	Span         dsp.Span
	Title        string
	Gain         float64
	HasGain      bool
	// Width and Height are the terminal size before the first resize event.
	Width  int
	Height int
}

// Scheduler owns the redraw cadence, the waterfall history and the screen
// layout. Everything except Run is meant to be called from one goroutine.
type Scheduler struct {
	cfg   SchedulerConfig
	slot  *Slot
	proc  Processing
	tuner Tuner
	log   *zap.Logger

	layout    render.Layout
	waterfall *render.Waterfall
	levels    Levels
	geometry  Geometry
	last      *dsp.SpectrumRow
	first     time.Time
	status    Status
	gain      float64
	hasGain   bool

	target   int
	fps      int
	overruns int
	onTime   int
	now      func() time.Time
}

// NewScheduler returns a scheduler reading rows from slot. proc and tuner
// may be nil.
func NewScheduler(cfg SchedulerConfig, slot *Slot, proc Processing, tuner Tuner, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cfg.FrameRate = max(cfg.FrameRate, 1)
	if cfg.Palette == nil {
		cfg.Palette, _ = render.NewPalette(render.ThemeClassic, 64)
	}
	s := &Scheduler{
		cfg:      cfg,
		slot:     slot,
		proc:     proc,
		tuner:    tuner,
		log:      log.Named("scheduler"),
		layout:   render.NewLayout(cfg.Width, cfg.Height, cfg.StatusBar),
		levels:   cfg.Levels,
		geometry: cfg.Geometry,
		gain:     cfg.Gain,
		hasGain:  cfg.HasGain,
		target:   cfg.FrameRate,
		fps:      cfg.FrameRate,
		now:      time.Now,
	}
	s.waterfall = render.NewWaterfall(cfg.Palette, cfg.WaterfallDownsample, s.layout.WaterfallRows)
	return s
}

// Layout returns the current screen layout.
func (s *Scheduler) Layout() render.Layout { return s.layout }

// Waterfall returns the waterfall renderer and its history.
func (s *Scheduler) Waterfall() *render.Waterfall { return s.waterfall }

// Levels returns the displayed power range.
func (s *Scheduler) Levels() Levels { return s.levels }

// FrameRate returns the current, possibly reduced, redraw rate.
func (s *Scheduler) FrameRate() int { return s.fps }

// Period returns the current redraw period.
func (s *Scheduler) Period() time.Duration {
	return time.Second / time.Duration(s.fps)
}

// Cycle takes the latest row, if one is waiting, feeds it to the waterfall
// and composes a new grid. It never waits; with no new row it reports
// false and nothing needs redrawing.
func (s *Scheduler) Cycle() (render.CellGrid, bool) {
	row, ok := s.slot.Take()
	if !ok {
		return render.CellGrid{}, false
	}
	if s.last == nil {
		s.first = row.Time
	}
	s.last = &row
	s.waterfall.Push(row.Values, s.levels.Floor(), s.levels.DynamicRange, s.layout.Width)
	s.refreshStatus()
	if s.layout.Empty() {
		return render.CellGrid{}, false
	}
	return s.Compose(), true
}

func (s *Scheduler) refreshStatus() {
	st := Status{
		Title:     s.cfg.Title,
		Geometry:  s.geometry,
		FrameRate: s.fps,
		Levels:    s.levels,
		Gain:      s.gain,
		HasGain:   s.hasGain,
	}
	if s.proc != nil {
		stats := s.proc.Stats()
		st.Geometry = stats.Geometry
		st.Dropped = stats.FailedFrames + stats.DroppedBlocks
	}
	if s.last != nil {
		st.CenterFreq = s.last.CenterFreq
		st.BinWidth = s.last.BinWidth
		st.SampleRate = s.last.BinWidth * float64(st.Geometry.FrameSize)
		if !s.first.IsZero() {
			st.Elapsed = s.last.Time.Sub(s.first)
		}
	}
	s.status = st
}

// Compose draws the current state. It does not mutate the scheduler, so
// composing twice without an intervening Cycle or event gives equal grids.
func (s *Scheduler) Compose() render.CellGrid {
	l := s.layout
	var f render.Frame
	if l.StatusRows > 0 {
		f.Status = s.status.String()
	}
	if s.last != nil {
		f.Spectrum = s.cfg.Spectrum.Render(s.last.Values, s.levels.Floor(), s.levels.DynamicRange, l.Width, l.SpectrumRows)
	}
	f.Waterfall = s.waterfall.Render(l.Width, l.WaterfallRows)
	return render.Compose(l, f)
}

// HandleEvent applies one input event. A zero-sized resize reports
// ErrSinkDisconnected.
func (s *Scheduler) HandleEvent(ev InputEvent) error {
	switch ev.Kind {
	case EventResize:
		if ev.Width <= 0 || ev.Height <= 0 {
			return fmt.Errorf("%w: terminal resized to %dx%d", ErrSinkDisconnected, ev.Width, ev.Height)
		}
		s.resize(ev.Width, ev.Height)
	case EventQuit:
		return errQuit
	case EventAdjustGain:
		if s.tuner == nil {
			s.log.Debug("source has no tuner, ignoring gain change")
			return nil
		}
		gain, err := s.tuner.AdjustGain(ev.Delta)
		if err != nil {
			s.log.Warn("gain change failed", zap.Float64("delta", ev.Delta), zap.Error(err))
			return nil
		}
		s.gain, s.hasGain = gain, true
		s.refreshStatus()
	case EventAdjustFrequency:
		if s.tuner == nil {
			s.log.Debug("source has no tuner, ignoring frequency change")
			return nil
		}
		freq, err := s.tuner.AdjustFrequency(ev.Delta)
		if err != nil {
			s.log.Warn("frequency change failed", zap.Float64("delta", ev.Delta), zap.Error(err))
			return nil
		}
		s.log.Debug("retuned", zap.Float64("center_frequency", freq))
	case EventAdjustReference:
		s.levels.Reference += ev.Delta
		if s.proc != nil {
			s.proc.SetLevels(s.levels)
		}
		s.refreshStatus()
	default:
		s.log.Debug("ignoring event", zap.Stringer("kind", ev.Kind))
	}
	return nil
}

func (s *Scheduler) resize(width, height int) {
	s.layout = render.NewLayout(width, height, s.cfg.StatusBar)
	s.waterfall.Resize(s.layout.WaterfallRows)
	if s.cfg.AutoGeometry {
		if g := DeriveGeometry(s.layout.Width, s.cfg.Span); g != s.geometry {
			s.geometry = g
			if s.proc != nil {
				s.proc.Reconfigure(g)
			}
		}
	}
	s.log.Debug("resized", zap.Int("width", width), zap.Int("height", height), zap.Int("history", s.layout.HistoryBound()))
}

// Run redraws at the configured rate until ctx is done, the sink asks to
// quit, or the sink disconnects.
func (s *Scheduler) Run(ctx context.Context, sink Sink) error {
	events := sink.Events()
	timer := time.NewTimer(s.Period())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrSinkDisconnected
			}
			if err := s.HandleEvent(ev); err != nil {
				if errors.Is(err, errQuit) {
					s.log.Info("quit requested")
					return nil
				}
				return err
			}
			if ev.Kind != EventResize || s.last == nil || s.layout.Empty() {
				continue
			}
			if err := submit(sink, s.Compose()); err != nil {
				return err
			}
		case <-timer.C:
			start := s.now()
			if grid, ok := s.safeCycle(); ok {
				if err := submit(sink, grid); err != nil {
					return err
				}
			}
			s.pace(s.now().Sub(start))
			timer.Reset(s.Period())
		}
	}
}

func submit(sink Sink, grid render.CellGrid) error {
	if err := sink.Submit(grid); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkDisconnected, err)
	}
	return nil
}

func (s *Scheduler) safeCycle() (grid render.CellGrid, ok bool) {
	var pc panics.Catcher
	pc.Try(func() {
		grid, ok = s.Cycle()
	})
	if r := pc.Recovered(); r != nil {
		s.log.Error("redraw cycle panicked", zap.Error(r.AsError()))
		return render.CellGrid{}, false
	}
	return grid, ok
}

// pace adapts the frame rate: repeated overruns cut it by a quarter, a long
// run of on-time cycles restores part of the gap to the target.
func (s *Scheduler) pace(elapsed time.Duration) {
	if elapsed > s.Period() {
		s.onTime = 0
		s.overruns++
		if s.overruns < overrunLimit {
			return
		}
		s.overruns = 0
		next := max(1, s.fps*3/4)
		if next != s.fps {
			s.log.Warn("reducing frame rate", zap.Error(ErrRenderOverrun),
				zap.Int("from", s.fps), zap.Int("to", next), zap.Duration("cycle", elapsed))
			s.fps = next
		}
		return
	}
	s.overruns = 0
	if s.fps >= s.target {
		return
	}
	s.onTime++
	if s.onTime < recoverAfter {
		return
	}
	s.onTime = 0
	next := min(s.target, s.fps+max(1, (s.target-s.fps)/5))
	s.log.Info("restoring frame rate", zap.Int("from", s.fps), zap.Int("to", next))
	s.fps = next
}
