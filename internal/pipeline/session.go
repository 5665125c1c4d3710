package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
	"github.com/olivier-w/termspec/internal/render"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// defaultColumns sizes an automatic frame before the display reports its width.
const defaultColumns = 80

// Source produces sample blocks until ctx is done or it runs dry. push
// returns false once the pipeline stops accepting blocks.
type Source interface {
	Stream(ctx context.Context, push func(dsp.SampleBlock) bool) error
}

type titled interface {
	Title() string
}

// Session wires a source, the processor, the scheduler and a display sink.
type Session struct {
	ID string

	src   Source
	sink  Sink
	slot  *Slot
	proc  *Processor
	sched *Scheduler
	log   *zap.Logger
}

// NewSession validates cfg and builds the pipeline. cfg.Source.SampleRate
// must already hold the source's rate.
func NewSession(cfg config.Config, src Source, sink Sink, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError("config", err)
	}
	if cfg.Source.SampleRate <= 0 {
		return nil, configError("config", errors.New("sample rate unknown"))
	}
	res, err := cfg.Render.Resolve()
	if err != nil {
		return nil, configError("config", err)
	}

	id := uuid.NewString()
	log = log.With(zap.String("session", id))

	r := cfg.Render
	geometry := DeriveGeometry(defaultColumns, res.Span)
	if !r.AutoFrameSize() {
		geometry = Geometry{FrameSize: r.FrameSize, HopSize: r.Hop(r.FrameSize)}
	}

	slot := &Slot{}
	proc, err := NewProcessor(ProcessorConfig{
		Geometry:   geometry,
		SampleRate: cfg.Source.SampleRate,
		Window:     res.Window,
		Transform:  res.Transform,
		Magnitude:  r.Magnitude(),
		FFTRate:    r.FFTRate,
		MaxBacklog: r.MaxBacklog,
	}, slot, log)
	if err != nil {
		return nil, err
	}

	palette, err := render.NewPalette(res.Theme, r.PaletteSteps)
	if err != nil {
		return nil, configError("palette", err)
	}
	tuner, _ := src.(Tuner)
	var title string
	if t, ok := src.(titled); ok {
		title = t.Title()
	}
	sched := NewScheduler(SchedulerConfig{
		FrameRate: r.FrameRate,
		Levels:    Levels{Reference: r.ReferenceLevel, DynamicRange: r.DynamicRange},
		Spectrum: render.SpectrumRenderer{
			Downsample: res.SpectrumDownsample,
			Fill:       r.SpectrumFill,
			Palette:    palette,
		},
		Palette:             palette,
		WaterfallDownsample: res.WaterfallDownsample,
		StatusBar:           r.StatusBar,
		AutoGeometry:        r.AutoFrameSize(),
		Geometry:            geometry,
		Span:                res.Span,
		Title:               title,
		Gain:                cfg.Source.Gain,
		HasGain:             tuner != nil,
	}, slot, proc, tuner, log)

	log.Info("session configured",
		zap.String("source", cfg.Source.Kind),
		zap.Float64("sample_rate", cfg.Source.SampleRate),
		zap.Int("frame_size", geometry.FrameSize),
		zap.Int("hop_size", geometry.HopSize),
		zap.String("window", string(res.Window)),
		zap.Int("frame_rate", r.FrameRate))

	return &Session{ID: id, src: src, sink: sink, slot: slot, proc: proc, sched: sched, log: log}, nil
}

// Processor returns stage b.
func (s *Session) Processor() *Processor { return s.proc }

// Scheduler returns stage c.
func (s *Session) Scheduler() *Scheduler { return s.sched }

// Run drives the session until the display quits or disconnects, ctx is
// cancelled, or a stage fails fatally. A quit or disconnect is a clean
// shutdown and returns nil.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return s.proc.Run(ctx)
	})
	p.Go(func(ctx context.Context) error {
		err := s.src.Stream(ctx, s.proc.Push)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("sample source: %w", err)
		}
		s.log.Info("sample source finished")
		return nil
	})
	p.Go(func(ctx context.Context) error {
		// Stop acquisition and everything else once the display is done.
		defer cancel()
		defer s.proc.Stop()
		return s.sched.Run(ctx, s.sink)
	})

	err := p.Wait()
	stats := s.proc.Stats()
	fields := []zap.Field{
		zap.Uint64("frames", stats.Frames),
		zap.Uint64("failed_frames", stats.FailedFrames),
		zap.Uint64("dropped_blocks", stats.DroppedBlocks),
		zap.Uint64("dropped_samples", stats.DroppedSamples),
		zap.Uint64("rows_skipped", s.slot.Overwritten()),
	}
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		s.log.Info("session stopped", fields...)
		return nil
	case errors.Is(err, ErrSinkDisconnected):
		s.log.Info("display disconnected, session stopped", append(fields, zap.Error(err))...)
		return nil
	default:
		s.log.Error("session failed", append(fields, zap.Error(err))...)
		return err
	}
}
