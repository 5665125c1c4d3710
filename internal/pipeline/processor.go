package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/olivier-w/termspec/internal/dsp"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const (
	defaultIngestDepth = 8

	minAutoFrameSize = 64
	maxAutoFrameSize = dsp.MaxFrameSize
)

// Geometry is a frame size and hop size pair.
type Geometry struct {
	FrameSize int
	HopSize   int
}

// Levels is the displayed power range.
type Levels struct {
	Reference    float64
	DynamicRange float64
}

// Floor returns the bottom of the range.
func (l Levels) Floor() float64 { return l.Reference - l.DynamicRange }

// DeriveGeometry picks the smallest power-of-two frame whose row has a bin
// for every dot column of a cols-wide spectrum, with half overlap.
func DeriveGeometry(cols int, span dsp.Span) Geometry {
	want := 2 * max(cols, 1)
	if span != dsp.SpanFull {
		want *= 2 // half span keeps N/2 bins
	}
	n := minAutoFrameSize
	for n < want && n < maxAutoFrameSize {
		n <<= 1
	}
	return Geometry{FrameSize: n, HopSize: n / 2}
}

// ProcessorConfig configures stage b.
type ProcessorConfig struct {
	Geometry   Geometry
	SampleRate float64
	Window     dsp.WindowKind
	Transform  dsp.TransformKind
	Magnitude  dsp.MagnitudeConfig
	// FFTRate caps transforms per second by discarding samples; 0 is off.
	FFTRate    float64
	MaxBacklog int
	// IngestDepth bounds the blocks queued between acquisition and the
	// framer; the oldest block is dropped when full.
	IngestDepth int
}

// ProcessorStats is a snapshot of processing counters.
type ProcessorStats struct {
	Geometry       Geometry
	Frames         uint64
	FailedFrames   uint64
	DroppedBlocks  uint64
	DroppedSamples uint64
}

// Processor turns pushed sample blocks into spectrum rows published to a
// Slot. Push may be called from any goroutine; the framer, transform and
// magnitude state belong to the goroutine running Run.
type Processor struct {
	cfg  ProcessorConfig
	slot *Slot
	log  *zap.Logger

	in       chan dsp.SampleBlock
	geometry chan Geometry
	levels   chan Levels
	stopped  atomic.Bool

	framer    *dsp.Framer
	transform dsp.Transform
	magnitude *dsp.MagnitudeStage

	frameSize      atomic.Int64
	hopSize        atomic.Int64
	frames         atomic.Uint64
	failedFrames   atomic.Uint64
	droppedBlocks  atomic.Uint64
	droppedSamples atomic.Uint64
}

// NewProcessor validates cfg and builds the processing stages.
func NewProcessor(cfg ProcessorConfig, slot *Slot, log *zap.Logger) (*Processor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IngestDepth <= 0 {
		cfg.IngestDepth = defaultIngestDepth
	}
	magnitude, err := dsp.NewMagnitudeStage(cfg.Magnitude)
	if err != nil {
		return nil, configError("magnitude", err)
	}
	p := &Processor{
		cfg:       cfg,
		slot:      slot,
		log:       log.Named("processor"),
		in:        make(chan dsp.SampleBlock, cfg.IngestDepth),
		geometry:  make(chan Geometry, 1),
		levels:    make(chan Levels, 1),
		magnitude: magnitude,
	}
	if err := p.apply(cfg.Geometry); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Processor) apply(g Geometry) error {
	framer, err := dsp.NewFramer(g.FrameSize, g.HopSize, p.cfg.SampleRate, dsp.FramerOptions{
		Window:     p.cfg.Window,
		MaxBacklog: p.cfg.MaxBacklog,
		Discard:    dsp.DiscardForRate(p.cfg.SampleRate, p.cfg.FFTRate, g.HopSize),
	})
	if err != nil {
		return configError("framer", err)
	}
	transform, err := dsp.NewTransform(p.cfg.Transform, g.FrameSize)
	if err != nil {
		return configError("transform", err)
	}
	p.framer = framer
	p.transform = transform
	p.magnitude.Reset()
	p.cfg.Geometry = g
	p.frameSize.Store(int64(g.FrameSize))
	p.hopSize.Store(int64(g.HopSize))
	return nil
}

// Push hands a block to the processor without blocking. When the ingest
// queue is full the oldest queued block is dropped. It returns false once
// the processor has been stopped, telling the source to stop streaming.
func (p *Processor) Push(block dsp.SampleBlock) bool {
	if p.stopped.Load() {
		return false
	}
	for {
		select {
		case p.in <- block:
			return true
		default:
		}
		select {
		case <-p.in:
			p.droppedBlocks.Add(1)
		default:
		}
	}
}

// Stop makes later pushes fail. Blocks already queued may still be processed.
func (p *Processor) Stop() { p.stopped.Store(true) }

// Reconfigure asks Run to switch frame geometry. Only the latest request
// is kept.
func (p *Processor) Reconfigure(g Geometry) { offerLatest(p.geometry, g) }

// SetLevels asks Run to change the displayed power range.
func (p *Processor) SetLevels(l Levels) { offerLatest(p.levels, l) }

func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Stats returns current counters.
func (p *Processor) Stats() ProcessorStats {
	return ProcessorStats{
		Geometry:       Geometry{FrameSize: int(p.frameSize.Load()), HopSize: int(p.hopSize.Load())},
		Frames:         p.frames.Load(),
		FailedFrames:   p.failedFrames.Load(),
		DroppedBlocks:  p.droppedBlocks.Load(),
		DroppedSamples: p.droppedSamples.Load(),
	}
}

// Run processes blocks in arrival order until ctx is done. It returns a
// *ConfigurationError for input the pipeline cannot process at all.
func (p *Processor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case g := <-p.geometry:
			if g == p.cfg.Geometry {
				continue
			}
			if err := p.apply(g); err != nil {
				return err
			}
			p.log.Info("frame geometry changed", zap.Int("frame_size", g.FrameSize), zap.Int("hop_size", g.HopSize))
		case l := <-p.levels:
			if err := p.magnitude.SetLevels(l.Reference, l.DynamicRange); err != nil {
				p.log.Warn("ignoring display range", zap.Error(err))
			}
		case block := <-p.in:
			if err := p.Process(block); err != nil {
				return err
			}
		}
	}
}

// Process runs one block through the framer, transform and magnitude
// stages, publishing every resulting row. A transform failure drops only
// the affected frame.
func (p *Processor) Process(block dsp.SampleBlock) error {
	before := p.framer.Dropped()
	frames, err := p.framer.Push(block)
	if err != nil {
		return configError("framer", err)
	}
	if d := p.framer.Dropped() - before; d > 0 {
		p.droppedSamples.Add(d)
		p.log.Debug("accumulator overflow, dropped oldest samples", zap.Uint64("samples", d))
	}
	for _, frame := range frames {
		bins, err := p.transformFrame(frame)
		if err != nil {
			n := p.failedFrames.Add(1)
			p.log.Warn("dropping frame", zap.Error(err), zap.Uint64("failed_frames", n))
			continue
		}
		p.slot.Store(p.magnitude.Process(frame, bins))
		p.frames.Add(1)
	}
	return nil
}

func (p *Processor) transformFrame(frame dsp.AnalysisFrame) (bins []complex128, err error) {
	var pc panics.Catcher
	pc.Try(func() {
		bins, err = p.transform.Transform(frame.Samples)
	})
	if r := pc.Recovered(); r != nil {
		err = r.AsError()
	}
	if err == nil && len(bins) != frame.Len() {
		err = fmt.Errorf("%w: %d bins for %d samples", dsp.ErrFrameLength, len(bins), frame.Len())
	}
	if err != nil {
		return nil, &TransformFailure{Seq: frame.Seq, Err: err}
	}
	return bins, nil
}
