package dsp

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinFrameSize = 8
	MaxFrameSize = 1 << 16

	// Without an explicit MaxBacklog the accumulator holds at least this
	// many samples beyond N, or four frames' worth if that is larger.
	defaultBacklogSamples = 1 << 18
	defaultBacklogFrames  = 4
)

var (
	// ErrSampleRate is returned when a block's sample rate disagrees with
	// the rate the framer was configured for.
	ErrSampleRate = errors.New("sample rate mismatch")
	// ErrFrameGeometry is returned for an invalid frame or hop size.
	ErrFrameGeometry = errors.New("invalid frame geometry")
)

// FramerOptions tunes a Framer beyond its frame geometry.
type FramerOptions struct {
	Window WindowKind
	// MaxBacklog is the number of samples beyond N kept before the oldest
	// are dropped. Zero picks a few frames' worth.
	MaxBacklog int
	// Discard is the number of samples thrown away after every hop to hold
	// the transform rate down. Zero keeps every sample.
	Discard int
}

// Framer accumulates sample blocks into overlapping, windowed analysis
// frames. It is owned by a single goroutine.
type Framer struct {
	n          int
	hop        int
	sampleRate float64
	window     []float64
	gain       float64
	capacity   int
	discard    int

	acc     []complex128
	skip    int // samples still to discard from future input
	seq     uint64
	dropped uint64
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ValidateGeometry checks a frame size and hop size pair.
func ValidateGeometry(n, hop int) error {
	if n < MinFrameSize || n > MaxFrameSize || !IsPowerOfTwo(n) {
		return fmt.Errorf("%w: frame size %d must be a power of two in [%d, %d]", ErrFrameGeometry, n, MinFrameSize, MaxFrameSize)
	}
	if hop < 1 || hop > n {
		return fmt.Errorf("%w: hop size %d must be in [1, %d]", ErrFrameGeometry, hop, n)
	}
	return nil
}

// NewFramer creates a framer emitting frames of n samples every hop
// samples of input at the given sample rate.
func NewFramer(n, hop int, sampleRate float64, opts FramerOptions) (*Framer, error) {
	if err := ValidateGeometry(n, hop); err != nil {
		return nil, err
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %v", ErrFrameGeometry, sampleRate)
	}
	if opts.Discard < 0 {
		return nil, fmt.Errorf("%w: discard %d", ErrFrameGeometry, opts.Discard)
	}
	w, err := Window(opts.Window, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameGeometry, err)
	}
	backlog := opts.MaxBacklog
	if backlog <= 0 {
		backlog = max(defaultBacklogSamples, defaultBacklogFrames*n)
	}
	return &Framer{
		n:          n,
		hop:        hop,
		sampleRate: sampleRate,
		window:     w,
		gain:       CoherentGain(w),
		capacity:   n + backlog,
		discard:    opts.Discard,
		acc:        make([]complex128, 0, n+backlog),
	}, nil
}

// DiscardForRate returns how many samples to drop after each hop so that
// frames are produced at roughly fftRate per second.
func DiscardForRate(sampleRate, fftRate float64, hop int) int {
	if fftRate <= 0 || sampleRate <= 0 {
		return 0
	}
	d := int(sampleRate/fftRate) - hop
	if d < 0 {
		return 0
	}
	return d
}

// Size returns the frame size N.
func (f *Framer) Size() int { return f.n }

// Hop returns the hop size.
func (f *Framer) Hop() int { return f.hop }

// SampleRate returns the configured sample rate.
func (f *Framer) SampleRate() float64 { return f.sampleRate }

// Buffered returns the number of samples waiting in the accumulator.
func (f *Framer) Buffered() int { return len(f.acc) }

// Dropped returns the number of samples discarded under backpressure.
func (f *Framer) Dropped() uint64 { return f.dropped }

// Reset clears buffered samples; the frame sequence keeps counting.
func (f *Framer) Reset() {
	f.acc = f.acc[:0]
	f.skip = 0
}

// Push appends a block and returns every frame that became complete, in
// arrival order. When the accumulator would exceed N plus the backlog the
// oldest samples are dropped, so a burst yields only its most recent frames.
// A block recorded at a different sample rate is rejected and leaves the
// framer untouched.
func (f *Framer) Push(block SampleBlock) ([]AnalysisFrame, error) {
	if math.Abs(block.SampleRate-f.sampleRate) > 1e-6*f.sampleRate {
		return nil, fmt.Errorf("%w: block at %v Hz, framer at %v Hz", ErrSampleRate, block.SampleRate, f.sampleRate)
	}

	in := block.Samples
	if f.skip > 0 {
		k := min(f.skip, len(in))
		in = in[k:]
		f.skip -= k
	}
	f.acc = append(f.acc, in...)
	if over := len(f.acc) - f.capacity; over > 0 {
		f.dropped += uint64(over)
		f.acc = f.acc[:copy(f.acc, f.acc[over:])]
	}

	var frames []AnalysisFrame
	start := 0
	for len(f.acc)-start >= f.n {
		frames = append(frames, f.frameAt(start, block))
		start += f.hop
		if f.discard > 0 {
			avail := len(f.acc) - start
			k := min(f.discard, avail)
			start += k
			f.skip = f.discard - k
		}
	}
	if start > 0 {
		f.acc = f.acc[:copy(f.acc, f.acc[start:])]
	}
	return frames, nil
}

func (f *Framer) frameAt(start int, block SampleBlock) AnalysisFrame {
	samples := make([]complex128, f.n)
	for i, x := range f.acc[start : start+f.n] {
		samples[i] = x * complex(f.window[i], 0)
	}
	f.seq++
	return AnalysisFrame{
		Samples:    samples,
		Window:     f.window,
		Gain:       f.gain,
		Seq:        f.seq,
		SampleRate: f.sampleRate,
		CenterFreq: block.CenterFreq,
		Time:       block.Time,
	}
}
