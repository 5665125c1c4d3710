package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
)

// DefaultToneRate is the synthetic source's rate when none is configured.
const DefaultToneRate = 2.048e6

// ToneSource synthesizes a carrier in Gaussian noise. The carrier sits at
// a fixed absolute frequency, so retuning moves it across the display.
type ToneSource struct {
	*Tuning

	rate      float64
	carrier   float64
	amplitude float64
	noise     float64
	block     int
	pace      pacer
	rng       *rand.Rand
	phase     float64
}

// NewTone builds a tone source from cfg.
func NewTone(cfg config.Source) (*ToneSource, error) {
	rate := cfg.SampleRate
	if rate == 0 {
		rate = DefaultToneRate
	}
	switch {
	case cfg.BlockSize < 1:
		return nil, fmt.Errorf("block size %d must be positive", cfg.BlockSize)
	case cfg.ToneAmplitude < 0 || cfg.Noise < 0:
		return nil, errors.New("tone amplitude and noise must not be negative")
	case math.Abs(cfg.ToneOffset) >= rate/2:
		return nil, fmt.Errorf("tone offset %.0f Hz outside the %.0f Hz band", cfg.ToneOffset, rate)
	}
	seed := uint64(time.Now().UnixNano())
	return &ToneSource{
		Tuning:    newTuning(cfg.CenterFrequency, cfg.Gain),
		rate:      rate,
		carrier:   cfg.CenterFrequency + cfg.ToneOffset,
		amplitude: cfg.ToneAmplitude,
		noise:     cfg.Noise,
		block:     cfg.BlockSize,
		pace:      pacer{rate: rate, realtime: true},
		rng:       rand.New(rand.NewPCG(seed, seed>>1)),
	}, nil
}

func (s *ToneSource) SampleRate() float64 { return s.rate }

func (s *ToneSource) Title() string {
	return "test tone at " + humanize.SIWithDigits(s.carrier, 3, "Hz")
}

func (s *ToneSource) Close() error { return nil }

// Stream emits blocks until ctx is done or push refuses one.
func (s *ToneSource) Stream(ctx context.Context, push func(dsp.SampleBlock) bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		center := s.Center()
		samples := s.generate(center)
		at, err := s.pace.next(ctx, len(samples))
		if err != nil {
			return err
		}
		if !push(dsp.SampleBlock{Samples: samples, SampleRate: s.rate, CenterFreq: center, Time: at}) {
			return nil
		}
	}
}

func (s *ToneSource) generate(center float64) []complex128 {
	g := s.linearGain()
	step := 2 * math.Pi * (s.carrier - center) / s.rate
	sigma := g * s.noise / math.Sqrt2
	out := make([]complex128, s.block)
	for i := range out {
		sin, cos := math.Sincos(s.phase)
		re, im := g*s.amplitude*cos, g*s.amplitude*sin
		if sigma > 0 {
			re += sigma * s.rng.NormFloat64()
			im += sigma * s.rng.NormFloat64()
		}
		out[i] = complex(re, im)
		s.phase = math.Remainder(s.phase+step, 2*math.Pi)
	}
	return out
}
