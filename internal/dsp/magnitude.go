package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// PowerFloor is the lowest dB value the magnitude stage produces for a
// bin, standing in for -Inf when a bin is exactly zero.
const PowerFloor = -300.0

// Span selects which bins of an N-point transform make up a row.
type Span string

const (
	// SpanHalf keeps the N/2 bins from DC upwards.
	SpanHalf Span = "half"
	// SpanFull keeps all N bins, rotated so DC is centred.
	SpanFull Span = "full"
)

// Smoothing selects the per-bin temporal filter.
type Smoothing string

const (
	SmoothExponential Smoothing = "exponential"
	SmoothSpring      Smoothing = "spring"
)

// ParseSpan resolves a span name.
func ParseSpan(s string) (Span, error) {
	switch Span(strings.ToLower(s)) {
	case SpanHalf, "":
		return SpanHalf, nil
	case SpanFull:
		return SpanFull, nil
	}
	return "", fmt.Errorf("unknown spectrum span %q", s)
}

// ParseSmoothing resolves a smoothing name.
func ParseSmoothing(s string) (Smoothing, error) {
	switch Smoothing(strings.ToLower(s)) {
	case SmoothExponential, "":
		return SmoothExponential, nil
	case SmoothSpring:
		return SmoothSpring, nil
	}
	return "", fmt.Errorf("unknown smoothing %q", s)
}

// RowLength returns the number of bins in a row for frame size n.
func RowLength(n int, span Span) int {
	if span == SpanFull {
		return n
	}
	return n / 2
}

// MagnitudeConfig holds the scaling parameters of a MagnitudeStage.
type MagnitudeConfig struct {
	// Averaging is the exponential smoothing factor α in [0,1]: 1 tracks
	// every frame, 0 freezes the first.
	Averaging      float64
	ReferenceLevel float64 // dB, top of the displayed range
	DynamicRange   float64 // dB, height of the displayed range
	Span           Span
	Smoothing      Smoothing
	// SpringFPS is the frame rate the spring smoothing is tuned for.
	SpringFPS int
}

// Validate checks the scaling parameters.
func (c MagnitudeConfig) Validate() error {
	if c.Averaging < 0 || c.Averaging > 1 || math.IsNaN(c.Averaging) {
		return fmt.Errorf("averaging %v outside [0,1]", c.Averaging)
	}
	if c.DynamicRange <= 0 || math.IsNaN(c.DynamicRange) {
		return fmt.Errorf("dynamic range %v must be positive", c.DynamicRange)
	}
	if math.IsNaN(c.ReferenceLevel) || math.IsInf(c.ReferenceLevel, 0) {
		return fmt.Errorf("reference level %v", c.ReferenceLevel)
	}
	return nil
}

// Floor returns the bottom of the displayed range.
func (c MagnitudeConfig) Floor() float64 {
	return c.ReferenceLevel - c.DynamicRange
}

// MagnitudeStage converts transform bins into clamped, smoothed dB rows.
// It keeps the previous smoothed row and is not safe for concurrent use.
type MagnitudeStage struct {
	cfg      MagnitudeConfig
	power    []float64
	smoothed []float64
	primed   bool
	spring   springField
}

// NewMagnitudeStage creates a stage with the given scaling.
func NewMagnitudeStage(cfg MagnitudeConfig) (*MagnitudeStage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &MagnitudeStage{cfg: cfg}
	if cfg.Smoothing == SmoothSpring {
		m.spring = newSpringField(cfg.SpringFPS, 6.0, 0.9)
	}
	return m, nil
}

// Config returns the stage's scaling parameters.
func (m *MagnitudeStage) Config() MagnitudeConfig { return m.cfg }

// SetLevels changes the reference level and dynamic range of later rows.
func (m *MagnitudeStage) SetLevels(reference, dynamicRange float64) error {
	cfg := m.cfg
	cfg.ReferenceLevel = reference
	cfg.DynamicRange = dynamicRange
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg = cfg
	return nil
}

// Reset forgets the smoothing history; the next frame seeds it afresh.
func (m *MagnitudeStage) Reset() {
	m.primed = false
	m.smoothed = m.smoothed[:0]
}

// Smoothed returns the unclamped smoothed state after the last Process.
func (m *MagnitudeStage) Smoothed() []float64 { return m.smoothed }

// Power converts a bin to dB relative to a full-scale tone, never below
// PowerFloor.
func Power(bin complex128, gain float64) float64 {
	mag := cmplx.Abs(bin)
	if gain > 0 {
		mag /= gain
	}
	if mag == 0 || math.IsNaN(mag) {
		return PowerFloor
	}
	return max(20*math.Log10(mag), PowerFloor)
}

// Process turns the bins of one frame into a SpectrumRow.
func (m *MagnitudeStage) Process(frame AnalysisFrame, bins []complex128) SpectrumRow {
	n := len(bins)
	if m.cfg.Span == SpanFull {
		bins = Shift(bins)
	} else {
		bins = bins[:n/2]
	}

	if cap(m.power) < len(bins) {
		m.power = make([]float64, len(bins))
	}
	m.power = m.power[:len(bins)]
	for i, b := range bins {
		m.power[i] = Power(b, frame.Gain)
	}

	m.smooth(m.power)

	lo, hi := m.cfg.Floor(), m.cfg.ReferenceLevel
	values := make([]float64, len(m.smoothed))
	for i, v := range m.smoothed {
		values[i] = min(max(v, lo), hi)
	}

	binWidth := frame.SampleRate / float64(n)
	start := frame.CenterFreq
	if m.cfg.Span == SpanFull {
		start -= float64(n/2) * binWidth
	}
	return SpectrumRow{
		Values:     values,
		CenterFreq: frame.CenterFreq,
		StartFreq:  start,
		BinWidth:   binWidth,
		Seq:        frame.Seq,
		Time:       frame.Time,
	}
}

func (m *MagnitudeStage) smooth(power []float64) {
	if !m.primed || len(m.smoothed) != len(power) {
		m.smoothed = append(m.smoothed[:0], power...)
		if m.cfg.Smoothing == SmoothSpring {
			m.spring.seed(power)
		}
		m.primed = true
		return
	}
	if m.cfg.Smoothing == SmoothSpring {
		for i, p := range power {
			m.smoothed[i] = m.spring.step(i, p)
		}
		return
	}
	a := m.cfg.Averaging
	for i, p := range power {
		m.smoothed[i] = a*p + (1-a)*m.smoothed[i]
	}
}
