// Package dsp turns a stream of complex baseband samples into rows of
// log-power magnitudes: framing and windowing, the spectral transform and
// the smoothed dB scaling stage.
package dsp

import "time"

// SampleBlock is one push of IQ samples from a sample source.
type SampleBlock struct {
	Samples    []complex128
	SampleRate float64 // Hz, at capture time
	CenterFreq float64 // Hz, tuner frequency at capture time
	Time       time.Time
}

// AnalysisFrame is N windowed samples handed to the spectral transform.
// Exactly one frame is in flight per transform call.
type AnalysisFrame struct {
	Samples    []complex128
	Window     []float64
	Gain       float64 // coherent gain: sum of window coefficients
	Seq        uint64
	SampleRate float64
	CenterFreq float64
	Time       time.Time
}

// Len returns the frame size N.
func (f AnalysisFrame) Len() int { return len(f.Samples) }

// SpectrumRow is one frame's worth of dB magnitudes, one per bin.
// A row is never modified after the magnitude stage emits it.
type SpectrumRow struct {
	Values     []float64
	CenterFreq float64 // Hz
	StartFreq  float64 // Hz, frequency of Values[0]
	BinWidth   float64 // Hz
	Seq        uint64
	Time       time.Time
}

// Len returns the number of bins in the row.
func (r SpectrumRow) Len() int { return len(r.Values) }

// EndFreq returns the upper edge of the last bin.
func (r SpectrumRow) EndFreq() float64 {
	return r.StartFreq + float64(len(r.Values))*r.BinWidth
}
