//go:build rtlsdr

package source

import (
	"context"
	"errors"
	"fmt"

	rtl "github.com/jpoirier/gortlsdr"
	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
	"go.uber.org/zap"
)

// RTL-SDR tuner gain range in dB (R820T).
const (
	rtlMinGain = 0
	rtlMaxGain = 49.6
)

// RTLSource streams unsigned 8-bit IQ from an RTL-SDR dongle.
type RTLSource struct {
	*Tuning

	dev   *rtl.Context
	name  string
	rate  float64
	block int
	log   *zap.Logger
}

func openRTLSDR(cfg config.Source, log *zap.Logger) (Source, error) {
	count := rtl.GetDeviceCount()
	if count == 0 {
		return nil, errors.New("no RTL-SDR devices found")
	}
	if cfg.DeviceIndex >= count {
		return nil, fmt.Errorf("device index %d out of range (found %d devices)", cfg.DeviceIndex, count)
	}
	dev, err := rtl.Open(cfg.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to open RTL-SDR device: %w", err)
	}

	rate := cfg.SampleRate
	if rate == 0 {
		rate = DefaultToneRate
	}
	gain := max(rtlMinGain, min(rtlMaxGain, cfg.Gain))
	setup := []struct {
		what string
		err  func() error
	}{
		{"sample rate", func() error { return dev.SetSampleRate(int(rate)) }},
		{"frequency", func() error { return dev.SetCenterFreq(int(cfg.CenterFrequency)) }},
		{"manual gain mode", func() error { return dev.SetTunerGainMode(true) }},
		{"gain", func() error { return dev.SetTunerGain(int(gain * 10)) }},
		{"buffer reset", func() error { return dev.ResetBuffer() }},
	}
	for _, step := range setup {
		if err := step.err(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("rtl-sdr %s: %w", step.what, err)
		}
	}

	tuning := newTuning(cfg.CenterFrequency, gain)
	tuning.minGain, tuning.maxGain = rtlMinGain, rtlMaxGain
	tuning.setFreq = func(hz float64) error { return dev.SetCenterFreq(int(hz)) }
	tuning.setGain = func(db float64) error { return dev.SetTunerGain(int(db * 10)) }

	// librtlsdr reads in multiples of 512 bytes.
	block := (cfg.BlockSize + 255) / 256 * 256
	s := &RTLSource{
		Tuning: tuning,
		dev:    dev,
		name:   rtl.GetDeviceName(cfg.DeviceIndex),
		rate:   rate,
		block:  block,
		log:    log,
	}
	log.Info("rtl-sdr opened",
		zap.String("device", s.name),
		zap.Float64("sample_rate", rate),
		zap.Float64("center_frequency", cfg.CenterFrequency),
		zap.Float64("gain", gain))
	return s, nil
}

func (s *RTLSource) SampleRate() float64 { return s.rate }
func (s *RTLSource) Title() string       { return s.name }
func (s *RTLSource) Close() error        { return s.dev.Close() }

// Stream reads synchronously from the dongle. ReadSync blocks, so ctx is
// checked between reads.
func (s *RTLSource) Stream(ctx context.Context, push func(dsp.SampleBlock) bool) error {
	buf := make([]byte, 2*s.block)
	vals := make([]float64, 2*s.block)
	pace := pacer{rate: s.rate}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		center := s.Center()
		n, err := s.dev.ReadSync(buf, len(buf))
		if err != nil {
			return fmt.Errorf("failed to read samples: %w", err)
		}
		n = decodeRaw(FormatCU8, buf[:wholeFrames(n, 2)], vals)
		if n == 0 {
			continue
		}
		samples := make([]complex128, n/2)
		interleavedToIQ(vals[:n], 2, 1, samples)
		at, _ := pace.next(ctx, len(samples))
		if !push(dsp.SampleBlock{Samples: samples, SampleRate: s.rate, CenterFreq: center, Time: at}) {
			return nil
		}
	}
}
