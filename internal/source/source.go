// Package source produces complex baseband sample blocks: a synthetic
// tone, replayed recordings and audio files, or an RTL-SDR dongle.
package source

import (
	"context"
	"fmt"

	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
	"go.uber.org/zap"
)

// Source kinds accepted in configuration.
const (
	KindTone   = "tone"
	KindFile   = "file"
	KindRTLSDR = "rtlsdr"
)

// Source is an open sample source. Every source also accepts gain and
// frequency adjustments.
type Source interface {
	Stream(ctx context.Context, push func(dsp.SampleBlock) bool) error
	AdjustGain(delta float64) (float64, error)
	AdjustFrequency(delta float64) (float64, error)
	SampleRate() float64
	Title() string
	Close() error
}

// New opens the source cfg.Kind names.
func New(cfg config.Source, log *zap.Logger) (Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Kind {
	case KindTone:
		src, err := NewTone(cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindFile:
		src, err := OpenFile(cfg, log)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindRTLSDR:
		return openRTLSDR(cfg, log)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
