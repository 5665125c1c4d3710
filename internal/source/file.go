package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
	"go.uber.org/zap"
)

// FileSource replays an IQ recording or audio file in real time. Stereo
// files carry I on the left channel and Q on the right; mono files are
// treated as real signals.
type FileSource struct {
	*Tuning

	path    string
	format  string
	title   string
	block   int
	loop    bool
	dec     frameReader
	monitor *Monitor
	pace    pacer
	log     *zap.Logger
}

// OpenFile opens cfg.Path. The format comes from cfg.Format or the file
// extension. Headerless IQ formats take their rate from cfg.SampleRate.
func OpenFile(cfg config.Source, log *zap.Logger) (*FileSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	format := cfg.Format
	if format == "" {
		format = formatFromPath(cfg.Path)
	}
	if cfg.BlockSize < 1 {
		return nil, fmt.Errorf("block size %d must be positive", cfg.BlockSize)
	}
	dec, err := openFrameReader(cfg.Path, format, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
	}
	rate := dec.SampleRate()
	if rate <= 0 {
		dec.Close()
		return nil, fmt.Errorf("opening %s: invalid sample rate %v", cfg.Path, rate)
	}
	if !isRaw(format) && cfg.SampleRate > 0 && cfg.SampleRate != rate {
		log.Warn("ignoring configured sample rate, file carries its own",
			zap.Float64("configured", cfg.SampleRate), zap.Float64("file", rate))
	}

	tuning := newTuning(cfg.CenterFrequency, cfg.Gain)
	tuning.fixed = true

	s := &FileSource{
		Tuning: tuning,
		path:   cfg.Path,
		format: format,
		title:  readTitle(cfg.Path),
		block:  cfg.BlockSize,
		loop:   cfg.Loop,
		dec:    dec,
		pace:   pacer{rate: rate, realtime: true},
		log:    log,
	}
	if cfg.Monitor && !isRaw(format) {
		m, err := NewMonitor(cfg.Path, format, cfg.Loop)
		if err != nil {
			log.Warn("audio monitor unavailable", zap.Error(err))
		} else {
			s.monitor = m
		}
	}
	log.Info("file source opened",
		zap.String("path", cfg.Path),
		zap.String("format", format),
		zap.Float64("sample_rate", rate),
		zap.Int("channels", dec.Channels()))
	return s, nil
}

func (s *FileSource) SampleRate() float64 { return s.dec.SampleRate() }
func (s *FileSource) Title() string       { return s.title }

// Close releases the decoder and any audio monitor.
func (s *FileSource) Close() error {
	var errs []error
	if s.monitor != nil {
		errs = append(errs, s.monitor.Close())
	}
	errs = append(errs, s.dec.Close())
	return errors.Join(errs...)
}

// Stream reads the file block by block. At end of file it rewinds when
// looping and otherwise returns nil.
func (s *FileSource) Stream(ctx context.Context, push func(dsp.SampleBlock) bool) error {
	channels := s.dec.Channels()
	vals := make([]float64, s.block*channels)
	rate := s.dec.SampleRate()
	if s.monitor != nil {
		s.monitor.Start()
	}

	var sinceRewind int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.dec.ReadFrames(vals)
		if errors.Is(err, io.EOF) {
			if !s.loop {
				s.log.Info("end of file", zap.String("path", s.path))
				return nil
			}
			if sinceRewind == 0 {
				return fmt.Errorf("%s holds no samples", s.path)
			}
			if err := s.dec.Rewind(); err != nil {
				return fmt.Errorf("rewinding %s: %w", s.path, err)
			}
			sinceRewind = 0
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.path, err)
		}
		sinceRewind += n

		samples := make([]complex128, n/channels)
		interleavedToIQ(vals[:n], channels, s.linearGain(), samples)
		at, err := s.pace.next(ctx, len(samples))
		if err != nil {
			return err
		}
		if !push(dsp.SampleBlock{Samples: samples, SampleRate: rate, CenterFreq: s.Center(), Time: at}) {
			return nil
		}
	}
}
