package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
)

// writeIQWAV writes frames stereo 16-bit frames of constant I=0.5, Q=-0.5.
func writeIQWAV(t *testing.T, path string, rate, frames int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	data := make([]int, 2*frames)
	for i := 0; i < frames; i++ {
		data[2*i] = 16384
		data[2*i+1] = -16384
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func fileConfig(path string) config.Source {
	cfg := config.Default().Source
	cfg.Kind = KindFile
	cfg.Path = path
	cfg.BlockSize = 256
	return cfg
}

func collect(t *testing.T, s *FileSource, limit int) []dsp.SampleBlock {
	t.Helper()
	s.pace.realtime = false
	var blocks []dsp.SampleBlock
	err := s.Stream(context.Background(), func(b dsp.SampleBlock) bool {
		blocks = append(blocks, b)
		return limit == 0 || len(blocks) < limit
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	return blocks
}

func TestFileSourceReadsStereoWAVAsIQ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	writeIQWAV(t, path, 8000, 1000)

	s, err := OpenFile(fileConfig(path), nil)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()

	if s.SampleRate() != 8000 {
		t.Fatalf("expected the WAV rate 8000, got %v", s.SampleRate())
	}
	if s.Title() != "capture" {
		t.Fatalf("expected title from filename, got %q", s.Title())
	}

	blocks := collect(t, s, 0)
	total := 0
	for _, b := range blocks {
		total += len(b.Samples)
		if b.SampleRate != 8000 || b.CenterFreq != 100e6 {
			t.Fatalf("unexpected block metadata %+v", b)
		}
	}
	if total != 1000 {
		t.Fatalf("expected 1000 samples, got %d", total)
	}
	if got := blocks[0].Samples[0]; got != complex(0.5, -0.5) {
		t.Fatalf("expected I=0.5 Q=-0.5, got %v", got)
	}
}

func TestFileSourceLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")
	writeIQWAV(t, path, 8000, 300)

	cfg := fileConfig(path)
	cfg.Loop = true
	s, err := OpenFile(cfg, nil)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()

	blocks := collect(t, s, 8)
	total := 0
	for _, b := range blocks {
		total += len(b.Samples)
	}
	if len(blocks) != 8 || total <= 300 {
		t.Fatalf("expected looping past the end, got %d blocks / %d samples", len(blocks), total)
	}
}

func TestFileSourceSoftwareGainAndFixedFrequency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gain.wav")
	writeIQWAV(t, path, 8000, 256)

	cfg := fileConfig(path)
	cfg.Gain = 20
	s, err := OpenFile(cfg, nil)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()

	if _, err := s.AdjustFrequency(1e3); !errors.Is(err, ErrFixedFrequency) {
		t.Fatalf("expected ErrFixedFrequency, got %v", err)
	}
	blocks := collect(t, s, 1)
	got := blocks[0].Samples[0]
	if real(got) < 4.999 || real(got) > 5.001 || imag(got) > -4.999 || imag(got) < -5.001 {
		t.Fatalf("expected +20 dB to give 5-5i, got %v", got)
	}
}

func TestFileSourceRawIQ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.cu8")
	raw := make([]byte, 2*512)
	for i := range raw {
		if i%2 == 0 {
			raw[i] = 255
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := fileConfig(path)
	if _, err := OpenFile(cfg, nil); err == nil {
		t.Fatal("expected raw IQ without a sample rate to fail")
	}

	cfg.SampleRate = 2.4e5
	s, err := OpenFile(cfg, nil)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()
	if s.SampleRate() != 2.4e5 {
		t.Fatalf("expected configured rate, got %v", s.SampleRate())
	}
	blocks := collect(t, s, 0)
	if len(blocks) != 2 || len(blocks[1].Samples) != 256 {
		t.Fatalf("expected two 256 sample blocks, got %d", len(blocks))
	}
	if got := blocks[0].Samples[0]; got != complex(1, -1) {
		t.Fatalf("expected 1-1i, got %v", got)
	}
}

func TestFileSourceRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenFile(fileConfig(path), nil); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNewUnknownKind(t *testing.T) {
	cfg := config.Default().Source
	cfg.Kind = "sdrplay"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
