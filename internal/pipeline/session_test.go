package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olivier-w/termspec/internal/config"
	"github.com/olivier-w/termspec/internal/dsp"
)

// toneSource streams a bin-centred tone until told to stop.
type toneSource struct {
	rate    float64
	refused atomic.Bool
}

func (s *toneSource) Stream(ctx context.Context, push func(dsp.SampleBlock) bool) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for start := 0; ; start += 256 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !push(toneBlock(start, 256, 20, 256, s.rate)) {
			s.refused.Store(true)
			return nil
		}
	}
}

func (s *toneSource) Title() string { return "synthetic" }

func testSessionConfig() config.Config {
	cfg := config.Default()
	cfg.Source.SampleRate = 256e3
	cfg.Render.FrameSize = 256
	cfg.Render.FrameRate = 100
	cfg.Logging.File = ""
	return cfg
}

func TestSessionRunsUntilQuit(t *testing.T) {
	src := &toneSource{rate: 256e3}
	sink := newFakeSink()
	sess, err := NewSession(testSessionConfig(), src, sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}

	done := make(chan error, 1)
	go func() { done <- sess.Run(context.Background()) }()
	sink.events <- Resize(40, 12)

	select {
	case g := <-sink.grids:
		if g.Width != 40 || g.Height != 12 {
			t.Fatalf("expected 40x12 grid, got %dx%d", g.Width, g.Height)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no grid drawn")
	}

	sink.events <- Quit()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
	if sess.Processor().Stats().Frames == 0 {
		t.Fatal("expected frames to have been processed")
	}
}

func TestSessionDisconnectIsClean(t *testing.T) {
	sink := newFakeSink()
	sess, err := NewSession(testSessionConfig(), &toneSource{rate: 256e3}, sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	sink.events <- Resize(0, 0)
	if err := sess.Run(context.Background()); err != nil {
		t.Fatalf("expected disconnect to shut down cleanly, got %v", err)
	}
}

func TestSessionSampleRateMismatchIsFatal(t *testing.T) {
	sink := newFakeSink()
	sess, err := NewSession(testSessionConfig(), &toneSource{rate: 48e3}, sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = sess.Run(context.Background())
	var ce *ConfigurationError
	if !errors.As(err, &ce) || !errors.Is(err, dsp.ErrSampleRate) {
		t.Fatalf("expected fatal ConfigurationError, got %v", err)
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Source.SampleRate = 0
	_, err := NewSession(cfg, &toneSource{}, newFakeSink(), nil)
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	cfg = testSessionConfig()
	cfg.Render.Window = "triangle"
	if _, err := NewSession(cfg, &toneSource{}, newFakeSink(), nil); !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError for unknown window, got %v", err)
	}
}
