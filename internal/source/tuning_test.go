package source

import (
	"errors"
	"testing"
)

func TestTuningClampsGain(t *testing.T) {
	tn := newTuning(100e6, 0)
	tn.minGain, tn.maxGain = 0, 10

	got, err := tn.AdjustGain(25)
	if err != nil || got != 10 {
		t.Fatalf("expected gain clamped to 10, got %v (%v)", got, err)
	}
	got, _ = tn.AdjustGain(-50)
	if got != 0 {
		t.Fatalf("expected gain clamped to 0, got %v", got)
	}
}

func TestTuningHookFailureKeepsState(t *testing.T) {
	tn := newTuning(100e6, 5)
	boom := errors.New("usb gone")
	tn.setFreq = func(float64) error { return boom }
	tn.setGain = func(float64) error { return boom }

	if f, err := tn.AdjustFrequency(1e6); !errors.Is(err, boom) || f != 100e6 {
		t.Fatalf("expected failed retune to keep 100 MHz, got %v (%v)", f, err)
	}
	if g, err := tn.AdjustGain(1); !errors.Is(err, boom) || g != 5 {
		t.Fatalf("expected failed gain change to keep 5 dB, got %v (%v)", g, err)
	}
	if tn.Center() != 100e6 || tn.Gain() != 5 {
		t.Fatalf("state changed after hook failure: %v %v", tn.Center(), tn.Gain())
	}
}

func TestTuningRejectsNonPositiveFrequency(t *testing.T) {
	tn := newTuning(1e6, 0)
	if _, err := tn.AdjustFrequency(-2e6); err == nil {
		t.Fatal("expected error tuning below 0 Hz")
	}
	tn.fixed = true
	if _, err := tn.AdjustFrequency(1e3); !errors.Is(err, ErrFixedFrequency) {
		t.Fatalf("expected ErrFixedFrequency, got %v", err)
	}
}

func TestLinearGain(t *testing.T) {
	tn := newTuning(1e6, 20)
	if g := tn.linearGain(); g < 9.999 || g > 10.001 {
		t.Fatalf("expected 20 dB to be x10, got %v", g)
	}
}
