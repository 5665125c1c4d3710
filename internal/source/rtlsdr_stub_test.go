//go:build !rtlsdr

package source

import (
	"errors"
	"testing"

	"github.com/olivier-w/termspec/internal/config"
)

func TestRTLSDRNeedsBuildTag(t *testing.T) {
	cfg := config.Default().Source
	cfg.Kind = KindRTLSDR
	if _, err := New(cfg, nil); !errors.Is(err, ErrNoRTLSDR) {
		t.Fatalf("expected ErrNoRTLSDR, got %v", err)
	}
}
