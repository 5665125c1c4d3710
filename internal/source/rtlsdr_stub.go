//go:build !rtlsdr

package source

import (
	"errors"

	"github.com/olivier-w/termspec/internal/config"
	"go.uber.org/zap"
)

// ErrNoRTLSDR is returned by builds without the rtlsdr tag.
var ErrNoRTLSDR = errors.New("built without RTL-SDR support (rebuild with -tags rtlsdr)")

func openRTLSDR(config.Source, *zap.Logger) (Source, error) {
	return nil, ErrNoRTLSDR
}
