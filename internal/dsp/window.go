package dsp

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// WindowKind names a window function.
type WindowKind string

const (
	WindowRectangular WindowKind = "rectangular"
	WindowHann        WindowKind = "hann"
	WindowHamming     WindowKind = "hamming"
	WindowBlackman    WindowKind = "blackman"
	WindowBartlett    WindowKind = "bartlett"
	WindowFlatTop     WindowKind = "flattop"
)

// WindowKinds lists the supported window functions.
func WindowKinds() []WindowKind {
	return []WindowKind{WindowRectangular, WindowHann, WindowHamming, WindowBlackman, WindowBartlett, WindowFlatTop}
}

// ParseWindow resolves a window name, case-insensitively.
func ParseWindow(name string) (WindowKind, error) {
	kind := WindowKind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range WindowKinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown window %q", name)
}

// Window returns n coefficients of the given window function.
func Window(kind WindowKind, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("window length %d", n)
	}
	switch kind {
	case WindowRectangular, "":
		return window.Rectangular(n), nil
	case WindowHann:
		return window.Hann(n), nil
	case WindowHamming:
		return window.Hamming(n), nil
	case WindowBlackman:
		return window.Blackman(n), nil
	case WindowBartlett:
		return window.Bartlett(n), nil
	case WindowFlatTop:
		return window.FlatTop(n), nil
	default:
		return nil, fmt.Errorf("unknown window %q", kind)
	}
}

// CoherentGain is the DC response of a window, used to normalise bin
// magnitudes so a full-scale tone reads 0 dB regardless of window choice.
func CoherentGain(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}
	return floats.Sum(w)
}
