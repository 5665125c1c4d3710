package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrFrameLength is returned by a transform handed a frame of the wrong size.
var ErrFrameLength = errors.New("frame length does not match transform size")

// Transform maps N windowed time-domain samples to N frequency bins.
// Implementations hold no state that outlives a call.
type Transform interface {
	Size() int
	Transform(frame []complex128) ([]complex128, error)
}

// TransformKind names a Transform implementation.
type TransformKind string

const (
	TransformFourier TransformKind = "fourier"
	TransformRadix2  TransformKind = "radix2"
)

// NewTransform builds a transform of the given kind for frames of n samples.
func NewTransform(kind TransformKind, n int) (Transform, error) {
	switch TransformKind(strings.ToLower(string(kind))) {
	case TransformFourier, "":
		return NewFourierTransform(n), nil
	case TransformRadix2:
		if !IsPowerOfTwo(n) {
			return nil, fmt.Errorf("radix-2 transform needs a power of two, got %d", n)
		}
		return Radix2{N: n}, nil
	default:
		return nil, fmt.Errorf("unknown transform %q", kind)
	}
}

// FourierTransform is a complex FFT backed by gonum.
type FourierTransform struct {
	fft *fourier.CmplxFFT
	n   int
}

// NewFourierTransform plans a complex FFT for n samples.
func NewFourierTransform(n int) *FourierTransform {
	return &FourierTransform{fft: fourier.NewCmplxFFT(n), n: n}
}

func (t *FourierTransform) Size() int { return t.n }

func (t *FourierTransform) Transform(frame []complex128) ([]complex128, error) {
	if len(frame) != t.n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFrameLength, len(frame), t.n)
	}
	return t.fft.Coefficients(nil, frame), nil
}

// Radix2 is an in-place Cooley-Tukey FFT over a copy of the frame.
type Radix2 struct {
	N int
}

func (r Radix2) Size() int { return r.N }

func (r Radix2) Transform(frame []complex128) ([]complex128, error) {
	if len(frame) != r.N {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFrameLength, len(frame), r.N)
	}
	out := make([]complex128, len(frame))
	copy(out, frame)
	radix2(out)
	return out, nil
}

// radix2 performs an in-place radix-2 FFT. len(x) must be a power of 2.
func radix2(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	// Butterflies
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := cmplx.Rect(1, -2*math.Pi/float64(size))
		for i := 0; i < n; i += size {
			w := complex(1, 0)
			for k := range half {
				a := i + k
				b := a + half
				t := w * x[b]
				x[b] = x[a] - t
				x[a] += t
				w *= step
			}
		}
	}
}

// Shift rotates bins so that the zero-frequency bin sits in the middle:
// for even n, index n/2 of the result is bin 0.
func Shift[T any](bins []T) []T {
	n := len(bins)
	out := make([]T, n)
	h := (n + 1) / 2
	copy(out, bins[h:])
	copy(out[n-h:], bins[:h])
	return out
}
