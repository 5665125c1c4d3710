package source

import (
	"math"
	"testing"
)

func TestDecodeRawFormats(t *testing.T) {
	tests := []struct {
		format string
		in     []byte
		want   []float64
	}{
		{FormatCU8, []byte{0, 255}, []float64{-1, 1}},
		{FormatCS8, []byte{0x80, 0x40}, []float64{-1, 0.5}},
		{FormatCS16, []byte{0x00, 0x80, 0x00, 0x40, 0xff}, []float64{-1, 0.5}},
	}
	for _, tt := range tests {
		dst := make([]float64, 4)
		n := decodeRaw(tt.format, tt.in, dst)
		if n != len(tt.want) {
			t.Fatalf("%s: decoded %d values, want %d", tt.format, n, len(tt.want))
		}
		for i, w := range tt.want {
			if math.Abs(dst[i]-w) > 1e-12 {
				t.Fatalf("%s: value %d = %v, want %v", tt.format, i, dst[i], w)
			}
		}
	}
}

func TestInterleavedToIQ(t *testing.T) {
	dst := make([]complex128, 4)

	n := interleavedToIQ([]float64{0.5, -0.25, 0.1, 0.2, 9}, 2, 2, dst)
	if n != 2 {
		t.Fatalf("expected 2 stereo samples, got %d", n)
	}
	if dst[0] != complex(1, -0.5) || dst[1] != complex(0.2, 0.4) {
		t.Fatalf("unexpected stereo mapping %v", dst[:2])
	}

	n = interleavedToIQ([]float64{0.5, -0.5, 0.25}, 1, 1, dst)
	if n != 3 || dst[1] != complex(-0.5, 0) {
		t.Fatalf("mono input should be real: n=%d %v", n, dst[:3])
	}

	// Only the first two of four channels are used.
	n = interleavedToIQ([]float64{1, 2, 3, 4}, 4, 1, dst)
	if n != 1 || dst[0] != complex(1, 2) {
		t.Fatalf("unexpected multichannel mapping: n=%d %v", n, dst[0])
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]string{
		"capture.cu8":       FormatCU8,
		"capture.IQ":        FormatCU8,
		"/tmp/x.cs16":       FormatCS16,
		"airband.c16":       FormatCS16,
		"song.MP3":          "mp3",
		"recording.wav":     "wav",
		"no_extension_here": "",
	}
	for path, want := range cases {
		if got := formatFromPath(path); got != want {
			t.Fatalf("formatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
