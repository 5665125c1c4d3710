package source

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
)

// Raw IQ layouts: interleaved I,Q pairs without a header.
const (
	FormatCU8  = "cu8"  // unsigned 8-bit, the RTL-SDR native format
	FormatCS8  = "cs8"  // signed 8-bit
	FormatCS16 = "cs16" // signed 16-bit little endian
)

// bytesPerValue returns the width of one I or Q value for a raw format.
func bytesPerValue(format string) (int, error) {
	switch format {
	case FormatCU8, FormatCS8:
		return 1, nil
	case FormatCS16:
		return 2, nil
	default:
		return 0, fmt.Errorf("unknown raw IQ format %q", format)
	}
}

func isRaw(format string) bool {
	_, err := bytesPerValue(format)
	return err == nil
}

// decodeRaw converts whole I/Q values in b to floats in [-1, 1] and
// returns the number written to dst.
func decodeRaw(format string, b []byte, dst []float64) int {
	switch format {
	case FormatCU8:
		n := min(len(b), len(dst))
		for i := 0; i < n; i++ {
			dst[i] = (float64(b[i]) - 127.5) / 127.5
		}
		return n
	case FormatCS8:
		n := min(len(b), len(dst))
		for i := 0; i < n; i++ {
			dst[i] = float64(int8(b[i])) / 128
		}
		return n
	case FormatCS16:
		n := min(len(b)/2, len(dst))
		for i := 0; i < n; i++ {
			dst[i] = float64(int16(binary.LittleEndian.Uint16(b[2*i:]))) / 32768
		}
		return n
	}
	return 0
}

// interleavedToIQ maps interleaved channel frames to complex samples:
// channel 0 is I and channel 1 is Q. Mono input has Q = 0 and extra
// channels are ignored. It returns the number of samples written.
func interleavedToIQ(src []float64, channels int, scale float64, dst []complex128) int {
	if channels < 1 {
		return 0
	}
	n := min(len(src)/channels, len(dst))
	for i := 0; i < n; i++ {
		re := src[i*channels]
		var im float64
		if channels > 1 {
			im = src[i*channels+1]
		}
		dst[i] = complex(re*scale, im*scale)
	}
	return n
}

// formatFromPath guesses a file format from its extension.
func formatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "iq", "bin", "raw":
		return FormatCU8
	case "s8":
		return FormatCS8
	case "s16", "c16":
		return FormatCS16
	}
	return ext
}
