package render

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Downsample selects how several bins collapse into one display column.
type Downsample string

const (
	// DownsamplePeak keeps the loudest bin, so narrow carriers survive.
	DownsamplePeak Downsample = "peak"
	// DownsampleAverage takes the mean, which calms the noise floor.
	DownsampleAverage Downsample = "average"
)

// ParseDownsample resolves a downsampling mode name.
func ParseDownsample(s string) (Downsample, error) {
	switch Downsample(strings.ToLower(s)) {
	case DownsamplePeak, "":
		return DownsamplePeak, nil
	case DownsampleAverage:
		return DownsampleAverage, nil
	}
	return "", fmt.Errorf("unknown downsampling mode %q", s)
}

// Resample maps values onto width display columns. With more values than
// columns each column covers a contiguous run of values reduced by mode;
// with fewer, columns interpolate linearly between neighbouring values
// with both ends aligned.
func Resample(values []float64, width int, mode Downsample) []float64 {
	if width <= 0 {
		return nil
	}
	out := make([]float64, width)
	m := len(values)
	switch {
	case m == 0:
		return out
	case m >= width:
		for c := range width {
			lo, hi := c*m/width, (c+1)*m/width
			run := values[lo:hi]
			if mode == DownsampleAverage {
				out[c] = floats.Sum(run) / float64(len(run))
			} else {
				out[c] = floats.Max(run)
			}
		}
	case m == 1 || width == 1:
		for c := range out {
			out[c] = values[0]
		}
	default:
		for c := range width {
			pos := float64(c) * float64(m-1) / float64(width-1)
			i := int(pos)
			if i >= m-1 {
				out[c] = values[m-1]
				continue
			}
			t := pos - float64(i)
			out[c] = values[i]*(1-t) + values[i+1]*t
		}
	}
	return out
}

// ResampleIndices stretches or squeezes a row of palette indices to width
// by nearest neighbour. Used when history recorded at one terminal width
// is drawn at another.
func ResampleIndices(row []uint8, width int) []uint8 {
	if len(row) == width {
		return row
	}
	out := make([]uint8, width)
	if len(row) == 0 {
		return out
	}
	for c := range width {
		out[c] = row[c*len(row)/width]
	}
	return out
}
