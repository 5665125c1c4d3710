package render

import "math"

// SpectrumRenderer draws a magnitude row as a braille trace: two dot
// columns and four dot rows per cell.
type SpectrumRenderer struct {
	Downsample Downsample
	// Fill lights every dot below the trace, drawing an area instead of a line.
	Fill bool
	// Palette colours each cell row by height; nil leaves the terminal default.
	Palette *Palette
}

// DotLevels resamples values to width dot columns and converts each to the
// dot row of its trace, counted from the top of a rows-high grid. Values
// at or below the floor are unlit (-1).
func (s SpectrumRenderer) DotLevels(values []float64, floor, dynamicRange float64, width, rows int) []int {
	levels := make([]int, width)
	dots := rows * 4
	for i, v := range Resample(values, width, s.Downsample) {
		if dots == 0 || dynamicRange <= 0 || !(v > floor) {
			levels[i] = -1
			continue
		}
		t := min((v-floor)/dynamicRange, 1)
		levels[i] = int(math.Round((1 - t) * float64(dots-1)))
	}
	return levels
}

// Render draws values into a cols × rows grid spanning [floor, floor+dynamicRange].
func (s SpectrumRenderer) Render(values []float64, floor, dynamicRange float64, cols, rows int) CellGrid {
	if cols <= 0 || rows <= 0 {
		return NewGrid(cols, rows)
	}
	g := PackBraille(s.DotLevels(values, floor, dynamicRange, cols*2, rows), rows, s.Fill)
	if s.Palette == nil {
		return g
	}
	for y := range rows {
		fg := s.Palette.At(1 - (float64(y)+0.5)/float64(rows))
		for x, c := range g.Row(y) {
			if c.Glyph != ' ' {
				c.FG = fg
				g.Set(x, y, c)
			}
		}
	}
	return g
}
