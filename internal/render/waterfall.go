package render

// UpperHalfBlock is the glyph used to pack two history rows per cell:
// its foreground paints the top half and its background the bottom.
const UpperHalfBlock = '▀'

// HalfBlock packs a vertically adjacent pair of colours into one cell.
// top is the newer row and bottom the older; an unset colour leaves that
// half at the terminal default.
func HalfBlock(top, bottom Color) Cell {
	if !top.Set && !bottom.Set {
		return blankCell
	}
	return Cell{Glyph: UpperHalfBlock, FG: top, BG: bottom}
}

// Waterfall keeps the scrolling history of quantized rows and draws it
// newest at the top, two rows per terminal line.
type Waterfall struct {
	Palette    *Palette
	Downsample Downsample

	history *History
}

// NewWaterfall returns a waterfall for a region rows lines tall.
func NewWaterfall(p *Palette, mode Downsample, rows int) *Waterfall {
	return &Waterfall{Palette: p, Downsample: mode, history: NewHistory(2 * rows)}
}

// History exposes the underlying ring buffer.
func (w *Waterfall) History() *History { return w.history }

// Resize rebinds the history to a region rows lines tall.
func (w *Waterfall) Resize(rows int) {
	w.history.Resize(2 * rows)
}

// Quantize resamples values to cols columns and maps each to a palette index.
func (w *Waterfall) Quantize(values []float64, floor, dynamicRange float64, cols int) []uint8 {
	out := make([]uint8, max(cols, 0))
	for i, v := range Resample(values, cols, w.Downsample) {
		out[i] = w.Palette.Quantize(v, floor, dynamicRange)
	}
	return out
}

// Push quantizes values and records them as the newest history row.
func (w *Waterfall) Push(values []float64, floor, dynamicRange float64, cols int) {
	w.history.Push(w.Quantize(values, floor, dynamicRange, cols))
}

// Render draws the history into a cols × rows grid. It does not mutate
// the history.
func (w *Waterfall) Render(cols, rows int) CellGrid {
	g := NewGrid(cols, rows)
	for y := range rows {
		newer := w.history.Newest(2 * y)
		if newer == nil {
			break
		}
		newer = ResampleIndices(newer, cols)
		older := w.history.Newest(2*y + 1)
		if older != nil {
			older = ResampleIndices(older, cols)
		}
		for x := range cols {
			top := w.Palette.Color(newer[x])
			var bottom Color
			if older != nil {
				bottom = w.Palette.Color(older[x])
			}
			g.Set(x, y, HalfBlock(top, bottom))
		}
	}
	return g
}
