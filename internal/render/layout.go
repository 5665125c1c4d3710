package render

// Layout splits the terminal into an optional status line, the spectrum
// region and the waterfall region, top to bottom.
type Layout struct {
	Width  int
	Height int

	StatusRows    int
	SpectrumTop   int
	SpectrumRows  int
	WaterfallTop  int
	WaterfallRows int
}

// NewLayout divides a width × height terminal. The status line is only
// shown when at least two more rows remain for the plots.
func NewLayout(width, height int, statusBar bool) Layout {
	width = max(width, 0)
	height = max(height, 0)
	l := Layout{Width: width, Height: height}
	if statusBar && height >= 3 {
		l.StatusRows = 1
	}
	plots := height - l.StatusRows
	l.SpectrumTop = l.StatusRows
	l.SpectrumRows = plots / 2
	l.WaterfallTop = l.SpectrumTop + l.SpectrumRows
	l.WaterfallRows = plots - l.SpectrumRows
	return l
}

// Empty reports whether there is nothing to draw into.
func (l Layout) Empty() bool { return l.Width == 0 || l.Height == 0 }

// HistoryBound is the number of waterfall rows the layout can show.
func (l Layout) HistoryBound() int { return 2 * l.WaterfallRows }

// Frame is everything drawn in one redraw.
type Frame struct {
	Status    string
	Spectrum  CellGrid
	Waterfall CellGrid
}

var (
	statusFG = RGB(0xe0, 0xe0, 0xe0)
	statusBG = RGB(0x20, 0x20, 0x30)
)

// Compose stacks a frame's parts into one grid matching the layout. It is
// a pure function of its inputs.
func Compose(l Layout, f Frame) CellGrid {
	g := NewGrid(l.Width, l.Height)
	if l.StatusRows > 0 {
		for x := range l.Width {
			g.Set(x, 0, Cell{Glyph: ' ', BG: statusBG})
		}
		g.WriteText(0, 0, f.Status, statusFG, statusBG)
	}
	g.Blit(0, l.SpectrumTop, clip(f.Spectrum, l.Width, l.SpectrumRows))
	g.Blit(0, l.WaterfallTop, clip(f.Waterfall, l.Width, l.WaterfallRows))
	return g
}

func clip(src CellGrid, width, height int) CellGrid {
	if src.Width <= width && src.Height <= height {
		return src
	}
	out := NewGrid(min(src.Width, width), min(src.Height, height))
	for y := range out.Height {
		copy(out.Row(y), src.Row(y)[:out.Width])
	}
	return out
}
