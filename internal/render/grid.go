// Package render turns magnitude rows into terminal cell grids: braille
// dot packing for the spectrum trace, half-block colour packing for the
// waterfall, and the layout that stacks them into one screen.
//
// Everything here is a pure mapping from numbers to glyphs and colours;
// the only mutable state is the waterfall history, owned by its caller.
package render

import "strings"

// Color is a 24-bit colour. The zero value means the terminal default.
type Color struct {
	R, G, B uint8
	Set     bool
}

// RGB returns a set colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Set: true}
}

func (c Color) key() uint32 {
	if !c.Set {
		return 1 << 24
	}
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Cell is one terminal character position.
type Cell struct {
	Glyph rune
	FG    Color
	BG    Color
}

var blankCell = Cell{Glyph: ' '}

// CellGrid is a row-major rectangle of cells.
type CellGrid struct {
	Width  int
	Height int
	Cells  []Cell
}

// NewGrid returns a blank grid. Negative sizes are treated as zero.
func NewGrid(width, height int) CellGrid {
	width = max(width, 0)
	height = max(height, 0)
	g := CellGrid{Width: width, Height: height, Cells: make([]Cell, width*height)}
	for i := range g.Cells {
		g.Cells[i] = blankCell
	}
	return g
}

func (g CellGrid) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the cell at column x, row y, or a blank cell when out of range.
func (g CellGrid) At(x, y int) Cell {
	if !g.inside(x, y) {
		return blankCell
	}
	return g.Cells[y*g.Width+x]
}

// Set writes a cell; writes outside the grid are ignored.
func (g CellGrid) Set(x, y int, c Cell) {
	if g.inside(x, y) {
		g.Cells[y*g.Width+x] = c
	}
}

// Row returns row y as a slice aliasing the grid.
func (g CellGrid) Row(y int) []Cell {
	if y < 0 || y >= g.Height {
		return nil
	}
	return g.Cells[y*g.Width : (y+1)*g.Width]
}

// Blit copies src into g with its top-left corner at (x0, y0), clipping
// anything that falls outside g.
func (g CellGrid) Blit(x0, y0 int, src CellGrid) {
	for y := range src.Height {
		for x := range src.Width {
			g.Set(x0+x, y0+y, src.Cells[y*src.Width+x])
		}
	}
}

// WriteText writes s left to right from (x, y), one rune per cell.
func (g CellGrid) WriteText(x, y int, s string, fg, bg Color) {
	for _, r := range s {
		if x >= g.Width {
			return
		}
		g.Set(x, y, Cell{Glyph: r, FG: fg, BG: bg})
		x++
	}
}

// Equal reports whether two grids have the same size and cells.
func (g CellGrid) Equal(o CellGrid) bool {
	if g.Width != o.Width || g.Height != o.Height || len(g.Cells) != len(o.Cells) {
		return false
	}
	for i := range g.Cells {
		if g.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// String returns the glyphs only, one line per row.
func (g CellGrid) String() string {
	var sb strings.Builder
	for y := range g.Height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range g.Row(y) {
			sb.WriteRune(c.Glyph)
		}
	}
	return sb.String()
}
